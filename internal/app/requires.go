package app

import (
	"context"
	"fmt"

	"github.com/vk/originci/internal/rpm"
)

// InstallRequiresOptions configures an install of the requirements of a
// source tree.
type InstallRequiresOptions struct {
	SourceRoots []string
	SkipBroken  bool
}

// InstallRequires installs every build and run time requirement of the
// catalog that the catalog does not provide itself. It returns the names
// that were requested.
func (a *App) InstallRequires(ctx context.Context, opts InstallRequiresOptions) ([]string, error) {
	ctx = a.Context(ctx)
	cat, err := a.loadCatalog(ctx, opts.SourceRoots, nil)
	if err != nil {
		return nil, err
	}

	names := cat.RequiredPackages()
	if len(names) == 0 {
		a.logger.Info("No required packages to install.")
		return nil, nil
	}
	a.logger.Info("Installing required packages.", "count", len(names), "skip_broken", opts.SkipBroken)
	if err := rpm.NewYum(a.runner).InstallNames(ctx, names, opts.SkipBroken); err != nil {
		return names, fmt.Errorf("failed to install required packages: %w", err)
	}
	return names, nil
}
