package rpm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vk/originci/internal/catalog"
	"github.com/vk/originci/internal/ctxlog"
	"github.com/vk/originci/internal/shell"
)

// DefaultOutputDir is where tito writes test builds.
const DefaultOutputDir = "/tmp/tito"

// Tito builds packages with `tito build --rpm --test`.
type Tito struct {
	runner    shell.Runner
	outputDir string
	// Timeout bounds a single tito invocation.
	Timeout time.Duration
}

// NewTito returns a builder writing to outputDir.
func NewTito(runner shell.Runner, outputDir string) *Tito {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return &Tito{runner: runner, outputDir: outputDir}
}

// Build runs a test build of pkg in its source directory and returns the
// binary RPMs it produced. The output directory is emptied first, so
// every returned file belongs to this build.
func (t *Tito) Build(ctx context.Context, pkg catalog.Package) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	out := shell.Quote(t.outputDir)

	if _, err := run(ctx, t.runner, shell.Command{Line: fmt.Sprintf("rm -rf %s && mkdir -p %s", out, out)}); err != nil {
		return nil, fmt.Errorf("failed to reset %s: %w", t.outputDir, err)
	}

	logger.Info("Building in directory.", "dir", pkg.Dir)
	if _, err := run(ctx, t.runner, shell.Command{
		Line:    "tito build --rpm --test",
		Dir:     pkg.Dir,
		Timeout: t.Timeout,
	}); err != nil {
		return nil, err
	}

	res, err := run(ctx, t.runner, shell.Command{
		Line: fmt.Sprintf("find %s -name %s ! -name '*.src.rpm' | sort", out, shell.Quote(pkg.InstallName()+"*.rpm")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list built rpms: %w", err)
	}

	var artifacts []string
	for _, line := range strings.Split(res.Output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			artifacts = append(artifacts, line)
		}
	}
	if len(artifacts) == 0 {
		return nil, fmt.Errorf("tito produced no rpms for %s in %s", pkg.Name, t.outputDir)
	}
	return artifacts, nil
}
