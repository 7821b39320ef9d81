package app

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/originci/internal/build"
	"github.com/vk/originci/internal/report"
	"github.com/vk/originci/internal/rpm"
)

// BuildOptions configures one build run.
type BuildOptions struct {
	PhasesOptions
	Incremental  bool
	RetryWithTag bool
	InstallBuilt bool
	// OutputDir is where tito writes packages.
	OutputDir string
	// ReportPath, when set, receives the results as YAML.
	ReportPath string
}

// Build schedules and builds the selected packages. Packages that fail in
// incremental mode make Build return ErrUnresolved after printing results.
func (a *App) Build(ctx context.Context, opts BuildOptions) (*build.Results, error) {
	ctx = a.Context(ctx)
	mode := build.ModeFull
	if opts.Incremental {
		mode = build.ModeIncremental
	}
	buildExec := build.NewExecutor(
		rpm.NewTito(a.runner, opts.OutputDir),
		rpm.NewYum(a.runner),
		rpm.NewTagger(a.runner),
		build.Options{Mode: mode, RetryWithTag: opts.RetryWithTag, InstallBuilt: opts.InstallBuilt},
	)

	cat, err := a.loadCatalog(ctx, opts.SourceRoots, opts.Packages)
	if err != nil {
		return nil, err
	}
	pkgs := cat.Packages()
	if mode == build.ModeFull {
		kept, skipped, err := buildExec.FilterTagged(ctx, pkgs)
		if err != nil {
			return nil, err
		}
		if len(skipped) > 0 {
			a.logger.Warn("Untagged packages left out of the build.", "count", len(skipped))
		}
		pkgs = kept
	}

	plan, err := a.schedule(pkgs)
	if err != nil {
		return nil, err
	}
	a.printer.Plan(plan)

	results, buildErr := buildExec.BuildAll(ctx, plan)
	if results != nil {
		a.printer.Build(results)
		if opts.ReportPath != "" {
			if err := writeReport(opts.ReportPath, func(w io.Writer) error {
				return report.WriteBuildYAML(w, results)
			}); err != nil {
				return results, err
			}
		}
	}
	if buildErr != nil {
		return results, buildErr
	}
	if failed := results.Failed(); len(failed) > 0 {
		return results, fmt.Errorf("%d packages failed to build: %w", len(failed), ErrUnresolved)
	}
	return results, nil
}
