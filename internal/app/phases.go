package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/originci/internal/catalog"
	"github.com/vk/originci/internal/scheduler"
)

// ErrUnresolved is returned when a run completes but leaves failed
// packages or tests behind.
var ErrUnresolved = errors.New("run finished with failures")

// PhasesOptions selects the source trees to plan.
type PhasesOptions struct {
	SourceRoots []string
	// Packages, when set, restricts the plan to these package names.
	Packages []string
}

// Phases loads the catalog, schedules it and prints the plan.
func (a *App) Phases(ctx context.Context, opts PhasesOptions) (*scheduler.Plan, error) {
	ctx = a.Context(ctx)
	cat, err := a.loadCatalog(ctx, opts.SourceRoots, opts.Packages)
	if err != nil {
		return nil, err
	}
	plan, err := a.schedule(cat.Packages())
	if err != nil {
		return nil, err
	}
	a.printer.Plan(plan)
	return plan, nil
}

func (a *App) loadCatalog(ctx context.Context, roots, only []string) (*catalog.Catalog, error) {
	if len(roots) == 0 {
		return nil, errors.New("no source roots given")
	}
	cat, err := catalog.Load(ctx, catalog.Options{
		SCLPrefix: a.profile.SCLPrefix,
		Ignore:    a.profile.IgnorePackages,
	}, roots...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(only) > 0 {
		wanted := make(map[string]bool, len(only))
		for _, name := range only {
			pkg, ok := cat.Get(name)
			if !ok {
				return nil, fmt.Errorf("package %q not found in source roots", name)
			}
			a.logger.Debug("Selected package.", "package", pkg.Name, "version", pkg.Version, "dir", pkg.Dir)
			wanted[name] = true
		}
		cat = cat.Filter(func(p catalog.Package) bool { return wanted[p.Name] })
	}
	a.logger.Info("Loaded package catalog.", "packages", cat.Len(), "profile", a.profile.Name)
	return cat, nil
}

func (a *App) schedule(pkgs []catalog.Package) (*scheduler.Plan, error) {
	plan, err := scheduler.SchedulePhases(pkgs, scheduler.Options{SkipPrereqs: a.profile.SkipPrereqs})
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Scheduled build phases.", "phases", len(plan.Phases), "prerequisites", len(plan.ExternalPrereqs))
	return plan, nil
}
