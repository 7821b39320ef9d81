package build

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/vk/originci/internal/catalog"
	"github.com/vk/originci/internal/ctxlog"
	"github.com/vk/originci/internal/scheduler"
)

// Mode selects the failure policy of BuildAll.
type Mode int

const (
	// ModeFull aborts on the first failure.
	ModeFull Mode = iota
	// ModeIncremental records failures and keeps going.
	ModeIncremental
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeIncremental:
		return "incremental"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options configures an Executor.
type Options struct {
	Mode Mode
	// RetryWithTag re-tags and rebuilds once a package that failed for
	// reasons other than missing requirements. Incremental mode only.
	RetryWithTag bool
	// InstallBuilt installs every built package, not only those later
	// phases need.
	InstallBuilt bool
}

// Executor builds the packages of a plan sequentially.
type Executor struct {
	builder   Builder
	installer Installer
	tagger    VersionTagger
	opts      Options
}

// NewExecutor creates an Executor. tagger may be nil when RetryWithTag is
// off and untagged packages need not be filtered.
func NewExecutor(builder Builder, installer Installer, tagger VersionTagger, opts Options) *Executor {
	return &Executor{
		builder:   builder,
		installer: installer,
		tagger:    tagger,
		opts:      opts,
	}
}

// FilterTagged drops packages that were never tagged for release; tito
// cannot build them from scratch.
func (e *Executor) FilterTagged(ctx context.Context, pkgs []catalog.Package) (kept, skipped []catalog.Package, err error) {
	if e.tagger == nil {
		return pkgs, nil, nil
	}
	logger := ctxlog.FromContext(ctx)
	for _, pkg := range pkgs {
		ok, err := e.tagger.Tagged(ctx, pkg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check tags of %s: %w", pkg.Name, err)
		}
		if !ok {
			logger.Warn("Skipping package since it is not tagged.", "package", pkg.Name, "dir", pkg.Dir)
			skipped = append(skipped, pkg)
			continue
		}
		kept = append(kept, pkg)
	}
	return kept, skipped, nil
}

// BuildAll installs the plan's external prerequisites and builds every
// phase in order. In ModeFull the first failure stops the walk and is
// returned as a *BuildFailure together with the results gathered so far.
func (e *Executor) BuildAll(ctx context.Context, plan *scheduler.Plan) (*Results, error) {
	ctx = ctxlog.With(ctx, "mode", e.opts.Mode.String())
	logger := ctxlog.FromContext(ctx)

	results := &Results{}
	if len(plan.ExcludedPrereqs) > 0 {
		logger.Info("Excluded RPM prerequisites.", "packages", plan.ExcludedPrereqs)
	}
	if len(plan.ExternalPrereqs) > 0 {
		logger.Info("Installing prerequisites.", "packages", plan.ExternalPrereqs)
		if err := e.installer.InstallNames(ctx, plan.ExternalPrereqs, false); err != nil {
			return results, &BuildFailure{Stage: StagePrerequisites, Err: err}
		}
		results.Prerequisites = plan.ExternalPrereqs
	}
	if len(plan.LaterPhasePrereqs) > 0 {
		logger.Info("Packages that are prerequisites for later phases.", "packages", plan.LaterPhasePrereqs)
	}

	inPlan := make(map[string]bool, plan.Len())
	for _, pkg := range plan.Packages() {
		inPlan[pkg.Name] = true
	}

	for i, phase := range plan.Phases {
		phaseNum := i + 1
		logger.Info("Building phase.", "phase", phaseNum, "packages", phase.Names())
		for _, pkg := range phase {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			res, err := e.buildPackage(ctx, plan, pkg, phaseNum, inPlan)
			results.Packages = append(results.Packages, res)
			if err != nil {
				return results, err
			}
		}
	}

	logger.Info("Build finished.", "built", len(results.Built()), "failed", len(results.Failed()))
	return results, nil
}

func (e *Executor) buildPackage(ctx context.Context, plan *scheduler.Plan, pkg catalog.Package, phase int, inPlan map[string]bool) (Result, error) {
	ctx = ctxlog.With(ctx, "package", pkg.Name, "phase", phase)
	logger := ctxlog.FromContext(ctx)

	res := Result{Package: pkg, Phase: phase}
	start := time.Now()
	artifacts, err := e.builder.Build(ctx, pkg)
	res.Attempts++
	if err != nil {
		logger.Error("Package failed to build.", "error", err)
		if e.opts.Mode == ModeFull {
			res.Status, res.Err = StatusFailed, err
			return res, &BuildFailure{Package: pkg.Name, Phase: phase, Stage: StageBuild, Err: err}
		}
		artifacts, err = e.recoverFailed(ctx, pkg, inPlan, &res, err)
		if err != nil {
			return res, nil
		}
	} else {
		res.Status = StatusBuilt
	}
	res.Artifacts = artifacts
	logger.Info("Package built.", "artifacts", len(artifacts), "attempts", res.Attempts, "duration", time.Since(start))

	if !plan.Needs(pkg.Name) && !e.opts.InstallBuilt {
		return res, nil
	}
	logger.Info("Installing built package.")
	if err := e.installer.Install(ctx, pkg, artifacts); err != nil {
		logger.Error("Unable to install package.", "error", err)
		res.Status, res.Err = StatusFailed, err
		if e.opts.Mode == ModeFull {
			return res, &BuildFailure{Package: pkg.Name, Phase: phase, Stage: StageInstall, Err: err}
		}
		return res, nil
	}
	res.Installed = true
	return res, nil
}

// recoverFailed applies incremental recovery to a failed build. It returns the
// artifacts of a successful rebuild, or the error that leaves the package
// unbuilt with res already describing the outcome.
func (e *Executor) recoverFailed(ctx context.Context, pkg catalog.Package, inPlan map[string]bool, res *Result, buildErr error) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	external := lo.Filter(pkg.BuildRequires, func(name string, _ int) bool { return !inPlan[name] })
	var missing []string
	if len(external) > 0 {
		var err error
		missing, err = e.installer.Missing(ctx, external)
		if err != nil {
			res.Status, res.Err = StatusFailed, errors.Join(buildErr, err)
			return nil, res.Err
		}
	}
	if len(missing) > 0 {
		logger.Warn("Installing missing build requirements.", "packages", missing)
		if err := e.installer.InstallNames(ctx, missing, true); err != nil {
			res.Status, res.Err = StatusFailed, errors.Join(buildErr, err)
			return nil, res.Err
		}
		res.Status, res.Err = StatusDepsInstalled, buildErr
		return nil, buildErr
	}

	if !e.opts.RetryWithTag || e.tagger == nil {
		logger.Warn("Package failed to build.")
		res.Status, res.Err = StatusFailed, buildErr
		return nil, buildErr
	}

	commit, err := e.tagger.LatestCommit(ctx, pkg)
	if err != nil {
		res.Status, res.Err = StatusFailed, errors.Join(buildErr, err)
		return nil, res.Err
	}
	next := e.tagger.NextVersion(pkg.Version, commit)
	logger.Info("Retagging package.", "version", pkg.Version, "next_version", next, "commit", commit)
	if err := e.tagger.Tag(ctx, pkg, next); err != nil {
		res.Status, res.Err = StatusFailed, errors.Join(buildErr, err)
		return nil, res.Err
	}

	artifacts, err := e.builder.Build(ctx, pkg)
	res.Attempts++
	if err != nil {
		logger.Error("Package failed to build after retagging.", "error", err)
		res.Status, res.Err = StatusFailed, err
		return nil, err
	}
	res.Status = StatusRetagged
	return artifacts, nil
}
