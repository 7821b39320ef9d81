package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/originci/internal/executor"
	"github.com/vk/originci/internal/failure"
	"github.com/vk/originci/internal/report"
	"github.com/vk/originci/internal/retry"
	"github.com/vk/originci/internal/testplan"
)

// TestOptions selects and parameterizes one test run.
type TestOptions struct {
	// Extended is a comma separated list of extended suites.
	Extended string
	Coverage bool
	Cucumber string
	Web      bool

	ExcludeBroker  bool
	ExcludeRuntime bool
	ExcludeSite    bool
	ExcludeRHC     bool

	RetryIndividually bool
	BrokerHostname    string

	// StatusAddr, when set, serves /health and /status during the run.
	StatusAddr string
	// ReportPath, when set, receives the report as YAML.
	ReportPath string
}

// Test builds the test plan, runs it with retries and prints the report.
// Unresolved failures make Test return ErrUnresolved alongside the report.
func (a *App) Test(ctx context.Context, opts TestOptions) (*retry.Report, error) {
	ctx = a.Context(ctx)
	tests := a.model.Tests

	queues, err := testplan.Build(ctx, testplan.Settings{
		Extended:          testplan.ParseExtended(opts.Extended),
		Coverage:          opts.Coverage,
		Cucumber:          opts.Cucumber,
		Web:               opts.Web,
		ExcludeBroker:     opts.ExcludeBroker,
		ExcludeRuntime:    opts.ExcludeRuntime,
		ExcludeSite:       opts.ExcludeSite,
		ExcludeRHC:        opts.ExcludeRHC,
		RetryIndividually: opts.RetryIndividually,
		BrokerHostname:    opts.BrokerHostname,
		Profile:           a.profile,
		Tests:             tests,
		Suites:            a.model.Extended,
	})
	if err != nil {
		return nil, err
	}

	narrower := failure.NewNarrower(failure.Options{
		CucumberOptions: a.profile.CucumberOptions,
		FeatureRoot:     tests.FeatureRoot,
	})
	engine := executor.New(a.runner, narrower, tests.BasePath)
	if opts.StatusAddr != "" {
		if err := a.startStatusServer(opts.StatusAddr, engine.Tracker()); err != nil {
			return nil, fmt.Errorf("failed to start status server: %w", err)
		}
		defer func() {
			if err := a.stopStatusServer(); err != nil {
				a.logger.Error("Failed to stop status server.", "error", err)
			}
		}()
	}

	coordinator := retry.New(engine)
	if tests.RetryMultiplier > 0 {
		coordinator.Multiplier = tests.RetryMultiplier
	}
	if tests.RetryPasses >= 0 {
		coordinator.MaxPasses = tests.RetryPasses
	}

	rep, runErr := coordinator.RunPlan(ctx, queues)
	if rep != nil {
		a.printer.Tests(rep)
		if opts.ReportPath != "" {
			if err := writeReport(opts.ReportPath, func(w io.Writer) error {
				return report.WriteTestsYAML(w, rep)
			}); err != nil {
				return rep, err
			}
		}
	}
	if runErr != nil {
		return rep, runErr
	}
	if rep.Failed() {
		return rep, fmt.Errorf("%d tests failed after %d retry passes: %w", len(rep.Unresolved), len(rep.Passes), ErrUnresolved)
	}
	return rep, nil
}

func writeReport(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	werr := write(f)
	cerr := f.Close()
	return errors.Join(werr, cerr)
}
