package retry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vk/originci/internal/ctxlog"
	"github.com/vk/originci/internal/executor"
	"github.com/vk/originci/internal/failure"
	"github.com/vk/originci/internal/testplan"
)

const (
	DefaultMultiplier = 8
	DefaultMaxPasses  = 2
)

// Engine runs queues; *executor.Engine implements it.
type Engine interface {
	RunQueues(ctx context.Context, queues []testplan.Queue) ([]failure.Record, error)
	RunQueue(ctx context.Context, queue testplan.Queue) ([]failure.Record, error)
}

// Coordinator drives the first pass and the retry passes.
type Coordinator struct {
	engine Engine
	// Multiplier scales the unit count into the retry threshold.
	Multiplier int
	// MaxPasses bounds the number of retry passes after the first run.
	MaxPasses int
}

// New returns a coordinator with the default multiplier and pass count.
func New(engine Engine) *Coordinator {
	return &Coordinator{
		engine:     engine,
		Multiplier: DefaultMultiplier,
		MaxPasses:  DefaultMaxPasses,
	}
}

// Pass summarizes one retry pass.
type Pass struct {
	Number   int              `yaml:"number"`
	Ran      int              `yaml:"ran"`
	Failures []failure.Record `yaml:"failures"`
	Duration time.Duration    `yaml:"duration"`
}

// Report is the outcome of a whole run.
type Report struct {
	RunID     string `yaml:"run_id"`
	Units     int    `yaml:"units"`
	Threshold int    `yaml:"threshold"`
	// Initial holds the deduplicated failures of the first pass.
	Initial []failure.Record `yaml:"initial_failures"`
	Passes  []Pass           `yaml:"passes"`
	// Unresolved holds the failures left after the last pass.
	Unresolved []failure.Record `yaml:"unresolved"`
	Duration   time.Duration    `yaml:"duration"`
}

// Failed reports whether any failure remains unresolved.
func (r *Report) Failed() bool {
	return len(r.Unresolved) > 0
}

// Threshold returns the failure count above which no retry is attempted.
func (c *Coordinator) Threshold(units int) int {
	m := c.Multiplier
	if m <= 0 {
		m = DefaultMultiplier
	}
	return m * units
}

// RunPlan runs queues and retries failures. It returns an
// *InfrastructureOverloadError together with the report when the first
// pass fails too broadly, and ctx.Err() if the run is cancelled.
func (c *Coordinator) RunPlan(ctx context.Context, queues []testplan.Queue) (*Report, error) {
	report := &Report{
		RunID: uuid.NewString(),
		Units: testplan.Count(queues),
	}
	report.Threshold = c.Threshold(report.Units)

	ctx = ctxlog.With(ctx, "run_id", report.RunID)
	logger := ctxlog.FromContext(ctx)

	start := time.Now()
	defer func() { report.Duration = time.Since(start) }()

	logger.Info("Starting test run.", "units", report.Units, "queues", len(queues), "threshold", report.Threshold)
	failures, err := c.engine.RunQueues(ctx, queues)
	failures = failure.Uniq(failures)
	report.Initial = failures
	report.Unresolved = failures
	if err != nil {
		return report, err
	}

	if len(failures) > report.Threshold {
		logger.Error("Too many failures to retry.", "failures", len(failures), "threshold", report.Threshold)
		return report, &InfrastructureOverloadError{Failures: len(failures), Threshold: report.Threshold}
	}

	for n := 1; n <= c.MaxPasses && len(failures) > 0; n++ {
		logger.Info("Retrying failures.", "pass", n, "failures", len(failures))
		passStart := time.Now()
		next, err := c.engine.RunQueue(ctx, executor.UnitsFrom(failures))
		next = failure.Uniq(next)
		report.Passes = append(report.Passes, Pass{
			Number:   n,
			Ran:      len(failures),
			Failures: next,
			Duration: time.Since(passStart),
		})
		failures = next
		report.Unresolved = failures
		if err != nil {
			return report, err
		}
	}

	if report.Failed() {
		logger.Warn("Test run finished with unresolved failures.", "unresolved", len(report.Unresolved))
	} else {
		logger.Info("Test run passed.", "retry_passes", len(report.Passes))
	}
	return report, nil
}
