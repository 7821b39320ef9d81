package executor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/originci/internal/ctxlog"
	"github.com/vk/originci/internal/failure"
	"github.com/vk/originci/internal/shell"
	"github.com/vk/originci/internal/testplan"
)

// Engine executes test queues through a shell.Runner.
type Engine struct {
	runner   shell.Runner
	narrower *failure.Narrower
	dir      string
	tracker  *Tracker
}

// New creates an Engine. Units run in dir, which may be empty to use the
// runner's default.
func New(runner shell.Runner, narrower *failure.Narrower, dir string) *Engine {
	if narrower == nil {
		narrower = failure.NewNarrower(failure.Options{})
	}
	return &Engine{
		runner:   runner,
		narrower: narrower,
		dir:      dir,
		tracker:  NewTracker(),
	}
}

// Tracker exposes the pending units of the current run.
func (e *Engine) Tracker() *Tracker {
	return e.tracker
}

// RunQueues runs every queue on its own worker and returns the failures
// of all queues, queue by queue. An error is returned only when ctx is
// cancelled; failures gathered until then are returned with it.
func (e *Engine) RunQueues(ctx context.Context, queues []testplan.Queue) ([]failure.Record, error) {
	logger := ctxlog.FromContext(ctx)

	pending := make([][]string, len(queues))
	for i, q := range queues {
		for _, u := range q {
			pending[i] = append(pending[i], u.Title)
		}
	}
	e.tracker.reset(pending)

	results := make([][]failure.Record, len(queues))
	var g errgroup.Group
	for i, q := range queues {
		if len(q) == 0 {
			continue
		}
		i, q := i, q
		g.Go(func() error {
			failures, err := e.worker(ctx, i, q)
			results[i] = failures
			return err
		})
	}
	err := g.Wait()

	var merged []failure.Record
	for _, r := range results {
		merged = append(merged, r...)
	}
	logger.Info("All queues finished.", "queues", len(queues), "failures", len(merged))
	return merged, err
}

// RunQueue runs a single ad hoc queue on one worker.
func (e *Engine) RunQueue(ctx context.Context, queue testplan.Queue) ([]failure.Record, error) {
	return e.RunQueues(ctx, []testplan.Queue{queue})
}

// worker is the processing loop for a single queue.
func (e *Engine) worker(ctx context.Context, queueID int, queue testplan.Queue) ([]failure.Record, error) {
	ctx = ctxlog.With(ctx, "queue", queueID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "units", len(queue))

	var failures []failure.Record
	for _, u := range queue {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		unitCtx := ctxlog.With(ctx, "title", u.Title)
		unitLogger := ctxlog.FromContext(unitCtx)

		recs, err := e.runUnit(unitCtx, u)
		if err != nil {
			return failures, err
		}
		failures = append(failures, recs...)

		remaining, elapsed := e.tracker.done(queueID, u.Title)
		if len(remaining) > 0 {
			unitLogger.Info("Still running tests.", "elapsed", elapsed.Round(time.Second), "pending", remaining)
		}
	}

	logger.Debug("Worker finished.", "failures", len(failures))
	return failures, nil
}

// runUnit executes u and returns its failure records, if any.
func (e *Engine) runUnit(ctx context.Context, u testplan.Unit) ([]failure.Record, error) {
	logger := ctxlog.FromContext(ctx)
	rec := failure.Record{
		Title:             u.Title,
		Command:           u.Command,
		RetryIndividually: u.RetryIndividually,
		Timeout:           u.Timeout,
	}

	logger.Info("Running test unit.", "command", u.Command, "timeout", u.Timeout)
	res, err := e.runner.Run(ctx, shell.Command{Line: u.Command, Dir: e.dir, Timeout: u.Timeout})
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Error("Test unit could not be run.", "error", err)
		return []failure.Record{rec}, nil
	case res.TimedOut:
		logger.Warn("Test unit timed out.", "timeout", u.Timeout)
		return []failure.Record{rec}, nil
	case res.ExitCode != 0:
		recs := e.narrower.Narrow(rec, res.Output)
		logger.Warn("Test unit failed.", "exit_code", res.ExitCode, "duration", res.Duration, "retries", len(recs))
		logger.Debug("Test unit output.", "output", res.Output)
		return recs, nil
	default:
		logger.Info("Test unit passed.", "duration", res.Duration)
		return nil, nil
	}
}

// UnitsFrom turns failure records back into runnable units.
func UnitsFrom(records []failure.Record) testplan.Queue {
	q := make(testplan.Queue, len(records))
	for i, r := range records {
		q[i] = testplan.Unit{
			Title:             r.Title,
			Command:           r.Command,
			RetryIndividually: r.RetryIndividually,
			Timeout:           r.Timeout,
		}
	}
	return q
}
