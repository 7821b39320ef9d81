package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/originci/internal/failure"
	"github.com/vk/originci/internal/testplan"
)

// fakeEngine fails the first pass with initial and then replays passes.
type fakeEngine struct {
	initial   []failure.Record
	passes    [][]failure.Record
	passErr   error
	retryRuns []testplan.Queue
}

func (e *fakeEngine) RunQueues(context.Context, []testplan.Queue) ([]failure.Record, error) {
	return e.initial, nil
}

func (e *fakeEngine) RunQueue(_ context.Context, q testplan.Queue) ([]failure.Record, error) {
	e.retryRuns = append(e.retryRuns, q)
	n := len(e.retryRuns) - 1
	if n < len(e.passes) {
		return e.passes[n], e.passErr
	}
	return nil, e.passErr
}

func tenUnits() []testplan.Queue {
	queues := make([]testplan.Queue, testplan.QueueCount)
	for i := 0; i < 10; i++ {
		queues[i%testplan.QueueCount] = append(queues[i%testplan.QueueCount], testplan.Unit{Title: fmt.Sprintf("unit %d", i)})
	}
	return queues
}

func records(n int) []failure.Record {
	out := make([]failure.Record, n)
	for i := range out {
		out[i] = failure.Record{Title: fmt.Sprintf("failure %d", i), Command: fmt.Sprintf("cmd %d", i)}
	}
	return out
}

func TestRunPlan_Threshold(t *testing.T) {
	t.Run("above threshold fails without retrying", func(t *testing.T) {
		engine := &fakeEngine{initial: records(81)}
		report, err := New(engine).RunPlan(context.Background(), tenUnits())

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInfrastructureOverload))
		var oerr *InfrastructureOverloadError
		require.True(t, errors.As(err, &oerr))
		assert.Equal(t, 81, oerr.Failures)
		assert.Equal(t, 80, oerr.Threshold)

		assert.Equal(t, 80, report.Threshold)
		assert.Empty(t, report.Passes)
		assert.Empty(t, engine.retryRuns)
		assert.True(t, report.Failed())
	})

	t.Run("below threshold retries", func(t *testing.T) {
		engine := &fakeEngine{initial: records(79), passes: [][]failure.Record{records(3), records(1)}}
		report, err := New(engine).RunPlan(context.Background(), tenUnits())

		require.NoError(t, err)
		require.Len(t, engine.retryRuns, 2)
		assert.Len(t, engine.retryRuns[0], 79)
		assert.Len(t, engine.retryRuns[1], 3)
		assert.Len(t, report.Passes, 2)
		assert.Equal(t, records(1), report.Unresolved)
		assert.Len(t, report.Initial, 79)
		assert.True(t, report.Failed())
	})

	t.Run("duplicates do not count against the threshold", func(t *testing.T) {
		initial := append(records(80), records(80)...)
		engine := &fakeEngine{initial: initial}
		report, err := New(engine).RunPlan(context.Background(), tenUnits())

		require.NoError(t, err)
		require.Len(t, engine.retryRuns, 1)
		assert.Len(t, engine.retryRuns[0], 80)
		assert.False(t, report.Failed())
	})

	t.Run("configurable multiplier", func(t *testing.T) {
		c := New(&fakeEngine{initial: records(21)})
		c.Multiplier = 2
		_, err := c.RunPlan(context.Background(), tenUnits())
		assert.True(t, errors.Is(err, ErrInfrastructureOverload))
	})
}

func TestRunPlan_StopsEarly(t *testing.T) {
	engine := &fakeEngine{initial: records(2), passes: [][]failure.Record{nil, records(2)}}
	report, err := New(engine).RunPlan(context.Background(), tenUnits())

	require.NoError(t, err)
	assert.Len(t, engine.retryRuns, 1, "second pass must not run after a clean pass")
	require.Len(t, report.Passes, 1)
	assert.Equal(t, 1, report.Passes[0].Number)
	assert.Equal(t, 2, report.Passes[0].Ran)
	assert.Empty(t, report.Unresolved)
	assert.False(t, report.Failed())
}

func TestRunPlan_NoFailures(t *testing.T) {
	engine := &fakeEngine{}
	report, err := New(engine).RunPlan(context.Background(), tenUnits())
	require.NoError(t, err)
	assert.Empty(t, engine.retryRuns)
	assert.Equal(t, 10, report.Units)
	assert.False(t, report.Failed())
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
}

func TestRunPlan_MaxPasses(t *testing.T) {
	engine := &fakeEngine{initial: records(1), passes: [][]failure.Record{records(1), records(1), records(1)}}
	c := New(engine)
	c.MaxPasses = 3
	report, err := c.RunPlan(context.Background(), tenUnits())
	require.NoError(t, err)
	assert.Len(t, report.Passes, 3)

	engine = &fakeEngine{initial: records(1)}
	c = New(engine)
	c.MaxPasses = 0
	report, err = c.RunPlan(context.Background(), tenUnits())
	require.NoError(t, err)
	assert.Empty(t, engine.retryRuns)
	assert.True(t, report.Failed())
}

func TestRunPlan_CancelledDuringRetry(t *testing.T) {
	engine := &fakeEngine{initial: records(1), passes: [][]failure.Record{records(1)}, passErr: context.Canceled}
	report, err := New(engine).RunPlan(context.Background(), tenUnits())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, report.Passes, 1)
	assert.Len(t, engine.retryRuns, 1)
}
