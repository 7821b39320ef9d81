package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/vk/originci/internal/shell"
)

// RunFunc produces the outcome of one scripted command.
type RunFunc func(ctx context.Context, cmd shell.Command) (shell.Result, error)

type fakeRule struct {
	match string
	fn    RunFunc
}

// FakeRunner is a scripted shell.Runner. The first rule whose match string
// is contained in the command line decides the outcome; unmatched
// commands succeed with empty output. It is safe for concurrent use.
type FakeRunner struct {
	mu    sync.Mutex
	rules []fakeRule
	calls []shell.Command
}

// NewFakeRunner returns a runner with no rules.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On scripts the results returned for matching commands, one per call.
// The last result repeats once the sequence is used up.
func (f *FakeRunner) On(match string, results ...shell.Result) *FakeRunner {
	var (
		mu sync.Mutex
		i  int
	)
	return f.OnFunc(match, func(context.Context, shell.Command) (shell.Result, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(results) == 0 {
			return shell.Result{}, nil
		}
		res := results[min(i, len(results)-1)]
		i++
		return res, nil
	})
}

// OnError makes matching commands fail to run.
func (f *FakeRunner) OnError(match string, err error) *FakeRunner {
	return f.OnFunc(match, func(context.Context, shell.Command) (shell.Result, error) {
		return shell.Result{}, err
	})
}

// OnFunc scripts matching commands with fn.
func (f *FakeRunner) OnFunc(match string, fn RunFunc) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{match: match, fn: fn})
	return f
}

// Run implements shell.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd shell.Command) (shell.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	var fn RunFunc
	for _, r := range f.rules {
		if strings.Contains(cmd.Line, r.match) {
			fn = r.fn
			break
		}
	}
	f.mu.Unlock()

	if fn == nil {
		return shell.Result{}, nil
	}
	return fn(ctx, cmd)
}

// Calls returns every command received so far, in arrival order.
func (f *FakeRunner) Calls() []shell.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shell.Command(nil), f.calls...)
}

// Lines returns the command lines received so far.
func (f *FakeRunner) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.Line
	}
	return lines
}

// Fail is shorthand for a result with the given output and exit code.
func Fail(output string, code int) shell.Result {
	return shell.Result{Output: output, ExitCode: code}
}

// Pass is shorthand for a successful result with the given output.
func Pass(output string) shell.Result {
	return shell.Result{Output: output}
}
