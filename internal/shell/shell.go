package shell

import (
	"context"
	"strings"
	"time"
)

// Command is one shell line to execute.
type Command struct {
	Line string
	// Dir is the working directory; empty means the runner's default.
	Dir string
	// Timeout bounds the run; zero means no limit beyond ctx.
	Timeout time.Duration
}

// Result is the outcome of a finished or timed out command.
type Result struct {
	// Output holds stdout and stderr interleaved as written.
	Output   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Success reports whether the command exited zero within its timeout.
func (r Result) Success() bool {
	return !r.TimedOut && r.ExitCode == 0
}

// Runner executes commands. An error means the command could not be run
// at all; a command that ran and failed is reported through Result.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Quote wraps s in single quotes for sh.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteAll quotes every element and joins them with spaces.
func QuoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = Quote(s)
	}
	return strings.Join(quoted, " ")
}

// withTimeout derives the context a single command runs under.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}
