package rpm

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/originci/internal/shell"
)

// outputTailLines is how much command output is kept in error messages.
const outputTailLines = 20

// CommandError reports a tool that ran but did not succeed.
type CommandError struct {
	Line   string
	Result shell.Result
}

func (e *CommandError) Error() string {
	if e.Result.TimedOut {
		return fmt.Sprintf("command %q timed out", e.Line)
	}
	return fmt.Sprintf("command %q exited with status %d: %s", e.Line, e.Result.ExitCode, tail(e.Result.Output, outputTailLines))
}

func run(ctx context.Context, r shell.Runner, cmd shell.Command) (shell.Result, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return res, err
	}
	if !res.Success() {
		return res, &CommandError{Line: cmd.Line, Result: res}
	}
	return res, nil
}

func tail(output string, n int) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
