package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/vk/originci/internal/ctxlog"
)

// Local runs commands with sh -c on the current host.
type Local struct {
	// Dir is used when a Command carries no directory.
	Dir string
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// NewLocal returns a runner rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{Dir: dir}
}

// Run executes cmd and waits for it to exit or time out. On timeout the
// whole process group is killed.
func (l *Local) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Line == "" {
		return Result{}, fmt.Errorf("empty command line")
	}

	runCtx, cancel := withTimeout(ctx, cmd.Timeout)
	defer cancel()

	c := exec.Command("sh", "-c", cmd.Line)
	c.Dir = l.Dir
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	if l.Env != nil {
		c.Env = l.Env
	}
	setProcessGroup(c)
	c.WaitDelay = 5 * time.Second

	var output bytes.Buffer
	c.Stdout = &output
	c.Stderr = &output

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running local command.", "command", cmd.Line, "dir", c.Dir, "timeout", cmd.Timeout)

	start := time.Now()
	if err := c.Start(); err != nil {
		return Result{}, fmt.Errorf("failed to start command: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Wait()
	}()

	var err error
	select {
	case <-runCtx.Done():
		killProcessGroup(c)
		<-done
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("command cancelled: %w", ctx.Err())
		}
		logger.Warn("Command timed out.", "command", cmd.Line, "timeout", cmd.Timeout)
		return Result{Output: output.String(), ExitCode: -1, TimedOut: true, Duration: time.Since(start)}, nil
	case err = <-done:
	}

	res := Result{Output: output.String(), Duration: time.Since(start)}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("failed to execute command: %w", err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}
