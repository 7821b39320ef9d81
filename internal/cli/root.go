package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vk/originci/internal/app"
	"github.com/vk/originci/internal/hcl"
)

// runner carries the state every subcommand needs to build an App.
type runner struct {
	flags globalFlags
	outW  io.Writer
	errW  io.Writer
}

// newApp validates the global flags and constructs the application.
func (r *runner) newApp(ctx context.Context) (*app.App, error) {
	cfg, err := r.flags.config()
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(ctx, r.outW, r.errW, cfg, hcl.NewLoader())
	if err != nil {
		return nil, &usageError{err: err}
	}
	return a, nil
}

// withApp runs fn with a freshly built App and closes it afterwards.
func (r *runner) withApp(cmd *cobra.Command, fn func(context.Context, *app.App) error) error {
	ctx := cmd.Context()
	a, err := r.newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			fmt.Fprintf(r.errW, "failed to shut down cleanly: %v\n", cerr)
		}
	}()
	return fn(ctx, a)
}

func newRootCommand(outW, errW io.Writer) *cobra.Command {
	r := &runner{outW: outW, errW: errW}
	cmd := &cobra.Command{
		Use:   "originci",
		Short: "Build an RPM package set in dependency order and run its test suites",
		Long: `originci schedules interdependent source packages into build phases,
builds them with tito, and runs the test suites across four parallel queues
with failure narrowing and bounded retries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(outW)
	cmd.SetErr(errW)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	r.flags.register(cmd)
	cmd.AddCommand(
		newPhasesCommand(r),
		newBuildCommand(r),
		newTestCommand(r),
		newInstallRequiresCommand(r),
	)
	return cmd
}

// Execute runs the command tree with args. SIGINT and SIGTERM cancel the
// context. Every failure is returned as an *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(outW, errW)
	cmd.SetArgs(args)
	return toExitError(cmd.ExecuteContext(ctx))
}
