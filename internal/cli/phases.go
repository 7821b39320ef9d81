package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vk/originci/internal/app"
)

var errNoSourceRoots = errors.New("at least one SOURCE_ROOT is required")

func requireSourceRoots(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &usageError{err: errNoSourceRoots}
	}
	return nil
}

func newPhasesCommand(r *runner) *cobra.Command {
	var packages []string
	cmd := &cobra.Command{
		Use:   "phases SOURCE_ROOT...",
		Short: "Print the build phases of the packages under the source roots",
		Args:  requireSourceRoots,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				_, err := a.Phases(ctx, app.PhasesOptions{SourceRoots: args, Packages: packages})
				return err
			})
		},
	}
	cmd.Flags().StringSliceVar(&packages, "package", nil, "Restrict the plan to these packages (repeatable)")
	return cmd
}
