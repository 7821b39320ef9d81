package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vk/originci/internal/app"
)

func newInstallRequiresCommand(r *runner) *cobra.Command {
	var opts app.InstallRequiresOptions
	cmd := &cobra.Command{
		Use:   "install-requires SOURCE_ROOT...",
		Short: "Install the build and run time requirements of the packages under the source roots",
		Args:  requireSourceRoots,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SourceRoots = args
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				_, err := a.InstallRequires(ctx, opts)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&opts.SkipBroken, "skip-broken", false, "Pass --skip-broken to yum")
	return cmd
}
