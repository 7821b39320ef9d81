package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vk/originci/internal/app"
	"github.com/vk/originci/internal/rpm"
)

func newBuildCommand(r *runner) *cobra.Command {
	var opts app.BuildOptions
	cmd := &cobra.Command{
		Use:   "build SOURCE_ROOT...",
		Short: "Build and install the packages under the source roots phase by phase",
		Long: `Build every package under the source roots in dependency order.

A full build installs external prerequisites first, skips untagged packages
and stops at the first failure. An incremental build keeps going: it installs
missing build requirements of failed packages and, with --retry-with-tag,
re-tags and rebuilds them once.`,
		Args: requireSourceRoots,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.RetryWithTag && !opts.Incremental {
				return &usageError{err: errors.New("--retry-with-tag requires --incremental")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SourceRoots = args
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				_, err := a.Build(ctx, opts)
				return err
			})
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.Packages, "package", nil, "Restrict the build to these packages (repeatable)")
	f.BoolVar(&opts.Incremental, "incremental", false, "Continue past failures and recover where possible")
	f.BoolVar(&opts.RetryWithTag, "retry-with-tag", false, "Re-tag and rebuild packages that fail to build")
	f.BoolVar(&opts.InstallBuilt, "install-built", false, "Install every built package, not only later-phase prerequisites")
	f.StringVar(&opts.OutputDir, "output-dir", rpm.DefaultOutputDir, "Directory tito writes packages to")
	f.StringVar(&opts.ReportPath, "report", "", "Write build results as YAML to this file")
	return cmd
}
