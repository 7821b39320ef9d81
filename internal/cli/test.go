package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vk/originci/internal/app"
)

func newTestCommand(r *runner) *cobra.Command {
	var opts app.TestOptions
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the test suites across four parallel queues with retries",
		Long: `Run the selected test units across four parallel queues. Failures are
narrowed to the smallest reproducible unit and retried in up to two
sequential passes. At most one of --extended, --coverage, --cucumber and
--web may be given; without any, the default suites run.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, a *app.App) error {
				_, err := a.Test(ctx, opts)
				return err
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Extended, "extended", "", "Comma separated extended suites, e.g. broker,runtime")
	f.BoolVar(&opts.Coverage, "coverage", false, "Run the coverage units")
	f.StringVar(&opts.Cucumber, "cucumber", "", "Run a single cucumber suite by tag")
	f.BoolVar(&opts.Web, "web", false, "Run the website tests")
	f.BoolVar(&opts.ExcludeBroker, "exclude-broker", false, "Leave the broker units out of the default run")
	f.BoolVar(&opts.ExcludeRuntime, "exclude-runtime", false, "Leave the runtime units out of the default run")
	f.BoolVar(&opts.ExcludeSite, "exclude-site", false, "Leave the site units out of the default run")
	f.BoolVar(&opts.ExcludeRHC, "exclude-rhc", false, "Leave the rhc units out of the default run")
	f.BoolVar(&opts.RetryIndividually, "retry-individually", false, "Retry every failed scenario or test method on its own")
	f.StringVar(&opts.BrokerHostname, "broker-hostname", "localhost", "Broker hostname passed to extended suites")
	f.StringVar(&opts.StatusAddr, "status-addr", "", "Serve /health and /status on this address during the run")
	f.StringVar(&opts.ReportPath, "report", "", "Write the test report as YAML to this file")
	return cmd
}
