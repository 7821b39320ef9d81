package cli

import (
	"github.com/spf13/cobra"

	"github.com/vk/originci/internal/app"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPaths []string
	profile     string
	logLevel    string
	logFormat   string
	noColor     bool
	remoteHost  string
	remoteUser  string
	sshKey      string
	knownHosts  string
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringSliceVarP(&f.configPaths, "config", "c", nil, "HCL configuration file or directory (repeatable)")
	pf.StringVarP(&f.profile, "profile", "p", "fedora", "Configuration profile to use")
	pf.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'")
	pf.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&f.remoteHost, "remote-host", "", "Run every command on this host over SSH")
	pf.StringVar(&f.remoteUser, "remote-user", "root", "SSH user for --remote-host")
	pf.StringVar(&f.sshKey, "ssh-key", "", "Private key for --remote-host")
	pf.StringVar(&f.knownHosts, "known-hosts", "", "known_hosts file used to verify --remote-host")
}

func (f *globalFlags) config() (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ConfigPaths:    f.configPaths,
		Profile:        f.profile,
		LogFormat:      f.logFormat,
		LogLevel:       f.logLevel,
		NoColor:        f.noColor,
		RemoteHost:     f.remoteHost,
		RemoteUser:     f.remoteUser,
		SSHKey:         f.sshKey,
		KnownHostsFile: f.knownHosts,
	})
	if err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}
