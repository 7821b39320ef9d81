package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/originci/internal/config"
	"github.com/vk/originci/internal/ctxlog"
	"github.com/vk/originci/internal/report"
	"github.com/vk/originci/internal/shell"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	cfg     *Config
	model   *config.Model
	profile *config.Profile
	runner  shell.Runner
	printer *report.Printer

	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithRunner replaces the runner chosen from the configuration.
func WithRunner(r shell.Runner) Option {
	return func(a *App) { a.runner = r }
}

// NewApp is the constructor for the main application. Reports are written
// to outW and logs to logW. Configuration is loaded with loader.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, cfg.NoColor, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ConfigPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	profile, err := model.Profile(cfg.Profile)
	if err != nil {
		return nil, err
	}
	logger.Debug("Configuration loaded.", "profile", profile.Name, "extended_suites", len(model.Extended))

	a := &App{
		outW:    outW,
		logger:  logger,
		cfg:     cfg,
		model:   model,
		profile: profile,
		printer: report.NewPrinter(outW, !cfg.NoColor),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.runner == nil {
		a.runner = a.newRunner()
	}
	return a, nil
}

func (a *App) newRunner() shell.Runner {
	if a.cfg.RemoteHost == "" {
		return shell.NewLocal("")
	}
	a.logger.Info("Commands will run on remote host.", "host", a.cfg.RemoteHost, "user", a.cfg.RemoteUser)
	return shell.NewSSH(shell.SSHConfig{
		Host:           a.cfg.RemoteHost,
		User:           a.cfg.RemoteUser,
		KeyFile:        a.cfg.SSHKey,
		KnownHostsFile: a.cfg.KnownHostsFile,
	})
}

// Context returns ctx carrying the application logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Close releases the runner connection and stops the status server.
func (a *App) Close() error {
	err := a.stopStatusServer()
	if c, ok := a.runner.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
