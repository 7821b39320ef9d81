package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/originci/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ConfigPaths are HCL files or directories; built-in defaults apply
	// when empty.
	ConfigPaths []string
	Profile     string

	LogFormat string
	LogLevel  string
	NoColor   bool

	// RemoteHost, when set, runs every command over SSH.
	RemoteHost     string
	RemoteUser     string
	SSHKey         string
	KnownHostsFile string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Profile == "" {
		cfg.Profile = config.DefaultProfile
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	if cfg.RemoteHost != "" {
		if cfg.SSHKey == "" {
			return nil, fmt.Errorf("remote host %s requires an ssh key", cfg.RemoteHost)
		}
		if cfg.RemoteUser == "" {
			cfg.RemoteUser = "root"
		}
	}
	return &cfg, nil
}
