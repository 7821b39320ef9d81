package testplan

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the kind of every *ConfigurationError.
var ErrConfiguration = errors.New("invalid test configuration")

// ConfigurationError reports settings that cannot produce a plan.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrConfiguration, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration, e.Msg)
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

func configErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}
