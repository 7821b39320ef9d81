package cli

import (
	"errors"

	"github.com/vk/originci/internal/testplan"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks invalid flags, arguments or configuration files.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// toExitError maps err to the process exit code: 2 for usage and
// configuration errors, 1 for everything else.
func toExitError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	var usage *usageError
	if errors.As(err, &usage) || errors.Is(err, testplan.ErrConfiguration) {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return &ExitError{Code: 1, Message: err.Error()}
}
