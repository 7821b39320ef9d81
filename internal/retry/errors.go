package retry

import (
	"errors"
	"fmt"
)

// ErrInfrastructureOverload is the kind of every *InfrastructureOverloadError.
var ErrInfrastructureOverload = errors.New("too many test failures")

// InfrastructureOverloadError reports a first pass with more failures
// than the retry threshold allows.
type InfrastructureOverloadError struct {
	Failures  int
	Threshold int
}

func (e *InfrastructureOverloadError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %d failures exceed retry threshold %d", ErrInfrastructureOverload, e.Failures, e.Threshold)
}

func (e *InfrastructureOverloadError) Unwrap() error { return ErrInfrastructureOverload }
