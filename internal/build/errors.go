package build

import (
	"errors"
	"fmt"
)

// ErrBuildFailed is the kind of every *BuildFailure.
var ErrBuildFailed = errors.New("build failed")

// Stage names the step of a package build that failed.
type Stage string

const (
	StagePrerequisites Stage = "prerequisites"
	StageBuild         Stage = "build"
	StageInstall       Stage = "install"
)

// BuildFailure reports a failure that aborted a full build.
type BuildFailure struct {
	// Package is empty for StagePrerequisites.
	Package string
	Phase   int
	Stage   Stage
	Err     error
}

func (e *BuildFailure) Error() string {
	if e == nil {
		return ""
	}
	if e.Package == "" {
		return fmt.Sprintf("%s: %s: %v", ErrBuildFailed, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: package %s (phase %d): %s: %v", ErrBuildFailed, e.Package, e.Phase, e.Stage, e.Err)
}

func (e *BuildFailure) Unwrap() []error { return []error{ErrBuildFailed, e.Err} }
