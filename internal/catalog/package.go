package catalog

import (
	"fmt"
	"slices"
)

// Package is an immutable description of one buildable source package.
type Package struct {
	Name     string
	Version  string
	Dir      string
	SpecFile string
	// BuildRequires are package names needed only to build this package.
	BuildRequires []string
	// Requires are package names needed at run time.
	Requires []string
}

// InstallName is the name used when installing a built artifact of the
// package; artifact files are matched by this prefix.
func (p Package) InstallName() string {
	return p.Name
}

// RequiresToBuild reports whether name is one of the build requirements.
func (p Package) RequiresToBuild(name string) bool {
	return slices.Contains(p.BuildRequires, name)
}

// Validate checks the invariants of a single package.
func (p Package) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("package in %s has no name", p.Dir)
	}
	if p.RequiresToBuild(p.Name) {
		return fmt.Errorf("package %q lists itself as a build requirement", p.Name)
	}
	return nil
}
