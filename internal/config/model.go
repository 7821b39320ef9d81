package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of the entire
// application configuration.
type Model struct {
	Profiles map[string]*Profile
	Tests    *TestSettings
	// Extended holds extended test suites declared in configuration, keyed
	// by the name used to select them.
	Extended map[string]*Suite
}

// Profile selects the package lists and command options for one target
// distribution.
type Profile struct {
	Name string
	// IgnorePackages are never built or installed.
	IgnorePackages []string
	// SkipPrereqs are regular expressions; matching external prerequisites
	// are not installed before a full build.
	SkipPrereqs []string
	// SCLPrefix replaces the %{?scl_prefix} macro in spec files.
	SCLPrefix             string
	CucumberOptions       string
	BrokerCucumberOptions string
}

// TestSettings holds the knobs of the test run.
type TestSettings struct {
	// Timeout applies to every test unit without its own override.
	Timeout time.Duration
	// TimeoutOverrides maps a single cucumber suite name to its timeout.
	TimeoutOverrides map[string]time.Duration
	// RetryMultiplier scales the total unit count into the retry threshold.
	RetryMultiplier int
	// RetryPasses is the maximum number of sequential retry passes.
	RetryPasses int
	// FeatureRoot is the directory, relative to the test base path, that
	// holds the cucumber features.
	FeatureRoot string
	// BasePath is the directory test commands run from.
	BasePath string
}

// Suite is a named set of extended test units.
type Suite struct {
	Name  string
	Units []*UnitTemplate
}

// UnitTemplate describes a test unit whose command is evaluated when the
// test plan is built.
type UnitTemplate struct {
	Title string
	// Queue is the queue index, or -1 to place the unit on the least loaded
	// queue.
	Queue             int
	Command           hcl.Expression
	RetryIndividually bool
	// Timeout is zero when the unit uses the settings timeout.
	Timeout time.Duration
}

// Profile returns the named profile.
func (m *Model) Profile(name string) (*Profile, error) {
	p, ok := m.Profiles[name]
	if !ok {
		names := make([]string, 0, len(m.Profiles))
		for n := range m.Profiles {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown profile %q (available: %v)", name, names)
	}
	return p, nil
}

// Ignored reports whether the profile excludes the named package.
func (p *Profile) Ignored(name string) bool {
	for _, n := range p.IgnorePackages {
		if n == name {
			return true
		}
	}
	return false
}
