package build

import (
	"github.com/vk/originci/internal/catalog"
)

// Status is the final state of one package after BuildAll.
type Status string

const (
	// StatusBuilt means the first build attempt succeeded.
	StatusBuilt Status = "built"
	// StatusRetagged means the package built after being re-tagged.
	StatusRetagged Status = "retagged"
	// StatusDepsInstalled means the build failed on missing requirements,
	// which were installed; the package is not built in this run.
	StatusDepsInstalled Status = "deps-installed"
	StatusFailed        Status = "failed"
)

// Result is the outcome for one package.
type Result struct {
	Package   catalog.Package
	Phase     int
	Status    Status
	Installed bool
	Artifacts []string
	Attempts  int
	Err       error
}

// Results lists package outcomes in build order.
type Results struct {
	Packages []Result
	// Prerequisites are the external names installed before phase one.
	Prerequisites []string
}

// Failed returns the results whose package did not build.
func (r *Results) Failed() []Result {
	var out []Result
	for _, res := range r.Packages {
		if res.Status == StatusFailed || res.Status == StatusDepsInstalled {
			out = append(out, res)
		}
	}
	return out
}

// Built returns the names of packages that produced artifacts.
func (r *Results) Built() []string {
	var out []string
	for _, res := range r.Packages {
		if res.Status == StatusBuilt || res.Status == StatusRetagged {
			out = append(out, res.Package.Name)
		}
	}
	return out
}
