package scheduler

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/samber/lo"
	"github.com/vk/originci/internal/catalog"
	"github.com/vk/originci/internal/dag"
)

// Phase is a group of packages that only depend on packages of earlier
// phases. Packages are kept sorted by name.
type Phase []catalog.Package

// Names returns the package names of the phase in order.
func (p Phase) Names() []string {
	return lo.Map(p, func(pkg catalog.Package, _ int) string { return pkg.Name })
}

// Options tunes prerequisite computation.
type Options struct {
	// SkipPrereqs are regular expressions; external prerequisites matching
	// any of them are left out of ExternalPrereqs.
	SkipPrereqs []string
}

// Plan is the result of scheduling a package set.
type Plan struct {
	Phases []Phase
	// ExternalPrereqs are sorted names of build requirements that are not
	// part of the package set and must be installed before phase one.
	ExternalPrereqs []string
	// ExcludedPrereqs are external prerequisites dropped by Options.SkipPrereqs.
	ExcludedPrereqs []string
	// LaterPhasePrereqs are sorted names required to build packages of
	// phase two and later, excluding external prerequisites. A package of
	// the set whose name appears here must be installed right after it is
	// built.
	LaterPhasePrereqs []string
}

// Needs reports whether the named package has to be installed once built
// because a later phase requires it.
func (p *Plan) Needs(name string) bool {
	i := sort.SearchStrings(p.LaterPhasePrereqs, name)
	return i < len(p.LaterPhasePrereqs) && p.LaterPhasePrereqs[i] == name
}

// Packages returns every scheduled package in build order.
func (p *Plan) Packages() []catalog.Package {
	var out []catalog.Package
	for _, phase := range p.Phases {
		out = append(out, phase...)
	}
	return out
}

// Len returns the number of scheduled packages.
func (p *Plan) Len() int {
	n := 0
	for _, phase := range p.Phases {
		n += len(phase)
	}
	return n
}

// SchedulePhases orders pkgs into build phases. It returns a
// *CyclicDependencyError when some packages can never become buildable.
// The result only depends on the set of packages, not on their order.
func SchedulePhases(pkgs []catalog.Package, opts Options) (*Plan, error) {
	skip, err := compilePatterns(opts.SkipPrereqs)
	if err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(pkgs))
	for _, pkg := range pkgs {
		if names[pkg.Name] {
			return nil, fmt.Errorf("package %q appears more than once", pkg.Name)
		}
		names[pkg.Name] = true
	}

	// Requirements restricted to the package set drive the phase split.
	inSet := make(map[string][]string, len(pkgs))
	var external []string
	for _, pkg := range pkgs {
		for _, req := range pkg.BuildRequires {
			if names[req] {
				inSet[pkg.Name] = append(inSet[pkg.Name], req)
			} else {
				external = append(external, req)
			}
		}
	}
	external = sortedUniq(external)

	buildable := sortedByName(pkgs)
	var phases []Phase
	for len(buildable) > 0 {
		pending := nameSet(buildable)
		installable, hasDependencies := partition(buildable, func(p catalog.Package) bool {
			return !lo.SomeBy(inSet[p.Name], func(req string) bool { return pending[req] })
		})

		// Peel until no installable package depends on something held back.
		for {
			held := nameSet(hasDependencies)
			var dependent []catalog.Package
			installable, dependent = partition(installable, func(p catalog.Package) bool {
				return !lo.SomeBy(inSet[p.Name], func(req string) bool { return held[req] })
			})
			if len(dependent) == 0 {
				break
			}
			hasDependencies = append(hasDependencies, dependent...)
		}

		if len(installable) == 0 {
			return nil, cyclicError(hasDependencies, inSet)
		}

		phases = append(phases, Phase(installable))
		buildable = sortedByName(hasDependencies)
	}

	plan := &Plan{Phases: phases}
	plan.ExternalPrereqs, plan.ExcludedPrereqs = splitSkipped(external, skip)

	var later []string
	if len(phases) > 1 {
		for _, phase := range phases[1:] {
			for _, pkg := range phase {
				later = append(later, pkg.BuildRequires...)
			}
		}
	}
	plan.LaterPhasePrereqs = sortedUniq(lo.Without(later, external...))
	return plan, nil
}

func cyclicError(stuck []catalog.Package, inSet map[string][]string) error {
	g := dag.New()
	for _, pkg := range stuck {
		g.AddNode(pkg.Name)
	}
	for _, pkg := range stuck {
		for _, req := range inSet[pkg.Name] {
			if g.Has(req) {
				_ = g.AddEdge(req, pkg.Name)
			}
		}
	}

	cerr := &CyclicDependencyError{Remaining: g.Nodes()}
	var cycle *dag.CycleError
	if errors.As(g.DetectCycles(), &cycle) {
		cerr.Cycle = cycle.Path
	}
	return cerr
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid skip prerequisite pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func splitSkipped(names []string, skip []*regexp.Regexp) (kept, skipped []string) {
	kept, skipped = partition(names, func(name string) bool {
		return !lo.SomeBy(skip, func(re *regexp.Regexp) bool { return re.MatchString(name) })
	})
	return kept, skipped
}

func partition[T any](items []T, keep func(T) bool) (in, out []T) {
	for _, item := range items {
		if keep(item) {
			in = append(in, item)
		} else {
			out = append(out, item)
		}
	}
	return in, out
}

func nameSet(pkgs []catalog.Package) map[string]bool {
	set := make(map[string]bool, len(pkgs))
	for _, pkg := range pkgs {
		set[pkg.Name] = true
	}
	return set
}

func sortedByName(pkgs []catalog.Package) []catalog.Package {
	out := append([]catalog.Package(nil), pkgs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedUniq(names []string) []string {
	out := lo.Uniq(names)
	sort.Strings(out)
	return out
}
