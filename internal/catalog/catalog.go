package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vk/originci/internal/ctxlog"
	"github.com/vk/originci/internal/fsutil"
)

// Options controls a catalog load.
type Options struct {
	// SCLPrefix replaces the %{?scl_prefix} macro in spec files.
	SCLPrefix string
	// Ignore lists package names left out of the catalog.
	Ignore []string
}

// Catalog is an immutable, name-ordered set of packages.
type Catalog struct {
	packages []Package
	byName   map[string]int
}

// New builds a catalog from already parsed packages. Names must be unique.
func New(pkgs []Package) (*Catalog, error) {
	sorted := make([]Package, len(pkgs))
	copy(sorted, pkgs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	c := &Catalog{packages: sorted, byName: make(map[string]int, len(sorted))}
	for i, p := range sorted {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("package %q is defined more than once (%s)", p.Name, p.SpecFile)
		}
		c.byName[p.Name] = i
	}
	return c, nil
}

// Load scans every root for *.spec files and parses them into a catalog.
// Roots that do not exist are skipped.
func Load(ctx context.Context, opts Options, roots ...string) (*Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	ignored := make(map[string]bool, len(opts.Ignore))
	for _, n := range opts.Ignore {
		ignored[n] = true
	}

	var pkgs []Package
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			logger.Warn("Source root does not exist, skipping.", "root", root)
			continue
		}
		files, err := fsutil.FindFilesByExtension(root, ".spec", ".git")
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
		for _, path := range files {
			pkg, err := parseSpecFile(path, opts.SCLPrefix)
			if err != nil {
				return nil, fmt.Errorf("scanning %s: %w", root, err)
			}
			if ignored[pkg.Name] {
				logger.Debug("Ignoring package.", "package", pkg.Name)
				continue
			}
			pkgs = append(pkgs, pkg)
		}
	}

	c, err := New(pkgs)
	if err != nil {
		return nil, err
	}
	logger.Debug("Package catalog loaded.", "packages", c.Len(), "roots", len(roots))
	return c, nil
}

func parseSpecFile(path, sclPrefix string) (Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return Package{}, err
	}
	defer f.Close()

	pkg, err := ParseSpec(f, sclPrefix)
	if err != nil {
		return Package{}, fmt.Errorf("%s: %w", path, err)
	}
	pkg.SpecFile = path
	pkg.Dir = filepath.Dir(path)
	return pkg, nil
}

// Packages returns the packages ordered by name.
func (c *Catalog) Packages() []Package {
	out := make([]Package, len(c.packages))
	copy(out, c.packages)
	return out
}

// Get returns the named package.
func (c *Catalog) Get(name string) (Package, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Package{}, false
	}
	return c.packages[i], true
}

// Has reports whether the catalog contains the named package.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Len returns the number of packages.
func (c *Catalog) Len() int { return len(c.packages) }

// Filter returns a catalog with the packages for which keep returns true.
func (c *Catalog) Filter(keep func(Package) bool) *Catalog {
	var kept []Package
	for _, p := range c.packages {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	// Names stay unique and valid, so New cannot fail here.
	out, _ := New(kept)
	return out
}

// RequiredPackages returns the build and run time requirements of every
// package that are not themselves in the catalog, sorted by name.
func (c *Catalog) RequiredPackages() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range c.packages {
		for _, n := range append(append([]string{}, p.BuildRequires...), p.Requires...) {
			if !c.Has(n) && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}
