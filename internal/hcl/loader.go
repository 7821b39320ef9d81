package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/originci/internal/config"
	"github.com/vk/originci/internal/ctxlog"
	"github.com/vk/originci/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from the given paths and merges
// the blocks on top of config.Default(). Files are applied in lexical
// order, so later files win on conflicting attributes.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := config.Default()

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, p := range root.Profiles {
			l.mergeProfile(model, p)
		}
		for _, t := range root.Tests {
			if err := l.mergeTests(ctx, model.Tests, t); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
		}
		for _, e := range root.Extended {
			suite, err := l.translateSuite(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Extended[suite.Name] = suite
		}
	}

	if err := validate(model); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "profiles", len(model.Profiles), "extended_suites", len(model.Extended))
	return model, nil
}

// findAllHCLFiles walks all given paths and returns a sorted, de-duplicated
// list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		files, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		for _, f := range files {
			add(f)
		}
	}
	sort.Strings(allFiles)
	return allFiles, nil
}

func validate(m *config.Model) error {
	if m.Tests.RetryMultiplier <= 0 {
		return fmt.Errorf("retry_multiplier must be positive, got %d", m.Tests.RetryMultiplier)
	}
	if m.Tests.RetryPasses < 0 {
		return fmt.Errorf("retry_passes must not be negative, got %d", m.Tests.RetryPasses)
	}
	if m.Tests.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", m.Tests.Timeout)
	}
	return nil
}
