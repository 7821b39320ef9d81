package report

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/vk/originci/internal/build"
	"github.com/vk/originci/internal/retry"
)

// packageResult is the exported form of build.Result.
type packageResult struct {
	Name      string   `yaml:"name"`
	Version   string   `yaml:"version,omitempty"`
	Phase     int      `yaml:"phase"`
	Status    string   `yaml:"status"`
	Attempts  int      `yaml:"attempts"`
	Installed bool     `yaml:"installed"`
	Artifacts []string `yaml:"artifacts,omitempty"`
	Error     string   `yaml:"error,omitempty"`
}

type buildDocument struct {
	Prerequisites []string        `yaml:"prerequisites,omitempty"`
	Packages      []packageResult `yaml:"packages"`
}

// WriteTestsYAML writes the test report as YAML.
func WriteTestsYAML(w io.Writer, r *retry.Report) error {
	return encode(w, r)
}

// WriteBuildYAML writes the build results as YAML.
func WriteBuildYAML(w io.Writer, results *build.Results) error {
	doc := buildDocument{Prerequisites: results.Prerequisites}
	for _, res := range results.Packages {
		pr := packageResult{
			Name:      res.Package.Name,
			Version:   res.Package.Version,
			Phase:     res.Phase,
			Status:    string(res.Status),
			Attempts:  res.Attempts,
			Installed: res.Installed,
			Artifacts: res.Artifacts,
		}
		if res.Err != nil {
			pr.Error = res.Err.Error()
		}
		doc.Packages = append(doc.Packages, pr)
	}
	return encode(w, doc)
}

func encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}
