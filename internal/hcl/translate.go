package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/originci/internal/config"
	"github.com/vk/originci/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// mergeProfile overlays a profile block on the model. Attributes absent
// from the block keep the values of an existing profile of the same name.
func (l *Loader) mergeProfile(m *config.Model, b *profileBlock) {
	p, ok := m.Profiles[b.Name]
	if !ok {
		p = &config.Profile{Name: b.Name}
		m.Profiles[b.Name] = p
	}
	if b.IgnorePackages != nil {
		p.IgnorePackages = b.IgnorePackages
	}
	if b.SkipPrereqs != nil {
		p.SkipPrereqs = b.SkipPrereqs
	}
	if b.SCLPrefix != nil {
		p.SCLPrefix = *b.SCLPrefix
	}
	if b.CucumberOptions != nil {
		p.CucumberOptions = *b.CucumberOptions
	}
	if b.BrokerCucumberOptions != nil {
		p.BrokerCucumberOptions = *b.BrokerCucumberOptions
	}
}

func (l *Loader) mergeTests(ctx context.Context, s *config.TestSettings, b *testsBlock) error {
	if b.Timeout != nil {
		d, err := time.ParseDuration(*b.Timeout)
		if err != nil {
			return fmt.Errorf("invalid tests.timeout: %w", err)
		}
		s.Timeout = d
	}
	if b.RetryMultiplier != nil {
		s.RetryMultiplier = *b.RetryMultiplier
	}
	if b.RetryPasses != nil {
		s.RetryPasses = *b.RetryPasses
	}
	if b.FeatureRoot != nil {
		s.FeatureRoot = *b.FeatureRoot
	}
	if b.BasePath != nil {
		s.BasePath = *b.BasePath
	}

	if b.TimeoutOverrides == nil {
		return nil
	}
	val, diags := b.TimeoutOverrides.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("invalid tests.timeout_overrides: %w", diags)
	}
	overrides, err := durationMap(val)
	if err != nil {
		return fmt.Errorf("invalid tests.timeout_overrides: %w", err)
	}
	for name, d := range overrides {
		ctxlog.FromContext(ctx).Debug("Applying timeout override.", "suite", name, "timeout", d)
		s.TimeoutOverrides[name] = d
	}
	return nil
}

// durationMap converts an object or map of duration strings into Go values.
func durationMap(val cty.Value) (map[string]time.Duration, error) {
	if val.IsNull() || !val.IsKnown() {
		return nil, nil
	}
	converted, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("expected a map of duration strings: %w", err)
	}
	out := make(map[string]time.Duration)
	for it := converted.ElementIterator(); it.Next(); {
		k, v := it.Element()
		if v.IsNull() {
			continue
		}
		d, err := time.ParseDuration(v.AsString())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.AsString(), err)
		}
		out[k.AsString()] = d
	}
	return out, nil
}

func (l *Loader) translateSuite(b *extendedBlock) (*config.Suite, error) {
	suite := &config.Suite{Name: b.Name}
	for _, u := range b.Units {
		tmpl := &config.UnitTemplate{
			Title:   u.Title,
			Queue:   -1,
			Command: u.Command,
		}
		if u.Queue != nil {
			if *u.Queue < 0 {
				return nil, fmt.Errorf("extended %q unit %q: queue must not be negative", b.Name, u.Title)
			}
			tmpl.Queue = *u.Queue
		}
		if u.RetryIndividually != nil {
			tmpl.RetryIndividually = *u.RetryIndividually
		}
		if u.Timeout != nil {
			d, err := time.ParseDuration(*u.Timeout)
			if err != nil {
				return nil, fmt.Errorf("extended %q unit %q: invalid timeout: %w", b.Name, u.Title, err)
			}
			tmpl.Timeout = d
		}
		suite.Units = append(suite.Units, tmpl)
	}
	return suite, nil
}
