package testplan

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/originci/internal/config"
)

// evalContext exposes the run settings to command expressions of
// configured suites.
func (b *builder) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"cucumber_options":        cty.StringVal(b.s.Profile.CucumberOptions),
			"broker_cucumber_options": cty.StringVal(b.s.Profile.BrokerCucumberOptions),
			"broker_hostname":         cty.StringVal(b.s.BrokerHostname),
			"feature_root":            cty.StringVal(b.featureRoot()),
		},
	}
}

func (b *builder) addSuite(suite *config.Suite) error {
	evalCtx := b.evalContext()
	for _, tmpl := range suite.Units {
		if tmpl.Queue >= QueueCount {
			return configErrorf("extended %q unit %q: queue %d out of range 0-%d", suite.Name, tmpl.Title, tmpl.Queue, QueueCount-1)
		}
		command, err := renderCommand(tmpl.Command, evalCtx)
		if err != nil {
			return &ConfigurationError{Msg: "extended " + suite.Name + " unit " + tmpl.Title, Err: err}
		}

		timeout := b.s.Tests.Timeout
		if tmpl.Timeout > 0 {
			timeout = tmpl.Timeout
		}
		b.addUnit(tmpl.Queue, Unit{
			Title:             tmpl.Title,
			Command:           command,
			RetryIndividually: tmpl.RetryIndividually,
			Timeout:           timeout,
		})
	}
	return nil
}

func renderCommand(expr hcl.Expression, evalCtx *hcl.EvalContext) (string, error) {
	if expr == nil {
		return "", configErrorf("missing command")
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	if val.IsNull() || !val.IsWhollyKnown() {
		return "", configErrorf("command must be a known string")
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", err
	}
	if val.AsString() == "" {
		return "", configErrorf("command must not be empty")
	}
	return val.AsString(), nil
}
