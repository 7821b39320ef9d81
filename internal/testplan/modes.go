package testplan

import (
	"context"
	"fmt"
	"path"

	"github.com/vk/originci/internal/ctxlog"
)

// testDir returns a directory next to the feature root, such as the
// broker or rhc checkout.
func (b *builder) testDir(name string) string {
	return path.Join(path.Dir(b.featureRoot()), name)
}

func (b *builder) addExtended(ctx context.Context, name string) error {
	if suite, ok := b.s.Suites[name]; ok {
		return b.addSuite(suite)
	}

	opts := b.s.Profile.CucumberOptions
	switch name {
	case "broker":
		for i := 1; i <= QueueCount; i++ {
			b.add(i-1, fmt.Sprintf("REST API Group %d", i), su(b.cucumber(opts, fmt.Sprintf("-t @broker_api%d", i))), true)
		}
	case "runtime":
		for i := 1; i <= 3; i++ {
			b.add(i-1, fmt.Sprintf("Extended Runtime Group %d", i), su(b.cucumber(opts, fmt.Sprintf("-t @runtime_extended%d", i))), false)
		}
	case "site":
		ctxlog.FromContext(ctx).Warn("Site tests are currently not supported.")
	case "rhc":
		b.add(0, "RHC Extended", su(b.cucumber(opts, "-t @rhc_extended")), true)
		integration := fmt.Sprintf(`cd %s && RHC_SERVER=%s QUIET=1 bundle exec "cucumber %s features"`,
			b.testDir("rhc"), b.s.BrokerHostname, opts)
		b.add(1, "RHC Integration", integration, true)
	default:
		return configErrorf("not supported for extended: %s", name)
	}
	return nil
}

func (b *builder) addCoverage() {
	b.add(0, "OpenShift Origin Node Unit Coverage",
		fmt.Sprintf("cd %s; rake rcov; cp -a coverage /tmp/rhc/openshift_node_coverage", b.testDir("node")), false)
	b.add(1, "OpenShift Origin Broker Unit and Functional Coverage",
		fmt.Sprintf("cd %s; rake rcov; cp -a test/coverage /tmp/rhc/openshift_broker_coverage", b.testDir("broker")), false)
}

func (b *builder) addCucumber(name string) {
	timeout := b.s.Tests.Timeout
	if override, ok := b.s.Tests.TimeoutOverrides[name]; ok {
		timeout = override
	}
	b.addUnit(0, Unit{
		Title:   name,
		Command: b.cucumber(b.s.Profile.CucumberOptions, "-t @"+name),
		Timeout: timeout,
	})
}

func (b *builder) addDefault() {
	if !b.s.ExcludeBroker {
		broker := b.testDir("broker")
		b.add(0, "OpenShift Origin Broker Functional", fmt.Sprintf(`cd %s; su -c "bundle exec rake test:functionals"`, broker), false)
		b.add(1, "OpenShift Origin Broker Integration", fmt.Sprintf(`cd %s; su -c "bundle exec rake test:integration"`, broker), false)
		b.add(1, "OpenShift Origin Broker Unit 1", fmt.Sprintf(`cd %s; su -c "bundle exec rake test:oo_unit1"`, broker), false)
		b.add(1, "OpenShift Origin Broker Unit 2", fmt.Sprintf(`cd %s; su -c "bundle exec rake test:oo_unit2"`, broker), false)
		b.add(2, "Broker Cucumber", su(b.cucumber(b.s.Profile.BrokerCucumberOptions, "-t @broker")), false)
	}

	if !b.s.ExcludeRuntime {
		for i := 1; i <= QueueCount; i++ {
			b.add(i-1, fmt.Sprintf("Runtime Group %d", i), su(b.cucumber(b.s.Profile.CucumberOptions, fmt.Sprintf("-t @runtime%d", i))), false)
		}
	}
}
