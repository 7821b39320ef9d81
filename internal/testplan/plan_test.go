package testplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/originci/internal/config"
)

func defaultSettings() Settings {
	m := config.Default()
	return Settings{Profile: m.Profiles["fedora"], Tests: m.Tests}
}

func titles(q Queue) []string {
	out := make([]string, len(q))
	for i, u := range q {
		out[i] = u.Title
	}
	return out
}

func expr(t *testing.T, src string) hcl.Expression {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return e
}

func TestBuild_Default(t *testing.T) {
	queues, err := Build(context.Background(), defaultSettings())
	require.NoError(t, err)
	require.Len(t, queues, QueueCount)

	assert.Equal(t, []string{"OpenShift Origin Broker Functional", "Runtime Group 1"}, titles(queues[0]))
	assert.Equal(t, []string{
		"OpenShift Origin Broker Integration",
		"OpenShift Origin Broker Unit 1",
		"OpenShift Origin Broker Unit 2",
		"Runtime Group 2",
	}, titles(queues[1]))
	assert.Equal(t, []string{"Broker Cucumber", "Runtime Group 3"}, titles(queues[2]))
	assert.Equal(t, []string{"Runtime Group 4"}, titles(queues[3]))
	assert.Equal(t, 9, Count(queues))

	assert.Equal(t, `cd openshift-test/broker; su -c "bundle exec rake test:functionals"`, queues[0][0].Command)
	assert.Equal(t,
		`su -c "cucumber --strict -f progress -f junit --out /tmp/rhc/cucumber_results -t ~@rhel-only -t @runtime1 openshift-test/tests"`,
		queues[0][1].Command)
	assert.Equal(t, config.DefaultTimeout, queues[3][0].Timeout)
}

func TestBuild_Exclusions(t *testing.T) {
	s := defaultSettings()
	s.ExcludeBroker = true
	queues, err := Build(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 4, Count(queues))

	s.ExcludeRuntime = true
	s.ExcludeSite = true
	s.ExcludeRHC = true
	queues, err = Build(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, queues, QueueCount)
	assert.Zero(t, Count(queues))
}

func TestBuild_Extended(t *testing.T) {
	t.Run("built-in suites", func(t *testing.T) {
		s := defaultSettings()
		s.Extended = ParseExtended(" broker, rhc ,")
		s.BrokerHostname = "broker.example.com"

		queues, err := Build(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, []string{"REST API Group 1", "RHC Extended"}, titles(queues[0]))
		assert.Equal(t, []string{"REST API Group 2", "RHC Integration"}, titles(queues[1]))
		assert.True(t, queues[0][0].RetryIndividually)
		assert.Contains(t, queues[1][1].Command, "cd openshift-test/rhc && RHC_SERVER=broker.example.com QUIET=1")
	})

	t.Run("runtime suite does not retry individually unless asked", func(t *testing.T) {
		s := defaultSettings()
		s.Extended = []string{"runtime"}
		queues, err := Build(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, 3, Count(queues))
		assert.Empty(t, queues[3])
		assert.False(t, queues[0][0].RetryIndividually)

		s.RetryIndividually = true
		queues, err = Build(context.Background(), s)
		require.NoError(t, err)
		assert.True(t, queues[0][0].RetryIndividually)
	})

	t.Run("site only warns", func(t *testing.T) {
		s := defaultSettings()
		s.Extended = []string{"site"}
		queues, err := Build(context.Background(), s)
		require.NoError(t, err)
		assert.Zero(t, Count(queues))
	})

	t.Run("unknown suite is a configuration error", func(t *testing.T) {
		s := defaultSettings()
		s.Extended = []string{"broker", "nope"}
		_, err := Build(context.Background(), s)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
		var cerr *ConfigurationError
		require.True(t, errors.As(err, &cerr))
		assert.Contains(t, cerr.Msg, "nope")
	})

	t.Run("configured suite", func(t *testing.T) {
		s := defaultSettings()
		s.Extended = []string{"perf"}
		s.Suites = map[string]*config.Suite{
			"perf": {Name: "perf", Units: []*config.UnitTemplate{
				{Title: "Perf 1", Queue: 2, Command: expr(t, `"cucumber ${cucumber_options} -t @perf1 ${feature_root}"`), Timeout: time.Hour},
				{Title: "Perf 2", Queue: -1, Command: expr(t, `"curl -s http://${broker_hostname}/broker/rest/api"`), RetryIndividually: true},
				{Title: "Perf 3", Queue: -1, Command: expr(t, `"true"`)},
			}},
		}

		queues, err := Build(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, []string{"Perf 2"}, titles(queues[0]))
		assert.Equal(t, []string{"Perf 3"}, titles(queues[1]))
		require.Equal(t, []string{"Perf 1"}, titles(queues[2]))

		assert.Equal(t, "cucumber --strict -f progress -f junit --out /tmp/rhc/cucumber_results -t ~@rhel-only -t @perf1 openshift-test/tests", queues[2][0].Command)
		assert.Equal(t, time.Hour, queues[2][0].Timeout)
		assert.Equal(t, "curl -s http://localhost/broker/rest/api", queues[0][0].Command)
		assert.Equal(t, config.DefaultTimeout, queues[0][0].Timeout)
		assert.True(t, queues[0][0].RetryIndividually)
	})

	t.Run("configured suite with bad command", func(t *testing.T) {
		s := defaultSettings()
		s.Extended = []string{"bad"}
		s.Suites = map[string]*config.Suite{
			"bad": {Name: "bad", Units: []*config.UnitTemplate{{Title: "x", Command: expr(t, `"${unknown_var}"`)}}},
		}
		_, err := Build(context.Background(), s)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})

	t.Run("configured suite with queue out of range", func(t *testing.T) {
		s := defaultSettings()
		s.Extended = []string{"bad"}
		s.Suites = map[string]*config.Suite{
			"bad": {Name: "bad", Units: []*config.UnitTemplate{{Title: "x", Queue: 4, Command: expr(t, `"true"`)}}},
		}
		_, err := Build(context.Background(), s)
		assert.ErrorContains(t, err, "queue 4 out of range")
	})
}

func TestBuild_SingleModes(t *testing.T) {
	t.Run("coverage", func(t *testing.T) {
		s := defaultSettings()
		s.Coverage = true
		queues, err := Build(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, 2, Count(queues))
		assert.Equal(t, "cd openshift-test/node; rake rcov; cp -a coverage /tmp/rhc/openshift_node_coverage", queues[0][0].Command)
	})

	t.Run("single cucumber suite uses timeout override", func(t *testing.T) {
		s := defaultSettings()
		s.Cucumber = "benchmark"
		queues, err := Build(context.Background(), s)
		require.NoError(t, err)
		require.Equal(t, 1, Count(queues))
		u := queues[0][0]
		assert.Equal(t, "benchmark", u.Title)
		assert.Equal(t, 48*time.Hour, u.Timeout)
		assert.Equal(t, "cucumber --strict -f progress -f junit --out /tmp/rhc/cucumber_results -t ~@rhel-only -t @benchmark openshift-test/tests", u.Command)

		s.Cucumber = "smoke"
		queues, err = Build(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultTimeout, queues[0][0].Timeout)
	})

	t.Run("web yields empty queues", func(t *testing.T) {
		s := defaultSettings()
		s.Web = true
		queues, err := Build(context.Background(), s)
		require.NoError(t, err)
		require.Len(t, queues, QueueCount)
		assert.Zero(t, Count(queues))
	})

	t.Run("conflicting modes", func(t *testing.T) {
		s := defaultSettings()
		s.Coverage = true
		s.Cucumber = "benchmark"
		_, err := Build(context.Background(), s)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.ErrorContains(t, err, "coverage, cucumber")
	})
}

func TestBuild_Deterministic(t *testing.T) {
	s := defaultSettings()
	s.Extended = []string{"broker", "runtime"}
	first, err := Build(context.Background(), s)
	require.NoError(t, err)
	second, err := Build(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
