package testplan

import (
	"context"
	"strings"
	"time"

	"github.com/vk/originci/internal/config"
	"github.com/vk/originci/internal/ctxlog"
)

// QueueCount is the number of queues every plan has.
const QueueCount = 4

// Unit is one test command.
type Unit struct {
	Title   string        `yaml:"title"`
	Command string        `yaml:"command"`
	// RetryIndividually asks failure narrowing for the smallest sub case.
	RetryIndividually bool          `yaml:"retry_individually"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Queue is a list of units run in order by one worker.
type Queue []Unit

// Settings selects and parameterizes the units of a run.
type Settings struct {
	// Extended names extended suites; built in or declared in Suites.
	Extended []string
	Coverage bool
	// Cucumber names a single cucumber tag to run alone.
	Cucumber string
	Web      bool

	ExcludeBroker  bool
	ExcludeRuntime bool
	// ExcludeSite and ExcludeRHC are accepted, but the default set has no
	// site or rhc units yet.
	ExcludeSite bool
	ExcludeRHC  bool

	// RetryIndividually is OR-ed into every unit's own flag.
	RetryIndividually bool
	BrokerHostname    string

	Profile *config.Profile
	Tests   *config.TestSettings
	// Suites are extended suites declared in configuration. They take
	// precedence over built-in suites of the same name.
	Suites map[string]*config.Suite
}

// ParseExtended splits a comma separated suite list.
func ParseExtended(list string) []string {
	var out []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// Count returns the number of units across queues.
func Count(queues []Queue) int {
	n := 0
	for _, q := range queues {
		n += len(q)
	}
	return n
}

// Build produces the queues for s. It returns a *ConfigurationError when
// several modes are selected or an extended suite is unknown.
func Build(ctx context.Context, s Settings) ([]Queue, error) {
	if s.Profile == nil {
		s.Profile = &config.Profile{}
	}
	if s.Tests == nil {
		s.Tests = config.Default().Tests
	}
	if s.BrokerHostname == "" {
		s.BrokerHostname = "localhost"
	}

	var modes []string
	if len(s.Extended) > 0 {
		modes = append(modes, "extended")
	}
	if s.Coverage {
		modes = append(modes, "coverage")
	}
	if s.Cucumber != "" {
		modes = append(modes, "cucumber")
	}
	if s.Web {
		modes = append(modes, "web")
	}
	if len(modes) > 1 {
		return nil, configErrorf("only one test mode may be selected, got %s", strings.Join(modes, ", "))
	}

	b := &builder{s: s, queues: make([]Queue, QueueCount)}
	logger := ctxlog.FromContext(ctx)

	switch {
	case len(s.Extended) > 0:
		for _, name := range s.Extended {
			if err := b.addExtended(ctx, name); err != nil {
				return nil, err
			}
		}
	case s.Coverage:
		b.addCoverage()
	case s.Cucumber != "":
		b.addCucumber(s.Cucumber)
	case s.Web:
		logger.Warn("Tests for the website are currently not supported.")
	default:
		b.addDefault()
	}

	logger.Debug("Built test plan.", "units", Count(b.queues))
	return b.queues, nil
}

type builder struct {
	s      Settings
	queues []Queue
}

func (b *builder) add(queue int, title, command string, retryIndividually bool) {
	b.addUnit(queue, Unit{
		Title:             title,
		Command:           command,
		RetryIndividually: retryIndividually,
		Timeout:           b.s.Tests.Timeout,
	})
}

func (b *builder) addUnit(queue int, u Unit) {
	u.RetryIndividually = u.RetryIndividually || b.s.RetryIndividually
	if queue < 0 {
		queue = b.shortest()
	}
	b.queues[queue] = append(b.queues[queue], u)
}

// shortest returns the lowest index among the queues with fewest units.
func (b *builder) shortest() int {
	best := 0
	for i, q := range b.queues {
		if len(q) < len(b.queues[best]) {
			best = i
		}
	}
	return best
}

func (b *builder) featureRoot() string {
	if b.s.Tests.FeatureRoot != "" {
		return b.s.Tests.FeatureRoot
	}
	return config.DefaultFeatureRoot
}

// cucumber renders `cucumber <options> <args...> <feature root>`.
func (b *builder) cucumber(options string, args ...string) string {
	parts := []string{"cucumber"}
	if options != "" {
		parts = append(parts, options)
	}
	parts = append(parts, args...)
	parts = append(parts, b.featureRoot())
	return strings.Join(parts, " ")
}

func su(command string) string {
	return `su -c "` + command + `"`
}
