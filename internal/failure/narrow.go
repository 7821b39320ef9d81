package failure

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultFeatureRoot is where cucumber features live relative to the test
// base path.
const DefaultFeatureRoot = "openshift-test/tests"

var (
	rakeTraceRegex = regexp.MustCompile(`(?m)^(test_\w+)\((\w+Test)\) \[/.*/(test/.*_test\.rb):(\d+)\]:`)
	cdPrefixRegex  = regexp.MustCompile(`^(cd .+?; )`)
)

// Strategy recognizes one failure signature.
type Strategy struct {
	Name string
	// Match reports whether the signature is present.
	Match func(unit Record, output string) bool
	// Extract builds the retry records; an empty result falls through to
	// a verbatim retry.
	Extract func(unit Record, output string) []Record
}

// Options configures the built-in strategies.
type Options struct {
	// CucumberOptions are passed to every narrowed cucumber command.
	CucumberOptions string
	// FeatureRoot is the feature directory named in cucumber output.
	FeatureRoot string
}

// Narrower applies strategies in order.
type Narrower struct {
	strategies []Strategy
}

// NewNarrower returns a narrower with the cucumber strategy followed by the
// unit-test trace strategy.
func NewNarrower(opts Options) *Narrower {
	return NewNarrowerWith(CucumberStrategy(opts), UnitTestStrategy())
}

// NewNarrowerWith returns a narrower using exactly the given strategies.
func NewNarrowerWith(strategies ...Strategy) *Narrower {
	return &Narrower{strategies: strategies}
}

// Narrow returns the retry records for unit given its captured output.
// It always returns at least one record.
func (n *Narrower) Narrow(unit Record, output string) []Record {
	for _, s := range n.strategies {
		if !s.Match(unit, output) {
			continue
		}
		if records := s.Extract(unit, output); len(records) > 0 {
			return records
		}
		break
	}
	return []Record{unit}
}

// Strategies returns the strategy names in evaluation order.
func (n *Narrower) Strategies() []string {
	names := make([]string, len(n.strategies))
	for i, s := range n.strategies {
		names[i] = s.Name
	}
	return names
}

// CucumberStrategy recognizes a "Failing Scenarios:" block. Units that
// retry individually get one record per scenario location; others get one
// record per feature file.
func CucumberStrategy(opts Options) Strategy {
	root := strings.TrimSuffix(opts.FeatureRoot, "/")
	if root == "" {
		root = DefaultFeatureRoot
	}
	lineRegex := regexp.MustCompile(`cucumber ` + regexp.QuoteMeta(root) + `/(.*\.feature):(\d+)`)

	command := func(target string) string {
		args := []string{"cucumber"}
		if opts.CucumberOptions != "" {
			args = append(args, opts.CucumberOptions)
		}
		args = append(args, root+"/"+target)
		return `su -c "` + strings.Join(args, " ") + `"`
	}

	return Strategy{
		Name: "cucumber",
		Match: func(_ Record, output string) bool {
			return strings.Contains(output, "Failing Scenarios:") && lineRegex.MatchString(output)
		},
		Extract: func(unit Record, output string) []Record {
			var out []Record
			for _, m := range lineRegex.FindAllStringSubmatch(output, -1) {
				file, line := m[1], m[2]
				rec := unit
				if unit.RetryIndividually {
					rec.Command = command(file + ":" + line)
				} else {
					rec.Title = fmt.Sprintf("%s (%s)", unit.Title, file)
					rec.Command = command(file)
				}
				out = append(out, rec)
			}
			return Uniq(out)
		},
	}
}

// UnitTestStrategy recognizes Test::Unit failure traces of the form
// `test_x(FooTest) [/path/test/foo_test.rb:12]:` and retries each failing
// method alone, keeping a leading `cd ...; ` of the original command.
func UnitTestStrategy() Strategy {
	return Strategy{
		Name: "unit-test",
		Match: func(unit Record, output string) bool {
			return unit.RetryIndividually &&
				strings.Contains(output, "Failure:") &&
				strings.Contains(output, "rake_test_loader")
		},
		Extract: func(unit Record, output string) []Record {
			chdir := ""
			if m := cdPrefixRegex.FindStringSubmatch(unit.Command); m != nil {
				chdir = m[1]
			}
			var out []Record
			for _, m := range rakeTraceRegex.FindAllStringSubmatch(output, -1) {
				method, class, file := m[1], m[2], m[3]
				rec := unit
				rec.Title = fmt.Sprintf("%s (%s)", class, method)
				rec.Command = fmt.Sprintf("%sruby -Ilib:test %s -n %s", chdir, file, method)
				out = append(out, rec)
			}
			return Uniq(out)
		},
	}
}
