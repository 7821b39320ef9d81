package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Profiles []*profileBlock  `hcl:"profile,block"`
	Tests    []*testsBlock    `hcl:"tests,block"`
	Extended []*extendedBlock `hcl:"extended,block"`
	Remain   hcl.Body         `hcl:",remain"`
}

type profileBlock struct {
	Name                  string   `hcl:"name,label"`
	IgnorePackages        []string `hcl:"ignore_packages,optional"`
	SkipPrereqs           []string `hcl:"skip_prereqs,optional"`
	SCLPrefix             *string  `hcl:"scl_prefix,optional"`
	CucumberOptions       *string  `hcl:"cucumber_options,optional"`
	BrokerCucumberOptions *string  `hcl:"broker_cucumber_options,optional"`
}

type testsBlock struct {
	Timeout          *string        `hcl:"timeout,optional"`
	TimeoutOverrides hcl.Expression `hcl:"timeout_overrides,optional"`
	RetryMultiplier  *int           `hcl:"retry_multiplier,optional"`
	RetryPasses      *int           `hcl:"retry_passes,optional"`
	FeatureRoot      *string        `hcl:"feature_root,optional"`
	BasePath         *string        `hcl:"base_path,optional"`
}

type extendedBlock struct {
	Name  string       `hcl:"name,label"`
	Units []*unitBlock `hcl:"unit,block"`
}

type unitBlock struct {
	Title             string         `hcl:"title,label"`
	Queue             *int           `hcl:"queue,optional"`
	Command           hcl.Expression `hcl:"command"`
	RetryIndividually *bool          `hcl:"retry_individually,optional"`
	Timeout           *string        `hcl:"timeout,optional"`
}
