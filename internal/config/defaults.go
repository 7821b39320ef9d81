package config

import "time"

const (
	// DefaultTimeout is the per-unit timeout used when nothing overrides it.
	DefaultTimeout = 4800 * time.Second
	// DefaultRetryMultiplier is the empirically tuned retry budget factor.
	DefaultRetryMultiplier = 8
	// DefaultRetryPasses is the number of retry passes after the first run.
	DefaultRetryPasses = 2
	// DefaultFeatureRoot is where the cucumber features are staged.
	DefaultFeatureRoot = "openshift-test/tests"
	// DefaultProfile is selected when the caller does not name one.
	DefaultProfile = "fedora"
)

// Default returns the built-in configuration: the fedora and rhel
// profiles and the stock test settings.
func Default() *Model {
	return &Model{
		Profiles: map[string]*Profile{
			"fedora": {
				Name: "fedora",
				IgnorePackages: []string{
					"openshift-origin-util-scl",
					"rubygem-openshift-origin-auth-kerberos",
					"openshift-origin-cartridge-jbossews-1.0",
					"openshift-origin-cartridge-jbossews-2.0",
					"openshift-origin-cartridge-postgresql-8.4",
					"openshift-origin-cartridge-ruby-1.8",
					"openshift-origin-cartridge-ruby-1.9-scl",
					"openshift-origin-cartridge-jbossas-7",
					"openshift-origin-cartridge-switchyard-0.6",
					"openshift-origin-cartridge-perl-5.10",
					"openshift-origin-cartridge-php-5.3",
					"openshift-origin-cartridge-python-2.6",
					"openshift-origin-cartridge-phpmyadmin-3.4",
					"openshift-origin-cartridge-jbosseap-6.0",
				},
				CucumberOptions:       "--strict -f progress -f junit --out /tmp/rhc/cucumber_results -t ~@rhel-only",
				BrokerCucumberOptions: "--strict -f html --out /tmp/rhc/broker_cucumber.html -f progress  -t ~@rhel-only",
			},
			"rhel": {
				Name: "rhel",
				IgnorePackages: []string{
					"rubygem-openshift-origin-auth-kerberos",
					"openshift-origin-cartridge-jbossews-1.0",
					"openshift-origin-cartridge-jbossews-2.0",
					"openshift-origin-cartridge-jbosseap-6.0",
					"openshift-origin-cartridge-jbossas-7",
					"openshift-origin-cartridge-switchyard-0.6",
					"openshift-origin-cartridge-ruby-1.9",
					"openshift-origin-cartridge-perl-5.16",
					"openshift-origin-cartridge-php-5.4",
					"openshift-origin-cartridge-phpmyadmin-3.5",
					"openshift-origin-cartridge-postgresql-9.1",
				},
				SCLPrefix:             "ruby193-",
				CucumberOptions:       "--strict -f progress -f junit --out /tmp/rhc/cucumber_results -t ~@fedora-only",
				BrokerCucumberOptions: "--strict -f html --out /tmp/rhc/broker_cucumber.html -f progress  -t ~@fedora-only",
			},
		},
		Tests: &TestSettings{
			Timeout: DefaultTimeout,
			TimeoutOverrides: map[string]time.Duration{
				"benchmark": 172800 * time.Second,
			},
			RetryMultiplier: DefaultRetryMultiplier,
			RetryPasses:     DefaultRetryPasses,
			FeatureRoot:     DefaultFeatureRoot,
		},
		Extended: map[string]*Suite{},
	}
}
