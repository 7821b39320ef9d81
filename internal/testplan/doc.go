// Package testplan turns run settings into the fixed set of parallel test
// queues.
//
// Exactly one mode is active per run: extended suites, coverage, a single
// named cucumber suite, web, or the default set filtered by exclusions.
// Every mode yields QueueCount queues, some possibly empty.
package testplan
