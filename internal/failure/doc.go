// Package failure turns the output of a failed test unit into the
// smallest set of commands that reproduce the failure.
//
// A Narrower holds an ordered list of strategies. Each strategy pairs a
// match on the captured output with an extractor producing retry
// records. The first strategy that matches and extracts something wins;
// when none does, the unit is retried verbatim.
package failure
