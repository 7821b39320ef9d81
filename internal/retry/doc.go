// Package retry runs a test plan and re-runs its failures.
//
// The first pass runs every queue in parallel. Its failures are
// deduplicated and compared with a threshold proportional to the number
// of units; more failures than that point to broken infrastructure and
// end the run at once. Otherwise failures are re-run as a single
// sequential queue for a bounded number of passes, stopping early once a
// pass comes back clean.
package retry
