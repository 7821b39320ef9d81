// Package executor runs test queues.
//
// Each queue gets exactly one worker goroutine that executes its units in
// order, one at a time, each bounded only by its own timeout. Workers
// collect failures in private buffers that are merged in queue order once
// every worker has finished, so the result does not depend on timing.
//
// Per-unit life cycle:
//
//	pending -> running -> passed
//	                   -> failed (narrowed from output)
//	                   -> timed out / not started (retried verbatim)
package executor
