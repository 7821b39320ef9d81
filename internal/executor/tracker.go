package executor

import (
	"sync"
	"time"
)

// QueueStatus is a snapshot of one queue.
type QueueStatus struct {
	Queue   int      `json:"queue"`
	Pending []string `json:"pending"`
}

// Tracker records which units are still pending in each queue. It is the
// only state shared between workers.
type Tracker struct {
	mu      sync.Mutex
	started time.Time
	pending [][]string
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) reset(pending [][]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = time.Now()
	t.pending = pending
}

// done removes the first pending unit with the given title from queue.
func (t *Tracker) done(queue int, title string) (remaining []string, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if queue < len(t.pending) {
		q := t.pending[queue]
		for i, p := range q {
			if p == title {
				t.pending[queue] = append(q[:i:i], q[i+1:]...)
				break
			}
		}
	}
	return t.flatten(), time.Since(t.started)
}

func (t *Tracker) flatten() []string {
	var out []string
	for _, q := range t.pending {
		out = append(out, q...)
	}
	return out
}

// Pending returns the titles not finished yet, in queue order.
func (t *Tracker) Pending() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flatten()
}

// Snapshot returns the pending titles per queue.
func (t *Tracker) Snapshot() []QueueStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]QueueStatus, len(t.pending))
	for i, q := range t.pending {
		out[i] = QueueStatus{Queue: i, Pending: append([]string{}, q...)}
	}
	return out
}
