package failure

import "time"

// Record is one failed test unit, possibly narrowed to a sub case.
type Record struct {
	Title             string        `yaml:"title"`
	Command           string        `yaml:"command"`
	RetryIndividually bool          `yaml:"retry_individually"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Key identifies a record for deduplication.
type Key struct {
	Title   string
	Command string
}

// Key returns the identity of r.
func (r Record) Key() Key {
	return Key{Title: r.Title, Command: r.Command}
}

// Uniq drops records whose key was already seen, keeping first-seen order.
func Uniq(records []Record) []Record {
	seen := make(map[Key]bool, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		out = append(out, r)
	}
	return out
}
