package stats

import (
	"maps"
	"sync"
)

// Tally counts failures by category on their way to another Recorder.
type Tally struct {
	next     Recorder
	classify func(error) string

	mu     sync.Mutex
	counts map[string]uint64
}

// NewTally wraps next. classify names the category of a failure's Err; it
// is called with a nil error for failures whose cause is unknown.
func NewTally(next Recorder, classify func(error) string) *Tally {
	return &Tally{
		next:     next,
		classify: classify,
		counts:   make(map[string]uint64),
	}
}

// Record counts o under its failure kind when o is a failure, then forwards
// it to the next recorder.
func (t *Tally) Record(o Outcome) {
	if !o.OK {
		kind := t.classify(o.Err)
		t.mu.Lock()
		t.counts[kind]++
		t.mu.Unlock()
	}
	t.next.Record(o)
}

// Counts returns a copy of the failure counts.
func (t *Tally) Counts() map[string]uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return maps.Clone(t.counts)
}
