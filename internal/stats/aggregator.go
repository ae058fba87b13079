// Package stats aggregates the outcomes of benchmark calls.
//
// Workers never touch counters directly. They hand an Outcome to a Recorder,
// either the mutex-guarded Aggregator or a Pipe that funnels outcomes through
// a channel to a single goroutine owning an Aggregator.
package stats

import (
	"sync"
	"time"
)

// RecentBlocks is the size of the window of most recent successful block numbers.
const RecentBlocks = 10

// Outcome is the result of one completed call.
type Outcome struct {
	OK          bool
	BlockNumber uint64 // valid only when OK
	Latency     time.Duration
	Err         error // cause of a failure, if known
}

// Success is a call that returned a block.
func Success(blockNumber uint64, latency time.Duration) Outcome {
	return Outcome{OK: true, BlockNumber: blockNumber, Latency: latency}
}

// Failure is a call that returned an error.
func Failure(latency time.Duration) Outcome {
	return Outcome{Latency: latency}
}

// Recorder accepts call outcomes. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(Outcome)
}

// Reporter receives periodic snapshots.
type Reporter interface {
	Report(Snapshot)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Snapshot)

func (f ReporterFunc) Report(s Snapshot) { f(s) }

// Snapshot is a point-in-time copy of the aggregated counters.
type Snapshot struct {
	Total               uint64
	Healthy             uint64
	Unhealthy           uint64
	TotalLatencyMillis  uint64
	LatestLatencyMillis uint64
	RecentBlockNumbers  []uint64 // oldest first
}

// AverageLatencyMillis is TotalLatencyMillis / Total, or 0 before any call.
func (s Snapshot) AverageLatencyMillis() uint64 {
	if s.Total == 0 {
		return 0
	}
	return s.TotalLatencyMillis / s.Total
}

// Aggregator is the shared statistics state of a benchmark run.
// All fields are guarded by mu; a Record is applied atomically as a whole.
type Aggregator struct {
	mu          sync.Mutex
	snap        Snapshot
	reportEvery uint64
	reporter    Reporter
}

// NewAggregator returns an empty aggregator that hands a snapshot to r after
// every reportEvery-th recorded call. A zero reportEvery or nil r disables
// periodic reports.
func NewAggregator(reportEvery uint64, r Reporter) *Aggregator {
	return &Aggregator{
		reportEvery: reportEvery,
		reporter:    r,
		snap:        Snapshot{RecentBlockNumbers: make([]uint64, 0, RecentBlocks+1)},
	}
}

// Record applies one outcome. The periodic report runs synchronously under
// the aggregator's lock, so reports are delivered in order.
func (a *Aggregator) Record(o Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ms := uint64(o.Latency.Milliseconds())
	s := &a.snap

	s.Total++
	s.TotalLatencyMillis += ms
	s.LatestLatencyMillis = ms

	if o.OK {
		s.Healthy++
		s.RecentBlockNumbers = append(s.RecentBlockNumbers, o.BlockNumber)
		if len(s.RecentBlockNumbers) > RecentBlocks {
			s.RecentBlockNumbers = append(s.RecentBlockNumbers[:0], s.RecentBlockNumbers[1:]...)
		}
	} else {
		s.Unhealthy++
	}

	if a.reporter != nil && a.reportEvery > 0 && s.Total%a.reportEvery == 0 {
		a.reporter.Report(a.copyLocked())
	}
}

// Snapshot returns a copy of the current state.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyLocked()
}

// Reset clears all counters and the block window.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap = Snapshot{RecentBlockNumbers: make([]uint64, 0, RecentBlocks+1)}
}

func (a *Aggregator) copyLocked() Snapshot {
	out := a.snap
	out.RecentBlockNumbers = make([]uint64, len(a.snap.RecentBlockNumbers))
	copy(out.RecentBlockNumbers, a.snap.RecentBlockNumbers)
	return out
}
