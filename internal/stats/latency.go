package stats

import (
	"math"
	"slices"
	"time"
)

// TailLatency holds the p50, p95, p99 and max of a set of call latencies.
type TailLatency struct {
	P50, P95, P99, Max time.Duration
}

// LatencySamples retains per-call latencies for a tail latency summary.
// Only healthy calls are sampled, the same way the health summary only
// measures calls that returned a block: a refused connection fails in
// microseconds and is counted by the aggregator, not sampled here.
//
// LatencySamples is not safe for concurrent use. The Pipe's collecting
// goroutine is its only writer.
type LatencySamples struct {
	samples []time.Duration
	sorted  bool
}

// Add samples o's latency if o is a healthy call.
//
// Parameters:
//   - o: Completed call outcome
//
// Returns:
//   - bool: true if the latency was retained
func (s *LatencySamples) Add(o Outcome) bool {
	if !o.OK {
		return false
	}
	s.samples = append(s.samples, o.Latency)
	s.sorted = false
	return true
}

// Len is the number of retained samples.
func (s *LatencySamples) Len() int { return len(s.samples) }

// Tail computes p50, p95, p99 and max over the retained samples.
// Samples are sorted in place on first use after an Add; the set is owned,
// so no copy is made. With no samples the zero value is returned.
//
// Returns:
//   - TailLatency: Percentiles by the nearest-rank method; with few samples
//     P95 and P99 collapse onto Max
func (s *LatencySamples) Tail() TailLatency {
	if len(s.samples) == 0 {
		return TailLatency{}
	}
	if !s.sorted {
		slices.Sort(s.samples)
		s.sorted = true
	}
	return tailOf(s.samples)
}

// CalculateTailLatency is Tail for an ad hoc slice of latencies. The input
// is copied and left in its original order.
func CalculateTailLatency(latencies []time.Duration) TailLatency {
	if len(latencies) == 0 {
		return TailLatency{}
	}
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)
	return tailOf(sorted)
}

func tailOf(sorted []time.Duration) TailLatency {
	return TailLatency{
		P50: Percentile(sorted, 0.50),
		P95: Percentile(sorted, 0.95),
		P99: Percentile(sorted, 0.99),
		Max: sorted[len(sorted)-1],
	}
}

// Percentile returns the value at the given percentile of an ascending slice
// using the nearest-rank method.
//
// Parameters:
//   - sorted: Latencies in ascending order
//   - p: Percentile as a fraction (0.95 for p95)
//
// Returns:
//   - time.Duration: sorted[ceil(n*p)-1], clamped to [0, n-1]; 0 for an empty slice
func Percentile(sorted []time.Duration, p float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	rank := int(math.Ceil(float64(n) * p))
	return sorted[min(max(rank-1, 0), n-1)]
}
