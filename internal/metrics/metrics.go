// Package metrics exports benchmark outcomes as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmagro/klay-bench/internal/rpc"
	"github.com/dmagro/klay-bench/internal/stats"
)

// Outcome label values.
const (
	OutcomeHealthy   = "healthy"
	OutcomeUnhealthy = "unhealthy"
)

var (
	CallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "klaybench_calls_total",
		Help: "The total number of completed klay_getBlockByNumber calls",
	}, []string{"outcome"})

	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "klaybench_errors_total",
		Help: "Failed calls by error kind",
	}, []string{"kind"})

	CallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "klaybench_call_duration_seconds",
		Help:    "The duration of completed calls, successful or not",
		Buckets: prometheus.DefBuckets,
	})

	LatestBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "klaybench_latest_block_number",
		Help: "Block number of the most recent successful call",
	})
)

// Observe records one outcome in the Prometheus collectors.
func Observe(o stats.Outcome) {
	CallDuration.Observe(o.Latency.Seconds())
	if o.OK {
		CallsTotal.WithLabelValues(OutcomeHealthy).Inc()
		LatestBlock.Set(float64(o.BlockNumber))
		return
	}
	CallsTotal.WithLabelValues(OutcomeUnhealthy).Inc()
	ErrorsTotal.WithLabelValues(string(rpc.Classify(o.Err))).Inc()
}

type instrumented struct {
	next stats.Recorder
}

// Instrument returns a Recorder that observes every outcome before passing
// it on to next.
func Instrument(next stats.Recorder) stats.Recorder {
	return instrumented{next: next}
}

func (r instrumented) Record(o stats.Outcome) {
	Observe(o)
	r.next.Record(o)
}
