// Package report provides the JSON model of a finished benchmark run and
// writes it to timestamped report files.
//
// The same Run value backs the terminal summary, so what is printed and what
// is saved never drift apart.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmagro/klay-bench/internal/stats"
)

// DefaultDir is where reports are written when no directory is given.
const DefaultDir = "reports"

// MillisDuration marshals a time.Duration as an integer millisecond count.
type MillisDuration time.Duration

// MarshalJSON writes the duration as whole milliseconds.
func (d MillisDuration) MarshalJSON() ([]byte, error) {
	ms := time.Duration(d).Milliseconds()
	return json.Marshal(ms)
}

func (d MillisDuration) Duration() time.Duration { return time.Duration(d) }

// Settings describes how a run was configured.
type Settings struct {
	Endpoint   string         `json:"endpoint"`
	Selector   string         `json:"selector"`
	Workers    int            `json:"workers"`
	Iterations uint64         `json:"iterations"`
	Delay      MillisDuration `json:"delay_ms"`
	Aggregator string         `json:"aggregator"`
}

// Tail is the latency distribution of a run.
type Tail struct {
	P50 MillisDuration `json:"p50_latency_ms"`
	P95 MillisDuration `json:"p95_latency_ms"`
	P99 MillisDuration `json:"p99_latency_ms"`
	Max MillisDuration `json:"max_latency_ms"`
}

// Run is the report of one benchmark run.
type Run struct {
	Timestamp time.Time      `json:"timestamp"`
	Settings  Settings       `json:"settings"`
	Elapsed   MillisDuration `json:"elapsed_ms"`

	Total          uint64  `json:"total"`
	Healthy        uint64  `json:"healthy"`
	Unhealthy      uint64  `json:"unhealthy"`
	SuccessRate    float64 `json:"success_rate"` // percent
	CallsPerSecond float64 `json:"calls_per_second"`

	AvgLatencyMS    uint64   `json:"avg_latency_ms"`
	LatestLatencyMS uint64   `json:"latest_latency_ms"`
	RecentBlocks    []uint64 `json:"recent_blocks"`

	Tail   *Tail             `json:"tail,omitempty"`   // channel aggregator only
	Errors map[string]uint64 `json:"errors,omitempty"` // failures by kind
}

// NewRun builds the report of a finished run.
func NewRun(settings Settings, sum stats.Summary, errs map[string]uint64, elapsed time.Duration) *Run {
	s := sum.Snapshot
	r := &Run{
		Timestamp:       time.Now().UTC(),
		Settings:        settings,
		Elapsed:         MillisDuration(elapsed),
		Total:           s.Total,
		Healthy:         s.Healthy,
		Unhealthy:       s.Unhealthy,
		AvgLatencyMS:    s.AverageLatencyMillis(),
		LatestLatencyMS: s.LatestLatencyMillis,
		RecentBlocks:    s.RecentBlockNumbers,
	}
	if r.RecentBlocks == nil {
		r.RecentBlocks = []uint64{}
	}
	if s.Total > 0 {
		r.SuccessRate = float64(s.Healthy) / float64(s.Total) * 100
	}
	if elapsed > 0 {
		r.CallsPerSecond = float64(s.Total) / elapsed.Seconds()
	}
	if sum.Tail != (stats.TailLatency{}) {
		r.Tail = &Tail{
			P50: MillisDuration(sum.Tail.P50),
			P95: MillisDuration(sum.Tail.P95),
			P99: MillisDuration(sum.Tail.P99),
			Max: MillisDuration(sum.Tail.Max),
		}
	}
	if len(errs) > 0 {
		r.Errors = errs
	}
	return r
}

// WriteJSON writes data as indented JSON to dir/{prefix}-{YYYYMMDD-HHMMSS}.json,
// creating dir if needed, and returns the file path.
//
// Example filename: "run-20260120-124236.json"
func WriteJSON(dir string, data any, prefix string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", prefix, timestamp))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}

	return path, nil
}
