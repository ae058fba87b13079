package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rodaine/table"

	"github.com/dmagro/klay-bench/internal/stats"
)

// ConsoleReporter prints each periodic snapshot as a table. It implements
// stats.Reporter.
type ConsoleReporter struct {
	w     io.Writer
	start time.Time
}

// NewConsoleReporter returns a reporter printing snapshots to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w, start: time.Now()}
}

// Report prints s with the time elapsed since the reporter was created.
func (r *ConsoleReporter) Report(s stats.Snapshot) {
	RenderSnapshot(r.w, s, time.Since(r.start))
}

// RenderSnapshot writes one progress snapshot.
func RenderSnapshot(w io.Writer, s stats.Snapshot, elapsed time.Duration) {
	fmt.Fprintf(w, "%s %s\n", bold("Progress"), dim(fmt.Sprintf("(%s elapsed)", elapsed.Round(time.Millisecond))))

	tbl := table.New("Calls", "Healthy", "Unhealthy", "Success", "Avg", "Latest")
	tbl.WithWriter(w).WithHeaderFormatter(headerFmt)
	tbl.AddRow(
		FormatNumber(s.Total),
		green(FormatNumber(s.Healthy)),
		formatUnhealthy(s.Unhealthy),
		ColorSuccess(successRate(s)),
		ColorLatency(s.AverageLatencyMillis()),
		ColorLatency(s.LatestLatencyMillis),
	)
	tbl.Print()

	fmt.Fprintf(w, "  Recent blocks: %s\n\n", formatBlocks(s.RecentBlockNumbers))
}

func successRate(s stats.Snapshot) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Healthy) / float64(s.Total) * 100
}

func formatUnhealthy(n uint64) string {
	if n == 0 {
		return dim("0")
	}
	return red(FormatNumber(n))
}

func formatBlocks(numbers []uint64) string {
	if len(numbers) == 0 {
		return dim("—")
	}
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = FormatNumber(n)
	}
	return cyan(strings.Join(parts, ", "))
}
