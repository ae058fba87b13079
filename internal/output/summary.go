package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/rodaine/table"

	"github.com/dmagro/klay-bench/internal/report"
)

// RenderSummary writes the final report of a run: settings, totals, tail
// latency when it was collected, and the error breakdown.
func RenderSummary(w io.Writer, r *report.Run) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cyan("╭──────────────────────────────────────────────────────────╮"))
	fmt.Fprintf(w, "%s %-56s %s\n", cyan("│"), bold("klay_getBlockByNumber benchmark"), cyan("│"))
	fmt.Fprintf(w, "%s %-56s %s\n", cyan("│"), r.Timestamp.Format("2006-01-02 15:04:05 MST"), cyan("│"))
	fmt.Fprintln(w, cyan("╰──────────────────────────────────────────────────────────╯"))
	fmt.Fprintln(w)

	st := r.Settings
	fmt.Fprintf(w, "  Endpoint:   %s\n", st.Endpoint)
	fmt.Fprintf(w, "  Selector:   %s\n", st.Selector)
	fmt.Fprintf(w, "  Workers:    %d × %s\n", st.Workers, formatIterations(st.Iterations))
	fmt.Fprintf(w, "  Aggregator: %s\n", st.Aggregator)
	fmt.Fprintf(w, "  Elapsed:    %s\n", r.Elapsed.Duration().Round(time.Millisecond))
	fmt.Fprintln(w)

	fmt.Fprintln(w, bold("Results"))
	tbl := table.New("Calls", "Healthy", "Unhealthy", "Success", "Avg", "Latest", "Calls/s")
	tbl.WithWriter(w).WithHeaderFormatter(headerFmt)
	tbl.AddRow(
		FormatNumber(r.Total),
		green(FormatNumber(r.Healthy)),
		formatUnhealthy(r.Unhealthy),
		ColorSuccess(r.SuccessRate),
		ColorLatency(r.AvgLatencyMS),
		ColorLatency(r.LatestLatencyMS),
		fmt.Sprintf("%.1f", r.CallsPerSecond),
	)
	tbl.Print()
	fmt.Fprintln(w)

	if r.Tail != nil {
		fmt.Fprintln(w, bold("Latency (healthy calls)"))
		tail := table.New("p50", "p95", "p99", "Max")
		tail.WithWriter(w).WithHeaderFormatter(headerFmt)
		tail.AddRow(
			ColorLatency(uint64(r.Tail.P50.Duration().Milliseconds())),
			ColorLatency(uint64(r.Tail.P95.Duration().Milliseconds())),
			ColorLatency(uint64(r.Tail.P99.Duration().Milliseconds())),
			ColorLatency(uint64(r.Tail.Max.Duration().Milliseconds())),
		)
		tail.Print()
		fmt.Fprintln(w)
	}

	renderErrorBreakdown(w, r.Errors)

	fmt.Fprintf(w, "  Recent blocks: %s\n\n", formatBlocks(r.RecentBlocks))
}

func renderErrorBreakdown(w io.Writer, errs map[string]uint64) {
	if len(errs) == 0 {
		fmt.Fprintln(w, green("No errors recorded."))
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintln(w, bold("Error Breakdown"))
	tbl := table.New("Kind", "Count")
	tbl.WithWriter(w).WithHeaderFormatter(headerFmt)
	for _, kind := range slices.Sorted(maps.Keys(errs)) {
		tbl.AddRow(kind, red(FormatNumber(errs[kind])))
	}
	tbl.Print()
	fmt.Fprintln(w)
}

func formatIterations(n uint64) string {
	if n == 0 {
		return "unbounded"
	}
	return FormatNumber(n) + " iterations"
}
