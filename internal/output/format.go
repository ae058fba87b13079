// Package output renders benchmark progress, summaries and blocks for the
// terminal.
//
// Every renderer takes an io.Writer so commands decide where output goes
// (stdout in the CLI, a buffer in tests). Colors come from fatih/color and
// switch off automatically when the writer is not a terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()

	headerFmt = color.New(color.FgCyan, color.Underline).SprintfFunc()
)

// FormatNumber adds thousand separators: 24277510 -> "24,277,510".
func FormatNumber(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}

	var out []byte
	for i := range len(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// FormatTimestamp renders a Unix timestamp as UTC time plus a relative age,
// e.g. "2026-01-20 17:02:23 UTC (14s ago)".
func FormatTimestamp(ts uint64, now time.Time) string {
	t := time.Unix(int64(ts), 0)
	ago := now.Sub(t)

	var agoStr string
	switch {
	case ago < 0:
		agoStr = "in the future"
	case ago < time.Minute:
		agoStr = fmt.Sprintf("%ds ago", int(ago.Seconds()))
	case ago < time.Hour:
		agoStr = fmt.Sprintf("%dm ago", int(ago.Minutes()))
	case ago < 24*time.Hour:
		agoStr = fmt.Sprintf("%dh ago", int(ago.Hours()))
	default:
		agoStr = fmt.Sprintf("%dd ago", int(ago.Hours()/24))
	}

	return fmt.Sprintf("%s (%s)", t.UTC().Format("2006-01-02 15:04:05 UTC"), agoStr)
}

// ColorLatency colors a millisecond latency green, yellow or red.
func ColorLatency(ms uint64) string {
	s := fmt.Sprintf("%dms", ms)
	switch {
	case ms < 100:
		return green(s)
	case ms < 300:
		return yellow(s)
	default:
		return red(s)
	}
}

// ColorSuccess colors a success percentage.
func ColorSuccess(pct float64) string {
	s := fmt.Sprintf("%.1f%%", pct)
	switch {
	case pct >= 99:
		return green(s)
	case pct >= 80:
		return yellow(s)
	default:
		return red(s)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
