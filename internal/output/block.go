package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dmagro/klay-bench/internal/rpc"
)

// BlockView is a fetched block plus where and how fast it came back.
type BlockView[TX any] struct {
	Block    *rpc.Block[TX]
	Endpoint string
	Latency  time.Duration
	Now      time.Time // reference for the relative timestamp; zero means time.Now
}

// RenderBlock writes a single block inspection.
func RenderBlock[TX any](w io.Writer, v BlockView[TX]) {
	now := v.Now
	if now.IsZero() {
		now = time.Now()
	}
	b := v.Block

	fmt.Fprintf(w, "\n%s #%s\n", bold("Block"), bold(FormatNumber(b.Number.Uint64())))
	fmt.Fprintln(w, "══════════════════════════════════════════════════")
	fmt.Fprintf(w, "  %s         %s\n", bold("Hash:"), b.Hash)
	fmt.Fprintf(w, "  %s       %s\n", bold("Parent:"), b.ParentHash)
	fmt.Fprintf(w, "  %s    %s %s\n", bold("Timestamp:"), FormatTimestamp(b.Timestamp.Uint64(), now),
		dim(fmt.Sprintf("(+%d fos)", b.TimestampFoS.Uint64())))
	fmt.Fprintf(w, "  %s     %s\n", bold("Gas used:"), FormatNumber(b.GasUsed.Uint64()))
	fmt.Fprintf(w, "  %s         %s bytes\n", bold("Size:"), FormatNumber(b.Size.Uint64()))
	fmt.Fprintf(w, "  %s   %s %s\n", bold("BlockScore:"), formatBig(b.BlockScore),
		dim(fmt.Sprintf("(total %s)", formatBig(b.TotalBlockScore))))
	fmt.Fprintf(w, "  %s       %s\n", bold("Reward:"), formatBig(b.Reward))
	fmt.Fprintf(w, "  %s %d\n", bold("Transactions:"), b.TxCount())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s     %s %s\n", bold("Endpoint:"), v.Endpoint, dim(fmt.Sprintf("(%dms)", v.Latency.Milliseconds())))
	fmt.Fprintln(w)
}

func formatBig(q *rpc.BigQuantity) string {
	if q == nil {
		return "—"
	}
	return q.String()
}

// RenderNoBlock reports that the node has no block for a selector.
func RenderNoBlock(w io.Writer, sel rpc.BlockNumber, endpoint string) {
	fmt.Fprintf(w, "\n%s no block for %s at %s\n\n", yellow("⚠"), sel, endpoint)
}
