package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmagro/klay-bench/internal/logging"
	"github.com/dmagro/klay-bench/internal/metrics"
	"github.com/dmagro/klay-bench/internal/rpc"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

const blockTemplate = `{
	"blockscore":"0x1","extraData":"0x","gasUsed":"0x5208","governanceData":"0x",
	"hash":"0x%064x","logsBloom":"0x","number":"0x%x",
	"parentHash":"0x%064x","receiptsRoot":"0x%064x","reward":"0x0","size":"0x2a3",
	"stateRoot":"0x00","timestamp":"0x65a1b2c3","timestampFoS":"0x0","totalBlockScore":"0x1b",
	"transactions":[],"transactionsRoot":"0x%064x","voteData":"0x"}`

// newNode serves klay_getBlockByNumber; every failEvery-th call gets a 500.
func newNode(t *testing.T, failEvery uint64) (*httptest.Server, *atomic.Uint64) {
	t.Helper()
	var calls atomic.Uint64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpc.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := calls.Add(1)
		if failEvery > 0 && n%failEvery == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		block := fmt.Sprintf(blockTemplate, n, 26, 25, 0, 0)
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":%s}`, req.ID, block)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunJSON(t *testing.T) {
	srv, calls := newNode(t, 4)

	out, err := execute(t, "run", "--endpoint", srv.URL, "--workers", "2", "--iterations", "10", "--json", "--log-level", "error")
	require.NoError(t, err)

	var got struct {
		Total        uint64            `json:"total"`
		Healthy      uint64            `json:"healthy"`
		Unhealthy    uint64            `json:"unhealthy"`
		RecentBlocks []uint64          `json:"recent_blocks"`
		Errors       map[string]uint64 `json:"errors"`
		Settings     struct {
			Workers    int    `json:"workers"`
			Aggregator string `json:"aggregator"`
		} `json:"settings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, uint64(20), calls.Load())
	assert.Equal(t, uint64(20), got.Total)
	assert.Equal(t, uint64(5), got.Unhealthy)
	assert.Equal(t, uint64(15), got.Healthy)
	assert.Equal(t, uint64(5), got.Errors["server_error"])
	assert.Len(t, got.RecentBlocks, 10)
	assert.Equal(t, 2, got.Settings.Workers)
	assert.Equal(t, "mutex", got.Settings.Aggregator)
}

func TestRunChannelTables(t *testing.T) {
	srv, _ := newNode(t, 0)

	out, err := execute(t, "run", "--endpoint", srv.URL, "--workers", "3", "--iterations", "5",
		"--report-every", "5", "--aggregator", "channel", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "Progress")
	assert.Contains(t, out, "Results")
	assert.Contains(t, out, "p95")
	assert.Contains(t, out, "No errors recorded.")
}

func TestRunSavesReport(t *testing.T) {
	srv, _ := newNode(t, 0)
	dir := t.TempDir()

	_, err := execute(t, "run", "--endpoint", srv.URL, "--workers", "1", "--iterations", "2",
		"--json", "--save", "--reports-dir", dir, "--log-level", "error")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "run-")
}

func TestRunConfigFileWithOverrides(t *testing.T) {
	srv, calls := newNode(t, 0)
	cfgPath := filepath.Join(t.TempDir(), "klaybench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("endpoint: %s\nworkers: 2\niterations: 3\n", srv.URL)), 0o644))

	_, err := execute(t, "run", "--config", cfgPath, "--iterations", "4", "--json", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), calls.Load())
}

func TestRunRejectsBadConfig(t *testing.T) {
	_, err := execute(t, "run", "--endpoint", "ftp://node", "--log-level", "error")
	assert.ErrorContains(t, err, "scheme")

	_, err = execute(t, "run", "--aggregator", "spinlock", "--log-level", "error")
	assert.ErrorContains(t, err, "aggregator")
}

func TestBlockCommand(t *testing.T) {
	srv, _ := newNode(t, 0)

	out, err := execute(t, "block", "26", "--endpoint", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "Block #26")
	assert.Contains(t, out, "21,000")

	out, err = execute(t, "block", "0x1a", "--endpoint", srv.URL, "--full", "--json")
	require.NoError(t, err)
	var block map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &block))
	assert.Equal(t, "0x1a", block["number"])
}

func TestBlockCommandBadSelector(t *testing.T) {
	_, err := execute(t, "block", "tip")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "klaybench dev\n", out)
}

// newStalledNode accepts requests and never answers until the client gives up.
func newStalledNode(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBlockCommandDefaultTimeout(t *testing.T) {
	prev := defaultBlockTimeout
	defaultBlockTimeout = 200 * time.Millisecond
	t.Cleanup(func() { defaultBlockTimeout = prev })

	srv := newStalledNode(t)

	start := time.Now()
	_, err := execute(t, "block", "--endpoint", srv.URL, "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, rpc.KindTimeout, rpc.Classify(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestBlockCommandConfigTimeoutWins(t *testing.T) {
	prev := defaultBlockTimeout
	defaultBlockTimeout = time.Hour
	t.Cleanup(func() { defaultBlockTimeout = prev })

	srv := newStalledNode(t)
	cfgPath := filepath.Join(t.TempDir(), "klaybench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("timeout: 200ms\n"), 0o644))

	start := time.Now()
	_, err := execute(t, "block", "--config", cfgPath, "--endpoint", srv.URL, "--log-level", "error")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStopMetricsLogsShutdownFailure(t *testing.T) {
	var logs bytes.Buffer
	require.NoError(t, logging.Setup(&logs, "warn"))
	t.Cleanup(func() { logging.Setup(os.Stderr, "info") })

	srv, err := metrics.Listen("127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve()

	// a half-sent request keeps the connection active past the deadline
	conn, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_, err = conn.Write([]byte("GET /metrics HTTP/1.1\r\n"))
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	stopMetrics(srv, 10*time.Millisecond)

	assert.Contains(t, logs.String(), "metrics server shutdown")
}
