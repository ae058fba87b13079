package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dmagro/klay-bench/internal/bench"
	"github.com/dmagro/klay-bench/internal/config"
	"github.com/dmagro/klay-bench/internal/logging"
	"github.com/dmagro/klay-bench/internal/metrics"
	"github.com/dmagro/klay-bench/internal/output"
	"github.com/dmagro/klay-bench/internal/report"
	"github.com/dmagro/klay-bench/internal/rpc"
	"github.com/dmagro/klay-bench/internal/stats"
)

type runOptions struct {
	endpoint    string
	workers     int
	iterations  uint64
	delay       time.Duration
	reportEvery uint64
	selector    string
	aggregator  string
	timeout     time.Duration
	rate        float64
	metricsAddr string
	full        bool

	json       bool
	save       bool
	reportsDir string
}

func runCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the klay_getBlockByNumber load benchmark",
		Long: `Start N workers that each call klay_getBlockByNumber in a loop and
aggregate health and latency statistics. Failed calls are counted, never retried.

Examples:
  klaybench run
  klaybench run --endpoint https://node:8551 --workers 50 --iterations 1000
  klaybench run --iterations 0 --delay 100ms --metrics-addr :9100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
			cfg, err := config.Read(cfgPath)
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if !cmd.Root().PersistentFlags().Changed("log-level") {
				if err := logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
					return err
				}
			}
			return runBench(cmd, cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.endpoint, "endpoint", config.DefaultEndpoint, "Node JSON-RPC URL")
	f.IntVar(&opts.workers, "workers", config.DefaultWorkers, "Number of concurrent workers")
	f.Uint64Var(&opts.iterations, "iterations", config.DefaultIterations, "Calls per worker (0 = until interrupted)")
	f.DurationVar(&opts.delay, "delay", 0, "Pause after each call")
	f.Uint64Var(&opts.reportEvery, "report-every", config.DefaultReportEvery, "Print a snapshot every N calls (0 = never)")
	f.StringVar(&opts.selector, "selector", config.DefaultSelector, "Block selector: latest, earliest, pending, 0x hex or decimal")
	f.StringVar(&opts.aggregator, "aggregator", config.DefaultAggregator, "Statistics aggregator: mutex or channel")
	f.DurationVar(&opts.timeout, "timeout", 0, "Per-call timeout (0 = none)")
	f.Float64Var(&opts.rate, "rate", 0, "Max calls per second across all workers (0 = unpaced)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9100)")
	f.BoolVar(&opts.full, "full", false, "Request full transaction objects")
	f.BoolVar(&opts.json, "json", false, "Print the final report as JSON instead of tables")
	f.BoolVar(&opts.save, "save", false, "Also write the final report to a JSON file")
	f.StringVar(&opts.reportsDir, "reports-dir", report.DefaultDir, "Directory for --save")
	return cmd
}

// apply copies explicitly set flags over the file configuration.
func (o runOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("endpoint") {
		cfg.Endpoint = o.endpoint
	}
	if f.Changed("workers") {
		cfg.Workers = o.workers
	}
	if f.Changed("iterations") {
		cfg.Iterations = o.iterations
	}
	if f.Changed("delay") {
		cfg.Delay = o.delay
	}
	if f.Changed("report-every") {
		cfg.ReportEvery = o.reportEvery
	}
	if f.Changed("selector") {
		cfg.Selector = o.selector
	}
	if f.Changed("aggregator") {
		cfg.Aggregator = o.aggregator
	}
	if f.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if f.Changed("rate") {
		cfg.RateLimit = o.rate
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr = o.metricsAddr
	}
	if f.Changed("full") {
		cfg.IncludeTransactions = o.full
	}
}

func runBench(cmd *cobra.Command, cfg *config.Config, opts runOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	var reporter stats.Reporter
	if !opts.json {
		reporter = output.NewConsoleReporter(out)
	}
	agg := stats.NewAggregator(cfg.ReportEvery, reporter)

	var (
		sink stats.Recorder = agg
		pipe *stats.Pipe
	)
	if cfg.Aggregator == config.AggregatorChannel {
		pipe = stats.NewPipe(agg, cfg.Workers*4)
		defer pipe.Close()
		sink = pipe
	}

	tally := stats.NewTally(sink, func(err error) string { return string(rpc.Classify(err)) })
	var rec stats.Recorder = tally

	if cfg.MetricsAddr != "" {
		srv, err := metrics.Listen(cfg.MetricsAddr)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		defer stopMetrics(srv, 5*time.Second)
		rec = metrics.Instrument(rec)
	}

	var httpOpts []rpc.HTTPOption
	if cfg.Timeout > 0 {
		httpOpts = append(httpOpts, rpc.WithTimeout(cfg.Timeout))
	}

	pool := bench.NewPool(bench.Config{
		Workers:             cfg.Workers,
		Iterations:          cfg.Iterations,
		Delay:               cfg.Delay,
		Selector:            cfg.BlockNumber(),
		IncludeTransactions: cfg.IncludeTransactions,
	}, bench.HTTPFetchers(cfg.Endpoint, cfg.IncludeTransactions, httpOpts...), rec,
		bench.WithLogger(log.Logger),
		bench.WithRateLimit(cfg.RateLimit),
	)

	log.Info().
		Str("endpoint", cfg.Endpoint).
		Int("workers", cfg.Workers).
		Uint64("iterations", cfg.Iterations).
		Str("aggregator", cfg.Aggregator).
		Msg("starting benchmark")

	start := time.Now()
	if err := pool.Run(ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		log.Warn().Msg("interrupted, reporting partial results")
	}

	sum := stats.Summary{Snapshot: agg.Snapshot()}
	if pipe != nil {
		sum = pipe.Close()
	}

	run := report.NewRun(report.Settings{
		Endpoint:   cfg.Endpoint,
		Selector:   cfg.BlockNumber().String(),
		Workers:    cfg.Workers,
		Iterations: cfg.Iterations,
		Delay:      report.MillisDuration(cfg.Delay),
		Aggregator: cfg.Aggregator,
	}, sum, tally.Counts(), elapsed)

	if opts.json {
		if err := output.WriteJSON(out, run); err != nil {
			return err
		}
	} else {
		output.RenderSummary(out, run)
	}

	if opts.save {
		path, err := report.WriteJSON(opts.reportsDir, run, "run")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", path)
	}
	return nil
}

// stopMetrics shuts the metrics server down, giving in-flight scrapes up to
// timeout to finish.
func stopMetrics(srv *metrics.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("metrics server shutdown")
	}
}
