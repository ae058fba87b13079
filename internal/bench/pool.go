// Package bench drives concurrent klay_getBlockByNumber load against a node.
//
// A Pool runs a fixed number of workers. Each worker owns its own Fetcher
// (and therefore its own transport and request id sequence) and reports every
// completed call to one shared stats.Recorder. Failed calls are counted and
// the loop moves on; nothing is retried.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dmagro/klay-bench/internal/rpc"
	"github.com/dmagro/klay-bench/internal/stats"
)

// Config controls the shape of a run.
type Config struct {
	Workers    int
	Iterations uint64 // per worker; 0 runs until the context is cancelled
	Delay      time.Duration
	Selector   rpc.BlockNumber

	// IncludeTransactions asks the node for full transaction objects.
	IncludeTransactions bool
}

// Fetcher fetches one block. found is false when the node has no block for
// the selector.
type Fetcher interface {
	FetchBlock(ctx context.Context, sel rpc.BlockNumber) (number uint64, found bool, err error)
}

// FetcherFactory builds the fetcher for worker i.
type FetcherFactory func(worker int) (Fetcher, error)

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used for worker lifecycle and per-call failures.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// WithRateLimit caps the combined call rate of all workers. The limiter has
// a burst of one, so calls are spaced 1/perSecond apart from the first call
// on. perSecond <= 0 leaves calls unpaced.
func WithRateLimit(perSecond float64) Option {
	return func(p *Pool) {
		if perSecond <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// Pool is a benchmark run. It is not reusable across concurrent Run calls.
type Pool struct {
	cfg        Config
	newFetcher FetcherFactory
	sink       stats.Recorder
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// NewPool prepares a run. Nothing is dialed until Run.
//
// Parameters:
//   - cfg: Worker count, per-worker iterations, delay and selector
//   - newFetcher: Called once per worker, before any worker starts
//   - sink: Receives every recorded outcome; must be safe for concurrent use
//   - opts: Logger and rate limit
//
// Returns:
//   - *Pool: Ready to Run
func NewPool(cfg Config, newFetcher FetcherFactory, sink stats.Recorder, opts ...Option) *Pool {
	p := &Pool{
		cfg:        cfg,
		newFetcher: newFetcher,
		sink:       sink,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run builds every worker's fetcher, then starts the workers and waits for
// them to finish. A fetcher construction failure aborts the run before any
// call is made. Per-call errors never stop the run; cancelling ctx does,
// and Run then returns nil.
func (p *Pool) Run(ctx context.Context) error {
	if p.cfg.Workers <= 0 {
		return fmt.Errorf("workers must be > 0, got %d", p.cfg.Workers)
	}

	fetchers := make([]Fetcher, p.cfg.Workers)
	for i := range fetchers {
		f, err := p.newFetcher(i)
		if err != nil {
			return fmt.Errorf("worker %d: %w", i, err)
		}
		fetchers[i] = f
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range fetchers {
		g.Go(func() error {
			return p.work(ctx, i, f)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (p *Pool) work(ctx context.Context, id int, f Fetcher) error {
	log := p.log.With().Int("worker", id).Logger()
	log.Info().Msg("worker started")

	var done uint64
	for p.cfg.Iterations == 0 || done < p.cfg.Iterations {
		if ctx.Err() != nil {
			break
		}
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				break
			}
		}

		start := time.Now()
		number, found, err := f.FetchBlock(ctx, p.cfg.Selector)
		elapsed := time.Since(start)
		done++

		switch {
		case err != nil:
			if ctx.Err() != nil {
				// aborted by shutdown, not by the node
				break
			}
			log.Debug().Err(err).Dur("latency", elapsed).Msg("call failed")
			o := stats.Failure(elapsed)
			o.Err = err
			p.sink.Record(o)
		case !found:
			log.Debug().Stringer("selector", p.cfg.Selector).Msg("no block for selector")
		default:
			p.sink.Record(stats.Success(number, elapsed))
		}

		if p.cfg.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.Delay):
			}
		}
	}

	log.Info().Uint64("calls", done).Msg("worker stopped")
	return nil
}

// KlayFetcher fetches blocks through an rpc.Client.
type KlayFetcher struct {
	Client *rpc.Client
	Full   bool
}

// FetchBlock calls klay_getBlockByNumber, with full transaction objects when
// Full is set, and reports the block's number.
func (k KlayFetcher) FetchBlock(ctx context.Context, sel rpc.BlockNumber) (uint64, bool, error) {
	if k.Full {
		block, err := k.Client.Klay().GetBlockByNumberFull(ctx, sel)
		if err != nil || block == nil {
			return 0, false, err
		}
		return block.Number.Uint64(), true, nil
	}

	block, err := k.Client.Klay().GetBlockByNumber(ctx, sel)
	if err != nil || block == nil {
		return 0, false, err
	}
	return block.Number.Uint64(), true, nil
}

// HTTPFetchers returns a factory that dials a fresh HTTP client per worker.
func HTTPFetchers(endpoint string, full bool, opts ...rpc.HTTPOption) FetcherFactory {
	return func(int) (Fetcher, error) {
		client, err := rpc.Dial(endpoint, opts...)
		if err != nil {
			return nil, err
		}
		return KlayFetcher{Client: client, Full: full}, nil
	}
}
