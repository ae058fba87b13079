package stats

import (
	"sync"
)

// Summary is the final result of a run.
type Summary struct {
	Snapshot Snapshot
	Tail     TailLatency // healthy calls only; zero unless samples were retained
}

// Pipe is a channel-backed Recorder. Workers send outcomes; a single
// goroutine applies them to the aggregator in arrival order, so the hot path
// never contends on the aggregator lock. The goroutine also samples the
// latency of every healthy call for the tail latency summary.
//
// Record must not be called after Close.
type Pipe struct {
	agg  *Aggregator
	ch   chan Outcome
	done chan struct{}

	once    sync.Once
	samples LatencySamples
}

// NewPipe starts the collecting goroutine. buffer is the channel capacity.
func NewPipe(agg *Aggregator, buffer int) *Pipe {
	if buffer < 0 {
		buffer = 0
	}
	p := &Pipe{
		agg:  agg,
		ch:   make(chan Outcome, buffer),
		done: make(chan struct{}),
	}
	go p.collect()
	return p
}

func (p *Pipe) collect() {
	defer close(p.done)
	for o := range p.ch {
		p.agg.Record(o)
		p.samples.Add(o)
	}
}

// Record hands o to the collecting goroutine. It blocks while the buffer
// is full.
func (p *Pipe) Record(o Outcome) {
	p.ch <- o
}

// Close waits until every sent outcome has been applied and returns the
// final summary. It is safe to call more than once.
func (p *Pipe) Close() Summary {
	p.once.Do(func() { close(p.ch) })
	<-p.done
	return Summary{
		Snapshot: p.agg.Snapshot(),
		Tail:     p.samples.Tail(),
	}
}
