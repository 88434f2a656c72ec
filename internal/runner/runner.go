package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/banshee-data/trackseed/internal/event"
	"github.com/banshee-data/trackseed/internal/seeding"
	"github.com/banshee-data/trackseed/internal/timeutil"
	"golang.org/x/sync/errgroup"
)

// Source yields events until it returns io.EOF. event.Reader is a Source.
type Source interface {
	Next() (*event.Event, error)
}

// Result is the output of one event.
type Result struct {
	Seq     int // position in the source, from 0
	EventID uint64
	Output  *seeding.Output
}

// Sink consumes results in source order.
type Sink func(Result) error

// Stats summarises a run.
type Stats struct {
	Events   int
	Seeds    map[string]int // per algorithm
	Duration time.Duration
}

// Runner processes events concurrently.
type Runner struct {
	producer   *seeding.Producer
	workers    int
	queueDepth int
	clock      timeutil.Clock
}

// New returns a Runner with the given number of workers, each running a
// clone of producer. Values below 1 are raised to 1.
func New(producer *seeding.Producer, workers, queueDepth int) *Runner {
	return &Runner{
		producer:   producer,
		workers:    max(workers, 1),
		queueDepth: max(queueDepth, 1),
		clock:      timeutil.RealClock{},
	}
}

// SetClock replaces the clock used to time runs.
func (r *Runner) SetClock(c timeutil.Clock) { r.clock = c }

// window is the most events that may be read ahead of the sink. It bounds
// the results held back for re-ordering.
func (r *Runner) window() int { return r.workers + r.queueDepth }

type job struct {
	seq int
	ev  *event.Event
}

// Run reads src to the end, seeds every event and hands the results to sink
// in source order. Run returns when all goroutines it started have exited.
// A Source blocked in Next is not interrupted by cancellation.
func (r *Runner) Run(ctx context.Context, src Source, sink Sink) (Stats, error) {
	start := r.clock.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, r.queueDepth)
	results := make(chan Result, r.queueDepth)
	// One slot per event read but not yet handed to sink. The oldest such
	// event always holds a slot, so the reader never waits on itself.
	slots := make(chan struct{}, r.window())

	g.Go(func() error {
		defer close(jobs)
		for seq := 0; ; seq++ {
			select {
			case slots <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			ev, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read event %d: %w", seq, err)
			}
			select {
			case jobs <- job{seq: seq, ev: ev}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		producer := r.producer.Clone()
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for j := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, err := producer.Produce(j.ev)
				if err != nil {
					return fmt.Errorf("event %d: %w", j.ev.ID, err)
				}
				select {
				case results <- Result{Seq: j.seq, EventID: j.ev.ID, Output: out}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	stats := Stats{Seeds: make(map[string]int)}
	pending := make(map[int]Result)
	next := 0
	var sinkErr error
	for res := range results {
		if sinkErr != nil {
			continue
		}
		pending[res.Seq] = res
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := sink(ready); err != nil {
				sinkErr = fmt.Errorf("sink event %d: %w", ready.EventID, err)
				cancel()
				break
			}
			<-slots
			stats.Events++
			for _, c := range ready.Output.Collections {
				stats.Seeds[c.Algorithm] += len(c.Seeds)
			}
			next++
		}
	}

	err := g.Wait()
	stats.Duration = r.clock.Since(start)
	if sinkErr != nil {
		err = sinkErr
	}
	if err != nil {
		opsf("run stopped after %d events: %v", stats.Events, err)
		return stats, err
	}
	diagf("%d events in %s with %d workers", stats.Events, stats.Duration, r.workers)
	return stats, nil
}
