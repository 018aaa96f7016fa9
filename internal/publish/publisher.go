// Package publish forwards map events to an outbound sink in batches.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchLoader writes multiple map events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.MapEvent) error
}

// Options tunes batching. Zero values fall back to package defaults.
type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	QueueSize     int
	Clock         clockwork.Clock
}

// Publisher receives map events on the render loop and ships them from its own goroutine.
// Enqueueing never blocks: a full queue drops the event.
type Publisher struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	clock         clockwork.Clock
	events        chan domain.MapEvent
	batchSize     int
	flushInterval time.Duration
	running       atomic.Bool
	ready         atomic.Bool
}

// New creates a Publisher writing to loader.
func New(loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Publisher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = 500 * time.Millisecond
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Publisher{
		loader:        loader,
		logger:        logger,
		metrics:       metrics,
		clock:         opts.Clock,
		events:        make(chan domain.MapEvent, opts.QueueSize),
		batchSize:     opts.BatchSize,
		flushInterval: opts.FlushInterval,
	}
}

// MarkerSelected enqueues a selection event.
func (p *Publisher) MarkerSelected(site domain.Worksite) {
	p.Publish(domain.NewMarkerSelected(site))
}

// MapMoved enqueues a viewport change event.
func (p *Publisher) MapMoved(bounds orb.Bound) {
	p.Publish(domain.NewMapMoved(geo.ViewPortFromBound(bounds)))
}

// Publish enqueues an event, dropping it when the queue is full.
func (p *Publisher) Publish(event domain.MapEvent) {
	select {
	case p.events <- event:
	default:
		p.metrics.EventsDropped.Inc()
		p.logger.Warn("event queue full, dropping event", "type", event.Type, "key", event.Key())
	}
}

// Pending returns the number of queued events not yet taken by Run.
func (p *Publisher) Pending() int {
	return len(p.events)
}

// CheckReadiness returns nil once the publisher loop is running.
func (p *Publisher) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("event publisher is not running")
	}
	return nil
}

// Delivered reports whether at least one batch has reached the loader.
func (p *Publisher) Delivered() bool {
	return p.ready.Load()
}

// Run drains the queue until the context is cancelled. A batch is flushed when
// it reaches the batch size or when the flush interval elapses.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("event publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.metrics.PublisherRunning.Set(1)
	p.running.Store(true)
	defer func() {
		p.running.Store(false)
		p.metrics.PublisherRunning.Set(0)
	}()

	backoff := initialBackoff
	batch := make([]domain.MapEvent, 0, p.batchSize)
	ticker := p.clock.NewTicker(p.flushInterval)
	defer ticker.Stop()

	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		if !p.deliver(ctx, batch, &backoff) {
			return false
		}
		batch = make([]domain.MapEvent, 0, p.batchSize)
		return true
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("event publisher stopping", "reason", ctx.Err(), "unsent", len(batch))
			return nil
		case event := <-p.events:
			batch = append(batch, event)
			if len(batch) >= p.batchSize && !flush() {
				return nil
			}
		case <-ticker.Chan():
			if !flush() {
				return nil
			}
		}
	}
}

// deliver retries the batch until it loads or the context ends. Returns false if the loop should stop.
func (p *Publisher) deliver(ctx context.Context, batch []domain.MapEvent, backoff *time.Duration) bool {
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return false
		}
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish batch failed", "error", err, "batch_size", len(batch), "retry_in", *backoff)
		if !p.sleep(ctx, *backoff) {
			return false
		}
		*backoff = retry.NextBackoff(*backoff, maxBackoff)
	}

	*backoff = initialBackoff
	p.metrics.PublishBatchSize.Observe(float64(len(batch)))
	for _, e := range batch {
		p.metrics.EventsPublished.WithLabelValues(string(e.Type)).Inc()
	}
	p.ready.Store(true)
	return true
}

func (p *Publisher) sleep(ctx context.Context, d time.Duration) bool {
	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
