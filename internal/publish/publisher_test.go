package publish_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/observability"
	"github.com/couchcryptid/worksite-map/internal/publish"
)

type mockLoader struct {
	mu       sync.Mutex
	failures int
	calls    int
	loaded   []domain.MapEvent
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.MapEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("broker unavailable")
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loaded)
}

func (m *mockLoader) events() []domain.MapEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.MapEvent(nil), m.loaded...)
}

func start(t *testing.T, p *publish.Publisher) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	return func() {
		stop()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("publisher did not stop")
		}
	}
}

func TestPublisher_FlushesFullBatch(t *testing.T) {
	loader := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	p := publish.New(loader, slog.Default(), metrics, publish.Options{
		BatchSize: 2,
		Clock:     clockwork.NewFakeClock(),
	})

	p.MarkerSelected(domain.Worksite{ID: 7})
	p.MapMoved(orb.Bound{Min: orb.Point{-91, 29}, Max: orb.Point{-90, 30}})

	stop := start(t, p)
	defer stop()

	require.Eventually(t, func() bool { return loader.count() == 2 }, time.Second, 5*time.Millisecond)

	got := loader.events()
	assert.Equal(t, domain.EventMarkerSelected, got[0].Type)
	assert.Equal(t, int64(7), got[0].Worksite.ID)
	assert.Equal(t, domain.EventMapMoved, got[1].Type)
	require.NotNil(t, got[1].ViewPort)
	assert.InDelta(t, 29.0, got[1].ViewPort.LatMin, 1e-9)
	assert.InDelta(t, -90.0, got[1].ViewPort.LonMax, 1e-9)

	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("marker_selected")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("map_moved")), 0)
	assert.True(t, p.Delivered())
}

func TestPublisher_FlushesOnInterval(t *testing.T) {
	loader := &mockLoader{}
	clock := clockwork.NewFakeClock()
	p := publish.New(loader, slog.Default(), observability.NewMetricsForTesting(), publish.Options{
		BatchSize:     50,
		FlushInterval: 500 * time.Millisecond,
		Clock:         clock,
	})

	p.MarkerSelected(domain.Worksite{ID: 1})

	stop := start(t, p)
	defer stop()

	require.Eventually(t, func() bool {
		clock.Advance(500 * time.Millisecond)
		return loader.count() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPublisher_RetriesWithBackoff(t *testing.T) {
	loader := &mockLoader{failures: 2}
	clock := clockwork.NewFakeClock()
	metrics := observability.NewMetricsForTesting()
	p := publish.New(loader, slog.Default(), metrics, publish.Options{
		BatchSize: 1,
		Clock:     clock,
	})

	p.MarkerSelected(domain.Worksite{ID: 3})

	stop := start(t, p)
	defer stop()

	require.Eventually(t, func() bool {
		clock.Advance(5 * time.Second)
		return loader.count() == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.InDelta(t, 2.0, testutil.ToFloat64(metrics.PublishErrors), 0)
	assert.Equal(t, int64(3), loader.events()[0].Worksite.ID)
}

func TestPublisher_DropsWhenQueueFull(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := publish.New(&mockLoader{}, slog.Default(), metrics, publish.Options{QueueSize: 1})

	p.MarkerSelected(domain.Worksite{ID: 1})
	p.MarkerSelected(domain.Worksite{ID: 2})

	assert.Equal(t, 1, p.Pending())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.EventsDropped), 0)
}

func TestPublisher_CheckReadiness(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	p := publish.New(&mockLoader{}, slog.Default(), metrics, publish.Options{Clock: clockwork.NewFakeClock()})

	require.Error(t, p.CheckReadiness(context.Background()))

	stop := start(t, p)
	require.Eventually(t, func() bool {
		return p.CheckReadiness(context.Background()) == nil
	}, time.Second, 5*time.Millisecond)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.PublisherRunning), 0)

	stop()
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.PublisherRunning), 0)
}

func TestPublisher_StopsWhileBackingOff(t *testing.T) {
	loader := &mockLoader{failures: 100}
	p := publish.New(loader, slog.Default(), observability.NewMetricsForTesting(), publish.Options{
		BatchSize: 1,
		Clock:     clockwork.NewFakeClock(),
	})
	p.MarkerSelected(domain.Worksite{ID: 1})

	stop := start(t, p)
	require.Eventually(t, func() bool {
		loader.mu.Lock()
		defer loader.mu.Unlock()
		return loader.calls >= 1
	}, time.Second, 5*time.Millisecond)
	stop()

	assert.Zero(t, loader.count())
}
