package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/observability"
)

// --- mocks for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

type countingTiles struct {
	calls int
	err   error
}

func (m *countingTiles) Tile(_ context.Context, t maptile.Tile) (Tile, error) {
	m.calls++
	if m.err != nil {
		return Tile{}, m.err
	}
	return Tile{Data: []byte{byte(t.X)}, ContentType: "image/png"}, nil
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_ReverseCacheHit(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	inner := &countingGeocoder{
		result: domain.GeocodingResult{FormattedAddress: "Houston, TX", PlaceName: "Houston"},
	}
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ReverseGeocode(context.Background(), 29.7604, -95.3698)
	require.NoError(t, err)
	r2, err := cached.ReverseGeocode(context.Background(), 29.7604, -95.3698)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MapboxCache.WithLabelValues("reverse", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MapboxCache.WithLabelValues("reverse", "miss")))
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{FormattedAddress: "Place"}}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 29.76, -95.37)
	_, _ = cached.ReverseGeocode(context.Background(), 30.27, -97.74)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.ReverseGeocode(context.Background(), 1, 1)
	_, _ = cached.ReverseGeocode(context.Background(), 1, 1)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.ReverseGeocode(context.Background(), 1, 1)
	require.Error(t, err)
	_, _ = cached.ReverseGeocode(context.Background(), 1, 1)

	assert.Equal(t, 2, inner.calls)
}

// --- CachedTiles tests ---

func TestCachedTiles_Hit(t *testing.T) {
	inner := &countingTiles{}
	cached := NewCachedTiles(inner, 4, observability.NewMetricsForTesting())
	tile := maptile.New(3, 2, 4)

	first, err := cached.Tile(context.Background(), tile)
	require.NoError(t, err)
	second, err := cached.Tile(context.Background(), tile)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedTiles_Eviction(t *testing.T) {
	inner := &countingTiles{}
	cached := NewCachedTiles(inner, 1, observability.NewMetricsForTesting())

	_, _ = cached.Tile(context.Background(), maptile.New(0, 0, 1))
	_, _ = cached.Tile(context.Background(), maptile.New(1, 0, 1))
	_, _ = cached.Tile(context.Background(), maptile.New(0, 0, 1))

	assert.Equal(t, 3, inner.calls)
}

func TestCachedTiles_ErrorNotCached(t *testing.T) {
	inner := &countingTiles{err: errors.New("upstream down")}
	cached := NewCachedTiles(inner, 4, observability.NewMetricsForTesting())

	_, err := cached.Tile(context.Background(), maptile.New(0, 0, 0))
	require.Error(t, err)
	_, _ = cached.Tile(context.Background(), maptile.New(0, 0, 0))

	assert.Equal(t, 2, inner.calls)
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Tile(context.Background(), maptile.New(0, 0, 0))
	assert.ErrorIs(t, err, ErrDisabled)
}
