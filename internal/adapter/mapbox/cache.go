package mapbox

import (
	"context"
	"fmt"

	"github.com/paulmach/orb/maptile"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/lru"
	"github.com/couchcryptid/worksite-map/internal/observability"
)

// TileFetcher returns raster basemap tiles.
type TileFetcher interface {
	Tile(ctx context.Context, t maptile.Tile) (Tile, error)
}

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lru.Cache[string, domain.GeocodingResult]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   lru.New[string, domain.GeocodingResult](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	key := fmt.Sprintf("rev:%.6f,%.6f", lat, lon)
	if result, ok := c.cache.Get(key); ok {
		c.metrics.MapboxCache.WithLabelValues("reverse", "hit").Inc()
		return result, nil
	}
	c.metrics.MapboxCache.WithLabelValues("reverse", "miss").Inc()
	result, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	// Only cache non-empty results so transient "not found" responses can be retried.
	if result.FormattedAddress != "" {
		c.cache.Put(key, result)
	}
	return result, nil
}

// CachedTiles wraps a TileFetcher with an in-memory LRU cache.
type CachedTiles struct {
	inner   TileFetcher
	cache   *lru.Cache[maptile.Tile, Tile]
	metrics *observability.Metrics
}

// NewCachedTiles creates a cache decorator around a tile fetcher.
func NewCachedTiles(inner TileFetcher, maxEntries int, metrics *observability.Metrics) *CachedTiles {
	return &CachedTiles{
		inner:   inner,
		cache:   lru.New[maptile.Tile, Tile](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedTiles) Tile(ctx context.Context, t maptile.Tile) (Tile, error) {
	if tile, ok := c.cache.Get(t); ok {
		c.metrics.MapboxCache.WithLabelValues("tile", "hit").Inc()
		return tile, nil
	}
	c.metrics.MapboxCache.WithLabelValues("tile", "miss").Inc()
	tile, err := c.inner.Tile(ctx, t)
	if err != nil {
		return tile, err
	}
	c.cache.Put(t, tile)
	return tile, nil
}

// Disabled is the TileFetcher used when Mapbox is not configured.
type Disabled struct{}

func (Disabled) Tile(context.Context, maptile.Tile) (Tile, error) {
	return Tile{}, ErrDisabled
}
