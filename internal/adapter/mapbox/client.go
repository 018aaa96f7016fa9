package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb/maptile"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/observability"
)

var (
	// ErrDisabled is returned when Mapbox is not configured.
	ErrDisabled = errors.New("mapbox disabled")
	// ErrInvalidTile is returned for tile coordinates outside the zoom's range.
	ErrInvalidTile = errors.New("invalid tile")
)

// maxTileBytes bounds a single raster tile download.
const maxTileBytes = 4 << 20

// Tile is a raster basemap tile.
type Tile struct {
	Data        []byte
	ContentType string
}

// Client fetches raster basemap tiles and implements domain.Geocoder using
// the Mapbox Static Tiles and Geocoding APIs.
type Client struct {
	token       string
	style       string
	httpClient  *http.Client
	baseURL     string // geocoding
	tileBaseURL string
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a Mapbox client for the given style, e.g. "mapbox/streets-v12".
func NewClient(token, style string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		style: style,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     "https://api.mapbox.com/geocoding/v5/mapbox.places",
		tileBaseURL: "https://api.mapbox.com/styles/v1",
		metrics:     metrics,
		logger:      logger,
	}
}

// Tile downloads the 256px raster tile t.
func (c *Client) Tile(ctx context.Context, t maptile.Tile) (Tile, error) {
	if !t.Valid() {
		return Tile{}, fmt.Errorf("%w: %d/%d/%d", ErrInvalidTile, t.Z, t.X, t.Y)
	}

	u := fmt.Sprintf("%s/%s/tiles/256/%d/%d/%d", c.tileBaseURL, c.style, t.Z, t.X, t.Y)
	params := url.Values{"access_token": {c.token}}

	start := time.Now()
	resp, err := c.get(ctx, u+"?"+params.Encode(), "tile")
	c.metrics.MapboxAPIDuration.WithLabelValues("tile").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.MapboxRequests.WithLabelValues("tile", "error").Inc()
		return Tile{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
	if err != nil {
		c.metrics.MapboxRequests.WithLabelValues("tile", "error").Inc()
		return Tile{}, fmt.Errorf("read tile: %w", err)
	}
	c.metrics.MapboxRequests.WithLabelValues("tile", "success").Inc()
	return Tile{Data: data, ContentType: resp.Header.Get("Content-Type")}, nil
}

// ReverseGeocode converts coordinates to place details.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	// Mapbox uses lon,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", lon, lat)
	u := fmt.Sprintf("%s/%s.json", c.baseURL, coord)
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
	}

	start := time.Now()
	result, err := c.geocode(ctx, u+"?"+params.Encode())
	c.metrics.MapboxAPIDuration.WithLabelValues("reverse").Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		c.metrics.MapboxRequests.WithLabelValues("reverse", "error").Inc()
	case result.FormattedAddress == "":
		c.metrics.MapboxRequests.WithLabelValues("reverse", "empty").Inc()
	default:
		c.metrics.MapboxRequests.WithLabelValues("reverse", "success").Inc()
	}
	return result, err
}

// get issues a GET and returns the response when the status is 200.
func (c *Client) get(ctx context.Context, fullURL, source string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", source, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Debug("mapbox request failed", "source", source, "status", resp.StatusCode)
		return nil, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}
	return resp, nil
}

func (c *Client) geocode(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	resp, err := c.get(ctx, fullURL, "reverse geocode")
	if err != nil {
		return domain.GeocodingResult{}, err
	}
	defer resp.Body.Close()

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		return domain.GeocodingResult{}, nil
	}

	f := mapboxResp.Features[0]
	result := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		result.Lon = f.Center[0]
		result.Lat = f.Center[1]
	}
	return result, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
