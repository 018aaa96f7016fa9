package mapview_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/worksite-map/internal/adapter/headless"
	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/mapview"
	"github.com/couchcryptid/worksite-map/internal/observability"
	"github.com/couchcryptid/worksite-map/internal/overlay"
)

type memSource struct {
	sites []domain.Worksite
	err   error
}

func (s memSource) Worksites(context.Context) ([]domain.Worksite, error) {
	return s.sites, s.err
}

type recordingListener struct {
	mu       sync.Mutex
	selected []domain.Worksite
	moved    []orb.Bound
}

func (l *recordingListener) MarkerSelected(site domain.Worksite) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected = append(l.selected, site)
}

func (l *recordingListener) MapMoved(b orb.Bound) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.moved = append(l.moved, b)
}

type stubGeocoder struct{}

func (stubGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return domain.GeocodingResult{PlaceName: "Midtown"}, nil
}

func sites() []domain.Worksite {
	return []domain.Worksite{
		{
			ID:        101,
			Location:  domain.Location{Lat: 29.7604, Lon: -95.3698},
			City:      "Houston",
			WorkTypes: []domain.WorkType{{WorkType: "muck_out", Status: domain.StatusOpenUnassigned}},
		},
		{
			ID:        102,
			Location:  domain.Location{Lat: 29.7650, Lon: -95.3600},
			Label:     "Corner lot",
			WorkTypes: []domain.WorkType{{WorkType: "muck_out", Status: domain.StatusOpenUnassigned}},
		},
		{
			ID:        103,
			Location:  domain.Location{Lat: 29.7550, Lon: -95.3750},
			WorkTypes: []domain.WorkType{{WorkType: "trees", Status: domain.StatusOpenAssigned}},
		},
	}
}

type harness struct {
	facade   *mapview.Facade
	host     *headless.Map
	clock    *clockwork.FakeClock
	listener *recordingListener
}

func newHarness(t *testing.T, src mapview.Source, opts mapview.Options, geocoder domain.Geocoder) *harness {
	t.Helper()
	clock := clockwork.NewFakeClock()
	host := headless.New(headless.Options{
		Center:  geo.LatLng{Lat: 29.76, Lon: -95.37},
		Zoom:    13,
		MaxZoom: 16,
		Width:   800,
		Height:  600,
		Clock:   clock,
	})
	listener := &recordingListener{}
	opts.Overlay.Interactive = true
	opts.Overlay.InteractiveZoom = overlay.DefaultInteractiveZoom
	opts.Overlay.Clock = clock

	f, err := mapview.New(context.Background(), mapview.Dependencies{
		Source:    src,
		Host:      host,
		Renderer:  headless.NewRenderer(host, headless.RendererOptions{Legends: true}),
		Geocoder:  geocoder,
		Listeners: []overlay.Listener{listener},
		Logger:    slog.Default(),
		Metrics:   observability.NewMetricsForTesting(),
	}, opts)
	require.NoError(t, err)
	t.Cleanup(f.Close)

	return &harness{facade: f, host: host, clock: clock, listener: listener}
}

func TestFacade_EndToEnd(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{}, nil)

	assert.Equal(t, []string{"muck_out", "trees"}, h.facade.DisplayedWorkTypes())
	require.NoError(t, h.facade.CheckReadiness(context.Background()))
	assert.Len(t, h.listener.moved, 1)

	frame := string(h.facade.Frame())
	assert.Contains(t, frame, `data-worksite="101"`)
	assert.Contains(t, frame, `data-worksite="102"`)
	assert.Contains(t, frame, `data-worksite="103"`)

	selected := h.facade.Click(geo.LatLng{Lat: 29.7650, Lon: -95.3600})
	require.NotNil(t, selected)
	assert.Equal(t, int64(102), selected.ID)
	require.Len(t, h.listener.selected, 1)
	assert.Equal(t, int64(102), h.listener.selected[0].ID)

	view := h.facade.View()
	require.NotNil(t, view.Popup)
	assert.Equal(t, int64(102), view.Popup.ID)
	assert.Equal(t, "steady", view.State)
}

func TestFacade_ClickOnEmptyMapClosesPopup(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{}, nil)

	require.NotNil(t, h.facade.Click(geo.LatLng{Lat: 29.7604, Lon: -95.3698}))
	assert.Nil(t, h.facade.Click(geo.LatLng{Lat: 29.7800, Lon: -95.3300}))
	assert.Nil(t, h.facade.View().Popup)
	assert.Len(t, h.listener.selected, 1)
}

func TestFacade_Hover(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{}, nil)

	assert.True(t, h.facade.Hover(geo.LatLng{Lat: 29.7550, Lon: -95.3750}))

	h.clock.Advance(50 * time.Millisecond)
	assert.False(t, h.facade.Hover(geo.LatLng{Lat: 29.7800, Lon: -95.3300}))
}

func TestFacade_AutoCenter(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{AutoCenter: true}, nil)

	center := h.facade.View().Center
	assert.InDelta(t, (29.7604+29.7650+29.7550)/3, center.Lat, 1e-4)
	assert.InDelta(t, (-95.3698-95.3600-95.3750)/3, center.Lon, 1e-4)
}

func TestFacade_Locate(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{}, nil)

	view, err := h.facade.Locate("https://www.google.com/maps/@34.0522,-118.2437,15z")
	require.NoError(t, err)
	assert.InDelta(t, 34.0522, view.Center.Lat, 1e-9)
	assert.InDelta(t, -118.2437, view.Center.Lon, 1e-9)
	assert.Equal(t, 13, view.Zoom)
	assert.Len(t, h.listener.moved, 2)

	_, err = h.facade.Locate("https://www.google.com/maps/place/Houston")
	var perr *geo.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestFacade_SetViewRejectsInvalidCenter(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{}, nil)

	_, err := h.facade.SetView(geo.LatLng{Lat: 120, Lon: 0}, 12)
	require.ErrorIs(t, err, headless.ErrInvalidView)
}

func TestFacade_SetRenderContextRestyles(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{}, nil)
	moves := len(h.listener.moved)

	h.facade.SetRenderContext(domain.RenderContext{Filters: domain.Filters{WorkTypes: map[string]bool{"trees": true}}})

	assert.True(t, h.facade.RenderContext().Filters.WorkTypes["trees"])
	assert.Equal(t, []string{"muck_out", "trees"}, h.facade.DisplayedWorkTypes())
	assert.Len(t, h.listener.moved, moves, "restyle is not a map move")
}

func TestFacade_EnrichesLabels(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{}, stubGeocoder{})

	selected := h.facade.Click(geo.LatLng{Lat: 29.7550, Lon: -95.3750})
	require.NotNil(t, selected)
	assert.Equal(t, "Midtown", selected.Label)
}

func TestFacade_SourceError(t *testing.T) {
	host := headless.New(headless.Options{Zoom: 10})
	_, err := mapview.New(context.Background(), mapview.Dependencies{
		Source:   memSource{err: errors.New("db down")},
		Host:     host,
		Renderer: headless.NewRenderer(host, headless.RendererOptions{}),
		Metrics:  observability.NewMetricsForTesting(),
	}, mapview.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestFacade_Close(t *testing.T) {
	h := newHarness(t, memSource{sites: sites()}, mapview.Options{}, nil)

	h.facade.Close()
	h.facade.Close()

	require.Error(t, h.facade.CheckReadiness(context.Background()))
	assert.Equal(t, "closed", h.facade.View().State)
	assert.Nil(t, h.facade.Click(geo.LatLng{Lat: 29.7604, Lon: -95.3698}))
}
