// Package mapview assembles the worksite overlay, its host map and the event
// listeners into the map the HTTP layer drives.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/worksite-map/internal/adapter/headless"
	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/observability"
	"github.com/couchcryptid/worksite-map/internal/overlay"
)

// Source supplies the worksite snapshot.
type Source interface {
	Worksites(ctx context.Context) ([]domain.Worksite, error)
}

// Host is the map the overlay is attached to. Entry points serialize on the
// host's loop; the overlay.Basemap and overlay.FrameScheduler methods and
// OpenPopup are only called from inside it.
type Host interface {
	overlay.Basemap
	overlay.FrameScheduler

	Attach(draw func())
	Detach()
	SetView(center geo.LatLng, zoom int) error
	Redraw()
	Do(fn func())
	Click(ll geo.LatLng)
	PointerMove(ll geo.LatLng)
	OpenPopup(site domain.Worksite)
	View() headless.View
}

// FrameRenderer renders sprites and keeps the latest frame.
type FrameRenderer interface {
	overlay.Renderer
	Frame() []byte
}

// Dependencies are the collaborators of a Facade.
type Dependencies struct {
	Source    Source
	Host      Host
	Renderer  FrameRenderer
	Geocoder  domain.Geocoder // optional
	Listeners []overlay.Listener
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// Options configure the facade.
type Options struct {
	// AutoCenter recenters the host on the worksite centroid before the first draw.
	AutoCenter bool
	Overlay    overlay.Config
	Context    domain.RenderContext
}

// View is the host view plus the overlay lifecycle state.
type View struct {
	headless.View
	State string `json:"state"`
}

// Facade owns one overlay attached to a host.
type Facade struct {
	host      Host
	renderer  FrameRenderer
	overlay   *overlay.Overlay
	listeners []overlay.Listener
	logger    *slog.Logger

	clickMu sync.Mutex

	mu        sync.Mutex
	rc        domain.RenderContext
	displayed map[string]bool
	selected  *domain.Worksite
	bounds    orb.Bound
	drawn     bool
	closed    bool
	sites     int
}

// New loads the worksites, builds the overlay and attaches it to the host,
// which draws it once.
func New(ctx context.Context, deps Dependencies, opts Options) (*Facade, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	sites, err := deps.Source.Worksites(ctx)
	if err != nil {
		return nil, fmt.Errorf("load worksites: %w", err)
	}
	if deps.Geocoder != nil {
		sites = domain.EnrichLabels(ctx, sites, deps.Geocoder, deps.Logger)
	}

	f := &Facade{
		host:      deps.Host,
		renderer:  deps.Renderer,
		listeners: deps.Listeners,
		logger:    deps.Logger,
		rc:        opts.Context,
		displayed: make(map[string]bool),
		sites:     len(sites),
	}

	if opts.AutoCenter && len(sites) > 0 {
		points := make([]geo.LatLng, len(sites))
		for i, s := range sites {
			points[i] = geo.LatLng(s.Location)
		}
		center := geo.AverageGeolocation(points)
		if err := deps.Host.SetView(center, deps.Host.View().Zoom); err != nil {
			return nil, fmt.Errorf("center on worksites: %w", err)
		}
		f.logger.Info("centered on worksites", "lat", center.Lat, "lon", center.Lon, "worksites", len(sites))
	}

	f.overlay = overlay.New(sites, opts.Overlay, overlay.Dependencies{
		Map:      deps.Host,
		Renderer: deps.Renderer,
		Frames:   deps.Host,
		Listener: f,
		Logger:   deps.Logger,
		Metrics:  deps.Metrics,
	})
	deps.Host.Attach(f.draw)

	f.logger.Info("map overlay attached", "worksites", len(sites), "interactive", opts.Overlay.Interactive)
	return f, nil
}

// draw runs on the host loop.
func (f *Facade) draw() {
	f.mu.Lock()
	rc := f.rc
	f.mu.Unlock()

	res, err := f.overlay.Draw(rc)
	if errors.Is(err, overlay.ErrClosed) {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, wt := range res.DisplayedWorkTypes {
		f.displayed[wt] = true
	}
	if err != nil {
		f.logger.Warn("map draw failed", "error", err)
		return
	}
	f.drawn = true
}

// MarkerSelected implements overlay.Listener.
func (f *Facade) MarkerSelected(site domain.Worksite) {
	f.host.OpenPopup(site)

	f.mu.Lock()
	f.selected = &site
	f.mu.Unlock()

	for _, l := range f.listeners {
		l.MarkerSelected(site)
	}
}

// MapMoved implements overlay.Listener.
func (f *Facade) MapMoved(bounds orb.Bound) {
	f.mu.Lock()
	f.bounds = bounds
	f.mu.Unlock()

	for _, l := range f.listeners {
		l.MapMoved(bounds)
	}
}

// SetView pans and zooms the host, redrawing the overlay.
func (f *Facade) SetView(center geo.LatLng, zoom int) (View, error) {
	if err := f.host.SetView(center, zoom); err != nil {
		return View{}, err
	}
	return f.View(), nil
}

// Locate centers the map on the coordinates embedded in a provider map URL,
// keeping the current zoom. A URL without coordinates returns a *geo.ParseError.
func (f *Facade) Locate(mapURL string) (View, error) {
	ll, err := geo.ExtractCoordinatesFromMapURL(mapURL)
	if err != nil {
		return View{}, err
	}
	return f.SetView(ll, f.host.View().Zoom)
}

// Click dispatches a click and returns the worksite it selected, if any.
func (f *Facade) Click(ll geo.LatLng) *domain.Worksite {
	f.clickMu.Lock()
	defer f.clickMu.Unlock()

	f.mu.Lock()
	f.selected = nil
	f.mu.Unlock()

	f.host.Click(ll)

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// Hover moves the pointer and reports whether the cursor shows as a pointer.
func (f *Facade) Hover(ll geo.LatLng) bool {
	f.host.PointerMove(ll)
	return f.host.View().PointerCursor
}

// View returns the current view and overlay state.
func (f *Facade) View() View {
	var state overlay.State
	f.host.Do(func() { state = f.overlay.State() })
	return View{View: f.host.View(), State: state.String()}
}

// Bounds returns the bounds reported by the last map move.
func (f *Facade) Bounds() orb.Bound {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bounds
}

// Frame returns the last rendered SVG frame.
func (f *Facade) Frame() []byte {
	return f.renderer.Frame()
}

// DisplayedWorkTypes returns every work type discovered so far, sorted.
func (f *Facade) DisplayedWorkTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.displayed))
	for wt := range f.displayed {
		out = append(out, wt)
	}
	sort.Strings(out)
	return out
}

// RenderContext returns the current render context.
func (f *Facade) RenderContext() domain.RenderContext {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rc
}

// SetRenderContext replaces the filters and viewer organization and restyles the overlay.
func (f *Facade) SetRenderContext(rc domain.RenderContext) {
	f.mu.Lock()
	f.rc = rc
	f.mu.Unlock()

	f.host.Do(f.overlay.Invalidate)
	f.host.Redraw()
}

// CheckReadiness returns nil once the overlay has drawn successfully.
func (f *Facade) CheckReadiness(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.closed:
		return errors.New("map overlay closed")
	case !f.drawn:
		return errors.New("map overlay has not drawn yet")
	}
	return nil
}

// Close removes the overlay from the host. It is safe to call more than once.
func (f *Facade) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()

	f.host.Do(f.overlay.Close)
	f.host.Detach()
	f.logger.Info("map overlay closed", "worksites", f.sites)
}

var _ Host = (*headless.Map)(nil)
