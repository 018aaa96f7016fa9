// Package headless is a server-side basemap host for the overlay. It keeps
// the view state, serializes every entry point under one lock (its event
// loop), schedules animation frames on a clockwork clock and renders frames
// as SVG.
package headless

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/overlay"
)

// MaxLatitude is the Web Mercator latitude limit.
const MaxLatitude = 85.05112878

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrInvalidView is returned for coordinates outside the valid range.
var ErrInvalidView = errors.New("invalid view")

// Options configures a Map.
type Options struct {
	Center        geo.LatLng
	Zoom          int
	MaxZoom       int
	Width, Height int
	Clock         clockwork.Clock
	FrameInterval time.Duration
}

// View is a snapshot of the host state.
type View struct {
	Center        geo.LatLng       `json:"center"`
	Zoom          int              `json:"zoom"`
	Bounds        geo.ViewPort     `json:"bounds"`
	Width         int              `json:"width"`
	Height        int              `json:"height"`
	Popup         *domain.Worksite `json:"popup,omitempty"`
	PointerCursor bool             `json:"pointer_cursor"`
}

// Map implements overlay.Basemap and overlay.FrameScheduler.
//
// Methods used by the overlay never lock: they are only called from within
// an entry point (SetView, Click, PointerMove, Redraw, Do or a frame
// callback) that already holds the loop.
type Map struct {
	mu    sync.Mutex
	clock clockwork.Clock

	center   geo.LatLng
	zoom     int
	projZoom int
	maxZoom  int
	width    int
	height   int

	nextHandler int
	clicks      map[int]func(orb.Point)
	moves       map[int]func(orb.Point)

	popup   *domain.Worksite
	pointer bool

	frameInterval time.Duration
	nextFrame     overlay.FrameID
	frames        map[overlay.FrameID]clockwork.Timer

	draw func()
}

var (
	_ overlay.Basemap        = (*Map)(nil)
	_ overlay.FrameScheduler = (*Map)(nil)
)

// New creates a host. The initial zoom is also the projection zoom that
// layer points are expressed in.
func New(opts Options) *Map {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = 18
	}
	if opts.Width <= 0 {
		opts.Width = 1024
	}
	if opts.Height <= 0 {
		opts.Height = 768
	}
	zoom := clampZoom(opts.Zoom, opts.MaxZoom)

	return &Map{
		clock:         opts.Clock,
		center:        opts.Center,
		zoom:          zoom,
		projZoom:      zoom,
		maxZoom:       opts.MaxZoom,
		width:         opts.Width,
		height:        opts.Height,
		clicks:        make(map[int]func(orb.Point)),
		moves:         make(map[int]func(orb.Point)),
		frameInterval: opts.FrameInterval,
		frames:        make(map[overlay.FrameID]clockwork.Timer),
	}
}

// --- entry points ---

// Attach installs the draw callback and runs it once.
func (m *Map) Attach(draw func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draw = draw
	draw()
}

// Detach removes the draw callback.
func (m *Map) Detach() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draw = nil
}

// SetView pans and zooms. The zoom is clamped to [0, MaxZoom].
func (m *Map) SetView(center geo.LatLng, zoom int) error {
	if math.IsNaN(center.Lat) || math.IsNaN(center.Lon) ||
		center.Lat < -90 || center.Lat > 90 || center.Lon < -180 || center.Lon > 180 {
		return fmt.Errorf("%w: center %.6f,%.6f", ErrInvalidView, center.Lat, center.Lon)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.center = geo.LatLng{Lat: min(max(center.Lat, -MaxLatitude), MaxLatitude), Lon: center.Lon}
	m.zoom = clampZoom(zoom, m.maxZoom)
	if m.draw != nil {
		m.draw()
	}
	return nil
}

// Redraw runs the draw callback without changing the view.
func (m *Map) Redraw() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draw != nil {
		m.draw()
	}
}

// Do runs fn on the event loop.
func (m *Map) Do(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// Click dispatches a click at a coordinate.
func (m *Map) Click(ll geo.LatLng) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatch(m.clicks, m.Project(ll))
}

// ClickScreen dispatches a click at a viewport pixel.
func (m *Map) ClickScreen(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatch(m.clicks, m.ScreenToLayer(orb.Point{x, y}))
}

// PointerMove dispatches a pointer move to a coordinate.
func (m *Map) PointerMove(ll geo.LatLng) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatch(m.moves, m.Project(ll))
}

// View returns a snapshot of the view state.
func (m *Map) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return View{
		Center:        m.center,
		Zoom:          m.zoom,
		Bounds:        geo.ViewPortFromBound(m.Bounds()),
		Width:         m.width,
		Height:        m.height,
		Popup:         m.popup,
		PointerCursor: m.pointer,
	}
}

func (m *Map) dispatch(handlers map[int]func(orb.Point), p orb.Point) {
	for _, fn := range handlers {
		fn(p)
	}
}

// --- overlay.Basemap, called with the loop held ---

func (m *Map) Zoom() int          { return m.zoom }
func (m *Map) Center() geo.LatLng { return m.center }
func (m *Map) MaxZoom() int       { return m.maxZoom }

// Bounds is the visible lon/lat area.
func (m *Map) Bounds() orb.Bound {
	c := geo.Project(m.center, m.zoom)
	hw, hh := float64(m.width)/2, float64(m.height)/2
	nw := geo.Unproject(orb.Point{c[0] - hw, c[1] - hh}, m.zoom)
	se := geo.Unproject(orb.Point{c[0] + hw, c[1] + hh}, m.zoom)
	return orb.Bound{
		Min: orb.Point{nw.Lon, se.Lat},
		Max: orb.Point{se.Lon, nw.Lat},
	}
}

// Project maps a coordinate into layer space.
func (m *Map) Project(ll geo.LatLng) orb.Point {
	return geo.Project(ll, m.projZoom)
}

// Scale is the pixel scale of zoom relative to the projection zoom.
func (m *Map) Scale(zoom int) float64 {
	return geo.ZoomScale(zoom, m.projZoom)
}

// LayerToScreen maps a layer point to a viewport pixel at the current zoom.
func (m *Map) LayerToScreen(p orb.Point) orb.Point {
	s := m.Scale(m.zoom)
	origin := m.pixelOrigin()
	return orb.Point{p[0]*s - origin[0], p[1]*s - origin[1]}
}

// ScreenToLayer is the inverse of LayerToScreen.
func (m *Map) ScreenToLayer(p orb.Point) orb.Point {
	s := m.Scale(m.zoom)
	origin := m.pixelOrigin()
	return orb.Point{(p[0] + origin[0]) / s, (p[1] + origin[1]) / s}
}

// pixelOrigin is the world pixel at the viewport's top-left corner.
func (m *Map) pixelOrigin() orb.Point {
	c := geo.Project(m.center, m.zoom)
	return orb.Point{c[0] - float64(m.width)/2, c[1] - float64(m.height)/2}
}

func (m *Map) OnClick(fn func(orb.Point)) func() {
	return m.register(m.clicks, fn)
}

func (m *Map) OnPointerMove(fn func(orb.Point)) func() {
	return m.register(m.moves, fn)
}

func (m *Map) register(handlers map[int]func(orb.Point), fn func(orb.Point)) func() {
	m.nextHandler++
	id := m.nextHandler
	handlers[id] = fn
	return func() { delete(handlers, id) }
}

// OpenPopup shows a worksite popup.
func (m *Map) OpenPopup(site domain.Worksite) {
	m.popup = &site
}

func (m *Map) ClosePopup() {
	m.popup = nil
}

func (m *Map) SetPointerCursor(pointer bool) {
	m.pointer = pointer
}

// --- overlay.FrameScheduler, called with the loop held ---

// RequestFrame schedules fn one frame interval from now.
func (m *Map) RequestFrame(fn func(now time.Time)) overlay.FrameID {
	m.nextFrame++
	id := m.nextFrame
	m.frames[id] = m.clock.AfterFunc(m.frameInterval, func() {
		m.runFrame(id, fn)
	})
	return id
}

// CancelFrame drops a pending frame, even if its timer already fired and is
// waiting for the loop.
func (m *Map) CancelFrame(id overlay.FrameID) {
	if t, ok := m.frames[id]; ok {
		t.Stop()
		delete(m.frames, id)
	}
}

// PendingFrames reports how many frames are scheduled.
func (m *Map) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

func (m *Map) runFrame(id overlay.FrameID, fn func(time.Time)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.frames[id]; !ok {
		return
	}
	delete(m.frames, id)
	fn(m.clock.Now())
}

func clampZoom(zoom, maxZoom int) int {
	return min(max(zoom, 0), maxZoom)
}
