package overlay

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
)

// Basemap is the map the overlay draws on. Points are in layer space: pixel
// coordinates at the map's fixed projection zoom.
type Basemap interface {
	Zoom() int
	Center() geo.LatLng
	MaxZoom() int
	// Bounds is the visible area as a lon/lat bound.
	Bounds() orb.Bound
	Project(ll geo.LatLng) orb.Point
	// Scale is the pixel scale of zoom relative to the projection zoom.
	Scale(zoom int) float64

	// OnClick and OnPointerMove register handlers receiving layer points and
	// return a function that removes the handler.
	OnClick(fn func(p orb.Point)) (off func())
	OnPointerMove(fn func(p orb.Point)) (off func())

	ClosePopup()
	SetPointerCursor(pointer bool)
}

// FrameID identifies a requested animation frame.
type FrameID uint64

// FrameScheduler runs a callback on the host's next animation frame.
type FrameScheduler interface {
	RequestFrame(fn func(now time.Time)) FrameID
	CancelFrame(id FrameID)
}

// Renderer turns the sprite list into a visible frame.
type Renderer interface {
	Render(sprites []*Sprite) error
}

// Listener receives the overlay's outward events.
type Listener interface {
	MarkerSelected(site domain.Worksite)
	MapMoved(bounds orb.Bound)
}

type nopListener struct{}

func (nopListener) MarkerSelected(domain.Worksite) {}
func (nopListener) MapMoved(orb.Bound)             {}
