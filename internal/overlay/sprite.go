package overlay

import (
	"github.com/paulmach/orb"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/style"
)

// MarkerRadius is the hit radius of a marker texture at scale 1, in screen pixels.
const MarkerRadius = style.Size / 2

// Sprite is the overlay's mutable visual proxy for one worksite.
type Sprite struct {
	Site     domain.Worksite
	Legend   string
	Position orb.Point // layer space

	Scale        float64
	CurrentScale float64 // scale when the running animation started
	TargetScale  float64
	Alpha        float64

	ActiveWorkType domain.WorkType
	StyleKey       string // key of the work type active at first draw
	Template       style.Template
	HasTexture     bool
}

// Point implements spatial.Target.
func (s *Sprite) Point() orb.Point {
	return s.Position
}

// HitRadius implements spatial.Target.
func (s *Sprite) HitRadius() float64 {
	return s.Scale * MarkerRadius
}
