package domain

import (
	"strconv"
	"time"

	"github.com/couchcryptid/worksite-map/internal/geo"
)

// MapEventType distinguishes the events the map publishes.
type MapEventType string

const (
	EventMarkerSelected MapEventType = "marker_selected"
	EventMapMoved       MapEventType = "map_moved"
)

// MapEvent is what the map emits outward: a marker selection or a viewport change.
type MapEvent struct {
	Type       MapEventType  `json:"type"`
	Worksite   *Worksite     `json:"worksite,omitempty"`
	ViewPort   *geo.ViewPort `json:"viewport,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewMarkerSelected stamps a selection event with the package clock.
func NewMarkerSelected(site Worksite) MapEvent {
	return MapEvent{
		Type:       EventMarkerSelected,
		Worksite:   &site,
		OccurredAt: clock.Now().UTC(),
	}
}

// NewMapMoved stamps a viewport change event with the package clock.
func NewMapMoved(vp geo.ViewPort) MapEvent {
	return MapEvent{
		Type:       EventMapMoved,
		ViewPort:   &vp,
		OccurredAt: clock.Now().UTC(),
	}
}

// Key is the partitioning key for the event: the worksite ID, or "viewport".
func (e MapEvent) Key() string {
	if e.Worksite != nil {
		return strconv.FormatInt(e.Worksite.ID, 10)
	}
	return "viewport"
}
