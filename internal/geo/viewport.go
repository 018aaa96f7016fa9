package geo

import "github.com/paulmach/orb"

// ViewPort is the JSON form of visible map bounds.
type ViewPort struct {
	LatMin float64 `json:"latmin"`
	LonMin float64 `json:"lonmin"`
	LatMax float64 `json:"latmax"`
	LonMax float64 `json:"lonmax"`
}

// ViewPortFromBound converts an orb lon/lat bound.
func ViewPortFromBound(b orb.Bound) ViewPort {
	return ViewPort{
		LatMin: b.Min.Lat(),
		LonMin: b.Min.Lon(),
		LatMax: b.Max.Lat(),
		LonMax: b.Max.Lon(),
	}
}

// Bound converts the viewport back to an orb bound.
func (v ViewPort) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{v.LonMin, v.LatMin},
		Max: orb.Point{v.LonMax, v.LatMax},
	}
}
