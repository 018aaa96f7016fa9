package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// TileSize is the pixel edge of one basemap tile.
const TileSize = 256

// Project converts a coordinate into Web Mercator pixel space at the given zoom.
func Project(ll LatLng, zoom int) orb.Point {
	f := maptile.Fraction(ll.Point(), maptile.Zoom(zoom))
	return orb.Point{f[0] * TileSize, f[1] * TileSize}
}

// Unproject converts a pixel position at the given zoom back to a coordinate.
func Unproject(p orb.Point, zoom int) LatLng {
	size := TileSize * math.Exp2(float64(zoom))
	x := p[0] / size
	y := p[1] / size

	lon := x*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*y))) * 180 / math.Pi
	return LatLng{Lat: lat, Lon: lon}
}

// ZoomScale is the pixel scale factor between zoom and base.
func ZoomScale(zoom, base int) float64 {
	return math.Exp2(float64(zoom - base))
}
