package geo

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// AverageGeolocation returns the center of a set of coordinates.
//
// Each point is turned into a unit vector on the sphere, the vectors are
// averaged component-wise and the mean vector is converted back with atan2.
// Unlike a plain mean of longitudes this stays correct across the antimeridian.
// A single point is returned unchanged. Callers must not pass an empty slice;
// the zero LatLng is returned in that case.
func AverageGeolocation(points []LatLng) LatLng {
	switch len(points) {
	case 0:
		return LatLng{}
	case 1:
		return points[0]
	}

	var sum r3.Vector
	for _, p := range points {
		v := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
		sum = sum.Add(v.Vector)
	}
	mean := sum.Mul(1 / float64(len(points)))

	// LatLngFromPoint uses atan2 on the raw components, so the mean vector
	// does not need to be normalized first.
	ll := s2.LatLngFromPoint(s2.Point{Vector: mean})
	return LatLng{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}
