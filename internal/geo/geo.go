// Package geo holds the coordinate utilities used by the map overlay: map URL
// parsing, spherical centroids, age-based opacity and Web Mercator projection.
package geo

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/paulmach/orb"
)

// LatLng is a WGS-84 latitude/longitude pair in degrees.
type LatLng struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Point returns the coordinate in orb's lon/lat order.
func (ll LatLng) Point() orb.Point {
	return orb.Point{ll.Lon, ll.Lat}
}

// LatLngFromPoint converts an orb lon/lat point back to a LatLng.
func LatLngFromPoint(p orb.Point) LatLng {
	return LatLng{Lat: p.Lat(), Lon: p.Lon()}
}

// mapURLRe matches the "@lat,lon," segment of a provider map URL,
// e.g. "https://www.google.com/maps/@34.0522,-118.2437,15z".
var mapURLRe = regexp.MustCompile(`@(-?\d+(?:\.\d+)?),(-?\d+(?:\.\d+)?),`)

// ParseError is returned when a map URL carries no usable coordinates.
type ParseError struct {
	URL string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no @lat,lon, segment in map url %q", e.URL)
}

// ExtractCoordinatesFromMapURL pulls the latitude and longitude out of a
// provider map URL. It fails with *ParseError when the segment is missing.
func ExtractCoordinatesFromMapURL(url string) (LatLng, error) {
	m := mapURLRe.FindStringSubmatch(url)
	if m == nil {
		return LatLng{}, &ParseError{URL: url}
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return LatLng{}, &ParseError{URL: url}
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return LatLng{}, &ParseError{URL: url}
	}
	return LatLng{Lat: lat, Lon: lon}, nil
}
