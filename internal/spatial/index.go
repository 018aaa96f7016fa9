// Package spatial answers "which marker is under this point" queries over
// projected marker positions, one quadtree per zoom level.
package spatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// Target is anything that can be hit-tested: a projected position and a
// visual radius in the same pixel space.
type Target interface {
	Point() orb.Point
	HitRadius() float64
}

// entry snapshots a target's position at build time.
type entry[T Target] struct {
	target T
	p      orb.Point
}

func (e entry[T]) Point() orb.Point { return e.p }

// Index is an immutable quadtree over target positions.
type Index[T Target] struct {
	tree *quadtree.Quadtree
	rMax float64
	size int
}

// LevelRadius is the query margin used for an index at zoom, given the
// basemap's scale factor at that zoom.
func LevelRadius(zoom int, scale float64) float64 {
	r := 24.0
	if zoom <= 7 {
		r = 16
	}
	return r / scale
}

// Build inserts every target position and records radius as the query margin.
func Build[T Target](targets []T, radius float64) *Index[T] {
	idx := &Index[T]{rMax: radius}
	if len(targets) == 0 {
		return idx
	}

	points := make(orb.MultiPoint, len(targets))
	for i, t := range targets {
		points[i] = t.Point()
	}
	pad := radius
	if pad < 1 {
		pad = 1
	}
	idx.tree = quadtree.New(points.Bound().Pad(pad))

	for i, t := range targets {
		// Bound covers every point, so Add cannot fail.
		_ = idx.tree.Add(entry[T]{target: t, p: points[i]})
	}
	idx.size = len(targets)
	return idx
}

// Len is the number of indexed targets.
func (idx *Index[T]) Len() int {
	return idx.size
}

// Radius is the margin used to prune subtrees during a query.
func (idx *Index[T]) Radius() float64 {
	return idx.rMax
}

// Query returns the first target, in tree traversal order, whose hit radius
// contains p. Subtrees whose bounds do not intersect p padded by the index
// radius are never visited.
func (idx *Index[T]) Query(p orb.Point) (T, bool) {
	var zero T
	if idx.tree == nil {
		return zero, false
	}

	window := orb.Bound{Min: p, Max: p}.Pad(idx.rMax)
	for _, c := range idx.tree.InBound(nil, window) {
		e := c.(entry[T])
		dx := e.p[0] - p[0]
		dy := e.p[1] - p[1]
		r := e.target.HitRadius()
		if dx*dx+dy*dy <= r*r {
			return e.target, true
		}
	}
	return zero, false
}
