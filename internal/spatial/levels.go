package spatial

// Levels lazily builds and caches one Index per integer zoom in [min, max].
// The marker set is static, so an index is never rebuilt once created.
type Levels[T Target] struct {
	min, max int
	build    func(zoom int) *Index[T]
	built    map[int]*Index[T]
}

// NewLevels prepares a lazy index cache. build is called at most once per zoom.
func NewLevels[T Target](min, max int, build func(zoom int) *Index[T]) *Levels[T] {
	return &Levels[T]{
		min:   min,
		max:   max,
		build: build,
		built: make(map[int]*Index[T], max-min+1),
	}
}

// Warm builds every level that has not been built yet.
func (l *Levels[T]) Warm() {
	for z := l.min; z <= l.max; z++ {
		l.At(z)
	}
}

// At returns the index for zoom, building it on first visit. Zooms outside
// the configured range have no index.
func (l *Levels[T]) At(zoom int) (*Index[T], bool) {
	if zoom < l.min || zoom > l.max {
		return nil, false
	}
	if idx, ok := l.built[zoom]; ok {
		return idx, true
	}
	idx := l.build(zoom)
	l.built[zoom] = idx
	return idx, true
}

// Built reports how many levels exist so far.
func (l *Levels[T]) Built() int {
	return len(l.built)
}
