// Package overlay renders worksite markers on top of a basemap.
//
// An Overlay is bound to one immutable set of worksites. The first draw
// creates one Sprite per worksite; later draws restyle and rescale those
// sprites in place when the view moves, and animate the scale change when the
// zoom level changes. When interaction is enabled, click and pointer-move
// events are hit-tested against a per-zoom spatial index.
//
// An Overlay is not safe for concurrent use. The host must call Draw, the
// registered pointer handlers and frame callbacks from a single event loop.
package overlay
