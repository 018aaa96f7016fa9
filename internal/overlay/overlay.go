package overlay

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/worksite-map/internal/domain"
	"github.com/couchcryptid/worksite-map/internal/geo"
	"github.com/couchcryptid/worksite-map/internal/observability"
	"github.com/couchcryptid/worksite-map/internal/spatial"
	"github.com/couchcryptid/worksite-map/internal/style"
)

// DefaultInteractiveZoom is the lowest zoom with hit testing and per-type
// styling when the configuration does not name one.
const DefaultInteractiveZoom = 12

// ErrClosed is returned by Draw after Close.
var ErrClosed = errors.New("overlay closed")

// State is the overlay lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateFirstDraw
	StateSteady
	StateAnimating
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateFirstDraw:
		return "first_draw"
	case StateSteady:
		return "steady"
	case StateAnimating:
		return "animating"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config controls overlay behaviour. Nil collaborators are replaced with
// defaults by New. InteractiveZoom is used as given: 0 enables interaction at
// every zoom.
type Config struct {
	Interactive     bool
	InteractiveZoom int
	AgeOpacity      bool

	Clock    clockwork.Clock
	Resolver domain.WorkTypeResolver
	Styles   *style.Resolver
}

// Dependencies are the collaborators an overlay drives.
type Dependencies struct {
	Map      Basemap
	Renderer Renderer
	Frames   FrameScheduler
	Listener Listener
	Logger   *slog.Logger
	Metrics  *observability.Metrics
}

// DrawResult reports what a draw discovered.
type DrawResult struct {
	// DisplayedWorkTypes are the distinct active work type names seen on the
	// first draw, sorted. Later draws return an empty list. The caller merges
	// them into its own set.
	DisplayedWorkTypes []string
}

// Overlay owns the sprites for one worksite set.
type Overlay struct {
	cfg      Config
	sites    []domain.Worksite
	basemap  Basemap
	renderer Renderer
	frames   FrameScheduler
	listener Listener
	logger   *slog.Logger
	metrics  *observability.Metrics

	state   State
	sprites []*Sprite
	levels  *spatial.Levels[*Sprite]

	lastZoom   int
	lastCenter geo.LatLng
	stale      bool

	anim         *animation
	frame        FrameID
	framePending bool

	hover        *rate.Limiter
	hoverPoint   orb.Point
	hoverFrame   FrameID
	hoverPending bool

	offs []func()
}

// New creates an overlay for sites. Nothing is projected until the first Draw.
func New(sites []domain.Worksite, cfg Config, deps Dependencies) *Overlay {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = domain.DefaultResolver
	}
	if cfg.Styles == nil {
		cfg.Styles = style.NewResolver()
	}
	if deps.Listener == nil {
		deps.Listener = nopListener{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetricsForTesting()
	}

	return &Overlay{
		cfg:      cfg,
		sites:    sites,
		basemap:  deps.Map,
		renderer: deps.Renderer,
		frames:   deps.Frames,
		listener: deps.Listener,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		state:    StateUninitialized,
		hover:    rate.NewLimiter(rate.Every(HoverInterval), 1),
	}
}

// State returns the current lifecycle state.
func (o *Overlay) State() State {
	return o.state
}

// Sprites returns the overlay's sprites. The slice is owned by the overlay.
func (o *Overlay) Sprites() []*Sprite {
	return o.sprites
}

// Invalidate makes the next Draw restyle every sprite even if the view is
// unchanged. Call it with the loop held after the render context changes.
func (o *Overlay) Invalidate() {
	o.stale = true
}

// Draw brings the sprites in line with the current view and renders a frame.
func (o *Overlay) Draw(rc domain.RenderContext) (DrawResult, error) {
	if o.state == StateClosed {
		return DrawResult{}, ErrClosed
	}

	interrupted := o.cancelFrame()
	zoom := o.basemap.Zoom()
	center := o.basemap.Center()

	// Work types are discovered on the first draw only.
	var discovered map[string]bool
	first := o.state == StateUninitialized
	if first {
		o.state = StateFirstDraw
		discovered = make(map[string]bool)
		o.firstDraw(rc, discovered)
	}

	zoomChanged := !first && zoom != o.lastZoom
	moved := first || zoomChanged || center != o.lastCenter
	restyle := moved || o.stale
	o.lastZoom, o.lastCenter = zoom, center
	o.stale = false

	switch {
	case first:
		o.metrics.Draws.WithLabelValues("first").Inc()
	case moved:
		o.metrics.Draws.WithLabelValues("moved").Inc()
	default:
		o.metrics.Draws.WithLabelValues("static").Inc()
	}

	if restyle {
		bounds := o.basemap.Bounds()
		if moved {
			o.listener.MapMoved(bounds)
		}
		o.restyle(rc, zoom, bounds, first)
	}

	switch {
	case zoomChanged:
		o.startAnimation()
	case interrupted:
		o.snapToTarget()
	}
	if o.state == StateFirstDraw {
		o.state = StateSteady
	}

	o.logger.Debug("overlay draw",
		"zoom", zoom,
		"moved", moved,
		"state", o.state.String(),
		"sprites", len(o.sprites),
	)

	result := DrawResult{DisplayedWorkTypes: sortedKeys(discovered)}
	if err := o.render(); err != nil {
		return result, err
	}
	return result, nil
}

func (o *Overlay) firstDraw(rc domain.RenderContext, discovered map[string]bool) {
	o.sprites = make([]*Sprite, len(o.sites))
	for i, site := range o.sites {
		wt := o.cfg.Resolver.ActiveWorkType(site.WorkTypes, rc.Filters, rc.Organization)
		sp := &Sprite{
			Site:           site,
			Legend:         site.Legend(),
			Position:       o.basemap.Project(geo.LatLng(site.Location)),
			Alpha:          1,
			ActiveWorkType: wt,
			StyleKey:       style.Key(wt),
		}
		if o.cfg.AgeOpacity {
			sp.Alpha = geo.AgeOpacity(site.UpdatedAt, o.cfg.Clock.Now())
		}
		if wt.WorkType != "" {
			discovered[wt.WorkType] = true
		}
		o.sprites[i] = sp
	}
	o.metrics.Sprites.Set(float64(len(o.sprites)))

	if !o.cfg.Interactive {
		return
	}
	o.levels = spatial.NewLevels(o.cfg.InteractiveZoom, o.basemap.MaxZoom(), o.buildIndex)
	o.levels.Warm()
	o.offs = append(o.offs,
		o.basemap.OnClick(o.handleClick),
		o.basemap.OnPointerMove(o.handlePointerMove),
	)
}

func (o *Overlay) buildIndex(zoom int) *spatial.Index[*Sprite] {
	start := o.cfg.Clock.Now()
	idx := spatial.Build(o.sprites, spatial.LevelRadius(zoom, o.basemap.Scale(zoom)))
	o.metrics.IndexBuildDuration.Observe(o.cfg.Clock.Since(start).Seconds())
	return idx
}

// restyle re-resolves every sprite's template for the new view and records
// the scale it should settle at. Sprites keep a constant on-screen size, so
// the target is the inverse of the view scale.
func (o *Overlay) restyle(rc domain.RenderContext, zoom int, bounds orb.Bound, first bool) {
	target := 1 / o.basemap.Scale(zoom)
	dynamic := o.cfg.Interactive && zoom >= o.cfg.InteractiveZoom

	for _, sp := range o.sprites {
		multi := sp.Site.MultiType()

		var (
			tmpl style.Template
			ok   bool
		)
		if dynamic && bounds.Contains(geo.LatLng(sp.Site.Location).Point()) {
			wt := o.cfg.Resolver.ActiveWorkType(sp.Site.WorkTypes, rc.Filters, rc.Organization)
			sp.ActiveWorkType = wt
			tmpl, ok = o.cfg.Styles.ForWorkType(wt, multi)
		} else {
			tmpl, ok = o.cfg.Styles.Default(sp.StyleKey, multi)
		}
		// No colours for the key: keep the previous texture.
		if ok {
			sp.Template = tmpl
			sp.HasTexture = true
		}

		if first {
			sp.Scale = target
			sp.CurrentScale = target
		} else {
			sp.CurrentScale = sp.Scale
		}
		sp.TargetScale = target
	}
}

func (o *Overlay) render() error {
	if err := o.renderer.Render(o.sprites); err != nil {
		o.metrics.RenderErrors.Inc()
		o.logger.Error("overlay render failed", "error", err)
		return err
	}
	return nil
}

// Close deregisters the pointer handlers, cancels any pending frame and
// releases the sprites. It is safe to call more than once.
func (o *Overlay) Close() {
	if o.state == StateClosed {
		return
	}
	o.cancelFrame()
	o.cancelHover()
	for _, off := range o.offs {
		off()
	}
	o.offs = nil
	o.sprites = nil
	o.levels = nil
	o.state = StateClosed
	o.metrics.Sprites.Set(0)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
