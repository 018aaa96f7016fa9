package overlay

import (
	"time"

	"github.com/paulmach/orb"
)

// HoverInterval is the minimum spacing between handled pointer-move events.
const HoverInterval = 32 * time.Millisecond

// HitTest finds the sprite under a layer point at the current zoom. It never
// matches when interaction is disabled or the zoom is below the threshold.
func (o *Overlay) HitTest(p orb.Point) (*Sprite, bool) {
	sp, _, ok := o.hitTest(p)
	return sp, ok
}

func (o *Overlay) hitTest(p orb.Point) (*Sprite, string, bool) {
	if !o.cfg.Interactive || o.levels == nil {
		return nil, "disabled", false
	}
	zoom := o.basemap.Zoom()
	if zoom < o.cfg.InteractiveZoom {
		return nil, "disabled", false
	}
	idx, ok := o.levels.At(zoom)
	if !ok {
		return nil, "disabled", false
	}
	sp, ok := idx.Query(p)
	if !ok {
		return nil, "miss", false
	}
	return sp, "hit", true
}

func (o *Overlay) handleClick(p orb.Point) {
	if o.state == StateClosed {
		return
	}
	sp, result, ok := o.hitTest(p)
	o.metrics.HitTests.WithLabelValues("click", result).Inc()
	if !ok {
		o.basemap.ClosePopup()
		return
	}
	o.logger.Debug("marker selected", "worksite_id", sp.Site.ID)
	o.listener.MarkerSelected(sp.Site)
}

// handlePointerMove runs the hover hit test at most once per HoverInterval.
// A move dropped inside the interval is replayed on the first frame after the
// interval ends, so the cursor always reflects the last pointer position.
func (o *Overlay) handlePointerMove(p orb.Point) {
	if o.state == StateClosed {
		return
	}
	if !o.hover.AllowN(o.cfg.Clock.Now(), 1) {
		o.metrics.HoverThrottled.Inc()
		o.hoverPoint = p
		if !o.hoverPending {
			o.hoverPending = true
			o.hoverFrame = o.frames.RequestFrame(o.hoverTick)
		}
		return
	}
	o.cancelHover()
	o.hoverAt(p)
}

func (o *Overlay) hoverTick(now time.Time) {
	if o.state == StateClosed || !o.hoverPending {
		return
	}
	if !o.hover.AllowN(now, 1) {
		o.hoverFrame = o.frames.RequestFrame(o.hoverTick)
		return
	}
	o.hoverPending = false
	o.hoverAt(o.hoverPoint)
}

func (o *Overlay) cancelHover() {
	if o.hoverPending {
		o.frames.CancelFrame(o.hoverFrame)
		o.hoverPending = false
	}
}

func (o *Overlay) hoverAt(p orb.Point) {
	_, result, ok := o.hitTest(p)
	o.metrics.HitTests.WithLabelValues("hover", result).Inc()
	o.basemap.SetPointerCursor(ok)
}
