package overlay

import "time"

// AnimationDuration is how long a zoom transition takes.
const AnimationDuration = 250 * time.Millisecond

// animation is the Animating sub-state.
type animation struct {
	start time.Time
}

// Ease maps linear progress onto the zoom easing curve. lambda is clamped
// to [0, 1]; Ease(0) == 0 and Ease(1) == 1.
func Ease(lambda float64) float64 {
	lambda = min(max(lambda, 0), 1)
	return lambda * (0.4 + lambda*(2.2+lambda*-1.6))
}

// Interpolate returns the scale at eased progress p between current and target.
func Interpolate(current, target, p float64) float64 {
	return current + p*(target-current)
}

func (o *Overlay) startAnimation() {
	o.anim = &animation{start: o.cfg.Clock.Now()}
	o.state = StateAnimating
	o.requestFrame()
}

func (o *Overlay) requestFrame() {
	o.frame = o.frames.RequestFrame(o.tick)
	o.framePending = true
}

// cancelFrame drops the pending frame and leaves the Animating state. It
// reports whether an animation was interrupted.
func (o *Overlay) cancelFrame() bool {
	if o.framePending {
		o.frames.CancelFrame(o.frame)
		o.framePending = false
	}
	interrupted := o.anim != nil
	o.anim = nil
	if o.state == StateAnimating {
		o.state = StateSteady
	}
	return interrupted
}

func (o *Overlay) tick(now time.Time) {
	o.framePending = false
	if o.state != StateAnimating || o.anim == nil {
		return
	}

	lambda := float64(now.Sub(o.anim.start)) / float64(AnimationDuration)
	p := Ease(lambda)
	for _, sp := range o.sprites {
		sp.Scale = Interpolate(sp.CurrentScale, sp.TargetScale, p)
	}
	o.metrics.AnimationFrames.Inc()

	if err := o.render(); err != nil {
		o.logger.Warn("animation frame render failed", "error", err)
	}

	if lambda >= 1 {
		o.anim = nil
		o.state = StateSteady
		return
	}
	o.requestFrame()
}

func (o *Overlay) snapToTarget() {
	for _, sp := range o.sprites {
		sp.Scale = sp.TargetScale
		sp.CurrentScale = sp.TargetScale
	}
}
