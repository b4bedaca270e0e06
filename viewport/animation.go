package viewport

import (
	"maps"
	"math"
	"slices"
	"time"
)

type animation struct {
	from  Transform
	to    Transform
	start time.Time
	last  time.Time
}

// ZoomAt starts an animated zoom by factor that keeps the screen point (ax, ay)
// fixed. It reports false and does nothing if an animation is already in flight
// or the factor is not a positive finite number.
//
// The target is centered along an axis where the zoomed image is smaller than
// the canvas; elsewhere (ax, ay) keeps showing the same image point. While
// animating only cached tiles are drawn; tiles of the new level are requested
// when the animation completes.
func (v *Viewport) ZoomAt(ax, ay, factor float64) bool {
	if v.anim != nil || !(factor > 0) || math.IsInf(factor, 1) {
		return false
	}
	target := v.clamp(v.transform.zoomed(ax, ay, factor))
	now := v.opts.now()
	v.anim = &animation{from: v.transform, to: target, start: now, last: now}
	v.logger.Debug("tileview: zoom started", "factor", factor, "scale", target.Scale)
	return true
}

func (v *Viewport) stepAnimation(now time.Time) {
	a := v.anim
	elapsed := now.Sub(a.start)
	if elapsed >= v.opts.duration {
		v.finishAnimation()
		return
	}
	if now.Sub(a.last) < v.opts.step {
		return
	}
	a.last = now
	v.transform = a.from.lerp(a.to, float64(elapsed)/float64(v.opts.duration))
	v.Redraw()
}

func (v *Viewport) finishAnimation() {
	v.transform = v.anim.to
	v.anim = nil
	v.setLevel(levelForScale(v.transform.Scale, v.grid.MaxLevel()))
	v.Redraw()
}

// setLevel activates a level: its visible tiles are requested and the other
// retained levels are pruned to their visible tiles without new requests.
func (v *Viewport) setLevel(level int) {
	if level != v.level {
		v.logger.Debug("tileview: zoom level changed", "from", v.level, "to", level)
	}
	v.level = level
	v.UpdateVisibleTiles(level, true)
	for _, other := range slices.Sorted(maps.Keys(v.levels)) {
		if other != level {
			v.UpdateVisibleTiles(other, false)
		}
	}
}
