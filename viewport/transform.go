package viewport

import "math"

// Transform maps image space to screen space: screen = image*Scale + (TX, TY).
type Transform struct {
	TX    float64
	TY    float64
	Scale float64
}

func (t Transform) lerp(to Transform, f float64) Transform {
	return Transform{
		TX:    t.TX + (to.TX-t.TX)*f,
		TY:    t.TY + (to.TY-t.TY)*f,
		Scale: t.Scale + (to.Scale-t.Scale)*f,
	}
}

// zoomed returns the transform scaled by factor around the screen point (ax, ay).
func (t Transform) zoomed(ax, ay, factor float64) Transform {
	return Transform{
		TX:    ax - (ax-t.TX)*factor,
		TY:    ay - (ay-t.TY)*factor,
		Scale: t.Scale * factor,
	}
}

// clampAxis centers content smaller than the view. A larger content keeps its
// offset, so it may be moved freely along that axis.
func clampAxis(offset, content, view float64) float64 {
	if content <= view {
		return (view - content) / 2
	}
	return offset
}

// levelForScale returns floor(log2(1/scale)) limited to [0, maxLevel].
func levelForScale(scale float64, maxLevel int) int {
	level := int(math.Floor(math.Log2(1/scale) + 1e-9))
	return min(max(level, 0), maxLevel)
}
