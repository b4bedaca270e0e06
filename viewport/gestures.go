package viewport

import (
	"math"
	"time"
)

// State is the interaction state of Gestures.
type State int

const (
	Idle State = iota
	Dragging
	Zooming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Zooming:
		return "zooming"
	default:
		return "unknown"
	}
}

const (
	// DoubleTapInterval is the longest time between two taps of a double tap.
	DoubleTapInterval = 1000 * time.Millisecond

	WheelZoomFactor       = 2.0
	DoubleClickZoomFactor = 2.0
)

// Point is a touch position in screen coordinates.
type Point struct {
	X, Y float64
}

// Gestures translates pointer, wheel, touch and pinch events into viewport
// operations. It is platform independent; a host adapter feeds it events.
//
// Drags received while a zoom animation runs are queued and applied once it
// completes, which the owner observes by calling Update after Viewport.Update.
type Gestures struct {
	vp    *Viewport
	state State

	pressed        bool
	lastX, lastY   float64
	queuedX        float64
	queuedY        float64
	moved          bool
	tapAt          time.Time
	tapped         bool
	pinching       bool
	pinchX, pinchY float64
	pinchDistance  float64
	pinchScale     float64
}

func NewGestures(v *Viewport) *Gestures {
	return &Gestures{vp: v}
}

func (g *Gestures) State() State {
	return g.state
}

func (g *Gestures) PointerDown(x, y float64) {
	g.pressed = true
	g.lastX, g.lastY = x, y
	if g.state == Idle {
		g.state = Dragging
	}
}

func (g *Gestures) PointerMove(x, y float64) {
	if !g.pressed || g.pinching {
		return
	}
	dx, dy := x-g.lastX, y-g.lastY
	g.lastX, g.lastY = x, y
	if dx == 0 && dy == 0 {
		return
	}
	g.moved = true

	switch g.state {
	case Dragging:
		g.vp.Pan(dx, dy)
	case Zooming:
		g.queuedX += dx
		g.queuedY += dy
	}
}

func (g *Gestures) PointerUp(x, y float64) {
	g.PointerMove(x, y)
	g.pressed = false
	if g.state == Dragging {
		g.state = Idle
	}
}

// Wheel zooms in for a positive delta and out for a negative one, around (x, y).
func (g *Gestures) Wheel(x, y, delta float64) {
	switch {
	case delta > 0:
		g.zoom(x, y, WheelZoomFactor)
	case delta < 0:
		g.zoom(x, y, 1/WheelZoomFactor)
	}
}

func (g *Gestures) DoubleClick(x, y float64) {
	g.zoom(x, y, DoubleClickZoomFactor)
}

func (g *Gestures) TouchStart(touches []Point) {
	switch len(touches) {
	case 0:
		return
	case 1:
		g.moved = false
		g.PointerDown(touches[0].X, touches[0].Y)
	default:
		cx, cy, distance := spread(touches)
		g.PinchStart(cx, cy)
		g.pinchDistance = distance
	}
}

func (g *Gestures) TouchMove(touches []Point) {
	switch {
	case g.pinching && len(touches) >= 2:
		if _, _, distance := spread(touches); g.pinchDistance > 0 {
			g.PinchChange(distance / g.pinchDistance)
		}
	case len(touches) == 1:
		g.PointerMove(touches[0].X, touches[0].Y)
	}
}

// TouchEnd handles a finger lifted at (x, y). Two touch ends within
// DoubleTapInterval without a move in between are a double tap.
func (g *Gestures) TouchEnd(x, y float64) {
	if g.pinching {
		g.PinchEnd()
		return
	}
	if !g.pressed {
		return
	}
	g.PointerUp(x, y)

	now := g.vp.opts.now()
	switch {
	case g.moved:
		g.tapped = false
	case g.tapped && now.Sub(g.tapAt) <= DoubleTapInterval:
		g.tapped = false
		g.DoubleClick(x, y)
	default:
		g.tapped = true
		g.tapAt = now
	}
}

// PinchStart begins a two finger gesture centered at (cx, cy). It ends any drag.
func (g *Gestures) PinchStart(cx, cy float64) {
	g.pinching = true
	g.pinchX, g.pinchY = cx, cy
	g.pinchScale = 1
	g.pinchDistance = 0
	g.pressed = false
	g.moved = true
	g.tapped = false
	if g.state == Dragging {
		g.state = Idle
	}
}

// PinchChange records the current scale of the gesture relative to its start.
func (g *Gestures) PinchChange(scale float64) {
	if g.pinching && scale > 0 {
		g.pinchScale = scale
	}
}

// PinchEnd zooms by the final gesture scale around the gesture center.
func (g *Gestures) PinchEnd() {
	if !g.pinching {
		return
	}
	g.pinching = false
	if g.pinchScale != 1 {
		g.zoom(g.pinchX, g.pinchY, g.pinchScale)
	}
}

// Update leaves the Zooming state once the viewport animation has completed and
// applies the drag queued meanwhile.
func (g *Gestures) Update() {
	if g.state != Zooming || g.vp.Animating() {
		return
	}
	g.state = Idle
	if g.pressed {
		g.state = Dragging
	}
	if g.queuedX != 0 || g.queuedY != 0 {
		dx, dy := g.queuedX, g.queuedY
		g.queuedX, g.queuedY = 0, 0
		g.vp.Pan(dx, dy)
	}
}

func (g *Gestures) zoom(x, y, factor float64) {
	if g.vp.ZoomAt(x, y, factor) {
		g.state = Zooming
	}
}

// spread returns the center and the distance of the first two touches.
func spread(touches []Point) (cx, cy, distance float64) {
	a, b := touches[0], touches[1]
	return (a.X + b.X) / 2, (a.Y + b.Y) / 2, math.Hypot(b.X-a.X, b.Y-a.Y)
}
