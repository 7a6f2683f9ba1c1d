package tether

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// OffsetTween animates an instance's committed offset. Create one via
// TweenOffset and call Update(dt) each frame. Every step writes through
// Instance.SetOffset, so position plugins (grid, bounds) normalize the
// animated value and the transform plugin applies it, exactly as for a
// pointer move.
//
// The tween abandons itself when a pointer interaction begins — the
// pointer owns the offset — or when the instance is destroyed. There is no
// global animation manager; users call Update themselves.
type OffsetTween struct {
	x, y *gween.Tween
	inst *Instance
	Done bool
}

// TweenOffset creates an OffsetTween from the instance's current offset to
// the given target over duration seconds, using the easing function.
func TweenOffset(inst *Instance, toX, toY float64, duration float32, fn ease.TweenFunc) *OffsetTween {
	if inst == nil {
		panic("tether: nil instance")
	}
	off := inst.Offset()
	return &OffsetTween{
		x:    gween.New(float32(off.X), float32(toX), duration, fn),
		y:    gween.New(float32(off.Y), float32(toY), duration, fn),
		inst: inst,
	}
}

// Update advances the tween by dt seconds and applies the new offset. Once
// Done is set, further calls do nothing.
func (t *OffsetTween) Update(dt float32) {
	if t.Done {
		return
	}
	if t.inst.destroyed || t.inst.IsInteracting() {
		t.Done = true
		return
	}
	xv, xDone := t.x.Update(dt)
	yv, yDone := t.y.Update(dt)
	t.inst.SetOffset(float64(xv), float64(yv))
	t.Done = xDone && yDone
}
