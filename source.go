package tether

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// maxPointers is the pointer slot count: slot 0 is the mouse, slots 1-9
// are touches.
const maxPointers = 10

// --- PointerSource ---

// PointerSource feeds pointer events into a Manager. Poll is called once
// per Manager.Update with a reusable buffer; implementations append the
// frame's events and return the slice.
type PointerSource interface {
	Poll(dst []PointerEvent) []PointerEvent
}

// --- Ebiten driver ---

// pointerState tracks one pointer slot between frames so polled device
// state can be turned into down/move/up transitions.
type pointerState struct {
	down   bool
	x, y   float64
	button MouseButton
}

// EbitenSource polls Ebitengine's mouse and touch state and synthesizes
// pointer events from the frame-to-frame transitions. Cursor coordinates
// are used as world coordinates; wrap the source if a camera transform
// sits between the screen and the node tree.
type EbitenSource struct {
	pointers  [maxPointers]pointerState
	touchIDs  []ebiten.TouchID
	touchMap  [maxPointers]ebiten.TouchID
	touchUsed [maxPointers]bool
}

// NewEbitenSource creates the polling driver. Bind it with
// Manager.SetSource.
func NewEbitenSource() *EbitenSource {
	return &EbitenSource{}
}

// Poll appends this frame's pointer events to dst.
func (s *EbitenSource) Poll(dst []PointerEvent) []PointerEvent {
	dst = s.pollMouse(dst)
	dst = s.pollTouches(dst)
	return dst
}

// pollMouse handles mouse input (pointer 0).
func (s *EbitenSource) pollMouse(dst []PointerEvent) []PointerEvent {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	// Detect which button is pressed. If the pointer is already down, keep
	// the stored button so it cannot change mid-interaction.
	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	return s.transition(dst, 0, x, y, pressed, button)
}

// pollTouches handles touch input (pointers 1-9).
func (s *EbitenSource) pollTouches(dst []PointerEvent) []PointerEvent {
	s.touchIDs = ebiten.AppendTouchIDs(s.touchIDs[:0])

	var activeSlots [maxPointers]bool
	for _, tid := range s.touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		dst = s.transition(dst, slot, float64(tx), float64(ty), true, MouseButtonLeft)
	}

	// Release slots whose touch ended this frame, at the last known spot.
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !activeSlots[i] {
			ps := &s.pointers[i]
			if ps.down {
				dst = s.transition(dst, i, ps.x, ps.y, false, MouseButtonLeft)
			}
			s.touchUsed[i] = false
			s.touchMap[i] = 0
		}
	}
	return dst
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9). Returns the
// existing slot or allocates a new one; -1 if all slots are taken.
func (s *EbitenSource) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}

// transition compares polled state against the stored slot and appends the
// implied event, if any. Timestamps are left zero; the manager stamps them
// on dispatch.
func (s *EbitenSource) transition(dst []PointerEvent, id int, x, y float64, pressed bool, button MouseButton) []PointerEvent {
	ps := &s.pointers[id]
	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.x, ps.y = x, y
		ps.button = button
		dst = append(dst, PointerEvent{Type: PointerDown, PointerID: id, X: x, Y: y, Button: button})
	case pressed && ps.down:
		if x != ps.x || y != ps.y {
			ps.x, ps.y = x, y
			dst = append(dst, PointerEvent{Type: PointerMove, PointerID: id, X: x, Y: y, Button: ps.button})
		}
	case !pressed && ps.down:
		ps.down = false
		ps.x, ps.y = x, y
		dst = append(dst, PointerEvent{Type: PointerUp, PointerID: id, X: x, Y: y, Button: ps.button})
	}
	return dst
}
