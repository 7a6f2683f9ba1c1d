package tether

import "time"

// Vec2 is a 2D vector used for positions, offsets, and deltas throughout
// the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// ContainsRect reports whether other lies entirely inside r, edges inclusive.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X &&
		other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Phase identifies one stage of the plugin hook pipeline.
type Phase uint8

const (
	PhaseSetup      Phase = iota // once, when a plugin is attached or replaced
	PhaseShouldDrag              // on pointer-down, before an interaction starts
	PhaseDragStart               // once per interaction, when thresholds are met
	PhaseDrag                    // every qualifying pointer-move while dragging
	PhaseDragEnd                 // once per interaction, on pointer-up or cancel
	PhaseCleanup                 // once, when a plugin is detached or replaced
)

// String returns the lower-camel hook name for error reports.
func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseShouldDrag:
		return "shouldDrag"
	case PhaseDragStart:
		return "dragStart"
	case PhaseDrag:
		return "drag"
	case PhaseDragEnd:
		return "dragEnd"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// PointerEventType distinguishes the three pointer transitions the engine
// consumes. Hover moves without a held button never reach an instance.
type PointerEventType uint8

const (
	PointerDown PointerEventType = iota // button pressed or touch began
	PointerMove                         // moved while pressed
	PointerUp                           // button released or touch ended
)

// PointerEvent is a single pointer transition in world coordinates.
// Sources stamp Time so thresholds and tests stay deterministic; a zero
// Time is treated as time.Now by the engine.
type PointerEvent struct {
	Type      PointerEventType
	PointerID int // 0 = mouse, 1-9 = touch slots
	X, Y      float64
	Button    MouseButton
	Target    *Node // deepest node hit, nil when nothing was under the pointer
	Time      time.Time
}

// EventKind identifies a drag notification.
type EventKind uint8

const (
	EventDragStart EventKind = iota // thresholds met, interaction became a drag
	EventDrag                       // offset committed for a pointer-move
	EventDragEnd                    // drag finished (pointer-up or cancellation)
)

// DragEvent is the notification payload delivered to node callbacks, config
// callbacks, manager-level handlers, and the optional event sink.
// OffsetX/OffsetY are the committed cumulative offset in layout units.
type DragEvent struct {
	Kind        EventKind
	OffsetX     float64
	OffsetY     float64
	RootNode    *Node // the node the behavior was attached to
	CurrentNode *Node // the node currently holding capture (usually RootNode)
}

// EventSink receives every drag notification a Manager dispatches.
// Set one with [Manager.SetSink]; the donburi adapter in tether/ecs
// implements it.
type EventSink interface {
	EmitEvent(event DragEvent)
}
