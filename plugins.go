package tether

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Built-in plugin priorities ---

// Dispatch priorities of the built-in plugins. Higher runs earlier. A
// custom plugin can slot itself relative to a built-in, or replace one by
// registering the built-in's name with an equal-or-higher priority.
const (
	PriorityDisabled         = 2000
	PriorityIgnoreMultitouch = 1000
	PriorityControls         = 900
	PriorityAxis             = 100
	PriorityGrid             = 50
	PriorityBounds           = 40
	PriorityDefault          = 0
	PriorityTransform        = -1000
)

// defaultPlugins builds the plugin set Attach installs under the caller's
// list: multitouch protection, the observable state attributes, the cursor
// guard, and the default transform application.
func defaultPlugins() []*Plugin {
	return []*Plugin{
		IgnoreMultitouch(),
		StateMarker(),
		CursorGuard(),
		Transform(nil),
	}
}

// --- IgnoreMultitouch ---

type multitouchState struct {
	pointers map[int]struct{}
}

// IgnoreMultitouch cancels the interaction as soon as a second concurrent
// pointer shows up in the drag stream. Installed by default; without it a
// second touch would yank the node toward the new pointer.
func IgnoreMultitouch() *Plugin {
	return &Plugin{
		Name:     "ignoreMultitouch",
		Priority: PriorityIgnoreMultitouch,
		Setup: func(_ *Context) any {
			return &multitouchState{pointers: make(map[int]struct{}, 2)}
		},
		DragStart: func(ctx *Context, state any) {
			st := state.(*multitouchState)
			for id := range st.pointers {
				delete(st.pointers, id)
			}
			st.pointers[ctx.Event.PointerID] = struct{}{}
		},
		Drag: func(ctx *Context, state any) {
			st := state.(*multitouchState)
			st.pointers[ctx.Event.PointerID] = struct{}{}
			if len(st.pointers) > 1 {
				ctx.Cancel()
			}
		},
		DragEnd: func(ctx *Context, state any) {
			st := state.(*multitouchState)
			delete(st.pointers, ctx.Event.PointerID)
		},
	}
}

// --- Classes ---

// ClassConfig names the classes the Classes plugin maintains. Zero-value
// fields fall back to the defaults.
type ClassConfig struct {
	Managed  string // present while attached; default "tether"
	Dragging string // present during a drag; default "tether-dragging"
	Dragged  string // added after the first completed drag; default "tether-dragged"
}

// Classes maintains observable classes on the managed node: the managed
// class for the attach lifetime, the dragging class while a drag is live,
// and the dragged class once any drag has completed. Cleanup removes the
// managed and dragging classes; the dragged class persists as history.
func Classes(cfg ClassConfig) *Plugin {
	if cfg.Managed == "" {
		cfg.Managed = "tether"
	}
	if cfg.Dragging == "" {
		cfg.Dragging = "tether-dragging"
	}
	if cfg.Dragged == "" {
		cfg.Dragged = "tether-dragged"
	}
	return &Plugin{
		Name:     "classes",
		Priority: PriorityDefault,
		Setup: func(ctx *Context) any {
			node := ctx.RootNode
			ctx.Queue(func() { node.AddClass(cfg.Managed) })
			return nil
		},
		DragStart: func(ctx *Context, _ any) {
			node := ctx.RootNode
			ctx.Queue(func() { node.AddClass(cfg.Dragging) })
		},
		DragEnd: func(ctx *Context, _ any) {
			node := ctx.RootNode
			dragged := ctx.IsDragging
			ctx.Queue(func() {
				node.RemoveClass(cfg.Dragging)
				if dragged {
					node.AddClass(cfg.Dragged)
				}
			})
		},
		Cleanup: func(ctx *Context, _ any) {
			node := ctx.RootNode
			ctx.Queue(func() {
				node.RemoveClass(cfg.Managed)
				node.RemoveClass(cfg.Dragging)
			})
		},
	}
}

// --- Axis ---

// AxisMode selects which axes a node may move along.
type AxisMode uint8

const (
	AxisBoth AxisMode = iota // both axes move (default)
	AxisX                    // horizontal only
	AxisY                    // vertical only
	AxisNone                 // no movement; interactions are vetoed
)

// Axis constrains movement to one axis. AxisNone refuses every interaction
// outright; AxisX and AxisY withhold the locked axis's proposal on every
// move, so later plugins leave it alone and the commit treats it as zero.
// Panics on an unknown mode.
func Axis(mode AxisMode) *Plugin {
	if mode > AxisNone {
		panic("tether: invalid axis mode")
	}
	return &Plugin{
		Name:       "axis",
		Priority:   PriorityAxis,
		LiveUpdate: true,
		ShouldDrag: func(_ *Context, _ any) bool {
			return mode != AxisNone
		},
		Drag: func(ctx *Context, _ any) {
			switch mode {
			case AxisX:
				ctx.DropProposedY()
			case AxisY:
				ctx.DropProposedX()
			}
		},
	}
}

// --- CursorGuard ---

// Swappable cursor accessors so tests run without a display.
var (
	cursorShape    = ebiten.CursorShape
	setCursorShape = ebiten.SetCursorShape
)

type cursorGuardState struct {
	saved   ebiten.CursorShapeType
	holding bool
}

// CursorGuard sets the process cursor to the move shape for the duration
// of a drag and restores the previous shape exactly on end — even when the
// previous shape was not the default. The cursor is process-wide state, so
// acquire and release ride the effect queue like any other observable
// mutation.
func CursorGuard() *Plugin {
	return &Plugin{
		Name:     "cursorGuard",
		Priority: PriorityDefault,
		Setup: func(_ *Context) any {
			return &cursorGuardState{}
		},
		DragStart: func(ctx *Context, state any) {
			st := state.(*cursorGuardState)
			ctx.Queue(func() {
				if st.holding {
					return
				}
				st.saved = cursorShape()
				st.holding = true
				setCursorShape(ebiten.CursorShapeMove)
			})
		},
		DragEnd: func(ctx *Context, state any) {
			st := state.(*cursorGuardState)
			ctx.Queue(func() {
				if !st.holding {
					return
				}
				setCursorShape(st.saved)
				st.holding = false
			})
		},
		Cleanup: func(ctx *Context, state any) {
			st := state.(*cursorGuardState)
			ctx.Queue(func() {
				if !st.holding {
					return
				}
				setCursorShape(st.saved)
				st.holding = false
			})
		},
	}
}

// --- Grid ---

// Grid snaps movement to a step lattice. Each move the plugin reads the
// would-be offset (committed + proposed), rounds it to the nearest multiple
// of the per-axis step, and writes the correction back into the proposal —
// so committed offsets are always exact multiples. A zero step locks that
// axis's increment to zero; the offset holds. Negative steps panic.
//
// Snapping the would-be offset rather than the raw increment keeps replays
// honest: swapping the grid mid-drag re-snaps the current position on the
// spot.
func Grid(stepX, stepY float64) *Plugin {
	if stepX < 0 || stepY < 0 {
		panic("tether: negative grid step")
	}
	return &Plugin{
		Name:       "grid",
		Priority:   PriorityGrid,
		LiveUpdate: true,
		Drag: func(ctx *Context, _ any) {
			if ctx.HasProposedX {
				if stepX == 0 {
					ctx.ProposeX(0)
				} else {
					target := ctx.Offset.X + ctx.ProposedX
					ctx.ProposeX(snapToStep(target, stepX) - ctx.Offset.X)
				}
			}
			if ctx.HasProposedY {
				if stepY == 0 {
					ctx.ProposeY(0)
				} else {
					target := ctx.Offset.Y + ctx.ProposedY
					ctx.ProposeY(snapToStep(target, stepY) - ctx.Offset.Y)
				}
			}
		},
	}
}

// --- Transform ---

// Transform applies the committed offset to the node. The default writes
// Node.TranslateX/TranslateY; fn replaces that for custom rendering (a
// different field, a different node). Application is always queued as a
// deferred effect, never performed synchronously inside a hook, so a veto
// anywhere in the phase leaves the node untouched.
func Transform(fn func(node *Node, offset Vec2)) *Plugin {
	apply := fn
	if apply == nil {
		apply = func(node *Node, offset Vec2) {
			node.SetTranslate(offset.X, offset.Y)
		}
	}
	queueApply := func(ctx *Context) {
		ctx.Queue(func() { apply(ctx.RootNode, ctx.Offset) })
	}
	return &Plugin{
		Name:     "transform",
		Priority: PriorityTransform,
		Setup: func(ctx *Context) any {
			if ctx.Offset != (Vec2{}) {
				queueApply(ctx)
			}
			return nil
		},
		Drag: func(ctx *Context, _ any) {
			queueApply(ctx)
		},
		DragEnd: func(ctx *Context, _ any) {
			queueApply(ctx)
		},
	}
}

// --- Disabled ---

// Disabled refuses every interaction. Swap it in and out with Update to
// toggle dragging at runtime.
func Disabled() *Plugin {
	return &Plugin{
		Name:       "disabled",
		Priority:   PriorityDisabled,
		LiveUpdate: true,
		ShouldDrag: func(_ *Context, _ any) bool {
			return false
		},
	}
}

// --- StateMarker ---

// Attribute names maintained by StateMarker.
const (
	AttrManaged = "tether"       // presence marks a managed node
	AttrState   = "tether-state" // "idle" or "dragging"
)

// StateMarker maintains the observable status attributes on the managed
// node: the presence attribute for the attach lifetime and the state
// attribute tracking the drag cycle. The state flips to "dragging" only
// when the drag-start phase commits, and back to "idle" on release, so
// black-box observers see exactly the committed state machine.
func StateMarker() *Plugin {
	return &Plugin{
		Name:     "stateMarker",
		Priority: PriorityDefault,
		Setup: func(ctx *Context) any {
			node := ctx.RootNode
			ctx.Queue(func() {
				node.SetAttr(AttrManaged, "")
				node.SetAttr(AttrState, "idle")
			})
			return nil
		},
		DragStart: func(ctx *Context, _ any) {
			node := ctx.RootNode
			ctx.Queue(func() { node.SetAttr(AttrState, "dragging") })
		},
		DragEnd: func(ctx *Context, _ any) {
			node := ctx.RootNode
			ctx.Queue(func() { node.SetAttr(AttrState, "idle") })
		},
		Cleanup: func(ctx *Context, _ any) {
			node := ctx.RootNode
			ctx.Queue(func() {
				node.RemoveAttr(AttrManaged)
				node.RemoveAttr(AttrState)
			})
		},
	}
}

// --- Controls ---

// ErrControlsConflict reports a Controls configuration whose handle lies
// inside a cancel region, which would make the node undraggable in a way
// that's invisible until the first press. It surfaces through the error
// callback at interaction start; the press is vetoed.
var ErrControlsConflict = errors.New("controls: handle lies inside a cancel region")

// Controls restricts where a drag may start: only presses landing in the
// handle subtree begin an interaction, and presses in the cancel subtree
// never do. A nil handle means the whole node; a nil cancel blocks
// nothing. The conflict of a handle nested inside a cancel region is
// reported, not swallowed.
func Controls(handle, cancel *Node) *Plugin {
	return &Plugin{
		Name:     "controls",
		Priority: PriorityControls,
		ShouldDrag: func(ctx *Context, _ any) bool {
			if handle != nil && cancel != nil && isAncestor(cancel, handle) {
				panic(ErrControlsConflict)
			}
			target := ctx.DragNode
			if target == nil {
				target = ctx.RootNode
			}
			if cancel != nil && isAncestor(cancel, target) {
				return false
			}
			if handle != nil && !isAncestor(handle, target) {
				return false
			}
			return true
		},
	}
}
