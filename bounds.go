package tether

// --- Bounds sources ---

// BoundsSource yields the world-space rectangle a dragged node must stay
// inside. Returning ok=false means unbounded for this pass; the plugin
// leaves the proposal alone.
type BoundsSource interface {
	BoundsRect(ctx *Context) (Rect, bool)
}

// BoundsFunc adapts a plain function into a BoundsSource.
type BoundsFunc func(ctx *Context) (Rect, bool)

func (f BoundsFunc) BoundsRect(ctx *Context) (Rect, bool) {
	return f(ctx)
}

type fixedBounds struct {
	rect Rect
}

func (b fixedBounds) BoundsRect(_ *Context) (Rect, bool) {
	return b.rect, true
}

// FixedBounds constrains movement to an explicit world rectangle.
func FixedBounds(rect Rect) BoundsSource {
	return fixedBounds{rect: rect}
}

type parentBounds struct{}

func (parentBounds) BoundsRect(ctx *Context) (Rect, bool) {
	parent := ctx.RootNode.Parent
	if parent == nil {
		return Rect{}, false
	}
	return parent.WorldRect(), true
}

// ParentBounds constrains movement to the managed node's parent rectangle.
// An orphan node is unbounded.
func ParentBounds() BoundsSource {
	return parentBounds{}
}

type nodeBounds struct {
	node *Node
}

func (b nodeBounds) BoundsRect(_ *Context) (Rect, bool) {
	if b.node.IsDisposed() {
		return Rect{}, false
	}
	return b.node.WorldRect(), true
}

// NodeBounds constrains movement to an arbitrary node's rectangle. Panics
// on nil; a node disposed later simply stops bounding.
func NodeBounds(node *Node) BoundsSource {
	if node == nil {
		panic("tether: nil bounds node")
	}
	return nodeBounds{node: node}
}

// --- Recompute cadence ---

// RecomputeFlags controls when the Bounds plugin re-derives its envelope
// from the source. The envelope is always derived when the first
// interaction begins, once the press has cached the node's rectangle and
// scale; the zero value keeps that envelope for every later interaction.
// Trees whose geometry shifts between drags want at least OnStart.
type RecomputeFlags struct {
	OnStart bool // refresh when an interaction begins
	OnDrag  bool // refresh on every move
	OnEnd   bool // refresh when the interaction ends
}

// --- Bounds plugin ---

// boundsState is the allowed committed-offset envelope, derived from the
// world-space bound rectangle.
type boundsState struct {
	minX, maxX float64
	minY, maxY float64
	valid      bool
}

// recompute converts the source rectangle into offset limits, measured
// against the node's current world rectangle and current offset. When the
// envelope is smaller than the node the node pins at the near edge.
func (st *boundsState) recompute(ctx *Context, src BoundsSource) {
	bound, ok := src.BoundsRect(ctx)
	if !ok {
		st.valid = false
		return
	}
	nr := ctx.RootNode.WorldRect()
	scale := 1.0
	if ctx.InverseScale != 0 {
		scale = 1 / ctx.InverseScale
	}
	off := ctx.Offset
	st.minX = off.X + (bound.X-nr.X)/scale
	st.maxX = off.X + (bound.X+bound.Width-(nr.X+nr.Width))/scale
	st.minY = off.Y + (bound.Y-nr.Y)/scale
	st.maxY = off.Y + (bound.Y+bound.Height-(nr.Y+nr.Height))/scale
	if st.maxX < st.minX {
		st.maxX = st.minX
	}
	if st.maxY < st.minY {
		st.maxY = st.minY
	}
	st.valid = true
}

// Bounds keeps the dragged node's rectangle inside the source rectangle,
// edges inclusive. Each move it clamps the would-be offset (committed +
// proposed) into the envelope and writes the correction back into the
// proposal, so a fling against the edge parks the node exactly on it.
//
// The envelope is derived at drag start, not at setup: only then has the
// engine measured the node's rectangle and inverse scale, and any initial
// position has already been applied. Panics on a nil source.
func Bounds(src BoundsSource, flags RecomputeFlags) *Plugin {
	if src == nil {
		panic("tether: nil bounds source")
	}
	return &Plugin{
		Name:       "bounds",
		Priority:   PriorityBounds,
		LiveUpdate: true,
		Setup: func(_ *Context) any {
			return &boundsState{}
		},
		DragStart: func(ctx *Context, state any) {
			st := state.(*boundsState)
			if flags.OnStart || !st.valid {
				st.recompute(ctx, src)
			}
		},
		Drag: func(ctx *Context, state any) {
			st := state.(*boundsState)
			if flags.OnDrag {
				st.recompute(ctx, src)
			}
			if !st.valid {
				return
			}
			if ctx.HasProposedX {
				target := ctx.Offset.X + ctx.ProposedX
				ctx.ProposeX(clampFloat(target, st.minX, st.maxX) - ctx.Offset.X)
			}
			if ctx.HasProposedY {
				target := ctx.Offset.Y + ctx.ProposedY
				ctx.ProposeY(clampFloat(target, st.minY, st.maxY) - ctx.Offset.Y)
			}
		},
		DragEnd: func(ctx *Context, state any) {
			if flags.OnEnd {
				state.(*boundsState).recompute(ctx, src)
			}
		},
	}
}
