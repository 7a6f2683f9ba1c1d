package tether

// --- Context ---

// Context is the single shared object threaded through every plugin hook of
// a drag instance. Plugins communicate exclusively through it: geometry in,
// proposed positions out, deferred side effects through the queue.
//
// Fields are exported for direct access on the hot path, matching how nodes
// expose geometry. The engine owns the lifecycle: proposal fields are reset
// before each pointer move, the veto flag before each phase, and the cancel
// flag before each interaction.
type Context struct {
	// ProposedX and ProposedY are the candidate per-move increments in
	// layout space. Each axis carries a presence flag so a plugin can
	// withhold one axis (axis locking) without inventing a zero that a
	// later plugin would mistake for data. An unset axis commits as 0.
	ProposedX    float64
	ProposedY    float64
	HasProposedX bool
	HasProposedY bool

	// Delta is the pointer's displacement measured against the
	// interaction anchor, in layout units. The engine seeds each move's
	// proposal with Delta − Offset.
	Delta Vec2

	// Offset is the committed accumulated drag offset in layout space.
	// Plugins read it; only the engine writes it.
	Offset Vec2

	// Initial is the pointer position at interaction start, in world
	// space. Per-move increments are measured against it.
	Initial Vec2

	// IsInteracting is true from an accepted pointer press until release.
	// IsDragging is true only after the movement thresholds were met and
	// the drag-start phase succeeded.
	IsInteracting bool
	IsDragging    bool

	// RootNode is the managed node the instance is attached to. DragNode
	// is the node the press actually landed on — a descendant of
	// RootNode, or RootNode itself. Plugins may reassign DragNode during
	// shouldDrag to redirect the grab.
	RootNode *Node
	DragNode *Node

	// CachedRect is RootNode's world rectangle captured at interaction
	// start. It is not refreshed during the drag; plugins that need live
	// geometry read the node directly.
	CachedRect Rect

	// InverseScale converts pointer-space distances into layout-space
	// distances. Captured at interaction start alongside CachedRect.
	InverseScale float64

	// Event is the pointer event being processed.
	Event PointerEvent

	effects   []func()
	vetoed    bool
	cancelled bool
}

// --- Proposals ---

// Propose sets the candidate increment for both axes.
func (c *Context) Propose(x, y float64) {
	c.ProposedX = x
	c.ProposedY = y
	c.HasProposedX = true
	c.HasProposedY = true
}

// ProposeX sets the candidate increment for the horizontal axis only.
func (c *Context) ProposeX(x float64) {
	c.ProposedX = x
	c.HasProposedX = true
}

// ProposeY sets the candidate increment for the vertical axis only.
func (c *Context) ProposeY(y float64) {
	c.ProposedY = y
	c.HasProposedY = true
}

// DropProposedX withholds the horizontal axis from this move. The axis
// commits as 0 unless a later plugin proposes a value.
func (c *Context) DropProposedX() {
	c.ProposedX = 0
	c.HasProposedX = false
}

// DropProposedY withholds the vertical axis from this move.
func (c *Context) DropProposedY() {
	c.ProposedY = 0
	c.HasProposedY = false
}

// resetProposal clears both axes before a new pointer move is offered to
// the plugin chain.
func (c *Context) resetProposal() {
	c.ProposedX = 0
	c.ProposedY = 0
	c.HasProposedX = false
	c.HasProposedY = false
}

// --- Effect queue ---

// Queue defers a side effect until the current phase completes without a
// veto. Effects from a vetoed phase are discarded unrun, which makes a
// phase a small transaction: state reads and writes happen now, observable
// mutations only on commit. Panics if fn is nil.
func (c *Context) Queue(fn func()) {
	if fn == nil {
		panic("tether: queued nil effect")
	}
	c.effects = append(c.effects, fn)
}

// flushEffects runs and clears all queued effects in queue order. Effects
// queued during the flush drain in the same pass.
func (c *Context) flushEffects() {
	for i := 0; i < len(c.effects); i++ {
		fn := c.effects[i]
		c.effects[i] = nil
		fn()
	}
	c.effects = c.effects[:0]
}

// discardEffects drops all queued effects without running them.
func (c *Context) discardEffects() {
	for i := range c.effects {
		c.effects[i] = nil
	}
	c.effects = c.effects[:0]
}

// --- Veto and cancel ---

// Veto rejects the current phase. The engine stops invoking further hooks
// for the phase, discards queued effects, and leaves the committed offset
// untouched. The flag clears automatically when the next phase begins.
func (c *Context) Veto() {
	c.vetoed = true
}

// Vetoed reports whether the current phase has been vetoed.
func (c *Context) Vetoed() bool {
	return c.vetoed
}

// Cancel aborts the whole interaction, not just the current phase. The
// engine finishes by running a drag-end phase and resetting to idle. Unlike
// Veto, Cancel survives phase boundaries until the interaction is torn
// down.
func (c *Context) Cancel() {
	c.cancelled = true
}

// Cancelled reports whether the interaction has been cancelled.
func (c *Context) Cancelled() bool {
	return c.cancelled
}

// beginPhase clears the per-phase veto flag.
func (c *Context) beginPhase() {
	c.vetoed = false
}

// beginInteraction clears per-interaction state ahead of a new press.
func (c *Context) beginInteraction() {
	c.vetoed = false
	c.cancelled = false
	c.resetProposal()
	c.discardEffects()
}
