package tether

import (
	"errors"
	"math"
	"time"
)

// ErrCaptureRedirect reports a plugin reassigning the drag to a nil or
// disposed node. The engine fully resets the interaction when it sees one.
var ErrCaptureRedirect = errors.New("capture redirected to nil or disposed node")

// --- Configuration ---

// Threshold gates the transition from interacting to dragging. Both limits
// must be satisfied; zero values pass immediately, so the default Config
// starts dragging on the first pointer move.
type Threshold struct {
	// Distance is the minimum pointer travel in world units.
	Distance float64
	// Delay is the minimum time the pointer must stay down.
	Delay time.Duration
}

// Config configures an instance at attach time. The zero value is ready to
// use: no thresholds, zero initial offset, default plugins installed.
type Config struct {
	// Threshold gates drag start. Negative values panic at Attach.
	Threshold Threshold

	// Position is the initial committed offset in layout units. The
	// default transform plugin applies it during attach.
	Position Vec2

	// NoDefaults suppresses the default plugin set (ignore-multitouch,
	// state marker, cursor guard, transform). Individual defaults can
	// instead be overridden by registering a plugin with the same name.
	NoDefaults bool

	// Per-instance notification callbacks (nil = unused). These fire in
	// addition to node callbacks and manager-level handlers.
	OnDragStart func(DragEvent)
	OnDrag      func(DragEvent)
	OnDragEnd   func(DragEvent)

	// OnError receives hook failures. Nil routes them to a [tether]
	// line on stderr.
	OnError func(HookError)
}

// --- Instance ---

// Instance is the per-node drag engine: it owns the node's interaction
// context, the resolved plugin chain, and each plugin's private state, and
// runs the idle → interacting → dragging state machine over the pointer
// events its Manager routes to it.
//
// An instance stays registered until Destroy is called. Dropping the last
// reference without Destroy leaks the registration — there is no finalizer.
type Instance struct {
	manager *Manager
	node    *Node
	ctx     *Context
	cfg     Config

	// plugins is the active chain in dispatch order. states holds each
	// plugin's private Setup return, keyed by name.
	plugins  []*Plugin
	states   map[string]any
	defaults []*Plugin

	pressPos  Vec2
	pressTime time.Time

	// pointerID is the pointer that owns the interaction. Moves before the
	// drag starts and releases are ignored from any other pointer; a
	// foreign pointer's press reaches the drag chain through
	// handleForeignPress so multitouch protection can see it.
	pointerID int

	// lastMove is replayed through the chain when a live plugin update
	// lands mid-interaction.
	lastMove    PointerEvent
	hasLastMove bool

	// pendingPlugins parks a mid-interaction Update until pointer-up.
	pendingPlugins []*Plugin
	hasPending     bool

	destroyed bool
}

// newInstance wires up a fresh instance and runs the setup phase.
// Called by Manager.Attach, which owns registry bookkeeping.
func newInstance(m *Manager, node *Node, cfg Config, plugins []*Plugin) *Instance {
	if cfg.Threshold.Distance < 0 {
		panic("tether: negative threshold distance")
	}
	if cfg.Threshold.Delay < 0 {
		panic("tether: negative threshold delay")
	}
	in := &Instance{
		manager: m,
		node:    node,
		cfg:     cfg,
		states:  make(map[string]any),
	}
	in.ctx = &Context{
		RootNode:     node,
		Offset:       cfg.Position,
		InverseScale: 1,
	}
	if !cfg.NoDefaults {
		in.defaults = defaultPlugins()
	}
	in.plugins = in.resolveWithDefaults(plugins)
	in.runSetupAll()
	in.ctx.flushEffects()
	debugf("attach node=%q plugins=%d", node.Name, len(in.plugins))
	return in
}

// resolveWithDefaults merges the cached default plugin records under the
// caller's list and resolves name collisions. Defaults are registered
// first, so a caller plugin with the same name and equal-or-higher
// priority replaces them.
func (in *Instance) resolveWithDefaults(user []*Plugin) []*Plugin {
	if in.defaults == nil {
		return resolvePlugins(user)
	}
	merged := make([]*Plugin, 0, len(in.defaults)+len(user))
	merged = append(merged, in.defaults...)
	merged = append(merged, user...)
	return resolvePlugins(merged)
}

// --- Accessors ---

// Node returns the managed node.
func (in *Instance) Node() *Node {
	return in.node
}

// Offset returns the committed drag offset in layout units.
func (in *Instance) Offset() Vec2 {
	return in.ctx.Offset
}

// IsInteracting reports whether a pointer is currently down on the node.
func (in *Instance) IsInteracting() bool {
	return in.ctx.IsInteracting
}

// IsDragging reports whether the node is past the drag thresholds and
// actively following the pointer.
func (in *Instance) IsDragging() bool {
	return in.ctx.IsDragging
}

// --- Programmatic offset ---

// SetOffset writes the committed offset directly and re-applies it through
// the drag chain, so grid and bounds plugins normalize the value and the
// transform plugin moves the node. Ignored while a pointer interaction is
// in progress — the pointer owns the offset.
func (in *Instance) SetOffset(x, y float64) {
	if in.destroyed || in.ctx.IsInteracting {
		return
	}
	in.ctx.Offset = Vec2{X: x, Y: y}
	in.applyOffset()
}

// applyOffset runs a pointerless drag pass with a zero-increment proposal.
// Position plugins see Offset+0 and write back corrections; the commit and
// flush then land exactly as they would for a real move.
func (in *Instance) applyOffset() {
	ctx := in.ctx
	ctx.Event = PointerEvent{}
	ctx.Delta = Vec2{}
	ctx.resetProposal()
	ctx.Propose(0, 0)
	if in.runPhase(PhaseDrag) {
		in.commitProposal()
		ctx.flushEffects()
	} else {
		ctx.discardEffects()
		ctx.cancelled = false
	}
}

// --- Live update ---

// Update reconciles the instance's plugin chain against a new list. The
// same default merging as Attach applies.
//
// While idle the reconcile is immediate: removed plugins are cleaned up,
// records replaced by a different *Plugin of the same name are cleaned up
// and set up fresh, and identical pointers are left untouched — so calling
// Update with an unchanged list is free.
//
// Mid-interaction only plugins marked LiveUpdate reconcile now; the full
// list is parked and applied on return to idle. If any live plugin changed,
// the most recent pointer move is replayed through the updated chain so the
// node's position reflects the new configuration immediately.
func (in *Instance) Update(plugins ...*Plugin) {
	if in.destroyed {
		if globalDebug {
			panic("tether: instance used after Destroy")
		}
		return
	}
	desired := in.resolveWithDefaults(plugins)
	if in.ctx.IsInteracting {
		in.reconcileLive(desired)
		return
	}
	in.reconcileIdle(desired)
}

// reconcileIdle swaps the chain in one pass. desired is already resolved
// into dispatch order.
func (in *Instance) reconcileIdle(desired []*Plugin) {
	oldByName := make(map[string]*Plugin, len(in.plugins))
	for _, p := range in.plugins {
		oldByName[p.Name] = p
	}
	desiredByName := make(map[string]*Plugin, len(desired))
	for _, p := range desired {
		desiredByName[p.Name] = p
	}

	for _, old := range in.plugins {
		if _, ok := desiredByName[old.Name]; !ok {
			in.runCleanup(old)
		}
	}
	kept := make([]*Plugin, 0, len(desired))
	for _, p := range desired {
		old, existed := oldByName[p.Name]
		switch {
		case existed && old == p:
			kept = append(kept, p)
		case existed:
			in.runCleanup(old)
			if herr := in.runSetup(p); herr != nil {
				in.reportError(*herr)
				continue
			}
			kept = append(kept, p)
		default:
			if herr := in.runSetup(p); herr != nil {
				in.reportError(*herr)
				continue
			}
			kept = append(kept, p)
		}
	}
	in.plugins = kept
	in.ctx.flushEffects()
}

// reconcileLive applies the LiveUpdate subset of desired and parks the rest.
func (in *Instance) reconcileLive(desired []*Plugin) {
	in.pendingPlugins = desired
	in.hasPending = true

	desiredByName := make(map[string]*Plugin, len(desired))
	for _, p := range desired {
		desiredByName[p.Name] = p
	}

	changed := false
	next := make([]*Plugin, 0, len(in.plugins))
	seen := make(map[string]struct{}, len(in.plugins))
	for _, old := range in.plugins {
		seen[old.Name] = struct{}{}
		nu, ok := desiredByName[old.Name]
		switch {
		case !ok:
			if !old.LiveUpdate {
				next = append(next, old) // parked removal
				continue
			}
			in.runCleanup(old)
			changed = true
		case nu == old:
			next = append(next, old)
		case nu.LiveUpdate:
			in.runCleanup(old)
			if herr := in.runSetup(nu); herr != nil {
				in.reportError(*herr)
				changed = true
				continue
			}
			next = append(next, nu)
			changed = true
		default:
			next = append(next, old) // parked replacement
		}
	}
	for _, nu := range desired {
		if _, ok := seen[nu.Name]; ok {
			continue
		}
		if !nu.LiveUpdate {
			continue // parked addition
		}
		if herr := in.runSetup(nu); herr != nil {
			in.reportError(*herr)
			continue
		}
		next = append(next, nu)
		changed = true
	}
	if !changed {
		return
	}
	in.plugins = resolvePlugins(next)
	in.ctx.flushEffects()
	debugf("live update node=%q plugins=%d", in.node.Name, len(in.plugins))
	if in.hasLastMove {
		in.handleMove(in.lastMove)
	}
}

// --- Destroy ---

// Destroy unwinds the instance: an in-progress interaction is ended, every
// plugin's cleanup runs in dispatch order, and the node is removed from the
// manager's registry. Destroy is idempotent. Nodes must be destroyed before
// being disposed, or the registration leaks.
func (in *Instance) Destroy() {
	if in.destroyed {
		return
	}
	if in.ctx.IsInteracting {
		wasDragging := in.ctx.IsDragging
		in.ctx.cancelled = false
		if in.runPhase(PhaseDragEnd) {
			in.ctx.flushEffects()
		} else {
			in.ctx.discardEffects()
		}
		in.finishInteraction(wasDragging)
	}
	for _, p := range in.plugins {
		in.runCleanup(p)
	}
	in.ctx.flushEffects()
	in.plugins = nil
	in.pendingPlugins = nil
	in.hasPending = false
	in.destroyed = true
	if in.manager != nil {
		in.manager.detach(in)
	}
	debugf("destroy node=%q", in.node.Name)
}

// --- Pointer handling ---

// handlePress attempts the idle → interacting transition. Returns true if
// the interaction started, in which case the manager marks this instance
// active. hit is the node the press actually landed on.
func (in *Instance) handlePress(ev PointerEvent, hit *Node) bool {
	ctx := in.ctx
	if in.destroyed || ctx.IsInteracting || ev.Button != MouseButtonLeft {
		return false
	}
	if hit == nil {
		hit = in.node
	}

	ctx.beginInteraction()
	ctx.Event = ev
	ctx.DragNode = hit
	ctx.CachedRect = in.node.WorldRect()
	ctx.InverseScale = inverseScaleFor(in.node.Width, ctx.CachedRect)
	// The anchor absorbs the carried offset so the first proposal is pure
	// pointer travel.
	ctx.Initial = Vec2{
		X: ev.X - ctx.Offset.X/ctx.InverseScale,
		Y: ev.Y - ctx.Offset.Y/ctx.InverseScale,
	}

	if !in.runPhase(PhaseShouldDrag) {
		ctx.discardEffects()
		ctx.cancelled = false
		ctx.DragNode = nil
		return false
	}
	if !in.dragNodeValid() {
		in.reportError(HookError{Phase: PhaseShouldDrag, Node: in.node, Err: ErrCaptureRedirect})
		ctx.discardEffects()
		ctx.cancelled = false
		ctx.DragNode = nil
		return false
	}
	ctx.flushEffects()
	ctx.IsInteracting = true
	in.pressPos = Vec2{X: ev.X, Y: ev.Y}
	in.pressTime = ev.Time
	in.pointerID = ev.PointerID
	in.hasLastMove = false
	debugf("interact node=%q pointer=%d", in.node.Name, ev.PointerID)
	return true
}

// handleMove advances the interaction for a routed pointer move: threshold
// checks and the dragStart transition first, then the per-move proposal
// pass. Also the replay entry point for live updates.
func (in *Instance) handleMove(ev PointerEvent) {
	ctx := in.ctx
	if !ctx.IsInteracting {
		return
	}
	// Before the drag starts only the owning pointer can satisfy the
	// thresholds. Once dragging, other pointers' moves still flow so
	// multitouch protection can cancel on them.
	if !ctx.IsDragging && ev.PointerID != in.pointerID {
		return
	}
	ctx.Event = ev
	in.lastMove = ev
	in.hasLastMove = true

	if !ctx.IsDragging {
		if !in.thresholdMet(ev) {
			return
		}
		ok := in.runPhase(PhaseDragStart)
		if ctx.cancelled {
			ctx.discardEffects()
			in.cancelInteraction()
			return
		}
		if !ok {
			// Vetoed: stay interacting, retry on the next move.
			ctx.discardEffects()
			return
		}
		if !in.dragNodeValid() {
			in.resetAfterRedirect(PhaseDragStart)
			return
		}
		ctx.flushEffects()
		ctx.IsDragging = true
		debugf("drag start node=%q", in.node.Name)
		in.notify(EventDragStart)
	}

	inv := ctx.InverseScale
	ctx.Delta = Vec2{
		X: (ev.X - ctx.Initial.X) * inv,
		Y: (ev.Y - ctx.Initial.Y) * inv,
	}
	ctx.resetProposal()
	ctx.Propose(ctx.Delta.X-ctx.Offset.X, ctx.Delta.Y-ctx.Offset.Y)

	ok := in.runPhase(PhaseDrag)
	if ctx.cancelled {
		ctx.discardEffects()
		in.cancelInteraction()
		return
	}
	if !ok {
		ctx.discardEffects()
		return
	}
	if !in.dragNodeValid() {
		in.resetAfterRedirect(PhaseDrag)
		return
	}
	in.commitProposal()
	ctx.flushEffects()
	in.notify(EventDrag)
}

// handleRelease runs the dragEnd phase and resets to idle. The owning
// pointer's release ends the interaction unconditionally, dragged or not;
// any other pointer's release is ignored.
func (in *Instance) handleRelease(ev PointerEvent) {
	ctx := in.ctx
	if !ctx.IsInteracting || ev.PointerID != in.pointerID {
		return
	}
	ctx.Event = ev
	wasDragging := ctx.IsDragging
	ctx.cancelled = false
	if in.runPhase(PhaseDragEnd) {
		ctx.flushEffects()
	} else {
		ctx.discardEffects()
	}
	in.finishInteraction(wasDragging)
}

// handleForeignPress runs when another pointer goes down while this
// instance is dragging. The press cannot start anything — capture is
// singular — but multitouch protection must still see the new pointer, so
// the drag chain runs once with a zero increment. A plugin that cancels on
// it tears the interaction down before the extra pointer can interfere;
// otherwise the zero commit leaves the node where it was.
func (in *Instance) handleForeignPress(ev PointerEvent) {
	ctx := in.ctx
	if !ctx.IsDragging || ev.PointerID == in.pointerID {
		return
	}
	ctx.Event = ev
	ctx.resetProposal()
	ctx.Propose(0, 0)
	ok := in.runPhase(PhaseDrag)
	if ctx.cancelled {
		ctx.discardEffects()
		in.cancelInteraction()
		return
	}
	if !ok {
		ctx.discardEffects()
		return
	}
	in.commitProposal()
	ctx.flushEffects()
}

// cancelInteraction tears the interaction down after a plugin called
// Cancel: queued effects are already discarded, and a fresh dragEnd phase
// runs with the cancel flag cleared so every plugin unwinds.
func (in *Instance) cancelInteraction() {
	ctx := in.ctx
	wasDragging := ctx.IsDragging
	ctx.cancelled = false
	debugf("cancel node=%q", in.node.Name)
	if in.runPhase(PhaseDragEnd) {
		ctx.flushEffects()
	} else {
		ctx.discardEffects()
	}
	in.finishInteraction(wasDragging)
}

// finishInteraction resets to idle, fires the end notification when a drag
// actually happened, and applies any parked plugin update.
func (in *Instance) finishInteraction(wasDragging bool) {
	ctx := in.ctx
	endEvent := in.makeEvent(EventDragEnd)
	ctx.IsInteracting = false
	ctx.IsDragging = false
	ctx.cancelled = false
	ctx.resetProposal()
	ctx.DragNode = nil
	in.hasLastMove = false
	if in.manager != nil {
		in.manager.releaseActive(in)
	}
	if wasDragging {
		in.deliver(endEvent)
	}
	if in.hasPending {
		pending := in.pendingPlugins
		in.pendingPlugins = nil
		in.hasPending = false
		in.reconcileIdle(pending)
	}
}

// dragNodeValid reports whether the context still points at a usable drag
// node after a phase ran.
func (in *Instance) dragNodeValid() bool {
	return in.ctx.DragNode != nil && !in.ctx.DragNode.IsDisposed()
}

// resetAfterRedirect tears the interaction down after a poisoned capture
// redirect: report, drop the phase's effects, unwind through dragEnd.
func (in *Instance) resetAfterRedirect(phase Phase) {
	in.reportError(HookError{Phase: phase, Node: in.node, Err: ErrCaptureRedirect})
	in.ctx.discardEffects()
	in.ctx.DragNode = in.node
	in.cancelInteraction()
}

// thresholdMet checks the configured drag thresholds against a move event.
func (in *Instance) thresholdMet(ev PointerEvent) bool {
	th := in.cfg.Threshold
	if th.Delay > 0 && ev.Time.Sub(in.pressTime) < th.Delay {
		return false
	}
	if th.Distance > 0 {
		if math.Hypot(ev.X-in.pressPos.X, ev.Y-in.pressPos.Y) < th.Distance {
			return false
		}
	}
	return true
}

// commitProposal folds the surviving proposal into the committed offset.
// A withheld axis contributes nothing.
func (in *Instance) commitProposal() {
	ctx := in.ctx
	if ctx.HasProposedX {
		ctx.Offset.X += ctx.ProposedX
	}
	if ctx.HasProposedY {
		ctx.Offset.Y += ctx.ProposedY
	}
}

// --- Phase dispatch ---

// runPhase dispatches one lifecycle phase across the chain in priority
// order and reports whether the phase survived: no veto, no cancel. The
// caller settles the effect queue — flush on success, discard otherwise —
// so commits can land between dispatch and flush.
//
// A vetoed phase stops dispatching outright. A cancelled phase keeps
// scanning but only non-cancelable plugins still run. A hook panic is
// reported and counts as a veto.
func (in *Instance) runPhase(phase Phase) bool {
	ctx := in.ctx
	ctx.beginPhase()
	for _, p := range in.plugins {
		if ctx.vetoed {
			break
		}
		if ctx.cancelled && !p.NonCancelable {
			continue
		}
		fn := in.hookCaller(p, phase)
		if fn == nil {
			continue
		}
		if herr := invokeHook(phase, p.Name, ctx.RootNode, fn); herr != nil {
			in.reportError(*herr)
			ctx.vetoed = true
		}
	}
	return !ctx.vetoed && !ctx.cancelled
}

// hookCaller adapts a plugin's hook for the given phase into a bare
// closure, or nil when the plugin doesn't implement the phase. A
// shouldDrag refusal is folded into the veto signal.
func (in *Instance) hookCaller(p *Plugin, phase Phase) func() {
	ctx := in.ctx
	state := in.states[p.Name]
	switch phase {
	case PhaseShouldDrag:
		if p.ShouldDrag == nil {
			return nil
		}
		return func() {
			if !p.ShouldDrag(ctx, state) {
				ctx.Veto()
			}
		}
	case PhaseDragStart:
		if p.DragStart == nil {
			return nil
		}
		return func() { p.DragStart(ctx, state) }
	case PhaseDrag:
		if p.Drag == nil {
			return nil
		}
		return func() { p.Drag(ctx, state) }
	case PhaseDragEnd:
		if p.DragEnd == nil {
			return nil
		}
		return func() { p.DragEnd(ctx, state) }
	}
	return nil
}

// runSetupAll runs setup on every plugin in dispatch order. A panicking
// setup is reported and its plugin dropped from the chain — attach never
// aborts wholesale.
func (in *Instance) runSetupAll() {
	kept := make([]*Plugin, 0, len(in.plugins))
	for _, p := range in.plugins {
		if herr := in.runSetup(p); herr != nil {
			in.reportError(*herr)
			continue
		}
		kept = append(kept, p)
	}
	in.plugins = kept
}

// runSetup invokes a single plugin's setup and stores its private state.
func (in *Instance) runSetup(p *Plugin) *HookError {
	if p.Setup == nil {
		return nil
	}
	var state any
	herr := invokeHook(PhaseSetup, p.Name, in.ctx.RootNode, func() {
		state = p.Setup(in.ctx)
	})
	if herr != nil {
		return herr
	}
	in.states[p.Name] = state
	return nil
}

// runCleanup invokes a single plugin's cleanup and drops its private state.
// Cleanup failures are reported but never block the reconcile.
func (in *Instance) runCleanup(p *Plugin) {
	if p.Cleanup != nil {
		state := in.states[p.Name]
		herr := invokeHook(PhaseCleanup, p.Name, in.ctx.RootNode, func() {
			p.Cleanup(in.ctx, state)
		})
		if herr != nil {
			in.reportError(*herr)
		}
	}
	delete(in.states, p.Name)
}

// reportError routes a hook failure to the configured callback, or to
// stderr when none is set.
func (in *Instance) reportError(err HookError) {
	if in.cfg.OnError != nil {
		in.cfg.OnError(err)
		return
	}
	warnf("%s", err.Error())
}

// --- Notifications ---

// makeEvent snapshots the committed offset and node pair into an event.
func (in *Instance) makeEvent(kind EventKind) DragEvent {
	current := in.ctx.DragNode
	if current == nil {
		current = in.node
	}
	return DragEvent{
		Kind:        kind,
		OffsetX:     in.ctx.Offset.X,
		OffsetY:     in.ctx.Offset.Y,
		RootNode:    in.node,
		CurrentNode: current,
	}
}

func (in *Instance) notify(kind EventKind) {
	in.deliver(in.makeEvent(kind))
}

// deliver fans an event out to every notification channel in a fixed
// order: manager-level handlers, node callbacks, instance callbacks, then
// the manager's event sink.
func (in *Instance) deliver(evt DragEvent) {
	if in.manager != nil {
		in.manager.fireHandlers(evt)
	}
	switch evt.Kind {
	case EventDragStart:
		if in.node.OnDragStart != nil {
			in.node.OnDragStart(evt)
		}
		if in.cfg.OnDragStart != nil {
			in.cfg.OnDragStart(evt)
		}
	case EventDrag:
		if in.node.OnDrag != nil {
			in.node.OnDrag(evt)
		}
		if in.cfg.OnDrag != nil {
			in.cfg.OnDrag(evt)
		}
	case EventDragEnd:
		if in.node.OnDragEnd != nil {
			in.node.OnDragEnd(evt)
		}
		if in.cfg.OnDragEnd != nil {
			in.cfg.OnDragEnd(evt)
		}
	}
	if in.manager != nil {
		in.manager.emitToSink(evt)
	}
}
