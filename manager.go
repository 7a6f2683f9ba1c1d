package tether

import "time"

// --- Manager ---

// Manager owns drag behavior for a whole node tree through one listener
// set, the way a delegated event root does: pointer events are hit-tested
// against the tree once, walked up to the nearest managed node, and routed
// to that node's instance. At most one instance is active at a time; while
// it is, moves and releases route to it no matter where the pointer is,
// and presses elsewhere are ignored.
type Manager struct {
	root      *Node
	instances map[*Node]*Instance
	active    *Instance

	source     PointerSource
	pollBuf    []PointerEvent
	queue      []PointerEvent
	testRunner *TestRunner

	startHandlers []handlerEntry
	dragHandlers  []handlerEntry
	endHandlers   []handlerEntry
	handlerID     uint32

	sink EventSink
}

// NewManager creates a manager rooted at the given node. Only nodes inside
// this subtree can be hit; instances attached to out-of-tree nodes stay
// dormant until their node joins the tree.
func NewManager(root *Node) *Manager {
	if root == nil {
		panic("tether: nil root node")
	}
	return &Manager{
		root:      root,
		instances: make(map[*Node]*Instance),
	}
}

// Root returns the manager's delegation root.
func (m *Manager) Root() *Node {
	return m.root
}

// --- Attach / detach ---

// Attach registers a node for drag management and returns its instance.
// The default plugin set merges under the given plugins unless
// cfg.NoDefaults is set. Panics on a nil node or a node that already has
// an instance.
func (m *Manager) Attach(node *Node, cfg Config, plugins ...*Plugin) *Instance {
	if node == nil {
		panic("tether: cannot attach nil node")
	}
	if globalDebug {
		debugCheckDisposed(node, "Attach")
	}
	if _, ok := m.instances[node]; ok {
		panic("tether: node already attached")
	}
	in := newInstance(m, node, cfg, plugins)
	m.instances[node] = in
	return in
}

// InstanceOf returns the instance attached to node, or nil.
func (m *Manager) InstanceOf(node *Node) *Instance {
	return m.instances[node]
}

// NumInstances returns the number of attached instances.
func (m *Manager) NumInstances() int {
	return len(m.instances)
}

// DestroyAll destroys every attached instance. Nodes are left in the tree.
func (m *Manager) DestroyAll() {
	for _, in := range m.instances {
		in.Destroy()
	}
}

// detach removes a destroyed instance from the registry.
func (m *Manager) detach(in *Instance) {
	delete(m.instances, in.node)
	if m.active == in {
		m.active = nil
	}
}

// releaseActive clears the active slot when an interaction ends.
func (m *Manager) releaseActive(in *Instance) {
	if m.active == in {
		m.active = nil
	}
}

// Active returns the instance currently holding the pointer, or nil.
func (m *Manager) Active() *Instance {
	return m.active
}

// --- Input plumbing ---

// SetSource binds a pointer source polled on every Update. Pass nil to
// unbind.
func (m *Manager) SetSource(src PointerSource) {
	m.source = src
}

// SetSink binds an event sink receiving every drag notification the
// manager's instances emit. Pass nil to unbind.
func (m *Manager) SetSink(sink EventSink) {
	m.sink = sink
}

// SetDebugMode toggles stderr diagnostics and extra misuse checks for the
// whole package.
func (m *Manager) SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// Update advances the manager by one frame: it steps the attached test
// runner (if any), drains one injected event, then polls the bound source
// and dispatches everything it produced. Call once per game tick.
func (m *Manager) Update() {
	if m.testRunner != nil {
		m.testRunner.step(m)
	}
	if len(m.queue) > 0 {
		ev := m.queue[0]
		m.queue = m.queue[1:]
		m.dispatch(ev)
	}
	if m.source != nil {
		m.pollBuf = m.source.Poll(m.pollBuf[:0])
		for _, ev := range m.pollBuf {
			m.dispatch(ev)
		}
	}
}

// dispatch routes one pointer event. Presses hit-test the tree and walk up
// to the nearest managed node; moves and releases follow the active
// instance unconditionally.
func (m *Manager) dispatch(ev PointerEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	switch ev.Type {
	case PointerDown:
		if m.active != nil {
			// Capture is singular: the press starts nothing, but it
			// still reaches the active instance so multitouch
			// protection can see the extra pointer.
			m.active.handleForeignPress(ev)
			return
		}
		hit := hitTest(m.root, ev.X, ev.Y)
		if hit == nil {
			return
		}
		in := m.instanceForPath(hit)
		if in == nil {
			return
		}
		ev.Target = hit
		if in.handlePress(ev, hit) {
			m.active = in
		}
	case PointerMove:
		if m.active == nil {
			return
		}
		ev.Target = m.active.node
		m.active.handleMove(ev)
	case PointerUp:
		if m.active == nil {
			return
		}
		ev.Target = m.active.node
		m.active.handleRelease(ev)
	}
}

// instanceForPath walks from the hit node up the parent chain to the
// nearest node with an instance.
func (m *Manager) instanceForPath(hit *Node) *Instance {
	for p := hit; p != nil; p = p.Parent {
		if in, ok := m.instances[p]; ok {
			return in
		}
	}
	return nil
}

// hitTest returns the deepest visible node containing (x, y), scanning
// children topmost-first (later siblings over earlier). Zero-area nodes
// act as containers: never hit themselves, children still tested.
func hitTest(n *Node, x, y float64) *Node {
	if n == nil || !n.Visible || n.disposed {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if hit := hitTest(n.children[i], x, y); hit != nil {
			return hit
		}
	}
	if n.Width > 0 && n.Height > 0 && n.WorldRect().Contains(x, y) {
		return n
	}
	return nil
}

// --- Scene-level handlers ---

type handlerEntry struct {
	id uint32
	fn func(DragEvent)
}

// CallbackHandle identifies a registered manager-level handler.
// Remove unregisters it; removing twice is a no-op.
type CallbackHandle struct {
	m    *Manager
	kind EventKind
	id   uint32
}

// Remove unregisters the handler this handle refers to.
func (h CallbackHandle) Remove() {
	if h.m == nil {
		return
	}
	list := h.m.handlerList(h.kind)
	for i, entry := range *list {
		if entry.id == h.id {
			copy((*list)[i:], (*list)[i+1:])
			(*list)[len(*list)-1] = handlerEntry{}
			*list = (*list)[:len(*list)-1]
			return
		}
	}
}

// OnDragStart registers a handler fired when any managed node starts
// dragging. Panics on a nil handler.
func (m *Manager) OnDragStart(fn func(DragEvent)) CallbackHandle {
	return m.addHandler(EventDragStart, fn)
}

// OnDrag registers a handler fired for every committed drag move.
func (m *Manager) OnDrag(fn func(DragEvent)) CallbackHandle {
	return m.addHandler(EventDrag, fn)
}

// OnDragEnd registers a handler fired when any managed node stops
// dragging.
func (m *Manager) OnDragEnd(fn func(DragEvent)) CallbackHandle {
	return m.addHandler(EventDragEnd, fn)
}

func (m *Manager) addHandler(kind EventKind, fn func(DragEvent)) CallbackHandle {
	if fn == nil {
		panic("tether: nil handler")
	}
	m.handlerID++
	list := m.handlerList(kind)
	*list = append(*list, handlerEntry{id: m.handlerID, fn: fn})
	return CallbackHandle{m: m, kind: kind, id: m.handlerID}
}

func (m *Manager) handlerList(kind EventKind) *[]handlerEntry {
	switch kind {
	case EventDragStart:
		return &m.startHandlers
	case EventDrag:
		return &m.dragHandlers
	default:
		return &m.endHandlers
	}
}

// fireHandlers invokes the manager-level handlers for the event's kind in
// registration order.
func (m *Manager) fireHandlers(evt DragEvent) {
	for _, entry := range *m.handlerList(evt.Kind) {
		entry.fn(evt)
	}
}

// emitToSink forwards an event to the bound sink, if any.
func (m *Manager) emitToSink(evt DragEvent) {
	if m.sink != nil {
		m.sink.EmitEvent(evt)
	}
}

// --- Synthetic input ---

// InjectPress queues a synthetic primary-button pointer press at world
// coordinates. Queued events drain one per Update, so scripted input
// advances frame by frame like real input.
func (m *Manager) InjectPress(x, y float64) {
	m.queue = append(m.queue, PointerEvent{
		Type:   PointerDown,
		X:      x,
		Y:      y,
		Button: MouseButtonLeft,
	})
}

// InjectMove queues a synthetic pointer move.
func (m *Manager) InjectMove(x, y float64) {
	m.queue = append(m.queue, PointerEvent{
		Type: PointerMove,
		X:    x,
		Y:    y,
	})
}

// InjectRelease queues a synthetic pointer release.
func (m *Manager) InjectRelease(x, y float64) {
	m.queue = append(m.queue, PointerEvent{
		Type:   PointerUp,
		X:      x,
		Y:      y,
		Button: MouseButtonLeft,
	})
}

// InjectDrag queues a full drag gesture: a press at the start point, steps
// interpolated moves, and a release at the end point. steps must be at
// least 1.
func (m *Manager) InjectDrag(fromX, fromY, toX, toY float64, steps int) {
	if steps < 1 {
		panic("tether: InjectDrag needs at least one step")
	}
	m.InjectPress(fromX, fromY)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		m.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	m.InjectRelease(toX, toY)
}

// PendingInjected returns how many injected events are still queued.
func (m *Manager) PendingInjected() int {
	return len(m.queue)
}
