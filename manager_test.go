package tether

import "testing"

// scriptSource replays a fixed list of per-frame event batches.
type scriptSource struct {
	frames [][]PointerEvent
	cursor int
}

func (s *scriptSource) Poll(dst []PointerEvent) []PointerEvent {
	if s.cursor >= len(s.frames) {
		return dst
	}
	dst = append(dst, s.frames[s.cursor]...)
	s.cursor++
	return dst
}

// --- Construction ---

func TestNewManagerNilRootPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, got none")
		}
	}()
	NewManager(nil)
}

func TestAttachNilNodePanics(t *testing.T) {
	m := NewManager(NewNode("root", 640, 480))
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, got none")
		}
	}()
	m.Attach(nil, Config{})
}

func TestAttachTwicePanics(t *testing.T) {
	m, card, _ := newTestRig(Config{})
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, got none")
		}
	}()
	m.Attach(card, Config{})
}

func TestInstanceOf(t *testing.T) {
	m, card, in := newTestRig(Config{})
	if m.InstanceOf(card) != in {
		t.Error("InstanceOf should return the attached instance")
	}
	if m.InstanceOf(m.Root()) != nil {
		t.Error("InstanceOf on an unmanaged node should return nil")
	}
}

func TestDestroyAll(t *testing.T) {
	root := NewNode("root", 640, 480)
	m := NewManager(root)
	nodes := make([]*Node, 3)
	for i := range nodes {
		nodes[i] = NewNode("card", 100, 100)
		root.AddChild(nodes[i])
		m.Attach(nodes[i], Config{})
	}
	if m.NumInstances() != 3 {
		t.Fatalf("NumInstances = %d, want 3", m.NumInstances())
	}

	m.DestroyAll()
	if m.NumInstances() != 0 {
		t.Errorf("NumInstances = %d, want 0 after DestroyAll", m.NumInstances())
	}
	for _, n := range nodes {
		if n.HasAttr(AttrManaged) {
			t.Error("destroy should have removed the managed attribute")
		}
		if n.Parent != root {
			t.Error("DestroyAll should leave nodes in the tree")
		}
	}
}

// --- Hit testing ---

func TestHitTestGeometry(t *testing.T) {
	root := NewNode("root", 640, 480)
	under := NewNode("under", 100, 100)
	over := NewNode("over", 100, 100)
	over.X = 50
	panel := NewNode("panel", 0, 0)
	panel.X = 200
	panel.Y = 200
	item := NewNode("item", 50, 50)
	root.AddChild(under)
	root.AddChild(over)
	root.AddChild(panel)
	panel.AddChild(item)

	tests := []struct {
		name string
		x, y float64
		want *Node
	}{
		{"overlap goes to the later sibling", 60, 50, over},
		{"uncontested node", 10, 10, under},
		{"container child", 220, 220, item},
		{"container itself never hit", 260, 260, root},
		{"root as fallback", 400, 100, root},
		{"outside everything", 700, 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hitTest(root, tt.x, tt.y); got != tt.want {
				t.Errorf("hitTest(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHitTestSkipsInvisibleSubtree(t *testing.T) {
	root := NewNode("root", 640, 480)
	group := NewNode("group", 0, 0)
	inner := NewNode("inner", 100, 100)
	root.AddChild(group)
	group.AddChild(inner)

	if got := hitTest(root, 50, 50); got != inner {
		t.Fatalf("hitTest = %v, want inner while visible", got)
	}
	group.Visible = false
	if got := hitTest(root, 50, 50); got != root {
		t.Errorf("hitTest = %v, want root once the subtree is hidden", got)
	}
}

func TestHitTestSkipsDisposed(t *testing.T) {
	root := NewNode("root", 640, 480)
	card := NewNode("card", 100, 100)
	root.AddChild(card)

	card.disposed = true
	if got := hitTest(root, 50, 50); got != root {
		t.Errorf("hitTest = %v, want root past the disposed child", got)
	}
}

func TestHitTestScaledChild(t *testing.T) {
	root := NewNode("root", 640, 480)
	card := NewNode("card", 100, 100)
	card.ScaleX = 2
	card.ScaleY = 2
	root.AddChild(card)

	if got := hitTest(root, 150, 150); got != card {
		t.Errorf("hitTest inside the scaled rect = %v, want card", got)
	}
	if got := hitTest(root, 250, 150); got != root {
		t.Errorf("hitTest outside the scaled rect = %v, want root", got)
	}
}

// --- Dispatch ---

func TestDispatchWalksToManagedAncestor(t *testing.T) {
	root := NewNode("root", 640, 480)
	card := NewNode("card", 100, 100)
	face := NewNode("face", 0, 0)
	label := NewNode("label", 40, 20)
	root.AddChild(card)
	card.AddChild(face)
	face.AddChild(label)
	m := NewManager(root)
	in := m.Attach(card, Config{})

	m.dispatch(pressEvent(20, 10))
	if m.Active() != in {
		t.Fatal("press on a descendant should activate the managed ancestor")
	}
	if in.ctx.DragNode != label {
		t.Errorf("DragNode = %v, want the hit descendant", in.ctx.DragNode)
	}
	m.dispatch(releaseEvent(20, 10))
}

func TestDispatchIgnoresUnmanagedHit(t *testing.T) {
	m, _, _ := newTestRig(Config{})

	// (400, 300) lands on the root, which has no instance.
	m.dispatch(pressEvent(400, 300))
	if m.Active() != nil {
		t.Error("press outside any managed subtree should be ignored")
	}
}

func TestDispatchPressWhileActiveIgnored(t *testing.T) {
	root := NewNode("root", 640, 480)
	a := NewNode("a", 100, 100)
	b := NewNode("b", 100, 100)
	b.X = 200
	root.AddChild(a)
	root.AddChild(b)
	m := NewManager(root)
	inA := m.Attach(a, Config{})
	inB := m.Attach(b, Config{})

	m.dispatch(pressEvent(50, 50))
	if m.Active() != inA {
		t.Fatal("first press should activate a")
	}
	m.dispatch(pressEvent(250, 50))
	if m.Active() != inA {
		t.Error("second press while active should be ignored")
	}
	if inB.IsInteracting() {
		t.Error("b should stay idle")
	}
	m.dispatch(releaseEvent(50, 50))
}

func TestDispatchMovesFollowActive(t *testing.T) {
	m, _, in := newTestRig(Config{})

	m.dispatch(pressEvent(50, 50))
	// The pointer leaves the node entirely; the active instance still
	// receives the move.
	m.dispatch(moveEvent(500, 400))
	if !in.IsDragging() {
		t.Fatal("active instance should receive off-node moves")
	}
	if in.Offset() != (Vec2{X: 450, Y: 350}) {
		t.Errorf("Offset = %v, want (450, 350)", in.Offset())
	}
	m.dispatch(releaseEvent(500, 400))
	if m.Active() != nil {
		t.Error("release should clear the active instance")
	}
}

func TestDispatchWithoutActiveIsNoOp(t *testing.T) {
	m, _, in := newTestRig(Config{})

	m.dispatch(moveEvent(50, 50))
	m.dispatch(releaseEvent(50, 50))
	if in.IsInteracting() {
		t.Error("moves and releases without an active instance do nothing")
	}
}

func TestDispatchStampsZeroTime(t *testing.T) {
	m, _, in := newTestRig(Config{})

	m.dispatch(pressEvent(50, 50))
	if in.pressTime.IsZero() {
		t.Error("dispatch should stamp a zero event time")
	}
	m.dispatch(releaseEvent(50, 50))
}

func TestOutOfTreeInstanceStaysDormant(t *testing.T) {
	root := NewNode("root", 640, 480)
	m := NewManager(root)
	floating := NewNode("floating", 100, 100)
	in := m.Attach(floating, Config{})

	m.dispatch(pressEvent(50, 50))
	if m.Active() != nil || in.IsInteracting() {
		t.Error("an instance outside the root subtree cannot be hit")
	}

	// Joining the tree makes it reachable.
	root.AddChild(floating)
	m.dispatch(pressEvent(50, 50))
	if m.Active() != in {
		t.Error("instance should activate once its node joins the tree")
	}
	m.dispatch(releaseEvent(50, 50))
}

// --- Manager-level handlers ---

func TestManagerHandlersFire(t *testing.T) {
	m, _, _ := newTestRig(Config{})
	var starts, drags, ends int
	m.OnDragStart(func(DragEvent) { starts++ })
	m.OnDrag(func(DragEvent) { drags++ })
	m.OnDragEnd(func(DragEvent) { ends++ })

	m.dispatch(pressEvent(50, 50))
	m.dispatch(moveEvent(60, 60))
	m.dispatch(moveEvent(70, 70))
	m.dispatch(releaseEvent(70, 70))

	if starts != 1 || drags != 2 || ends != 1 {
		t.Errorf("starts/drags/ends = %d/%d/%d, want 1/2/1", starts, drags, ends)
	}
}

func TestCallbackHandleRemove(t *testing.T) {
	m, _, in := newTestRig(Config{})
	count := 0
	handle := m.OnDragStart(func(DragEvent) { count++ })

	dragOnce(in, 50, 50, 60, 60)
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	handle.Remove()
	dragOnce(in, 50, 50, 60, 60)
	if count != 1 {
		t.Errorf("count = %d, want still 1 after Remove", count)
	}

	// Removing twice is harmless.
	handle.Remove()
}

func TestManagerHandlersFireInOrder(t *testing.T) {
	m, _, in := newTestRig(Config{})
	var order []int
	m.OnDragStart(func(DragEvent) { order = append(order, 1) })
	m.OnDragStart(func(DragEvent) { order = append(order, 2) })

	dragOnce(in, 50, 50, 60, 60)
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v, want [1 2]", order)
	}
}

func TestNilHandlerPanics(t *testing.T) {
	m, _, _ := newTestRig(Config{})
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, got none")
		}
	}()
	m.OnDrag(nil)
}

func TestSinkReceivesDispatchedEvents(t *testing.T) {
	m, _, _ := newTestRig(Config{})
	sink := &recordSink{}
	m.SetSink(sink)

	m.dispatch(pressEvent(50, 50))
	m.dispatch(moveEvent(70, 60))
	m.dispatch(releaseEvent(70, 60))

	kinds := []EventKind{EventDragStart, EventDrag, EventDragEnd}
	if len(sink.events) != len(kinds) {
		t.Fatalf("sink events = %d, want %d", len(sink.events), len(kinds))
	}
	for i, want := range kinds {
		if sink.events[i].Kind != want {
			t.Errorf("event[%d].Kind = %v, want %v", i, sink.events[i].Kind, want)
		}
	}
	if sink.events[1].OffsetX != 20 || sink.events[1].OffsetY != 10 {
		t.Errorf("drag event offset = (%v, %v), want (20, 10)",
			sink.events[1].OffsetX, sink.events[1].OffsetY)
	}
}

// --- Synthetic input ---

func TestInjectDrainsOnePerUpdate(t *testing.T) {
	m, _, in := newTestRig(Config{})
	m.InjectPress(50, 50)
	m.InjectMove(80, 70)
	m.InjectRelease(80, 70)

	if m.PendingInjected() != 3 {
		t.Fatalf("PendingInjected = %d, want 3", m.PendingInjected())
	}
	m.Update()
	if m.PendingInjected() != 2 || !in.IsInteracting() {
		t.Fatal("first update should dispatch the press only")
	}
	m.Update()
	if m.PendingInjected() != 1 || !in.IsDragging() {
		t.Fatal("second update should dispatch the move")
	}
	m.Update()
	if m.PendingInjected() != 0 || in.IsInteracting() {
		t.Fatal("third update should dispatch the release")
	}
	if in.Offset() != (Vec2{X: 30, Y: 20}) {
		t.Errorf("Offset = %v, want (30, 20)", in.Offset())
	}
}

func TestInjectDragQueuesFullGesture(t *testing.T) {
	m, _, _ := newTestRig(Config{})
	m.InjectDrag(50, 50, 150, 130, 5)
	if m.PendingInjected() != 7 {
		t.Errorf("PendingInjected = %d, want press + 5 moves + release = 7", m.PendingInjected())
	}
}

func TestInjectDragCompletesGesture(t *testing.T) {
	m, _, in := newTestRig(Config{})
	var starts, drags, ends int
	m.OnDragStart(func(DragEvent) { starts++ })
	m.OnDrag(func(DragEvent) { drags++ })
	m.OnDragEnd(func(DragEvent) { ends++ })

	m.InjectDrag(50, 50, 150, 130, 4)
	for m.PendingInjected() > 0 {
		m.Update()
	}

	if in.Offset() != (Vec2{X: 100, Y: 80}) {
		t.Errorf("Offset = %v, want (100, 80)", in.Offset())
	}
	if starts != 1 || drags != 4 || ends != 1 {
		t.Errorf("starts/drags/ends = %d/%d/%d, want 1/4/1", starts, drags, ends)
	}
}

func TestInjectDragSingleStep(t *testing.T) {
	m, _, in := newTestRig(Config{})
	m.InjectDrag(50, 50, 90, 50, 1)
	for m.PendingInjected() > 0 {
		m.Update()
	}
	if in.Offset() != (Vec2{X: 40}) {
		t.Errorf("Offset = %v, want (40, 0)", in.Offset())
	}
}

func TestInjectDragZeroStepsPanics(t *testing.T) {
	m, _, _ := newTestRig(Config{})
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, got none")
		}
	}()
	m.InjectDrag(0, 0, 10, 10, 0)
}

// --- Source polling ---

func TestSourceDrivenGesture(t *testing.T) {
	m, _, in := newTestRig(Config{})
	m.SetSource(&scriptSource{frames: [][]PointerEvent{
		{pressEvent(50, 50)},
		{moveEvent(80, 70)},
		{releaseEvent(80, 70)},
	}})

	for i := 0; i < 3; i++ {
		m.Update()
	}
	if in.Offset() != (Vec2{X: 30, Y: 20}) {
		t.Errorf("Offset = %v, want (30, 20)", in.Offset())
	}
	if in.IsInteracting() {
		t.Error("gesture should be finished")
	}
}

func TestSourceBatchDispatchedSameFrame(t *testing.T) {
	m, _, in := newTestRig(Config{})
	m.SetSource(&scriptSource{frames: [][]PointerEvent{
		{pressEvent(50, 50), moveEvent(90, 50), releaseEvent(90, 50)},
	}})

	m.Update()
	if in.Offset() != (Vec2{X: 40}) {
		t.Errorf("Offset = %v, want (40, 0) after one frame", in.Offset())
	}
}

func TestInjectedDrainsBeforeSource(t *testing.T) {
	m, _, in := newTestRig(Config{})
	m.SetSource(&scriptSource{frames: [][]PointerEvent{
		{moveEvent(90, 70)},
	}})
	m.InjectPress(50, 50)

	// One update: the injected press lands first, then the polled move
	// rides the already-started interaction.
	m.Update()
	if in.Offset() != (Vec2{X: 40, Y: 20}) {
		t.Errorf("Offset = %v, want (40, 20)", in.Offset())
	}
	m.dispatch(releaseEvent(90, 70))
}

func TestUpdateWithoutInputIsNoOp(t *testing.T) {
	m, _, in := newTestRig(Config{})
	m.Update()
	m.SetSource(nil)
	m.Update()
	if in.IsInteracting() {
		t.Error("updates without input should change nothing")
	}
}
