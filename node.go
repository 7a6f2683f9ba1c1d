package tether

// --- ID counter ---

// nodeIDCounter is a plain counter (no atomic — tether is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the managed scene element. A single flat struct is used for every
// node so the engine can read geometry and write visual offsets without
// interface dispatch on the hot path.
//
// X and Y are the layout position relative to the parent. TranslateX and
// TranslateY are the visual offset layered on top of the layout position —
// the default transform plugin writes the committed drag offset here, leaving
// X and Y untouched. Scaling is about the node's top-left origin and
// compounds down the tree.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Layout (relative to parent)
	X, Y          float64
	Width, Height float64

	// Rendered scale. 1 means unscaled; the drag engine divides pointer
	// deltas by the compound scale so offsets stay in layout units.
	ScaleX, ScaleY float64

	// Visual offset applied on top of the layout position.
	TranslateX, TranslateY float64

	// Visible controls hit testing: invisible subtrees are never hit.
	Visible bool

	// Metadata
	UserData any

	// Classes and attributes mirror the observable surface drag plugins
	// maintain (managed/dragging classes, state attribute). Lazily
	// allocated; nil maps cost nothing on nodes that never use them.
	classes map[string]struct{}
	attrs   map[string]string

	// Per-node drag notification callbacks (nil by default; zero cost
	// when unused).
	OnDragStart func(DragEvent)
	OnDrag      func(DragEvent)
	OnDragEnd   func(DragEvent)

	disposed bool
}

// NewNode creates a node with the given name and size. Zero-size nodes act
// as pure containers: they are never hit directly but their children are.
func NewNode(name string, width, height float64) *Node {
	n := &Node{
		Name:   name,
		Width:  width,
		Height: height,
	}
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Visible = true
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children. Later children sit on top
// of earlier ones for hit testing. If child already has a parent, it is
// removed from that parent first. Panics if child is nil or child is an
// ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("tether: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("tether: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index in the stacking order.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("tether: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("tether: adding child would create a cycle")
	}
	if index < 0 || index > len(n.children) {
		panic("tether: child index out of range")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("tether: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for _, child := range n.children {
		child.Parent = nil
	}
	n.children = n.children[:0]
}

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// --- Classes ---

// AddClass adds a class to the node. Adding an existing class is a no-op.
func (n *Node) AddClass(class string) {
	if n.classes == nil {
		n.classes = make(map[string]struct{})
	}
	n.classes[class] = struct{}{}
}

// RemoveClass removes a class from the node. Removing an absent class is a
// no-op.
func (n *Node) RemoveClass(class string) {
	delete(n.classes, class)
}

// HasClass reports whether the node carries the given class.
func (n *Node) HasClass(class string) bool {
	_, ok := n.classes[class]
	return ok
}

// --- Attributes ---

// SetAttr sets a string attribute on the node.
func (n *Node) SetAttr(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
}

// Attr returns the attribute value, or "" if the key is absent.
func (n *Node) Attr(key string) string {
	return n.attrs[key]
}

// HasAttr reports whether the attribute is present, distinguishing an empty
// value from an absent key.
func (n *Node) HasAttr(key string) bool {
	_, ok := n.attrs[key]
	return ok
}

// RemoveAttr deletes an attribute from the node.
func (n *Node) RemoveAttr(key string) {
	delete(n.attrs, key)
}

// --- World geometry ---

// WorldScale returns the compound scale of this node: the product of its own
// scale and every ancestor's.
func (n *Node) WorldScale() (sx, sy float64) {
	sx, sy = 1, 1
	for p := n; p != nil; p = p.Parent {
		sx *= p.ScaleX
		sy *= p.ScaleY
	}
	return sx, sy
}

// worldOrigin returns the world position of the node's top-left corner,
// including translate offsets. A node's local position is scaled by the
// ancestors' compound scale, not its own.
func (n *Node) worldOrigin() (x, y float64) {
	if n.Parent == nil {
		return n.X + n.TranslateX, n.Y + n.TranslateY
	}
	px, py := n.Parent.worldOrigin()
	psx, psy := n.Parent.WorldScale()
	return px + (n.X+n.TranslateX)*psx, py + (n.Y+n.TranslateY)*psy
}

// WorldRect returns the node's rectangle in world coordinates, including
// translate offsets and compound scale.
func (n *Node) WorldRect() Rect {
	x, y := n.worldOrigin()
	sx, sy := n.WorldScale()
	return Rect{X: x, Y: y, Width: n.Width * sx, Height: n.Height * sy}
}

// SetTranslate sets the node's visual offset. The default transform plugin
// calls this with the committed drag offset; custom renderers may read the
// fields directly.
func (n *Node) SetTranslate(x, y float64) {
	n.TranslateX = x
	n.TranslateY = y
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all descendants. Dispose does not detach the node
// from a Manager — call Instance.Destroy first, or the instance leaks.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.classes = nil
	n.attrs = nil
	n.UserData = nil
	n.OnDragStart = nil
	n.OnDrag = nil
	n.OnDragEnd = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing
// child.Parent. Uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
