package arbor

// --- ID counter ---

// nodeIDCounter is a plain counter (no atomic; arbor is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is the scene graph element. A single flat struct is used for all node
// types; Type selects whether the node paints anything itself.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Type NodeType

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local). Call MarkDirty after setting these directly.
	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	// Self size for NodeTypeRect. Call MarkDirty after setting directly.
	Width, Height float64

	// Computed during Display.UpdateDisplay.
	worldTransform [6]float64
	worldAlpha     float64
	transformDirty bool

	// Appearance
	Color   Color
	Alpha   float64
	Visible bool

	// LayerSplit puts this node's subtree into blocks of its own, separate
	// from the content rendered before and after it.
	LayerSplit bool

	// Metadata
	UserData any

	// preventFit marks this node (and therefore its subtree) as unsuitable
	// for tight-bounds surfaces.
	preventFit bool

	// Cached local bounds (self plus visible descendants, local frame).
	localBounds Rect
	boundsDirty bool

	boundsChanged      Emitter[*Node]
	transformChanged   Emitter[*Node]
	structureChanged   Emitter[*Node]
	fittabilityChanged Emitter[bool]

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
	n.transformDirty = true
	n.boundsDirty = true
}

// NewContainer creates a container node with no visual representation.
func NewContainer(name string) *Node {
	n := &Node{Name: name, Type: NodeTypeContainer}
	nodeDefaults(n)
	return n
}

// NewRect creates a node that paints a solid w x h rectangle at its local
// origin.
func NewRect(name string, w, h float64, c Color) *Node {
	n := &Node{Name: name, Type: NodeTypeRect, Width: w, Height: h}
	nodeDefaults(n)
	n.Color = c
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.AddChildAt(child, len(n.children))
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("arbor: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("arbor: adding child would create a cycle")
	}
	if child.Parent != nil {
		old := child.Parent
		old.removeChildByPtr(child)
		child.Parent = nil
		old.childrenChanged()
		if old == n && index > len(n.children) {
			index = len(n.children)
		}
	}
	if index < 0 || index > len(n.children) {
		panic("arbor: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markSubtreeDirty(child)
	n.childrenChanged()
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
	}
	if child.Parent != n {
		panic("arbor: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
	n.childrenChanged()
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("arbor: child index out of range")
	}
	child := n.children[index]
	n.RemoveChild(child)
	return child
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
	if len(n.children) == 0 {
		return
	}
	for i, child := range n.children {
		child.Parent = nil
		markSubtreeDirty(child)
		n.children[i] = nil
	}
	n.children = n.children[:0]
	n.childrenChanged()
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// IndexOfChild returns the index of child among n's children, or -1.
func (n *Node) IndexOfChild(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("arbor: child's parent is not this node")
	}
	nc := len(n.children)
	if index < 0 || index >= nc {
		panic("arbor: child index out of range")
	}
	oldIndex := n.IndexOfChild(child)
	if oldIndex == index {
		return
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
	n.childrenChanged()
}

// --- Visibility and fittability ---

// SetVisible shows or hides the node. Hidden nodes produce no drawables and do
// not contribute to their parent's bounds.
func (n *Node) SetVisible(visible bool) {
	if n.Visible == visible {
		return
	}
	n.Visible = visible
	if n.Parent != nil {
		n.Parent.invalidateBounds()
		n.Parent.structureChanged.Emit(n.Parent)
	}
}

// SetPreventFit marks the node's content as unsuitable for tight-bounds
// surfaces. Blocks containing it (or any descendant) fall back to full-display
// sizing when they are allowed to.
func (n *Node) SetPreventFit(prevent bool) {
	if n.preventFit == prevent {
		return
	}
	n.preventFit = prevent
	n.fittabilityChanged.Emit(!prevent)
}

// PreventFit reports whether the node is marked unfittable.
func (n *Node) PreventFit() bool {
	return n.preventFit
}

// --- Bounds ---

// SelfBounds returns the bounds of what this node paints itself, in its local
// frame. Containers paint nothing.
func (n *Node) SelfBounds() Rect {
	if n.Type == NodeTypeRect {
		return RectXYWH(0, 0, n.Width, n.Height)
	}
	return EmptyRect
}

// LocalBounds returns the bounds of the node and its visible descendants in
// the node's local frame. The result is cached until something below the node
// changes.
func (n *Node) LocalBounds() Rect {
	if !n.boundsDirty {
		return n.localBounds
	}
	b := n.SelfBounds()
	for _, c := range n.children {
		if !c.Visible {
			continue
		}
		b = b.Union(c.LocalBounds().Transformed(c.Matrix()))
	}
	n.localBounds = b
	n.boundsDirty = false
	return b
}

// OnBoundsChanged registers fn to run when the node's local bounds may have
// changed. Notifications are coalesced until LocalBounds is next read.
func (n *Node) OnBoundsChanged(fn func(*Node)) Subscription {
	return n.boundsChanged.On(fn)
}

// OnTransformChanged registers fn to run whenever the node's local transform
// or size is marked dirty.
func (n *Node) OnTransformChanged(fn func(*Node)) Subscription {
	return n.transformChanged.On(fn)
}

// OnStructureChanged registers fn to run when the node's child list or a
// child's visibility changes.
func (n *Node) OnStructureChanged(fn func(*Node)) Subscription {
	return n.structureChanged.On(fn)
}

// OnFittabilityChanged registers fn to run when SetPreventFit flips. The
// argument is the new self-fittable state.
func (n *Node) OnFittabilityChanged(fn func(bool)) Subscription {
	return n.fittabilityChanged.On(fn)
}

// invalidateBounds marks n and its ancestors as needing a bounds recompute,
// notifying listeners of each node that was clean. A dirty node's ancestors
// are already dirty and notified, so the walk stops there.
func (n *Node) invalidateBounds() {
	for p := n; p != nil; p = p.Parent {
		if p.boundsDirty {
			return
		}
		p.boundsDirty = true
		p.boundsChanged.Emit(p)
	}
}

// childrenChanged runs after any edit of n.children.
func (n *Node) childrenChanged() {
	n.invalidateBounds()
	n.structureChanged.Emit(n)
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants.
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
	n.UserData = nil
	n.boundsChanged.clear()
	n.transformChanged.clear()
	n.structureChanged.clear()
	n.fittabilityChanged.clear()
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

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
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

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
