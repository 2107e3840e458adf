package arbor

import "github.com/cockroachdb/redact"

// Trail is a path from a root node down to a descendant, together with the
// child index taken at each step. indices[i] is the index of nodes[i+1] among
// the children of nodes[i].
//
// Trail is immutable: every method returns a new value and never writes to
// the backing arrays of the receiver, so trails can be copied and shared
// freely. Use TrailBuilder to construct or walk trails step by step.
type Trail struct {
	nodes   []*Node
	indices []int
}

// NewTrail builds a trail through the given nodes, which must form a parent
// chain starting at nodes[0]. Indices are computed from the current tree.
func NewTrail(nodes ...*Node) Trail {
	t := Trail{nodes: append([]*Node(nil), nodes...)}
	return t.Reindexed()
}

// TrailTo builds the trail from the root of n's tree down to n.
func TrailTo(n *Node) Trail {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	nodes := make([]*Node, depth)
	for p := n; p != nil; p = p.Parent {
		depth--
		nodes[depth] = p
	}
	return Trail{nodes: nodes}.Reindexed()
}

// Len returns the number of nodes in the trail.
func (t Trail) Len() int { return len(t.nodes) }

// IsEmpty reports whether the trail has no nodes.
func (t Trail) IsEmpty() bool { return len(t.nodes) == 0 }

// Node returns the i-th node from the root.
func (t Trail) Node(i int) *Node { return t.nodes[i] }

// RootNode returns the first node, or nil for an empty trail.
func (t Trail) RootNode() *Node {
	if len(t.nodes) == 0 {
		return nil
	}
	return t.nodes[0]
}

// LastNode returns the node the trail leads to, or nil for an empty trail.
func (t Trail) LastNode() *Node {
	if len(t.nodes) == 0 {
		return nil
	}
	return t.nodes[len(t.nodes)-1]
}

// Index returns the child index of Node(i+1) under Node(i).
func (t Trail) Index(i int) int { return t.indices[i] }

// Indices returns a copy of the child indices.
func (t Trail) Indices() []int { return append([]int(nil), t.indices...) }

// Nodes returns a copy of the node sequence.
func (t Trail) Nodes() []*Node { return append([]*Node(nil), t.nodes...) }

// Parent returns the trail without its last step. The parent of a
// single-node trail is empty.
func (t Trail) Parent() Trail {
	switch len(t.nodes) {
	case 0, 1:
		return Trail{}
	}
	n := len(t.nodes) - 1
	return Trail{nodes: t.nodes[:n:n], indices: t.indices[: n-1 : n-1]}
}

// Child returns the trail extended by the index-th child of the last node.
func (t Trail) Child(index int) Trail {
	last := t.LastNode()
	return t.extend(last.children[index], index)
}

// extend appends one step. The three-index slices on the receiver force the
// appends to copy, so the receiver's arrays are never written.
func (t Trail) extend(child *Node, index int) Trail {
	return Trail{
		nodes:   append(t.nodes[:len(t.nodes):len(t.nodes)], child),
		indices: append(t.indices[:len(t.indices):len(t.indices)], index),
	}
}

// Copy returns a trail with its own backing arrays.
func (t Trail) Copy() Trail {
	return Trail{
		nodes:   append([]*Node(nil), t.nodes...),
		indices: append([]int(nil), t.indices...),
	}
}

// Reindexed recomputes child indices from the current tree, for use after
// structural edits reorder siblings. Nodes that are no longer children of
// their predecessor get index -1, which makes IsValid false.
func (t Trail) Reindexed() Trail {
	if len(t.nodes) == 0 {
		return Trail{}
	}
	indices := make([]int, len(t.nodes)-1)
	for i := 1; i < len(t.nodes); i++ {
		indices[i-1] = t.nodes[i-1].IndexOfChild(t.nodes[i])
	}
	return Trail{nodes: t.nodes, indices: indices}
}

// IsValid reports whether every step of the trail matches the current tree.
func (t Trail) IsValid() bool {
	if len(t.indices) != max(len(t.nodes)-1, 0) {
		return false
	}
	for i, idx := range t.indices {
		p := t.nodes[i]
		if idx < 0 || idx >= len(p.children) || p.children[idx] != t.nodes[i+1] {
			return false
		}
	}
	return true
}

// Compare orders trails of the same tree in render order (pre-order): -1 if t
// renders before other, 1 if after, 0 if they are the same path. An ancestor
// renders before its descendants. Panics if the roots differ.
func (t Trail) Compare(other Trail) int {
	if t.RootNode() != other.RootNode() {
		panic(outOfOrderf("comparing trails with different roots"))
	}
	n := min(len(t.indices), len(other.indices))
	for i := 0; i < n; i++ {
		a, b := t.indices[i], other.indices[i]
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	switch {
	case len(t.nodes) < len(other.nodes):
		return -1
	case len(t.nodes) > len(other.nodes):
		return 1
	default:
		return 0
	}
}

// Equals reports whether both trails pass through the same nodes.
func (t Trail) Equals(other Trail) bool {
	if len(t.nodes) != len(other.nodes) {
		return false
	}
	for i := range t.nodes {
		if t.nodes[i] != other.nodes[i] {
			return false
		}
	}
	return true
}

// IsExtensionOf reports whether other's nodes are a prefix of t's nodes. With
// allowSame false the prefix must be strict.
func (t Trail) IsExtensionOf(other Trail, allowSame bool) bool {
	if len(t.nodes) < len(other.nodes) || (!allowSame && len(t.nodes) == len(other.nodes)) {
		return false
	}
	for i := range other.nodes {
		if t.nodes[i] != other.nodes[i] {
			return false
		}
	}
	return true
}

// Next returns the trail rendered immediately after t: its first child, or
// else the next sibling of the nearest ancestor (or t itself) that has one.
// ok is false when t is the last trail in render order.
func (t Trail) Next() (next Trail, ok bool) {
	if t.IsEmpty() {
		return Trail{}, false
	}
	if last := t.LastNode(); len(last.children) > 0 {
		return t.Child(0), true
	}
	for cur := t; cur.Len() > 1; cur = cur.Parent() {
		idx := cur.indices[len(cur.indices)-1]
		parent := cur.Parent()
		if idx+1 < len(parent.LastNode().children) {
			return parent.Child(idx + 1), true
		}
	}
	return Trail{}, false
}

// Previous returns the trail rendered immediately before t: the deepest last
// descendant of the previous sibling, or else the parent. ok is false for the
// root trail.
func (t Trail) Previous() (prev Trail, ok bool) {
	if t.Len() <= 1 {
		return Trail{}, false
	}
	idx := t.indices[len(t.indices)-1]
	parent := t.Parent()
	if idx == 0 {
		return parent, true
	}
	b := NewTrailBuilder(parent)
	b.Push(parent.LastNode().children[idx-1], idx-1)
	for last := b.LastNode(); len(last.children) > 0; last = b.LastNode() {
		b.Push(last.children[len(last.children)-1], len(last.children)-1)
	}
	return b.Trail(), true
}

// LocalToGlobalMatrix composes the local matrices of every node on the trail,
// mapping the last node's frame into the frame above the root.
func (t Trail) LocalToGlobalMatrix() [6]float64 {
	m := identityTransform
	for _, n := range t.nodes {
		m = multiplyAffine(m, n.Matrix())
	}
	return m
}

// String implements fmt.Stringer.
func (t Trail) String() string {
	return redact.StringWithoutMarkers(t)
}

// SafeFormat implements redact.SafeFormatter. Node names are user data; child
// indices are safe.
func (t Trail) SafeFormat(w redact.SafePrinter, _ rune) {
	if t.IsEmpty() {
		w.SafeString("<empty>")
		return
	}
	w.Print(t.nodes[0].Name)
	for i, idx := range t.indices {
		w.Printf("/%d:", redact.Safe(idx))
		w.Print(t.nodes[i+1].Name)
	}
}

// TrailBuilder is the mutable counterpart of Trail: it pushes and pops steps
// in place. A builder is owned by one caller; Trail snapshots it.
type TrailBuilder struct {
	nodes   []*Node
	indices []int
}

// NewTrailBuilder starts a builder from a copy of t.
func NewTrailBuilder(t Trail) *TrailBuilder {
	c := t.Copy()
	return &TrailBuilder{nodes: c.nodes, indices: c.indices}
}

// Len returns the number of nodes.
func (b *TrailBuilder) Len() int { return len(b.nodes) }

// LastNode returns the deepest node, or nil when empty.
func (b *TrailBuilder) LastNode() *Node {
	if len(b.nodes) == 0 {
		return nil
	}
	return b.nodes[len(b.nodes)-1]
}

// LastIndex returns the child index of the deepest node, or -1 at the root.
func (b *TrailBuilder) LastIndex() int {
	if len(b.indices) == 0 {
		return -1
	}
	return b.indices[len(b.indices)-1]
}

// SetRoot resets the builder to the single node root.
func (b *TrailBuilder) SetRoot(root *Node) {
	b.nodes = append(b.nodes[:0], root)
	b.indices = b.indices[:0]
}

// Push descends to child, which is the index-th child of the last node.
func (b *TrailBuilder) Push(child *Node, index int) {
	b.nodes = append(b.nodes, child)
	b.indices = append(b.indices, index)
}

// SetLast replaces the deepest step with its sibling child at index. It
// panics at the root.
func (b *TrailBuilder) SetLast(child *Node, index int) {
	if len(b.indices) == 0 {
		panic(invalidStatef("SetLast on a root-only trail builder"))
	}
	b.nodes[len(b.nodes)-1] = child
	b.indices[len(b.indices)-1] = index
}

// Pop removes the deepest step.
func (b *TrailBuilder) Pop() {
	b.nodes[len(b.nodes)-1] = nil
	b.nodes = b.nodes[:len(b.nodes)-1]
	if len(b.indices) > 0 {
		b.indices = b.indices[:len(b.indices)-1]
	}
}

// Trail returns an immutable snapshot of the builder.
func (b *TrailBuilder) Trail() Trail {
	return Trail{nodes: b.nodes, indices: b.indices}.Copy()
}
