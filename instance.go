package arbor

// Instance is the display's tree-position-aware wrapper around a Node. Each
// node of a displayed tree has exactly one Instance, which owns the node's
// Trail from the display root and its fittability state.
//
// Instances are owned by the instance tree that built them. Other holders
// (blocks caching a common ancestor) treat them as lookups and must check
// IsDisposed before use.
type Instance struct {
	node     *Node
	parent   *Instance
	children []*Instance
	trail    Trail

	isDisplayRoot bool

	fittability Fittability
	drawable    *Drawable

	fitSub   Subscription
	disposed bool
}

// Node returns the wrapped node.
func (i *Instance) Node() *Node { return i.node }

// Parent returns the parent instance, nil for the display root.
func (i *Instance) Parent() *Instance { return i.parent }

// Children returns the child instances in node order. The returned slice MUST
// NOT be mutated by the caller.
func (i *Instance) Children() []*Instance { return i.children }

// Trail returns the trail from the display root to this instance's node.
func (i *Instance) Trail() Trail { return i.trail }

// IsDisplayRoot reports whether this instance wraps the display's root node.
func (i *Instance) IsDisplayRoot() bool { return i.isDisplayRoot }

// Fittability returns the instance's fittability state.
func (i *Instance) Fittability() *Fittability { return &i.fittability }

// Drawable returns the instance's own paint unit, nil for containers.
func (i *Instance) Drawable() *Drawable { return i.drawable }

// IsDisposed reports whether the instance's node left the displayed tree.
func (i *Instance) IsDisposed() bool { return i.disposed }

// MatrixTo returns the transform from this instance's local frame to the
// local frame of ancestor: the product of node matrices from this instance up
// to, but not including, ancestor. A nil or unrelated ancestor yields the
// transform to the display root's parent frame.
func (i *Instance) MatrixTo(ancestor *Instance) [6]float64 {
	m := identityTransform
	for a := i; a != nil && a != ancestor; a = a.parent {
		m = multiplyAffine(a.node.Matrix(), m)
	}
	return m
}

// Fittability tracks whether an instance's content may be drawn into a
// surface fitted to tight bounds.
type Fittability struct {
	instance *Instance

	selfFittable      bool
	ancestorsFittable *Property[bool]

	// subtreeUnfittableCount counts instances in the subtree, this one
	// included, whose node prevents fitting.
	subtreeUnfittableCount int
	subtreeChanged         Emitter[int]
}

// SelfFittable reports whether the instance's own node allows fitting.
func (f *Fittability) SelfFittable() bool { return f.selfFittable }

// AncestorsFittable reports whether this node and all of its ancestors allow
// fitting. Drawables of the instance follow this value.
func (f *Fittability) AncestorsFittable() bool { return f.ancestorsFittable.Get() }

// SubtreeUnfittableCount returns the number of unfittable instances in the
// subtree rooted here.
func (f *Fittability) SubtreeUnfittableCount() int { return f.subtreeUnfittableCount }

// OnSubtreeFittabilityChange registers fn to run when the subtree count moves
// between zero and non-zero. fn receives the new count.
func (f *Fittability) OnSubtreeFittabilityChange(fn func(int)) Subscription {
	return f.subtreeChanged.On(fn)
}

// adjust applies delta to the subtree count, notifying on zero edges.
func (f *Fittability) adjust(delta int) {
	before := f.subtreeUnfittableCount
	f.subtreeUnfittableCount += delta
	if (before == 0) != (f.subtreeUnfittableCount == 0) {
		f.subtreeChanged.Emit(f.subtreeUnfittableCount)
	}
}

// onSelfFittableChange handles a PreventFit flip on the instance's node.
func (i *Instance) onSelfFittableChange(fittable bool) {
	if i.fittability.selfFittable == fittable {
		return
	}
	i.fittability.selfFittable = fittable
	delta := 1
	if fittable {
		delta = -1
	}
	for a := i; a != nil; a = a.parent {
		a.fittability.adjust(delta)
	}
	parentOK := i.parent == nil || i.parent.fittability.AncestorsFittable()
	i.refreshAncestorsFittable(parentOK)
}

func (i *Instance) refreshAncestorsFittable(parentOK bool) {
	ok := parentOK && i.fittability.selfFittable
	i.fittability.ancestorsFittable.Set(ok)
	for _, c := range i.children {
		c.refreshAncestorsFittable(ok)
	}
}

// recomputeFittability rebuilds counts for the subtree from scratch, as done
// after the tree is re-synced. Listeners see the same zero-edge notifications
// they would from incremental updates.
func (i *Instance) recomputeFittability(parentOK bool) int {
	ok := parentOK && i.fittability.selfFittable
	i.fittability.ancestorsFittable.Set(ok)
	count := 0
	if !i.fittability.selfFittable {
		count = 1
	}
	for _, c := range i.children {
		count += c.recomputeFittability(ok)
	}
	i.fittability.adjust(count - i.fittability.subtreeUnfittableCount)
	return count
}

func newInstance(n *Node, parent *Instance) *Instance {
	inst := &Instance{node: n, parent: parent}
	inst.fittability = Fittability{
		instance:          inst,
		selfFittable:      !n.preventFit,
		ancestorsFittable: NewProperty(true),
	}
	inst.fitSub = n.OnFittabilityChanged(inst.onSelfFittableChange)
	if n.Type == NodeTypeRect {
		inst.drawable = newDrawable(inst)
	}
	return inst
}

func (i *Instance) dispose() {
	if i.disposed {
		return
	}
	i.disposed = true
	i.fitSub.Unsubscribe()
	if i.drawable != nil {
		i.drawable.dispose()
	}
	i.fittability.subtreeChanged.clear()
	i.children = nil
	i.parent = nil
}

// instanceTree mirrors a node tree with persistent instances. Instances are
// reused across syncs for nodes that stay in the tree.
type instanceTree struct {
	root      *Instance
	instances map[*Node]*Instance
	builder   TrailBuilder

	// onStructure runs when any node in the tree reports a structural change.
	onStructure  func()
	structureSub map[*Node]Subscription
}

func newInstanceTree(root *Node, onStructure func()) *instanceTree {
	t := &instanceTree{
		instances:    make(map[*Node]*Instance),
		structureSub: make(map[*Node]Subscription),
		onStructure:  onStructure,
	}
	t.sync(root)
	return t
}

// sync brings the instance tree in line with the node tree rooted at root:
// reusing instances, recomputing trails, creating instances for new nodes and
// disposing those of removed nodes. It returns the disposed instances.
func (t *instanceTree) sync(root *Node) []*Instance {
	seen := make(map[*Node]struct{}, len(t.instances))
	t.builder.SetRoot(root)
	t.root = t.syncNode(root, nil, seen)
	t.root.isDisplayRoot = true

	var removed []*Instance
	for n, inst := range t.instances {
		if _, ok := seen[n]; ok {
			continue
		}
		removed = append(removed, inst)
		delete(t.instances, n)
		sub := t.structureSub[n]
		sub.Unsubscribe()
		delete(t.structureSub, n)
	}
	for _, inst := range removed {
		inst.dispose()
	}
	t.root.recomputeFittability(true)
	return removed
}

func (t *instanceTree) syncNode(n *Node, parent *Instance, seen map[*Node]struct{}) *Instance {
	seen[n] = struct{}{}
	inst, ok := t.instances[n]
	if !ok {
		inst = newInstance(n, parent)
		t.instances[n] = inst
		if t.onStructure != nil {
			t.structureSub[n] = n.OnStructureChanged(func(*Node) { t.onStructure() })
		}
	}
	inst.parent = parent
	inst.isDisplayRoot = false
	inst.trail = t.builder.Trail()

	children := inst.children[:0]
	if len(n.children) > 0 {
		t.builder.Push(n.children[0], 0)
		for idx, c := range n.children {
			t.builder.SetLast(c, idx)
			children = append(children, t.syncNode(c, inst, seen))
		}
		t.builder.Pop()
	}
	for k := len(children); k < len(inst.children); k++ {
		inst.children[k] = nil
	}
	inst.children = children
	return inst
}

// lookup returns the instance for n, or nil if n is not in the tree.
func (t *instanceTree) lookup(n *Node) *Instance {
	return t.instances[n]
}

func (t *instanceTree) dispose() {
	for n, inst := range t.instances {
		sub := t.structureSub[n]
		sub.Unsubscribe()
		inst.dispose()
	}
	t.instances = nil
	t.structureSub = nil
	t.root = nil
}
