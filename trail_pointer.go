package arbor

import "github.com/cockroachdb/redact"

// TrailPointer denotes a gap in the tree: the position immediately before or
// immediately after the last node of a trail. Pointers have two total orders:
//
//   - render order, where before(N) is the same gap as after(previous
//     rendered node), and
//   - nested order, where every node is entered (before) and later exited
//     (after), with its whole subtree in between.
//
// A pointer whose trail is absent is inactive. Walking off either end of the
// tree with NestedForwards or NestedBackwards makes a pointer inactive.
//
// The zero value is an inactive pointer.
type TrailPointer struct {
	trail    Trail
	active   bool
	isBefore bool
}

// NewTrailPointer returns the gap before (isBefore) or after trail's last
// node. An empty trail yields an inactive pointer.
func NewTrailPointer(trail Trail, isBefore bool) TrailPointer {
	return TrailPointer{trail: trail, active: !trail.IsEmpty(), isBefore: isBefore}
}

// BeforePointer returns the gap before trail's last node.
func BeforePointer(trail Trail) TrailPointer { return NewTrailPointer(trail, true) }

// AfterPointer returns the gap after trail's last node.
func AfterPointer(trail Trail) TrailPointer { return NewTrailPointer(trail, false) }

// Trail returns the pointer's trail; empty when inactive.
func (p TrailPointer) Trail() Trail { return p.trail }

// IsBefore reports whether the pointer is before its node.
func (p TrailPointer) IsBefore() bool { return p.isBefore }

// IsAfter reports whether the pointer is after its node. Always !IsBefore.
func (p TrailPointer) IsAfter() bool { return !p.isBefore }

// HasTrail reports whether the pointer still refers to a trail.
func (p TrailPointer) HasTrail() bool { return p.active }

// IsActive is an alias for HasTrail.
func (p TrailPointer) IsActive() bool { return p.active }

// Copy returns an independent pointer to the same gap. Trails are immutable,
// so the copy can be advanced without affecting p.
func (p TrailPointer) Copy() (TrailPointer, error) {
	if !p.active {
		return TrailPointer{}, invalidStatef("copy of inactive trail pointer")
	}
	return TrailPointer{trail: p.trail, active: true, isBefore: p.isBefore}, nil
}

// SetBefore moves the pointer to the other side of its node when needed.
func (p *TrailPointer) SetBefore(isBefore bool) {
	p.isBefore = isBefore
}

func (p TrailPointer) mustBeActive(op string) {
	if !p.active {
		panic(invalidStatef("%s on inactive trail pointer", redact.Safe(op)))
	}
}

// RenderSwappedPointer returns the same render-order gap expressed against
// the neighboring node: before(N) becomes after(previous rendered node) and
// after(N) becomes before(next rendered node). The result is inactive at the
// very start or end of the tree.
func (p TrailPointer) RenderSwappedPointer() TrailPointer {
	p.mustBeActive("RenderSwappedPointer")
	var (
		t  Trail
		ok bool
	)
	if p.isBefore {
		t, ok = p.trail.Previous()
	} else {
		t, ok = p.trail.Next()
	}
	if !ok {
		return TrailPointer{}
	}
	return NewTrailPointer(t, !p.isBefore)
}

// RenderBeforePointer returns the "before" representative of p's render-order
// gap. It is inactive for the gap after the last rendered node.
func (p TrailPointer) RenderBeforePointer() TrailPointer {
	if p.isBefore {
		p.mustBeActive("RenderBeforePointer")
		return p
	}
	return p.RenderSwappedPointer()
}

// RenderAfterPointer returns the "after" representative of p's render-order
// gap. It is inactive for the gap before the root.
func (p TrailPointer) RenderAfterPointer() TrailPointer {
	if !p.isBefore {
		p.mustBeActive("RenderAfterPointer")
		return p
	}
	return p.RenderSwappedPointer()
}

// CompareRender orders pointers by render order, returning -1, 0 or 1.
func (p TrailPointer) CompareRender(other TrailPointer) int {
	a := p.RenderBeforePointer()
	b := other.RenderBeforePointer()
	switch {
	case a.active && b.active:
		return a.trail.Compare(b.trail)
	case a.active == b.active:
		// Both are the gap after the last rendered node.
		return 0
	case !a.active:
		return 1
	default:
		return -1
	}
}

// CompareNested orders pointers by nested (enter/exit) order, returning -1, 0
// or 1.
func (p TrailPointer) CompareNested(other TrailPointer) int {
	p.mustBeActive("CompareNested")
	other.mustBeActive("CompareNested")

	cmp := p.trail.Compare(other.trail)
	if cmp == 0 {
		switch {
		case p.isBefore == other.isBefore:
			return 0
		case p.isBefore:
			return -1
		default:
			return 1
		}
	}
	// When one trail contains the other, the shorter one's side decides: an
	// ancestor's before precedes its whole subtree and its after follows it.
	if p.trail.IsExtensionOf(other.trail, false) {
		if other.isBefore {
			return 1
		}
		return -1
	}
	if other.trail.IsExtensionOf(p.trail, false) {
		if p.isBefore {
			return -1
		}
		return 1
	}
	// Unrelated trails: sibling position alone decides.
	return cmp
}

// EqualsRender reports whether both pointers denote the same render-order gap.
func (p TrailPointer) EqualsRender(other TrailPointer) bool {
	return p.CompareRender(other) == 0
}

// EqualsNested reports whether both pointers denote the same nested-order gap.
func (p TrailPointer) EqualsNested(other TrailPointer) bool {
	return p.CompareNested(other) == 0
}

// NestedForwards advances p one step of a depth-first enter/exit walk:
//
//	before(T) -> before(first child of T), or after(T) if T has no children
//	after(T)  -> before(next sibling of T), or after(parent of T)
//
// Stepping forwards from after(root) makes p inactive. Returns p.
func (p *TrailPointer) NestedForwards() *TrailPointer {
	p.mustBeActive("NestedForwards")
	if p.isBefore {
		if last := p.trail.LastNode(); len(last.children) > 0 {
			p.trail = p.trail.Child(0)
		} else {
			p.isBefore = false
		}
		return p
	}
	if p.trail.Len() == 1 {
		*p = TrailPointer{}
		return p
	}
	siblingIndex := p.trail.indices[len(p.trail.indices)-1]
	parent := p.trail.Parent()
	if siblingIndex+1 < len(parent.LastNode().children) {
		p.trail = parent.Child(siblingIndex + 1)
		p.isBefore = true
	} else {
		p.trail = parent
	}
	return p
}

// NestedBackwards is the mirror of NestedForwards:
//
//	after(T)  -> after(last child of T), or before(T) if T has no children
//	before(T) -> after(previous sibling of T), or before(parent of T)
//
// Stepping backwards from before(root) makes p inactive. Returns p.
func (p *TrailPointer) NestedBackwards() *TrailPointer {
	p.mustBeActive("NestedBackwards")
	if !p.isBefore {
		if last := p.trail.LastNode(); len(last.children) > 0 {
			p.trail = p.trail.Child(len(last.children) - 1)
		} else {
			p.isBefore = true
		}
		return p
	}
	if p.trail.Len() == 1 {
		*p = TrailPointer{}
		return p
	}
	siblingIndex := p.trail.indices[len(p.trail.indices)-1]
	parent := p.trail.Parent()
	if siblingIndex > 0 {
		p.trail = parent.Child(siblingIndex - 1)
		p.isBefore = false
	} else {
		p.trail = parent
	}
	return p
}

// EachNodeBetween calls visit with the node of every "before" gap from p
// (inclusive) up to other (exclusive), in render order.
func (p TrailPointer) EachNodeBetween(other TrailPointer, visit func(*Node)) error {
	return p.EachTrailBetween(other, func(t Trail) bool {
		visit(t.LastNode())
		return false
	})
}

// EachTrailBetween calls visit with the trail of every "before" gap from p
// (inclusive) up to other (exclusive), in render order. Returning true from
// visit skips the trail's subtree.
func (p TrailPointer) EachTrailBetween(other TrailPointer, visit func(Trail) bool) error {
	return p.DepthFirstUntil(other, func(q TrailPointer) bool {
		if q.isBefore && !q.EqualsNested(other) {
			return visit(q.trail)
		}
		return false
	}, false)
}

// DepthFirstUntil walks forwards in nested order from p to other, calling
// visit on every pointer reached, both endpoints included unless
// excludeEndpoints is set. When visit returns true on a "before" pointer the
// walk jumps to the matching "after" pointer, skipping the subtree; if that
// jump passes other, the walk stops there.
//
// p must not come after other in nested order (and must come strictly
// before it when excludeEndpoints is set), and both must share a root.
// Violations return an error marked ErrOutOfOrder without calling visit.
func (p TrailPointer) DepthFirstUntil(
	other TrailPointer, visit func(TrailPointer) (skipSubtree bool), excludeEndpoints bool,
) error {
	ptr, err := p.Copy()
	if err != nil {
		return err
	}
	if !other.active {
		return invalidStatef("depth-first walk towards inactive trail pointer")
	}
	if p.trail.RootNode() != other.trail.RootNode() {
		return outOfOrderf("depth-first walk between different roots")
	}
	switch cmp := p.CompareNested(other); {
	case cmp > 0:
		return outOfOrderf("depth-first walk from %s past %s", p, other)
	case cmp == 0 && excludeEndpoints:
		return outOfOrderf("depth-first walk with excluded endpoints from %s to itself", p)
	}

	first := true
	for !ptr.EqualsNested(other) {
		skipSubtree := false
		if !first || !excludeEndpoints {
			skipSubtree = visit(ptr)
		}
		first = false

		if skipSubtree && ptr.isBefore {
			ptr.isBefore = false
			if ptr.CompareNested(other) > 0 {
				return nil
			}
		} else {
			ptr.NestedForwards()
			if !ptr.active {
				// Unreachable when the ordering precondition holds.
				return invalidStatef("depth-first walk ran off the end of the tree")
			}
		}
	}
	if !excludeEndpoints {
		visit(ptr)
	}
	return nil
}

// String implements fmt.Stringer.
func (p TrailPointer) String() string {
	return redact.StringWithoutMarkers(p)
}

// SafeFormat implements redact.SafeFormatter.
func (p TrailPointer) SafeFormat(w redact.SafePrinter, _ rune) {
	if !p.active {
		w.SafeString("inactive")
		return
	}
	if p.isBefore {
		w.SafeString("before ")
	} else {
		w.SafeString("after ")
	}
	w.Print(p.trail)
}
