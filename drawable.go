package arbor

// Drawable is a backend paint unit tied to one Instance. A drawable belongs to
// at most one FittedBlock at a time.
type Drawable struct {
	instance *Instance
	fittable *Property[bool]
	block    *FittedBlock

	ancestorsSub Subscription
}

// NewDrawable creates a drawable for inst whose fittability follows the
// instance's ancestors-fittable state.
func NewDrawable(inst *Instance) *Drawable {
	return newDrawable(inst)
}

func newDrawable(inst *Instance) *Drawable {
	d := &Drawable{
		instance: inst,
		fittable: NewProperty(inst.fittability.AncestorsFittable()),
	}
	d.ancestorsSub = inst.fittability.ancestorsFittable.LazyLink(d.fittable.Set)
	return d
}

// Instance returns the instance the drawable paints.
func (d *Drawable) Instance() *Instance { return d.instance }

// Node returns the painted node.
func (d *Drawable) Node() *Node { return d.instance.node }

// Fittable reports whether the drawable may live in a tightly fitted surface.
func (d *Drawable) Fittable() bool { return d.fittable.Get() }

// OnFittableChange registers fn for future fittability flips.
func (d *Drawable) OnFittableChange(fn func(bool)) Subscription {
	return d.fittable.LazyLink(fn)
}

// Block returns the block the drawable is assigned to, if any.
func (d *Drawable) Block() *FittedBlock { return d.block }

func (d *Drawable) dispose() {
	d.ancestorsSub.Unsubscribe()
	if d.block != nil {
		d.block.RemoveDrawable(d)
	}
}
