package arbor

// stitchRun is a contiguous sequence of drawables in render order that share
// a transform root and therefore a block.
type stitchRun struct {
	root      *Instance
	drawables []*Drawable
}

// stitch walks the instance tree in render order, splits the visible
// drawables into runs at LayerSplit subtrees and assigns each run to a block.
// Blocks are reused by position while their transform root matches.
func (d *Display) stitch() {
	for i := range d.runs {
		d.runs[i].drawables = d.runs[i].drawables[:0]
	}
	d.runs = d.runs[:0]
	d.openRun(d.tree.root)
	d.collect(d.tree.root, d.tree.root)

	i := 0
	for _, r := range d.runs {
		if len(r.drawables) == 0 {
			continue
		}
		if i < len(d.blocks) && d.blocks[i].TransformRoot() != r.root {
			d.blocks[i].Dispose()
			d.blocks[i] = d.newBlock(r.root)
		}
		if i >= len(d.blocks) {
			d.blocks = append(d.blocks, d.newBlock(r.root))
		}
		d.blocks[i].SetDrawables(r.drawables)
		i++
	}
	for k := i; k < len(d.blocks); k++ {
		d.blocks[k].Dispose()
		d.blocks[k] = nil
	}
	d.blocks = d.blocks[:i]
}

// openRun starts a new run under root, reusing a previously allocated run's
// drawable slice when one is available.
func (d *Display) openRun(root *Instance) {
	if n := len(d.runs); n > 0 && len(d.runs[n-1].drawables) == 0 {
		d.runs[n-1].root = root
		return
	}
	if len(d.runs) < cap(d.runs) {
		d.runs = d.runs[:len(d.runs)+1]
		d.runs[len(d.runs)-1].root = root
		d.runs[len(d.runs)-1].drawables = d.runs[len(d.runs)-1].drawables[:0]
		return
	}
	d.runs = append(d.runs, stitchRun{root: root})
}

// collect appends the drawables of inst's subtree to the current run. A
// LayerSplit node gets runs of its own, laid out in its frame; content after
// it resumes in a fresh run under the enclosing transform root.
func (d *Display) collect(inst *Instance, transformRoot *Instance) {
	n := inst.node
	if !n.Visible {
		return
	}
	split := n.LayerSplit && !inst.isDisplayRoot
	if split {
		transformRoot = inst
		d.openRun(inst)
	}
	if inst.drawable != nil {
		r := &d.runs[len(d.runs)-1]
		r.drawables = append(r.drawables, inst.drawable)
	}
	for _, c := range inst.children {
		d.collect(c, transformRoot)
	}
	if split {
		d.openRun(transformRoot.parentTransformRoot())
	}
}

// parentTransformRoot returns the transform root enclosing a LayerSplit
// instance: its nearest LayerSplit ancestor, or the display root.
func (i *Instance) parentTransformRoot() *Instance {
	for a := i.parent; a != nil; a = a.parent {
		if a.isDisplayRoot || a.node.LayerSplit {
			return a
		}
	}
	return i
}

func (d *Display) newBlock(transformRoot *Instance) *FittedBlock {
	b := NewFittedBlock(BlockConfig{
		Viewport:      d,
		Scheduler:     d.scheduler,
		TransformRoot: transformRoot,
		PreferredFit:  d.opts.PreferredFit,
		NewSurface:    d.opts.NewSurface,
		Options:       d.opts.fitOptions(),
	})
	if d.opts.Debug {
		d.opts.Logger.Infof("block %d: created under %s (%s)", b.id, transformRoot.trail, b.fit)
	}
	return b
}
