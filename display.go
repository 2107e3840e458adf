package arbor

import (
	"time"
)

// Display owns the instance tree for a node tree, the fitted blocks its
// drawables are stitched into, and the scheduler that keeps their surfaces
// sized. It is the Viewport its blocks fit against.
//
// A Display is not safe for concurrent use. Node mutations and UpdateDisplay
// must happen on the same goroutine.
type Display struct {
	root *Node
	opts Options
	size *Property[Size]

	tree           *instanceTree
	structureDirty bool

	blocks    []*FittedBlock
	runs      []stitchRun
	scheduler *RepaintScheduler

	disposed bool
}

var _ Viewport = (*Display)(nil)

// NewDisplay creates a display for the tree rooted at root. opts may be nil.
func NewDisplay(root *Node, opts *Options) *Display {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.EnsureDefaults()
	if o.Debug {
		globalDebug = true
	}
	d := &Display{
		root:      root,
		opts:      o,
		size:      NewProperty(Size{Width: o.Width, Height: o.Height}),
		scheduler: NewRepaintScheduler(o.Metrics),
	}
	d.tree = newInstanceTree(root, func() { d.structureDirty = true })
	return d
}

// Root returns the display's root node.
func (d *Display) Root() *Node { return d.root }

// RootInstance returns the instance of the root node.
func (d *Display) RootInstance() *Instance { return d.tree.root }

// InstanceFor returns the instance of n as of the last sync, or nil if n was
// not in the tree.
func (d *Display) InstanceFor(n *Node) *Instance { return d.tree.lookup(n) }

// Blocks returns the blocks in render order. The returned slice MUST NOT be
// mutated by the caller.
func (d *Display) Blocks() []*FittedBlock { return d.blocks }

// Scheduler returns the display's repaint scheduler.
func (d *Display) Scheduler() *RepaintScheduler { return d.scheduler }

// Metrics returns the fit metrics the display's blocks report to.
func (d *Display) Metrics() *FitMetrics { return d.opts.Metrics }

// Size implements Viewport.
func (d *Display) Size() Size { return d.size.Get() }

// SetSize resizes the viewport. Blocks re-fit on the next UpdateDisplay.
func (d *Display) SetSize(width, height int) {
	d.size.Set(Size{Width: width, Height: height})
}

// OnResize implements Viewport.
func (d *Display) OnResize(fn func(Size)) Subscription {
	return d.size.LazyLink(fn)
}

// UpdateDisplay runs one repaint pass: world transforms are refreshed, the
// instance tree is re-synced if the node structure changed, drawables are
// stitched into blocks, and every dirty block's fit is updated.
func (d *Display) UpdateDisplay() error {
	if d.disposed {
		return invalidStatef("update of disposed display")
	}
	var stats passStats
	var t0 time.Time
	if d.opts.Debug {
		t0 = time.Now()
	}

	updateWorldTransform(d.root, identityTransform, 1.0, false)

	resynced := false
	if d.structureDirty {
		d.structureDirty = false
		removed := d.tree.sync(d.root)
		resynced = true
		if d.opts.Debug && len(removed) > 0 {
			d.opts.Logger.Infof("sync: disposed %d instances", len(removed))
		}
	}

	d.stitch()
	if resynced {
		// Trails may have moved under unchanged endpoints.
		for _, b := range d.blocks {
			b.OnIntervalChange(b.firstDrawable, b.lastDrawable)
		}
	}

	if d.opts.Debug {
		stats.stitchTime = time.Since(t0)
	}

	fitStats, err := d.scheduler.flush()
	if d.opts.Debug {
		fitStats.stitchTime = stats.stitchTime
		fitStats.instanceCount = len(d.tree.instances)
		debugLog(d.opts.Logger, fitStats)
	}
	return err
}

// ChangedRange returns the instances whose "before" gap lies between a and b
// in nested order, both included. It is how a region of the tree is
// re-flattened after a change bounded by two pointers.
func (d *Display) ChangedRange(a, b TrailPointer) ([]*Instance, error) {
	var out []*Instance
	err := a.DepthFirstUntil(b, func(p TrailPointer) bool {
		if !p.IsBefore() {
			return false
		}
		if inst := d.tree.lookup(p.Trail().LastNode()); inst != nil {
			out = append(out, inst)
		}
		return false
	}, false)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DrawableAt returns the topmost drawable whose self bounds contain the
// point (x, y) in the display root's frame, or nil. Only stitched drawables
// are considered, against the transforms of the last UpdateDisplay.
func (d *Display) DrawableAt(x, y float64) *Drawable {
	for i := len(d.blocks) - 1; i >= 0; i-- {
		ds := d.blocks[i].drawables
		for j := len(ds) - 1; j >= 0; j-- {
			n := ds[j].Node()
			if isSingular(n.worldTransform) {
				continue
			}
			if lx, ly := n.WorldToLocal(x, y); n.SelfBounds().Contains(lx, ly) {
				return ds[j]
			}
		}
	}
	return nil
}

// Dispose tears down every block and instance. The node tree is left intact.
func (d *Display) Dispose() {
	if d.disposed {
		return
	}
	for _, b := range d.blocks {
		b.Dispose()
	}
	d.blocks = nil
	d.tree.dispose()
	d.disposed = true
}
