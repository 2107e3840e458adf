// Package arbor keeps the backend surfaces of a retained 2D node tree sized
// to what they actually draw.
//
// A [Display] mirrors a tree of [Node] values with persistent [Instance]
// wrappers, splits the visible drawables into contiguous runs, and assigns
// each run to a [FittedBlock]. A block owns one backend [Surface] and decides
// how large it must be:
//
//   - [FitFullDisplay] sizes the surface to the whole viewport.
//   - [FitCommonAncestor] sizes it to the bounds of the deepest instance that
//     contains every drawable of the block, rounded out, dilated by a small
//     margin and clamped to the viewport.
//
// Blocks re-fit lazily. Changes to bounds, transforms, fittability or the
// viewport mark a block dirty and queue it on the display's
// [RepaintScheduler]; [Display.UpdateDisplay] flushes the queue once per
// frame.
//
//	root := arbor.NewContainer("root")
//	box := arbor.NewRect("box", 80, 40, arbor.ColorWhite)
//	box.SetPosition(100, 50)
//	root.AddChild(box)
//
//	d := arbor.NewDisplay(root, &arbor.Options{Width: 640, Height: 480})
//	if err := d.UpdateDisplay(); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(d.Blocks()[0].FitBounds()) // {96 46 184 94}
//
// # Positions in the tree
//
// A [Trail] is an immutable root-to-node path. A [TrailPointer] denotes the
// gap before or after a trail's node and can be compared and walked in two
// orders: render order, where after(N) is the same gap as before(next node),
// and nested order, where every node is entered and exited around its
// subtree. [TrailPointer.DepthFirstUntil] walks the nested order between two
// pointers and is how a changed region is re-flattened.
//
// # Unfittable content
//
// [Node.SetPreventFit] marks content that must not be drawn into a tight
// surface. Blocks holding such a drawable switch to full display when their
// transform root is the display root. A block whose common ancestor merely
// contains unfittable content elsewhere in its subtree falls back to full
// display for that pass and re-evaluates on the next.
//
// # Layer splits
//
// A node with [Node.LayerSplit] set gets blocks of its own, laid out in the
// node's local frame. Such blocks never use full display and are never
// clamped to the viewport.
//
// # Backends
//
// Package ebitensurface provides pooled Ebitengine images as surfaces and a
// compositor that paints blocks onto the screen. The default surface only
// records the last requested size.
//
// # Debug mode
//
// [Options.Debug] logs every pass, block creation and fit transitions
// through [Options.Logger], and enables tree sanity checks on node
// operations.
package arbor
