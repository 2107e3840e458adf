package arbor

// Viewport is the display area blocks fit against.
type Viewport interface {
	Size() Size
	OnResize(fn func(Size)) Subscription
}

// FitScheduler collects blocks whose fit must be updated in the next repaint
// pass.
type FitScheduler interface {
	ScheduleFit(b *FittedBlock)
	CancelFit(b *FittedBlock)
}

// Surface is the backend resource a FittedBlock sizes. Each method is called
// only when a resize is actually warranted.
type Surface interface {
	// SetSizeFullDisplay sizes the surface to the whole viewport.
	SetSizeFullDisplay(size Size)
	// SetSizeFitBounds sizes the surface to bounds, expressed in the block's
	// transform-root frame and already rounded to whole pixels.
	SetSizeFitBounds(bounds Rect)
}

// releaser is implemented by surfaces holding resources that must be freed
// when their block is disposed.
type releaser interface {
	Release()
}

// RecordingSurface is a Surface that only remembers what it was asked to do.
type RecordingSurface struct {
	FullDisplayCalls int
	FitBoundsCalls   int
	Size             Size
	Bounds           Rect
}

// SetSizeFullDisplay implements Surface.
func (s *RecordingSurface) SetSizeFullDisplay(size Size) {
	s.FullDisplayCalls++
	s.Size = size
	s.Bounds = RectXYWH(0, 0, float64(size.Width), float64(size.Height))
}

// SetSizeFitBounds implements Surface.
func (s *RecordingSurface) SetSizeFitBounds(bounds Rect) {
	s.FitBoundsCalls++
	s.Bounds = bounds
	s.Size = Size{Width: int(bounds.Width()), Height: int(bounds.Height())}
}

// Calls returns the total number of resizes.
func (s *RecordingSurface) Calls() int {
	return s.FullDisplayCalls + s.FitBoundsCalls
}

// BlockConfig holds the collaborators of a FittedBlock.
type BlockConfig struct {
	Viewport  Viewport
	Scheduler FitScheduler
	// TransformRoot is the instance whose frame the block's surface is laid
	// out in. Blocks can only fit to the full display when it is the display
	// root.
	TransformRoot *Instance
	PreferredFit  Fit
	// Surface, if nil, is created by NewSurface, and failing that is a
	// RecordingSurface.
	Surface    Surface
	NewSurface func(b *FittedBlock) Surface
	Options    FitOptions
}

var blockIDCounter uint32

// fitResult records what the last UpdateFit did, for pass statistics.
type fitResult struct {
	updated  bool
	full     bool
	fitted   bool
	skipped  bool
	fallback bool
}

// FittedBlock decides whether a backend surface is sized to the whole
// viewport or to the tight bounds of the deepest instance containing all of
// its drawables, and re-decides only when something it depends on changed.
//
// The fit is one of FitFullDisplay and FitCommonAncestor. It starts at the
// preferred fit and moves to full display while the block holds unfittable
// drawables (when the transform root allows it), or for a single pass when
// the common ancestor's subtree contains unfittable content.
type FittedBlock struct {
	id uint32

	viewport  Viewport
	scheduler FitScheduler
	surface   Surface
	opts      FitOptions

	transformRoot    *Instance
	preferredFit     Fit
	fit              Fit
	canBeFullDisplay bool
	dirtyFit         bool

	// commonFitInstance is a lookup into the display's instance tree, valid
	// while fit is FitCommonAncestor (or a subtree fallback is in effect) and
	// not yet invalidated.
	commonFitInstance *Instance
	commonFitSubs     []Subscription
	subtreeFallback   bool

	fitBounds    Rect
	oldFitBounds Rect

	unfittableDrawableCount int

	drawables     []*Drawable
	drawableSubs  map[*Drawable]Subscription
	firstDrawable *Drawable
	lastDrawable  *Drawable

	viewportSub Subscription
	disposed    bool
	lastResult  fitResult
}

// NewFittedBlock creates a block and schedules its first fit.
func NewFittedBlock(cfg BlockConfig) *FittedBlock {
	if cfg.TransformRoot == nil {
		panic(invalidStatef("fitted block without a transform root"))
	}
	if cfg.Viewport == nil {
		panic(invalidStatef("fitted block without a viewport"))
	}
	blockIDCounter++
	b := &FittedBlock{
		id:               blockIDCounter,
		viewport:         cfg.Viewport,
		scheduler:        cfg.Scheduler,
		opts:             cfg.Options,
		transformRoot:    cfg.TransformRoot,
		preferredFit:     cfg.PreferredFit,
		canBeFullDisplay: cfg.TransformRoot.IsDisplayRoot(),
		fitBounds:        EmptyRect,
		oldFitBounds:     EmptyRect,
		drawableSubs:     make(map[*Drawable]Subscription),
	}
	if b.opts.Logger == nil {
		b.opts.Logger = DefaultLogger{}
	}
	b.fit = b.allowedFit(cfg.PreferredFit)
	switch {
	case cfg.Surface != nil:
		b.surface = cfg.Surface
	case cfg.NewSurface != nil:
		b.surface = cfg.NewSurface(b)
	default:
		b.surface = &RecordingSurface{}
	}
	b.viewportSub = b.viewport.OnResize(func(Size) { b.MarkDirtyFit() })
	b.MarkDirtyFit()
	return b
}

// ID returns a process-unique block identifier.
func (b *FittedBlock) ID() uint32 { return b.id }

// Fit returns the fit currently in effect.
func (b *FittedBlock) Fit() Fit { return b.fit }

// PreferredFit returns the fit the block uses absent unfittable content.
func (b *FittedBlock) PreferredFit() Fit { return b.preferredFit }

// CanBeFullDisplay reports whether the transform root is the display root.
func (b *FittedBlock) CanBeFullDisplay() bool { return b.canBeFullDisplay }

// IsDirtyFit reports whether the fit needs updating.
func (b *FittedBlock) IsDirtyFit() bool { return b.dirtyFit }

// FitBounds returns the bounds computed by the last UpdateFit: the fitted
// rectangle for FitCommonAncestor, EmptyRect for FitFullDisplay. Meaningful
// only while IsDirtyFit is false.
func (b *FittedBlock) FitBounds() Rect { return b.fitBounds }

// OldFitBounds returns the bounds last passed to SetSizeFitBounds, or
// EmptyRect after a fit change.
func (b *FittedBlock) OldFitBounds() Rect { return b.oldFitBounds }

// CommonFitInstance returns the cached common ancestor, or nil.
func (b *FittedBlock) CommonFitInstance() *Instance { return b.commonFitInstance }

// UnfittableDrawableCount returns the number of assigned drawables that are
// not fittable.
func (b *FittedBlock) UnfittableDrawableCount() int { return b.unfittableDrawableCount }

// TransformRoot returns the instance whose frame the surface is laid out in.
func (b *FittedBlock) TransformRoot() *Instance { return b.transformRoot }

// Drawables returns the assigned drawables in render order. The returned
// slice MUST NOT be mutated by the caller.
func (b *FittedBlock) Drawables() []*Drawable { return b.drawables }

// FirstDrawable returns the first drawable of the block's interval.
func (b *FittedBlock) FirstDrawable() *Drawable { return b.firstDrawable }

// LastDrawable returns the last drawable of the block's interval.
func (b *FittedBlock) LastDrawable() *Drawable { return b.lastDrawable }

// Surface returns the block's backend surface.
func (b *FittedBlock) Surface() Surface { return b.surface }

// IsDisposed reports whether Dispose has been called.
func (b *FittedBlock) IsDisposed() bool { return b.disposed }

func (b *FittedBlock) allowedFit(f Fit) Fit {
	if f == FitFullDisplay && !b.canBeFullDisplay {
		return FitCommonAncestor
	}
	return f
}

// SetFit requests a fit. Full display is downgraded to common ancestor when
// the transform root is not the display root. A change dirties the fit,
// forgets the previously applied bounds and drops the cached ancestor.
func (b *FittedBlock) SetFit(fit Fit) {
	fit = b.allowedFit(fit)
	if fit == FitFullDisplay && b.subtreeFallback {
		// The fallback's ancestor was kept for re-evaluation; a requested
		// full display has none.
		b.subtreeFallback = false
		b.removeCommonFitInstance()
	}
	if b.fit == fit {
		return
	}
	if b.opts.Debug {
		b.opts.Logger.Infof("block %d: fit %s -> %s", b.id, b.fit, fit)
	}
	b.fit = fit
	b.subtreeFallback = false
	b.MarkDirtyFit()
	b.oldFitBounds = EmptyRect
	b.removeCommonFitInstance()
}

// MarkDirtyFit flags the fit for recomputation and schedules the block for
// the next repaint pass.
func (b *FittedBlock) MarkDirtyFit() {
	if b.disposed {
		return
	}
	b.dirtyFit = true
	if b.scheduler != nil {
		b.scheduler.ScheduleFit(b)
	}
}

// UpdateFit brings the surface size up to date. It is a no-op for a clean
// full-display block. For a common-ancestor block it recomputes the fitted
// bounds and resizes the surface only if they changed.
func (b *FittedBlock) UpdateFit() error {
	b.lastResult = fitResult{}
	if b.disposed {
		return nil
	}
	if !b.dirtyFit && b.fit == FitFullDisplay {
		return nil
	}
	b.dirtyFit = false

	if b.subtreeFallback {
		// Re-evaluate last pass's fallback against the current subtree.
		b.subtreeFallback = false
		b.fit = FitCommonAncestor
		b.oldFitBounds = EmptyRect
	}
	if b.commonFitInstance != nil && b.commonFitInstance.IsDisposed() {
		b.removeCommonFitInstance()
	}
	if b.fit == FitCommonAncestor && b.commonFitInstance == nil {
		inst, err := b.ComputeCommonAncestorInstance()
		if err != nil {
			b.dirtyFit = true
			return err
		}
		b.addCommonFitInstance(inst)
	}

	if b.fit == FitCommonAncestor &&
		b.commonFitInstance.fittability.subtreeUnfittableCount > 0 &&
		b.canBeFullDisplay {
		b.oldFitBounds = EmptyRect
		b.fit = FitFullDisplay
		b.subtreeFallback = true
		b.lastResult.fallback = true
		if m := b.opts.Metrics; m != nil {
			m.Fallbacks.Inc()
		}
		if b.opts.Debug {
			b.opts.Logger.Infof("block %d: unfittable content under %s, using full display",
				b.id, b.commonFitInstance.trail)
		}
	}

	b.lastResult.updated = true
	if m := b.opts.Metrics; m != nil {
		m.Updates.Inc()
	}

	switch b.fit {
	case FitFullDisplay:
		b.fitBounds = EmptyRect
		b.surface.SetSizeFullDisplay(b.viewport.Size())
		b.lastResult.full = true
		if m := b.opts.Metrics; m != nil {
			m.FullDisplayResizes.Inc()
		}

	case FitCommonAncestor:
		if b.commonFitInstance.trail.Len() < b.transformRoot.trail.Len() {
			return invalidStatef("common fit instance %s above transform root %s",
				b.commonFitInstance.trail, b.transformRoot.trail)
		}
		bounds := b.commonFitInstance.node.LocalBounds()
		for inst := b.commonFitInstance; inst != b.transformRoot; inst = inst.parent {
			if inst == nil {
				return invalidStatef("common fit instance is not below the transform root")
			}
			bounds = bounds.Transformed(inst.node.Matrix())
		}
		bounds = bounds.RoundedOut().Dilated(b.opts.Margin)
		// Clamp only at the display root; a transformed root's ancestors
		// could map the clamped rect somewhere else entirely.
		if b.opts.ClampToViewport && b.transformRoot.IsDisplayRoot() {
			size := b.viewport.Size()
			bounds = bounds.Intersection(RectXYWH(0, 0, float64(size.Width), float64(size.Height)))
		}
		if !bounds.IsValid() {
			bounds = ZeroRect
		}
		b.fitBounds = bounds

		if b.fitBounds != b.oldFitBounds {
			b.oldFitBounds = b.fitBounds
			b.surface.SetSizeFitBounds(b.fitBounds)
			b.lastResult.fitted = true
			if m := b.opts.Metrics; m != nil {
				m.FitBoundsResizes.Inc()
			}
		} else {
			b.lastResult.skipped = true
			if m := b.opts.Metrics; m != nil {
				m.SkippedResizes.Inc()
			}
		}

	default:
		return invalidStatef("unknown fit %d", b.fit)
	}
	return nil
}

// ComputeCommonAncestorInstance returns the deepest instance that is an
// ancestor of (or equal to) the instances of both the first and last
// drawable.
func (b *FittedBlock) ComputeCommonAncestorInstance() (*Instance, error) {
	if b.firstDrawable == nil || b.lastDrawable == nil ||
		b.firstDrawable.instance == nil || b.lastDrawable.instance == nil {
		return nil, invalidStatef("block %d has no drawable interval", b.id)
	}
	if b.firstDrawable.instance.IsDisposed() || b.lastDrawable.instance.IsDisposed() {
		return nil, invalidStatef("block %d interval ends at a disposed instance", b.id)
	}
	first := b.firstDrawable.instance
	last := b.lastDrawable.instance

	// Walk the deeper one up until both are at the same depth.
	minLen := min(first.trail.Len(), last.trail.Len())
	for first.trail.Len() > minLen {
		first = first.parent
	}
	for last.trail.Len() > minLen {
		last = last.parent
	}
	// Then step both up until they meet.
	for first != last {
		first = first.parent
		last = last.parent
		if first == nil || last == nil {
			return nil, invalidStatef("block %d drawables do not share a root", b.id)
		}
	}
	if first.trail.Len() < b.transformRoot.trail.Len() {
		return nil, invalidStatef("common fit instance %s above transform root %s",
			first.trail, b.transformRoot.trail)
	}
	return first, nil
}

// addCommonFitInstance caches inst and subscribes to the signals that
// invalidate the fit computed from it: its subtree fittability, its bounds,
// and the transforms between it and the transform root.
func (b *FittedBlock) addCommonFitInstance(inst *Instance) {
	if b.commonFitInstance != nil {
		panic(invalidStatef("block %d already has a common fit instance", b.id))
	}
	if inst == nil {
		return
	}
	b.commonFitInstance = inst
	dirty := func() { b.MarkDirtyFit() }
	b.commonFitSubs = append(b.commonFitSubs[:0],
		inst.fittability.OnSubtreeFittabilityChange(func(int) { dirty() }),
		inst.node.OnBoundsChanged(func(*Node) { dirty() }),
	)
	for a := inst; a != nil && a != b.transformRoot; a = a.parent {
		b.commonFitSubs = append(b.commonFitSubs, a.node.OnTransformChanged(func(*Node) { dirty() }))
	}
}

// removeCommonFitInstance drops the cached ancestor. Safe when none is cached.
func (b *FittedBlock) removeCommonFitInstance() {
	if b.commonFitInstance == nil {
		return
	}
	for i := range b.commonFitSubs {
		b.commonFitSubs[i].Unsubscribe()
	}
	b.commonFitSubs = b.commonFitSubs[:0]
	b.commonFitInstance = nil
}

// AddDrawable assigns d to the block, moving it out of any other block.
func (b *FittedBlock) AddDrawable(d *Drawable) {
	if b.disposed {
		panic(invalidStatef("drawable added to disposed block %d", b.id))
	}
	if d.block == b {
		return
	}
	if d.block != nil {
		d.block.RemoveDrawable(d)
	}
	d.block = b
	b.drawables = append(b.drawables, d)
	b.drawableSubs[d] = d.OnFittableChange(b.onFittabilityChange)
	if !d.Fittable() {
		b.incrementUnfittable()
	}
}

// RemoveDrawable unassigns d. No-op if d is not in the block.
func (b *FittedBlock) RemoveDrawable(d *Drawable) {
	if d.block != b {
		return
	}
	d.block = nil
	for i, x := range b.drawables {
		if x == d {
			copy(b.drawables[i:], b.drawables[i+1:])
			b.drawables[len(b.drawables)-1] = nil
			b.drawables = b.drawables[:len(b.drawables)-1]
			break
		}
	}
	sub := b.drawableSubs[d]
	sub.Unsubscribe()
	delete(b.drawableSubs, d)
	if !d.Fittable() {
		b.decrementUnfittable()
	}
}

// SetDrawables makes run the block's drawables, in order, adding and removing
// as needed and reporting an interval change when the endpoints moved.
func (b *FittedBlock) SetDrawables(run []*Drawable) {
	if b.disposed {
		panic(invalidStatef("drawables set on disposed block %d", b.id))
	}
	keep := make(map[*Drawable]struct{}, len(run))
	for _, d := range run {
		keep[d] = struct{}{}
	}
	for i := len(b.drawables) - 1; i >= 0; i-- {
		if _, ok := keep[b.drawables[i]]; !ok {
			b.RemoveDrawable(b.drawables[i])
		}
	}
	for _, d := range run {
		b.AddDrawable(d)
	}
	b.drawables = append(b.drawables[:0], run...)

	var first, last *Drawable
	if len(run) > 0 {
		first, last = run[0], run[len(run)-1]
	}
	if first != b.firstDrawable || last != b.lastDrawable {
		b.OnIntervalChange(first, last)
	}
}

func (b *FittedBlock) onFittabilityChange(fittable bool) {
	if fittable {
		b.decrementUnfittable()
	} else {
		b.incrementUnfittable()
	}
}

// incrementUnfittable re-checks the fit constraints only on the 0 -> 1 edge.
func (b *FittedBlock) incrementUnfittable() {
	b.unfittableDrawableCount++
	if b.unfittableDrawableCount == 1 {
		b.CheckFitConstraints()
	}
}

// decrementUnfittable re-checks the fit constraints only on the 1 -> 0 edge.
func (b *FittedBlock) decrementUnfittable() {
	b.unfittableDrawableCount--
	if b.unfittableDrawableCount == 0 {
		b.CheckFitConstraints()
	}
}

// CheckFitConstraints re-derives the fit: full display while unfittable
// drawables are present and allowed, the preferred fit otherwise.
func (b *FittedBlock) CheckFitConstraints() {
	if b.unfittableDrawableCount > 0 && b.canBeFullDisplay {
		b.SetFit(FitFullDisplay)
	} else {
		b.SetFit(b.preferredFit)
	}
}

// OnIntervalChange records the block's new first and last drawable. A cached
// common ancestor may no longer span the content, so it is dropped.
func (b *FittedBlock) OnIntervalChange(first, last *Drawable) {
	b.firstDrawable = first
	b.lastDrawable = last
	if b.fit == FitCommonAncestor || b.subtreeFallback {
		b.removeCommonFitInstance()
		b.MarkDirtyFit()
	}
}

// Dispose tears down every subscription and releases the surface. A disposed
// block never updates again.
func (b *FittedBlock) Dispose() {
	if b.disposed {
		return
	}
	b.viewportSub.Unsubscribe()
	b.removeCommonFitInstance()
	for d, sub := range b.drawableSubs {
		sub.Unsubscribe()
		d.block = nil
	}
	b.drawableSubs = nil
	b.drawables = nil
	b.firstDrawable = nil
	b.lastDrawable = nil
	if b.scheduler != nil {
		b.scheduler.CancelFit(b)
	}
	if r, ok := b.surface.(releaser); ok {
		r.Release()
	}
	b.transformRoot = nil
	b.disposed = true
}
