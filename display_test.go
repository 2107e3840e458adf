package arbor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

const splitOutline = `
root
  a rect=10x10
  s split at=50,50
    s1 rect=5x5
    s2 rect=5x5 at=10,0
  b rect=10x10 at=0,20
`

func drawableNames(b *FittedBlock) string {
	var names []string
	for _, d := range b.Drawables() {
		names = append(names, d.Node().Name)
	}
	return strings.Join(names, ",")
}

func TestDisplayStitchesLayerSplits(t *testing.T) {
	root := mustParseOutline(t, splitOutline)
	d := NewDisplay(root, nil)
	require.NoError(t, d.UpdateDisplay())

	blocks := d.Blocks()
	require.Len(t, blocks, 3)
	require.Equal(t, "a", drawableNames(blocks[0]))
	require.Equal(t, "s1,s2", drawableNames(blocks[1]))
	require.Equal(t, "b", drawableNames(blocks[2]))

	s := d.InstanceFor(mustTrail(t, root, "s").LastNode())
	require.Same(t, d.RootInstance(), blocks[0].TransformRoot())
	require.Same(t, s, blocks[1].TransformRoot())
	require.Same(t, d.RootInstance(), blocks[2].TransformRoot())
	require.False(t, blocks[1].CanBeFullDisplay())

	require.Equal(t, Rect{0, 0, 14, 14}, blocks[0].FitBounds())
	// Laid out in the split node's own frame and never clamped.
	require.Equal(t, Rect{-4, -4, 19, 9}, blocks[1].FitBounds())
	require.Equal(t, Rect{0, 16, 14, 34}, blocks[2].FitBounds())
	for _, b := range blocks {
		require.False(t, b.IsDirtyFit())
		require.NotNil(t, b.CommonFitInstance())
	}
}

func TestDisplayReusesBlocks(t *testing.T) {
	root := mustParseOutline(t, splitOutline)
	d := NewDisplay(root, nil)
	require.NoError(t, d.UpdateDisplay())
	before := append([]*FittedBlock(nil), d.Blocks()...)

	mustTrail(t, root, "b").LastNode().SetPosition(0, 40)
	require.NoError(t, d.UpdateDisplay())
	require.Equal(t, before, d.Blocks())
	require.Equal(t, Rect{0, 36, 14, 54}, before[2].FitBounds())

	mustTrail(t, root, "s").LastNode().LayerSplit = false
	require.NoError(t, d.UpdateDisplay())
	require.Len(t, d.Blocks(), 1)
	require.Same(t, before[0], d.Blocks()[0])
	require.True(t, before[1].IsDisposed())
	require.True(t, before[2].IsDisposed())
	require.Equal(t, "a,s1,s2,b", drawableNames(before[0]))
	require.Equal(t, Rect{0, 0, 69, 59}, before[0].FitBounds())
	require.Same(t, d.RootInstance(), before[0].CommonFitInstance())
}

func TestDisplayHiddenContentHasNoBlocks(t *testing.T) {
	root := mustParseOutline(t, `
root
  a rect=10x10 hidden
`)
	d := NewDisplay(root, nil)
	require.NoError(t, d.UpdateDisplay())
	require.Empty(t, d.Blocks())

	mustTrail(t, root, "a").LastNode().SetVisible(true)
	require.NoError(t, d.UpdateDisplay())
	require.Len(t, d.Blocks(), 1)
}

func TestDisplayResyncAfterStructureChange(t *testing.T) {
	root := mustParseOutline(t, `
root
  g at=5,5
    a rect=10x10
  b rect=10x10 at=30,0
`)
	d := NewDisplay(root, nil)
	require.NoError(t, d.UpdateDisplay())
	blk := d.Blocks()[0]
	require.Equal(t, Rect{1, 0, 44, 19}, blk.FitBounds())

	// Same first and last drawable, but the common ancestor moves.
	g := mustTrail(t, root, "g").LastNode()
	outer := NewContainer("outer")
	outer.SetPosition(100, 0)
	root.AddChildAt(outer, 0)
	outer.AddChild(g)
	require.NoError(t, d.UpdateDisplay())

	require.Same(t, blk, d.Blocks()[0])
	require.Equal(t, "root/0:outer/0:g/0:a", blk.FirstDrawable().Instance().Trail().String())
	require.Equal(t, Rect{26, 0, 119, 19}, blk.FitBounds())
}

func TestDisplayUnfittableDrawable(t *testing.T) {
	root := mustParseOutline(t, `
root
  a rect=10x10
  b rect=10x10 at=20,0 nofit
`)
	d := NewDisplay(root, nil)
	require.NoError(t, d.UpdateDisplay())
	blk := d.Blocks()[0]
	require.Equal(t, FitFullDisplay, blk.Fit())
	surf := blk.Surface().(*RecordingSurface)
	require.Equal(t, 1, surf.FullDisplayCalls)
	require.Equal(t, Size{Width: 640, Height: 480}, surf.Size)

	mustTrail(t, root, "b").LastNode().SetPreventFit(false)
	require.NoError(t, d.UpdateDisplay())
	require.Equal(t, FitCommonAncestor, blk.Fit())
	require.Equal(t, Rect{0, 0, 34, 14}, surf.Bounds)
}

func TestDisplayViewportResize(t *testing.T) {
	root := mustParseOutline(t, `
root
  a rect=100x100
`)
	d := NewDisplay(root, &Options{Width: 200, Height: 200})
	require.NoError(t, d.UpdateDisplay())
	blk := d.Blocks()[0]
	require.Equal(t, Rect{0, 0, 104, 104}, blk.FitBounds())

	d.SetSize(50, 60)
	require.True(t, blk.IsDirtyFit())
	require.Equal(t, 1, d.Scheduler().Pending())
	require.NoError(t, d.UpdateDisplay())
	require.Equal(t, Rect{0, 0, 50, 60}, blk.FitBounds())
}

func TestDisplayChangedRange(t *testing.T) {
	root := mustParseOutline(t, sampleOutline)
	d := NewDisplay(root, nil)

	from, err := ParsePointer(root, "before:a/a2")
	require.NoError(t, err)
	to, err := ParsePointer(root, "before:c")
	require.NoError(t, err)

	insts, err := d.ChangedRange(from, to)
	require.NoError(t, err)
	var names []string
	for _, inst := range insts {
		names = append(names, inst.Node().Name)
	}
	require.Equal(t, []string{"a2", "a2x", "b", "c"}, names)

	_, err = d.ChangedRange(to, from)
	require.True(t, errors.Is(err, ErrOutOfOrder))
}

func TestDisplayDispose(t *testing.T) {
	root := mustParseOutline(t, splitOutline)
	d := NewDisplay(root, nil)
	require.NoError(t, d.UpdateDisplay())
	blocks := append([]*FittedBlock(nil), d.Blocks()...)
	rootInst := d.RootInstance()

	d.Dispose()
	d.Dispose()
	for _, b := range blocks {
		require.True(t, b.IsDisposed())
	}
	require.True(t, rootInst.IsDisposed())
	require.Equal(t, 3, root.NumChildren(), "the node tree is left intact")

	err := d.UpdateDisplay()
	require.True(t, errors.Is(err, ErrInvalidState))
}

type captureLogger struct {
	lines []string
}

func (l *captureLogger) Infof(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func TestDisplayDebugLogging(t *testing.T) {
	t.Cleanup(func() { globalDebug = false })
	log := &captureLogger{}
	root := mustParseOutline(t, `
root
  a rect=10x10
  b rect=10x10 nofit
`)
	d := NewDisplay(root, &Options{Debug: true, Logger: log})
	require.NoError(t, d.UpdateDisplay())

	out := strings.Join(log.lines, "\n")
	require.Contains(t, out, "created under root")
	require.Contains(t, out, "fit common-ancestor -> full-display")
	require.Contains(t, out, "resizes: full 1, fit 0")
	require.Contains(t, out, "instances: 3")
}

func TestDisplayDrawableAt(t *testing.T) {
	root := mustParseOutline(t, splitOutline)
	d := NewDisplay(root, nil)
	require.NoError(t, d.UpdateDisplay())

	nameAt := func(x, y float64) string {
		if dr := d.DrawableAt(x, y); dr != nil {
			return dr.Node().Name
		}
		return ""
	}
	require.Equal(t, "a", nameAt(5, 5))
	require.Equal(t, "s1", nameAt(52, 52))
	require.Equal(t, "s2", nameAt(62, 53))
	require.Equal(t, "b", nameAt(5, 25))
	require.Equal(t, "", nameAt(30, 30))

	// Later drawables are on top.
	b := mustTrail(t, root, "b").LastNode()
	b.SetPosition(5, 5)
	require.NoError(t, d.UpdateDisplay())
	require.Equal(t, "b", nameAt(7, 7))
	require.Equal(t, "a", nameAt(2, 2))

	// A collapsed node covers nothing.
	b.SetScale(0, 0)
	require.NoError(t, d.UpdateDisplay())
	require.Equal(t, "a", nameAt(7, 7))

	s := mustTrail(t, root, "s").LastNode()
	s.SetVisible(false)
	require.NoError(t, d.UpdateDisplay())
	require.Equal(t, "", nameAt(52, 52))
}
