package arbor

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type schedulerFixture struct {
	tree    *instanceTree
	metrics *FitMetrics
	sched   *RepaintScheduler
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	root := mustParseOutline(t, `
root
  a rect=10x10
  b rect=10x10 at=20,0
`)
	m := NewFitMetrics("test")
	return &schedulerFixture{
		tree:    newInstanceTree(root, nil),
		metrics: m,
		sched:   NewRepaintScheduler(m),
	}
}

func (f *schedulerFixture) block(names ...string) *FittedBlock {
	opts := DefaultFitOptions()
	opts.Metrics = f.metrics
	b := NewFittedBlock(BlockConfig{
		Viewport:      newTestViewport(640, 480),
		Scheduler:     f.sched,
		TransformRoot: f.tree.root,
		Options:       opts,
	})
	var ds []*Drawable
	for _, name := range names {
		for _, c := range f.tree.root.children {
			if c.node.Name == name {
				ds = append(ds, c.drawable)
			}
		}
	}
	b.SetDrawables(ds)
	return b
}

func TestSchedulerDeduplicatesAndCancels(t *testing.T) {
	f := newSchedulerFixture(t)
	b1 := f.block("a")
	b2 := f.block("b")
	require.Equal(t, 2, f.sched.Pending())

	b1.MarkDirtyFit()
	b2.MarkDirtyFit()
	require.Equal(t, 2, f.sched.Pending())

	f.sched.CancelFit(b1)
	f.sched.CancelFit(b1)
	require.Equal(t, 1, f.sched.Pending())

	require.NoError(t, f.sched.Flush())
	require.Zero(t, f.sched.Pending())
	require.False(t, b2.IsDirtyFit())
	require.True(t, b1.IsDirtyFit(), "a cancelled block keeps its dirty flag")

	// Flushing an empty queue is a no-op.
	require.NoError(t, f.sched.Flush())
}

func TestSchedulerCombinesErrors(t *testing.T) {
	f := newSchedulerFixture(t)
	good := f.block("a")
	bad := f.block()

	err := f.sched.Flush()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidState))
	require.Contains(t, err.Error(), "updating fit of block")

	require.False(t, good.IsDirtyFit())
	require.Equal(t, Rect{0, 0, 14, 14}, good.FitBounds())
	require.True(t, bad.IsDirtyFit())
	require.Zero(t, f.sched.Pending())
}

func TestSchedulerSkipsDisposedBlocks(t *testing.T) {
	f := newSchedulerFixture(t)
	b := f.block("a")
	b.Dispose()
	require.Zero(t, f.sched.Pending())

	b.MarkDirtyFit()
	require.Zero(t, f.sched.Pending())
	require.NoError(t, f.sched.Flush())
	require.Zero(t, testutil.ToFloat64(f.metrics.Updates))
}

func TestFitMetrics(t *testing.T) {
	f := newSchedulerFixture(t)
	b := f.block("a", "b")
	require.NoError(t, f.sched.Flush())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Updates))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FitBoundsResizes))
	require.Zero(t, testutil.ToFloat64(f.metrics.SkippedResizes))

	b.MarkDirtyFit()
	require.NoError(t, f.sched.Flush())
	require.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Updates))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SkippedResizes))

	b.SetFit(FitFullDisplay)
	require.NoError(t, f.sched.Flush())
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FullDisplayResizes))
	require.Equal(t, 1, testutil.CollectAndCount(f.metrics.PassDuration))

	reg := prometheus.NewRegistry()
	for _, c := range f.metrics.Collectors() {
		require.NoError(t, reg.Register(c))
	}
	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 6)
	require.Equal(t, "test_fit_fallbacks_total", families[0].GetName())
}
