package ebitensurface

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phanxgames/arbor"
)

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {64, 64}, {65, 128}, {1000, 1024},
	}
	for _, tt := range tests {
		if got := nextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPoolKeyDistinct(t *testing.T) {
	require.NotEqual(t, poolKey(64, 128), poolKey(128, 64))
	require.Equal(t, poolKey(bucketSize(33, 100)), poolKey(64, 128))
}

func TestSurfaceFitBoundsRecordsOrigin(t *testing.T) {
	var pool Pool
	s := NewSurface(&pool)

	s.SetSizeFitBounds(arbor.Rect{MinX: 6, MinY: -4, MaxX: 34, MaxY: 40})
	x, y := s.Origin()
	require.Equal(t, 6.0, x)
	require.Equal(t, -4.0, y)
	require.Equal(t, image.Pt(28, 44), s.Size())
	require.Equal(t, 1, s.Resizes())

	s.SetSizeFullDisplay(arbor.Size{Width: 320, Height: 200})
	x, y = s.Origin()
	require.Zero(t, x)
	require.Zero(t, y)
	require.Equal(t, image.Pt(320, 200), s.Size())
	require.Equal(t, 2, s.Resizes())
}

func TestSurfaceZeroAreaHasNoImage(t *testing.T) {
	var pool Pool
	s := NewSurface(&pool)
	s.SetSizeFitBounds(arbor.ZeroRect)
	require.Nil(t, s.Image())

	s.Release()
	s.SetSizeFullDisplay(arbor.Size{Width: 10, Height: 10})
	require.Nil(t, s.Image(), "released surfaces never allocate")
	require.Zero(t, pool.Idle())
}

func TestCompositorTracksBlockSurfaces(t *testing.T) {
	c := NewCompositor()
	root := arbor.NewContainer("root")
	a := arbor.NewRect("a", 10, 10, arbor.ColorWhite)
	a.SetPosition(20, 30)
	root.AddChild(a)

	d := arbor.NewDisplay(root, &arbor.Options{NewSurface: c.NewSurface})
	require.NoError(t, d.UpdateDisplay())
	require.Len(t, d.Blocks(), 1)

	b := d.Blocks()[0]
	s := c.SurfaceFor(b)
	require.NotNil(t, s)
	require.Equal(t, 1, s.Resizes())
	x, y := s.Origin()
	require.Equal(t, 16.0, x)
	require.Equal(t, 26.0, y)
	require.Equal(t, image.Pt(18, 18), s.Size())

	d.Dispose()
	require.True(t, b.IsDisposed())
}
