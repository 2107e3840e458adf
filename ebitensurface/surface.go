package ebitensurface

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/arbor"
)

// Surface is an arbor.Surface backed by a pooled offscreen image. Resizes only
// record the requested area; the image is (re)acquired lazily by Image, so
// sizing a surface never touches the GPU.
type Surface struct {
	pool *Pool
	img  *ebiten.Image

	originX, originY float64
	width, height    int

	resizes  int
	released bool
}

var _ arbor.Surface = (*Surface)(nil)

// NewSurface creates a surface drawing its images from pool.
func NewSurface(pool *Pool) *Surface {
	return &Surface{pool: pool}
}

// SetSizeFullDisplay implements arbor.Surface.
func (s *Surface) SetSizeFullDisplay(size arbor.Size) {
	s.resize(0, 0, size.Width, size.Height)
}

// SetSizeFitBounds implements arbor.Surface. The bounds are already whole
// pixels.
func (s *Surface) SetSizeFitBounds(bounds arbor.Rect) {
	s.resize(bounds.MinX, bounds.MinY, int(bounds.Width()), int(bounds.Height()))
}

func (s *Surface) resize(x, y float64, w, h int) {
	s.resizes++
	s.originX, s.originY = x, y
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.width, s.height = w, h
	if s.img == nil {
		return
	}
	// Keep the image while it is still the right bucket.
	b := s.img.Bounds()
	if pw, ph := bucketSize(w, h); w == 0 || h == 0 || pw != b.Dx() || ph != b.Dy() {
		s.pool.Release(s.img)
		s.img = nil
	}
}

// Origin returns the position of the surface's top-left pixel in the block's
// transform-root frame.
func (s *Surface) Origin() (x, y float64) { return s.originX, s.originY }

// Size returns the requested surface size in pixels.
func (s *Surface) Size() image.Point { return image.Pt(s.width, s.height) }

// Resizes returns the number of resizes requested so far.
func (s *Surface) Resizes() int { return s.resizes }

// Image returns a cleared image covering the surface, or nil when the surface
// has no area or was released.
func (s *Surface) Image() *ebiten.Image {
	if s.released || s.width == 0 || s.height == 0 {
		return nil
	}
	if s.img == nil {
		s.img = s.pool.Acquire(s.width, s.height)
	} else {
		s.img.Clear()
	}
	return s.img.SubImage(image.Rect(0, 0, s.width, s.height)).(*ebiten.Image)
}

// Release returns the image to the pool. Called by arbor when the owning block
// is disposed.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.released = true
	if s.img != nil {
		s.pool.Release(s.img)
		s.img = nil
	}
}
