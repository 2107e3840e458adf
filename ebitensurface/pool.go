// Package ebitensurface backs arbor's fitted blocks with Ebitengine offscreen
// images and composites them onto the screen.
package ebitensurface

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Pool manages reusable offscreen images keyed by power-of-two dimensions.
// After warmup, Acquire/Release are zero-alloc. The zero value is ready to
// use.
type Pool struct {
	buckets map[uint64][]*ebiten.Image
}

// poolKey packs power-of-two width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image with at least (w, h) pixels.
// Dimensions are rounded up to the next power of two.
func (p *Pool) Acquire(w, h int) *ebiten.Image {
	pw, ph := bucketSize(w, h)
	key := poolKey(pw, ph)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}

	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, pw, ph),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool for reuse. The image is cleared on
// next Acquire, not here.
func (p *Pool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// Idle returns the number of pooled images waiting for reuse.
func (p *Pool) Idle() int {
	n := 0
	for _, stack := range p.buckets {
		n += len(stack)
	}
	return n
}

// bucketSize returns the pooled image size that fits (w, h).
func bucketSize(w, h int) (int, int) {
	return nextPowerOfTwo(w), nextPowerOfTwo(h)
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
