package ebitensurface

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/arbor"
)

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// Compositor paints each block's drawables into the block's surface and
// draws the surfaces onto the screen in block order.
type Compositor struct {
	pool     Pool
	surfaces map[*arbor.FittedBlock]*Surface
	op       ebiten.DrawImageOptions
}

// NewCompositor creates an empty compositor.
func NewCompositor() *Compositor {
	return &Compositor{surfaces: make(map[*arbor.FittedBlock]*Surface)}
}

// NewSurface is an arbor.Options.NewSurface factory.
func (c *Compositor) NewSurface(b *arbor.FittedBlock) arbor.Surface {
	s := NewSurface(&c.pool)
	c.surfaces[b] = s
	return s
}

// SurfaceFor returns the surface of b, or nil if b was not created through
// this compositor.
func (c *Compositor) SurfaceFor(b *arbor.FittedBlock) *Surface {
	return c.surfaces[b]
}

// Pool returns the compositor's image pool.
func (c *Compositor) Pool() *Pool { return &c.pool }

// Draw paints d onto screen. Call it after d.UpdateDisplay.
func (c *Compositor) Draw(screen *ebiten.Image, d *arbor.Display) {
	for b := range c.surfaces {
		if b.IsDisposed() {
			delete(c.surfaces, b)
		}
	}
	white := ensureWhitePixel()

	for _, b := range d.Blocks() {
		s := c.surfaces[b]
		if s == nil {
			continue
		}
		img := s.Image()
		if img == nil {
			continue
		}
		root := b.TransformRoot()
		ox, oy := s.Origin()

		for _, dr := range b.Drawables() {
			n := dr.Node()
			if n.Width <= 0 || n.Height <= 0 {
				continue
			}
			c.op.GeoM.Reset()
			c.op.GeoM.Scale(n.Width, n.Height)
			c.op.GeoM.Concat(geoM(dr.Instance().MatrixTo(root)))
			c.op.GeoM.Translate(-ox, -oy)
			c.op.ColorScale.Reset()
			a := float32(n.Color.A * n.WorldAlpha())
			c.op.ColorScale.Scale(float32(n.Color.R)*a, float32(n.Color.G)*a, float32(n.Color.B)*a, a)
			img.DrawImage(white, &c.op)
		}

		c.op.GeoM.Reset()
		c.op.GeoM.Translate(ox, oy)
		c.op.GeoM.Concat(geoM(root.Node().WorldTransform()))
		c.op.ColorScale.Reset()
		screen.DrawImage(img, &c.op)
	}
}

// geoM converts an [a, b, c, d, tx, ty] affine matrix.
func geoM(t [6]float64) ebiten.GeoM {
	var m ebiten.GeoM
	m.SetElement(0, 0, t[0])
	m.SetElement(1, 0, t[1])
	m.SetElement(0, 1, t[2])
	m.SetElement(1, 1, t[3])
	m.SetElement(0, 2, t[4])
	m.SetElement(1, 2, t[5])
	return m
}
