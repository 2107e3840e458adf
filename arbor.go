package arbor

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default fill for rect nodes.
var ColorWhite = Color{1, 1, 1, 1}

// Size is a viewport size in whole pixels.
type Size struct {
	Width, Height int
}

// Rect is an axis-aligned rectangle stored as min/max extents. The coordinate
// system has its origin at the top-left, with Y increasing downward.
//
// A Rect whose minimums exceed its maximums is empty. EmptyRect is the
// canonical empty value ("nothing"): the identity for Union.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// EmptyRect contains no points. Union with it is a no-op and it never
// compares equal to any non-empty rect.
var EmptyRect = Rect{
	MinX: math.Inf(1), MinY: math.Inf(1),
	MaxX: math.Inf(-1), MaxY: math.Inf(-1),
}

// ZeroRect is the zero-size rectangle at the origin, substituted for invalid
// fit bounds.
var ZeroRect = Rect{}

// RectXYWH builds a Rect from a position and a size.
func RectXYWH(x, y, w, h float64) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + w, MaxY: y + h}
}

// Width returns MaxX - MinX.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns MaxY - MinY.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// IsEmpty reports whether the rect contains no points.
func (r Rect) IsEmpty() bool {
	return r.MinX > r.MaxX || r.MinY > r.MaxY
}

// IsFinite reports whether every extent is a finite number.
func (r Rect) IsFinite() bool {
	return isFinite(r.MinX) && isFinite(r.MinY) && isFinite(r.MaxX) && isFinite(r.MaxY)
}

// IsValid reports whether the rect is finite and not empty. Zero-size rects
// are valid.
func (r Rect) IsValid() bool {
	return !r.IsEmpty() && r.IsFinite()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX &&
		y >= r.MinY && y <= r.MaxY
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.MinX <= other.MaxX &&
		r.MaxX >= other.MinX &&
		r.MinY <= other.MaxY &&
		r.MaxY >= other.MinY
}

// Union returns the smallest rect containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, other.MinX),
		MinY: math.Min(r.MinY, other.MinY),
		MaxX: math.Max(r.MaxX, other.MaxX),
		MaxY: math.Max(r.MaxY, other.MaxY),
	}
}

// Intersection constrains r to other. The result is empty when they do not
// overlap.
func (r Rect) Intersection(other Rect) Rect {
	return Rect{
		MinX: math.Max(r.MinX, other.MinX),
		MinY: math.Max(r.MinY, other.MinY),
		MaxX: math.Min(r.MaxX, other.MaxX),
		MaxY: math.Min(r.MaxY, other.MaxY),
	}
}

// RoundedOut expands r to whole-pixel extents.
func (r Rect) RoundedOut() Rect {
	return Rect{
		MinX: math.Floor(r.MinX),
		MinY: math.Floor(r.MinY),
		MaxX: math.Ceil(r.MaxX),
		MaxY: math.Ceil(r.MaxY),
	}
}

// Dilated grows r by d on every side.
func (r Rect) Dilated(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Transformed returns the axis-aligned bounds of r's four corners mapped
// through the affine matrix m. Empty rects stay empty.
func (r Rect) Transformed(m [6]float64) Rect {
	if r.IsEmpty() {
		return r
	}
	x0, y0 := transformPoint(m, r.MinX, r.MinY)
	x1, y1 := transformPoint(m, r.MaxX, r.MinY)
	x2, y2 := transformPoint(m, r.MaxX, r.MaxY)
	x3, y3 := transformPoint(m, r.MinX, r.MaxY)
	return Rect{
		MinX: math.Min(math.Min(x0, x1), math.Min(x2, x3)),
		MinY: math.Min(math.Min(y0, y1), math.Min(y2, y3)),
		MaxX: math.Max(math.Max(x0, x1), math.Max(x2, x3)),
		MaxY: math.Max(math.Max(y0, y1), math.Max(y2, y3)),
	}
}

// NodeType distinguishes rendering behavior for a Node.
type NodeType uint8

const (
	NodeTypeContainer NodeType = iota // group node with no visual output
	NodeTypeRect                      // solid rectangle of Width x Height at the local origin
)

// Fit is the sizing policy of a FittedBlock's backend surface.
type Fit uint8

const (
	// FitCommonAncestor sizes the surface to the bounds of the deepest
	// instance containing every drawable of the block.
	FitCommonAncestor Fit = iota
	// FitFullDisplay sizes the surface to the whole viewport.
	FitFullDisplay
)

// String returns the policy name.
func (f Fit) String() string {
	switch f {
	case FitFullDisplay:
		return "full-display"
	case FitCommonAncestor:
		return "common-ancestor"
	default:
		return "unknown"
	}
}
