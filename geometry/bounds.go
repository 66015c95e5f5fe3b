package geometry

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is an axis-aligned bounding box. The zero value is a box at the
// origin; EmptyBounds returns a box that contains nothing.
type Bounds struct {
	Min, Max mgl32.Vec3
}

// EmptyBounds returns an inverted box that any Include turns valid.
func EmptyBounds() Bounds {
	inf := math32.Inf(1)
	return Bounds{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no point.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Include grows the box to contain p.
func (b *Bounds) Include(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// Union grows the box to contain o. Empty boxes are ignored.
func (b *Bounds) Union(o Bounds) {
	if o.IsEmpty() {
		return
	}
	b.Include(o.Min)
	b.Include(o.Max)
}

// Center returns the box center.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half size of the box.
func (b Bounds) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Transform returns the box containing the eight transformed corners.
func (b Bounds) Transform(m mgl32.Mat4) Bounds {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBounds()
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		out.Include(mgl32.TransformCoordinate(c, m))
	}
	return out
}
