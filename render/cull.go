package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/geometry"
)

// outsideFrustum reports whether the box, mapped by mvp into clip space,
// lies entirely outside one clip plane. Empty boxes are never culled.
// Depth uses the [0, w] range.
func outsideFrustum(b geometry.Bounds, mvp mgl32.Mat4) bool {
	if b.IsEmpty() {
		return false
	}
	var outside [6]int
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
		p := mvp.Mul4x1(c.Vec4(1))
		if p[0] < -p[3] {
			outside[0]++
		}
		if p[0] > p[3] {
			outside[1]++
		}
		if p[1] < -p[3] {
			outside[2]++
		}
		if p[1] > p[3] {
			outside[3]++
		}
		if p[2] < 0 {
			outside[4]++
		}
		if p[2] > p[3] {
			outside[5]++
		}
	}
	for _, n := range outside {
		if n == 8 {
			return true
		}
	}
	return false
}
