package scene

import "github.com/go-gl/mathgl/mgl32"

// ProjectionType selects the camera projection.
type ProjectionType uint8

// Projection types.
const (
	Perspective ProjectionType = iota
	Orthographic
	CustomProjection
)

// Camera projects a layer's content. It looks along the node's -Z axis.
type Camera struct {
	Projection ProjectionType
	// FieldOfView is the vertical field of view in degrees.
	FieldOfView float32
	Near        float32
	Far         float32
	// Height is the visible vertical extent of an orthographic camera.
	Height float32
	// Custom is the projection matrix of a CustomProjection camera.
	Custom mgl32.Mat4
}

// NewPerspectiveCamera returns a perspective camera.
func NewPerspectiveCamera(fovDegrees, near, far float32) *Camera {
	return &Camera{Projection: Perspective, FieldOfView: fovDegrees, Near: near, Far: far}
}

// NewOrthographicCamera returns an orthographic camera.
func NewOrthographicCamera(height, near, far float32) *Camera {
	return &Camera{Projection: Orthographic, Height: height, Near: near, Far: far}
}

// Kind implements Payload.
func (*Camera) Kind() Kind { return KindCamera }

// zeroToOneDepth remaps clip-space depth from [-w, w] to [0, w].
var zeroToOneDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// ProjectionMatrix returns the projection for a viewport aspect ratio,
// with depth in [0, 1].
func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	switch c.Projection {
	case Orthographic:
		h := c.Height / 2
		w := h * aspect
		return zeroToOneDepth.Mul4(mgl32.Ortho(-w, w, -h, h, c.Near, c.Far))
	case CustomProjection:
		return c.Custom
	default:
		return zeroToOneDepth.Mul4(mgl32.Perspective(mgl32.DegToRad(c.FieldOfView), aspect, c.Near, c.Far))
	}
}

// ViewProjection returns projection · view of a camera node. It reports
// false when id is not a camera.
func (g *Graph) ViewProjection(id NodeID, aspect float32) (mgl32.Mat4, bool) {
	n := g.Node(id)
	if n == nil {
		return mgl32.Ident4(), false
	}
	cam, ok := n.payload.(*Camera)
	if !ok {
		return mgl32.Ident4(), false
	}
	return cam.ProjectionMatrix(aspect).Mul4(n.global.Inv()), true
}
