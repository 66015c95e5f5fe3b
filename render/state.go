package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/g3d/scene"
)

// State is the progress of one renderable through a frame.
type State uint8

// Renderable states, in order.
const (
	Unevaluated State = iota
	BoundsComputed
	ResourcesResolved
	PipelinePrepared
	Drawn
	Skipped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unevaluated:
		return "unevaluated"
	case BoundsComputed:
		return "bounds-computed"
	case ResourcesResolved:
		return "resources-resolved"
	case PipelinePrepared:
		return "pipeline-prepared"
	case Drawn:
		return "drawn"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// SkipReason says why a renderable was skipped.
type SkipReason uint8

// Skip reasons.
const (
	SkipNone SkipReason = iota
	SkipNoMesh
	SkipCulled
	SkipNoMaterial
	SkipNoShader
	SkipBindings
	SkipPipeline
	SkipEmpty
)

var skipNames = [...]string{
	SkipNone:       "none",
	SkipNoMesh:     "mesh unavailable",
	SkipCulled:     "culled",
	SkipNoMaterial: "no material",
	SkipNoShader:   "shader unavailable",
	SkipBindings:   "bindings unavailable",
	SkipPipeline:   "pipeline unavailable",
	SkipEmpty:      "empty subset",
}

// String returns the reason text.
func (r SkipReason) String() string {
	if int(r) < len(skipNames) {
		return skipNames[r]
	}
	return "unknown"
}

// renderable is one model subset in one pass.
type renderable struct {
	node   *scene.Node
	model  *scene.Model
	subset int

	state  State
	reason SkipReason

	gpu      *geometry.GPUMesh
	mat      *material.Material
	mvp      mgl32.Mat4
	distance float32

	stages   *rhi.ShaderStages
	bindSet  *rhi.BindSet
	pipeline *rhi.GraphicsPipeline

	// Depth-only draw recorded ahead of the opaque draws, if any.
	depthSet      *rhi.BindSet
	depthPipeline *rhi.GraphicsPipeline
}

// advance moves the renderable to next.
func (r *renderable) advance(next State) { r.state = next }

// skip marks the renderable skipped with reason.
func (r *renderable) skip(reason SkipReason) {
	r.state = Skipped
	r.reason = reason
}
