// Package render turns a scene graph into GPU draw calls.
//
// A FrameRenderer renders one frame as a list of layer passes. Each pass
// begins a HAL render pass on its Target, clears it with the layer's clear
// color, and draws every active model subset below the layer with the
// layer's camera and lights.
//
// # Renderables
//
// Every model subset is a renderable that moves through fixed states:
//
//	Unevaluated -> BoundsComputed -> ResourcesResolved -> PipelinePrepared -> Drawn
//
// A renderable that cannot advance (mesh not uploaded, no material, shader
// generation failed, culled) becomes Skipped. Skipped renderables never
// abort the frame.
//
// # Frame abandonment
//
// When the context passed to RenderFrame is cancelled, or a target reports
// hal.ErrSurfaceLost, the command encoder is discarded, nothing is
// submitted, and the pipelines created through the pass's render pass
// descriptor are invalidated. The next frame rebuilds them.
//
// # Targets
//
//   - TextureTarget: offscreen color (and optional depth) textures
//   - SurfaceTarget: a view supplied per frame by the host application
package render
