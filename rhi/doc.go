// Package rhi is the render hardware interface layer of g3d: a render
// context that owns GPU resources and the caches which turn a shader
// pipeline plus fixed-function state into concrete HAL objects.
//
// The context sits on top of [github.com/gogpu/wgpu/hal] and works with
// any HAL backend (Vulkan, Metal, DX12, GLES, software, noop).
//
// # Caches
//
// All caches are explicit-eviction only:
//
//   - graphics pipelines, keyed by (GraphicsPipelineState, render pass
//     compatibility class, binding layout compatibility class)
//   - binding sets, keyed by exact content
//   - binding layouts, keyed by compatibility class
//   - samplers, keyed by SamplerDescription
//   - dummy textures (2D and cube)
//   - uniform buffer sets, keyed by UniformBufferSetKey
//   - compute pipelines, keyed by (shader, binding layout)
//
// Pipelines are evicted when a RenderPassDescriptor they were obtained
// through is destroyed.
//
// # Bind group realization
//
// A BindingList is realized as two HAL bind groups. Group 0 holds uniform
// and storage buffers at their slot numbers. Group 1 holds sampled
// textures: every texture element k (ordered by slot, then array element)
// uses binding 2k for the texture view and 2k+1 for its sampler. Shader
// generators use FlattenSamplers to emit matching declarations.
package rhi
