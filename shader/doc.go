// Package shader generates WGSL shader permutations for materials and
// caches the compiled shader stages.
//
// A permutation is identified by a Key: the shader source identity, the
// feature set derived from the mesh and the pass, and the structural key
// of the material. Uniform values never participate, so materials that
// differ only in colors or factors share one shader.
//
// The generator emits a single module with vs_main and fs_main entry
// points and returns its reflection (vertex inputs, uniform blocks and
// combined image samplers) for the binding layer in package rhi.
package shader
