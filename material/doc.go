// Package material describes surface materials: unlit, principled
// (metal/roughness) and custom WGSL materials.
//
// Setters record which property groups changed in a dirty bitmask;
// Commit hands the bits to the renderer and clears them. StructuralKey
// captures everything that changes generated shader code and nothing
// that only changes uniform values.
package material
