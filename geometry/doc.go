// Package geometry holds CPU-side mesh and texture data and the cache
// that uploads it to GPU buffers and textures.
//
// A Mesh is application-owned vertex and index data plus a generation
// number that increases on every change. BufferCache rebuilds the GPU
// copy of a mesh only when the mesh is dirty or its generation differs
// from the cached one; everything else is a map lookup.
//
// Index data is always uploaded as 32-bit indices, whatever the source
// component type.
package geometry
