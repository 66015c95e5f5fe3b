package scene

import "github.com/gogpu/g3d/geometry"

// MeshLoader supplies the GPU copy of a mesh, whose bounds are used for
// model nodes. geometry.BufferCache implements it.
type MeshLoader interface {
	LoadOrUpdate(*geometry.Mesh) *geometry.GPUMesh
}

// Bounds returns the bounds of a node in its own local space: the mesh
// bounds of a model, united with the bounds of every child mapped through
// the child's local transform as of the last Update. Meshes that fail to
// load contribute nothing.
func (g *Graph) Bounds(id NodeID, meshes MeshLoader) geometry.Bounds {
	n := g.Node(id)
	if n == nil {
		return geometry.EmptyBounds()
	}
	b := geometry.EmptyBounds()
	if m, ok := n.payload.(*Model); ok && m.Mesh != nil && meshes != nil {
		if gm := meshes.LoadOrUpdate(m.Mesh); gm != nil {
			b.Union(gm.Bounds)
		}
	}
	for _, cid := range n.children {
		c := g.Node(cid)
		if c == nil {
			continue
		}
		b.Union(g.Bounds(cid, meshes).Transform(c.local))
	}
	return b
}
