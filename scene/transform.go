package scene

import "github.com/go-gl/mathgl/mgl32"

// MarkDirty flags the node for recompute. transformDirty is sticky until
// the next recompute. A node that was already dirty stops the propagation;
// otherwise every child is marked with the same flag.
func (g *Graph) MarkDirty(id NodeID, transformDirty bool) {
	n := g.Node(id)
	if n == nil {
		return
	}
	if transformDirty {
		n.flags |= FlagTransformDirty
	}
	if n.has(FlagDirty) {
		return
	}
	n.flags |= FlagDirty
	for _, c := range n.children {
		g.MarkDirty(c, transformDirty)
	}
}

// CalculateGlobalVariables recomputes the global state of a dirty node,
// parents first. It returns true when the node was recomputed and is
// active; a clean node returns false.
func (g *Graph) CalculateGlobalVariables(id NodeID) bool {
	n := g.Node(id)
	if n == nil || !n.has(FlagDirty) {
		return false
	}
	n.flags &^= FlagDirty
	if n.has(FlagTransformDirty) {
		n.flags &^= FlagTransformDirty
		n.local = n.calculateLocal()
		n.global = n.local
	}
	n.globalOpacity = n.localOpacity

	p := g.Node(n.parent)
	if p == nil {
		n.global = n.local
		n.set(FlagGloballyActive, n.has(FlagActive))
		n.set(FlagGloballyPickable, n.has(FlagLocallyPickable))
		n.localInstance = n.local
		n.globalInstance = mgl32.Ident4()
		return n.has(FlagActive)
	}

	g.CalculateGlobalVariables(n.parent)
	if p.IsLayer() {
		n.global = n.local
	} else {
		n.globalOpacity *= p.globalOpacity
		if n.has(FlagIgnoreParentTransform) {
			n.global = n.local
		} else {
			n.global = p.global.Mul4(n.local)
		}
	}

	switch root := g.Node(n.instanceRoot); {
	case n.instanceRoot == id:
		n.globalInstance = p.global
		n.localInstance = n.local
	case root != nil:
		n.globalInstance = root.globalInstance
		li := n.local
		for cur := p; cur != nil && cur.id != n.instanceRoot; cur = g.Node(cur.parent) {
			li = cur.local.Mul4(li)
		}
		n.localInstance = root.localInstance.Mul4(li)
	default:
		t := n.local.Col(3).Vec3()
		n.localInstance = n.local
		n.localInstance.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
		n.globalInstance = p.global.Mul4(mgl32.Translate3D(t[0], t[1], t[2]))
	}

	n.set(FlagGloballyActive, n.has(FlagActive) && p.has(FlagGloballyActive))
	n.set(FlagGloballyPickable, n.has(FlagLocallyPickable) || p.has(FlagGloballyPickable))
	return n.has(FlagActive)
}

// Update recomputes every dirty node of the subtree at root. It reports
// whether any active node changed.
func (g *Graph) Update(root NodeID) bool {
	changed := false
	g.Walk(root, func(id NodeID, _ *Node) bool {
		if g.CalculateGlobalVariables(id) {
			changed = true
		}
		return true
	})
	return changed
}

func (g *Graph) mutate(id NodeID, transform bool, fn func(*Node)) {
	n := g.Node(id)
	if n == nil {
		return
	}
	fn(n)
	g.MarkDirty(id, transform)
}

// SetPosition sets the local position.
func (g *Graph) SetPosition(id NodeID, v mgl32.Vec3) {
	g.mutate(id, true, func(n *Node) { n.position = v })
}

// SetRotation sets the local rotation. The quaternion is normalized.
func (g *Graph) SetRotation(id NodeID, q mgl32.Quat) {
	g.mutate(id, true, func(n *Node) { n.rotation = q.Normalize() })
}

// SetEulerRotation sets the rotation from Euler angles in degrees, applied
// as roll about Z, then pitch about X, then yaw about Y.
func (g *Graph) SetEulerRotation(id NodeID, degrees mgl32.Vec3) {
	q := mgl32.QuatRotate(mgl32.DegToRad(degrees[1]), mgl32.Vec3{0, 1, 0}).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(degrees[0]), mgl32.Vec3{1, 0, 0})).
		Mul(mgl32.QuatRotate(mgl32.DegToRad(degrees[2]), mgl32.Vec3{0, 0, 1}))
	g.SetRotation(id, q)
}

// SetScale sets the local scale.
func (g *Graph) SetScale(id NodeID, v mgl32.Vec3) {
	g.mutate(id, true, func(n *Node) { n.scale = v })
}

// SetPivot sets the pivot point.
func (g *Graph) SetPivot(id NodeID, v mgl32.Vec3) {
	g.mutate(id, true, func(n *Node) { n.pivot = v })
}

// SetLocalTransform decomposes m into position, rotation and scale. The
// pivot is cleared and a zero scale axis becomes 1.
func (g *Graph) SetLocalTransform(id NodeID, m mgl32.Mat4) {
	g.mutate(id, true, func(n *Node) {
		sx, sy, sz := mgl32.Extract3DScale(m)
		scale := mgl32.Vec3{sx, sy, sz}
		for i := range scale {
			if scale[i] == 0 {
				scale[i] = 1
			}
		}
		rot := m
		for c := 0; c < 3; c++ {
			rot.SetCol(c, m.Col(c).Mul(1/scale[c]))
		}
		rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})

		n.position = m.Col(3).Vec3()
		n.rotation = mgl32.Mat4ToQuat(rot).Normalize()
		n.scale = scale
		n.pivot = mgl32.Vec3{}
	})
}

// LookAt rotates the node so that its -Z axis points at target.
func (g *Graph) LookAt(id NodeID, target, up mgl32.Vec3) {
	n := g.Node(id)
	if n == nil {
		return
	}
	view := mgl32.LookAtV(n.position, target, up)
	g.SetRotation(id, mgl32.Mat4ToQuat(view.Inv()))
}

// SetOpacity sets the local opacity.
func (g *Graph) SetOpacity(id NodeID, v float32) {
	g.mutate(id, false, func(n *Node) { n.localOpacity = v })
}

// SetActive sets the node's own activity.
func (g *Graph) SetActive(id NodeID, on bool) {
	g.mutate(id, false, func(n *Node) { n.set(FlagActive, on) })
}

// SetPickable sets the node's own pickability.
func (g *Graph) SetPickable(id NodeID, on bool) {
	g.mutate(id, false, func(n *Node) { n.set(FlagLocallyPickable, on) })
}

// SetIgnoreParentTransform makes the global transform equal the local one.
func (g *Graph) SetIgnoreParentTransform(id NodeID, on bool) {
	g.mutate(id, true, func(n *Node) { n.set(FlagIgnoreParentTransform, on) })
}
