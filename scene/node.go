package scene

import "github.com/go-gl/mathgl/mgl32"

// NodeID addresses a node in a Graph. The zero value addresses nothing.
type NodeID struct {
	index uint32
	gen   uint32
}

// IsZero reports whether id is the zero id.
func (id NodeID) IsZero() bool { return id.gen == 0 }

// Key packs the id into a uint64 for use in cache keys.
func (id NodeID) Key() uint64 { return uint64(id.index)<<32 | uint64(id.gen) }

// NodeIDFromKey reverses Key.
func NodeIDFromKey(k uint64) NodeID { return NodeID{index: uint32(k >> 32), gen: uint32(k)} }

// Flags are the node state bits.
type Flags uint16

// Node flags.
const (
	FlagDirty Flags = 1 << iota
	FlagTransformDirty
	FlagActive
	FlagGloballyActive
	FlagLocallyPickable
	FlagGloballyPickable
	FlagIgnoreParentTransform
)

// Node is a scene graph element. Fields are read through accessors and
// changed through Graph setters so that dirty state stays consistent.
type Node struct {
	id      NodeID
	payload Payload
	flags   Flags

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	pivot    mgl32.Vec3

	localOpacity  float32
	globalOpacity float32

	local          mgl32.Mat4
	global         mgl32.Mat4
	localInstance  mgl32.Mat4
	globalInstance mgl32.Mat4

	parent       NodeID
	children     []NodeID
	instanceRoot NodeID
}

func newNode(id NodeID, p Payload) *Node {
	return &Node{
		id:             id,
		payload:        p,
		flags:          FlagDirty | FlagTransformDirty | FlagActive,
		rotation:       mgl32.QuatIdent(),
		scale:          mgl32.Vec3{1, 1, 1},
		localOpacity:   1,
		globalOpacity:  1,
		local:          mgl32.Ident4(),
		global:         mgl32.Ident4(),
		localInstance:  mgl32.Ident4(),
		globalInstance: mgl32.Ident4(),
	}
}

func (n *Node) has(f Flags) bool { return n.flags&f != 0 }

func (n *Node) set(f Flags, on bool) {
	if on {
		n.flags |= f
	} else {
		n.flags &^= f
	}
}

// ID returns the node id.
func (n *Node) ID() NodeID { return n.id }

// Payload returns the node payload, nil for a plain transform node.
func (n *Node) Payload() Payload { return n.payload }

// Kind returns the node kind.
func (n *Node) Kind() Kind {
	if n.payload == nil {
		return KindNode
	}
	return n.payload.Kind()
}

// IsLayer reports whether the node is a layer.
func (n *Node) IsLayer() bool { return n.Kind() == KindLayer }

// Flags returns the state bits.
func (n *Node) Flags() Flags { return n.flags }

// Dirty reports whether global state needs recomputing.
func (n *Node) Dirty() bool { return n.has(FlagDirty) }

// TransformDirty reports whether the local transform needs recomputing.
func (n *Node) TransformDirty() bool { return n.has(FlagTransformDirty) }

// Active reports the node's own activity.
func (n *Node) Active() bool { return n.has(FlagActive) }

// GloballyActive reports whether the node and all its ancestors are active.
func (n *Node) GloballyActive() bool { return n.has(FlagGloballyActive) }

// Pickable reports the node's own pickability.
func (n *Node) Pickable() bool { return n.has(FlagLocallyPickable) }

// GloballyPickable reports whether the node or any ancestor is pickable.
func (n *Node) GloballyPickable() bool { return n.has(FlagGloballyPickable) }

// IgnoreParentTransform reports whether the global transform skips the
// parent's.
func (n *Node) IgnoreParentTransform() bool { return n.has(FlagIgnoreParentTransform) }

// Position returns the local position.
func (n *Node) Position() mgl32.Vec3 { return n.position }

// Rotation returns the local rotation.
func (n *Node) Rotation() mgl32.Quat { return n.rotation }

// Scale returns the local scale.
func (n *Node) Scale() mgl32.Vec3 { return n.scale }

// Pivot returns the pivot point in local units.
func (n *Node) Pivot() mgl32.Vec3 { return n.pivot }

// LocalOpacity returns the node's own opacity.
func (n *Node) LocalOpacity() float32 { return n.localOpacity }

// GlobalOpacity returns the opacity multiplied down the parent chain.
func (n *Node) GlobalOpacity() float32 { return n.globalOpacity }

// LocalTransform returns the local transform as of the last recompute.
func (n *Node) LocalTransform() mgl32.Mat4 { return n.local }

// GlobalTransform returns the global transform as of the last recompute.
func (n *Node) GlobalTransform() mgl32.Mat4 { return n.global }

// LocalInstanceTransform returns the transform relative to the instance
// root.
func (n *Node) LocalInstanceTransform() mgl32.Mat4 { return n.localInstance }

// GlobalInstanceTransform returns the global transform of the instance
// frame.
func (n *Node) GlobalInstanceTransform() mgl32.Mat4 { return n.globalInstance }

// GlobalPosition returns the translation of the global transform.
func (n *Node) GlobalPosition() mgl32.Vec3 { return n.global.Col(3).Vec3() }

// GlobalDirection returns the normalized global -Z axis.
func (n *Node) GlobalDirection() mgl32.Vec3 {
	d := n.global.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3()
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// Parent returns the parent id, zero for roots.
func (n *Node) Parent() NodeID { return n.parent }

// Children returns the child ids. The slice must not be modified.
func (n *Node) Children() []NodeID { return n.children }

// InstanceRoot returns the instance root id, zero when unset.
func (n *Node) InstanceRoot() NodeID { return n.instanceRoot }

// calculateLocal returns T(position) · R(rotation) · T(-pivot*scale) · S(scale).
func (n *Node) calculateLocal() mgl32.Mat4 {
	p := n.position
	s := n.scale
	pv := mgl32.Vec3{-n.pivot[0] * s[0], -n.pivot[1] * s[1], -n.pivot[2] * s[2]}
	return mgl32.Translate3D(p[0], p[1], p[2]).
		Mul4(n.rotation.Mat4()).
		Mul4(mgl32.Translate3D(pv[0], pv[1], pv[2])).
		Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}
