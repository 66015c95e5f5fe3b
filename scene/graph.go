package scene

import "slices"

type slot struct {
	node *Node
	gen  uint32
}

// Graph is the node arena. It is not safe for concurrent use: mutations
// happen between frames on the goroutine that renders.
type Graph struct {
	slots []slot
	free  []uint32
	count int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Create adds a detached node with the given payload (nil for a plain
// transform node).
func (g *Graph) Create(p Payload) NodeID {
	var idx uint32
	if n := len(g.free); n > 0 {
		idx = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		idx = uint32(len(g.slots))
		g.slots = append(g.slots, slot{})
	}
	s := &g.slots[idx]
	s.gen++
	id := NodeID{index: idx, gen: s.gen}
	s.node = newNode(id, p)
	g.count++
	return id
}

// Node returns the node of id, or nil for a stale or zero id.
func (g *Graph) Node(id NodeID) *Node {
	if id.gen == 0 || int(id.index) >= len(g.slots) {
		return nil
	}
	s := g.slots[id.index]
	if s.gen != id.gen {
		return nil
	}
	return s.node
}

// Valid reports whether id addresses a live node.
func (g *Graph) Valid(id NodeID) bool { return g.Node(id) != nil }

// Len returns the number of live nodes.
func (g *Graph) Len() int { return g.count }

// Parent returns the parent of id, zero for roots and invalid ids.
func (g *Graph) Parent(id NodeID) NodeID {
	if n := g.Node(id); n != nil {
		return n.parent
	}
	return NodeID{}
}

// Children returns the children of id.
func (g *Graph) Children(id NodeID) []NodeID {
	if n := g.Node(id); n != nil {
		return n.children
	}
	return nil
}

// Destroy removes the node from the graph and frees its slot. Its
// children become roots.
func (g *Graph) Destroy(id NodeID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	g.RemoveFromGraph(id)
	// Layers reference shared children without owning them.
	for _, s := range g.slots {
		if s.node != nil && s.node.IsLayer() {
			s.node.children = slices.DeleteFunc(s.node.children, func(c NodeID) bool { return c == id })
		}
	}
	g.slots[id.index].node = nil
	g.free = append(g.free, id.index)
	g.count--
}

// AddChild appends child to parent. Unless parent is a layer, the child
// is first removed from its previous parent. Layers never become the
// parent of their children, so a node may belong to several layers.
func (g *Graph) AddChild(parent, child NodeID) error {
	p, c := g.Node(parent), g.Node(child)
	if p == nil || c == nil {
		return ErrInvalidNode
	}
	if parent == child || g.isDescendant(parent, child) {
		return ErrCycle
	}
	if !p.IsLayer() {
		if c.parent != parent && g.Valid(c.parent) {
			g.RemoveChild(c.parent, child)
		}
		c.parent = parent
	}
	if !slices.Contains(p.children, child) {
		p.children = append(p.children, child)
	}
	g.MarkDirty(child, true)
	return nil
}

// isDescendant reports whether id is in the subtree below root.
func (g *Graph) isDescendant(id, root NodeID) bool {
	found := false
	g.Walk(root, func(cur NodeID, _ *Node) bool {
		if cur == id {
			found = true
		}
		return !found
	})
	return found && id != root
}

// RemoveChild detaches child from parent. For a non-layer parent nothing
// happens unless child is its child. The child's parent is cleared only
// when it is parent.
func (g *Graph) RemoveChild(parent, child NodeID) {
	p, c := g.Node(parent), g.Node(child)
	if p == nil || c == nil {
		return
	}
	if !p.IsLayer() && c.parent != parent {
		return
	}
	p.children = slices.DeleteFunc(p.children, func(id NodeID) bool { return id == child })
	if c.parent == parent {
		c.parent = NodeID{}
		g.MarkDirty(child, true)
	}
}

// RemoveFromGraph detaches the node from its parent and orphans its
// children. Orphans are not reattached anywhere.
func (g *Graph) RemoveFromGraph(id NodeID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	if g.Valid(n.parent) {
		g.RemoveChild(n.parent, id)
	}
	n.parent = NodeID{}
	for _, cid := range n.children {
		if c := g.Node(cid); c != nil && c.parent == id {
			c.parent = NodeID{}
			g.MarkDirty(cid, true)
		}
	}
	n.children = nil
	g.MarkDirty(id, true)
}

// Walk visits the subtree at root in pre-order. Returning false from fn
// skips the node's children.
func (g *Graph) Walk(root NodeID, fn func(NodeID, *Node) bool) {
	n := g.Node(root)
	if n == nil {
		return
	}
	if !fn(root, n) {
		return
	}
	for _, c := range n.children {
		g.Walk(c, fn)
	}
}

// SetInstanceRoot sets the instance root of id: the node itself or one of
// its ancestors. The zero id clears it.
func (g *Graph) SetInstanceRoot(id, root NodeID) error {
	n := g.Node(id)
	if n == nil {
		return ErrInvalidNode
	}
	if !root.IsZero() && root != id && !g.isAncestor(root, id) {
		return ErrInstanceRoot
	}
	n.instanceRoot = root
	g.MarkDirty(id, true)
	return nil
}

func (g *Graph) isAncestor(anc, id NodeID) bool {
	for cur := g.Parent(id); g.Valid(cur); cur = g.Parent(cur) {
		if cur == anc {
			return true
		}
	}
	return false
}
