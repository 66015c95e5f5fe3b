package scene

import "errors"

var (
	// ErrInvalidNode is returned for a stale or zero NodeID.
	ErrInvalidNode = errors.New("scene: invalid node")

	// ErrCycle is returned when an AddChild would make a node its own
	// descendant.
	ErrCycle = errors.New("scene: cycle in node graph")

	// ErrInstanceRoot is returned when an instance root is neither the
	// node itself nor one of its ancestors.
	ErrInstanceRoot = errors.New("scene: instance root must be the node or an ancestor")
)
