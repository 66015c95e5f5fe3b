// Package scene is the retained-mode 3D scene graph.
//
// Nodes live in a Graph arena and are addressed by NodeID, a slot index
// plus a generation, so an id of a destroyed node never resolves again.
// Each node carries a local transform, opacity and activity flags and an
// optional payload (model, light, camera, skin, joint or layer).
//
// Mutations mark nodes dirty; CalculateGlobalVariables recomputes global
// transforms lazily, parents first. Update walks a subtree and refreshes
// every node once per frame.
//
// Layers are roots of a render pass. Adding a node to a layer does not
// change the node's parent, so several layers may share children.
package scene
