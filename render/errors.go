package render

import "errors"

// Sentinel errors for frame rendering.
var (
	// ErrNilContext is returned when a renderer is created without a render context.
	ErrNilContext = errors.New("render: nil render context")

	// ErrNotLayer is returned when a pass names a node that is not a layer.
	ErrNotLayer = errors.New("render: pass root is not a layer")

	// ErrNoCamera is returned when a layer has no usable camera.
	ErrNoCamera = errors.New("render: layer has no camera")

	// ErrNilTarget is returned when a pass has no target.
	ErrNilTarget = errors.New("render: nil target")

	// ErrNoDepthShader is logged when a depth-only permutation cannot be
	// built; the renderable is then drawn without a depth prepass.
	ErrNoDepthShader = errors.New("render: depth shader unavailable")

	// ErrFrameAbandoned wraps the cause of an abandoned frame.
	ErrFrameAbandoned = errors.New("render: frame abandoned")
)
