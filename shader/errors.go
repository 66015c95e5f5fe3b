package shader

import "errors"

var (
	// ErrNilMaterial is returned when generating without a material.
	ErrNilMaterial = errors.New("shader: nil material")

	// ErrTooManyMorphTargets is returned when the feature set asks for
	// more morph targets than a mesh can carry.
	ErrTooManyMorphTargets = errors.New("shader: too many morph targets")

	// ErrEmptyCustomShader is returned for a custom material without
	// fragment code.
	ErrEmptyCustomShader = errors.New("shader: custom material has no fragment code")

	// ErrInvalidName is returned for a custom property or texture name
	// that is not a WGSL identifier or collides with a generated one.
	ErrInvalidName = errors.New("shader: invalid custom name")

	// ErrValidation wraps a WGSL validation failure.
	ErrValidation = errors.New("shader: validation failed")
)
