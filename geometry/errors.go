package geometry

import "errors"

// Mesh validation errors.
var (
	ErrNoStride         = errors.New("geometry: vertex stride is zero")
	ErrNoAttributes     = errors.New("geometry: mesh has no attributes")
	ErrNoPosition       = errors.New("geometry: mesh has no position attribute")
	ErrAttributeRange   = errors.New("geometry: attribute exceeds vertex stride")
	ErrAttributeFormat  = errors.New("geometry: unsupported attribute format")
	ErrVertexDataSize   = errors.New("geometry: vertex data size is not a multiple of the stride")
	ErrIndexDataSize    = errors.New("geometry: index data size is not a multiple of the index size")
	ErrIndexRange       = errors.New("geometry: index out of range")
	ErrTooManyTargets   = errors.New("geometry: too many morph targets")
	ErrInvalidTexture   = errors.New("geometry: invalid texture data")
	ErrUnsupportedIndex = errors.New("geometry: unsupported index component type")
)
