package rhi

import "errors"

// Sentinel errors for the render context.
var (
	// ErrNilDevice is returned when a context is created without a HAL device or queue.
	ErrNilDevice = errors.New("rhi: nil device or queue")

	// ErrProviderNotHAL is returned when a device provider does not expose HAL types.
	ErrProviderNotHAL = errors.New("rhi: provider does not expose HAL device and queue")

	// ErrContextClosed is returned when the context has been closed.
	ErrContextClosed = errors.New("rhi: context closed")

	// ErrNilShader is returned when a pipeline is requested without shader stages.
	ErrNilShader = errors.New("rhi: nil shader stages")

	// ErrRenderPassDestroyed is returned when a destroyed render pass descriptor is used.
	ErrRenderPassDestroyed = errors.New("rhi: render pass descriptor destroyed")

	// ErrTooManyAttributes is returned when an input layout exceeds MaxVertexAttributes.
	ErrTooManyAttributes = errors.New("rhi: too many vertex attributes")

	// ErrMissingUniformBuffer is returned when a uniform buffer set lacks a required buffer.
	ErrMissingUniformBuffer = errors.New("rhi: missing uniform buffer")

	// ErrInvalidTextureData is returned when texture upload data does not match the texture size.
	ErrInvalidTextureData = errors.New("rhi: texture data size mismatch")

	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("rhi: invalid config")
)
