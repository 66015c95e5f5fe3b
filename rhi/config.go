package rhi

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Renderer limits.
const (
	// MaxLights is the maximum number of non-area lights in the lights uniform block.
	MaxLights = 15

	// MaxAreaLights is the maximum number of area lights in the area lights uniform block.
	MaxAreaLights = 15

	// MaxShadowMapsPerType is the shadow map array dimension per shadow map type.
	MaxShadowMapsPerType = 4

	// ShadowMapTypeCount is the number of shadow map types (2D and cube).
	ShadowMapTypeCount = 2
)

// Config configures a render Context.
type Config struct {
	// Label prefixes debug labels of GPU objects.
	Label string

	// ColorFormat is the main pass color attachment format.
	ColorFormat gputypes.TextureFormat

	// DepthFormat is the main pass depth attachment format.
	// TextureFormatUndefined disables depth.
	DepthFormat gputypes.TextureFormat

	// SampleCount is the main pass MSAA sample count (1, 2, 4, 8).
	SampleCount uint32

	// MaxLights caps the lights written per draw. At most MaxLights.
	MaxLights int

	// ShadowMapsPerType is the declared shadow map array dimension.
	ShadowMapsPerType int
}

// DefaultConfig returns the default context configuration.
func DefaultConfig() Config {
	return Config{
		Label:             "g3d",
		ColorFormat:       gputypes.TextureFormatBGRA8Unorm,
		DepthFormat:       gputypes.TextureFormatDepth24PlusStencil8,
		SampleCount:       1,
		MaxLights:         MaxLights,
		ShadowMapsPerType: MaxShadowMapsPerType,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.SampleCount {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("%w: sample count %d", ErrInvalidConfig, c.SampleCount)
	}
	if c.MaxLights < 0 || c.MaxLights > MaxLights {
		return fmt.Errorf("%w: max lights %d (limit %d)", ErrInvalidConfig, c.MaxLights, MaxLights)
	}
	if c.ShadowMapsPerType < 1 || c.ShadowMapsPerType > MaxShadowMapsPerType {
		return fmt.Errorf("%w: shadow maps per type %d", ErrInvalidConfig, c.ShadowMapsPerType)
	}
	if c.ColorFormat == gputypes.TextureFormatUndefined {
		return fmt.Errorf("%w: color format undefined", ErrInvalidConfig)
	}
	return nil
}
