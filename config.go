package g3d

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/g3d/render"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/g3d/shader"
	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("g3d: invalid config")

// Config configures a Renderer. It maps to a TOML file:
//
//	label = "editor"
//	color_format = "BGRA8Unorm"
//	depth_format = "Depth24PlusStencil8"
//	sample_count = 1
//	max_lights = 15
//	shadow_maps_per_type = 4
//	clear_color = [0.0, 0.0, 0.0, 1.0]
//	validate_shaders = true
//	cull = true
type Config struct {
	// Label prefixes the debug labels of GPU objects.
	Label string `toml:"label"`

	// ColorFormat and DepthFormat are gputypes texture format names,
	// matched case-insensitively. An empty or "Undefined" depth format
	// renders without depth.
	ColorFormat string `toml:"color_format"`
	DepthFormat string `toml:"depth_format"`

	SampleCount       uint32 `toml:"sample_count"`
	MaxLights         int    `toml:"max_lights"`
	ShadowMapsPerType int    `toml:"shadow_maps_per_type"`

	// ClearColor is the clear color of layers created by Renderer.NewLayer.
	ClearColor [4]float32 `toml:"clear_color"`

	// ValidateShaders runs naga on every generated shader.
	ValidateShaders bool `toml:"validate_shaders"`

	// Cull enables frustum culling.
	Cull bool `toml:"cull"`

	// DepthPrepass draws opaque geometry depth-only before shading it.
	DepthPrepass bool `toml:"depth_prepass"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	rc := rhi.DefaultConfig()
	return Config{
		Label:             rc.Label,
		ColorFormat:       rc.ColorFormat.String(),
		DepthFormat:       rc.DepthFormat.String(),
		SampleCount:       rc.SampleCount,
		MaxLights:         rc.MaxLights,
		ShadowMapsPerType: rc.ShadowMapsPerType,
		ClearColor:        [4]float32{0, 0, 0, 1},
		ValidateShaders:   true,
		Cull:              true,
	}
}

// LoadConfig reads a TOML configuration file. Keys missing from the file
// keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("g3d: load config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a TOML configuration over DefaultConfig and
// validates it. Unknown keys are an error.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.TrimSpace(strict.String()))
		}
		return Config{}, fmt.Errorf("g3d: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	_, err := c.rhiConfig()
	if err != nil {
		return err
	}
	for _, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear color %v", ErrInvalidConfig, c.ClearColor)
		}
	}
	return nil
}

func (c Config) rhiConfig() (rhi.Config, error) {
	color, err := parseFormat(c.ColorFormat)
	if err != nil {
		return rhi.Config{}, err
	}
	depth := gputypes.TextureFormatUndefined
	if c.DepthFormat != "" {
		if depth, err = parseFormat(c.DepthFormat); err != nil {
			return rhi.Config{}, err
		}
	}
	if depth != gputypes.TextureFormatUndefined && !depth.HasDepth() {
		return rhi.Config{}, fmt.Errorf("%w: %s is not a depth format", ErrInvalidConfig, depth)
	}
	if color.IsDepthStencil() {
		return rhi.Config{}, fmt.Errorf("%w: %s is not a color format", ErrInvalidConfig, color)
	}
	rc := rhi.Config{
		Label:             c.Label,
		ColorFormat:       color,
		DepthFormat:       depth,
		SampleCount:       c.SampleCount,
		MaxLights:         c.MaxLights,
		ShadowMapsPerType: c.ShadowMapsPerType,
	}
	if err := rc.Validate(); err != nil {
		return rhi.Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return rc, nil
}

func (c Config) renderConfig() render.Config {
	return render.Config{MaxLights: c.MaxLights, Cull: c.Cull, DepthPrepass: c.DepthPrepass}
}

func (c Config) shaderConfig() shader.Config {
	cfg := shader.DefaultConfig()
	cfg.Validate = c.ValidateShaders
	return cfg
}

// parseFormat resolves a texture format by its gputypes name.
func parseFormat(name string) (gputypes.TextureFormat, error) {
	for f := gputypes.TextureFormatUndefined; f <= gputypes.TextureFormatASTC12x12UnormSrgb; f++ {
		if strings.EqualFold(f.String(), name) {
			return f, nil
		}
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("%w: unknown texture format %q", ErrInvalidConfig, name)
}
