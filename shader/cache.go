package shader

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/gogpu/g3d/cache"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/naga"
	"golang.org/x/sync/singleflight"
)

// Validator checks generated WGSL before a module is created.
type Validator func(wgsl string) error

// NagaValidator compiles the source with naga and discards the output.
func NagaValidator(wgsl string) error {
	_, err := naga.Compile(wgsl)
	return err
}

// Config configures a Cache.
type Config struct {
	// Validate runs the validator on every generated shader.
	Validate bool
	// Validator defaults to NagaValidator.
	Validator Validator
}

// DefaultConfig returns a configuration with naga validation enabled.
func DefaultConfig() Config {
	return Config{Validate: true, Validator: NagaValidator}
}

type entry struct {
	stages *rhi.ShaderStages
	err    error
}

// Cache holds the shader permutations built on one render context.
//
// Failed builds are cached too: a permutation that failed to generate,
// validate or compile is logged once and returns nil until the cache is
// cleared. Concurrent requests for the same key share one build.
type Cache struct {
	rc       *rhi.Context
	validate Validator

	entries *cache.Store[Key, *entry]
	group   singleflight.Group

	builds   atomic.Uint64
	failures atomic.Uint64
}

// NewCache creates an empty shader cache on rc.
func NewCache(rc *rhi.Context, cfg Config) *Cache {
	c := &Cache{
		rc:      rc,
		entries: cache.NewStore[Key, *entry](Key.Hash),
	}
	if cfg.Validate {
		c.validate = cfg.Validator
		if c.validate == nil {
			c.validate = NagaValidator
		}
	}
	return c
}

// GetOrBuild returns the shader stages of the material's permutation under
// the feature set, building them on first use. Nil means the permutation
// cannot be built; the draw should be skipped.
func (c *Cache) GetOrBuild(m *material.Material, f FeatureSet) *rhi.ShaderStages {
	if m == nil {
		return nil
	}
	key := KeyFor(m, f)
	if e, ok := c.entries.Get(key); ok {
		return e.stages
	}
	v, _, _ := c.group.Do(key.String(), func() (any, error) {
		if e, ok := c.entries.Get(key); ok {
			return e, nil
		}
		e := c.build(key, m, f)
		c.entries.Set(key, e)
		return e, nil
	})
	return v.(*entry).stages
}

// Err returns the cached build error of a key, or nil.
func (c *Cache) Err(key Key) error {
	if e, ok := c.entries.Get(key); ok {
		return e.err
	}
	return nil
}

func (c *Cache) build(key Key, m *material.Material, f FeatureSet) *entry {
	c.builds.Add(1)
	label := "shader_" + strconv.FormatUint(key.Hash(), 16)

	prog, err := Generate(m, f)
	if err == nil && c.validate != nil {
		if verr := c.validate(prog.Source); verr != nil {
			err = fmt.Errorf("%w: %w", ErrValidation, verr)
		}
	}
	var stages *rhi.ShaderStages
	if err == nil {
		stages, err = c.rc.CreateShaderStages(label, prog.Source, prog.Desc)
	}
	if err != nil {
		c.failures.Add(1)
		slogger().Warn("shader: build failed", "key", key.String(), "err", err)
		return &entry{err: err}
	}
	slogger().Debug("shader: built", "key", key.String(), "label", label, "features", f.String())
	return &entry{stages: stages}
}

// Len returns the number of cached permutations, failed ones included.
func (c *Cache) Len() int { return c.entries.Len() }

// Stats reports cache counters.
type Stats struct {
	Entries  cache.Stats
	Builds   uint64
	Failures uint64
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:  c.entries.Stats(),
		Builds:   c.builds.Load(),
		Failures: c.failures.Load(),
	}
}

// Clear destroys every cached shader and the pipelines built from it.
// Failed permutations are forgotten and will be retried.
func (c *Cache) Clear() {
	for _, e := range c.entries.Clear() {
		if e.stages == nil {
			continue
		}
		c.rc.ReleaseShaderPipelines(e.stages)
		c.rc.DestroyShaderStages(e.stages)
	}
}
