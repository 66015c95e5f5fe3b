package rhi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/g3d/cache"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Context owns the HAL device for one rendering surface and every cache
// built on it. Its lifetime spans the surface lifetime.
//
// Context is safe for concurrent use; the frame renderer drives it from a
// single goroutine, but cache lookups are atomic insert-if-absent.
type Context struct {
	device hal.Device
	queue  hal.Queue
	cfg    Config

	nextID atomic.Uint64

	samplers    *cache.Store[SamplerDescription, *Sampler]
	layouts     *cache.Store[string, *BindingLayout]
	bindSets    *cache.Store[string, *BindSet]
	pipelines   *cache.Store[PipelineKey, *GraphicsPipeline]
	uniformSets *cache.Store[UniformBufferSetKey, *UniformBufferSet]

	mu     sync.Mutex // guards closed and pipeline refs
	closed bool

	dummyMu sync.Mutex
	dummies [2]*Texture

	pipelinesCreated atomic.Uint64
	pipelinesEvicted atomic.Uint64
}

// NewContext creates a render context on an open HAL device.
func NewContext(device hal.Device, queue hal.Queue, cfg Config) (*Context, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Context{
		device:      device,
		queue:       queue,
		cfg:         cfg,
		samplers:    cache.NewStore[SamplerDescription, *Sampler](SamplerDescription.Hash),
		layouts:     cache.NewStore[string, *BindingLayout](cache.StringHasher),
		bindSets:    cache.NewStore[string, *BindSet](cache.StringHasher),
		pipelines:   cache.NewStore[PipelineKey, *GraphicsPipeline](PipelineKey.Hash),
		uniformSets: cache.NewStore[UniformBufferSetKey, *UniformBufferSet](UniformBufferSetKey.Hash),
	}

	slogger().Info("rhi: context created",
		"label", cfg.Label,
		"color", cfg.ColorFormat.String(),
		"depth", cfg.DepthFormat.String(),
		"samples", cfg.SampleCount)
	return c, nil
}

// NewContextFromProvider creates a render context on a device shared by
// an external provider (e.g. a gogpu window). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
// The provider's surface format overrides cfg.ColorFormat.
func NewContextFromProvider(provider gpucontext.DeviceProvider, cfg Config) (*Context, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrProviderNotHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrProviderNotHAL)
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		cfg.ColorFormat = f
	}

	info := provider.AdapterInfo()
	slogger().Info("rhi: using shared device", "adapter", info.Name, "type", info.Type.String())
	return NewContext(device, queue, cfg)
}

// Device returns the HAL device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the HAL queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// Config returns the context configuration.
func (c *Context) Config() Config { return c.cfg }

// newID issues a context-unique non-zero resource id.
func (c *Context) newID() uint64 { return c.nextID.Add(1) }

// label prefixes a debug label with the configured context label.
func (c *Context) label(name string) string {
	if c.cfg.Label == "" {
		return name
	}
	return c.cfg.Label + "_" + name
}

// isClosed reports whether Close has been called.
func (c *Context) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close destroys every cached GPU object. The device itself belongs to
// the caller and is left open.
func (c *Context) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.dummyMu.Lock()
	dummies := c.dummies
	c.dummies = [2]*Texture{}
	c.dummyMu.Unlock()

	// Reverse dependency order: pipelines before layouts.
	for _, p := range c.pipelines.Clear() {
		c.device.DestroyRenderPipeline(p.raw)
	}
	for _, s := range c.bindSets.Clear() {
		s.destroy(c.device)
	}
	for _, l := range c.layouts.Clear() {
		l.destroy(c.device)
	}
	for _, s := range c.samplers.Clear() {
		c.device.DestroySampler(s.raw)
	}
	for _, u := range c.uniformSets.Clear() {
		u.destroy(c)
	}
	for _, t := range dummies {
		if t != nil {
			c.DestroyTexture(t)
		}
	}
	slogger().Info("rhi: context closed", "label", c.cfg.Label)
}

// Stats reports cache and resource counters.
type Stats struct {
	Pipelines        cache.Stats
	BindSets         cache.Stats
	Samplers         cache.Stats
	UniformSets      cache.Stats
	PipelinesCreated uint64
	PipelinesEvicted uint64
}

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("pipelines=%d (hit %.0f%%, created %d, evicted %d) bindsets=%d samplers=%d ubufsets=%d",
		s.Pipelines.Len, s.Pipelines.HitRate*100, s.PipelinesCreated, s.PipelinesEvicted,
		s.BindSets.Len, s.Samplers.Len, s.UniformSets.Len)
}

// Stats returns current cache statistics.
func (c *Context) Stats() Stats {
	return Stats{
		Pipelines:        c.pipelines.Stats(),
		BindSets:         c.bindSets.Stats(),
		Samplers:         c.samplers.Stats(),
		UniformSets:      c.uniformSets.Stats(),
		PipelinesCreated: c.pipelinesCreated.Load(),
		PipelinesEvicted: c.pipelinesEvicted.Load(),
	}
}
