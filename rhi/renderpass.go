package rhi

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gogpu/gputypes"
)

// RenderPassDescriptor describes the attachments of a render pass.
//
// Pipelines are created against a descriptor's compatibility class, so two
// descriptors with the same attachment formats, count and sample count
// share pipelines. Destroying a descriptor evicts every pipeline that was
// obtained through it.
type RenderPassDescriptor struct {
	id           uint64
	ctx          *Context
	colorFormats []gputypes.TextureFormat
	depthFormat  gputypes.TextureFormat
	sampleCount  uint32
	compatKey    string
	destroyed    atomic.Bool
}

// NewRenderPassDescriptor creates a descriptor. depth may be
// TextureFormatUndefined for passes without a depth attachment.
func (c *Context) NewRenderPassDescriptor(colors []gputypes.TextureFormat, depth gputypes.TextureFormat, samples uint32) *RenderPassDescriptor {
	if samples == 0 {
		samples = 1
	}
	rp := &RenderPassDescriptor{
		id:           c.newID(),
		ctx:          c,
		colorFormats: append([]gputypes.TextureFormat(nil), colors...),
		depthFormat:  depth,
		sampleCount:  samples,
	}
	rp.compatKey = renderPassCompatKey(rp.colorFormats, depth, samples)
	return rp
}

func renderPassCompatKey(colors []gputypes.TextureFormat, depth gputypes.TextureFormat, samples uint32) string {
	var b strings.Builder
	b.WriteString("c")
	for _, f := range colors {
		b.WriteByte(':')
		b.WriteString(strconv.FormatUint(uint64(f), 10))
	}
	b.WriteString("|d:")
	b.WriteString(strconv.FormatUint(uint64(depth), 10))
	b.WriteString("|s:")
	b.WriteString(strconv.FormatUint(uint64(samples), 10))
	return b.String()
}

// ID returns the context-unique descriptor id.
func (rp *RenderPassDescriptor) ID() uint64 { return rp.id }

// ColorFormats returns the color attachment formats.
func (rp *RenderPassDescriptor) ColorFormats() []gputypes.TextureFormat { return rp.colorFormats }

// DepthFormat returns the depth attachment format.
func (rp *RenderPassDescriptor) DepthFormat() gputypes.TextureFormat { return rp.depthFormat }

// SampleCount returns the attachment sample count.
func (rp *RenderPassDescriptor) SampleCount() uint32 { return rp.sampleCount }

// CompatKey returns the compatibility class of the descriptor.
func (rp *RenderPassDescriptor) CompatKey() string { return rp.compatKey }

// Destroyed reports whether Destroy has been called.
func (rp *RenderPassDescriptor) Destroyed() bool { return rp.destroyed.Load() }

// Destroy evicts every pipeline obtained through the descriptor. Further
// PreparePipeline calls with it fail.
func (rp *RenderPassDescriptor) Destroy() {
	if rp.destroyed.Swap(true) {
		return
	}
	rp.ctx.InvalidateCachedReferences(rp)
}
