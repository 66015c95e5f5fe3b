package render

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// drawCall is one recorded draw.
type drawCall struct {
	indexed bool
	count   uint32
	first   uint32
	format  gputypes.IndexFormat
}

// recorder collects what the renderer encodes.
type recorder struct {
	passes    int
	clears    []gputypes.Color
	draws     []drawCall
	discarded int
	submits   int
}

// recDevice is a noop device whose encoders record into rec.
type recDevice struct {
	noop.Device
	rec *recorder
}

func (d *recDevice) CreateCommandEncoder(*hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	return &recEncoder{rec: d.rec}, nil
}

type recEncoder struct {
	noop.CommandEncoder
	rec *recorder
}

func (e *recEncoder) DiscardEncoding() { e.rec.discarded++ }

func (e *recEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	e.rec.passes++
	if len(desc.ColorAttachments) > 0 {
		e.rec.clears = append(e.rec.clears, desc.ColorAttachments[0].ClearValue)
	}
	return &recPass{rec: e.rec}
}

type recPass struct {
	noop.RenderPassEncoder
	rec    *recorder
	format gputypes.IndexFormat
}

func (p *recPass) SetIndexBuffer(_ hal.Buffer, f gputypes.IndexFormat, _ uint64) { p.format = f }

func (p *recPass) Draw(count, _, first, _ uint32) {
	p.rec.draws = append(p.rec.draws, drawCall{count: count, first: first})
}

func (p *recPass) DrawIndexed(count, _, first uint32, _ int32, _ uint32) {
	p.rec.draws = append(p.rec.draws, drawCall{indexed: true, count: count, first: first, format: p.format})
}

// recQueue counts submissions.
type recQueue struct {
	noop.Queue
	rec *recorder
}

func (q *recQueue) Submit(cbs []hal.CommandBuffer) (uint64, error) {
	q.rec.submits++
	return q.Queue.Submit(cbs)
}
