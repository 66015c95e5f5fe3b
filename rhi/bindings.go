package rhi

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// BindingKind is the resource type of a binding slot.
type BindingKind uint8

// Binding kinds.
const (
	UniformBuffer BindingKind = iota
	SampledTexture
)

// String returns the kind name.
func (k BindingKind) String() string {
	switch k {
	case UniformBuffer:
		return "ubuf"
	case SampledTexture:
		return "tex"
	default:
		return "kind" + strconv.Itoa(int(k))
	}
}

// TextureAndSampler is one texture element of a sampled texture binding.
type TextureAndSampler struct {
	Texture *Texture
	Sampler *Sampler
}

// Binding is one slot of a resource binding set.
type Binding struct {
	Slot   int
	Kind   BindingKind
	Stages gputypes.ShaderStages

	// Buffer bindings.
	Buffer *Buffer
	Offset uint64
	Size   uint64

	// Sampled texture bindings; one entry per array element.
	Textures []TextureAndSampler
	Cube     bool
}

// UniformBufferBinding binds size bytes of buf at offset to slot.
func UniformBufferBinding(slot int, stages gputypes.ShaderStages, buf *Buffer, offset, size uint64) Binding {
	return Binding{Slot: slot, Kind: UniformBuffer, Stages: stages, Buffer: buf, Offset: offset, Size: size}
}

// SampledTextures binds an array of textures with samplers to slot.
func SampledTextures(slot int, stages gputypes.ShaderStages, cube bool, elems ...TextureAndSampler) Binding {
	return Binding{Slot: slot, Kind: SampledTexture, Stages: stages, Textures: elems, Cube: cube}
}

// BindingList is an ordered list of bindings.
type BindingList []Binding

var errNilResource = errors.New("rhi: binding without resource")

func (l BindingList) sorted() BindingList {
	out := make(BindingList, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

func (l BindingList) validate() error {
	for _, b := range l {
		switch b.Kind {
		case UniformBuffer:
			if b.Buffer == nil || b.Buffer.raw == nil {
				return fmt.Errorf("%w: slot %d", errNilResource, b.Slot)
			}
		case SampledTexture:
			if len(b.Textures) == 0 {
				return fmt.Errorf("%w: slot %d", errNilResource, b.Slot)
			}
			for _, ts := range b.Textures {
				if ts.Texture == nil || ts.Sampler == nil || ts.Texture.view == nil {
					return fmt.Errorf("%w: slot %d", errNilResource, b.Slot)
				}
			}
		}
	}
	return nil
}

// LayoutKey returns the layout compatibility class: slot numbers, kinds,
// stages, element counts and dimensionality. Resources are ignored.
func (l BindingList) LayoutKey() string {
	var b strings.Builder
	for _, e := range l.sorted() {
		fmt.Fprintf(&b, "%d:%s:%d", e.Slot, e.Kind, uint32(e.Stages))
		if e.Kind == SampledTexture {
			fmt.Fprintf(&b, ":%d", len(e.Textures))
			if e.Cube {
				b.WriteString("c")
			}
		}
		b.WriteByte(';')
	}
	return b.String()
}

// ContentKey returns the exact content identity of the list: its layout
// key plus every resource id, offset and size.
func (l BindingList) ContentKey() string {
	var b strings.Builder
	b.WriteString(l.LayoutKey())
	b.WriteByte('#')
	for _, e := range l.sorted() {
		switch e.Kind {
		case UniformBuffer:
			var id uint64
			if e.Buffer != nil {
				id = e.Buffer.id
			}
			fmt.Fprintf(&b, "b%d@%d+%d;", id, e.Offset, e.Size)
		case SampledTexture:
			for _, ts := range e.Textures {
				var tid, sid uint64
				if ts.Texture != nil {
					tid = ts.Texture.id
				}
				if ts.Sampler != nil {
					sid = ts.Sampler.id
				}
				fmt.Fprintf(&b, "t%d/s%d,", tid, sid)
			}
			b.WriteByte(';')
		}
	}
	return b.String()
}

// BindingLayout is a cached pair of bind group layouts and the pipeline
// layout built from them.
type BindingLayout struct {
	key            string
	groups         [2]hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
}

// CompatKey returns the layout compatibility class.
func (l *BindingLayout) CompatKey() string { return l.key }

// PipelineLayout returns the HAL pipeline layout.
func (l *BindingLayout) PipelineLayout() hal.PipelineLayout { return l.pipelineLayout }

func (l *BindingLayout) destroy(device hal.Device) {
	if l.pipelineLayout != nil {
		device.DestroyPipelineLayout(l.pipelineLayout)
	}
	for _, g := range l.groups {
		if g != nil {
			device.DestroyBindGroupLayout(g)
		}
	}
}

// BindSet is a cached realization of a BindingList.
type BindSet struct {
	id        uint64
	key       string
	layout    *BindingLayout
	groups    [2]hal.BindGroup
	resources map[uint64]struct{}
}

// ID returns the context-unique bind set id.
func (s *BindSet) ID() uint64 { return s.id }

// Layout returns the layout the set was created with.
func (s *BindSet) Layout() *BindingLayout { return s.layout }

// Group returns HAL bind group i (0 buffers, 1 textures).
func (s *BindSet) Group(i int) hal.BindGroup { return s.groups[i] }

func (s *BindSet) uses(id uint64) bool {
	_, ok := s.resources[id]
	return ok
}

func (s *BindSet) destroy(device hal.Device) {
	for _, g := range s.groups {
		if g != nil {
			device.DestroyBindGroup(g)
		}
	}
}

// BindSet returns the binding set for list, creating its layout and bind
// groups on first use. Lists with equal content share one set.
func (c *Context) BindSet(list BindingList) (*BindSet, error) {
	if c.isClosed() {
		return nil, ErrContextClosed
	}
	if err := list.validate(); err != nil {
		return nil, err
	}
	list = list.sorted()

	layout, err := c.layouts.GetOrTryCreate(list.LayoutKey(), func() (*BindingLayout, error) {
		return c.createBindingLayout(list)
	})
	if err != nil {
		return nil, err
	}

	return c.bindSets.GetOrTryCreate(list.ContentKey(), func() (*BindSet, error) {
		return c.createBindSet(list, layout)
	})
}

// Layout returns the binding layout for the compatibility class of list.
func (c *Context) Layout(list BindingList) (*BindingLayout, error) {
	if c.isClosed() {
		return nil, ErrContextClosed
	}
	list = list.sorted()
	return c.layouts.GetOrTryCreate(list.LayoutKey(), func() (*BindingLayout, error) {
		return c.createBindingLayout(list)
	})
}

// ReleaseBindSetsUsing evicts every binding set that references one of
// the resource ids and returns how many were destroyed.
func (c *Context) ReleaseBindSetsUsing(ids ...uint64) int {
	removed := c.bindSets.DeleteFunc(func(_ string, s *BindSet) bool {
		for _, id := range ids {
			if s.uses(id) {
				return true
			}
		}
		return false
	})
	for _, s := range removed {
		s.destroy(c.device)
	}
	return len(removed)
}

func (c *Context) createBindingLayout(list BindingList) (*BindingLayout, error) {
	var bufEntries, texEntries []gputypes.BindGroupLayoutEntry
	k := uint32(0)
	for _, b := range list {
		switch b.Kind {
		case UniformBuffer:
			bufEntries = append(bufEntries, gputypes.BindGroupLayoutEntry{
				Binding:    uint32(b.Slot),
				Visibility: b.Stages,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			})
		case SampledTexture:
			dim := gputypes.TextureViewDimension2D
			if b.Cube {
				dim = gputypes.TextureViewDimensionCube
			}
			for range b.Textures {
				texEntries = append(texEntries,
					gputypes.BindGroupLayoutEntry{
						Binding:    2 * k,
						Visibility: b.Stages,
						Texture: &gputypes.TextureBindingLayout{
							SampleType:    gputypes.TextureSampleTypeFloat,
							ViewDimension: dim,
						},
					},
					gputypes.BindGroupLayoutEntry{
						Binding:    2*k + 1,
						Visibility: b.Stages,
						Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
					})
				k++
			}
		}
	}

	l := &BindingLayout{key: list.LayoutKey()}
	var err error
	for i, entries := range [2][]gputypes.BindGroupLayoutEntry{bufEntries, texEntries} {
		l.groups[i], err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   c.label(fmt.Sprintf("bind_layout_%d", i)),
			Entries: entries,
		})
		if err != nil {
			l.destroy(c.device)
			return nil, fmt.Errorf("rhi: create bind group layout: %w", err)
		}
	}
	l.pipelineLayout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            c.label("pipeline_layout"),
		BindGroupLayouts: []hal.BindGroupLayout{l.groups[0], l.groups[1]},
	})
	if err != nil {
		l.destroy(c.device)
		return nil, fmt.Errorf("rhi: create pipeline layout: %w", err)
	}
	slogger().Debug("rhi: binding layout created", "key", l.key)
	return l, nil
}

func (c *Context) createBindSet(list BindingList, layout *BindingLayout) (*BindSet, error) {
	s := &BindSet{
		id:        c.newID(),
		key:       list.ContentKey(),
		layout:    layout,
		resources: make(map[uint64]struct{}),
	}

	var bufEntries, texEntries []gputypes.BindGroupEntry
	k := uint32(0)
	for _, b := range list {
		switch b.Kind {
		case UniformBuffer:
			size := b.Size
			if size == 0 {
				size = b.Buffer.size - b.Offset
			}
			bufEntries = append(bufEntries, gputypes.BindGroupEntry{
				Binding: uint32(b.Slot),
				Resource: gputypes.BufferBinding{
					Buffer: b.Buffer.raw.NativeHandle(),
					Offset: b.Offset,
					Size:   size,
				},
			})
			s.resources[b.Buffer.id] = struct{}{}
		case SampledTexture:
			for _, ts := range b.Textures {
				texEntries = append(texEntries,
					gputypes.BindGroupEntry{
						Binding:  2 * k,
						Resource: gputypes.TextureViewBinding{TextureView: ts.Texture.view.NativeHandle()},
					},
					gputypes.BindGroupEntry{
						Binding:  2*k + 1,
						Resource: gputypes.SamplerBinding{Sampler: ts.Sampler.raw.NativeHandle()},
					})
				s.resources[ts.Texture.id] = struct{}{}
				s.resources[ts.Sampler.id] = struct{}{}
				k++
			}
		}
	}

	var err error
	for i, entries := range [2][]gputypes.BindGroupEntry{bufEntries, texEntries} {
		s.groups[i], err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   c.label(fmt.Sprintf("bind_group_%d", i)),
			Layout:  layout.groups[i],
			Entries: entries,
		})
		if err != nil {
			s.destroy(c.device)
			return nil, fmt.Errorf("rhi: create bind group: %w", err)
		}
	}
	return s, nil
}
