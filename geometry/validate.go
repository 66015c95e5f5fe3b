package geometry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/gputypes"
)

// MeshData is a validated mesh ready for upload.
type MeshData struct {
	Stride      uint32
	Topology    gputypes.PrimitiveTopology
	Layout      rhi.InputLayout
	Vertices    []byte
	VertexCount uint32
	// Indices is nil for non-indexed meshes.
	Indices     []uint32
	Bounds      Bounds
	Subsets     []Subset
	TargetCount int
	Skinned     bool
}

// Validate checks a mesh and converts it to upload form: indices widened
// to uint32, bounds computed from positions when none were set, and a
// default subset added when the mesh has none.
func Validate(m *Mesh) (*MeshData, error) {
	if m.stride == 0 {
		return nil, ErrNoStride
	}
	if len(m.attributes) == 0 {
		return nil, ErrNoAttributes
	}

	d := &MeshData{Stride: m.stride, Topology: m.primitive, Vertices: m.vertexData}
	d.Layout.Stride = m.stride
	d.Layout.Topology = m.primitive

	var pos *Attribute
	targets := 0
	var joints, weights bool
	for i := range m.attributes {
		a := &m.attributes[i]
		if uint64(a.Offset)+uint64(a.byteSize()) > uint64(m.stride) {
			return nil, fmt.Errorf("%w: %s at %d+%d > %d", ErrAttributeRange, a.Semantic, a.Offset, a.byteSize(), m.stride)
		}
		format, err := vertexFormat(a)
		if err != nil {
			return nil, err
		}
		name, err := attributeName(a)
		if err != nil {
			return nil, err
		}
		if err := d.Layout.Add(rhi.VertexInputAttribute{Name: name, Format: format, Offset: a.Offset}); err != nil {
			return nil, fmt.Errorf("geometry: %w", err)
		}
		switch a.Semantic {
		case SemanticPosition:
			pos = a
		case SemanticTargetPosition, SemanticTargetNormal:
			if a.Target+1 > targets {
				targets = a.Target + 1
			}
		case SemanticJoint:
			joints = true
		case SemanticWeight:
			weights = true
		}
	}
	if pos == nil {
		return nil, ErrNoPosition
	}
	if pos.Type != ComponentF32 || pos.components() < 3 {
		return nil, fmt.Errorf("%w: position must be 3 x f32", ErrAttributeFormat)
	}
	d.TargetCount = targets
	d.Skinned = joints && weights

	if len(m.vertexData)%int(m.stride) != 0 {
		return nil, fmt.Errorf("%w: %d bytes, stride %d", ErrVertexDataSize, len(m.vertexData), m.stride)
	}
	d.VertexCount = uint32(len(m.vertexData) / int(m.stride))

	if len(m.indexData) > 0 {
		indices, err := widenIndices(m.indexData, m.indexType)
		if err != nil {
			return nil, err
		}
		for i, idx := range indices {
			if idx >= d.VertexCount {
				return nil, fmt.Errorf("%w: index %d at %d, %d vertices", ErrIndexRange, idx, i, d.VertexCount)
			}
		}
		d.Indices = indices
	}

	position := func(v uint32) mgl32.Vec3 {
		base := int(v)*int(m.stride) + int(pos.Offset)
		var p mgl32.Vec3
		for i := 0; i < 3; i++ {
			p[i] = math.Float32frombits(binary.LittleEndian.Uint32(m.vertexData[base+4*i:]))
		}
		return p
	}

	if m.hasBounds {
		d.Bounds = m.bounds
	} else {
		d.Bounds = EmptyBounds()
		for v := uint32(0); v < d.VertexCount; v++ {
			d.Bounds.Include(position(v))
		}
	}

	drawCount := d.VertexCount
	if d.Indices != nil {
		drawCount = uint32(len(d.Indices))
	}
	subsets := m.subsets
	if len(subsets) == 0 {
		subsets = []Subset{{Count: drawCount, Bounds: d.Bounds, HasBounds: true}}
	}
	d.Subsets = make([]Subset, len(subsets))
	for i, s := range subsets {
		if uint64(s.Offset)+uint64(s.Count) > uint64(drawCount) {
			return nil, fmt.Errorf("%w: subset %q [%d,+%d) exceeds %d", ErrIndexRange, s.Name, s.Offset, s.Count, drawCount)
		}
		if !s.HasBounds {
			s.Bounds = EmptyBounds()
			for j := s.Offset; j < s.Offset+s.Count; j++ {
				v := j
				if d.Indices != nil {
					v = d.Indices[j]
				}
				s.Bounds.Include(position(v))
			}
			s.HasBounds = true
		}
		d.Subsets[i] = s
	}
	return d, nil
}

// widenIndices converts index data to uint32.
func widenIndices(data []byte, typ ComponentType) ([]uint32, error) {
	switch typ {
	case ComponentU16:
		if len(data)%2 != 0 {
			return nil, fmt.Errorf("%w: %d bytes of u16", ErrIndexDataSize, len(data))
		}
		out := make([]uint32, len(data)/2)
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(data[2*i:]))
		}
		return out, nil
	case ComponentU32:
		if len(data)%4 != 0 {
			return nil, fmt.Errorf("%w: %d bytes of u32", ErrIndexDataSize, len(data))
		}
		out := make([]uint32, len(data)/4)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[4*i:])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedIndex, typ)
	}
}

// indexBytes encodes indices as little-endian uint32.
func indexBytes(indices []uint32) []byte {
	out := make([]byte, 4*len(indices))
	for i, v := range indices {
		binary.LittleEndian.PutUint32(out[4*i:], v)
	}
	return out
}

func attributeName(a *Attribute) (string, error) {
	switch a.Semantic {
	case SemanticPosition:
		return rhi.AttrPosition, nil
	case SemanticNormal:
		return rhi.AttrNormal, nil
	case SemanticTexCoord0:
		return rhi.AttrUV0, nil
	case SemanticTexCoord1:
		return rhi.AttrUV1, nil
	case SemanticTangent:
		return rhi.AttrTangent, nil
	case SemanticBinormal:
		return rhi.AttrBinormal, nil
	case SemanticJoint:
		return rhi.AttrJoints, nil
	case SemanticWeight:
		return rhi.AttrWeights, nil
	case SemanticColor:
		return rhi.AttrColor, nil
	case SemanticTargetPosition, SemanticTargetNormal:
		if a.Target < 0 || a.Target >= MaxMorphTargets {
			return "", fmt.Errorf("%w: target %d", ErrTooManyTargets, a.Target)
		}
		if a.Semantic == SemanticTargetPosition {
			return rhi.AttrTargetPosition(a.Target), nil
		}
		return rhi.AttrTargetNormal(a.Target), nil
	default:
		return "", fmt.Errorf("%w: semantic %d", ErrAttributeFormat, a.Semantic)
	}
}

var (
	f32Formats = [5]gputypes.VertexFormat{0, gputypes.VertexFormatFloat32, gputypes.VertexFormatFloat32x2, gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x4}
	u32Formats = [5]gputypes.VertexFormat{0, gputypes.VertexFormatUint32, gputypes.VertexFormatUint32x2, gputypes.VertexFormatUint32x3, gputypes.VertexFormatUint32x4}
	i32Formats = [5]gputypes.VertexFormat{0, gputypes.VertexFormatSint32, gputypes.VertexFormatSint32x2, gputypes.VertexFormatSint32x3, gputypes.VertexFormatSint32x4}
	u16Formats = [5]gputypes.VertexFormat{0, 0, gputypes.VertexFormatUint16x2, 0, gputypes.VertexFormatUint16x4}
)

func vertexFormat(a *Attribute) (gputypes.VertexFormat, error) {
	n := a.components()
	if n < 1 || n > 4 {
		return 0, fmt.Errorf("%w: %s with %d components", ErrAttributeFormat, a.Semantic, n)
	}
	var f gputypes.VertexFormat
	switch a.Type {
	case ComponentF32:
		f = f32Formats[n]
	case ComponentU32:
		f = u32Formats[n]
	case ComponentI32:
		f = i32Formats[n]
	case ComponentU16:
		f = u16Formats[n]
	}
	if f == gputypes.VertexFormatUndefined {
		return 0, fmt.Errorf("%w: %s with %d components of type %d", ErrAttributeFormat, a.Semantic, n, a.Type)
	}
	return f, nil
}
