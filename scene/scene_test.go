package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkin_BoneMatrices(t *testing.T) {
	g := NewGraph()
	j0, j1 := g.Create(&Joint{Index: 0}), g.Create(&Joint{Index: 1})
	g.SetPosition(j0, mgl32.Vec3{1, 0, 0})
	g.SetScale(j1, mgl32.Vec3{2, 2, 2})
	g.Update(j0)
	g.Update(j1)

	stale := g.Create(nil)
	g.Destroy(stale)

	skin := &Skin{
		Joints:           []NodeID{j0, j1, stale},
		InverseBindPoses: []mgl32.Mat4{mgl32.Translate3D(-1, 0, 0)},
	}
	bones, normals := skin.BoneMatrices(g)
	require.Len(t, bones, 3)
	require.Len(t, normals, 3)

	assert.Equal(t, mgl32.Ident4(), bones[0], "bind pose cancels the joint transform")
	assert.Equal(t, mgl32.Scale3D(2, 2, 2), bones[1], "missing inverse bind pose is identity")
	assertNear(t, mgl32.Scale3D(0.5, 0.5, 0.5), normals[1], 1e-6)
	assert.Equal(t, mgl32.Ident4(), bones[2])
	assert.Equal(t, mgl32.Ident4(), normals[2])
}

func TestCamera_ViewProjection(t *testing.T) {
	g := NewGraph()
	cam := g.Create(NewPerspectiveCamera(60, 0.1, 100))
	g.SetPosition(cam, mgl32.Vec3{0, 0, 5})
	g.Update(cam)

	vp, ok := g.ViewProjection(cam, 16.0/9.0)
	require.True(t, ok)

	clip := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip[3])
	assert.InDelta(t, 0, ndc[0], 1e-6)
	assert.InDelta(t, 0, ndc[1], 1e-6)
	assert.Greater(t, ndc[2], float32(0))
	assert.Less(t, ndc[2], float32(1))

	near := vp.Mul4x1(mgl32.Vec4{0, 0, 4.9, 1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-4, "near plane maps to depth 0")

	_, ok = g.ViewProjection(g.Create(nil), 1)
	assert.False(t, ok)
}

func TestCamera_Orthographic(t *testing.T) {
	c := NewOrthographicCamera(10, 0, 10)
	p := c.ProjectionMatrix(2)
	top := p.Mul4x1(mgl32.Vec4{10, 5, -10, 1})
	assert.InDelta(t, 1, top[0], 1e-6)
	assert.InDelta(t, 1, top[1], 1e-6)
	assert.InDelta(t, 1, top[2], 1e-6)

	custom := &Camera{Projection: CustomProjection, Custom: mgl32.Scale3D(2, 2, 2)}
	assert.Equal(t, mgl32.Scale3D(2, 2, 2), custom.ProjectionMatrix(1))
}

type fakeLoader map[*geometry.Mesh]geometry.Bounds

func (f fakeLoader) LoadOrUpdate(m *geometry.Mesh) *geometry.GPUMesh {
	b, ok := f[m]
	if !ok {
		return nil
	}
	return &geometry.GPUMesh{Bounds: b}
}

func TestGraph_Bounds(t *testing.T) {
	unit := geometry.NewMesh()
	broken := geometry.NewMesh()
	loader := fakeLoader{unit: {Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}}

	g := NewGraph()
	group := g.Create(nil)
	a := g.Create(&Model{Mesh: unit})
	b := g.Create(&Model{Mesh: broken})
	require.NoError(t, g.AddChild(group, a))
	require.NoError(t, g.AddChild(group, b))
	g.SetPosition(a, mgl32.Vec3{10, 0, 0})
	g.SetPosition(b, mgl32.Vec3{-50, 0, 0})
	g.Update(group)

	got := g.Bounds(group, loader)
	assert.Equal(t, mgl32.Vec3{9, -1, -1}, got.Min)
	assert.Equal(t, mgl32.Vec3{11, 1, 1}, got.Max)

	assert.True(t, g.Bounds(b, loader).IsEmpty())
	assert.True(t, g.Bounds(NodeID{}, loader).IsEmpty())
}

func TestModel_MaterialFor(t *testing.T) {
	m := &Model{}
	assert.Nil(t, m.MaterialFor(0))
}

func TestNewLight(t *testing.T) {
	l := NewLight(SpotLight)
	assert.Equal(t, KindLight, l.Kind())
	assert.Equal(t, -1, l.ShadowMap)
	assert.Equal(t, float32(1), l.Brightness)
	assert.Equal(t, "layer", KindLayer.String())
}
