package render

import (
	"context"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/shader"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	rec     *recorder
	rc      *rhi.Context
	meshes  *geometry.BufferCache
	shaders *shader.Cache
	fr      *FrameRenderer
	target  *TextureTarget

	g      *scene.Graph
	layer  scene.NodeID
	camera scene.NodeID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := &recorder{}
	rc, err := rhi.NewContext(&recDevice{rec: rec}, &recQueue{rec: rec}, rhi.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(rc.Close)

	f := &fixture{
		rec:     rec,
		rc:      rc,
		meshes:  geometry.NewBufferCache(rc),
		shaders: shader.NewCache(rc, shader.Config{}),
		g:       scene.NewGraph(),
	}
	f.fr, err = NewFrameRenderer(rc, f.meshes, f.shaders, DefaultConfig())
	require.NoError(t, err)
	f.target, err = NewTextureTarget(rc, 320, 240)
	require.NoError(t, err)

	f.camera = f.g.Create(scene.NewPerspectiveCamera(60, 0.1, 100))
	f.g.SetPosition(f.camera, mgl32.Vec3{0, 0, 5})
	f.layer = f.g.Create(&scene.Layer{Camera: f.camera, ClearColor: mgl32.Vec4{0.1, 0.2, 0.3, 1}})
	return f
}

func (f *fixture) passes() []LayerPass {
	return []LayerPass{{Layer: f.layer, Target: f.target}}
}

func (f *fixture) addModel(t *testing.T, mesh *geometry.Mesh, mats ...*material.Material) scene.NodeID {
	t.Helper()
	id := f.g.Create(&scene.Model{Mesh: mesh, Materials: mats, ReceivesShadows: true})
	require.NoError(t, f.g.AddChild(f.layer, id))
	return id
}

func floats(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

func u32s(vals ...uint32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[4*i:], v)
	}
	return out
}

// quadMesh returns a mesh with position, normal and uv0 at stride 32 and
// the given index list over a unit quad in the XY plane.
func quadMesh(indices ...uint32) *geometry.Mesh {
	m := geometry.NewMesh()
	m.SetStride(32)
	m.AddAttribute(geometry.Attribute{Semantic: geometry.SemanticPosition, Offset: 0})
	m.AddAttribute(geometry.Attribute{Semantic: geometry.SemanticNormal, Offset: 12})
	m.AddAttribute(geometry.Attribute{Semantic: geometry.SemanticTexCoord0, Offset: 24})
	m.SetVertexData(floats(
		-1, -1, 0, 0, 0, 1, 0, 0,
		1, -1, 0, 0, 0, 1, 1, 0,
		1, 1, 0, 0, 0, 1, 1, 1,
		-1, 1, 0, 0, 0, 1, 0, 1,
	))
	m.SetIndexData(u32s(indices...), geometry.ComponentU32)
	return m
}

func readFloat(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func TestFrameRenderer_DrawsIndexedUint32(t *testing.T) {
	f := newFixture(t)
	mat := material.NewUnlit()
	f.addModel(t, quadMesh(0, 1, 2, 0, 2, 3), mat)

	fs, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)

	assert.Equal(t, 1, fs.Passes)
	assert.Equal(t, 1, fs.Draws)
	assert.Zero(t, fs.Skipped)
	require.Len(t, f.rec.draws, 1)
	assert.Equal(t, drawCall{indexed: true, count: 6, format: gputypes.IndexFormatUint32}, f.rec.draws[0])
	assert.Equal(t, 1, f.rec.submits)
	require.Len(t, f.rec.clears, 1)
	assert.InDelta(t, 0.3, f.rec.clears[0].B, 1e-6)

	assert.Zero(t, mat.Dirty(), "materials are committed after submit")
	assert.Equal(t, uint64(1), f.fr.Stats().Frames)
	assert.Equal(t, uint64(1), f.fr.Stats().Draws)
}

func TestFrameRenderer_SubsetsAndNonIndexed(t *testing.T) {
	f := newFixture(t)
	mesh := quadMesh(0, 1, 2, 0, 2, 3)
	mesh.AddSubset(geometry.Subset{Name: "a", Count: 3})
	mesh.AddSubset(geometry.Subset{Name: "b", Offset: 3, Count: 3})
	f.addModel(t, mesh, material.NewUnlit(), material.NewUnlit())

	flat := quadMesh()
	flat.SetIndexData(nil, geometry.ComponentU32)
	f.addModel(t, flat, material.NewUnlit())

	fs, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 3, fs.Draws)
	require.Len(t, f.rec.draws, 3)
	assert.Equal(t, uint32(3), f.rec.draws[1].first)
	assert.False(t, f.rec.draws[2].indexed)
	assert.Equal(t, uint32(4), f.rec.draws[2].count)
}

func TestFrameRenderer_SkipsWithoutAborting(t *testing.T) {
	f := newFixture(t)
	f.addModel(t, nil, material.NewUnlit())
	f.addModel(t, geometry.NewMesh(), material.NewUnlit())
	f.addModel(t, quadMesh(0, 1, 2))
	f.addModel(t, quadMesh(0, 1, 2), material.NewUnlit())

	fs, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 4, fs.Renderables)
	assert.Equal(t, 3, fs.Skipped)
	assert.Equal(t, 1, fs.Draws)
	assert.Equal(t, 1, f.rec.submits)
}

func TestFrameRenderer_Culling(t *testing.T) {
	f := newFixture(t)
	far := f.addModel(t, quadMesh(0, 1, 2), material.NewUnlit())
	f.g.SetPosition(far, mgl32.Vec3{1000, 0, 0})
	behind := f.addModel(t, quadMesh(0, 1, 2), material.NewUnlit())
	f.g.SetPosition(behind, mgl32.Vec3{0, 0, 50})

	fs, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 2, fs.Culled)
	assert.Zero(t, fs.Draws)
}

func TestFrameRenderer_InactiveSubtree(t *testing.T) {
	f := newFixture(t)
	group := f.g.Create(nil)
	require.NoError(t, f.g.AddChild(f.layer, group))
	child := f.g.Create(&scene.Model{Mesh: quadMesh(0, 1, 2), Materials: []*material.Material{material.NewUnlit()}})
	require.NoError(t, f.g.AddChild(group, child))
	f.g.SetActive(group, false)

	fs, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Zero(t, fs.Renderables)

	f.g.SetActive(group, true)
	fs, err = f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 1, fs.Draws)
}

func TestFrameRenderer_SharedPermutationAndPipeline(t *testing.T) {
	f := newFixture(t)
	red, blue := material.NewPrincipled(), material.NewPrincipled()
	red.SetBaseColor(mgl32.Vec4{1, 0, 0, 1})
	blue.SetBaseColor(mgl32.Vec4{0, 0, 1, 1})
	f.addModel(t, quadMesh(0, 1, 2), red)
	f.addModel(t, quadMesh(0, 2, 3), blue)

	fs, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 2, fs.Draws)
	assert.Equal(t, 1, f.shaders.Len(), "uniform values never split a permutation")
	assert.Equal(t, uint64(1), f.rc.Stats().PipelinesCreated)
}

func TestFrameRenderer_TransparentOrder(t *testing.T) {
	f := newFixture(t)
	glass := material.NewUnlit()
	glass.SetOpacity(0.5)

	near := f.addModel(t, quadMesh(0, 1, 2), glass)
	far := f.addModel(t, quadMesh(0, 1, 2, 0, 2, 3), glass)
	f.g.SetPosition(near, mgl32.Vec3{0, 0, 0})
	f.g.SetPosition(far, mgl32.Vec3{0, 0, -10})
	f.addModel(t, quadMesh(0, 1, 2, 0, 2, 3, 0, 1, 3), material.NewUnlit())

	_, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	require.Len(t, f.rec.draws, 3)
	assert.Equal(t, uint32(9), f.rec.draws[0].count, "opaque first")
	assert.Equal(t, uint32(6), f.rec.draws[1].count, "then transparent back to front")
	assert.Equal(t, uint32(3), f.rec.draws[2].count)
}

func TestFrameRenderer_LitUniforms(t *testing.T) {
	f := newFixture(t)
	mat := material.NewPrincipled()
	model := f.addModel(t, quadMesh(0, 1, 2), mat)

	point := f.g.Create(scene.NewLight(scene.PointLight))
	f.g.SetPosition(point, mgl32.Vec3{0, 2, 0})
	area := f.g.Create(scene.NewLight(scene.AreaLight))
	sun := scene.NewLight(scene.DirectionalLight)
	sun.CastsShadow = true
	sun.ShadowMap = 0
	sunID := f.g.Create(sun)
	for _, id := range []scene.NodeID{point, area, sunID} {
		require.NoError(t, f.g.AddChild(f.layer, id))
	}

	fs, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 1, fs.Draws)
	assert.Equal(t, 3, fs.Lights)

	ubs := f.rc.UniformBufferSet(rhi.UniformBufferSetKey{
		Layer:    f.layer.Key(),
		Model:    model.Key(),
		Material: mat.ID(),
		Selector: rhi.SelectorMain,
	})
	require.NotNil(t, ubs.Main)
	require.NotNil(t, ubs.Lights)
	require.NotNil(t, ubs.AreaLights)
	assert.Equal(t, uint64(shader.LightsBlockSize), ubs.Lights.Size())
}

func TestFrameRenderer_NotALayerSkipsPass(t *testing.T) {
	f := newFixture(t)
	plain := f.g.Create(nil)
	passes := []LayerPass{{Layer: plain, Target: f.target}, {Layer: f.layer, Target: f.target}}

	fs, err := f.fr.RenderFrame(context.Background(), f.g, passes)
	require.NoError(t, err)
	assert.Equal(t, 1, fs.PassesSkipped)
	assert.Equal(t, 1, fs.Passes)
	assert.Equal(t, 1, f.rec.submits)
}

func TestFrameRenderer_AbandonOnCancel(t *testing.T) {
	f := newFixture(t)
	f.addModel(t, quadMesh(0, 1, 2), material.NewUnlit())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs, err := f.fr.RenderFrame(ctx, f.g, f.passes())
	require.ErrorIs(t, err, ErrFrameAbandoned)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, fs.Abandoned)
	assert.Zero(t, f.rec.submits)
	assert.Equal(t, uint64(1), f.fr.Stats().Abandoned)
}

func TestFrameRenderer_AbandonOnSurfaceLost(t *testing.T) {
	f := newFixture(t)
	mat := material.NewUnlit()
	f.addModel(t, quadMesh(0, 1, 2), mat)

	surface, err := NewSurfaceTarget(f.rc, f.rc.Config().ColorFormat, gputypes.TextureFormatUndefined)
	require.NoError(t, err)
	view, err := (&noop.Device{}).CreateTextureView(nil, nil)
	require.NoError(t, err)
	surface.SetFrame(320, 240, view, nil)
	passes := []LayerPass{{Layer: f.layer, Target: surface}}

	_, err = f.fr.RenderFrame(context.Background(), f.g, passes)
	require.NoError(t, err)
	require.Equal(t, uint64(1), f.rc.Stats().PipelinesCreated)

	surface.MarkLost()
	mat.SetBaseColor(mgl32.Vec4{1, 0, 0, 1})
	fs, err := f.fr.RenderFrame(context.Background(), f.g, passes)
	require.ErrorIs(t, err, ErrFrameAbandoned)
	assert.ErrorIs(t, err, hal.ErrSurfaceLost)
	assert.True(t, fs.Abandoned)
	assert.Equal(t, 1, f.rec.discarded)
	assert.Equal(t, 1, f.rec.submits, "nothing submitted for the abandoned frame")
	assert.Equal(t, uint64(1), f.rc.Stats().PipelinesEvicted)
	assert.NotZero(t, mat.Dirty(), "abandoned frames do not commit materials")

	surface.SetFrame(320, 240, view, nil)
	_, err = f.fr.RenderFrame(context.Background(), f.g, passes)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), f.rc.Stats().PipelinesCreated, "pipelines are rebuilt next frame")
}

func TestFrameRenderer_Close(t *testing.T) {
	f := newFixture(t)
	f.addModel(t, quadMesh(0, 1, 2), material.NewUnlit())
	_, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 1, f.fr.Stats().InFlight)

	_, err = f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 1, f.fr.Stats().InFlight, "completed submissions are reclaimed")

	require.NoError(t, f.fr.Close())
	assert.Zero(t, f.fr.Stats().InFlight)
}

func TestNewFrameRenderer_Errors(t *testing.T) {
	f := newFixture(t)
	_, err := NewFrameRenderer(nil, f.meshes, f.shaders, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilContext)
	_, err = NewFrameRenderer(f.rc, f.meshes, f.shaders, Config{MaxLights: rhi.MaxLights + 1})
	assert.Error(t, err)
}

func TestDrawUniforms_Pack(t *testing.T) {
	model := mgl32.Translate3D(1, 2, 3)
	vp := mgl32.Scale3D(2, 2, 2)
	params := material.NewUnlit().Params()
	du := drawUniforms{
		model:    model,
		viewProj: vp,
		width:    200,
		height:   100,
		params:   params,
		opacity:  0.5,
		morph:    []float32{0.25},
		custom:   []material.Property{{Name: "tint", Value: mgl32.Vec4{9, 8, 7, 6}}},
	}
	buf := make(block, du.size())
	du.pack(buf)

	mvp := vp.Mul4(model)
	for i := range mvp {
		assert.Equal(t, mvp[i], readFloat(buf, shader.OffsetMVP+4*i))
	}
	assert.Equal(t, float32(3), readFloat(buf, shader.OffsetModel+4*14))
	assert.Equal(t, float32(0.005), readFloat(buf, shader.OffsetViewport+8))
	assert.Equal(t, params.Opacity*0.5, readFloat(buf, shader.OffsetParams1+8))
	assert.Equal(t, float32(0.25), readFloat(buf, shader.OffsetMorphWeights))
	assert.Equal(t, float32(9), readFloat(buf, shader.OffsetCustom))
	assert.Equal(t, shader.MainBlockSize(1, false), uint64(len(buf)))
}

func TestDrawUniforms_PackBones(t *testing.T) {
	du := drawUniforms{
		model:    mgl32.Ident4(),
		viewProj: mgl32.Ident4(),
		skinned:  true,
		bones:    []mgl32.Mat4{mgl32.Translate3D(4, 0, 0)},
		normals:  []mgl32.Mat4{mgl32.Ident4()},
	}
	buf := make(block, du.size())
	du.pack(buf)

	bones := int(shader.BoneOffset(0))
	assert.Equal(t, float32(4), readFloat(buf, bones+4*12))
	assert.Equal(t, float32(1), readFloat(buf, bones+64), "missing bones are identity")
	assert.Equal(t, float32(1), readFloat(buf, int(shader.BoneNormalOffset(0))))
}

func TestPackLights(t *testing.T) {
	g := scene.NewGraph()
	spot := scene.NewLight(scene.SpotLight)
	spot.Brightness = 2
	spot.ConeAngle = 90
	spot.InnerConeAngle = 60
	id := g.Create(spot)
	g.SetPosition(id, mgl32.Vec3{1, 2, 3})
	g.Update(id)

	buf := make(block, shader.LightsBlockSize)
	packLights(buf, []lightEntry{{node: g.Node(id), light: spot}}, mgl32.Vec3{0.1, 0.2, 0.3})

	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf))
	assert.InDelta(t, 0.2, readFloat(buf, shader.LightsAmbient+4), 1e-6)
	rec := shader.LightsHeader
	assert.Equal(t, float32(2), readFloat(buf, rec+shader.LightPosition+4))
	assert.Equal(t, float32(shader.LightTypeSpot), readFloat(buf, rec+shader.LightPosition+12))
	assert.Equal(t, float32(-1), readFloat(buf, rec+shader.LightDirection+8))
	assert.Equal(t, float32(2), readFloat(buf, rec+shader.LightColor))
	assert.InDelta(t, math.Cos(math.Pi/4), readFloat(buf, rec+shader.LightCone+4), 1e-6)
	assert.InDelta(t, math.Cos(math.Pi/6), readFloat(buf, rec+shader.LightCone), 1e-6)
	assert.Equal(t, float32(-1), readFloat(buf, rec+shader.LightShadow), "no shadow unless cast")
}

func TestPackAreaLights(t *testing.T) {
	g := scene.NewGraph()
	l := scene.NewLight(scene.AreaLight)
	l.Width, l.Height = 4, 2
	id := g.Create(l)
	g.Update(id)

	buf := make(block, shader.AreaLightsBlockSize)
	packAreaLights(buf, []lightEntry{{node: g.Node(id), light: l}})
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf))
	rec := shader.AreaLightsHeader
	assert.Equal(t, float32(2), readFloat(buf, rec+shader.AreaLightRight))
	assert.Equal(t, float32(1), readFloat(buf, rec+shader.AreaLightUp+4))
}

func TestOutsideFrustum(t *testing.T) {
	b := geometry.Bounds{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	assert.False(t, outsideFrustum(b, mgl32.Scale3D(0.5, 0.5, 0.5)))
	assert.True(t, outsideFrustum(b, mgl32.Translate3D(5, 0, 0)))
	assert.False(t, outsideFrustum(geometry.EmptyBounds(), mgl32.Translate3D(5, 0, 0)))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pipeline-prepared", PipelinePrepared.String())
	assert.Equal(t, "culled", SkipCulled.String())
	assert.Equal(t, "unknown", SkipReason(200).String())
}

func TestFrameRenderer_Prewarm(t *testing.T) {
	f := newFixture(t)
	f.addModel(t, quadMesh(0, 1, 2), material.NewPrincipled())
	f.addModel(t, quadMesh(0, 2, 3), material.NewPrincipled())
	f.addModel(t, quadMesh(0, 1, 2), material.NewUnlit())
	f.addModel(t, nil, material.NewUnlit())
	require.NoError(t, f.g.AddChild(f.layer, f.g.Create(scene.NewLight(scene.PointLight))))

	ready, err := f.fr.Prewarm(context.Background(), f.g, f.layer, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ready)
	builds := f.shaders.Stats().Builds

	fs, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 3, fs.Draws)
	assert.Equal(t, builds, f.shaders.Stats().Builds, "frame reuses prewarmed permutations")

	_, err = f.fr.Prewarm(context.Background(), f.g, f.camera, 2)
	assert.ErrorIs(t, err, ErrNotLayer)
}

func TestFrameRenderer_ReleasesDestroyedModels(t *testing.T) {
	f := newFixture(t)
	var ids []scene.NodeID
	for i := 0; i < 5; i++ {
		ids = append(ids, f.addModel(t, quadMesh(0, 1, 2), material.NewUnlit()))
	}
	_, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	require.Equal(t, 5, f.rc.Stats().UniformSets.Len)
	require.Equal(t, 5, f.rc.Stats().BindSets.Len)

	for _, id := range ids {
		f.g.Destroy(id)
	}
	_, err = f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Zero(t, f.rc.Stats().UniformSets.Len)
	assert.Zero(t, f.rc.Stats().BindSets.Len)
}

func TestFrameRenderer_ReleasesSwappedMaterial(t *testing.T) {
	f := newFixture(t)
	id := f.addModel(t, quadMesh(0, 1, 2), material.NewUnlit())
	_, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)

	f.g.Node(id).Payload().(*scene.Model).Materials = []*material.Material{material.NewUnlit()}
	_, err = f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 1, f.rc.Stats().UniformSets.Len, "only the current material keeps buffers")

	assert.Equal(t, 1, f.fr.ReleaseLayer(f.layer))
	assert.Zero(t, f.rc.Stats().UniformSets.Len)
}

func TestFrameRenderer_OpaqueFrontToBack(t *testing.T) {
	f := newFixture(t)
	mat := material.NewUnlit()
	far := f.addModel(t, quadMesh(0, 1, 2, 0, 2, 3), mat)
	f.g.SetPosition(far, mgl32.Vec3{0, 0, -10})
	f.addModel(t, quadMesh(0, 1, 2), mat)

	_, err := f.fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	require.Len(t, f.rec.draws, 2)
	assert.Equal(t, uint32(3), f.rec.draws[0].count, "near opaque first")
	assert.Equal(t, uint32(6), f.rec.draws[1].count)
}

func TestFrameRenderer_DepthPrepass(t *testing.T) {
	f := newFixture(t)
	cfg := DefaultConfig()
	cfg.DepthPrepass = true
	fr, err := NewFrameRenderer(f.rc, f.meshes, f.shaders, cfg)
	require.NoError(t, err)

	solid := material.NewUnlit()
	glass := material.NewUnlit()
	glass.SetOpacity(0.5)
	far := f.addModel(t, quadMesh(0, 1, 2, 0, 2, 3), solid)
	f.g.SetPosition(far, mgl32.Vec3{0, 0, -10})
	f.addModel(t, quadMesh(0, 1, 2), solid)
	f.addModel(t, quadMesh(0, 1, 3, 1, 2, 3, 0, 2, 3), glass)

	fs, err := fr.RenderFrame(context.Background(), f.g, f.passes())
	require.NoError(t, err)
	assert.Equal(t, 2, fs.DepthDraws)
	assert.Equal(t, 3, fs.Draws)

	counts := make([]uint32, len(f.rec.draws))
	for i, d := range f.rec.draws {
		counts[i] = d.count
	}
	assert.Equal(t, []uint32{3, 6, 3, 6, 9}, counts, "depth-only opaque draws precede shading")

	s := f.rc.Stats()
	assert.Equal(t, 5, s.UniformSets.Len, "opaque draws keep a depth and a main uniform set")
	assert.Equal(t, uint64(3), s.PipelinesCreated, "depth, shaded opaque and blended pipelines")
}
