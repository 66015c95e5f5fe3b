package render

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/cache"
	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/shader"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Config configures a FrameRenderer.
type Config struct {
	// MaxLights caps the non-area lights used per layer. At most rhi.MaxLights.
	MaxLights int

	// Cull skips subsets whose bounds lie outside the camera frustum.
	Cull bool

	// DepthPrepass lays down the depth of opaque draws with depth-only
	// shaders before shading them, for targets with a depth attachment.
	DepthPrepass bool
}

// DefaultConfig returns the default renderer configuration.
func DefaultConfig() Config {
	return Config{MaxLights: rhi.MaxLights, Cull: true}
}

// LayerPass renders the subtree of a layer node into a target.
type LayerPass struct {
	Layer  scene.NodeID
	Target Target

	// ShadowMaps2D and ShadowMapsCube are indexed by Light.ShadowMap of
	// directional/spot and point lights respectively.
	ShadowMaps2D   []*rhi.Texture
	ShadowMapsCube []*rhi.Texture

	// DepthTexture is bound to custom materials that read scene depth.
	DepthTexture *rhi.Texture
}

// FrameStats describes one RenderFrame call.
type FrameStats struct {
	Passes        int
	PassesSkipped int
	Renderables   int
	Draws         int
	Skipped       int
	Culled        int
	Lights        int
	DepthDraws    int
	Abandoned     bool
}

// Stats are cumulative renderer counters.
type Stats struct {
	Frames    uint64
	Draws     uint64
	Skipped   uint64
	Abandoned uint64
	InFlight  int
}

type submission struct {
	index   uint64
	encoder hal.CommandEncoder
	buffer  hal.CommandBuffer
}

// maxReported bounds the skip reasons remembered for log deduplication.
const maxReported = 4096

type skipKey struct {
	node   scene.NodeID
	subset int
}

// FrameRenderer records and submits frames.
//
// RenderFrame must be called from one goroutine at a time; Stats may be
// read concurrently.
type FrameRenderer struct {
	rc      *rhi.Context
	meshes  *geometry.BufferCache
	shaders *shader.Cache
	cfg     Config

	scratch   []byte
	reported  *cache.LRU[skipKey, SkipReason]
	materials map[*material.Material]struct{}
	inflight  []submission
	inflightN atomic.Int64

	frames    atomic.Uint64
	draws     atomic.Uint64
	skipped   atomic.Uint64
	abandoned atomic.Uint64
}

// NewFrameRenderer creates a renderer drawing with the given caches, all
// of which must be built on rc.
func NewFrameRenderer(rc *rhi.Context, meshes *geometry.BufferCache, shaders *shader.Cache, cfg Config) (*FrameRenderer, error) {
	if rc == nil || meshes == nil || shaders == nil {
		return nil, ErrNilContext
	}
	if cfg.MaxLights < 0 || cfg.MaxLights > rhi.MaxLights {
		return nil, fmt.Errorf("render: max lights %d (limit %d)", cfg.MaxLights, rhi.MaxLights)
	}
	return &FrameRenderer{
		rc:        rc,
		meshes:    meshes,
		shaders:   shaders,
		cfg:       cfg,
		reported:  cache.NewLRU[skipKey, SkipReason](maxReported),
		materials: make(map[*material.Material]struct{}),
	}, nil
}

// passEnv holds the per-pass values shared by every renderable.
type passEnv struct {
	layerKey  uint64
	rp        *rhi.RenderPassDescriptor
	viewProj  mgl32.Mat4
	cameraPos mgl32.Vec3
	width     float32
	height    float32
	features  shader.Feature
	prepass   bool

	lights     block
	areaLights block

	probe      *rhi.Texture
	ao         *rhi.Texture
	depth      *rhi.Texture
	shadowMaps []rhi.ShadowMapArray
}

// RenderFrame renders the passes in order into one command buffer and
// submits it.
//
// Per-pass problems (missing camera, not a layer) skip the pass. If ctx
// is cancelled or a target reports hal.ErrSurfaceLost, the frame is
// abandoned: nothing is submitted, the pipelines of the current pass's
// render pass descriptor are invalidated, and the returned error wraps
// ErrFrameAbandoned and the cause.
func (r *FrameRenderer) RenderFrame(ctx context.Context, g *scene.Graph, passes []LayerPass) (FrameStats, error) {
	var fs FrameStats
	r.reclaim()
	if err := ctx.Err(); err != nil {
		r.abandoned.Add(1)
		fs.Abandoned = true
		return fs, fmt.Errorf("%w: %w", ErrFrameAbandoned, err)
	}

	device := r.rc.Device()
	enc, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "g3d_frame"})
	if err != nil {
		return fs, fmt.Errorf("render: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("g3d_frame"); err != nil {
		enc.Destroy()
		return fs, fmt.Errorf("render: begin encoding: %w", err)
	}
	clear(r.materials)

	for i := range passes {
		err := r.renderPass(ctx, enc, g, &passes[i], &fs)
		switch {
		case err == nil:
		case abandons(err):
			return fs, r.abandon(enc, passes[i].Target, err, &fs)
		default:
			fs.PassesSkipped++
			slogger().Warn("render: pass skipped", "pass", i, "err", err)
		}
	}

	cmd, err := enc.EndEncoding()
	if err != nil {
		enc.Destroy()
		return fs, fmt.Errorf("render: end encoding: %w", err)
	}
	index, err := r.rc.Queue().Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		device.FreeCommandBuffer(cmd)
		enc.Destroy()
		if errors.Is(err, hal.ErrSurfaceLost) || errors.Is(err, hal.ErrDeviceLost) {
			for _, p := range passes {
				if p.Target != nil {
					r.rc.InvalidateCachedReferences(p.Target.Descriptor())
				}
			}
		}
		return fs, fmt.Errorf("render: submit: %w", err)
	}
	r.inflight = append(r.inflight, submission{index: index, encoder: enc, buffer: cmd})
	r.inflightN.Store(int64(len(r.inflight)))

	for m := range r.materials {
		m.Commit()
	}
	if n := r.releaseStale(g, passes); n > 0 {
		slogger().Debug("render: released uniform buffers", "sets", n)
	}
	r.frames.Add(1)
	r.draws.Add(uint64(fs.Draws))
	r.skipped.Add(uint64(fs.Skipped))
	return fs, nil
}

// releaseStale drops the uniform buffer sets of the passes' layers whose
// model left the graph or no longer uses the material they were written
// for.
func (r *FrameRenderer) releaseStale(g *scene.Graph, passes []LayerPass) int {
	layers := make(map[uint64]struct{}, len(passes))
	for _, p := range passes {
		layers[p.Layer.Key()] = struct{}{}
	}
	return r.rc.ReleaseUniformBuffers(func(k rhi.UniformBufferSetKey) bool {
		if _, ok := layers[k.Layer]; !ok {
			return false
		}
		n := g.Node(scene.NodeIDFromKey(k.Model))
		if n == nil {
			return true
		}
		m, ok := n.Payload().(*scene.Model)
		if !ok {
			return true
		}
		mat := m.MaterialFor(k.Entry)
		return mat == nil || mat.ID() != k.Material
	})
}

// ReleaseLayer drops every uniform buffer set written for layer. Call it
// after destroying a layer node.
func (r *FrameRenderer) ReleaseLayer(layer scene.NodeID) int {
	key := layer.Key()
	return r.rc.ReleaseUniformBuffers(func(k rhi.UniformBufferSetKey) bool { return k.Layer == key })
}

// abandons reports whether err ends the frame instead of a single pass.
func abandons(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, hal.ErrSurfaceLost)
}

func (r *FrameRenderer) abandon(enc hal.CommandEncoder, t Target, cause error, fs *FrameStats) error {
	enc.DiscardEncoding()
	enc.Destroy()
	n := 0
	if t != nil {
		n = r.rc.InvalidateCachedReferences(t.Descriptor())
	}
	fs.Abandoned = true
	r.abandoned.Add(1)
	slogger().Warn("render: frame abandoned", "err", cause, "pipelines_invalidated", n)
	return fmt.Errorf("%w: %w", ErrFrameAbandoned, cause)
}

// reclaim frees command buffers of completed submissions.
func (r *FrameRenderer) reclaim() {
	done := r.rc.Queue().PollCompleted()
	device := r.rc.Device()
	r.inflight = slices.DeleteFunc(r.inflight, func(s submission) bool {
		if s.index > done {
			return false
		}
		device.FreeCommandBuffer(s.buffer)
		s.encoder.Destroy()
		return true
	})
	r.inflightN.Store(int64(len(r.inflight)))
}

// Close waits for the GPU and frees every in-flight command buffer.
func (r *FrameRenderer) Close() error {
	err := r.rc.Device().WaitIdle()
	device := r.rc.Device()
	for _, s := range r.inflight {
		device.FreeCommandBuffer(s.buffer)
		s.encoder.Destroy()
	}
	r.inflight = nil
	r.inflightN.Store(0)
	if err != nil {
		return fmt.Errorf("render: wait idle: %w", err)
	}
	return nil
}

// Stats returns cumulative counters.
func (r *FrameRenderer) Stats() Stats {
	return Stats{
		Frames:    r.frames.Load(),
		Draws:     r.draws.Load(),
		Skipped:   r.skipped.Load(),
		Abandoned: r.abandoned.Load(),
		InFlight:  int(r.inflightN.Load()),
	}
}

func (r *FrameRenderer) renderPass(ctx context.Context, enc hal.CommandEncoder, g *scene.Graph, pass *LayerPass, fs *FrameStats) error {
	if pass.Target == nil {
		return ErrNilTarget
	}
	ln := g.Node(pass.Layer)
	if ln == nil {
		return fmt.Errorf("%w: %w", ErrNotLayer, scene.ErrInvalidNode)
	}
	layer, ok := ln.Payload().(*scene.Layer)
	if !ok {
		return ErrNotLayer
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	view, err := pass.Target.ColorView()
	if err != nil {
		return err
	}
	rp := pass.Target.Descriptor()
	if rp == nil || rp.Destroyed() {
		return rhi.ErrRenderPassDestroyed
	}

	g.Update(pass.Layer)
	g.CalculateGlobalVariables(layer.Camera)
	w, h := float32(pass.Target.Width()), float32(pass.Target.Height())
	aspect := float32(1)
	if h > 0 {
		aspect = w / h
	}
	viewProj, ok := g.ViewProjection(layer.Camera, aspect)
	if !ok {
		return ErrNoCamera
	}

	env := &passEnv{
		layerKey:  pass.Layer.Key(),
		rp:        rp,
		viewProj:  viewProj,
		cameraPos: g.Node(layer.Camera).GlobalPosition(),
		width:     w,
		height:    h,
		features:  shader.FeatureLighting,
		prepass:   r.cfg.DepthPrepass && rp.DepthFormat() != gputypes.TextureFormatUndefined,
		depth:     pass.DepthTexture,
		shadowMaps: []rhi.ShadowMapArray{
			{Name: rhi.SamplerShadowMap2D, Textures: pass.ShadowMaps2D},
			{Name: rhi.SamplerShadowMapCube, Cube: true, Textures: pass.ShadowMapsCube},
		},
	}
	items, lights, areas := r.collect(g, pass.Layer)
	r.setupLights(env, layer, lights, areas)
	r.setupTextures(env, layer)
	fs.Lights += len(lights) + len(areas)

	for i := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if items[i].state == Unevaluated {
			r.prepare(g, env, &items[i])
		}
	}

	var opaque, transparent []*renderable
	for i := range items {
		it := &items[i]
		fs.Renderables++
		r.report(it)
		if it.state != PipelinePrepared {
			fs.Skipped++
			if it.reason == SkipCulled {
				fs.Culled++
			}
			continue
		}
		if it.pipeline.State().BlendEnable {
			transparent = append(transparent, it)
		} else {
			opaque = append(opaque, it)
		}
	}
	slices.SortStableFunc(opaque, func(a, b *renderable) int { return cmp.Compare(a.distance, b.distance) })
	slices.SortStableFunc(transparent, func(a, b *renderable) int { return cmp.Compare(b.distance, a.distance) })

	rpe := enc.BeginRenderPass(r.passDescriptor(layer, pass.Target, view))
	rpe.SetViewport(0, 0, w, h, 0, 1)
	for _, it := range opaque {
		if it.depthPipeline != nil {
			record(rpe, it, it.depthPipeline, it.depthSet)
			fs.DepthDraws++
		}
	}
	for _, it := range slices.Concat(opaque, transparent) {
		record(rpe, it, it.pipeline, it.bindSet)
		it.advance(Drawn)
		r.materials[it.mat] = struct{}{}
		fs.Draws++
	}
	rpe.End()
	fs.Passes++
	return nil
}

func (r *FrameRenderer) passDescriptor(layer *scene.Layer, t Target, view hal.TextureView) *hal.RenderPassDescriptor {
	c := layer.ClearColor
	desc := &hal.RenderPassDescriptor{
		Label: "g3d_layer",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])},
		}},
	}
	if dv := t.DepthView(); dv != nil {
		desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              dv,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   1,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		}
	}
	return desc
}

// collect walks the active part of the layer subtree. Models become one
// renderable per subset once their mesh is loaded; a model whose mesh is
// unavailable becomes a single skipped renderable.
func (r *FrameRenderer) collect(g *scene.Graph, layer scene.NodeID) (items []renderable, lights, areas []lightEntry) {
	g.Walk(layer, func(_ scene.NodeID, n *scene.Node) bool {
		if !n.GloballyActive() {
			return false
		}
		switch p := n.Payload().(type) {
		case *scene.Model:
			gm := r.meshes.LoadOrUpdate(p.Mesh)
			if gm == nil {
				it := renderable{node: n, model: p}
				it.skip(SkipNoMesh)
				items = append(items, it)
				return true
			}
			for i := range gm.Subsets {
				items = append(items, renderable{node: n, model: p, subset: i, gpu: gm})
			}
		case *scene.Light:
			if p.Type == scene.AreaLight {
				areas = append(areas, lightEntry{node: n, light: p})
			} else {
				lights = append(lights, lightEntry{node: n, light: p})
			}
		}
		return true
	})
	return items, lights, areas
}

func (r *FrameRenderer) setupTextures(env *passEnv, layer *scene.Layer) {
	if env.probe = r.meshes.LoadTexture(layer.LightProbe); env.probe != nil && env.probe.IsCube() {
		env.features |= shader.FeatureLightProbe
	} else {
		env.probe = nil
	}
	if env.ao = r.meshes.LoadTexture(layer.AO); env.ao != nil {
		env.features |= shader.FeatureSSAO
	}
}

func (r *FrameRenderer) setupLights(env *passEnv, layer *scene.Layer, lights, areas []lightEntry) {
	if len(lights) > r.cfg.MaxLights {
		slogger().Debug("render: lights truncated", "lights", len(lights), "max", r.cfg.MaxLights)
		lights = lights[:r.cfg.MaxLights]
	}
	env.lights = make(block, shader.LightsBlockSize)
	packLights(env.lights, lights, layer.AmbientColor)
	for _, l := range lights {
		if l.castsShadow() {
			env.features |= shader.FeatureShadows
			break
		}
	}
	if len(areas) > 0 {
		env.features |= shader.FeatureAreaLights
		env.areaLights = make(block, shader.AreaLightsBlockSize)
		packAreaLights(env.areaLights, areas)
	}
}

// featuresFor returns the permutation features of a renderable in this
// pass.
func (env *passEnv) featuresFor(it *renderable) shader.FeatureSet {
	f := shader.MeshFeatures(&it.gpu.Layout)
	f.Flags |= env.features
	if !it.model.ReceivesShadows {
		f = f.Without(shader.FeatureShadows)
	}
	return f
}

// prepare advances a renderable as far as PipelinePrepared.
func (r *FrameRenderer) prepare(g *scene.Graph, env *passEnv, it *renderable) {
	sub := it.gpu.Subsets[it.subset]
	if sub.Count == 0 {
		it.skip(SkipEmpty)
		return
	}
	global := it.node.GlobalTransform()
	it.mvp = env.viewProj.Mul4(global)
	if r.cfg.Cull && outsideFrustum(sub.Bounds, it.mvp) {
		it.skip(SkipCulled)
		return
	}
	center := global.Mul4x1(sub.Bounds.Center().Vec4(1)).Vec3()
	it.distance = env.cameraPos.Sub(center).Len()
	it.advance(BoundsComputed)

	it.mat = it.model.MaterialFor(it.subset)
	if it.mat == nil {
		it.skip(SkipNoMaterial)
		return
	}
	features := env.featuresFor(it)
	it.stages = r.shaders.GetOrBuild(it.mat, features)
	if it.stages == nil {
		it.skip(SkipNoShader)
		return
	}
	set, err := r.bind(g, env, it, features, rhi.SelectorMain)
	if err != nil {
		slogger().Warn("render: bindings failed", "node", it.node.ID(), "subset", it.subset, "err", err)
		it.skip(SkipBindings)
		return
	}
	it.bindSet = set
	it.advance(ResourcesResolved)

	state := rhi.DefaultGraphicsPipelineState()
	state.InputLayout = it.gpu.Layout
	it.mat.ApplyState(&state)
	if it.node.GlobalOpacity() < 1 && !state.BlendEnable {
		state.SetAlphaBlend()
		state.DepthWrite = false
	}
	if env.prepass && !state.BlendEnable && state.DepthTest && state.DepthWrite {
		if err := r.prepareDepth(g, env, it, state); err != nil {
			slogger().Warn("render: depth prepass failed", "node", it.node.ID(), "subset", it.subset, "err", err)
		} else {
			state.DepthWrite = false
			state.DepthFunc = gputypes.CompareFunctionLessEqual
		}
	}
	p, err := r.rc.PreparePipeline(state, it.stages, env.rp, set.Layout())
	if err != nil {
		slogger().Warn("render: pipeline failed", "node", it.node.ID(), "subset", it.subset, "err", err)
		it.skip(SkipPipeline)
		return
	}
	it.pipeline = p
	it.advance(PipelinePrepared)
}

// prepareDepth resolves the depth-only draw of an opaque renderable from
// its main pipeline state: same geometry and raster state, no color
// writes, depth written with a strict test.
func (r *FrameRenderer) prepareDepth(g *scene.Graph, env *passEnv, it *renderable, state rhi.GraphicsPipelineState) error {
	features := shader.MeshFeatures(&it.gpu.Layout).With(shader.FeatureDepthPass)
	stages := r.shaders.GetOrBuild(it.mat, features)
	if stages == nil {
		return ErrNoDepthShader
	}
	set, err := r.bindStages(g, env, it, stages, features, rhi.SelectorDepthPrepass)
	if err != nil {
		return err
	}
	state.TargetBlend.ColorWrite = gputypes.ColorWriteMaskNone
	state.DepthWrite = true
	state.DepthFunc = gputypes.CompareFunctionLess
	p, err := r.rc.PreparePipeline(state, stages, env.rp, set.Layout())
	if err != nil {
		return err
	}
	it.depthSet, it.depthPipeline = set, p
	return nil
}

// bind writes the uniform buffers of a renderable's main shader and
// returns its binding set.
func (r *FrameRenderer) bind(g *scene.Graph, env *passEnv, it *renderable, features shader.FeatureSet, sel rhi.UniformSelector) (*rhi.BindSet, error) {
	return r.bindStages(g, env, it, it.stages, features, sel)
}

// bindStages writes the uniform buffers stages declares into the set
// selected by sel and returns the binding set.
func (r *FrameRenderer) bindStages(g *scene.Graph, env *passEnv, it *renderable, stages *rhi.ShaderStages, features shader.FeatureSet, sel rhi.UniformSelector) (*rhi.BindSet, error) {
	key := rhi.UniformBufferSetKey{
		Layer:    env.layerKey,
		Model:    it.node.ID().Key(),
		Material: it.mat.ID(),
		Entry:    it.subset,
		Selector: sel,
	}
	ubs := r.rc.UniformBufferSet(key)

	du := drawUniforms{
		model:    it.node.GlobalTransform(),
		viewProj: env.viewProj,
		camera:   env.cameraPos,
		width:    env.width,
		height:   env.height,
		params:   it.mat.Params(),
		opacity:  it.node.GlobalOpacity(),
		morph:    it.model.MorphWeights,
		skinned:  features.Has(shader.FeatureSkinning),
	}
	if c := it.mat.Custom(); c != nil {
		du.custom = c.Properties
	}
	if du.skinned {
		du.bones, du.normals = skinMatrices(g, it.model.Skin)
	}

	for _, ub := range stages.Description().UniformBlocks {
		var (
			buf  **rhi.Buffer
			data []byte
		)
		switch ub.Binding {
		case rhi.MainUniformBinding:
			buf = &ubs.Main
			data = r.scratchBlock(max(ub.Size, du.size()))
			du.pack(data)
		case rhi.LightsUniformBinding:
			buf, data = &ubs.Lights, env.lights
		case rhi.AreaLightsUniformBinding:
			buf, data = &ubs.AreaLights, env.areaLights
		default:
			continue
		}
		if data == nil {
			data = r.scratchBlock(ub.Size)
		}
		b, err := r.rc.EnsureUniformBuffer(buf, ub.Name, uint64(len(data)))
		if err != nil {
			return nil, err
		}
		if err := r.rc.WriteBuffer(b, 0, data); err != nil {
			return nil, err
		}
	}

	in := rhi.BindingInputs{
		Uniforms:     ubs,
		LightProbe:   env.probe,
		DepthTexture: env.depth,
		AOTexture:    env.ao,
		ShadowMaps:   env.shadowMaps,
	}
	for _, slot := range material.TextureSlots() {
		if t := it.mat.Texture(slot); t != nil {
			in.Textures = append(in.Textures, rhi.MaterialTexture{
				Name:    slot.String(),
				Texture: r.meshes.LoadTexture(t.Data),
				Sampler: t.Sampler,
			})
		}
	}
	if c := it.mat.Custom(); c != nil {
		for _, ct := range c.Textures {
			in.Textures = append(in.Textures, rhi.MaterialTexture{
				Name:    ct.Name,
				Texture: r.meshes.LoadTexture(ct.Texture.Data),
				Sampler: ct.Texture.Sampler,
			})
		}
	}
	list, err := r.rc.BuildBindings(stages, in)
	if err != nil {
		return nil, err
	}
	return r.rc.BindSet(list)
}

// scratchBlock returns a zeroed scratch buffer of n bytes, valid until
// the next call.
func (r *FrameRenderer) scratchBlock(n uint64) block {
	if uint64(cap(r.scratch)) < n {
		r.scratch = make([]byte, n)
	}
	b := r.scratch[:n]
	clear(b)
	return b
}

// skinMatrices returns the bone matrices of the skin node, bringing the
// joint transforms up to date first. A missing skin yields no matrices,
// which leaves the mesh in its bind pose.
func skinMatrices(g *scene.Graph, id scene.NodeID) (bones, normals []mgl32.Mat4) {
	n := g.Node(id)
	if n == nil {
		return nil, nil
	}
	skin, ok := n.Payload().(*scene.Skin)
	if !ok {
		return nil, nil
	}
	for _, j := range skin.Joints {
		g.CalculateGlobalVariables(j)
	}
	return skin.BoneMatrices(g)
}

// report logs a skipped renderable when its skip reason changes.
func (r *FrameRenderer) report(it *renderable) {
	k := skipKey{node: it.node.ID(), subset: it.subset}
	if it.state != Skipped {
		r.reported.Delete(k)
		return
	}
	if prev, ok := r.reported.Get(k); ok && prev == it.reason {
		return
	}
	r.reported.Set(k, it.reason)
	if it.reason == SkipCulled {
		slogger().Debug("render: draw culled", "node", it.node.ID(), "subset", it.subset)
		return
	}
	slogger().Warn("render: draw skipped", "node", it.node.ID(), "subset", it.subset, "reason", it.reason.String())
}

// record encodes one draw of a renderable with pipeline p and set.
func record(rpe hal.RenderPassEncoder, it *renderable, p *rhi.GraphicsPipeline, set *rhi.BindSet) {
	rpe.SetPipeline(p.Raw())
	rpe.SetBindGroup(0, set.Group(0), nil)
	rpe.SetBindGroup(1, set.Group(1), nil)
	rpe.SetVertexBuffer(0, it.gpu.Vertex.Raw(), 0)
	sub := it.gpu.Subsets[it.subset]
	if it.gpu.Indexed() {
		rpe.SetIndexBuffer(it.gpu.Index.Raw(), it.gpu.IndexFormat, 0)
		rpe.DrawIndexed(sub.Count, 1, sub.Offset, 0, 0)
	} else {
		rpe.Draw(sub.Count, 1, sub.Offset, 0)
	}
}
