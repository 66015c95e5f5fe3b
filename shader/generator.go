package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/g3d/geometry"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/gputypes"
)

// Program is generated WGSL with its reflection.
type Program struct {
	Source string
	Desc   rhi.ShaderDescription
}

// Sampler bindings start after the uniform blocks so that every binding
// number in the reflection is unique.
const firstSamplerBinding = rhi.AreaLightsUniformBinding + 1

type varying struct {
	name string
	typ  string
}

type generator struct {
	m *material.Material
	f FeatureSet

	lit       bool
	areaLit   bool
	inputs    []rhi.InOutVariable
	inTypes   map[string]string
	varyings  []varying
	varyIndex map[string]int
	samplers  []rhi.SamplerVariable

	vs strings.Builder
	fs strings.Builder

	// Per-build guards for vertex-side values shared by several varyings.
	haveObjectNormal bool
	haveSkinNormal   bool
}

// Generate builds the shader permutation of a material under a feature
// set.
func Generate(m *material.Material, f FeatureSet) (*Program, error) {
	if m == nil {
		return nil, ErrNilMaterial
	}
	if int(f.MorphTargets) > geometry.MaxMorphTargets {
		return nil, fmt.Errorf("%w: %d", ErrTooManyMorphTargets, f.MorphTargets)
	}
	if c := m.Custom(); c != nil {
		if err := checkCustom(c); err != nil {
			return nil, err
		}
	}

	g := &generator{
		m:         m,
		f:         f,
		inTypes:   make(map[string]string),
		varyIndex: make(map[string]int),
	}
	g.lit = f.Has(FeatureLighting) && !f.Has(FeatureDepthPass) &&
		m.Kind() == material.KindPrincipled && m.Lighting() != material.LightingNone
	g.areaLit = g.lit && f.Has(FeatureAreaLights)

	g.vertexPosition()
	switch {
	case f.Has(FeatureDepthPass):
		g.depthFragment()
	case m.Kind() == material.KindCustom:
		g.customFragment()
	default:
		g.standardFragment()
	}
	return g.assemble(), nil
}

func (g *generator) vsLine(format string, args ...any) {
	g.vs.WriteString("    ")
	fmt.Fprintf(&g.vs, format, args...)
	g.vs.WriteByte('\n')
}

func (g *generator) fsLine(format string, args ...any) {
	g.fs.WriteString("    ")
	fmt.Fprintf(&g.fs, format, args...)
	g.fs.WriteByte('\n')
}

// input declares a vertex input once and returns its expression.
func (g *generator) input(name, typ string, format gputypes.VertexFormat) string {
	if _, ok := g.inTypes[name]; !ok {
		g.inTypes[name] = typ
		g.inputs = append(g.inputs, rhi.InOutVariable{
			Name:     name,
			Location: uint32(len(g.inputs)),
			Format:   format,
		})
	}
	return "vin." + name
}

// interpolant declares a vertex output on first use, assigning it from
// vsExpr, and returns the fragment-side expression. Later calls only
// return the fragment use.
func (g *generator) interpolant(name, typ, vsExpr string) string {
	if _, ok := g.varyIndex[name]; !ok {
		g.varyIndex[name] = len(g.varyings)
		g.varyings = append(g.varyings, varying{name: name, typ: typ})
		g.vsLine("vout.%s = %s;", name, vsExpr)
	}
	return "frag." + name
}

func (g *generator) vertexPosition() {
	pos := g.input(rhi.AttrPosition, "vec3<f32>", gputypes.VertexFormatFloat32x3)
	g.vsLine("var local_pos = %s;", pos)
	for i := 0; i < int(g.f.MorphTargets); i++ {
		tp := g.input(rhi.AttrTargetPosition(i), "vec3<f32>", gputypes.VertexFormatFloat32x3)
		g.vsLine("local_pos = local_pos + %s * %s;", tp, morphWeight(i))
	}
	if g.f.Has(FeatureSkinning) {
		g.vsLine("let skin = %s;", g.skinSum("u.bones"))
		g.vsLine("let world = skin * vec4<f32>(local_pos, 1.0);")
		g.vsLine("vout.clip = u.view_projection * world;")
		return
	}
	g.vsLine("let world = u.model * vec4<f32>(local_pos, 1.0);")
	g.vsLine("vout.clip = u.mvp * vec4<f32>(local_pos, 1.0);")
}

func morphWeight(i int) string {
	return fmt.Sprintf("u.morph_weights[%d].%c", i/4, "xyzw"[i%4])
}

// skinSum returns the weighted sum of four matrices of arr selected by
// the joint indices.
func (g *generator) skinSum(arr string) string {
	jointTyp, jointFmt := "vec4<i32>", gputypes.VertexFormatSint32x4
	switch g.f.Joints {
	case JointUint:
		jointTyp, jointFmt = "vec4<u32>", gputypes.VertexFormatUint32x4
	case JointFloat:
		jointTyp, jointFmt = "vec4<f32>", gputypes.VertexFormatFloat32x4
	}
	j := g.input(rhi.AttrJoints, jointTyp, jointFmt)
	w := g.input(rhi.AttrWeights, "vec4<f32>", gputypes.VertexFormatFloat32x4)
	terms := make([]string, 4)
	for i, c := range "xyzw" {
		idx := fmt.Sprintf("%s.%c", j, c)
		if g.f.Joints == JointFloat {
			idx = "u32(" + idx + ")"
		}
		terms[i] = fmt.Sprintf("%s[%s] * %s.%c", arr, idx, w, c)
	}
	return strings.Join(terms, " + ")
}

// objectNormal declares the morphed object-space normal in the vertex
// stage. It reports false when the mesh has no normals.
func (g *generator) objectNormal() bool {
	if !g.f.Has(FeatureNormals) {
		return false
	}
	if g.haveObjectNormal {
		return true
	}
	g.haveObjectNormal = true
	norm := g.input(rhi.AttrNormal, "vec3<f32>", gputypes.VertexFormatFloat32x3)
	g.vsLine("var local_norm = %s;", norm)
	if g.f.Has(FeatureMorphNormals) {
		for i := 0; i < int(g.f.MorphTargets); i++ {
			tn := g.input(rhi.AttrTargetNormal(i), "vec3<f32>", gputypes.VertexFormatFloat32x3)
			g.vsLine("local_norm = local_norm + %s * %s;", tn, morphWeight(i))
		}
	}
	return true
}

// normalMatrix returns the vertex-side matrix that maps object normals to
// world space.
func (g *generator) normalMatrix() string {
	if !g.f.Has(FeatureSkinning) {
		return "u.normal_matrix"
	}
	if !g.haveSkinNormal {
		g.haveSkinNormal = true
		g.vsLine("let skin_normal = %s;", g.skinSum("u.bone_normals"))
	}
	return "skin_normal"
}

func (g *generator) worldNormal() string {
	if !g.objectNormal() {
		return "vec3<f32>(0.0, 0.0, 1.0)"
	}
	expr := fmt.Sprintf("(%s * vec4<f32>(local_norm, 0.0)).xyz", g.normalMatrix())
	return "normalize(" + g.interpolant("world_normal", "vec3<f32>", expr) + ")"
}

// tangentFrame returns the world tangent and binormal, or false when the
// mesh has no complete tangent frame.
func (g *generator) tangentFrame() (tangent, binormal string, ok bool) {
	if !g.f.Has(FeatureTangents) || !g.objectNormal() {
		return "", "", false
	}
	nm := g.normalMatrix()
	tan := g.input(rhi.AttrTangent, "vec3<f32>", gputypes.VertexFormatFloat32x3)
	bin := g.input(rhi.AttrBinormal, "vec3<f32>", gputypes.VertexFormatFloat32x3)
	tangent = g.interpolant("world_tangent", "vec3<f32>", fmt.Sprintf("(%s * vec4<f32>(%s, 0.0)).xyz", nm, tan))
	binormal = g.interpolant("world_binormal", "vec3<f32>", fmt.Sprintf("(%s * vec4<f32>(%s, 0.0)).xyz", nm, bin))
	return tangent, binormal, true
}

func (g *generator) worldPosition() string {
	return g.interpolant("world_pos", "vec3<f32>", "world.xyz")
}

func (g *generator) uv(set int) string {
	if set == 1 && g.f.Has(FeatureUV1) {
		return g.interpolant("uv1", "vec2<f32>", g.input(rhi.AttrUV1, "vec2<f32>", gputypes.VertexFormatFloat32x2))
	}
	if g.f.Has(FeatureUV0) {
		return g.interpolant("uv0", "vec2<f32>", g.input(rhi.AttrUV0, "vec2<f32>", gputypes.VertexFormatFloat32x2))
	}
	return "vec2<f32>(0.0, 0.0)"
}

func (g *generator) vertexColor() string {
	if !g.f.Has(FeatureVertexColors) {
		return "vec4<f32>(1.0, 1.0, 1.0, 1.0)"
	}
	return g.interpolant("color", "vec4<f32>", g.input(rhi.AttrColor, "vec4<f32>", gputypes.VertexFormatFloat32x4))
}

// declareSampler records a combined image sampler once.
func (g *generator) declareSampler(name string, cube bool, count int) {
	for _, s := range g.samplers {
		if s.Name == name {
			return
		}
	}
	v := rhi.SamplerVariable{Name: name, Binding: firstSamplerBinding + len(g.samplers), Cube: cube}
	if count > 1 {
		v.ArrayDims = []int{count}
	}
	g.samplers = append(g.samplers, v)
}

// textureNames returns the WGSL texture and sampler variables of element
// e of a declared sampler.
func textureNames(name string, e, count int) (tex, smp string) {
	if count > 1 {
		return fmt.Sprintf("%s_tex%d", name, e), fmt.Sprintf("%s_smp%d", name, e)
	}
	return name + "_tex", name + "_smp"
}

// sampleSlot declares the sampler of a material texture slot and returns
// the sampling expression, or "" when the slot is empty.
func (g *generator) sampleSlot(slot material.TextureSlot) string {
	t := g.m.Texture(slot)
	if t == nil || t.Data == nil {
		return ""
	}
	return g.sampleNamed(slot.String(), t.Data.IsCube(), t.UVSet)
}

func (g *generator) sampleNamed(name string, cube bool, uvSet int) string {
	g.declareSampler(name, cube, 1)
	tex, smp := textureNames(name, 0, 1)
	coord := g.uv(uvSet)
	if cube {
		coord = g.worldNormal()
	}
	return fmt.Sprintf("textureSample(%s, %s, %s)", tex, smp, coord)
}

func (g *generator) alphaTest() {
	if g.m.AlphaMode() == material.AlphaMask {
		g.fsLine("if (alpha < u.params1.y) {")
		g.fsLine("    discard;")
		g.fsLine("}")
	}
}

func (g *generator) baseColor() {
	g.fsLine("var base = u.base_color;")
	if s := g.sampleSlot(material.BaseColorMap); s != "" {
		g.fsLine("base = base * %s;", s)
	}
	if g.m.VertexColors() {
		g.fsLine("base = base * %s;", g.vertexColor())
	}
	g.fsLine("var alpha = base.a * u.params1.z;")
	if s := g.sampleSlot(material.OpacityMap); s != "" {
		g.fsLine("alpha = alpha * %s.r;", s)
	}
}

func (g *generator) depthFragment() {
	if g.m.AlphaMode() == material.AlphaMask {
		g.baseColor()
		g.alphaTest()
	}
	g.fsLine("return vec4<f32>(0.0, 0.0, 0.0, 1.0);")
}

func (g *generator) standardFragment() {
	g.baseColor()
	if g.lit {
		g.lighting()
	} else {
		g.fsLine("var color = base.rgb;")
	}
	if g.m.Kind() == material.KindPrincipled {
		g.fsLine("var emissive = u.emissive.rgb;")
		if s := g.sampleSlot(material.EmissiveMap); s != "" {
			g.fsLine("emissive = emissive * %s.rgb;", s)
		}
		g.fsLine("color = color + emissive;")
	}
	g.alphaTest()
	g.fsLine("return vec4<f32>(color, alpha);")
}

func (g *generator) lighting() {
	g.fsLine("var n = %s;", g.worldNormal())
	if t, b, ok := g.tangentFrame(); ok {
		if s := g.sampleSlot(material.NormalMap); s != "" {
			g.fsLine("let nm = %s.xyz * 2.0 - vec3<f32>(1.0, 1.0, 1.0);", s)
			g.fsLine("n = normalize(mat3x3<f32>(normalize(%s), normalize(%s), n) * vec3<f32>(nm.xy * u.params0.w, nm.z));", t, b)
		}
	}
	g.fsLine("let p = %s;", g.worldPosition())
	g.fsLine("let v = normalize(u.camera_position.xyz - p);")
	g.fsLine("var specular = u.params0.x;")
	if s := g.sampleSlot(material.SpecularMap); s != "" {
		g.fsLine("specular = specular * %s.r;", s)
	}
	g.fsLine("var rough = u.params0.y;")
	if s := g.sampleSlot(material.RoughnessMap); s != "" {
		g.fsLine("rough = rough * %s.g;", s)
	}
	g.fsLine("var metal = u.params0.z;")
	if s := g.sampleSlot(material.MetalnessMap); s != "" {
		g.fsLine("metal = metal * %s.b;", s)
	}
	g.fsLine("let diffuse = base.rgb * (1.0 - metal);")
	g.fsLine("let f0 = mix(vec3<f32>(0.08 * specular), base.rgb, metal);")
	g.fsLine("var ambient = lights.ambient.rgb * diffuse;")
	if g.f.Has(FeatureLightProbe) {
		g.declareSampler(rhi.SamplerLightProbe, true, 1)
		tex, smp := textureNames(rhi.SamplerLightProbe, 0, 1)
		g.fsLine("ambient = ambient + textureSample(%s, %s, n).rgb * diffuse;", tex, smp)
	}
	if s := g.sampleSlot(material.OcclusionMap); s != "" {
		g.fsLine("ambient = ambient * mix(1.0, %s.r, u.params1.x);", s)
	}
	if g.f.Has(FeatureSSAO) {
		g.declareSampler(rhi.SamplerAOTexture, false, 1)
		tex, smp := textureNames(rhi.SamplerAOTexture, 0, 1)
		g.fsLine("ambient = ambient * textureSample(%s, %s, frag.clip.xy * u.viewport.zw).r;", tex, smp)
	}
	g.fsLine("var color = ambient;")

	shadow := "1.0"
	if g.f.Has(FeatureShadows) {
		g.declareSampler(rhi.SamplerShadowMap2D, false, rhi.MaxShadowMapsPerType)
		g.declareSampler(rhi.SamplerShadowMapCube, true, rhi.MaxShadowMapsPerType)
		shadow = "g3d_shadow(l, p)"
	}
	g.fsLine("for (var i = 0u; i < lights.info.x; i = i + 1u) {")
	g.fsLine("    let l = lights.lights[i];")
	g.fsLine("    color = color + g3d_light(l, n, v, p, diffuse, f0, rough) * %s;", shadow)
	g.fsLine("}")

	if g.areaLit {
		g.fsLine("for (var i = 0u; i < area_lights.info.x; i = i + 1u) {")
		g.fsLine("    let al = area_lights.lights[i];")
		g.fsLine("    let d = al.position.xyz - p;")
		g.fsLine("    let dist2 = max(dot(d, d), 0.0001);")
		g.fsLine("    let ldir = d * inverseSqrt(dist2);")
		g.fsLine("    let facing = abs(dot(normalize(cross(al.right.xyz, al.up.xyz)), ldir));")
		g.fsLine("    let area = 4.0 * length(al.right.xyz) * length(al.up.xyz);")
		g.fsLine("    color = color + diffuse * al.color.rgb * max(dot(n, ldir), 0.0) * facing * area / dist2;")
		g.fsLine("}")
	}
}

func (g *generator) customFragment() {
	c := g.m.Custom()
	for _, t := range c.Textures {
		cube := t.Texture.Data != nil && t.Texture.Data.IsCube()
		g.declareSampler(t.Name, cube, 1)
	}
	if c.Needs.DepthTexture {
		g.declareSampler(rhi.SamplerDepthTexture, false, 1)
	}
	g.fsLine("var ctx: MaterialContext;")
	g.fsLine("ctx.frag_coord = frag.clip;")
	g.fsLine("ctx.color = vec4<f32>(1.0, 1.0, 1.0, 1.0);")
	if c.Needs.UV0 {
		g.fsLine("ctx.uv0 = %s;", g.uv(0))
	}
	if c.Needs.UV1 {
		g.fsLine("ctx.uv1 = %s;", g.uv(1))
	}
	if c.Needs.WorldNormal {
		g.fsLine("ctx.world_normal = %s;", g.worldNormal())
	}
	if c.Needs.WorldPosition {
		g.fsLine("ctx.world_position = %s;", g.worldPosition())
	}
	if c.Needs.Color {
		g.fsLine("ctx.color = %s;", g.vertexColor())
	}
	g.fsLine("var out_color = custom_material(ctx);")
	g.fsLine("out_color.a = out_color.a * u.params1.z;")
	g.fsLine("return out_color;")
}

func (g *generator) assemble() *Program {
	var b strings.Builder
	var props []material.Property
	if c := g.m.Custom(); c != nil {
		props = c.Properties
	}
	skinned := g.f.Has(FeatureSkinning)

	b.WriteString("struct MainUniforms {\n")
	for _, f := range mainMembers {
		fmt.Fprintf(&b, "    %s: %s,\n", f.name, f.typ)
	}
	for _, p := range props {
		fmt.Fprintf(&b, "    %s: vec4<f32>,\n", p.Name)
	}
	if skinned {
		fmt.Fprintf(&b, "    bones: array<mat4x4<f32>, %d>,\n", MaxJoints)
		fmt.Fprintf(&b, "    bone_normals: array<mat4x4<f32>, %d>,\n", MaxJoints)
	}
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "@group(0) @binding(%d) var<uniform> u: MainUniforms;\n\n", rhi.MainUniformBinding)

	blocks := []rhi.BlockVariable{{Name: "main", Binding: rhi.MainUniformBinding, Size: MainBlockSize(len(props), skinned)}}
	if g.lit {
		b.WriteString(lightsWGSL)
		fmt.Fprintf(&b, "@group(0) @binding(%d) var<uniform> lights: Lights;\n\n", rhi.LightsUniformBinding)
		blocks = append(blocks, rhi.BlockVariable{Name: "lights", Binding: rhi.LightsUniformBinding, Size: LightsBlockSize})
	}
	if g.areaLit {
		b.WriteString(areaLightsWGSL)
		fmt.Fprintf(&b, "@group(0) @binding(%d) var<uniform> area_lights: AreaLights;\n\n", rhi.AreaLightsUniformBinding)
		blocks = append(blocks, rhi.BlockVariable{Name: "area_lights", Binding: rhi.AreaLightsUniformBinding, Size: AreaLightsBlockSize})
	}

	counts := make(map[string]int, len(g.samplers))
	for _, s := range g.samplers {
		counts[s.Name] = s.Count()
	}
	for _, fs := range rhi.FlattenSamplers(g.samplers) {
		tex, smp := textureNames(fs.Name, fs.Element, counts[fs.Name])
		typ := "texture_2d<f32>"
		if fs.Cube {
			typ = "texture_cube<f32>"
		}
		fmt.Fprintf(&b, "@group(1) @binding(%d) var %s: %s;\n", fs.TextureBinding, tex, typ)
		fmt.Fprintf(&b, "@group(1) @binding(%d) var %s: sampler;\n", fs.SamplerBinding, smp)
	}
	if len(g.samplers) > 0 {
		b.WriteByte('\n')
	}

	b.WriteString("struct VertexInput {\n")
	for _, in := range g.inputs {
		fmt.Fprintf(&b, "    @location(%d) %s: %s,\n", in.Location, in.Name, g.inTypes[in.Name])
	}
	b.WriteString("}\n\n")
	b.WriteString("struct VertexOutput {\n    @builtin(position) clip: vec4<f32>,\n")
	for i, v := range g.varyings {
		fmt.Fprintf(&b, "    @location(%d) %s: %s,\n", i, v.name, v.typ)
	}
	b.WriteString("}\n\n")

	if g.lit {
		b.WriteString(lightFnWGSL)
		if g.f.Has(FeatureShadows) {
			b.WriteString(shadowFnWGSL())
		}
	}
	if c := g.m.Custom(); c != nil && !g.f.Has(FeatureDepthPass) {
		b.WriteString(materialContextWGSL)
		b.WriteString("fn custom_material(ctx: MaterialContext) -> vec4<f32> {\n")
		b.WriteString(c.Fragment)
		b.WriteString("\n}\n\n")
	}

	fmt.Fprintf(&b, "@vertex\nfn %s(vin: VertexInput) -> VertexOutput {\n    var vout: VertexOutput;\n", rhi.VertexEntryPoint)
	b.WriteString(g.vs.String())
	b.WriteString("    return vout;\n}\n\n")
	fmt.Fprintf(&b, "@fragment\nfn %s(frag: VertexOutput) -> @location(0) vec4<f32> {\n", rhi.FragmentEntryPoint)
	b.WriteString(g.fs.String())
	b.WriteString("}\n")

	return &Program{
		Source: b.String(),
		Desc: rhi.ShaderDescription{
			Inputs:                g.inputs,
			UniformBlocks:         blocks,
			CombinedImageSamplers: g.samplers,
		},
	}
}

type member struct{ name, typ string }

// mainMembers mirrors the Offset constants.
var mainMembers = []member{
	{"mvp", "mat4x4<f32>"},
	{"model", "mat4x4<f32>"},
	{"normal_matrix", "mat4x4<f32>"},
	{"view_projection", "mat4x4<f32>"},
	{"camera_position", "vec4<f32>"},
	{"viewport", "vec4<f32>"},
	{"base_color", "vec4<f32>"},
	{"emissive", "vec4<f32>"},
	{"params0", "vec4<f32>"},
	{"params1", "vec4<f32>"},
	{"morph_weights", "array<vec4<f32>, 2>"},
}

const lightsWGSL = `struct Light {
    position: vec4<f32>,
    direction: vec4<f32>,
    color: vec4<f32>,
    attenuation: vec4<f32>,
    cone: vec4<f32>,
    shadow: vec4<f32>,
    shadow_matrix: mat4x4<f32>,
}

struct Lights {
    info: vec4<u32>,
    ambient: vec4<f32>,
    lights: array<Light, 15>,
}

`

const areaLightsWGSL = `struct AreaLight {
    position: vec4<f32>,
    right: vec4<f32>,
    up: vec4<f32>,
    color: vec4<f32>,
}

struct AreaLights {
    info: vec4<u32>,
    lights: array<AreaLight, 15>,
}

`

const lightFnWGSL = `fn g3d_light(l: Light, n: vec3<f32>, v: vec3<f32>, p: vec3<f32>, diffuse: vec3<f32>, f0: vec3<f32>, rough: f32) -> vec3<f32> {
    var ldir = normalize(-l.direction.xyz);
    var atten = 1.0;
    if (l.position.w > 0.5) {
        let d = l.position.xyz - p;
        let dist = length(d);
        ldir = d / max(dist, 0.0001);
        atten = 1.0 / max(l.attenuation.x + l.attenuation.y * dist + l.attenuation.z * dist * dist, 0.0001);
        if (l.position.w > 1.5) {
            atten = atten * smoothstep(l.cone.y, l.cone.x, dot(-ldir, normalize(l.direction.xyz)));
        }
    }
    let ndl = max(dot(n, ldir), 0.0);
    let h = normalize(ldir + v);
    let shininess = mix(256.0, 2.0, clamp(rough, 0.0, 1.0));
    let specular = f0 * pow(max(dot(n, h), 0.0), shininess);
    return (diffuse + specular) * l.color.rgb * ndl * atten;
}

`

func shadowFnWGSL() string {
	var b strings.Builder
	b.WriteString(`fn g3d_shadow(l: Light, p: vec3<f32>) -> f32 {
    let idx = i32(l.shadow.x);
    if (idx < 0) {
        return 1.0;
    }
    var stored = 1.0;
    var depth = 0.0;
    if (l.shadow.z > 0.5) {
        let d = p - l.position.xyz;
        depth = length(d) / max(l.shadow.w, 0.0001);
        switch idx {
`)
	shadowCases(&b, rhi.SamplerShadowMapCube, "d")
	b.WriteString(`        }
    } else {
        let lp = l.shadow_matrix * vec4<f32>(p, 1.0);
        let ndc = lp.xyz / lp.w;
        depth = ndc.z;
        let uv = vec2<f32>(ndc.x * 0.5 + 0.5, 0.5 - ndc.y * 0.5);
        switch idx {
`)
	shadowCases(&b, rhi.SamplerShadowMap2D, "uv")
	b.WriteString(`        }
    }
    return select(0.0, 1.0, depth - l.shadow.y <= stored);
}

`)
	return b.String()
}

func shadowCases(b *strings.Builder, name, coord string) {
	for e := 0; e < rhi.MaxShadowMapsPerType; e++ {
		tex, smp := textureNames(name, e, rhi.MaxShadowMapsPerType)
		fmt.Fprintf(b, "            case %d: { stored = textureSampleLevel(%s, %s, %s, 0.0).r; }\n", e, tex, smp, coord)
	}
	b.WriteString("            default: {}\n")
}

const materialContextWGSL = `struct MaterialContext {
    uv0: vec2<f32>,
    uv1: vec2<f32>,
    world_normal: vec3<f32>,
    world_position: vec3<f32>,
    color: vec4<f32>,
    frag_coord: vec4<f32>,
}

`

var reservedNames = map[string]bool{
	"u": true, "lights": true, "area_lights": true, "bones": true, "bone_normals": true,
	"alias": true, "break": true, "case": true, "const": true, "continue": true,
	"default": true, "discard": true, "else": true, "enable": true, "false": true,
	"fn": true, "for": true, "if": true, "let": true, "loop": true, "override": true,
	"return": true, "struct": true, "switch": true, "true": true, "var": true, "while": true,
	rhi.SamplerLightProbe: true, rhi.SamplerDepthTexture: true, rhi.SamplerAOTexture: true,
	rhi.SamplerShadowMap2D: true, rhi.SamplerShadowMapCube: true,
}

func init() {
	for _, m := range mainMembers {
		reservedNames[m.name] = true
	}
}

func validIdent(s string) bool {
	if s == "" || strings.HasPrefix(s, "_") || reservedNames[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func checkCustom(c *material.Custom) error {
	if strings.TrimSpace(c.Fragment) == "" {
		return fmt.Errorf("%w: %q", ErrEmptyCustomShader, c.Name)
	}
	seen := make(map[string]bool)
	for _, p := range c.Properties {
		if !validIdent(p.Name) || seen[p.Name] {
			return fmt.Errorf("%w: property %q", ErrInvalidName, p.Name)
		}
		seen[p.Name] = true
	}
	for _, t := range c.Textures {
		if !validIdent(t.Name) || seen[t.Name] {
			return fmt.Errorf("%w: texture %q", ErrInvalidName, t.Name)
		}
		seen[t.Name] = true
	}
	return nil
}
