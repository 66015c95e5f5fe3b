package rhi

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func completenessDescription() ShaderDescription {
	return ShaderDescription{
		UniformBlocks: []BlockVariable{
			{Name: "main", Binding: MainUniformBinding, Size: 256},
			{Name: "lights", Binding: LightsUniformBinding, Size: 1024},
		},
		CombinedImageSamplers: []SamplerVariable{
			{Name: "normalMap", Binding: 7},
			{Name: "baseColorMap", Binding: 3},
			{Name: "envMap", Binding: 4, Cube: true},
			{Name: SamplerShadowMap2D, Binding: 5, ArrayDims: []int{MaxShadowMapsPerType}},
		},
	}
}

func uniformSet(t *testing.T, c *Context) *UniformBufferSet {
	t.Helper()
	u := c.UniformBufferSet(UniformBufferSetKey{Model: 1})
	if _, err := c.EnsureUniformBuffer(&u.Main, "main", 256); err != nil {
		t.Fatal(err)
	}
	if _, err := c.EnsureUniformBuffer(&u.Lights, "lights", 1024); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestContext_BuildBindings_Completeness(t *testing.T) {
	c := newTestContext(t)
	stages, err := c.CreateShaderStages("complete", "", completenessDescription())
	if err != nil {
		t.Fatal(err)
	}
	base, err := c.CreateTexture(TextureDescription{Label: "base", Width: 8, Height: 8, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	shadow, err := c.CreateTexture(TextureDescription{Label: "shadow", Width: 8, Height: 8, Format: gputypes.TextureFormatR32Float})
	if err != nil {
		t.Fatal(err)
	}

	list, err := c.BuildBindings(stages, BindingInputs{
		Uniforms:   uniformSet(t, c),
		Textures:   []MaterialTexture{{Name: "baseColorMap", Texture: base, Sampler: LinearClampSampler}},
		ShadowMaps: []ShadowMapArray{{Name: SamplerShadowMap2D, Textures: []*Texture{shadow}}},
	})
	if err != nil {
		t.Fatalf("BuildBindings: %v", err)
	}

	dummy2D, _ := c.DummyTexture(false)
	dummyCube, _ := c.DummyTexture(true)

	var ubufs, sampled int
	slots := map[int]Binding{}
	for i, b := range list {
		if i > 0 && list[i-1].Slot > b.Slot {
			t.Errorf("bindings not ordered by slot: %d after %d", b.Slot, list[i-1].Slot)
		}
		switch b.Kind {
		case UniformBuffer:
			ubufs++
		case SampledTexture:
			sampled++
			slots[b.Slot] = b
		}
	}
	if ubufs != 2 {
		t.Errorf("uniform bindings = %d, want 2", ubufs)
	}
	if sampled != 4 {
		t.Fatalf("sampled bindings = %d, want 4 (one per declared sampler)", sampled)
	}

	if got := slots[3].Textures[0].Texture; got != base {
		t.Error("baseColorMap should bind the material texture")
	}
	if got := slots[7].Textures[0].Texture; got != dummy2D {
		t.Error("unbound normalMap should get the 2D dummy")
	}
	env := slots[4]
	if !env.Cube || env.Textures[0].Texture != dummyCube {
		t.Error("unbound envMap should get the cube dummy")
	}
	shadows := slots[5].Textures
	if len(shadows) != MaxShadowMapsPerType {
		t.Fatalf("shadow array length = %d, want %d", len(shadows), MaxShadowMapsPerType)
	}
	if shadows[0].Texture != shadow {
		t.Error("shadow element 0 should be the shadow map")
	}
	for i := 1; i < len(shadows); i++ {
		if shadows[i].Texture != dummy2D {
			t.Errorf("shadow element %d should be padded with the 2D dummy", i)
		}
	}

	if _, err := c.BindSet(list); err != nil {
		t.Errorf("BindSet: %v", err)
	}
}

func TestContext_BuildBindings_MissingUniforms(t *testing.T) {
	c := newTestContext(t)
	stages, err := c.CreateShaderStages("missing", "", completenessDescription())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.BuildBindings(stages, BindingInputs{}); !errors.Is(err, ErrMissingUniformBuffer) {
		t.Errorf("error = %v, want ErrMissingUniformBuffer", err)
	}
	if _, err := c.BuildBindings(nil, BindingInputs{}); !errors.Is(err, ErrNilShader) {
		t.Errorf("nil stages error = %v, want ErrNilShader", err)
	}
}

func TestContext_BuildBindings_WrongDimension(t *testing.T) {
	c := newTestContext(t)
	stages, err := c.CreateShaderStages("dim", "", ShaderDescription{
		CombinedImageSamplers: []SamplerVariable{{Name: "envMap", Binding: 0, Cube: true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	flat, err := c.CreateTexture(TextureDescription{Label: "flat", Width: 4, Height: 4, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	list, err := c.BuildBindings(stages, BindingInputs{
		Textures: []MaterialTexture{{Name: "envMap", Texture: flat, Sampler: LinearClampSampler}},
	})
	if err != nil {
		t.Fatal(err)
	}
	dummyCube, _ := c.DummyTexture(true)
	if got := list[0].Textures[0].Texture; got != dummyCube {
		t.Error("a 2D texture bound to a cube sampler should be replaced by the cube dummy")
	}
}

func TestContext_BindSet(t *testing.T) {
	c := newTestContext(t)
	buf, err := c.CreateBuffer("ubo", 64, gputypes.BufferUsageUniform)
	if err != nil {
		t.Fatal(err)
	}
	texA, _ := c.CreateTexture(TextureDescription{Label: "a", Width: 1, Height: 1, Format: gputypes.TextureFormatRGBA8Unorm})
	texB, _ := c.CreateTexture(TextureDescription{Label: "b", Width: 1, Height: 1, Format: gputypes.TextureFormatRGBA8Unorm})
	smp, _ := c.Sampler(LinearClampSampler)

	list := func(tex *Texture) BindingList {
		return BindingList{
			SampledTextures(1, gputypes.ShaderStageFragment, false, TextureAndSampler{Texture: tex, Sampler: smp}),
			UniformBufferBinding(0, gputypes.ShaderStagesVertexFragment, buf, 0, 64),
		}
	}

	s1, err := c.BindSet(list(texA))
	if err != nil {
		t.Fatalf("BindSet: %v", err)
	}
	s2, _ := c.BindSet(list(texA))
	if s1 != s2 {
		t.Error("equal content should return the same bind set")
	}
	s3, _ := c.BindSet(list(texB))
	if s3 == s1 {
		t.Error("different texture should return a different bind set")
	}
	if s3.Layout() != s1.Layout() {
		t.Error("structurally equal lists should share the layout")
	}

	if n := c.ReleaseBindSetsUsing(texA.ID()); n != 1 {
		t.Errorf("ReleaseBindSetsUsing(texA) = %d, want 1", n)
	}
	if n := c.ReleaseBindSetsUsing(buf.ID()); n != 1 {
		t.Errorf("ReleaseBindSetsUsing(buf) = %d, want 1", n)
	}

	if _, err := c.BindSet(BindingList{{Slot: 0, Kind: UniformBuffer}}); err == nil {
		t.Error("BindSet with a nil buffer should fail")
	}
}

func TestBindingList_Keys(t *testing.T) {
	a := &Buffer{id: 1}
	b := &Buffer{id: 2}
	l1 := BindingList{UniformBufferBinding(0, gputypes.ShaderStageVertex, a, 0, 16)}
	l2 := BindingList{UniformBufferBinding(0, gputypes.ShaderStageVertex, b, 0, 16)}
	l3 := BindingList{UniformBufferBinding(0, gputypes.ShaderStageVertex|gputypes.ShaderStageFragment, a, 0, 16)}

	if l1.LayoutKey() != l2.LayoutKey() {
		t.Error("same slot types should share a layout key")
	}
	if l1.ContentKey() == l2.ContentKey() {
		t.Error("different buffers should produce different content keys")
	}
	if l1.LayoutKey() == l3.LayoutKey() {
		t.Error("slots visible to different stages should not share a layout key")
	}
}

func TestFlattenSamplers(t *testing.T) {
	got := FlattenSamplers([]SamplerVariable{
		{Name: "shadows", Binding: 5, ArrayDims: []int{2}},
		{Name: "base", Binding: 1},
		{Name: "env", Binding: 3, Cube: true},
	})
	want := []FlatSampler{
		{Name: "base", Element: 0, TextureBinding: 0, SamplerBinding: 1},
		{Name: "env", Element: 0, Cube: true, TextureBinding: 2, SamplerBinding: 3},
		{Name: "shadows", Element: 0, TextureBinding: 4, SamplerBinding: 5},
		{Name: "shadows", Element: 1, TextureBinding: 6, SamplerBinding: 7},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestBitset(t *testing.T) {
	b := newBitset(70)
	b.set(0)
	b.set(69)
	b.set(200)
	if !b.test(0) || !b.test(69) {
		t.Error("set bits should test true")
	}
	if b.test(1) || b.test(200) || b.test(-1) {
		t.Error("unset or out-of-range bits should test false")
	}
	if b.count() != 2 {
		t.Errorf("count = %d, want 2", b.count())
	}
	if newBitset(0) != nil {
		t.Error("newBitset(0) should be nil")
	}
}

func TestContext_UniformBuffers(t *testing.T) {
	c := newTestContext(t)
	key := UniformBufferSetKey{Layer: 1, Model: 2, Material: 3}
	u := c.UniformBufferSet(key)
	if c.UniformBufferSet(key) != u {
		t.Fatal("same key should return the same set")
	}
	if c.UniformBufferSet(UniformBufferSetKey{Layer: 1, Model: 2, Material: 3, Selector: SelectorDepthPrepass}) == u {
		t.Error("different selector should return a different set")
	}

	small, err := c.EnsureUniformBuffer(&u.Main, "main", 64)
	if err != nil {
		t.Fatal(err)
	}
	same, _ := c.EnsureUniformBuffer(&u.Main, "main", 32)
	if same != small {
		t.Error("a large enough buffer should be reused")
	}
	grown, _ := c.EnsureUniformBuffer(&u.Main, "main", 128)
	if grown == small || grown.Size() < 128 || u.Main != grown {
		t.Error("a too small buffer should be replaced")
	}

	n := c.ReleaseUniformBuffers(func(k UniformBufferSetKey) bool { return k.Model == 2 })
	if n != 2 {
		t.Errorf("ReleaseUniformBuffers = %d, want 2", n)
	}
	if c.Stats().UniformSets.Len != 0 {
		t.Error("uniform sets should be released")
	}
}
