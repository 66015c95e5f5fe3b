package shader

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/g3d/internal/logging"
	"github.com/gogpu/g3d/material"
	"github.com/gogpu/g3d/rhi"
	"github.com/gogpu/wgpu/hal/noop"
)

type countingValidator struct {
	calls atomic.Int32
	err   error
}

func (v *countingValidator) validate(string) error {
	v.calls.Add(1)
	return v.err
}

func newTestShaderCache(t *testing.T, v *countingValidator) *Cache {
	t.Helper()
	rc, err := rhi.NewContext(&noop.Device{}, &noop.Queue{}, rhi.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	c := NewCache(rc, Config{Validate: true, Validator: v.validate})
	t.Cleanup(func() {
		c.Clear()
		rc.Close()
	})
	return c
}

func TestCache_SharedPermutation(t *testing.T) {
	v := &countingValidator{}
	c := newTestShaderCache(t, v)
	f := FeatureSet{Flags: FeatureNormals | FeatureUV0 | FeatureLighting}

	a := material.NewPrincipled()
	b := material.NewPrincipled()
	b.SetBaseColor(mgl32.Vec4{1, 0, 0, 1})
	b.SetRoughness(0.7)

	sa := c.GetOrBuild(a, f)
	sb := c.GetOrBuild(b, f)
	if sa == nil {
		t.Fatal("GetOrBuild returned nil")
	}
	if sa != sb {
		t.Error("materials with equal structure must share shader stages")
	}
	if got := c.Stats().Builds; got != 1 {
		t.Errorf("builds = %d, want 1", got)
	}
	if v.calls.Load() != 1 {
		t.Errorf("validator calls = %d, want 1", v.calls.Load())
	}

	b.SetTexture(material.BaseColorMap, &material.Texture{Data: textureData(false)})
	if sc := c.GetOrBuild(b, f); sc == nil || sc == sa {
		t.Error("a structural change must build a new permutation")
	}
}

func TestCache_NegativeCaching(t *testing.T) {
	orig := logging.Logger()
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))
	t.Cleanup(func() { logging.SetLogger(orig) })

	v := &countingValidator{err: errors.New("bad wgsl")}
	c := newTestShaderCache(t, v)
	m := material.NewUnlit()

	for i := 0; i < 3; i++ {
		if s := c.GetOrBuild(m, FeatureSet{}); s != nil {
			t.Fatalf("call %d: GetOrBuild = %v, want nil", i, s)
		}
	}
	if got := c.Stats(); got.Builds != 1 || got.Failures != 1 {
		t.Errorf("stats = %+v, want one failed build", got)
	}
	if n := strings.Count(buf.String(), "build failed"); n != 1 {
		t.Errorf("failure logged %d times, want 1", n)
	}
	if err := c.Err(KeyFor(m, FeatureSet{})); !errors.Is(err, ErrValidation) {
		t.Errorf("Err() = %v, want ErrValidation", err)
	}

	c.Clear()
	v.err = nil
	if c.GetOrBuild(m, FeatureSet{}) == nil {
		t.Error("Clear must forget failed permutations")
	}
}

func TestCache_GenerateFailure(t *testing.T) {
	v := &countingValidator{}
	c := newTestShaderCache(t, v)
	m := material.NewCustom(&material.Custom{Name: "empty"})
	if c.GetOrBuild(m, FeatureSet{}) != nil {
		t.Fatal("GetOrBuild of an empty custom shader should fail")
	}
	if v.calls.Load() != 0 {
		t.Error("validator must not run when generation fails")
	}
	if !errors.Is(c.Err(KeyFor(m, FeatureSet{})), ErrEmptyCustomShader) {
		t.Errorf("Err() = %v", c.Err(KeyFor(m, FeatureSet{})))
	}
}

func TestCache_ConcurrentBuild(t *testing.T) {
	v := &countingValidator{}
	c := newTestShaderCache(t, v)
	m := material.NewPrincipled()
	f := FeatureSet{Flags: FeatureNormals | FeatureLighting}

	const n = 16
	results := make([]*rhi.ShaderStages, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrBuild(m, f)
		}(i)
	}
	wg.Wait()

	for i, s := range results {
		if s == nil || s != results[0] {
			t.Fatalf("result %d = %p, want %p", i, s, results[0])
		}
	}
	if got := c.Stats().Builds; got != 1 {
		t.Errorf("builds = %d, want 1", got)
	}
}

func TestCache_ValidationDisabled(t *testing.T) {
	rc, err := rhi.NewContext(&noop.Device{}, &noop.Queue{}, rhi.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	v := &countingValidator{err: errors.New("never called")}
	c := NewCache(rc, Config{Validate: false, Validator: v.validate})
	if c.GetOrBuild(material.NewUnlit(), FeatureSet{}) == nil {
		t.Fatal("GetOrBuild returned nil")
	}
	if v.calls.Load() != 0 {
		t.Error("validator ran with validation disabled")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestNagaValidator_RejectsInvalid(t *testing.T) {
	if err := NagaValidator("fn broken( {"); err == nil {
		t.Error("NagaValidator accepted invalid WGSL")
	}
}
