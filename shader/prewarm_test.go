package shader

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/g3d/material"
)

func TestCache_Prewarm(t *testing.T) {
	v := &countingValidator{}
	c := newTestShaderCache(t, v)
	lit := FeatureSet{Flags: FeatureNormals | FeatureLighting}
	flat := FeatureSet{Flags: FeatureNormals}

	principled := material.NewPrincipled()
	unlit := material.NewUnlit()
	reqs := []Request{
		{Material: principled, Features: lit},
		{Material: principled, Features: flat},
		{Material: material.NewPrincipled(), Features: lit}, // same structure
		{Material: unlit, Features: flat},
		{Material: nil, Features: flat},
	}

	ready, err := c.Prewarm(context.Background(), reqs, 4)
	if err != nil {
		t.Fatalf("Prewarm() error = %v", err)
	}
	if ready != 3 {
		t.Errorf("Prewarm() ready = %d, want 3", ready)
	}
	if got := c.Stats().Builds; got != 3 {
		t.Errorf("builds = %d, want 3", got)
	}
	if c.GetOrBuild(principled, lit) == nil {
		t.Error("prewarmed permutation missing")
	}

	if _, err := c.Prewarm(context.Background(), reqs, 0); err != nil {
		t.Fatal(err)
	}
	if got := c.Stats().Builds; got != 3 {
		t.Errorf("second Prewarm rebuilt: builds = %d, want 3", got)
	}
}

func TestCache_PrewarmFailuresNotReady(t *testing.T) {
	v := &countingValidator{err: errors.New("rejected")}
	c := newTestShaderCache(t, v)
	ready, err := c.Prewarm(context.Background(), []Request{{Material: material.NewUnlit()}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if ready != 0 {
		t.Errorf("ready = %d, want 0 for a failing permutation", ready)
	}
}

func TestCache_PrewarmCancelled(t *testing.T) {
	c := newTestShaderCache(t, &countingValidator{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Prewarm(ctx, []Request{{Material: material.NewUnlit()}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Prewarm() error = %v, want context.Canceled", err)
	}
}
