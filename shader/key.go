package shader

import (
	"github.com/gogpu/g3d/cache"
	"github.com/gogpu/g3d/material"
)

// Key identifies a shader permutation. Two keys are equal only when all
// three parts are equal.
type Key struct {
	// Source identifies the shader program: the built-in generator for
	// the material kind, or a custom shader.
	Source   string
	Features FeatureSet
	// Material is the material's structural key.
	Material string
}

// KeyFor returns the permutation key of a material under a feature set.
func KeyFor(m *material.Material, f FeatureSet) Key {
	src := "g3d/" + m.Kind().String()
	if c := m.Custom(); c != nil {
		src = "custom/" + c.Name
	}
	return Key{Source: src, Features: f, Material: m.StructuralKey()}
}

// Hash combines all key parts for shard selection.
func (k Key) Hash() uint64 {
	h := cache.StringHasher(k.Source)
	h = h*1099511628211 ^ uint64(k.Features.Flags)
	h = h*1099511628211 ^ uint64(k.Features.MorphTargets)<<8 ^ uint64(k.Features.Joints)
	h = h*1099511628211 ^ cache.StringHasher(k.Material)
	return h
}

// String returns a unique text form of the key.
func (k Key) String() string {
	return k.Source + "|" + k.Features.String() + "|" + k.Material
}
