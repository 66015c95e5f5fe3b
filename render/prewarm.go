package render

import (
	"context"

	"github.com/gogpu/g3d/scene"
	"github.com/gogpu/g3d/shader"
)

// Prewarm uploads the meshes of a layer and builds, on up to workers
// goroutines, the shader permutations its models will need with the
// layer's current lights and textures. It returns the number of distinct
// permutations ready afterwards.
func (r *FrameRenderer) Prewarm(ctx context.Context, g *scene.Graph, layerID scene.NodeID, workers int) (int, error) {
	ln := g.Node(layerID)
	if ln == nil {
		return 0, ErrNotLayer
	}
	layer, ok := ln.Payload().(*scene.Layer)
	if !ok {
		return 0, ErrNotLayer
	}
	g.Update(layerID)

	env := &passEnv{features: shader.FeatureLighting}
	items, lights, areas := r.collect(g, layerID)
	r.setupLights(env, layer, lights, areas)
	r.setupTextures(env, layer)

	reqs := make([]shader.Request, 0, len(items))
	for i := range items {
		it := &items[i]
		if it.gpu == nil {
			continue
		}
		if m := it.model.MaterialFor(it.subset); m != nil {
			reqs = append(reqs, shader.Request{Material: m, Features: env.featuresFor(it)})
		}
	}
	return r.shaders.Prewarm(ctx, reqs, workers)
}
