package shader

import (
	"context"

	"github.com/gogpu/g3d/internal/parallel"
	"github.com/gogpu/g3d/material"
)

// Request names one permutation to build ahead of rendering.
type Request struct {
	Material *material.Material
	Features FeatureSet
}

// Prewarm builds the requested permutations on up to workers goroutines
// (GOMAXPROCS when workers <= 0) so that the first frame using them does
// not stall on generation and validation. Duplicate and already cached
// requests cost nothing. It returns the number of distinct permutations
// that are available afterwards.
func (c *Cache) Prewarm(ctx context.Context, reqs []Request, workers int) (int, error) {
	seen := make(map[Key]struct{}, len(reqs))
	var jobs []func()
	for _, r := range reqs {
		if r.Material == nil {
			continue
		}
		key := KeyFor(r.Material, r.Features)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := c.entries.Get(key); ok {
			continue
		}
		jobs = append(jobs, func() { c.GetOrBuild(r.Material, r.Features) })
	}

	if len(jobs) > 0 {
		pool := parallel.NewPool(min(workers, len(jobs)))
		err := pool.Run(ctx, jobs)
		pool.Close()
		if err != nil {
			return 0, err
		}
		slogger().Debug("shader: prewarmed", "requested", len(seen), "built", len(jobs))
	}

	ready := 0
	for key := range seen {
		if e, ok := c.entries.Get(key); ok && e.stages != nil {
			ready++
		}
	}
	return ready, nil
}
