// Package cache provides the sharded key/value store behind the render
// context's GPU object caches (pipelines, samplers, binding sets, shader
// permutations).
//
//	pipelines := cache.NewStore[PipelineKey, *GraphicsPipeline](PipelineKey.Hash)
//	p := pipelines.GetOrCreate(key, build)
//
// # Eviction
//
// A Store never evicts implicitly. Entries leave through Delete, DeleteFunc
// or Clear, which return the removed values so the owner can destroy the
// GPU objects they wrap.
//
// LRU is the bounded counterpart for bookkeeping data that may be dropped,
// such as per-draw log state.
//
// # Thread Safety
//
// Store and LRU are safe for concurrent use and must not be copied after
// creation.
package cache
