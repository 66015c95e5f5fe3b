package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// Default configuration constants.
const (
	// DefaultShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	DefaultShardCount = 16

	// shardMask is used for fast shard selection (DefaultShardCount - 1).
	shardMask = DefaultShardCount - 1
)

// Hasher is a function that computes a hash for a key.
// Used by Store for shard selection.
type Hasher[K any] func(K) uint64

// StringHasher computes FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher returns the key itself as the hash (identity hash).
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Store is a thread-safe, sharded map for GPU object caches.
//
// Unlike a general-purpose cache, a Store never evicts on its own: entries
// leave only through Delete, DeleteFunc or Clear. GPU objects such as
// pipelines and samplers are owned by whoever holds the Store, and silent
// eviction would leak them.
//
// GetOrCreate is insert-if-absent: the create function runs under the
// shard lock, so concurrent callers for the same key never build twice.
type Store[K comparable, V any] struct {
	shards [DefaultShardCount]*storeShard[K, V]
	hasher Hasher[K]

	// Statistics (atomic for zero-allocation reads)
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// storeShard is a single shard of the store.
type storeShard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// NewStore creates an empty store.
// The hasher is used for shard selection; use StringHasher, Uint64Hasher,
// or a key type's Hash method.
func NewStore[K comparable, V any](hasher Hasher[K]) *Store[K, V] {
	s := &Store[K, V]{hasher: hasher}
	for i := range s.shards {
		s.shards[i] = &storeShard[K, V]{entries: make(map[K]V)}
	}
	return s
}

// getShard returns the shard for a given key.
func (s *Store[K, V]) getShard(key K) *storeShard[K, V] {
	return s.shards[s.hasher(key)&shardMask]
}

// Get retrieves a value by key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	shard := s.getShard(key)
	shard.mu.RLock()
	v, ok := shard.entries[key]
	shard.mu.RUnlock()

	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// Set stores a value, replacing any previous entry for key.
func (s *Store[K, V]) Set(key K, value V) {
	shard := s.getShard(key)
	shard.mu.Lock()
	shard.entries[key] = value
	shard.mu.Unlock()
}

// GetOrCreate returns the cached value or stores the result of create.
//
// The create function is called with the shard lock held.
func (s *Store[K, V]) GetOrCreate(key K, create func() V) V {
	v, _ := s.GetOrTryCreate(key, func() (V, error) { return create(), nil })
	return v
}

// GetOrTryCreate is GetOrCreate for fallible builds. A failed create is
// not stored, so the next call tries again.
func (s *Store[K, V]) GetOrTryCreate(key K, create func() (V, error)) (V, error) {
	shard := s.getShard(key)

	// Fast path: read lock
	shard.mu.RLock()
	v, ok := shard.entries[key]
	shard.mu.RUnlock()
	if ok {
		s.hits.Add(1)
		return v, nil
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	// Re-check after acquiring write lock
	if v, ok := shard.entries[key]; ok {
		s.hits.Add(1)
		return v, nil
	}

	s.misses.Add(1)
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	shard.entries[key] = v
	return v, nil
}

// Delete removes an entry and returns it so the caller can release it.
func (s *Store[K, V]) Delete(key K) (V, bool) {
	shard := s.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	v, ok := shard.entries[key]
	if ok {
		delete(shard.entries, key)
		s.evictions.Add(1)
	}
	return v, ok
}

// DeleteFunc removes every entry for which pred returns true and returns
// the removed values.
func (s *Store[K, V]) DeleteFunc(pred func(K, V) bool) []V {
	var removed []V
	for _, shard := range s.shards {
		shard.mu.Lock()
		for k, v := range shard.entries {
			if pred(k, v) {
				delete(shard.entries, k)
				removed = append(removed, v)
			}
		}
		shard.mu.Unlock()
	}
	s.evictions.Add(uint64(len(removed)))
	return removed
}

// Range calls fn for every entry until fn returns false.
// fn must not call back into the store.
func (s *Store[K, V]) Range(fn func(K, V) bool) {
	for _, shard := range s.shards {
		shard.mu.RLock()
		for k, v := range shard.entries {
			if !fn(k, v) {
				shard.mu.RUnlock()
				return
			}
		}
		shard.mu.RUnlock()
	}
}

// Clear removes all entries and returns them.
func (s *Store[K, V]) Clear() []V {
	return s.DeleteFunc(func(K, V) bool { return true })
}

// Len returns the total number of entries across all shards.
func (s *Store[K, V]) Len() int {
	total := 0
	for _, shard := range s.shards {
		shard.mu.RLock()
		total += len(shard.entries)
		shard.mu.RUnlock()
	}
	return total
}

// Stats returns current store statistics.
func (s *Store[K, V]) Stats() Stats {
	hits := s.hits.Load()
	misses := s.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:       s.Len(),
		Hits:      hits,
		Misses:    misses,
		HitRate:   hitRate,
		Evictions: s.evictions.Load(),
	}
}

// ResetStats resets all statistics counters to zero.
func (s *Store[K, V]) ResetStats() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
}

// Stats contains store statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
	// Evictions counts removed entries: explicit removals for a Store,
	// limit evictions for an LRU.
	Evictions uint64
}
