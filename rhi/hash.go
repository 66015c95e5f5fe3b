package rhi

import "math"

// FNV-1a parameters for combining key fields into shard hashes.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

func mix(h, v uint64) uint64 {
	h ^= v
	h *= fnvPrime64
	return h
}

func mixBool(h uint64, b bool) uint64 {
	if b {
		return mix(h, 1)
	}
	return mix(h, 0)
}

func mixFloat(h uint64, f float32) uint64 {
	return mix(h, uint64(math.Float32bits(f)))
}
