package cache

import (
	"strconv"
	"testing"
)

func BenchmarkStoreGet(b *testing.B) {
	s := NewStore[string, int](StringHasher)
	for i := 0; i < 100; i++ {
		s.Set(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Get("50")
	}
}

func BenchmarkStoreGetOrCreate(b *testing.B) {
	s := NewStore[uint64, int](Uint64Hasher)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.GetOrCreate(uint64(i%100), func() int {
			return i
		})
	}
}

func BenchmarkStoreGetParallel(b *testing.B) {
	s := NewStore[uint64, int](Uint64Hasher)
	for i := 0; i < 1000; i++ {
		s.Set(uint64(i), i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			s.Get(uint64(i % 1000))
			i++
		}
	})
}

func BenchmarkLRUSet(b *testing.B) {
	c := NewLRU[int, int](64)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(i%100, i)
	}
}
