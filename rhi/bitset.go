package rhi

import "math/bits"

// bitset records specified sampler bindings.
type bitset []uint64

func newBitset(n int) bitset {
	if n <= 0 {
		return nil
	}
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	if i < 0 || i/64 >= len(b) {
		return
	}
	b[i/64] |= 1 << (i % 64)
}

func (b bitset) test(i int) bool {
	if i < 0 || i/64 >= len(b) {
		return false
	}
	return b[i/64]&(1<<(i%64)) != 0
}

func (b bitset) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}
