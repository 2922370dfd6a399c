// Package randutil centralises how RNG sources are constructed so that
// every injection point (deck shuffle, AI choice, power cascade pick)
// derives from a single int64 seed and stays reproducible in tests.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. rand/v2's
// PCG wants two 64-bit seeds; both are derived here so call sites only
// ever deal in a single int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// splitmix is the finalizer from splitmix64, used to spread weak seeds
// (small integers, timestamps) across the full 64-bit space.
func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
