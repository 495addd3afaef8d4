package core

import "math/rand"

// NewRand returns a pseudo-random generator for the given seed. Generators
// are created per run (or per worker) and passed explicitly; the engine never
// touches global random state.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// DeriveSeed maps a master seed and an offset to a stable child seed, so
// parallel workers draw from distinct yet reproducible streams. Uses a
// splitmix64-style finalizer to decorrelate adjacent offsets.
func DeriveSeed(master, offset int64) int64 {
	z := uint64(master) + (uint64(offset)+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
