package internal

import "math/rand"

// Random is the seedable byte source behind CXNN
type Random struct {
	seed int64
	rng  *rand.Rand
}

// NewRandom returns a generator seeded with seed
func NewRandom(seed int64) *Random {
	r := &Random{}
	r.Reseed(seed)
	return r
}

// Reseed restarts the sequence from seed
func (r *Random) Reseed(seed int64) {
	r.seed = seed
	r.rng = rand.New(rand.NewSource(seed))
}

// Seed returns the seed the current sequence started from
func (r *Random) Seed() int64 {
	return r.seed
}

// Byte returns the next value in 0-255
func (r *Random) Byte() uint8 {
	return uint8(r.rng.Intn(256))
}
