package services

import "hash/fnv"

// seededRand is a splitmix64 stream seeded from a string.
// Selection must be reproducible across processes and releases, so it cannot depend on math/rand's generator.
type seededRand struct {
	state uint64
}

func newSeededRand(seed string) *seededRand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return &seededRand{state: h.Sum64()}
}

func (r *seededRand) next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Float64 returns a value in [0, 1).
func (r *seededRand) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}
