package random

import "math/bits"

const golden = 0x9e3779b97f4a7c15

// Source is a seeded SplitMix64 generator. It is not safe for concurrent use:
// give every goroutine its own Source.
type Source struct {
	state uint64
}

// New returns a Source whose sequence is fully determined by seed.
func New(seed int64) *Source {
	return &Source{state: mix(uint64(seed) + golden)}
}

func (s *Source) Uint64() uint64 {
	s.state += golden
	return mix(s.state)
}

// Float64 returns a uniform in [0,1) using 53 random bits.
func (s *Source) Float64() float64 {
	const inv53 = 1.0 / (1 << 53)
	return float64(s.Uint64()>>11) * inv53
}

// IntN returns a uniform in [0,n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	if n <= 0 {
		panic("random: invalid argument to IntN")
	}
	hi, _ := bits.Mul64(s.Uint64(), uint64(n))
	return int(hi)
}

func mix(z uint64) uint64 {
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return z
}
