package engine

import (
	"math/rand/v2"
	"time"

	"github.com/lixenwraith/vi-danmaku/vmath"
)

// RandomSource supplies the interpreter's randomness
type RandomSource interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n), n > 0
}

// NewRandomSource returns a PCG backed source; seed 0 derives one from the clock
func NewRandomSource(seed uint64) (RandomSource, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed)), seed
}

type fastSource struct {
	r *vmath.FastRand
}

// NewFastRandSource returns a xorshift backed source
func NewFastRandSource(seed uint64) RandomSource {
	return &fastSource{r: vmath.NewFastRand(seed)}
}

func (s *fastSource) Float64() float64 { return s.r.Float64() }
func (s *fastSource) IntN(n int) int   { return s.r.Intn(n) }

// FixedSource replays a fixed sequence of floats, wrapping around
// Used for reproducible pattern tests
type FixedSource struct {
	Values []float64
	next   int
}

func (s *FixedSource) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

func (s *FixedSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
