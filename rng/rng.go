package rng

import "math/rand"

// Source is the randomness the engine consumes. *rand.Rand satisfies it, and
// tests substitute scripted sources to pin down every roll.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// New returns a seeded generator. A zero seed is mapped to 1 so that an unset
// flag still yields a reproducible run.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed))
}

// Uniform returns a float in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Scripted replays fixed values in order. Once a queue is exhausted it keeps
// returning its last entry (or zero if it was empty).
type Scripted struct {
	Floats []float64
	Ints   []int
	fi, ii int
}

func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return 0
	}
	if s.fi >= len(s.Floats) {
		return s.Floats[len(s.Floats)-1]
	}
	v := s.Floats[s.fi]
	s.fi++
	return v
}

// Intn clamps the scripted value into [0, n).
func (s *Scripted) Intn(n int) int {
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	var v int
	if s.ii >= len(s.Ints) {
		v = s.Ints[len(s.Ints)-1]
	} else {
		v = s.Ints[s.ii]
		s.ii++
	}
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
