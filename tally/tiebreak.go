// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// TieBreaker picks one of n tied entities, returning an index in [0, n).
type TieBreaker interface {
	Pick(n int) int
}

// TieBreakerFunc adapts a function to TieBreaker.
type TieBreakerFunc func(n int) int

// Pick calls f(n).
func (f TieBreakerFunc) Pick(n int) int { return f(n) }

// FirstTieBreaker always picks the first tied entity in input order.
type FirstTieBreaker struct{}

// Pick always returns 0.
func (FirstTieBreaker) Pick(int) int { return 0 }

// RandomTieBreaker draws uniformly from a seeded source.
//
// Two runs over the same input with the same seed make the same choices,
// so the seed is written to the audit trail.
type RandomTieBreaker struct {
	seed int64
	rng  *rand.Rand
}

// NewRandomTieBreaker returns a tie-breaker whose choices are fixed by seed.
func NewRandomTieBreaker(seed int64) *RandomTieBreaker {
	return &RandomTieBreaker{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Pick draws the next index in [0, n) from the seeded stream.
func (r *RandomTieBreaker) Pick(n int) int { return r.rng.Intn(n) }

// Seed reports the seed the tie-breaker was created with.
func (r *RandomTieBreaker) Seed() int64 { return r.seed }

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

type seeded interface {
	Seed() int64
}

func seedOf(tb TieBreaker) (int64, bool) {
	s, ok := tb.(seeded)
	if !ok {
		return 0, false
	}
	return s.Seed(), true
}
