// Package sampling implements the randomness sources consumed by the
// ring samplers and the seeded-ciphertext expansion.
package sampling

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/blake2b"
)

// SeedSize is the byte size of a PRNG seed: one block of key material
// plus one block of state for a 128-bit block construction.
const SeedSize = 32

// PRNG is an interface for the generation of random byte streams.
type PRNG interface {
	io.Reader
}

// Seed is a fixed-size PRNG seed.
type Seed [SeedSize]byte

// NewSeed returns a fresh seed read from crypto/rand.
func NewSeed() (seed Seed, err error) {
	if _, err = rand.Read(seed[:]); err != nil {
		return Seed{}, fmt.Errorf("sampling: cannot draw seed: %w", err)
	}
	return
}

// KeyedPRNG deterministically expands a seed into an unbounded byte
// stream through the blake2b XOF. Two KeyedPRNG instances created from
// the same seed produce the same stream. Not safe for concurrent use.
type KeyedPRNG struct {
	seed Seed
	xof  blake2b.XOF
}

// NewKeyedPRNG creates a new KeyedPRNG from a seed.
func NewKeyedPRNG(seed Seed) (*KeyedPRNG, error) {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, seed[:])
	if err != nil {
		return nil, fmt.Errorf("sampling: %w", err)
	}
	return &KeyedPRNG{seed: seed, xof: xof}, nil
}

// NewRandomPRNG creates a KeyedPRNG from a fresh crypto/rand seed and
// returns the seed alongside it.
func NewRandomPRNG() (*KeyedPRNG, Seed, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, Seed{}, err
	}
	prng, err := NewKeyedPRNG(seed)
	return prng, seed, err
}

// Seed returns the seed the PRNG was created from.
func (prng *KeyedPRNG) Seed() Seed {
	return prng.seed
}

// Read fills p with pseudo-random bytes.
func (prng *KeyedPRNG) Read(p []byte) (n int, err error) {
	return prng.xof.Read(p)
}

// Reset rewinds the PRNG to the beginning of its stream.
func (prng *KeyedPRNG) Reset() {
	prng.xof.Reset()
}
