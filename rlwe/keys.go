package rlwe

import (
	"errors"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hegolib/hego/ring"
)

var (
	// ErrMissingGaloisElement is returned when an evaluation key lacks
	// the key-switching key of a requested Galois element.
	ErrMissingGaloisElement = errors.New("rlwe: missing Galois element key")
	// ErrMissingRelinearizationKey is returned when an evaluation key
	// lacks the relinearization key.
	ErrMissingRelinearizationKey = errors.New("rlwe: missing relinearization key")
)

// SecretKey holds the secret polynomial in Eval format over the full
// modulus chain. It is exclusively owned: callers must Zeroize it when
// done and must not share it implicitly.
type SecretKey struct {
	Value *ring.Poly
}

// Zeroize scrubs the secret polynomial.
func (sk *SecretKey) Zeroize() {
	sk.Value.Zeroize()
}

// KeySwitchKey is the RLWE key-switching gadget: one ciphertext-like
// pair per gadget digit (one digit per ciphertext modulus at
// generation level), in Eval format over the full chain with the last
// modulus acting as the key-switching modulus.
type KeySwitchKey struct {
	Value [][2]*ring.Poly
}

// Digits returns the gadget digit count.
func (k *KeySwitchKey) Digits() int { return len(k.Value) }

// RelinearizationKey switches the secret-key-squared term of a
// post-multiplication ciphertext back under the secret key.
type RelinearizationKey struct {
	Value *KeySwitchKey
}

// GaloisKey maps Galois elements to the key-switching keys undoing the
// corresponding automorphism of the secret key.
type GaloisKey struct {
	Keys map[uint64]*KeySwitchKey
}

// EvaluationKey bundles the public key material needed by homomorphic
// evaluation: an optional relinearization key and per-element Galois
// keys.
type EvaluationKey struct {
	Relin  *RelinearizationKey
	Galois GaloisKey
}

// KeySwitchKeyForGalois returns the key-switching key of galEl.
func (e *EvaluationKey) KeySwitchKeyForGalois(galEl uint64) (*KeySwitchKey, error) {
	if e == nil || e.Galois.Keys == nil {
		return nil, ErrMissingGaloisElement
	}
	k, ok := e.Galois.Keys[galEl]
	if !ok {
		return nil, ErrMissingGaloisElement
	}
	return k, nil
}

// KeySwitchKeyForRelinearization returns the relinearization
// key-switching key.
func (e *EvaluationKey) KeySwitchKeyForRelinearization() (*KeySwitchKey, error) {
	if e == nil || e.Relin == nil {
		return nil, ErrMissingRelinearizationKey
	}
	return e.Relin.Value, nil
}

// Config returns the configuration this evaluation key satisfies.
func (e *EvaluationKey) Config() EvaluationKeyConfig {
	cfg := EvaluationKeyConfig{HasRelinearizationKey: e.Relin != nil}
	cfg.GaloisElements = maps.Keys(e.Galois.Keys)
	slices.Sort(cfg.GaloisElements)
	return cfg
}

// EvaluationKeyConfig declares the key material an application needs:
// which Galois elements and whether a relinearization key. Configs
// from many planned operations are joined with Union and checked
// against generated keys with Contains, so key generation runs once.
type EvaluationKeyConfig struct {
	GaloisElements        []uint64
	HasRelinearizationKey bool
}

// Union returns the joined requirements of both configs, with Galois
// elements deduplicated and sorted.
func (c EvaluationKeyConfig) Union(other EvaluationKeyConfig) EvaluationKeyConfig {
	set := make(map[uint64]struct{}, len(c.GaloisElements)+len(other.GaloisElements))
	for _, e := range c.GaloisElements {
		set[e] = struct{}{}
	}
	for _, e := range other.GaloisElements {
		set[e] = struct{}{}
	}
	elements := maps.Keys(set)
	slices.Sort(elements)
	return EvaluationKeyConfig{
		GaloisElements:        elements,
		HasRelinearizationKey: c.HasRelinearizationKey || other.HasRelinearizationKey,
	}
}

// Contains reports whether keys generated for c satisfy other.
func (c EvaluationKeyConfig) Contains(other EvaluationKeyConfig) bool {
	if other.HasRelinearizationKey && !c.HasRelinearizationKey {
		return false
	}
	for _, e := range other.GaloisElements {
		if !slices.Contains(c.GaloisElements, e) {
			return false
		}
	}
	return true
}
