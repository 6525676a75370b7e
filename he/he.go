// Package he defines the scheme-agnostic homomorphic encryption
// surface: the Scheme capability interface, the plain-domain encoding
// shared by its implementations, a context-aware calling adapter and a
// no-op reference scheme.
package he

import (
	"context"

	"github.com/hegolib/hego/rlwe"
)

// Scheme is the capability interface of one homomorphic encryption
// scheme instance, bound to one rlwe.Context. Implementations are
// pure and synchronous: no operation yields, blocks or spawns
// internal concurrency. A Scheme is safe for concurrent use as long
// as callers do not mutate the same ciphertext from two goroutines.
type Scheme interface {
	Context() *rlwe.Context

	GenerateSecretKey() (*rlwe.SecretKey, error)
	GenerateEvaluationKey(cfg rlwe.EvaluationKeyConfig, sk *rlwe.SecretKey) (*rlwe.EvaluationKey, error)

	EncodeCoeff(values []uint64) (*rlwe.Plaintext, error)
	EncodeCoeffSigned(values []int64) (*rlwe.Plaintext, error)
	EncodeSimd(values []uint64) (*rlwe.Plaintext, error)
	EncodeSimdSigned(values []int64) (*rlwe.Plaintext, error)
	DecodeCoeff(pt *rlwe.Plaintext) ([]uint64, error)
	DecodeCoeffSigned(pt *rlwe.Plaintext) ([]int64, error)
	DecodeSimd(pt *rlwe.Plaintext) ([]uint64, error)
	DecodeSimdSigned(pt *rlwe.Plaintext) ([]int64, error)

	Encrypt(pt *rlwe.Plaintext, sk *rlwe.SecretKey) (*rlwe.Ciphertext, error)
	Decrypt(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (*rlwe.Plaintext, error)

	Add(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error)
	Sub(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error)
	Neg(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error)
	AddPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error)
	SubPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error)
	Mul(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error)
	MulPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error)
	Relinearize(ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error)

	ApplyGalois(ct *rlwe.Ciphertext, galEl uint64, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error)
	RotateColumns(ct *rlwe.Ciphertext, step int, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error)
	SwapRows(ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error)

	ModSwitchDown(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error)
	ModSwitchDownToSingle(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error)

	// IsTransparent reports whether the carried plaintext is public
	// knowledge regardless of the secret key.
	IsTransparent(ct *rlwe.Ciphertext) bool

	// NoiseBudget decrypts with the secret key and estimates the
	// remaining correctness margin in bits. Diagnostic only: the
	// computation leaks the key through timing.
	NoiseBudget(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (float64, error)
	// MinNoiseBudget is the budget below which Decrypt silently
	// returns a wrong plaintext.
	MinNoiseBudget() float64
}

// Async adapts a Scheme for callers integrating with a cooperative
// scheduler: every method takes a context.Context checked once before
// the synchronous algorithm runs to completion. No operation yields
// mid-computation; the adapter is a calling convention, not
// concurrency.
type Async struct {
	S Scheme
}

func (a Async) Encrypt(ctx context.Context, pt *rlwe.Plaintext, sk *rlwe.SecretKey) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.Encrypt(pt, sk)
}

func (a Async) Decrypt(ctx context.Context, ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (*rlwe.Plaintext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.Decrypt(ct, sk)
}

func (a Async) Add(ctx context.Context, ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.Add(ct1, ct2)
}

func (a Async) Sub(ctx context.Context, ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.Sub(ct1, ct2)
}

func (a Async) Neg(ctx context.Context, ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.Neg(ct)
}

func (a Async) Mul(ctx context.Context, ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.Mul(ct1, ct2)
}

func (a Async) Relinearize(ctx context.Context, ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.Relinearize(ct, ek)
}

func (a Async) RotateColumns(ctx context.Context, ct *rlwe.Ciphertext, step int, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.RotateColumns(ct, step, ek)
}

func (a Async) SwapRows(ctx context.Context, ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.SwapRows(ct, ek)
}

func (a Async) ModSwitchDown(ctx context.Context, ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.S.ModSwitchDown(ct)
}
