// Package bfv implements the BFV homomorphic encryption scheme over
// the RNS polynomial rings of the ring package: scale-invariant
// encryption with floor(Q/t) plaintext scaling, tensor multiplication
// over an extended basis, relinearization and Galois rotations through
// RLWE key switching, and modulus switching down the chain.
package bfv

import (
	"github.com/hegolib/hego/he"
	"github.com/hegolib/hego/rlwe"
)

// Scheme bundles the BFV encoder, encryptor, decryptor, evaluator and
// key generator behind the scheme-agnostic he.Scheme surface.
type Scheme struct {
	ctx       *rlwe.Context
	encoder   *Encoder
	encryptor *Encryptor
	decryptor *Decryptor
	evaluator *Evaluator
	keygen    *rlwe.KeyGenerator
}

var _ he.Scheme = (*Scheme)(nil)

// NewScheme instantiates BFV for params.
func NewScheme(params rlwe.Parameters) (*Scheme, error) {
	ctx, err := rlwe.NewContext(params)
	if err != nil {
		return nil, err
	}
	return NewSchemeFromContext(ctx)
}

// NewSchemeFromContext instantiates BFV over an existing context.
func NewSchemeFromContext(ctx *rlwe.Context) (*Scheme, error) {
	enc, err := NewEncryptor(ctx)
	if err != nil {
		return nil, err
	}
	kg, err := rlwe.NewKeyGenerator(ctx)
	if err != nil {
		return nil, err
	}
	return &Scheme{
		ctx:       ctx,
		encoder:   NewEncoder(ctx),
		encryptor: enc,
		decryptor: NewDecryptor(ctx),
		evaluator: NewEvaluator(ctx),
		keygen:    kg,
	}, nil
}

// Context returns the bound context.
func (s *Scheme) Context() *rlwe.Context { return s.ctx }

func (s *Scheme) GenerateSecretKey() (*rlwe.SecretKey, error) {
	return s.keygen.GenSecretKey()
}

func (s *Scheme) GenerateEvaluationKey(cfg rlwe.EvaluationKeyConfig, sk *rlwe.SecretKey) (*rlwe.EvaluationKey, error) {
	return s.keygen.GenEvaluationKey(cfg, sk)
}

func (s *Scheme) EncodeCoeff(values []uint64) (*rlwe.Plaintext, error) {
	return s.encoder.EncodeCoeff(values)
}

func (s *Scheme) EncodeCoeffSigned(values []int64) (*rlwe.Plaintext, error) {
	return s.encoder.EncodeCoeffSigned(values)
}

func (s *Scheme) EncodeSimd(values []uint64) (*rlwe.Plaintext, error) {
	return s.encoder.EncodeSimd(values)
}

func (s *Scheme) EncodeSimdSigned(values []int64) (*rlwe.Plaintext, error) {
	return s.encoder.EncodeSimdSigned(values)
}

func (s *Scheme) DecodeCoeff(pt *rlwe.Plaintext) ([]uint64, error) {
	return s.encoder.DecodeCoeff(pt)
}

func (s *Scheme) DecodeCoeffSigned(pt *rlwe.Plaintext) ([]int64, error) {
	return s.encoder.DecodeCoeffSigned(pt)
}

func (s *Scheme) DecodeSimd(pt *rlwe.Plaintext) ([]uint64, error) {
	return s.encoder.DecodeSimd(pt)
}

func (s *Scheme) DecodeSimdSigned(pt *rlwe.Plaintext) ([]int64, error) {
	return s.encoder.DecodeSimdSigned(pt)
}

func (s *Scheme) Encrypt(pt *rlwe.Plaintext, sk *rlwe.SecretKey) (*rlwe.Ciphertext, error) {
	return s.encryptor.Encrypt(pt, sk)
}

func (s *Scheme) Decrypt(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (*rlwe.Plaintext, error) {
	return s.decryptor.Decrypt(ct, sk)
}

func (s *Scheme) Add(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return s.evaluator.Add(ct1, ct2)
}

func (s *Scheme) Sub(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return s.evaluator.Sub(ct1, ct2)
}

func (s *Scheme) Neg(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return s.evaluator.Neg(ct)
}

func (s *Scheme) AddPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	return s.evaluator.AddPlain(ct, pt)
}

func (s *Scheme) SubPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	return s.evaluator.SubPlain(ct, pt)
}

func (s *Scheme) Mul(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return s.evaluator.Mul(ct1, ct2)
}

// MulPlain lifts the plaintext onto the ciphertext basis in Eval
// format, then multiplies pointwise.
func (s *Scheme) MulPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	lifted, err := s.encoder.EncodeForMultiplication(pt, ct.PolyContext())
	if err != nil {
		return nil, err
	}
	return s.evaluator.MulPlain(ct, lifted)
}

func (s *Scheme) Relinearize(ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	return s.evaluator.Relinearize(ct, ek)
}

func (s *Scheme) ApplyGalois(ct *rlwe.Ciphertext, galEl uint64, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	return s.evaluator.ApplyGalois(ct, galEl, ek)
}

func (s *Scheme) RotateColumns(ct *rlwe.Ciphertext, step int, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	return s.evaluator.RotateColumns(ct, step, ek)
}

func (s *Scheme) SwapRows(ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	return s.evaluator.SwapRows(ct, ek)
}

func (s *Scheme) ModSwitchDown(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return s.evaluator.ModSwitchDown(ct)
}

func (s *Scheme) ModSwitchDownToSingle(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return s.evaluator.ModSwitchDownToSingle(ct)
}

// IsTransparent reports whether ct encrypts nothing: every polynomial
// past the first is zero, so the carried value is readable without the
// key. Multiplying by a transparent zero yields a transparent result.
func (s *Scheme) IsTransparent(ct *rlwe.Ciphertext) bool {
	return ct.IsTransparent()
}

func (s *Scheme) NoiseBudget(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (float64, error) {
	return s.decryptor.NoiseBudget(ct, sk)
}

// MinNoiseBudget is the margin below which decryption rounding may
// flip.
func (s *Scheme) MinNoiseBudget() float64 { return 1 }

// Evaluator exposes the underlying evaluator for operations outside
// the Scheme interface, such as multi-step rotation planning.
func (s *Scheme) Evaluator() *Evaluator { return s.evaluator }

// Encoder exposes the underlying encoder, including the Eval-format
// multiplication encoding.
func (s *Scheme) Encoder() *Encoder { return s.encoder }
