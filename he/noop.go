package he

import (
	"fmt"
	"math"

	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/rlwe"
)

// NoOpScheme implements Scheme without any cryptography: ciphertexts
// hold the plaintext polynomial itself and every operation runs
// directly over the plaintext ring. It exists to exercise
// protocol-level code paths and as a semantic reference for the real
// scheme; every NoOp ciphertext is transparent.
type NoOpScheme struct {
	ctx *rlwe.Context
}

var _ Scheme = (*NoOpScheme)(nil)

// NewNoOpScheme builds a NoOpScheme over ctx.
func NewNoOpScheme(ctx *rlwe.Context) *NoOpScheme {
	return &NoOpScheme{ctx: ctx}
}

// Context returns the bound context.
func (n *NoOpScheme) Context() *rlwe.Context { return n.ctx }

// GenerateSecretKey returns an all-zero placeholder key.
func (n *NoOpScheme) GenerateSecretKey() (*rlwe.SecretKey, error) {
	return &rlwe.SecretKey{Value: ring.NewPoly(n.ctx.SecretKeyContext(), ring.Eval)}, nil
}

// GenerateEvaluationKey returns placeholder key material satisfying
// cfg; NoOp rotations never consult it.
func (n *NoOpScheme) GenerateEvaluationKey(cfg rlwe.EvaluationKeyConfig, _ *rlwe.SecretKey) (*rlwe.EvaluationKey, error) {
	ek := &rlwe.EvaluationKey{Galois: rlwe.GaloisKey{Keys: make(map[uint64]*rlwe.KeySwitchKey, len(cfg.GaloisElements))}}
	if cfg.HasRelinearizationKey {
		ek.Relin = &rlwe.RelinearizationKey{Value: &rlwe.KeySwitchKey{}}
	}
	for _, galEl := range cfg.GaloisElements {
		ek.Galois.Keys[galEl] = &rlwe.KeySwitchKey{}
	}
	return ek, nil
}

func (n *NoOpScheme) EncodeCoeff(values []uint64) (*rlwe.Plaintext, error) {
	return EncodeCoeff(n.ctx, values)
}

func (n *NoOpScheme) EncodeCoeffSigned(values []int64) (*rlwe.Plaintext, error) {
	return EncodeCoeffSigned(n.ctx, values)
}

func (n *NoOpScheme) EncodeSimd(values []uint64) (*rlwe.Plaintext, error) {
	return EncodeSimd(n.ctx, values)
}

func (n *NoOpScheme) EncodeSimdSigned(values []int64) (*rlwe.Plaintext, error) {
	return EncodeSimdSigned(n.ctx, values)
}

func (n *NoOpScheme) DecodeCoeff(pt *rlwe.Plaintext) ([]uint64, error) {
	return DecodeCoeff(n.ctx, pt)
}

func (n *NoOpScheme) DecodeCoeffSigned(pt *rlwe.Plaintext) ([]int64, error) {
	return DecodeCoeffSigned(n.ctx, pt)
}

func (n *NoOpScheme) DecodeSimd(pt *rlwe.Plaintext) ([]uint64, error) {
	return DecodeSimd(n.ctx, pt)
}

func (n *NoOpScheme) DecodeSimdSigned(pt *rlwe.Plaintext) ([]int64, error) {
	return DecodeSimdSigned(n.ctx, pt)
}

// Encrypt wraps the plaintext polynomial as a degree-0 ciphertext.
func (n *NoOpScheme) Encrypt(pt *rlwe.Plaintext, _ *rlwe.SecretKey) (*rlwe.Ciphertext, error) {
	if err := n.checkPlain(pt); err != nil {
		return nil, err
	}
	return rlwe.NewCiphertextFromPolys(n.ctx, []*ring.Poly{pt.Value.CopyNew()}, 1), nil
}

// Decrypt unwraps the carried polynomial.
func (n *NoOpScheme) Decrypt(ct *rlwe.Ciphertext, _ *rlwe.SecretKey) (*rlwe.Plaintext, error) {
	if err := n.checkCipher(ct); err != nil {
		return nil, err
	}
	return rlwe.NewPlaintextFromPoly(n.ctx, ct.Value[0].CopyNew()), nil
}

func (n *NoOpScheme) checkCipher(ct *rlwe.Ciphertext) error {
	if !ct.Context().Equal(n.ctx) {
		return rlwe.ErrContextMismatch
	}
	return nil
}

func (n *NoOpScheme) checkPlain(pt *rlwe.Plaintext) error {
	if !pt.Context().Equal(n.ctx) {
		return rlwe.ErrContextMismatch
	}
	if pt.Value.Format() != ring.Coeff || !pt.Value.Context().Equal(n.ctx.PlaintextContext()) {
		return fmt.Errorf("%w: NoOp operates on Coeff plaintexts over the plaintext ring", ring.ErrWrongFormat)
	}
	return nil
}

func (n *NoOpScheme) Add(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct1); err != nil {
		return nil, err
	}
	if err := n.checkCipher(ct2); err != nil {
		return nil, err
	}
	out := ct1.CopyNew()
	n.ctx.PlaintextContext().Add(out.Value[0], ct2.Value[0], out.Value[0])
	return out, nil
}

func (n *NoOpScheme) Sub(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct1); err != nil {
		return nil, err
	}
	if err := n.checkCipher(ct2); err != nil {
		return nil, err
	}
	out := ct1.CopyNew()
	n.ctx.PlaintextContext().Sub(ct1.Value[0], ct2.Value[0], out.Value[0])
	return out, nil
}

func (n *NoOpScheme) Neg(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct); err != nil {
		return nil, err
	}
	out := ct.CopyNew()
	n.ctx.PlaintextContext().Neg(ct.Value[0], out.Value[0])
	return out, nil
}

func (n *NoOpScheme) AddPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct); err != nil {
		return nil, err
	}
	if err := n.checkPlain(pt); err != nil {
		return nil, err
	}
	out := ct.CopyNew()
	n.ctx.PlaintextContext().Add(ct.Value[0], pt.Value, out.Value[0])
	return out, nil
}

func (n *NoOpScheme) SubPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct); err != nil {
		return nil, err
	}
	if err := n.checkPlain(pt); err != nil {
		return nil, err
	}
	out := ct.CopyNew()
	n.ctx.PlaintextContext().Sub(ct.Value[0], pt.Value, out.Value[0])
	return out, nil
}

// Mul multiplies by schoolbook negacyclic convolution, which works for
// any plaintext modulus, NTT-friendly or not.
func (n *NoOpScheme) Mul(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct1); err != nil {
		return nil, err
	}
	if err := n.checkCipher(ct2); err != nil {
		return nil, err
	}
	prod := negacyclicMul(n.ctx.PlaintextContext(), ct1.Value[0], ct2.Value[0])
	return rlwe.NewCiphertextFromPolys(n.ctx, []*ring.Poly{prod}, 1), nil
}

func (n *NoOpScheme) MulPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct); err != nil {
		return nil, err
	}
	if err := n.checkPlain(pt); err != nil {
		return nil, err
	}
	prod := negacyclicMul(n.ctx.PlaintextContext(), ct.Value[0], pt.Value)
	return rlwe.NewCiphertextFromPolys(n.ctx, []*ring.Poly{prod}, 1), nil
}

// Relinearize is the identity: NoOp multiplication never grows the
// ciphertext.
func (n *NoOpScheme) Relinearize(ct *rlwe.Ciphertext, _ *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct); err != nil {
		return nil, err
	}
	return ct.CopyNew(), nil
}

func (n *NoOpScheme) ApplyGalois(ct *rlwe.Ciphertext, galEl uint64, _ *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct); err != nil {
		return nil, err
	}
	p, err := n.ctx.PlaintextContext().Automorphism(ct.Value[0], galEl)
	if err != nil {
		return nil, err
	}
	return rlwe.NewCiphertextFromPolys(n.ctx, []*ring.Poly{p}, ct.CorrectionFactor), nil
}

func (n *NoOpScheme) RotateColumns(ct *rlwe.Ciphertext, step int, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	return n.ApplyGalois(ct, n.ctx.Parameters().GaloisElementForColumnRotation(step), ek)
}

func (n *NoOpScheme) SwapRows(ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	return n.ApplyGalois(ct, n.ctx.Parameters().GaloisElementForRowSwap(), ek)
}

// ModSwitchDown is the identity: the plaintext ring has one modulus.
func (n *NoOpScheme) ModSwitchDown(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := n.checkCipher(ct); err != nil {
		return nil, err
	}
	return ct.CopyNew(), nil
}

func (n *NoOpScheme) ModSwitchDownToSingle(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return n.ModSwitchDown(ct)
}

// NoiseBudget is infinite: nothing is encrypted, nothing degrades.
func (n *NoOpScheme) NoiseBudget(ct *rlwe.Ciphertext, _ *rlwe.SecretKey) (float64, error) {
	if err := n.checkCipher(ct); err != nil {
		return 0, err
	}
	return math.Inf(1), nil
}

func (n *NoOpScheme) MinNoiseBudget() float64 { return 0 }

// IsTransparent is always true: nothing is hidden.
func (n *NoOpScheme) IsTransparent(_ *rlwe.Ciphertext) bool { return true }

// negacyclicMul computes p1*p2 mod X^N+1, limb-wise, by schoolbook
// convolution.
func negacyclicMul(ctx *ring.PolyContext, p1, p2 *ring.Poly) *ring.Poly {
	n := ctx.N()
	out := ring.NewPoly(ctx, ring.Coeff)
	for i := 0; i < ctx.ModuliCount(); i++ {
		s := ctx.SubRingAt(i)
		a, b, z := p1.Coeffs.Row(i), p2.Coeffs.Row(i), out.Coeffs.Row(i)
		for j := 0; j < n; j++ {
			if a[j] == 0 {
				continue
			}
			for k := 0; k < n; k++ {
				prod := s.MulMod(a[j], b[k])
				if j+k >= n {
					z[j+k-n] = s.Sub(z[j+k-n], prod)
				} else {
					z[j+k] = s.Add(z[j+k], prod)
				}
			}
		}
	}
	return out
}
