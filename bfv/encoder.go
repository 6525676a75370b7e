package bfv

import (
	"fmt"

	"github.com/hegolib/hego/he"
	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/rlwe"
)

// Encoder maps scalar vectors to and from plaintext polynomials:
// coefficient and SIMD layouts, unsigned and centered signed variants,
// plus the Eval-format lift used by plaintext multiplication.
type Encoder struct {
	ctx *rlwe.Context
}

// NewEncoder creates an Encoder over ctx.
func NewEncoder(ctx *rlwe.Context) *Encoder {
	return &Encoder{ctx: ctx}
}

// EncodeCoeff writes values as polynomial coefficients, zero-padded.
func (e *Encoder) EncodeCoeff(values []uint64) (*rlwe.Plaintext, error) {
	return he.EncodeCoeff(e.ctx, values)
}

// EncodeCoeffSigned centers signed values before coefficient encoding.
func (e *Encoder) EncodeCoeffSigned(values []int64) (*rlwe.Plaintext, error) {
	return he.EncodeCoeffSigned(e.ctx, values)
}

// EncodeSimd writes values into the batching slots.
func (e *Encoder) EncodeSimd(values []uint64) (*rlwe.Plaintext, error) {
	return he.EncodeSimd(e.ctx, values)
}

// EncodeSimdSigned centers signed values before SIMD encoding.
func (e *Encoder) EncodeSimdSigned(values []int64) (*rlwe.Plaintext, error) {
	return he.EncodeSimdSigned(e.ctx, values)
}

// DecodeCoeff returns the coefficient vector, each entry in [0, t).
func (e *Encoder) DecodeCoeff(pt *rlwe.Plaintext) ([]uint64, error) {
	return he.DecodeCoeff(e.ctx, pt)
}

// DecodeCoeffSigned returns the coefficients centered into [-t/2, t/2].
func (e *Encoder) DecodeCoeffSigned(pt *rlwe.Plaintext) ([]int64, error) {
	return he.DecodeCoeffSigned(e.ctx, pt)
}

// DecodeSimd returns all N slots.
func (e *Encoder) DecodeSimd(pt *rlwe.Plaintext) ([]uint64, error) {
	return he.DecodeSimd(e.ctx, pt)
}

// DecodeSimdSigned returns all N slots centered into [-t/2, t/2].
func (e *Encoder) DecodeSimdSigned(pt *rlwe.Plaintext) ([]int64, error) {
	return he.DecodeSimdSigned(e.ctx, pt)
}

// EncodeForMultiplication lifts a Coeff-format plaintext over the
// plaintext ring into Eval format over polyCtx, centering each
// coefficient into [-t/2, t/2] first to keep the noise growth of the
// later product small.
func (e *Encoder) EncodeForMultiplication(pt *rlwe.Plaintext, polyCtx *ring.PolyContext) (*rlwe.Plaintext, error) {

	if pt.Value.Format() != ring.Coeff || !pt.Value.Context().Equal(e.ctx.PlaintextContext()) {
		return nil, fmt.Errorf("bfv: multiplication encoding requires a Coeff plaintext over the plaintext ring")
	}

	t := e.ctx.Parameters().PlaintextModulus()
	halfT := t >> 1
	src := pt.Value.Coeffs.Row(0)

	lifted := ring.NewPoly(polyCtx, ring.Coeff)
	for i := 0; i < polyCtx.ModuliCount(); i++ {
		s := polyCtx.SubRingAt(i)
		dst := lifted.Coeffs.Row(i)
		for k, v := range src {
			if v > halfT {
				dst[k] = s.Q - (t - v)
			} else {
				dst[k] = v
			}
		}
	}
	if err := lifted.NTT(); err != nil {
		return nil, err
	}
	return rlwe.NewPlaintextFromPoly(e.ctx, lifted), nil
}
