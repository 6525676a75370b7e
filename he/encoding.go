package he

import (
	"fmt"

	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/rlwe"
)

// ErrUnsupportedSimdEncoding is returned when batching is requested
// under a plaintext modulus without a degree-N root of unity.
var ErrUnsupportedSimdEncoding = fmt.Errorf("he: plaintext modulus does not support SIMD encoding")

func checkValues(values []uint64, n int, t uint64) error {
	if len(values) > n {
		return fmt.Errorf("he: %d values exceed the %d available coefficients", len(values), n)
	}
	for i, v := range values {
		if v >= t {
			return fmt.Errorf("he: value %d at index %d not below the plaintext modulus %d", v, i, t)
		}
	}
	return nil
}

// signedToMod maps a centered value in [-t/2, t/2) to its residue.
func signedToMod(v int64, t uint64) (uint64, error) {
	half := int64(t >> 1)
	if v < -half || v > half {
		return 0, fmt.Errorf("he: signed value %d outside [-%d, %d]", v, half, half)
	}
	if v < 0 {
		return t - uint64(-v), nil
	}
	return uint64(v), nil
}

// modToSigned centers a residue into [-t/2, t/2].
func modToSigned(v, t uint64) int64 {
	if v > t>>1 {
		return -int64(t - v)
	}
	return int64(v)
}

// EncodeCoeff writes values, each below the plaintext modulus, as the
// leading coefficients of a plaintext polynomial, zero-padded to the
// degree.
func EncodeCoeff(ctx *rlwe.Context, values []uint64) (*rlwe.Plaintext, error) {
	ptCtx := ctx.PlaintextContext()
	if err := checkValues(values, ptCtx.N(), ctx.Parameters().PlaintextModulus()); err != nil {
		return nil, err
	}
	pt := rlwe.NewPlaintext(ctx)
	copy(pt.Value.Coeffs.Row(0), values)
	return pt, nil
}

// DecodeCoeff returns the coefficient vector of a plaintext, each
// entry in [0, t).
func DecodeCoeff(ctx *rlwe.Context, pt *rlwe.Plaintext) ([]uint64, error) {
	if pt.Value.Format() != ring.Coeff || !pt.Value.Context().Equal(ctx.PlaintextContext()) {
		return nil, fmt.Errorf("he: decoding requires a Coeff plaintext over the plaintext ring")
	}
	return append([]uint64(nil), pt.Value.Coeffs.Row(0)...), nil
}

// EncodeSimd writes values into the SIMD slots: through the fixed
// slot-to-coefficient permutation and an inverse plaintext NTT,
// slot-wise products of encoded vectors match polynomial products.
func EncodeSimd(ctx *rlwe.Context, values []uint64) (*rlwe.Plaintext, error) {
	perm := ctx.SimdPermutation()
	if perm == nil {
		return nil, ErrUnsupportedSimdEncoding
	}
	ptCtx := ctx.PlaintextContext()
	if err := checkValues(values, ptCtx.N(), ctx.Parameters().PlaintextModulus()); err != nil {
		return nil, err
	}
	p := ring.NewPoly(ptCtx, ring.Eval)
	row := p.Coeffs.Row(0)
	for i, v := range values {
		row[perm[i]] = v
	}
	if err := p.INTT(); err != nil {
		return nil, err
	}
	return rlwe.NewPlaintextFromPoly(ctx, p), nil
}

// DecodeSimd is the inverse of EncodeSimd, returning all N slots.
func DecodeSimd(ctx *rlwe.Context, pt *rlwe.Plaintext) ([]uint64, error) {
	perm := ctx.SimdPermutation()
	if perm == nil {
		return nil, ErrUnsupportedSimdEncoding
	}
	if pt.Value.Format() != ring.Coeff || !pt.Value.Context().Equal(ctx.PlaintextContext()) {
		return nil, fmt.Errorf("he: decoding requires a Coeff plaintext over the plaintext ring")
	}
	p := pt.Value.CopyNew()
	if err := p.NTT(); err != nil {
		return nil, err
	}
	row := p.Coeffs.Row(0)
	out := make([]uint64, len(row))
	for i := range out {
		out[i] = row[perm[i]]
	}
	return out, nil
}

// EncodeCoeffSigned centers signed values into the plaintext modulus
// before coefficient encoding.
func EncodeCoeffSigned(ctx *rlwe.Context, values []int64) (*rlwe.Plaintext, error) {
	u, err := signedSlice(values, ctx.Parameters().PlaintextModulus())
	if err != nil {
		return nil, err
	}
	return EncodeCoeff(ctx, u)
}

// DecodeCoeffSigned decodes coefficients centered into [-t/2, t/2].
func DecodeCoeffSigned(ctx *rlwe.Context, pt *rlwe.Plaintext) ([]int64, error) {
	u, err := DecodeCoeff(ctx, pt)
	if err != nil {
		return nil, err
	}
	return centeredSlice(u, ctx.Parameters().PlaintextModulus()), nil
}

// EncodeSimdSigned centers signed values into the plaintext modulus
// before SIMD encoding.
func EncodeSimdSigned(ctx *rlwe.Context, values []int64) (*rlwe.Plaintext, error) {
	u, err := signedSlice(values, ctx.Parameters().PlaintextModulus())
	if err != nil {
		return nil, err
	}
	return EncodeSimd(ctx, u)
}

// DecodeSimdSigned decodes slots centered into [-t/2, t/2].
func DecodeSimdSigned(ctx *rlwe.Context, pt *rlwe.Plaintext) ([]int64, error) {
	u, err := DecodeSimd(ctx, pt)
	if err != nil {
		return nil, err
	}
	return centeredSlice(u, ctx.Parameters().PlaintextModulus()), nil
}

func signedSlice(values []int64, t uint64) ([]uint64, error) {
	out := make([]uint64, len(values))
	for i, v := range values {
		u, err := signedToMod(v, t)
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

func centeredSlice(values []uint64, t uint64) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = modToSigned(v, t)
	}
	return out
}
