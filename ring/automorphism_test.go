package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAutomorphismValidation(t *testing.T) {

	ctx := newTestContext(t, 16, 1)
	p := NewPoly(ctx, Coeff)

	_, err := ctx.Automorphism(p, 2)
	require.Error(t, err)
	_, err = ctx.Automorphism(p, 33)
	require.Error(t, err)
	_, err = ctx.Automorphism(p, 31)
	require.NoError(t, err)
}

func TestAutomorphismIdentity(t *testing.T) {
	ctx := newTestContext(t, 16, 2)
	p := newTestSampler(t, ctx).ReadNew(Coeff)
	out, err := ctx.Automorphism(p, 1)
	require.NoError(t, err)
	require.True(t, p.Equal(out))
}

func TestAutomorphismCoeff(t *testing.T) {

	// x -> x^3 sends X to X^3 and X^6 to X^18 = -X^2 for N=16.
	ctx := newTestContext(t, 16, 1)
	q := ctx.SubRingAt(0).Q

	p := NewPoly(ctx, Coeff)
	p.Coeffs.Set(0, 1, 1)
	p.Coeffs.Set(0, 6, 2)

	out, err := ctx.Automorphism(p, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(1), out.Coeffs.At(0, 3))
	require.Equal(t, q-2, out.Coeffs.At(0, 2))
}

func TestAutomorphismComposition(t *testing.T) {

	// Composing x -> x^a and x -> x^b equals x -> x^(ab mod 2N).
	ctx := newTestContext(t, 32, 2)
	p := newTestSampler(t, ctx).ReadNew(Coeff)

	a, b := uint64(5), uint64(9)
	pa, err := ctx.Automorphism(p, a)
	require.NoError(t, err)
	pab, err := ctx.Automorphism(pa, b)
	require.NoError(t, err)

	direct, err := ctx.Automorphism(p, (a*b)%64)
	require.NoError(t, err)
	require.True(t, direct.Equal(pab))
}

func TestAutomorphismCommutesWithNTT(t *testing.T) {

	ctx := newTestContext(t, 32, 2)
	p := newTestSampler(t, ctx).ReadNew(Coeff)

	for _, galEl := range []uint64{3, 5, 63} {
		viaCoeff, err := ctx.Automorphism(p, galEl)
		require.NoError(t, err)
		require.NoError(t, viaCoeff.NTT())

		viaEval := p.CopyNew()
		require.NoError(t, viaEval.NTT())
		viaEval, err = ctx.Automorphism(viaEval, galEl)
		require.NoError(t, err)

		require.True(t, viaCoeff.Equal(viaEval), "galEl=%d", galEl)
	}
}

func TestMulPowerOfX(t *testing.T) {

	ctx := newTestContext(t, 16, 2)
	p := newTestSampler(t, ctx).ReadNew(Coeff)

	// X^N = -1, so shifting by 2N is the identity and by N the negation.
	same, err := ctx.MulPowerOfX(p, 32)
	require.NoError(t, err)
	require.True(t, p.Equal(same))

	neg, err := ctx.MulPowerOfX(p, 16)
	require.NoError(t, err)
	wantNeg := NewPoly(ctx, Coeff)
	ctx.Neg(p, wantNeg)
	require.True(t, wantNeg.Equal(neg))

	// A negative shift undoes the positive one.
	fwd, err := ctx.MulPowerOfX(p, 5)
	require.NoError(t, err)
	back, err := ctx.MulPowerOfX(fwd, -5)
	require.NoError(t, err)
	require.True(t, p.Equal(back))

	// Shifting X^15 by one wraps with a sign flip.
	mono := NewPoly(ctx, Coeff)
	mono.Coeffs.Set(0, 15, 3)
	mono.Coeffs.Set(1, 15, 3)
	wrapped, err := ctx.MulPowerOfX(mono, 1)
	require.NoError(t, err)
	require.Equal(t, ctx.SubRingAt(0).Q-3, wrapped.Coeffs.At(0, 0))

	eval := NewPoly(ctx, Eval)
	_, err = ctx.MulPowerOfX(eval, 1)
	require.ErrorIs(t, err, ErrWrongFormat)
}
