package ring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hegolib/hego/utils/sampling"
)

func newTestContext(t *testing.T, n, moduliCount int) *PolyContext {
	t.Helper()
	moduli, err := GenerateNTTPrimes(30, 2*n, moduliCount)
	require.NoError(t, err)
	ctx, err := NewPolyContext(n, moduli, nil)
	require.NoError(t, err)
	return ctx
}

func newTestSampler(t *testing.T, ctx *PolyContext) *UniformSampler {
	t.Helper()
	prng, _, err := sampling.NewRandomPRNG()
	require.NoError(t, err)
	return NewUniformSampler(prng, ctx)
}

// schoolbookMul is the negacyclic product reference: X^N = -1.
func schoolbookMul(ctx *PolyContext, p1, p2 *Poly) *Poly {
	n := ctx.N()
	out := NewPoly(ctx, Coeff)
	for i := 0; i < ctx.ModuliCount(); i++ {
		s := ctx.SubRingAt(i)
		a, b, z := p1.Coeffs.Row(i), p2.Coeffs.Row(i), out.Coeffs.Row(i)
		for j := 0; j < n; j++ {
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

func TestNTTRoundTrip(t *testing.T) {

	for _, n := range []int{8, 16, 64} {
		ctx := newTestContext(t, n, 3)
		sampler := newTestSampler(t, ctx)

		p := sampler.ReadNew(Coeff)
		q := p.CopyNew()
		require.NoError(t, q.NTT())
		require.Equal(t, Eval, q.Format())
		require.False(t, q.Equal(p))
		require.NoError(t, q.INTT())
		require.Equal(t, Coeff, q.Format())
		require.True(t, q.Equal(p))
	}
}

func TestNTTFormatErrors(t *testing.T) {

	ctx := newTestContext(t, 16, 1)

	p := NewPoly(ctx, Eval)
	require.ErrorIs(t, p.NTT(), ErrWrongFormat)

	q := NewPoly(ctx, Coeff)
	require.ErrorIs(t, q.INTT(), ErrWrongFormat)
}

func TestNTTConstant(t *testing.T) {

	// A constant polynomial evaluates to the constant everywhere.
	ctx := newTestContext(t, 16, 2)
	p := NewPoly(ctx, Coeff)
	for i := 0; i < ctx.ModuliCount(); i++ {
		p.Coeffs.Set(i, 0, 42)
	}
	require.NoError(t, p.NTT())
	for i := 0; i < ctx.ModuliCount(); i++ {
		for _, v := range p.Coeffs.Row(i) {
			require.Equal(t, uint64(42), v)
		}
	}
}

func TestNTTMultiplication(t *testing.T) {

	for _, n := range []int{8, 32} {
		ctx := newTestContext(t, n, 2)
		sampler := newTestSampler(t, ctx)

		p1 := sampler.ReadNew(Coeff)
		p2 := sampler.ReadNew(Coeff)
		want := schoolbookMul(ctx, p1, p2)

		e1, e2 := p1.CopyNew(), p2.CopyNew()
		require.NoError(t, e1.NTT())
		require.NoError(t, e2.NTT())
		got := NewPoly(ctx, Eval)
		ctx.MulCoeffs(e1, e2, got)
		require.NoError(t, got.INTT())

		require.True(t, want.Equal(got))
	}
}

func TestNonNTTFriendlyModulus(t *testing.T) {

	// 17 has no primitive 32nd root of unity, so the context is valid
	// for coefficient arithmetic but the NTT must refuse to run.
	ctx, err := NewPolyContext(16, []uint64{17}, nil)
	require.NoError(t, err)
	require.False(t, ctx.SubRingAt(0).NTTFriendly())

	p := NewPoly(ctx, Coeff)
	require.Error(t, p.NTT())

	q := NewPoly(ctx, Eval)
	require.Error(t, q.INTT())

	// Coefficient-format arithmetic still works.
	a := NewPoly(ctx, Coeff)
	a.Coeffs.Set(0, 0, 5)
	b := NewPoly(ctx, Coeff)
	b.Coeffs.Set(0, 0, 13)
	out := NewPoly(ctx, Coeff)
	ctx.Add(a, b, out)
	require.Equal(t, uint64(1), out.Coeffs.At(0, 0))
}
