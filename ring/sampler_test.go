package ring

import (
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"

	"github.com/hegolib/hego/utils/sampling"
)

func TestUniformSampler(t *testing.T) {

	ctx := newTestContext(t, 64, 3)

	seed, err := sampling.NewSeed()
	require.NoError(t, err)
	prng, err := sampling.NewKeyedPRNG(seed)
	require.NoError(t, err)
	p := NewUniformSampler(prng, ctx).ReadNew(Coeff)

	for i := 0; i < ctx.ModuliCount(); i++ {
		q := ctx.SubRingAt(i).Q
		for _, v := range p.Coeffs.Row(i) {
			require.Less(t, v, q)
		}
	}

	// Same seed, same polynomial.
	prng2, err := sampling.NewKeyedPRNG(seed)
	require.NoError(t, err)
	p2 := NewUniformSampler(prng2, ctx).ReadNew(Coeff)
	require.True(t, p.Equal(p2))
}

func TestTernarySampler(t *testing.T) {

	ctx := newTestContext(t, 256, 3)
	prng, _, err := sampling.NewRandomPRNG()
	require.NoError(t, err)

	p := NewPoly(ctx, Coeff)
	NewTernarySampler(prng, ctx).Read(p)

	seen := map[uint64]bool{}
	for j := 0; j < ctx.N(); j++ {
		v0 := p.Coeffs.At(0, j)
		q0 := ctx.SubRingAt(0).Q
		require.True(t, v0 == 0 || v0 == 1 || v0 == q0-1, "coefficient %d", v0)

		// The same centered value is carried in every limb.
		for i := 1; i < ctx.ModuliCount(); i++ {
			qi := ctx.SubRingAt(i).Q
			vi := p.Coeffs.At(i, j)
			switch v0 {
			case q0 - 1:
				require.Equal(t, qi-1, vi)
			default:
				require.Equal(t, v0, vi)
			}
		}

		if v0 == q0-1 {
			seen[2] = true
		} else {
			seen[v0] = true
		}
	}

	// 256 draws hit all three values with overwhelming probability.
	require.Len(t, seen, 3)
}

func TestGaussianSampler(t *testing.T) {

	ctx := newTestContext(t, 1024, 2)
	prng, _, err := sampling.NewRandomPRNG()
	require.NoError(t, err)

	sigma, bound := 3.2, 19.2
	p := NewPoly(ctx, Coeff)
	NewGaussianSampler(prng, ctx, sigma, bound).Read(p)

	q0 := ctx.SubRingAt(0).Q
	centered := make([]float64, ctx.N())
	for j := 0; j < ctx.N(); j++ {
		v := p.Coeffs.At(0, j)
		c := float64(v)
		if v > q0/2 {
			c = -float64(q0 - v)
		}
		require.LessOrEqual(t, c, bound)
		require.GreaterOrEqual(t, c, -bound)
		centered[j] = c

		// Limb consistency.
		q1 := ctx.SubRingAt(1).Q
		v1 := p.Coeffs.At(1, j)
		if c < 0 {
			require.Equal(t, q1-uint64(-c), v1)
		} else {
			require.Equal(t, uint64(c), v1)
		}
	}

	mean, err := stats.Mean(centered)
	require.NoError(t, err)
	sd, err := stats.StandardDeviation(centered)
	require.NoError(t, err)

	// Loose statistical sanity bounds for 1024 draws.
	require.InDelta(t, 0, mean, 0.5)
	require.InDelta(t, sigma, sd, 1.0)
}
