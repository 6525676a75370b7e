package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPolyContextValidation(t *testing.T) {

	moduli, err := GenerateNTTPrimes(30, 32, 2)
	require.NoError(t, err)

	_, err = NewPolyContext(15, moduli, nil)
	require.Error(t, err, "degree must be a power of two")

	_, err = NewPolyContext(16, nil, nil)
	require.Error(t, err, "at least one modulus")

	_, err = NewPolyContext(16, []uint64{moduli[0], moduli[0]}, nil)
	require.Error(t, err, "moduli must be distinct")

	ctx, err := NewPolyContext(16, moduli, nil)
	require.NoError(t, err)
	require.Equal(t, 16, ctx.N())
	require.Equal(t, 2, ctx.ModuliCount())
	require.Equal(t, moduli, ctx.Moduli())
}

func TestPolyContextChain(t *testing.T) {

	moduli, err := GenerateNTTPrimes(30, 32, 3)
	require.NoError(t, err)
	top := newTestChain(t, 16, moduli)

	require.Equal(t, 3, top.ModuliCount())
	require.Equal(t, 2, top.Next().ModuliCount())
	require.Equal(t, 1, top.Next().Next().ModuliCount())
	require.Nil(t, top.Next().Next().Next())

	for l := 1; l <= 3; l++ {
		ctx, err := top.GetContext(l)
		require.NoError(t, err)
		require.Equal(t, l, ctx.ModuliCount())
		require.Equal(t, moduli[:l], ctx.Moduli())
	}
	_, err = top.GetContext(4)
	require.Error(t, err)
	_, err = top.GetContext(0)
	require.Error(t, err)
}

func TestPolyContextEqual(t *testing.T) {

	moduli, err := GenerateNTTPrimes(30, 32, 2)
	require.NoError(t, err)

	a, err := NewPolyContext(16, moduli, nil)
	require.NoError(t, err)
	b, err := NewPolyContext(16, moduli, nil)
	require.NoError(t, err)
	c, err := NewPolyContext(16, moduli[:1], nil)
	require.NoError(t, err)

	require.True(t, a.Equal(a))
	require.True(t, a.Equal(b), "structural equality across instances")
	require.False(t, a.Equal(c))
}

func TestMaxLazyProductAccumulationCount(t *testing.T) {

	// Products of residues below q leave (2^128-1)/(q-1)^2 accumulations
	// of headroom; 30-bit moduli allow far more than 16.
	ctx := newTestContext(t, 16, 3)
	require.GreaterOrEqual(t, ctx.MaxLazyProductAccumulationCount(), 16)
}

func TestPolyPrefixGather(t *testing.T) {

	moduli, err := GenerateNTTPrimes(30, 32, 3)
	require.NoError(t, err)
	top := newTestChain(t, 16, moduli)
	sampler := newTestSampler(t, top)

	p := sampler.ReadNew(Coeff)

	two, err := top.GetContext(2)
	require.NoError(t, err)
	prefix := p.Prefix(two)
	require.Equal(t, 2, prefix.ModuliCount())
	for i := 0; i < 2; i++ {
		require.Equal(t, p.Coeffs.Row(i), prefix.Coeffs.Row(i))
	}

	// Gather rows 0 and 2 into a context carrying those moduli.
	picked, err := NewPolyContext(16, []uint64{moduli[0], moduli[2]}, nil)
	require.NoError(t, err)
	g := p.GatherRows(picked, []int{0, 2})
	require.Equal(t, p.Coeffs.Row(0), g.Coeffs.Row(0))
	require.Equal(t, p.Coeffs.Row(2), g.Coeffs.Row(1))

	// Mismatched moduli panic.
	require.Panics(t, func() { p.GatherRows(picked, []int{0, 1}) })
	require.Panics(t, func() { p.Prefix(picked) })
}
