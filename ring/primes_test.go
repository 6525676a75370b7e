package ring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hegolib/hego/utils"
)

func TestIsPrime(t *testing.T) {

	for _, p := range []uint64{2, 3, 5, 17, 97, 12289, 1099511590913, (1 << 62) - 57} {
		require.True(t, IsPrime(p), "%d", p)
	}
	for _, c := range []uint64{0, 1, 4, 9, 91, 12288, 1 << 40} {
		require.False(t, IsPrime(c), "%d", c)
	}
}

func TestGenerateNTTPrimes(t *testing.T) {

	for _, tc := range []struct {
		logQ, nthRoot, count int
	}{
		{20, 32, 4},
		{30, 64, 8},
		{61, 2048, 3},
	} {
		primes, err := GenerateNTTPrimes(tc.logQ, tc.nthRoot, tc.count)
		require.NoError(t, err)
		require.Len(t, primes, tc.count)
		require.True(t, utils.AllDistinct(primes))
		for _, p := range primes {
			require.True(t, IsPrime(p))
			require.Equal(t, uint64(1), p%uint64(tc.nthRoot))
			// Close to the requested size.
			require.InDelta(t, tc.logQ, bitLen(p), 1)
		}
	}
}

func bitLen(x uint64) float64 {
	n := 0
	for ; x > 0; x >>= 1 {
		n++
	}
	return float64(n)
}

func TestGenerateNTTPrimesRange(t *testing.T) {
	_, err := GenerateNTTPrimes(1, 32, 1)
	require.Error(t, err)
	_, err = GenerateNTTPrimes(62, 32, 1)
	require.Error(t, err)
}
