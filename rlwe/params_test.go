package rlwe

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hegolib/hego/ring"
)

func testParameters(t *testing.T, n int, plaintextModulus uint64, moduliCount int) Parameters {
	t.Helper()
	moduli, err := ring.GenerateNTTPrimes(30, 2*n, moduliCount)
	require.NoError(t, err)
	params, err := NewParameters(n, plaintextModulus, moduli, ErrorStdDev32, SecurityLevelNone)
	require.NoError(t, err)
	return params
}

func TestNewParametersValidation(t *testing.T) {

	moduli, err := ring.GenerateNTTPrimes(30, 32, 2)
	require.NoError(t, err)

	_, err = NewParameters(15, 17, moduli, ErrorStdDev32, SecurityLevelNone)
	require.Error(t, err, "degree must be a power of two")

	_, err = NewParameters(16, 17, nil, ErrorStdDev32, SecurityLevelNone)
	require.Error(t, err, "at least one modulus")

	_, err = NewParameters(16, 15, moduli, ErrorStdDev32, SecurityLevelNone)
	require.Error(t, err, "plaintext modulus must be prime")

	_, err = NewParameters(16, 17, []uint64{moduli[0], moduli[0]}, ErrorStdDev32, SecurityLevelNone)
	require.Error(t, err, "moduli must be distinct")

	_, err = NewParameters(16, 17, []uint64{97, 101}, ErrorStdDev32, SecurityLevelNone)
	require.Error(t, err, "101 is not NTT-friendly for degree 16")

	_, err = NewParameters(16, moduli[0], moduli, ErrorStdDev32, SecurityLevelNone)
	require.Error(t, err, "plaintext modulus must be below the coefficient moduli")
}

func TestParametersSecurityBound(t *testing.T) {

	// 2 x 30 bits exceed the 27-bit budget of degree 1024.
	moduli, err := ring.GenerateNTTPrimes(30, 2048, 2)
	require.NoError(t, err)
	_, err = NewParameters(1024, 12289, moduli, ErrorStdDev32, SecurityLevel128)
	require.Error(t, err)

	// A single 20-bit modulus fits.
	small, err := ring.GenerateNTTPrimes(20, 2048, 1)
	require.NoError(t, err)
	_, err = NewParameters(1024, 12289, small, ErrorStdDev32, SecurityLevel128)
	require.NoError(t, err)

	// No bound table entry below degree 1024.
	_, err = NewParameters(16, 17, moduli[:1], ErrorStdDev32, SecurityLevel128)
	require.Error(t, err)
}

func TestParametersAccessors(t *testing.T) {

	params := testParameters(t, 16, 97, 3)
	require.Equal(t, 16, params.N())
	require.Equal(t, 4, params.LogN())
	require.Equal(t, uint64(97), params.PlaintextModulus())
	require.Equal(t, 3, params.ModuliCount())
	require.Equal(t, 3.2, params.ErrorStdDev().StdDev())
	require.Equal(t, SecurityLevelNone, params.SecurityLevel())

	// 97 = 3*32 + 1 supports batching at degree 16; 17 does not.
	require.True(t, params.SupportsSimdEncoding())
	require.False(t, testParameters(t, 16, 17, 3).SupportsSimdEncoding())

	require.True(t, params.SupportsEvaluationKey())
	require.False(t, testParameters(t, 16, 97, 1).SupportsEvaluationKey())

	// floor(log2(97)) = 6 bits per coefficient.
	require.Equal(t, 6*16, params.BitsPerPlaintext())
	require.Equal(t, 12, params.BytesPerPlaintext())
}

func TestParametersDigest(t *testing.T) {

	a := testParameters(t, 16, 97, 3)
	b := testParameters(t, 16, 97, 3)
	c := testParameters(t, 16, 17, 3)
	d := testParameters(t, 32, 97, 3)

	require.True(t, a.Equal(b))
	require.Empty(t, cmp.Diff(a.Digest(), b.Digest()))
	require.False(t, a.Equal(c))
	require.False(t, a.Equal(d))
	require.NotEqual(t, a.Digest(), c.Digest())
	require.NotEqual(t, a.Digest(), d.Digest())
}
