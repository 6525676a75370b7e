package ring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackedBytes(t *testing.T) {
	require.Equal(t, 0, PackedBytes(0, 13))
	require.Equal(t, 1, PackedBytes(1, 8))
	require.Equal(t, 2, PackedBytes(1, 13))
	require.Equal(t, 13, PackedBytes(8, 13))
	require.Equal(t, 8, PackedBytes(1, 64))
}

func TestCoefficientCounts(t *testing.T) {

	require.Equal(t, 4, CoefficientCountFloor(7, 13))
	require.Equal(t, 5, CoefficientCountCeil(7, 13))

	// The counts invert PackedBytes for any shape.
	for _, bits := range []int{1, 7, 13, 30, 61, 64} {
		for n := 0; n < 40; n++ {
			size := PackedBytes(n, bits)
			require.LessOrEqual(t, n, CoefficientCountFloor(size, bits))
			require.LessOrEqual(t, n, CoefficientCountCeil(size, bits))
			require.GreaterOrEqual(t, n+7, CoefficientCountCeil(size, bits))
		}
	}
}

func TestPackingParamValidation(t *testing.T) {

	_, err := PackCoefficients([]uint64{1}, 0, 0)
	require.Error(t, err)
	_, err = PackCoefficients([]uint64{1}, 65, 0)
	require.Error(t, err)
	_, err = PackCoefficients([]uint64{1}, 8, 8)
	require.Error(t, err)
	_, err = PackCoefficients([]uint64{1}, 8, -1)
	require.Error(t, err)

	_, err = UnpackCoefficients([]byte{0}, 1, 13, 0)
	require.Error(t, err, "too few bytes")
}

func TestPackingRoundTrip(t *testing.T) {

	r := rand.New(rand.NewSource(0))

	for _, bits := range []int{1, 5, 8, 13, 17, 30, 61, 64} {
		for _, n := range []int{1, 7, 16, 33} {
			coeffs := make([]uint64, n)
			mask := ^uint64(0)
			if bits < 64 {
				mask = (uint64(1) << bits) - 1
			}
			for i := range coeffs {
				coeffs[i] = r.Uint64() & mask
			}

			packed, err := PackCoefficients(coeffs, bits, 0)
			require.NoError(t, err)
			require.Len(t, packed, PackedBytes(n, bits))

			got, err := UnpackCoefficients(packed, n, bits, 0)
			require.NoError(t, err)
			require.Equal(t, coeffs, got, "bits=%d n=%d", bits, n)
		}
	}
}

func TestPackingSkipLSBs(t *testing.T) {

	r := rand.New(rand.NewSource(1))

	bits, skip, n := 30, 7, 16
	coeffs := make([]uint64, n)
	for i := range coeffs {
		coeffs[i] = r.Uint64() & ((1 << bits) - 1)
	}

	packed, err := PackCoefficients(coeffs, bits, skip)
	require.NoError(t, err)
	require.Len(t, packed, PackedBytes(n, bits-skip))

	got, err := UnpackCoefficients(packed, n, bits, skip)
	require.NoError(t, err)
	for i := range got {
		require.Equal(t, coeffs[i]>>skip<<skip, got[i], "coefficient %d", i)
	}
}
