package ring

import (
	"fmt"
)

// checkPackingParams validates the per-coefficient width and the LSB
// truncation count.
func checkPackingParams(bitsPerCoeff, skipLSBs int) error {
	if bitsPerCoeff < 1 || bitsPerCoeff > 64 {
		return fmt.Errorf("ring: bits per coefficient %d out of range [1, 64]", bitsPerCoeff)
	}
	if skipLSBs < 0 || skipLSBs >= bitsPerCoeff {
		return fmt.Errorf("ring: skip LSBs %d out of range [0, %d)", skipLSBs, bitsPerCoeff)
	}
	return nil
}

// PackedBytes returns the byte count of n coefficients packed at bits
// bits each.
func PackedBytes(n, bits int) int {
	return (n*bits + 7) / 8
}

// CoefficientCountFloor returns how many whole coefficients at bits
// bits are recoverable from numBytes bytes, tolerating a final partial
// byte.
func CoefficientCountFloor(numBytes, bits int) int {
	return 8 * numBytes / bits
}

// CoefficientCountCeil returns the coefficient count whose packing
// could have produced numBytes bytes at bits bits each.
func CoefficientCountCeil(numBytes, bits int) int {
	return (8*numBytes + bits - 1) / bits
}

// PackCoefficients packs the coefficients at bitsPerCoeff - skipLSBs
// bits each, dropping the skipLSBs least-significant bits and laying
// bits out most-significant first within each coefficient and byte.
func PackCoefficients(coeffs []uint64, bitsPerCoeff, skipLSBs int) ([]byte, error) {

	if err := checkPackingParams(bitsPerCoeff, skipLSBs); err != nil {
		return nil, err
	}

	b := bitsPerCoeff - skipLSBs
	mask := ^uint64(0)
	if b < 64 {
		mask = (uint64(1) << b) - 1
	}

	out := make([]byte, PackedBytes(len(coeffs), b))
	bitPos := 0
	for _, c := range coeffs {
		v := (c >> skipLSBs) & mask
		for rem := b; rem > 0; {
			off := bitPos & 7
			take := 8 - off
			if take > rem {
				take = rem
			}
			chunk := byte(v>>(rem-take)) & ((1 << take) - 1)
			out[bitPos>>3] |= chunk << (8 - off - take)
			bitPos += take
			rem -= take
		}
	}
	return out, nil
}

// UnpackCoefficients is the exact inverse of PackCoefficients for n
// coefficients: the dropped least-significant bits come back as
// zeros.
func UnpackCoefficients(data []byte, n, bitsPerCoeff, skipLSBs int) ([]uint64, error) {

	if err := checkPackingParams(bitsPerCoeff, skipLSBs); err != nil {
		return nil, err
	}

	b := bitsPerCoeff - skipLSBs
	if required := PackedBytes(n, b); len(data) < required {
		return nil, fmt.Errorf("ring: %d bytes cannot hold %d coefficients of %d bits", len(data), n, b)
	}

	out := make([]uint64, n)
	bitPos := 0
	for i := range out {
		var v uint64
		for rem := b; rem > 0; {
			off := bitPos & 7
			take := 8 - off
			if take > rem {
				take = rem
			}
			chunk := (data[bitPos>>3] >> (8 - off - take)) & ((1 << take) - 1)
			v = v<<take | uint64(chunk)
			bitPos += take
			rem -= take
		}
		out[i] = v << skipLSBs
	}
	return out, nil
}
