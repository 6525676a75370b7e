// Package utils implements small helpers shared across the library.
package utils

import (
	"math/bits"
)

// BitReverse64 returns the bit-reversal of the n first bits of i.
func BitReverse64(i uint64, n int) uint64 {
	return bits.Reverse64(i) >> (64 - n)
}

// EqualSliceUint64 checks the equality between two uint64 slices.
func EqualSliceUint64(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsInSliceUint64 checks if x is in slice.
func IsInSliceUint64(x uint64, slice []uint64) bool {
	for i := range slice {
		if slice[i] == x {
			return true
		}
	}
	return false
}

// AllDistinct returns true if all elements of the slice are distinct.
func AllDistinct(s []uint64) bool {
	m := make(map[uint64]struct{}, len(s))
	for _, x := range s {
		if _, ok := m[x]; ok {
			return false
		}
		m[x] = struct{}{}
	}
	return true
}

// IsPowerOfTwo returns true if n is a power of two larger than zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns ceil(log2(n)) for n a power of two.
func Log2(n int) int {
	return bits.Len64(uint64(n)) - 1
}

// DivCeil returns ceil(a/b).
func DivCeil(a, b int) int {
	return (a + b - 1) / b
}
