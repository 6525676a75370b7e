// Package ring implements the polynomial ring arithmetic underlying the
// BFV scheme: fast modular reduction, the negacyclic number-theoretic
// transform, RNS polynomial contexts and the RNS conversion tooling.
package ring

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/hegolib/hego/utils/wideint"
)

// MaxModulus is the largest supported modulus. Two bits of headroom are
// kept below the word size so that Barrett quotient estimates stay
// within one conditional subtraction of the exact remainder.
const MaxModulus = (1 << 62) - 1

// Modulus wraps a public modulus q together with the precomputed
// factors needed to reduce single-word, double-word and product-sized
// inputs without division. Moduli are never secret: every operation
// here may leak q through timing.
type Modulus struct {
	Q uint64

	// BRedConstant is floor(2^128/q). BRedConstant[0] is the high word
	// and doubles as the single-word factor floor(2^64/q).
	BRedConstant [2]uint64

	// signedOffset is the largest multiple of q not exceeding 2^63,
	// used to reduce centered inputs without branching on the sign.
	signedOffset uint64
}

// NewModulus precomputes the reduction factors for q.
func NewModulus(q uint64) (Modulus, error) {
	if q == 0 || q > MaxModulus {
		return Modulus{}, fmt.Errorf("ring: modulus %d out of range (0, 2^62-1]", q)
	}
	return Modulus{
		Q:            q,
		BRedConstant: bRedConstant(q),
		signedOffset: (uint64(1) << 63) / q * q,
	}, nil
}

// bRedConstant computes floor(2^128/q) as two 64-bit words.
func bRedConstant(q uint64) [2]uint64 {
	bigR := new(big.Int).Lsh(big.NewInt(1), 128)
	bigR.Quo(bigR, new(big.Int).SetUint64(q))
	mhi := new(big.Int).Rsh(bigR, 64).Uint64()
	mlo := bigR.Uint64()
	return [2]uint64{mhi, mlo}
}

// CRed returns a mod q for a in [0, 2q).
func CRed(a, q uint64) uint64 {
	if a >= q {
		return a - q
	}
	return a
}

// CTSelect returns a if bit == 1 and b if bit == 0, without branching.
// bit must be 0 or 1.
func CTSelect(bit, a, b uint64) uint64 {
	mask := -bit
	return (a & mask) | (b &^ mask)
}

// CTGe returns 1 if a >= b and 0 otherwise, without branching.
func CTGe(a, b uint64) uint64 {
	_, borrow := bits.Sub64(a, b, 0)
	return borrow ^ 1
}

// ReduceUint64 returns x mod q for any 64-bit x.
func (m Modulus) ReduceUint64(x uint64) uint64 {
	s0, _ := bits.Mul64(x, m.BRedConstant[0])
	r := x - s0*m.Q
	if r >= m.Q {
		r -= m.Q
	}
	return r
}

// ReduceUint128 returns x mod q for any 128-bit x.
func (m Modulus) ReduceUint128(x wideint.Uint128) uint64 {
	return m.reduce128(x.Hi, x.Lo)
}

// reduce128 returns (ahi*2^64 + alo) mod q. The Barrett quotient
// estimate undershoots the exact quotient by at most one, so a single
// conditional subtraction suffices.
func (m Modulus) reduce128(ahi, alo uint64) uint64 {

	var lhi, mhi, mlo, s0, s1, carry uint64

	// (alo*mlo)>>64
	lhi, _ = bits.Mul64(alo, m.BRedConstant[1])

	// ((ahi*mlo + alo*mhi) + (alo*mlo))>>64
	mhi, mlo = bits.Mul64(alo, m.BRedConstant[0])
	s0, carry = bits.Add64(mlo, lhi, 0)
	s1 = mhi + carry

	mhi, mlo = bits.Mul64(ahi, m.BRedConstant[1])
	_, carry = bits.Add64(mlo, s0, 0)
	lhi = mhi + carry

	// (ahi*mhi) + (((ahi*mlo + alo*mhi) + (alo*mlo))>>64)
	s0 = ahi*m.BRedConstant[0] + s1 + lhi

	r := alo - s0*m.Q
	if r >= m.Q {
		r -= m.Q
	}
	return r
}

// MulMod returns x*y mod q. x and y must be smaller than q.
func (m Modulus) MulMod(x, y uint64) uint64 {
	ahi, alo := bits.Mul64(x, y)
	return m.reduce128(ahi, alo)
}

// ReduceSigned returns x mod q for a centered x with |x| < 2^62,
// without branching on the sign.
func (m Modulus) ReduceSigned(x int64) uint64 {
	return m.ReduceUint64(uint64(x) + m.signedOffset)
}

// Add returns x+y mod q. x and y must be smaller than q.
func (m Modulus) Add(x, y uint64) uint64 {
	return CRed(x+y, m.Q)
}

// Sub returns x-y mod q. x and y must be smaller than q.
func (m Modulus) Sub(x, y uint64) uint64 {
	return CRed(x+m.Q-y, m.Q)
}

// Neg returns -x mod q. x must be smaller than q.
func (m Modulus) Neg(x uint64) uint64 {
	return CRed(m.Q-x, m.Q)
}

// Exp returns x^e mod q by square and multiply. x must be smaller than q.
func (m Modulus) Exp(x, e uint64) uint64 {
	r := uint64(1)
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			r = m.MulMod(r, x)
		}
		x = m.MulMod(x, x)
	}
	return r
}

// Inverse returns x^-1 mod q for prime q, or an error if x is not
// invertible.
func (m Modulus) Inverse(x uint64) (uint64, error) {
	x = m.ReduceUint64(x)
	if x == 0 {
		return 0, fmt.Errorf("ring: %d is not invertible mod %d", x, m.Q)
	}
	inv := new(big.Int).ModInverse(new(big.Int).SetUint64(x), new(big.Int).SetUint64(m.Q))
	if inv == nil {
		return 0, fmt.Errorf("ring: %d is not invertible mod %d", x, m.Q)
	}
	return inv.Uint64(), nil
}

// MulConstant is the Shoup precomputation for repeated multiplication
// by one fixed constant: Factor = floor(Value * 2^64 / q).
type MulConstant struct {
	Value  uint64
	Factor uint64
}

// NewMulConstant precomputes the per-constant factor for v mod q.
func (m Modulus) NewMulConstant(v uint64) MulConstant {
	v = m.ReduceUint64(v)
	factor, _ := bits.Div64(v, 0, m.Q)
	return MulConstant{Value: v, Factor: factor}
}

// NewMulConstantArray vectorizes NewMulConstant over a slice of
// constants.
func (m Modulus) NewMulConstantArray(vs []uint64) []MulConstant {
	cs := make([]MulConstant, len(vs))
	for i, v := range vs {
		cs[i] = m.NewMulConstant(v)
	}
	return cs
}

// MulConst returns x*c mod q for any 64-bit x.
func (m Modulus) MulConst(x uint64, c MulConstant) uint64 {
	hi, _ := bits.Mul64(x, c.Factor)
	r := x*c.Value - hi*m.Q
	if r >= m.Q {
		r -= m.Q
	}
	return r
}

// DivisionModulus precomputes the reciprocal-like factor enabling
// floor division of a 128-bit dividend by q with one multiply-high and
// a branch-free correction.
type DivisionModulus struct {
	Q      uint64
	factor wideint.Uint128 // floor(2^128/q)
}

// NewDivisionModulus precomputes the division factor for q.
func NewDivisionModulus(q uint64) (DivisionModulus, error) {
	if q == 0 || q > MaxModulus {
		return DivisionModulus{}, fmt.Errorf("ring: modulus %d out of range (0, 2^62-1]", q)
	}
	c := bRedConstant(q)
	return DivisionModulus{Q: q, factor: wideint.NewUint128(c[0], c[1])}, nil
}

// DivideFloor returns floor(x/q). The estimate from the multiply-high
// undershoots by at most one and is corrected without branching on the
// dividend.
func (d DivisionModulus) DivideFloor(x wideint.Uint128) wideint.Uint128 {
	qhat := x.MulFull(d.factor).Hi
	r := x.Sub(qhat.Mul64Lo(d.Q))
	// ge = 1 iff r >= q.
	_, borrow := r.SubBorrow(wideint.From64(d.Q), 0)
	return qhat.Add64(borrow ^ 1)
}
