// Package wideint implements fixed-size unsigned integers wider than a
// machine word, built by doubling: a Uint128 is a pair of uint64 and a
// Uint256 is a pair of Uint128. They back the reduction and division
// factors of the ring package, where single-word arithmetic overflows.
package wideint

import (
	"math/big"
	"math/bits"
)

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	Hi, Lo uint64
}

// NewUint128 returns hi*2^64 + lo.
func NewUint128(hi, lo uint64) Uint128 {
	return Uint128{Hi: hi, Lo: lo}
}

// From64 returns x as a Uint128.
func From64(x uint64) Uint128 {
	return Uint128{Lo: x}
}

// Mul64 returns the full 128-bit product x*y.
func Mul64(x, y uint64) Uint128 {
	hi, lo := bits.Mul64(x, y)
	return Uint128{Hi: hi, Lo: lo}
}

// IsZero returns true if u == 0.
func (u Uint128) IsZero() bool {
	return u.Hi|u.Lo == 0
}

// BitLen returns the number of bits required to represent u.
func (u Uint128) BitLen() int {
	if u.Hi != 0 {
		return 64 + bits.Len64(u.Hi)
	}
	return bits.Len64(u.Lo)
}

// Cmp returns -1, 0 or 1 depending on whether u < v, u == v or u > v.
func (u Uint128) Cmp(v Uint128) int {
	switch {
	case u.Hi != v.Hi:
		if u.Hi < v.Hi {
			return -1
		}
		return 1
	case u.Lo != v.Lo:
		if u.Lo < v.Lo {
			return -1
		}
		return 1
	}
	return 0
}

// Add returns u + v, wrapping on overflow.
func (u Uint128) Add(v Uint128) Uint128 {
	lo, carry := bits.Add64(u.Lo, v.Lo, 0)
	hi, _ := bits.Add64(u.Hi, v.Hi, carry)
	return Uint128{Hi: hi, Lo: lo}
}

// Add64 returns u + v, wrapping on overflow.
func (u Uint128) Add64(v uint64) Uint128 {
	lo, carry := bits.Add64(u.Lo, v, 0)
	return Uint128{Hi: u.Hi + carry, Lo: lo}
}

// AddCarry returns u + v + carryIn and the carry out. carryIn must be 0 or 1.
func (u Uint128) AddCarry(v Uint128, carryIn uint64) (Uint128, uint64) {
	lo, c := bits.Add64(u.Lo, v.Lo, carryIn)
	hi, c := bits.Add64(u.Hi, v.Hi, c)
	return Uint128{Hi: hi, Lo: lo}, c
}

// Sub returns u - v, wrapping on underflow.
func (u Uint128) Sub(v Uint128) Uint128 {
	lo, borrow := bits.Sub64(u.Lo, v.Lo, 0)
	hi, _ := bits.Sub64(u.Hi, v.Hi, borrow)
	return Uint128{Hi: hi, Lo: lo}
}

// SubBorrow returns u - v - borrowIn and the borrow out. borrowIn must be 0 or 1.
func (u Uint128) SubBorrow(v Uint128, borrowIn uint64) (Uint128, uint64) {
	lo, b := bits.Sub64(u.Lo, v.Lo, borrowIn)
	hi, b := bits.Sub64(u.Hi, v.Hi, b)
	return Uint128{Hi: hi, Lo: lo}, b
}

// Mul returns the low 128 bits of u * v.
func (u Uint128) Mul(v Uint128) Uint128 {
	hi, lo := bits.Mul64(u.Lo, v.Lo)
	hi += u.Hi*v.Lo + u.Lo*v.Hi
	return Uint128{Hi: hi, Lo: lo}
}

// Mul64Lo returns the low 128 bits of u * v.
func (u Uint128) Mul64Lo(v uint64) Uint128 {
	hi, lo := bits.Mul64(u.Lo, v)
	return Uint128{Hi: hi + u.Hi*v, Lo: lo}
}

// MulFull returns the full 256-bit product u * v.
func (u Uint128) MulFull(v Uint128) Uint256 {
	// Schoolbook over 64-bit limbs.
	h0, l0 := bits.Mul64(u.Lo, v.Lo)

	h1, l1 := bits.Mul64(u.Lo, v.Hi)
	h2, l2 := bits.Mul64(u.Hi, v.Lo)
	h3, l3 := bits.Mul64(u.Hi, v.Hi)

	// Limb 1.
	w1, c := bits.Add64(h0, l1, 0)
	c2 := c
	w1, c = bits.Add64(w1, l2, 0)
	c2 += c

	// Limb 2.
	w2, c := bits.Add64(h1, h2, 0)
	c3 := c
	w2, c = bits.Add64(w2, l3, 0)
	c3 += c
	w2, c = bits.Add64(w2, c2, 0)
	c3 += c

	// Limb 3.
	w3 := h3 + c3

	return Uint256{
		Hi: Uint128{Hi: w3, Lo: w2},
		Lo: Uint128{Hi: w1, Lo: l0},
	}
}

// Lsh returns u << n. The result is 0 for n >= 128.
func (u Uint128) Lsh(n uint) Uint128 {
	switch {
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Hi: u.Lo << (n - 64)}
	case n == 0:
		return u
	}
	return Uint128{Hi: u.Hi<<n | u.Lo>>(64-n), Lo: u.Lo << n}
}

// Rsh returns u >> n. The result is 0 for n >= 128.
func (u Uint128) Rsh(n uint) Uint128 {
	switch {
	case n >= 128:
		return Uint128{}
	case n >= 64:
		return Uint128{Lo: u.Hi >> (n - 64)}
	case n == 0:
		return u
	}
	return Uint128{Hi: u.Hi >> n, Lo: u.Lo>>n | u.Hi<<(64-n)}
}

// And returns u & v.
func (u Uint128) And(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi & v.Hi, Lo: u.Lo & v.Lo}
}

// Or returns u | v.
func (u Uint128) Or(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi | v.Hi, Lo: u.Lo | v.Lo}
}

// Xor returns u ^ v.
func (u Uint128) Xor(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi ^ v.Hi, Lo: u.Lo ^ v.Lo}
}

// QuoRem64 returns the quotient and remainder of u divided by v.
// v must be non-zero.
func (u Uint128) QuoRem64(v uint64) (q Uint128, r uint64) {
	if u.Hi < v {
		q.Lo, r = bits.Div64(u.Hi, u.Lo, v)
		return
	}
	q.Hi, r = bits.Div64(0, u.Hi, v)
	q.Lo, r = bits.Div64(r, u.Lo, v)
	return
}

// QuoRem returns the quotient and remainder of u divided by v.
// v must be non-zero.
func (u Uint128) QuoRem(v Uint128) (q, r Uint128) {
	if v.Hi == 0 {
		var r64 uint64
		q, r64 = u.QuoRem64(v.Lo)
		return q, From64(r64)
	}
	// Trial quotient within one of the true quotient (Knuth 4.3.1,
	// two-limb specialization).
	n := uint(bits.LeadingZeros64(v.Hi))
	v1 := v.Lsh(n)
	u1 := u.Rsh(1)
	tq, _ := bits.Div64(u1.Hi, u1.Lo, v1.Hi)
	tq >>= 63 - n
	if tq != 0 {
		tq--
	}
	q = From64(tq)
	r = u.Sub(v.Mul64Lo(tq))
	if r.Cmp(v) >= 0 {
		q = q.Add64(1)
		r = r.Sub(v)
	}
	return
}

// Big returns u as a math/big integer.
func (u Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(u.Hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(u.Lo))
}

// Uint128FromBig returns the low 128 bits of b, which must be non-negative.
func Uint128FromBig(b *big.Int) Uint128 {
	lo := new(big.Int).And(b, maxUint64)
	hi := new(big.Int).Rsh(b, 64)
	hi.And(hi, maxUint64)
	return Uint128{Hi: hi.Uint64(), Lo: lo.Uint64()}
}

var maxUint64 = new(big.Int).SetUint64(^uint64(0))

// Uint256 is an unsigned 256-bit integer, the next doubling of Uint128.
type Uint256 struct {
	Hi, Lo Uint128
}

// IsZero returns true if u == 0.
func (u Uint256) IsZero() bool {
	return u.Hi.IsZero() && u.Lo.IsZero()
}

// BitLen returns the number of bits required to represent u.
func (u Uint256) BitLen() int {
	if !u.Hi.IsZero() {
		return 128 + u.Hi.BitLen()
	}
	return u.Lo.BitLen()
}

// Cmp returns -1, 0 or 1 depending on whether u < v, u == v or u > v.
func (u Uint256) Cmp(v Uint256) int {
	if c := u.Hi.Cmp(v.Hi); c != 0 {
		return c
	}
	return u.Lo.Cmp(v.Lo)
}

// Add returns u + v, wrapping on overflow.
func (u Uint256) Add(v Uint256) Uint256 {
	lo, carry := u.Lo.AddCarry(v.Lo, 0)
	hi, _ := u.Hi.AddCarry(v.Hi, carry)
	return Uint256{Hi: hi, Lo: lo}
}

// Sub returns u - v, wrapping on underflow.
func (u Uint256) Sub(v Uint256) Uint256 {
	lo, borrow := u.Lo.SubBorrow(v.Lo, 0)
	hi, _ := u.Hi.SubBorrow(v.Hi, borrow)
	return Uint256{Hi: hi, Lo: lo}
}

// Lsh returns u << n. The result is 0 for n >= 256.
func (u Uint256) Lsh(n uint) Uint256 {
	switch {
	case n >= 256:
		return Uint256{}
	case n >= 128:
		return Uint256{Hi: u.Lo.Lsh(n - 128)}
	case n == 0:
		return u
	}
	return Uint256{
		Hi: u.Hi.Lsh(n).Or(u.Lo.Rsh(128 - n)),
		Lo: u.Lo.Lsh(n),
	}
}

// Rsh returns u >> n. The result is 0 for n >= 256.
func (u Uint256) Rsh(n uint) Uint256 {
	switch {
	case n >= 256:
		return Uint256{}
	case n >= 128:
		return Uint256{Lo: u.Hi.Rsh(n - 128)}
	case n == 0:
		return u
	}
	return Uint256{
		Hi: u.Hi.Rsh(n),
		Lo: u.Lo.Rsh(n).Or(u.Hi.Lsh(128 - n)),
	}
}

// QuoRem64 returns the quotient and remainder of u divided by v.
// v must be non-zero.
func (u Uint256) QuoRem64(v uint64) (q Uint256, r uint64) {
	q.Hi, r = u.Hi.QuoRem64(v)
	// Fold the remainder of the high half into the low half, one
	// 64-bit limb at a time.
	q.Lo.Hi, r = bits.Div64(r, u.Lo.Hi, v)
	q.Lo.Lo, r = bits.Div64(r, u.Lo.Lo, v)
	return
}

// Big returns u as a math/big integer.
func (u Uint256) Big() *big.Int {
	b := u.Hi.Big()
	b.Lsh(b, 128)
	return b.Or(b, u.Lo.Big())
}

// Uint256FromBig returns the low 256 bits of b, which must be non-negative.
func Uint256FromBig(b *big.Int) Uint256 {
	return Uint256{
		Hi: Uint128FromBig(new(big.Int).Rsh(b, 128)),
		Lo: Uint128FromBig(b),
	}
}
