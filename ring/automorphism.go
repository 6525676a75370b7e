package ring

import (
	"fmt"

	"github.com/hegolib/hego/utils"
)

// validGaloisElement reports whether galEl defines a ring automorphism
// x -> x^galEl of Z[X]/(X^N+1): it must be odd and smaller than 2N.
func validGaloisElement(galEl uint64, n int) bool {
	return galEl&1 == 1 && galEl < uint64(2*n)
}

// AutomorphismIndexNTT computes the Eval-format permutation table for
// the automorphism x -> x^galEl: output slot i takes input slot
// index[i]. The table depends only on the public element and degree.
func AutomorphismIndexNTT(galEl uint64, n int) []uint64 {
	logN := utils.Log2(n)
	mask := uint64(2*n) - 1
	index := make([]uint64, n)
	for i := uint64(0); i < uint64(n); i++ {
		exp := 2*utils.BitReverse64(i, logN) + 1
		mapped := ((galEl * exp) & mask) >> 1
		index[i] = utils.BitReverse64(mapped, logN)
	}
	return index
}

// Automorphism returns the image of p under x -> x^galEl. In Coeff
// format coefficient i moves to position i*galEl mod 2N with a sign
// flip past the degree (X^N = -1); in Eval format it is the matching
// slot permutation, with no sign flips. The two paths commute with the
// NTT.
func (c *PolyContext) Automorphism(p *Poly, galEl uint64) (*Poly, error) {
	if !validGaloisElement(galEl, c.n) {
		return nil, fmt.Errorf("ring: invalid Galois element %d for degree %d", galEl, c.n)
	}
	out := NewPoly(c, p.format)
	switch p.format {
	case Coeff:
		mask := uint64(c.n) - 1
		logN := utils.Log2(c.n)
		for i := uint64(0); i < uint64(c.n); i++ {
			idxRaw := i * galEl
			idx := idxRaw & mask
			sign := (idxRaw >> logN) & 1
			for j, s := range c.subRings {
				v := p.Coeffs.At(j, int(i))
				if sign == 1 {
					v = s.Neg(v)
				}
				out.Coeffs.Set(j, int(idx), v)
			}
		}
	case Eval:
		index := AutomorphismIndexNTT(galEl, c.n)
		for j := range c.subRings {
			in, dst := p.Coeffs.Row(j), out.Coeffs.Row(j)
			for i := range dst {
				dst[i] = in[index[i]]
			}
		}
	}
	return out, nil
}

// MulPowerOfX returns p * X^power in Coeff format, with wraparound
// sign flips (X^N = -1). power may be negative.
func (c *PolyContext) MulPowerOfX(p *Poly, power int) (*Poly, error) {
	if p.format != Coeff {
		return nil, fmt.Errorf("%w: monomial multiplication requires Coeff", ErrWrongFormat)
	}
	twoN := 2 * c.n
	k := ((power % twoN) + twoN) % twoN
	out := NewPoly(c, Coeff)
	mask := uint64(c.n) - 1
	logN := utils.Log2(c.n)
	for i := uint64(0); i < uint64(c.n); i++ {
		idxRaw := i + uint64(k)
		idx := idxRaw & mask
		sign := (idxRaw >> logN) & 1
		for j, s := range c.subRings {
			v := p.Coeffs.At(j, int(i))
			if sign == 1 {
				v = s.Neg(v)
			}
			out.Coeffs.Set(j, int(idx), v)
		}
	}
	return out, nil
}
