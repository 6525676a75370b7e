package rlwe

import (
	"fmt"

	"github.com/hegolib/hego/ring"
)

// KeySwitch applies a key-switching key to a Coeff-format polynomial
// over one ciphertext level, returning the Coeff-format pair (c0, c1)
// over the same level such that c0 + c1*s approximates a*target, where
// target is the secret the key was generated for. Each modulus row of
// a is treated as one gadget digit, spread over the key-switching
// basis [q_0..q_l, P], accumulated against the key in Eval format and
// finally divided by P with rounding.
func (c *Context) KeySwitch(a *ring.Poly, ksk *KeySwitchKey) (*ring.Poly, *ring.Poly, error) {

	if a.Format() != ring.Coeff {
		return nil, nil, fmt.Errorf("%w: key switching requires Coeff", ring.ErrWrongFormat)
	}

	m := a.ModuliCount()
	if m > len(c.ctChain) || !a.Context().Equal(c.ctChain[m-1]) {
		return nil, nil, fmt.Errorf("%w: polynomial is not on the ciphertext chain", ErrContextMismatch)
	}
	if ksk.Digits() < m {
		return nil, nil, fmt.Errorf("rlwe: key has %d gadget digits, level needs %d", ksk.Digits(), m)
	}

	ksCtx, err := c.KeySwitchContext(m)
	if err != nil {
		return nil, nil, err
	}
	ksTool, err := c.KeySwitchTool(m)
	if err != nil {
		return nil, nil, err
	}

	skModuli := c.skCtx.ModuliCount()
	rows := make([]int, m+1)
	for i := 0; i < m; i++ {
		rows[i] = i
	}
	rows[m] = skModuli - 1

	acc0 := ring.NewPoly(ksCtx, ring.Eval)
	acc1 := ring.NewPoly(ksCtx, ring.Eval)

	for j := 0; j < m; j++ {

		// Digit j: the residues mod q_j, re-reduced into every
		// modulus of the key-switching basis.
		d := ring.NewPoly(ksCtx, ring.Coeff)
		src := a.Coeffs.Row(j)
		for i := 0; i < ksCtx.ModuliCount(); i++ {
			s := ksCtx.SubRingAt(i)
			dst := d.Coeffs.Row(i)
			for k := range dst {
				dst[k] = s.ReduceUint64(src[k])
			}
		}
		if err := d.NTT(); err != nil {
			return nil, nil, err
		}

		k0 := ksk.Value[j][0].GatherRows(ksCtx, rows)
		k1 := ksk.Value[j][1].GatherRows(ksCtx, rows)
		ksCtx.MulCoeffsThenAdd(d, k0, acc0)
		ksCtx.MulCoeffsThenAdd(d, k1, acc1)
	}

	if err := acc0.INTT(); err != nil {
		return nil, nil, err
	}
	if err := acc1.INTT(); err != nil {
		return nil, nil, err
	}

	c0, err := ksTool.DivideAndRoundByLastModulus(acc0)
	if err != nil {
		return nil, nil, err
	}
	c1, err := ksTool.DivideAndRoundByLastModulus(acc1)
	if err != nil {
		return nil, nil, err
	}
	return c0, c1, nil
}
