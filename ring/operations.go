package ring

import (
	"fmt"
)

// checkBinaryOp panics unless p1, p2 and out share the receiver
// context and a common format. Shape mismatches between polynomials of
// the same level are programmer errors, not data-dependent failures.
func (c *PolyContext) checkBinaryOp(p1, p2, out *Poly) {
	if !p1.ctx.Equal(c) || !p2.ctx.Equal(c) || !out.ctx.Equal(c) {
		panic(fmt.Errorf("ring: operands built from different contexts"))
	}
	if p1.format != p2.format {
		panic(fmt.Errorf("ring: operand formats differ (%v vs %v)", p1.format, p2.format))
	}
}

// Add evaluates out = p1 + p2, limb-wise. Both operands must share a
// format, which out inherits.
func (c *PolyContext) Add(p1, p2, out *Poly) {
	c.checkBinaryOp(p1, p2, out)
	for i, s := range c.subRings {
		q := s.Q
		x, y, z := p1.Coeffs.Row(i), p2.Coeffs.Row(i), out.Coeffs.Row(i)
		for j := range z {
			z[j] = CRed(x[j]+y[j], q)
		}
	}
	out.format = p1.format
}

// Sub evaluates out = p1 - p2, limb-wise.
func (c *PolyContext) Sub(p1, p2, out *Poly) {
	c.checkBinaryOp(p1, p2, out)
	for i, s := range c.subRings {
		q := s.Q
		x, y, z := p1.Coeffs.Row(i), p2.Coeffs.Row(i), out.Coeffs.Row(i)
		for j := range z {
			z[j] = CRed(x[j]+q-y[j], q)
		}
	}
	out.format = p1.format
}

// Neg evaluates out = -p1, limb-wise.
func (c *PolyContext) Neg(p1, out *Poly) {
	for i, s := range c.subRings {
		q := s.Q
		x, z := p1.Coeffs.Row(i), out.Coeffs.Row(i)
		for j := range z {
			z[j] = CRed(q-x[j], q)
		}
	}
	out.format = p1.format
}

// MulCoeffs evaluates out = p1 * p2 pointwise. Only well-defined in
// Eval format, where the pointwise product realizes the negacyclic
// convolution.
func (c *PolyContext) MulCoeffs(p1, p2, out *Poly) {
	c.checkBinaryOp(p1, p2, out)
	if p1.format != Eval {
		panic(fmt.Errorf("ring: pointwise multiplication requires Eval format"))
	}
	for i, s := range c.subRings {
		x, y, z := p1.Coeffs.Row(i), p2.Coeffs.Row(i), out.Coeffs.Row(i)
		for j := range z {
			z[j] = s.MulMod(x[j], y[j])
		}
	}
	out.format = Eval
}

// MulCoeffsThenAdd evaluates out += p1 * p2 pointwise in Eval format.
func (c *PolyContext) MulCoeffsThenAdd(p1, p2, out *Poly) {
	c.checkBinaryOp(p1, p2, out)
	if p1.format != Eval {
		panic(fmt.Errorf("ring: pointwise multiplication requires Eval format"))
	}
	for i, s := range c.subRings {
		q := s.Q
		x, y, z := p1.Coeffs.Row(i), p2.Coeffs.Row(i), out.Coeffs.Row(i)
		for j := range z {
			z[j] = CRed(z[j]+s.MulMod(x[j], y[j]), q)
		}
	}
}

// MulScalar evaluates out = scalar * p1, limb-wise, in either format.
func (c *PolyContext) MulScalar(p1 *Poly, scalar uint64, out *Poly) {
	for i, s := range c.subRings {
		mc := s.NewMulConstant(scalar)
		x, z := p1.Coeffs.Row(i), out.Coeffs.Row(i)
		for j := range z {
			z[j] = s.MulConst(x[j], mc)
		}
	}
	out.format = p1.format
}
