package ring

import (
	"errors"
	"fmt"

	"github.com/hegolib/hego/utils/structs"
)

// Format tags the representation of a polynomial: Coeff holds ring
// coefficients, Eval holds NTT evaluations. The forward and inverse
// NTT are the only transitions between the two.
type Format int

const (
	// Coeff is the coefficient representation.
	Coeff Format = iota
	// Eval is the evaluation (NTT) representation.
	Eval
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case Coeff:
		return "Coeff"
	case Eval:
		return "Eval"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ErrWrongFormat is returned when a polynomial is not in the format an
// operation requires.
var ErrWrongFormat = errors.New("ring: wrong polynomial format")

// Poly is a polynomial-ring element over an RNS basis: one row of
// coefficients per modulus of its context, tagged with its current
// representation.
type Poly struct {
	Coeffs structs.Array2d[uint64]
	format Format
	ctx    *PolyContext
}

// NewPoly allocates a zero polynomial over ctx in the given format.
func NewPoly(ctx *PolyContext, format Format) *Poly {
	return &Poly{
		Coeffs: structs.NewArray2d[uint64](ctx.ModuliCount(), ctx.N()),
		format: format,
		ctx:    ctx,
	}
}

// Format returns the current representation.
func (p *Poly) Format() Format { return p.format }

// Context returns the polynomial's context.
func (p *Poly) Context() *PolyContext { return p.ctx }

// Degree returns the ring degree.
func (p *Poly) Degree() int { return p.ctx.N() }

// ModuliCount returns the number of RNS limbs.
func (p *Poly) ModuliCount() int { return p.ctx.ModuliCount() }

// CopyNew returns a deep copy.
func (p *Poly) CopyNew() *Poly {
	return &Poly{Coeffs: p.Coeffs.CopyNew(), format: p.format, ctx: p.ctx}
}

// Equal returns true if both polynomials share context, format and
// coefficients.
func (p *Poly) Equal(other *Poly) bool {
	return p.format == other.format && p.ctx.Equal(other.ctx) && p.Coeffs.Equal(other.Coeffs)
}

// IsZero returns true if every coefficient is zero.
func (p *Poly) IsZero() bool { return p.Coeffs.IsZero() }

// Zeroize scrubs the coefficient storage.
func (p *Poly) Zeroize() { p.Coeffs.Zeroize() }

// NTT converts the polynomial from Coeff to Eval format in place.
func (p *Poly) NTT() error {
	if p.format != Coeff {
		return fmt.Errorf("%w: NTT requires Coeff, got %v", ErrWrongFormat, p.format)
	}
	for _, s := range p.ctx.subRings {
		if !s.NTTFriendly() {
			return fmt.Errorf("ring: modulus %d has no primitive %d-th root of unity", s.Q, 2*p.ctx.n)
		}
	}
	for i, s := range p.ctx.subRings {
		s.NTT(p.Coeffs.Row(i))
	}
	p.format = Eval
	return nil
}

// INTT converts the polynomial from Eval to Coeff format in place.
func (p *Poly) INTT() error {
	if p.format != Eval {
		return fmt.Errorf("%w: INTT requires Eval, got %v", ErrWrongFormat, p.format)
	}
	for _, s := range p.ctx.subRings {
		if !s.NTTFriendly() {
			return fmt.Errorf("ring: modulus %d has no primitive %d-th root of unity", s.Q, 2*p.ctx.n)
		}
	}
	for i, s := range p.ctx.subRings {
		s.INTT(p.Coeffs.Row(i))
	}
	p.format = Coeff
	return nil
}

// Prefix returns a copy of the polynomial restricted to the leading
// moduli of target, which must be a prefix of p's basis.
func (p *Poly) Prefix(target *PolyContext) *Poly {
	if target.N() != p.ctx.N() || target.ModuliCount() > p.ctx.ModuliCount() {
		panic(fmt.Errorf("ring: context %d/%d is not a prefix", target.ModuliCount(), p.ctx.ModuliCount()))
	}
	out := NewPoly(target, p.format)
	for i := 0; i < target.ModuliCount(); i++ {
		if target.subRings[i].Q != p.ctx.subRings[i].Q {
			panic(fmt.Errorf("ring: modulus mismatch at limb %d", i))
		}
		copy(out.Coeffs.Row(i), p.Coeffs.Row(i))
	}
	return out
}

// GatherRows returns a copy of the polynomial over target, picking for
// each target modulus the row of p given by rows. The gathered rows
// must carry the same moduli as target.
func (p *Poly) GatherRows(target *PolyContext, rows []int) *Poly {
	if len(rows) != target.ModuliCount() {
		panic(fmt.Errorf("ring: gather of %d rows into %d moduli", len(rows), target.ModuliCount()))
	}
	out := NewPoly(target, p.format)
	for i, r := range rows {
		if target.subRings[i].Q != p.ctx.subRings[r].Q {
			panic(fmt.Errorf("ring: modulus mismatch gathering row %d", r))
		}
		copy(out.Coeffs.Row(i), p.Coeffs.Row(r))
	}
	return out
}
