package rlwe

import (
	"fmt"

	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/utils/sampling"
)

// Plaintext wraps one polynomial: in Coeff format over the plaintext
// ring for ordinary encoding, or in Eval format over a ciphertext
// basis for multiplication-ready encodings.
type Plaintext struct {
	Value *ring.Poly

	ctx *Context
}

// NewPlaintext allocates a zero Coeff-format plaintext over the
// plaintext ring.
func NewPlaintext(ctx *Context) *Plaintext {
	return &Plaintext{Value: ring.NewPoly(ctx.ptCtx, ring.Coeff), ctx: ctx}
}

// NewPlaintextFromPoly wraps an existing polynomial.
func NewPlaintextFromPoly(ctx *Context, p *ring.Poly) *Plaintext {
	return &Plaintext{Value: p, ctx: ctx}
}

// Context returns the owning context.
func (p *Plaintext) Context() *Context { return p.ctx }

// CopyNew returns a deep copy.
func (p *Plaintext) CopyNew() *Plaintext {
	return &Plaintext{Value: p.Value.CopyNew(), ctx: p.ctx}
}

// Equal reports whether both plaintexts hold the same polynomial over
// equal contexts.
func (p *Plaintext) Equal(other *Plaintext) bool {
	return p.ctx.Equal(other.ctx) && p.Value.Equal(other.Value)
}

// Ciphertext is an ordered list of polynomials over one shared
// ciphertext basis: 2 for a fresh RLWE sample, 3 after multiplication,
// back to 2 after relinearization. The correction factor scales the
// carried plaintext mod t and is divided out at decryption; addition
// requires equal factors and multiplication multiplies them. Every
// operation in this module produces factor 1, so the field matters to
// the wire format and to protocol layers that rescale plaintexts
// before handing ciphertexts back, not to local evaluation. A non-nil
// seed marks the second polynomial as the deterministic expansion of
// that seed, enabling compressed serialization.
type Ciphertext struct {
	Value []*ring.Poly

	CorrectionFactor uint64

	Seed *sampling.Seed

	ctx *Context
}

// NewCiphertext allocates a zero ciphertext with degree+1 Coeff-format
// polynomials over polyCtx, which must be a level of ctx's ciphertext
// chain.
func NewCiphertext(ctx *Context, degree int, polyCtx *ring.PolyContext) *Ciphertext {
	polys := make([]*ring.Poly, degree+1)
	for i := range polys {
		polys[i] = ring.NewPoly(polyCtx, ring.Coeff)
	}
	return &Ciphertext{Value: polys, CorrectionFactor: 1, ctx: ctx}
}

// NewCiphertextFromPolys wraps existing polynomials, which must all
// share one context.
func NewCiphertextFromPolys(ctx *Context, polys []*ring.Poly, correctionFactor uint64) *Ciphertext {
	for _, p := range polys[1:] {
		if !p.Context().Equal(polys[0].Context()) {
			panic(fmt.Errorf("rlwe: ciphertext polynomials over different bases"))
		}
	}
	return &Ciphertext{Value: polys, CorrectionFactor: correctionFactor, ctx: ctx}
}

// Context returns the owning context.
func (ct *Ciphertext) Context() *Context { return ct.ctx }

// Degree returns the ciphertext degree, one less than the polynomial
// count.
func (ct *Ciphertext) Degree() int { return len(ct.Value) - 1 }

// PolyContext returns the shared basis of the polynomials.
func (ct *Ciphertext) PolyContext() *ring.PolyContext { return ct.Value[0].Context() }

// ModuliCount returns the number of moduli in the ciphertext basis.
func (ct *Ciphertext) ModuliCount() int { return ct.Value[0].ModuliCount() }

// CopyNew returns a deep copy. The seed, if any, is carried over.
func (ct *Ciphertext) CopyNew() *Ciphertext {
	polys := make([]*ring.Poly, len(ct.Value))
	for i, p := range ct.Value {
		polys[i] = p.CopyNew()
	}
	out := &Ciphertext{Value: polys, CorrectionFactor: ct.CorrectionFactor, ctx: ct.ctx}
	if ct.Seed != nil {
		seed := *ct.Seed
		out.Seed = &seed
	}
	return out
}

// Equal reports whether both ciphertexts hold the same polynomials and
// correction factor over equal contexts.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	if !ct.ctx.Equal(other.ctx) || ct.CorrectionFactor != other.CorrectionFactor || len(ct.Value) != len(other.Value) {
		return false
	}
	for i := range ct.Value {
		if !ct.Value[i].Equal(other.Value[i]) {
			return false
		}
	}
	return true
}

// IsTransparent reports whether the carried plaintext is recoverable
// without the secret key: every polynomial beyond the first is zero,
// so decryption ignores the key entirely.
func (ct *Ciphertext) IsTransparent() bool {
	for _, p := range ct.Value[1:] {
		if !p.IsZero() {
			return false
		}
	}
	return true
}
