package rlwe

import (
	"fmt"
	"math/bits"

	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/utils/sampling"
)

// SerializedCiphertext is the ciphertext wire form. The full variant
// carries every polynomial; a non-empty Seed selects the seeded
// variant, where Polys holds only the first polynomial and the second
// is regenerated by expanding the seed.
type SerializedCiphertext struct {
	Polys            []byte
	SkipLSBs         []int
	CorrectionFactor uint64
	Seed             []byte
}

// SerializedPlaintext is the plaintext wire form: one packed
// polynomial, no count header.
type SerializedPlaintext struct {
	Poly []byte
}

// coeffBits returns the packing width of residues mod q.
func coeffBits(q uint64) int {
	return bits.Len64(q - 1)
}

// packPoly appends the per-limb packed coefficients of p to out,
// truncating skip LSBs from every coefficient.
func packPoly(out []byte, p *ring.Poly, skip int) ([]byte, error) {
	ctx := p.Context()
	for i := 0; i < ctx.ModuliCount(); i++ {
		packed, err := ring.PackCoefficients(p.Coeffs.Row(i), coeffBits(ctx.SubRingAt(i).Q), skip)
		if err != nil {
			return nil, err
		}
		out = append(out, packed...)
	}
	return out, nil
}

// unpackPoly reads one Coeff-format polynomial over polyCtx from data,
// returning it and the bytes consumed.
func unpackPoly(polyCtx *ring.PolyContext, data []byte, skip int) (*ring.Poly, int, error) {
	p := ring.NewPoly(polyCtx, ring.Coeff)
	consumed := 0
	for i := 0; i < polyCtx.ModuliCount(); i++ {
		b := coeffBits(polyCtx.SubRingAt(i).Q)
		size := ring.PackedBytes(polyCtx.N(), b-skip)
		if len(data) < consumed+size {
			return nil, 0, fmt.Errorf("rlwe: %d bytes left, limb needs %d", len(data)-consumed, size)
		}
		coeffs, err := ring.UnpackCoefficients(data[consumed:consumed+size], polyCtx.N(), b, skip)
		if err != nil {
			return nil, 0, err
		}
		copy(p.Coeffs.Row(i), coeffs)
		consumed += size
	}
	return p, consumed, nil
}

// SerializeCiphertext encodes ct: a 2-byte little-endian polynomial
// count followed by each polynomial's packed limbs. Ciphertexts of
// degree 1 carrying a seed are encoded in the seeded variant with only
// the first polynomial.
func SerializeCiphertext(ct *Ciphertext) (*SerializedCiphertext, error) {

	polys := ct.Value
	var seed []byte
	if ct.Seed != nil && ct.Degree() == 1 {
		polys = polys[:1]
		seed = append([]byte(nil), ct.Seed[:]...)
	}

	for _, p := range polys {
		if p.Format() != ring.Coeff {
			return nil, fmt.Errorf("%w: serialization requires Coeff", ring.ErrWrongFormat)
		}
	}

	out := make([]byte, 2)
	out[0] = byte(len(polys))
	out[1] = byte(len(polys) >> 8)

	var err error
	for _, p := range polys {
		if out, err = packPoly(out, p, 0); err != nil {
			return nil, err
		}
	}

	return &SerializedCiphertext{
		Polys:            out,
		SkipLSBs:         make([]int, len(polys)),
		CorrectionFactor: ct.CorrectionFactor,
		Seed:             seed,
	}, nil
}

// skipLSBsForDecryption returns how many low bits each polynomial of a
// single-modulus degree-1 ciphertext can shed while keeping the
// rounding decision of decryption intact: truncating the first
// polynomial adds at most 2^skip noise, truncating the second adds up
// to N*2^skip through the ternary secret, and both are held below an
// eighth of the scaling factor.
func skipLSBsForDecryption(ct *Ciphertext) []int {
	q := ct.PolyContext().SubRingAt(0).Q
	t := ct.ctx.params.PlaintextModulus()
	logDelta := bits.Len64(q/t) - 1
	skipB := logDelta - 3
	if skipB < 0 {
		skipB = 0
	}
	skipA := logDelta - 3 - ct.ctx.params.LogN()
	if skipA < 0 {
		skipA = 0
	}
	return []int{skipB, skipA}
}

// SerializeCiphertextForDecryption encodes a single-modulus degree-1
// ciphertext destined only for decryption, truncating low bits per
// polynomial. The result is decryption-preserving, not bit-exact, and
// unfit for further homomorphic computation.
func SerializeCiphertextForDecryption(ct *Ciphertext) (*SerializedCiphertext, error) {

	if ct.ModuliCount() != 1 {
		return nil, fmt.Errorf("rlwe: LSB truncation requires a single remaining modulus, got %d", ct.ModuliCount())
	}
	if ct.Degree() != 1 {
		return nil, fmt.Errorf("rlwe: LSB truncation requires degree 1, got %d", ct.Degree())
	}
	for _, p := range ct.Value {
		if p.Format() != ring.Coeff {
			return nil, fmt.Errorf("%w: serialization requires Coeff", ring.ErrWrongFormat)
		}
	}

	skips := skipLSBsForDecryption(ct)

	out := make([]byte, 2)
	out[0] = 2

	var err error
	for i, p := range ct.Value {
		if out, err = packPoly(out, p, skips[i]); err != nil {
			return nil, err
		}
	}

	return &SerializedCiphertext{
		Polys:            out,
		SkipLSBs:         skips,
		CorrectionFactor: ct.CorrectionFactor,
	}, nil
}

// DeserializeCiphertext decodes s into a ciphertext over the chain
// level with moduliCount moduli. For the seeded variant the second
// polynomial is regenerated from the seed.
func DeserializeCiphertext(ctx *Context, s *SerializedCiphertext, moduliCount int) (*Ciphertext, error) {

	polyCtx, err := ctx.ctCtx.GetContext(moduliCount)
	if err != nil {
		return nil, err
	}
	if len(s.Polys) < 2 {
		return nil, fmt.Errorf("rlwe: truncated ciphertext header")
	}
	count := int(s.Polys[0]) | int(s.Polys[1])<<8

	polys := make([]*ring.Poly, 0, count+1)
	data := s.Polys[2:]
	for i := 0; i < count; i++ {
		skip := 0
		if i < len(s.SkipLSBs) {
			skip = s.SkipLSBs[i]
		}
		p, consumed, err := unpackPoly(polyCtx, data, skip)
		if err != nil {
			return nil, err
		}
		polys = append(polys, p)
		data = data[consumed:]
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("rlwe: %d trailing bytes after %d polynomials", len(data), count)
	}

	ct := &Ciphertext{CorrectionFactor: s.CorrectionFactor, ctx: ctx}

	if len(s.Seed) > 0 {
		if count != 1 {
			return nil, fmt.Errorf("rlwe: seeded ciphertext carries %d polynomials, want 1", count)
		}
		if len(s.Seed) != sampling.SeedSize {
			return nil, fmt.Errorf("rlwe: seed is %d bytes, want %d", len(s.Seed), sampling.SeedSize)
		}
		var seed sampling.Seed
		copy(seed[:], s.Seed)
		prng, err := sampling.NewKeyedPRNG(seed)
		if err != nil {
			return nil, err
		}
		a := ring.NewPoly(polyCtx, ring.Coeff)
		ring.NewUniformSampler(prng, polyCtx).Read(a)
		polys = append(polys, a)
		ct.Seed = &seed
	}

	if len(polys) < 2 {
		return nil, fmt.Errorf("rlwe: ciphertext carries %d polynomials, want at least 2", len(polys))
	}
	ct.Value = polys
	return ct, nil
}

// SerializePlaintext encodes a Coeff-format plaintext over the
// plaintext ring.
func SerializePlaintext(pt *Plaintext) (*SerializedPlaintext, error) {
	if pt.Value.Format() != ring.Coeff || pt.Value.ModuliCount() != 1 {
		return nil, fmt.Errorf("rlwe: plaintext serialization requires Coeff over the plaintext ring")
	}
	out, err := packPoly(nil, pt.Value, 0)
	if err != nil {
		return nil, err
	}
	return &SerializedPlaintext{Poly: out}, nil
}

// DeserializePlaintext decodes s over the plaintext ring.
func DeserializePlaintext(ctx *Context, s *SerializedPlaintext) (*Plaintext, error) {
	p, consumed, err := unpackPoly(ctx.ptCtx, s.Poly, 0)
	if err != nil {
		return nil, err
	}
	if consumed != len(s.Poly) {
		return nil, fmt.Errorf("rlwe: %d trailing bytes after plaintext polynomial", len(s.Poly)-consumed)
	}
	return &Plaintext{Value: p, ctx: ctx}, nil
}
