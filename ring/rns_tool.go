package ring

import (
	"fmt"
	"math/big"

	"github.com/hegolib/hego/utils"
	"github.com/hegolib/hego/utils/wideint"
)

// auxPrimeBits is the bit-size of the auxiliary primes extending the
// ciphertext basis during multiplication.
const auxPrimeBits = 61

// RnsTool bundles the base-conversion precomputations of one
// ciphertext level: scaling down to the plaintext modulus for
// decryption, exact division by the last modulus for modulus
// switching, and lifting to the widened basis used by ciphertext
// multiplication. All factors are derived from public parameters, so
// constructing the tool leaks nothing, and the decryption scaling
// never branches on coefficient values.
type RnsTool struct {
	ctxQ  *PolyContext
	ctxT  *PolyContext
	ctxQR *PolyContext

	t Modulus

	// Single-modulus decryption scaling. tThreshold is the rounding
	// threshold (q+1)/2 compared against with CTGe.
	qDiv       DivisionModulus
	tThreshold uint64

	// Multi-modulus decryption scaling: t*c_i/Q split per CRT constant
	// c_i into its integer part mod t (Shoup form) and its fraction in
	// 128-bit fixed point, so the rounding runs on words only.
	tOmega []MulConstant
	tTheta []wideint.Uint128

	// CRT reconstruction constants (M/m_i) * ((M/m_i)^-1 mod m_i) for
	// the bases Q and Q*R.
	crtQ   []*big.Int
	crtQR  []*big.Int
	halfQ  *big.Int
	halfQR *big.Int

	// delta = floor(Q/t), the plaintext scaling factor, as a big
	// integer and reduced per ciphertext modulus.
	bigDelta  *big.Int
	deltaModQ []MulConstant

	// Last-modulus removal constants: q_last/2, its residues mod the
	// surviving moduli and q_last^-1 mod those moduli.
	halfQL      uint64
	halfQLModQi []uint64
	qLInvModQi  []MulConstant
}

// NewRnsTool precomputes the conversion factors between the ciphertext
// basis ctxQ and the single-modulus plaintext basis ctxT, including
// the auxiliary extended basis for multiplication.
func NewRnsTool(ctxQ, ctxT *PolyContext) (*RnsTool, error) {

	if ctxT.ModuliCount() != 1 {
		return nil, fmt.Errorf("ring: plaintext basis must hold a single modulus, got %d", ctxT.ModuliCount())
	}
	if ctxT.N() != ctxQ.N() {
		return nil, fmt.Errorf("ring: degree mismatch %d != %d", ctxQ.N(), ctxT.N())
	}

	r := &RnsTool{
		ctxQ: ctxQ,
		ctxT: ctxT,
		t:    ctxT.subRings[0].Modulus,
	}

	bigQ := ctxQ.BigQ()
	bigT := new(big.Int).SetUint64(r.t.Q)

	r.halfQ = new(big.Int).Rsh(bigQ, 1)
	r.crtQ = crtConstants(ctxQ)
	r.bigDelta = new(big.Int).Quo(bigQ, bigT)

	r.deltaModQ = make([]MulConstant, ctxQ.ModuliCount())
	tmp := new(big.Int)
	for i, s := range ctxQ.subRings {
		tmp.Mod(r.bigDelta, tmp.SetUint64(s.Q))
		r.deltaModQ[i] = s.NewMulConstant(tmp.Uint64())
	}

	var err error
	if ctxQ.ModuliCount() == 1 {
		if r.qDiv, err = NewDivisionModulus(ctxQ.subRings[0].Q); err != nil {
			return nil, err
		}
		r.tThreshold = (ctxQ.subRings[0].Q + 1) >> 1
	} else {
		r.tOmega = make([]MulConstant, ctxQ.ModuliCount())
		r.tTheta = make([]wideint.Uint128, ctxQ.ModuliCount())
		num := new(big.Int)
		rem := new(big.Int)
		for i := range ctxQ.subRings {
			num.Mul(r.crtQ[i], bigT)
			num.QuoRem(num, bigQ, rem)
			r.tOmega[i] = r.t.NewMulConstant(tmp.Mod(num, bigT).Uint64())
			rem.Lsh(rem, 128)
			rem.Quo(rem, bigQ)
			r.tTheta[i] = wideint.Uint128FromBig(rem)
		}
	}

	if l := ctxQ.ModuliCount() - 1; l > 0 {
		qL := ctxQ.subRings[l]
		r.halfQL = qL.Q >> 1
		r.halfQLModQi = make([]uint64, l)
		r.qLInvModQi = make([]MulConstant, l)
		for i := 0; i < l; i++ {
			s := ctxQ.subRings[i]
			r.halfQLModQi[i] = s.ReduceUint64(r.halfQL)
			inv, err := s.Inverse(qL.Q)
			if err != nil {
				return nil, err
			}
			r.qLInvModQi[i] = s.NewMulConstant(inv)
		}
	}

	if r.ctxQR, err = r.newExtendedContext(); err != nil {
		return nil, err
	}
	r.crtQR = crtConstants(r.ctxQR)
	r.halfQR = new(big.Int).Rsh(r.ctxQR.BigQ(), 1)

	return r, nil
}

// newExtendedContext builds the basis Q*R, appending NTT-friendly
// auxiliary primes until R exceeds N*Q. The widened product then
// dominates any negacyclic convolution of two centered operands, so
// the tensor result is recovered exactly.
func (r *RnsTool) newExtendedContext() (*PolyContext, error) {

	n := r.ctxQ.N()
	moduli := r.ctxQ.Moduli()
	needed := new(big.Int).Mul(r.ctxQ.BigQ(), big.NewInt(int64(n)))

	count := r.ctxQ.ModuliCount() + 1
	for {
		candidates, err := GenerateNTTPrimes(auxPrimeBits, 2*n, count+len(moduli)+1)
		if err != nil {
			return nil, err
		}
		aux := make([]uint64, 0, count)
		bigR := big.NewInt(1)
		for _, p := range candidates {
			if p == r.t.Q || utils.IsInSliceUint64(p, moduli) {
				continue
			}
			aux = append(aux, p)
			bigR.Mul(bigR, new(big.Int).SetUint64(p))
			if len(aux) == count {
				break
			}
		}
		if len(aux) == count && bigR.Cmp(needed) > 0 {
			return NewPolyContext(n, append(moduli, aux...), nil)
		}
		count++
	}
}

// crtConstants returns, per modulus m_i of the basis, the CRT lifting
// constant (M/m_i) * ((M/m_i)^-1 mod m_i).
func crtConstants(ctx *PolyContext) []*big.Int {
	cs := make([]*big.Int, ctx.ModuliCount())
	bigM := ctx.BigQ()
	for i, s := range ctx.subRings {
		mi := new(big.Int).SetUint64(s.Q)
		mHat := new(big.Int).Quo(bigM, mi)
		inv := new(big.Int).ModInverse(mHat, mi)
		cs[i] = mHat.Mul(mHat, inv)
	}
	return cs
}

// ContextQ returns the ciphertext basis of this level.
func (r *RnsTool) ContextQ() *PolyContext { return r.ctxQ }

// ContextT returns the plaintext basis.
func (r *RnsTool) ContextT() *PolyContext { return r.ctxT }

// ContextQR returns the extended multiplication basis.
func (r *RnsTool) ContextQR() *PolyContext { return r.ctxQR }

// BigDelta returns floor(Q/t). The caller must not mutate the
// returned value.
func (r *RnsTool) BigDelta() *big.Int { return r.bigDelta }

// DeltaModQ returns floor(Q/t) reduced per ciphertext modulus, in
// Shoup form. The caller must not mutate the returned slice.
func (r *RnsTool) DeltaModQ() []MulConstant { return r.deltaModQ }

// centerLift reconstructs the coefficients of p over the basis with
// the given CRT constants, centered into (-M/2, M/2].
func centerLift(p *Poly, crt []*big.Int, bigM, halfM *big.Int) []*big.Int {
	n := p.Degree()
	out := make([]*big.Int, n)
	tmp := new(big.Int)
	for j := 0; j < n; j++ {
		acc := new(big.Int)
		for i := range crt {
			tmp.SetUint64(p.Coeffs.At(i, j))
			tmp.Mul(tmp, crt[i])
			acc.Add(acc, tmp)
		}
		acc.Mod(acc, bigM)
		if acc.Cmp(halfM) > 0 {
			acc.Sub(acc, bigM)
		}
		out[j] = acc
	}
	return out
}

// CenterLiftQ returns the centered integer coefficients of p, which
// must be in Coeff format over the ciphertext basis.
func (r *RnsTool) CenterLiftQ(p *Poly) ([]*big.Int, error) {
	if p.Format() != Coeff {
		return nil, fmt.Errorf("%w: center lift requires Coeff", ErrWrongFormat)
	}
	if !p.Context().Equal(r.ctxQ) {
		return nil, fmt.Errorf("ring: polynomial basis does not match the tool's ciphertext basis")
	}
	return centerLift(p, r.crtQ, r.ctxQ.BigQ(), r.halfQ), nil
}

// ScaleAndRoundToT maps a Coeff-format polynomial over Q to
// round(t*x/Q) mod t over the plaintext basis. This is the decryption
// scaling, so neither path branches on the coefficients: with a single
// ciphertext modulus the division runs on 128-bit words with a CTGe
// rounding decision; with more the sum t*x/Q decomposes over the CRT
// residues into per-limb integer parts accumulated mod t and per-limb
// fractions accumulated in 256-bit fixed point.
func (r *RnsTool) ScaleAndRoundToT(p *Poly) (*Poly, error) {

	if p.Format() != Coeff {
		return nil, fmt.Errorf("%w: scaling to t requires Coeff", ErrWrongFormat)
	}
	if !p.Context().Equal(r.ctxQ) {
		return nil, fmt.Errorf("ring: polynomial basis does not match the tool's ciphertext basis")
	}

	out := NewPoly(r.ctxT, Coeff)
	row := out.Coeffs.Row(0)

	if r.ctxQ.ModuliCount() == 1 {
		q := r.qDiv.Q
		in := p.Coeffs.Row(0)
		for j, x := range in {
			num := wideint.Mul64(r.t.Q, x)
			quo := r.qDiv.DivideFloor(num)
			rem := num.Sub(quo.Mul64Lo(q)).Lo
			row[j] = r.t.ReduceUint64(quo.Lo + CTGe(rem, r.tThreshold))
		}
		return out, nil
	}

	// x mod Q = sum_i x_i*c_i - v*Q for some integer v, and v*t vanishes
	// mod t, so round(t*x/Q) = sum_i x_i*omega_i + round(sum_i
	// x_i*theta_i) mod t with omega_i + theta_i = t*c_i/Q. The fraction
	// sum is rounded by a half-ulp add and a shift. The truncation of
	// each theta_i to 128 bits keeps the accumulated error below 2^-61,
	// far inside the rounding margin of any decryptable input.
	half := wideint.Uint256{Lo: wideint.NewUint128(1<<63, 0)}
	for j := 0; j < p.Degree(); j++ {
		var whole uint64
		var frac wideint.Uint256
		for i := range r.tTheta {
			x := p.Coeffs.At(i, j)
			whole = r.t.Add(whole, r.t.MulConst(x, r.tOmega[i]))
			frac = frac.Add(r.tTheta[i].MulFull(wideint.From64(x)))
		}
		rounded := frac.Add(half).Rsh(128).Lo
		row[j] = r.t.Add(whole, r.t.ReduceUint128(rounded))
	}
	return out, nil
}

// DivideAndRoundByLastModulus maps a Coeff-format polynomial over Q to
// round(x/q_last) over the basis with the last modulus removed, using
// the exact RNS identity round(x/q) = (x + q/2 - [x + q/2]_q)/q.
func (r *RnsTool) DivideAndRoundByLastModulus(p *Poly) (*Poly, error) {

	next := r.ctxQ.Next()
	if next == nil {
		return nil, fmt.Errorf("ring: no smaller basis to switch down to")
	}
	if p.Format() != Coeff {
		return nil, fmt.Errorf("%w: modulus removal requires Coeff", ErrWrongFormat)
	}
	if !p.Context().Equal(r.ctxQ) {
		return nil, fmt.Errorf("ring: polynomial basis does not match the tool's ciphertext basis")
	}

	out := NewPoly(next, Coeff)
	l := r.ctxQ.ModuliCount() - 1
	qL := r.ctxQ.subRings[l]

	for j := 0; j < p.Degree(); j++ {
		b := qL.ReduceUint64(p.Coeffs.At(l, j) + r.halfQL)
		for i := 0; i < l; i++ {
			s := r.ctxQ.subRings[i]
			v := p.Coeffs.At(i, j) + r.halfQLModQi[i] + s.Q - s.ReduceUint64(b)
			out.Coeffs.Set(i, j, s.MulConst(s.ReduceUint64(v), r.qLInvModQi[i]))
		}
	}
	return out, nil
}

// ExtendBasisCenter lifts a Coeff-format polynomial over Q to the
// extended basis Q*R, preserving the centered value. Both operands of
// a multiplication pass through here before the tensor product.
func (r *RnsTool) ExtendBasisCenter(p *Poly) (*Poly, error) {

	if p.Format() != Coeff {
		return nil, fmt.Errorf("%w: basis extension requires Coeff", ErrWrongFormat)
	}
	if !p.Context().Equal(r.ctxQ) {
		return nil, fmt.Errorf("ring: polynomial basis does not match the tool's ciphertext basis")
	}

	vals := centerLift(p, r.crtQ, r.ctxQ.BigQ(), r.halfQ)
	out := NewPoly(r.ctxQR, Coeff)
	tmp := new(big.Int)
	bigQi := new(big.Int)
	for i, s := range r.ctxQR.subRings {
		bigQi.SetUint64(s.Q)
		row := out.Coeffs.Row(i)
		for j, v := range vals {
			row[j] = tmp.Mod(v, bigQi).Uint64()
		}
	}
	return out, nil
}

// ScaleAndRoundQRToQ maps a Coeff-format tensor result over Q*R to
// round(t*x/Q) over Q, completing the multiplication rescale.
func (r *RnsTool) ScaleAndRoundQRToQ(p *Poly) (*Poly, error) {

	if p.Format() != Coeff {
		return nil, fmt.Errorf("%w: rescaling requires Coeff", ErrWrongFormat)
	}
	if !p.Context().Equal(r.ctxQR) {
		return nil, fmt.Errorf("ring: polynomial basis does not match the tool's extended basis")
	}

	vals := centerLift(p, r.crtQR, r.ctxQR.BigQ(), r.halfQR)

	bigQ := r.ctxQ.BigQ()
	bigT := new(big.Int).SetUint64(r.t.Q)
	twoQ := new(big.Int).Lsh(bigQ, 1)

	// round(t*x/Q) = floor((2*t*x + Q)/(2*Q)), valid for centered x.
	for _, v := range vals {
		v.Mul(v, bigT)
		v.Lsh(v, 1)
		v.Add(v, bigQ)
		v.Div(v, twoQ)
	}

	out := NewPoly(r.ctxQ, Coeff)
	tmp := new(big.Int)
	bigQi := new(big.Int)
	for i, s := range r.ctxQ.subRings {
		bigQi.SetUint64(s.Q)
		row := out.Coeffs.Row(i)
		for j, v := range vals {
			row[j] = tmp.Mod(v, bigQi).Uint64()
		}
	}
	return out, nil
}
