package bfv

import (
	"errors"
	"fmt"

	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/rlwe"
)

// ErrUnsupportedOperation is returned when operand shapes or formats
// rule an operation out, such as mismatched plaintext formats or
// correction factors.
var ErrUnsupportedOperation = errors.New("bfv: unsupported operation")

// Evaluator implements the homomorphic ciphertext algebra. It holds no
// mutable state beyond the shared context and is safe for concurrent
// use on distinct ciphertexts.
type Evaluator struct {
	ctx *rlwe.Context
}

// NewEvaluator creates an Evaluator over ctx.
func NewEvaluator(ctx *rlwe.Context) *Evaluator {
	return &Evaluator{ctx: ctx}
}

func (e *Evaluator) checkCipher(ct *rlwe.Ciphertext) error {
	if !ct.Context().Equal(e.ctx) {
		return rlwe.ErrContextMismatch
	}
	return nil
}

func (e *Evaluator) checkPair(ct1, ct2 *rlwe.Ciphertext) error {
	if err := e.checkCipher(ct1); err != nil {
		return err
	}
	if err := e.checkCipher(ct2); err != nil {
		return err
	}
	if !ct1.PolyContext().Equal(ct2.PolyContext()) {
		return fmt.Errorf("%w: operands at different levels", rlwe.ErrContextMismatch)
	}
	return nil
}

// Add returns ct1 + ct2. Operands must carry equal correction
// factors; the result would otherwise decrypt to a mix of two
// differently scaled plaintexts.
func (e *Evaluator) Add(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return e.addSub(ct1, ct2, false)
}

// Sub returns ct1 - ct2 under the same correction-factor rule as Add.
func (e *Evaluator) Sub(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return e.addSub(ct1, ct2, true)
}

func (e *Evaluator) addSub(ct1, ct2 *rlwe.Ciphertext, sub bool) (*rlwe.Ciphertext, error) {

	if err := e.checkPair(ct1, ct2); err != nil {
		return nil, err
	}
	if ct1.CorrectionFactor != ct2.CorrectionFactor {
		return nil, fmt.Errorf("%w: correction factors %d and %d differ", ErrUnsupportedOperation, ct1.CorrectionFactor, ct2.CorrectionFactor)
	}

	polyCtx := ct1.PolyContext()
	long, short := ct1, ct2
	if len(ct2.Value) > len(ct1.Value) {
		long, short = ct2, ct1
	}

	polys := make([]*ring.Poly, len(long.Value))
	for i := range polys {
		p := long.Value[i].CopyNew()
		if sub && long == ct2 {
			polyCtx.Neg(p, p)
		}
		polys[i] = p
	}
	for i := range short.Value {
		if sub && short == ct2 {
			polyCtx.Sub(polys[i], short.Value[i], polys[i])
		} else {
			polyCtx.Add(polys[i], short.Value[i], polys[i])
		}
	}

	return rlwe.NewCiphertextFromPolys(e.ctx, polys, ct1.CorrectionFactor), nil
}

// Neg returns -ct.
func (e *Evaluator) Neg(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := e.checkCipher(ct); err != nil {
		return nil, err
	}
	out := ct.CopyNew()
	out.Seed = nil
	polyCtx := ct.PolyContext()
	for _, p := range out.Value {
		polyCtx.Neg(p, p)
	}
	return out, nil
}

// AddPlain returns ct + pt for a Coeff-format plaintext over the
// plaintext ring, scaled by floor(Q/t) onto the first polynomial. An
// Eval-format plaintext is a format mismatch.
func (e *Evaluator) AddPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	return e.addSubPlain(ct, pt, false)
}

// SubPlain returns ct - pt under the same rules as AddPlain.
func (e *Evaluator) SubPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	return e.addSubPlain(ct, pt, true)
}

func (e *Evaluator) addSubPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext, sub bool) (*rlwe.Ciphertext, error) {

	if err := e.checkCipher(ct); err != nil {
		return nil, err
	}
	if !pt.Context().Equal(e.ctx) {
		return nil, rlwe.ErrContextMismatch
	}
	if ct.Value[0].Format() != ring.Coeff || pt.Value.Format() != ring.Coeff || !pt.Value.Context().Equal(e.ctx.PlaintextContext()) {
		return nil, fmt.Errorf("%w: plaintext addition requires matching Coeff formats", ErrUnsupportedOperation)
	}

	polyCtx := ct.PolyContext()
	tool, err := e.ctx.RnsTool(ct.ModuliCount())
	if err != nil {
		return nil, err
	}

	out := ct.CopyNew()
	out.Seed = nil
	delta := tool.DeltaModQ()
	m := pt.Value.Coeffs.Row(0)
	for i := 0; i < polyCtx.ModuliCount(); i++ {
		s := polyCtx.SubRingAt(i)
		row := out.Value[0].Coeffs.Row(i)
		for k := range row {
			scaled := s.MulConst(m[k], delta[i])
			if sub {
				row[k] = s.Sub(row[k], scaled)
			} else {
				row[k] = s.Add(row[k], scaled)
			}
		}
	}
	return out, nil
}

// MulPlain multiplies ct by an Eval-format plaintext over ct's basis,
// as produced by Encoder.EncodeForMultiplication. A Coeff-format
// plaintext is a format mismatch.
func (e *Evaluator) MulPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {

	if err := e.checkCipher(ct); err != nil {
		return nil, err
	}
	if !pt.Context().Equal(e.ctx) {
		return nil, rlwe.ErrContextMismatch
	}
	if pt.Value.Format() != ring.Eval || !pt.Value.Context().Equal(ct.PolyContext()) {
		return nil, fmt.Errorf("%w: plaintext multiplication requires an Eval plaintext over the ciphertext basis", ErrUnsupportedOperation)
	}

	polyCtx := ct.PolyContext()
	polys := make([]*ring.Poly, len(ct.Value))
	for i, p := range ct.Value {
		q := p.CopyNew()
		if err := q.NTT(); err != nil {
			return nil, err
		}
		polyCtx.MulCoeffs(q, pt.Value, q)
		if err := q.INTT(); err != nil {
			return nil, err
		}
		polys[i] = q
	}
	return rlwe.NewCiphertextFromPolys(e.ctx, polys, ct.CorrectionFactor), nil
}

// Mul computes the degree-2 tensor product of two degree-1
// ciphertexts: both are lifted centered into the extended basis, the
// tensor is evaluated there and rescaled by t/Q back onto the
// ciphertext basis. Relinearize reduces the result back to degree 1.
func (e *Evaluator) Mul(ct1, ct2 *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {

	if err := e.checkPair(ct1, ct2); err != nil {
		return nil, err
	}
	if ct1.Degree() != 1 || ct2.Degree() != 1 {
		return nil, fmt.Errorf("%w: multiplication takes degree-1 operands, got %d and %d", ErrUnsupportedOperation, ct1.Degree(), ct2.Degree())
	}

	tool, err := e.ctx.RnsTool(ct1.ModuliCount())
	if err != nil {
		return nil, err
	}

	lift := func(ct *rlwe.Ciphertext) ([2]*ring.Poly, error) {
		var out [2]*ring.Poly
		for i, p := range ct.Value {
			ext, err := tool.ExtendBasisCenter(p)
			if err != nil {
				return out, err
			}
			if err := ext.NTT(); err != nil {
				return out, err
			}
			out[i] = ext
		}
		return out, nil
	}

	x, err := lift(ct1)
	if err != nil {
		return nil, err
	}
	y, err := lift(ct2)
	if err != nil {
		return nil, err
	}

	qr := tool.ContextQR()
	d0 := ring.NewPoly(qr, ring.Eval)
	d1 := ring.NewPoly(qr, ring.Eval)
	d2 := ring.NewPoly(qr, ring.Eval)
	qr.MulCoeffs(x[0], y[0], d0)
	qr.MulCoeffs(x[0], y[1], d1)
	qr.MulCoeffsThenAdd(x[1], y[0], d1)
	qr.MulCoeffs(x[1], y[1], d2)

	polys := make([]*ring.Poly, 3)
	for i, d := range []*ring.Poly{d0, d1, d2} {
		if err := d.INTT(); err != nil {
			return nil, err
		}
		if polys[i], err = tool.ScaleAndRoundQRToQ(d); err != nil {
			return nil, err
		}
	}

	t := e.ctx.PlaintextContext().SubRingAt(0)
	cf := t.MulMod(t.ReduceUint64(ct1.CorrectionFactor), t.ReduceUint64(ct2.CorrectionFactor))
	return rlwe.NewCiphertextFromPolys(e.ctx, polys, cf), nil
}

// Relinearize reduces a degree-2 ciphertext back to degree 1 by
// key-switching the secret-key-squared term.
func (e *Evaluator) Relinearize(ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {

	if err := e.checkCipher(ct); err != nil {
		return nil, err
	}
	if ct.Degree() != 2 {
		return nil, fmt.Errorf("%w: relinearization takes a degree-2 ciphertext, got degree %d", ErrUnsupportedOperation, ct.Degree())
	}

	ksk, err := ek.KeySwitchKeyForRelinearization()
	if err != nil {
		return nil, err
	}

	d0, d1, err := e.ctx.KeySwitch(ct.Value[2], ksk)
	if err != nil {
		return nil, err
	}

	polyCtx := ct.PolyContext()
	c0 := ct.Value[0].CopyNew()
	c1 := ct.Value[1].CopyNew()
	polyCtx.Add(c0, d0, c0)
	polyCtx.Add(c1, d1, c1)
	return rlwe.NewCiphertextFromPolys(e.ctx, []*ring.Poly{c0, c1}, ct.CorrectionFactor), nil
}

// ApplyGalois applies the automorphism x -> x^galEl to a degree-1
// ciphertext, then key-switches the result back under the original
// secret key. The automorphism alone re-encrypts under the permuted
// key, so the key switch is mandatory for correctness.
func (e *Evaluator) ApplyGalois(ct *rlwe.Ciphertext, galEl uint64, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {

	if err := e.checkCipher(ct); err != nil {
		return nil, err
	}
	if ct.Degree() != 1 {
		return nil, fmt.Errorf("%w: automorphism takes a degree-1 ciphertext, got degree %d", ErrUnsupportedOperation, ct.Degree())
	}
	if galEl == 1 {
		out := ct.CopyNew()
		out.Seed = nil
		return out, nil
	}

	ksk, err := ek.KeySwitchKeyForGalois(galEl)
	if err != nil {
		return nil, err
	}

	polyCtx := ct.PolyContext()
	tc0, err := polyCtx.Automorphism(ct.Value[0], galEl)
	if err != nil {
		return nil, err
	}
	tc1, err := polyCtx.Automorphism(ct.Value[1], galEl)
	if err != nil {
		return nil, err
	}

	d0, d1, err := e.ctx.KeySwitch(tc1, ksk)
	if err != nil {
		return nil, err
	}
	polyCtx.Add(tc0, d0, tc0)
	return rlwe.NewCiphertextFromPolys(e.ctx, []*ring.Poly{tc0, d1}, ct.CorrectionFactor), nil
}

// RotateColumns rotates both SIMD rows by step: positive steps rotate
// right, negative left.
func (e *Evaluator) RotateColumns(ct *rlwe.Ciphertext, step int, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	return e.ApplyGalois(ct, e.ctx.Parameters().GaloisElementForColumnRotation(step), ek)
}

// RotateColumnsMultiStep rotates by step using only the rotation keys
// generated for availableSteps, planning the decomposition first.
func (e *Evaluator) RotateColumnsMultiStep(ct *rlwe.Ciphertext, step int, availableSteps []int, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {

	plan, err := rlwe.PlanMultiStep(step, e.ctx.Parameters().N()>>1, availableSteps)
	if err != nil {
		return nil, err
	}
	out := ct
	for _, s := range plan {
		if out, err = e.RotateColumns(out, s, ek); err != nil {
			return nil, err
		}
	}
	if out == ct {
		out = ct.CopyNew()
		out.Seed = nil
	}
	return out, nil
}

// SwapRows exchanges the two SIMD rows.
func (e *Evaluator) SwapRows(ct *rlwe.Ciphertext, ek *rlwe.EvaluationKey) (*rlwe.Ciphertext, error) {
	return e.ApplyGalois(ct, e.ctx.Parameters().GaloisElementForRowSwap(), ek)
}

// ModSwitchDown drops the last modulus of the ciphertext basis,
// dividing every polynomial by it with rounding. The decrypted value
// is preserved while the ciphertext shrinks.
func (e *Evaluator) ModSwitchDown(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {

	if err := e.checkCipher(ct); err != nil {
		return nil, err
	}
	if ct.ModuliCount() == 1 {
		return nil, fmt.Errorf("%w: a single modulus remains", ErrUnsupportedOperation)
	}

	tool, err := e.ctx.RnsTool(ct.ModuliCount())
	if err != nil {
		return nil, err
	}

	polys := make([]*ring.Poly, len(ct.Value))
	for i, p := range ct.Value {
		if polys[i], err = tool.DivideAndRoundByLastModulus(p); err != nil {
			return nil, err
		}
	}
	return rlwe.NewCiphertextFromPolys(e.ctx, polys, ct.CorrectionFactor), nil
}

// ModSwitchDownToSingle repeats ModSwitchDown until one modulus
// remains.
func (e *Evaluator) ModSwitchDownToSingle(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {

	if err := e.checkCipher(ct); err != nil {
		return nil, err
	}
	out := ct
	for out.ModuliCount() > 1 {
		var err error
		if out, err = e.ModSwitchDown(out); err != nil {
			return nil, err
		}
	}
	if out == ct {
		out = ct.CopyNew()
		out.Seed = nil
	}
	return out, nil
}
