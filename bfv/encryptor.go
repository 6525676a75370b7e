package bfv

import (
	"fmt"
	"math/big"

	"github.com/ALTree/bigfloat"

	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/rlwe"
	"github.com/hegolib/hego/utils/sampling"
)

// Encryptor produces fresh secret-key RLWE encryptions at the top
// ciphertext level. The uniform polynomial of every ciphertext is
// expanded from a recorded 32-byte seed, so serialization can send the
// seed instead of the polynomial.
type Encryptor struct {
	ctx      *rlwe.Context
	gaussian *ring.GaussianSampler
}

// NewEncryptor creates an Encryptor drawing error polynomials from a
// freshly seeded system PRNG.
func NewEncryptor(ctx *rlwe.Context) (*Encryptor, error) {
	prng, _, err := sampling.NewRandomPRNG()
	if err != nil {
		return nil, err
	}
	errDist := ctx.Parameters().ErrorStdDev()
	return &Encryptor{
		ctx:      ctx,
		gaussian: ring.NewGaussianSampler(prng, ctx.CiphertextContext(), errDist.StdDev(), errDist.Bound()),
	}, nil
}

// Encrypt encrypts a Coeff-format plaintext under sk as (b, a) with
// b = -(a*s + e) + floor(Q/t)*m, both polynomials in Coeff format over
// the top ciphertext level.
func (e *Encryptor) Encrypt(pt *rlwe.Plaintext, sk *rlwe.SecretKey) (*rlwe.Ciphertext, error) {

	if pt.Value.Format() != ring.Coeff || !pt.Value.Context().Equal(e.ctx.PlaintextContext()) {
		return nil, fmt.Errorf("bfv: encryption requires a Coeff plaintext over the plaintext ring")
	}
	if !sk.Value.Context().Equal(e.ctx.SecretKeyContext()) {
		return nil, fmt.Errorf("%w: secret key over a different basis", rlwe.ErrContextMismatch)
	}

	ctCtx := e.ctx.CiphertextContext()

	seed, err := sampling.NewSeed()
	if err != nil {
		return nil, err
	}
	prng, err := sampling.NewKeyedPRNG(seed)
	if err != nil {
		return nil, err
	}
	a := ring.NewPoly(ctCtx, ring.Coeff)
	ring.NewUniformSampler(prng, ctCtx).Read(a)

	errPoly := ring.NewPoly(ctCtx, ring.Coeff)
	e.gaussian.Read(errPoly)

	// a*s through the NTT; the secret key rows restrict limb-wise.
	sCt := sk.Value.Prefix(ctCtx)
	as := a.CopyNew()
	if err := as.NTT(); err != nil {
		return nil, err
	}
	ctCtx.MulCoeffs(as, sCt, as)
	if err := as.INTT(); err != nil {
		return nil, err
	}
	sCt.Zeroize()

	b := ring.NewPoly(ctCtx, ring.Coeff)
	ctCtx.Add(as, errPoly, b)
	ctCtx.Neg(b, b)
	errPoly.Zeroize()

	tool, err := e.ctx.RnsTool(ctCtx.ModuliCount())
	if err != nil {
		return nil, err
	}
	delta := tool.DeltaModQ()
	m := pt.Value.Coeffs.Row(0)
	for i := 0; i < ctCtx.ModuliCount(); i++ {
		s := ctCtx.SubRingAt(i)
		row := b.Coeffs.Row(i)
		for k := range row {
			row[k] = s.Add(row[k], s.MulConst(m[k], delta[i]))
		}
	}

	ct := rlwe.NewCiphertextFromPolys(e.ctx, []*ring.Poly{b, a}, 1)
	ct.Seed = &seed
	return ct, nil
}

// Decryptor recovers plaintexts and estimates noise budgets.
type Decryptor struct {
	ctx *rlwe.Context
}

// NewDecryptor creates a Decryptor over ctx.
func NewDecryptor(ctx *rlwe.Context) *Decryptor {
	return &Decryptor{ctx: ctx}
}

// keyPowerSum evaluates c0 + c1*s + c2*s^2 + ... in Coeff format over
// the ciphertext's basis.
func (d *Decryptor) keyPowerSum(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (*ring.Poly, error) {

	polyCtx := ct.PolyContext()
	for _, p := range ct.Value {
		if p.Format() != ring.Coeff {
			return nil, fmt.Errorf("%w: decryption requires Coeff", ring.ErrWrongFormat)
		}
	}

	sPrefix := sk.Value.Prefix(polyCtx)
	defer sPrefix.Zeroize()

	// Horner evaluation in the NTT domain.
	acc := ct.Value[len(ct.Value)-1].CopyNew()
	if err := acc.NTT(); err != nil {
		return nil, err
	}
	for i := len(ct.Value) - 2; i >= 0; i-- {
		polyCtx.MulCoeffs(acc, sPrefix, acc)
		ci := ct.Value[i].CopyNew()
		if err := ci.NTT(); err != nil {
			return nil, err
		}
		polyCtx.Add(acc, ci, acc)
	}
	if err := acc.INTT(); err != nil {
		return nil, err
	}
	return acc, nil
}

// Decrypt recovers the plaintext of ct under sk, dividing out the
// correction factor. Precondition: the noise budget is at least
// MinNoiseBudget; below it the result is silently wrong.
func (d *Decryptor) Decrypt(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (*rlwe.Plaintext, error) {

	if !ct.Context().Equal(d.ctx) {
		return nil, rlwe.ErrContextMismatch
	}
	if !sk.Value.Context().Equal(d.ctx.SecretKeyContext()) {
		return nil, fmt.Errorf("%w: secret key over a different basis", rlwe.ErrContextMismatch)
	}

	acc, err := d.keyPowerSum(ct, sk)
	if err != nil {
		return nil, err
	}

	tool, err := d.ctx.RnsTool(ct.ModuliCount())
	if err != nil {
		return nil, err
	}
	ptPoly, err := tool.ScaleAndRoundToT(acc)
	if err != nil {
		return nil, err
	}

	if ct.CorrectionFactor != 1 {
		ptCtx := d.ctx.PlaintextContext()
		inv, err := ptCtx.SubRingAt(0).Inverse(ct.CorrectionFactor)
		if err != nil {
			return nil, err
		}
		ptCtx.MulScalar(ptPoly, inv, ptPoly)
	}

	return rlwe.NewPlaintextFromPoly(d.ctx, ptPoly), nil
}

// NoiseBudget estimates the remaining correctness margin of ct in
// bits, as log2(Q / (2*|t*x mod Q|_inf)) with x the decryption power
// sum. Diagnostic only: the computation handles the secret key with no
// timing protection.
func (d *Decryptor) NoiseBudget(ct *rlwe.Ciphertext, sk *rlwe.SecretKey) (float64, error) {

	if !ct.Context().Equal(d.ctx) {
		return 0, rlwe.ErrContextMismatch
	}

	acc, err := d.keyPowerSum(ct, sk)
	if err != nil {
		return 0, err
	}

	tool, err := d.ctx.RnsTool(ct.ModuliCount())
	if err != nil {
		return 0, err
	}
	lift, err := tool.CenterLiftQ(acc)
	if err != nil {
		return 0, err
	}

	bigQ := ct.PolyContext().BigQ()
	halfQ := new(big.Int).Rsh(bigQ, 1)
	bigT := new(big.Int).SetUint64(d.ctx.Parameters().PlaintextModulus())

	maxAbs := new(big.Int)
	w := new(big.Int)
	for _, x := range lift {
		w.Mul(x, bigT)
		w.Mod(w, bigQ)
		if w.Cmp(halfQ) > 0 {
			w.Sub(bigQ, w)
		}
		if w.Cmp(maxAbs) > 0 {
			maxAbs.Set(w)
		}
	}

	logQ := log2Big(bigQ)
	if maxAbs.Sign() == 0 {
		return logQ, nil
	}
	return logQ - 1 - log2Big(maxAbs), nil
}

// log2Big returns log2(x) for a positive x.
func log2Big(x *big.Int) float64 {
	f := new(big.Float).SetPrec(256).SetInt(x)
	l := bigfloat.Log(f)
	l.Quo(l, bigfloat.Log(big.NewFloat(2)))
	v, _ := l.Float64()
	return v
}
