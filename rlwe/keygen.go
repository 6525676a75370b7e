package rlwe

import (
	"fmt"

	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/utils/sampling"
)

// KeyGenerator produces secret keys and the evaluation key material
// derived from them.
type KeyGenerator struct {
	ctx *Context

	uniform  *ring.UniformSampler
	ternary  *ring.TernarySampler
	gaussian *ring.GaussianSampler
}

// NewKeyGenerator creates a KeyGenerator drawing from a freshly seeded
// system PRNG.
func NewKeyGenerator(ctx *Context) (*KeyGenerator, error) {
	prng, _, err := sampling.NewRandomPRNG()
	if err != nil {
		return nil, err
	}
	return NewKeyGeneratorFromPRNG(ctx, prng), nil
}

// NewKeyGeneratorFromPRNG creates a KeyGenerator drawing all
// randomness from prng. Key material is then a deterministic function
// of the PRNG stream.
func NewKeyGeneratorFromPRNG(ctx *Context, prng sampling.PRNG) *KeyGenerator {
	skCtx := ctx.skCtx
	errDist := ctx.params.ErrorStdDev()
	return &KeyGenerator{
		ctx:      ctx,
		uniform:  ring.NewUniformSampler(prng, skCtx),
		ternary:  ring.NewTernarySampler(prng, skCtx),
		gaussian: ring.NewGaussianSampler(prng, skCtx, errDist.StdDev(), errDist.Bound()),
	}
}

// GenSecretKey samples a fresh ternary secret key in Eval format over
// the full modulus chain.
func (kg *KeyGenerator) GenSecretKey() (*SecretKey, error) {
	s := ring.NewPoly(kg.ctx.skCtx, ring.Coeff)
	kg.ternary.Read(s)
	if err := s.NTT(); err != nil {
		return nil, err
	}
	return &SecretKey{Value: s}, nil
}

// GenEvaluationKey generates the key material declared by cfg under
// sk: a relinearization key if requested and one key-switching key per
// Galois element.
func (kg *KeyGenerator) GenEvaluationKey(cfg EvaluationKeyConfig, sk *SecretKey) (*EvaluationKey, error) {

	if !kg.ctx.params.SupportsEvaluationKey() {
		return nil, fmt.Errorf("rlwe: parameters reserve no key-switching modulus")
	}
	if !sk.Value.Context().Equal(kg.ctx.skCtx) {
		return nil, fmt.Errorf("%w: secret key over a different basis", ErrContextMismatch)
	}

	ek := &EvaluationKey{Galois: GaloisKey{Keys: make(map[uint64]*KeySwitchKey, len(cfg.GaloisElements))}}

	if cfg.HasRelinearizationKey {
		s2 := ring.NewPoly(kg.ctx.skCtx, ring.Eval)
		kg.ctx.skCtx.MulCoeffs(sk.Value, sk.Value, s2)
		ksk, err := kg.genKeySwitchKey(s2, sk)
		s2.Zeroize()
		if err != nil {
			return nil, err
		}
		ek.Relin = &RelinearizationKey{Value: ksk}
	}

	for _, galEl := range cfg.GaloisElements {
		sTau, err := kg.ctx.skCtx.Automorphism(sk.Value, galEl)
		if err != nil {
			return nil, err
		}
		ksk, err := kg.genKeySwitchKey(sTau, sk)
		sTau.Zeroize()
		if err != nil {
			return nil, err
		}
		ek.Galois.Keys[galEl] = ksk
	}

	return ek, nil
}

// genKeySwitchKey encrypts target under sk as a gadget of fresh RLWE
// samples: digit j carries P*target on the j-th modulus row only, so
// multiplying digit j by a residue decomposed mod q_j and summing
// reassembles P*a*target plus small noise.
func (kg *KeyGenerator) genKeySwitchKey(target *ring.Poly, sk *SecretKey) (*KeySwitchKey, error) {

	skCtx := kg.ctx.skCtx
	l := skCtx.ModuliCount()
	p := skCtx.SubRingAt(l - 1).Q

	ksk := &KeySwitchKey{Value: make([][2]*ring.Poly, l-1)}
	for j := 0; j < l-1; j++ {

		a := ring.NewPoly(skCtx, ring.Eval)
		kg.uniform.Read(a)

		e := ring.NewPoly(skCtx, ring.Coeff)
		kg.gaussian.Read(e)
		if err := e.NTT(); err != nil {
			return nil, err
		}

		b := ring.NewPoly(skCtx, ring.Eval)
		skCtx.MulCoeffs(a, sk.Value, b)
		skCtx.Add(b, e, b)
		skCtx.Neg(b, b)
		e.Zeroize()

		// b += P*target on row j. The scalar multiple commutes with
		// the NTT, so the row stays valid Eval data.
		sj := skCtx.SubRingAt(j)
		pm := sj.NewMulConstant(sj.ReduceUint64(p))
		rowB, rowT := b.Coeffs.Row(j), target.Coeffs.Row(j)
		for k := range rowB {
			rowB[k] = sj.Add(rowB[k], sj.MulConst(rowT[k], pm))
		}

		ksk.Value[j] = [2]*ring.Poly{b, a}
	}
	return ksk, nil
}
