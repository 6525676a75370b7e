package rlwe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hegolib/hego/ring"
)

func TestGenSecretKey(t *testing.T) {

	ctx := newTestContext(t, 16, 97, 3)
	kg, err := NewKeyGenerator(ctx)
	require.NoError(t, err)

	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	require.True(t, sk.Value.Context().Equal(ctx.SecretKeyContext()))
	require.Equal(t, ring.Eval, sk.Value.Format())

	// The underlying secret is ternary and consistent across limbs.
	coeffs := sk.Value.CopyNew()
	require.NoError(t, coeffs.INTT())
	q0 := ctx.SecretKeyContext().SubRingAt(0).Q
	for j := 0; j < 16; j++ {
		v := coeffs.Coeffs.At(0, j)
		require.True(t, v == 0 || v == 1 || v == q0-1, "coefficient %d", v)
	}

	// Two generators draw distinct keys.
	kg2, err := NewKeyGenerator(ctx)
	require.NoError(t, err)
	sk2, err := kg2.GenSecretKey()
	require.NoError(t, err)
	require.False(t, sk.Value.Equal(sk2.Value))

	sk.Zeroize()
	require.True(t, sk.Value.IsZero())
}

func TestGenEvaluationKey(t *testing.T) {

	ctx := newTestContext(t, 16, 97, 3)
	kg, err := NewKeyGenerator(ctx)
	require.NoError(t, err)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)

	cfg := EvaluationKeyConfig{GaloisElements: []uint64{5, 13}, HasRelinearizationKey: true}
	ek, err := kg.GenEvaluationKey(cfg, sk)
	require.NoError(t, err)
	require.True(t, ek.Config().Contains(cfg))

	ksk, err := ek.KeySwitchKeyForRelinearization()
	require.NoError(t, err)
	// One gadget digit per ciphertext modulus at the top level.
	require.Equal(t, 2, ksk.Digits())
	for _, pair := range ksk.Value {
		require.True(t, pair[0].Context().Equal(ctx.SecretKeyContext()))
		require.Equal(t, ring.Eval, pair[0].Format())
	}

	_, err = ek.KeySwitchKeyForGalois(5)
	require.NoError(t, err)
	_, err = ek.KeySwitchKeyForGalois(3)
	require.ErrorIs(t, err, ErrMissingGaloisElement)

	// Single-modulus parameters cannot carry evaluation keys.
	single := newTestContext(t, 16, 97, 1)
	kgs, err := NewKeyGenerator(single)
	require.NoError(t, err)
	sks, err := kgs.GenSecretKey()
	require.NoError(t, err)
	_, err = kgs.GenEvaluationKey(cfg, sks)
	require.Error(t, err)
}

func TestKeySwitch(t *testing.T) {

	ctx := newTestContext(t, 16, 97, 3)
	kg, err := NewKeyGenerator(ctx)
	require.NoError(t, err)
	sk, err := kg.GenSecretKey()
	require.NoError(t, err)
	skOther, err := kg.GenSecretKey()
	require.NoError(t, err)

	ksk, err := kg.genKeySwitchKey(skOther.Value, sk)
	require.NoError(t, err)

	ctCtx := ctx.CiphertextContext()
	a := ring.NewPoly(ctCtx, ring.Coeff)
	newUniform(t, ctCtx).Read(a)

	c0, c1, err := ctx.KeySwitch(a, ksk)
	require.NoError(t, err)

	// c0 + c1*s - a*sOther must be small: the gadget noise divided by
	// the special modulus, far below the ciphertext modulus.
	s := sk.Value.Prefix(ctCtx)
	other := skOther.Value.Prefix(ctCtx)

	acc := c1.CopyNew()
	require.NoError(t, acc.NTT())
	ctCtx.MulCoeffs(acc, s, acc)
	require.NoError(t, acc.INTT())
	ctCtx.Add(acc, c0, acc)

	aTimesOther := a.CopyNew()
	require.NoError(t, aTimesOther.NTT())
	ctCtx.MulCoeffs(aTimesOther, other, aTimesOther)
	require.NoError(t, aTimesOther.INTT())
	ctCtx.Sub(acc, aTimesOther, acc)

	tool, err := ctx.RnsTool(ctCtx.ModuliCount())
	require.NoError(t, err)
	noise, err := tool.CenterLiftQ(acc)
	require.NoError(t, err)
	for j, v := range noise {
		require.Less(t, v.BitLen(), 20, "noise coefficient %d too large", j)
	}

	// Eval-format input is rejected.
	eval := ring.NewPoly(ctCtx, ring.Eval)
	_, _, err = ctx.KeySwitch(eval, ksk)
	require.Error(t, err)
}
