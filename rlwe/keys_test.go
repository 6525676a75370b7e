package rlwe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluationKeyConfigUnion(t *testing.T) {

	a := EvaluationKeyConfig{GaloisElements: []uint64{3}}
	b := EvaluationKeyConfig{GaloisElements: []uint64{5}, HasRelinearizationKey: true}

	u := a.Union(b)
	require.Equal(t, []uint64{3, 5}, u.GaloisElements)
	require.True(t, u.HasRelinearizationKey)

	// Union deduplicates and is symmetric.
	v := b.Union(a)
	require.Equal(t, u, v)
	require.Equal(t, u, u.Union(u))
}

func TestEvaluationKeyConfigContains(t *testing.T) {

	full := EvaluationKeyConfig{GaloisElements: []uint64{3, 5, 13}, HasRelinearizationKey: true}

	require.True(t, full.Contains(EvaluationKeyConfig{}))
	require.True(t, full.Contains(EvaluationKeyConfig{GaloisElements: []uint64{5}}))
	require.True(t, full.Contains(full))
	require.False(t, full.Contains(EvaluationKeyConfig{GaloisElements: []uint64{7}}))

	noRelin := EvaluationKeyConfig{GaloisElements: []uint64{3, 5}}
	require.False(t, noRelin.Contains(EvaluationKeyConfig{HasRelinearizationKey: true}))
}

func TestEvaluationKeyLookupErrors(t *testing.T) {

	ek := &EvaluationKey{Galois: GaloisKey{Keys: map[uint64]*KeySwitchKey{5: {}}}}

	_, err := ek.KeySwitchKeyForGalois(5)
	require.NoError(t, err)
	_, err = ek.KeySwitchKeyForGalois(13)
	require.ErrorIs(t, err, ErrMissingGaloisElement)
	_, err = ek.KeySwitchKeyForRelinearization()
	require.ErrorIs(t, err, ErrMissingRelinearizationKey)

	cfg := ek.Config()
	require.Equal(t, []uint64{5}, cfg.GaloisElements)
	require.False(t, cfg.HasRelinearizationKey)
}
