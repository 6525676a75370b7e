package he

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hegolib/hego/rlwe"
)

func newNoOp(t *testing.T, n int, plaintextModulus uint64) (*NoOpScheme, *rlwe.SecretKey) {
	t.Helper()
	s := NewNoOpScheme(newTestContext(t, n, plaintextModulus, 2))
	sk, err := s.GenerateSecretKey()
	require.NoError(t, err)
	return s, sk
}

func TestNoOpEncryptDecrypt(t *testing.T) {

	s, sk := newNoOp(t, 16, 97)

	values := []uint64{1, 2, 3, 4, 5}
	pt, err := s.EncodeCoeff(values)
	require.NoError(t, err)

	ct, err := s.Encrypt(pt, sk)
	require.NoError(t, err)
	require.Equal(t, 0, ct.Degree())
	require.True(t, s.IsTransparent(ct))

	dec, err := s.Decrypt(ct, sk)
	require.NoError(t, err)
	got, err := s.DecodeCoeff(dec)
	require.NoError(t, err)
	require.Equal(t, values, got[:len(values)])
}

func TestNoOpLinearOps(t *testing.T) {

	s, sk := newNoOp(t, 16, 97)

	a := []uint64{10, 90, 0, 50}
	b := []uint64{5, 20, 96, 60}

	pa, err := s.EncodeCoeff(a)
	require.NoError(t, err)
	pb, err := s.EncodeCoeff(b)
	require.NoError(t, err)
	ca, err := s.Encrypt(pa, sk)
	require.NoError(t, err)
	cb, err := s.Encrypt(pb, sk)
	require.NoError(t, err)

	decode := func(ct *rlwe.Ciphertext) []uint64 {
		pt, err := s.Decrypt(ct, sk)
		require.NoError(t, err)
		v, err := s.DecodeCoeff(pt)
		require.NoError(t, err)
		return v
	}

	sum, err := s.Add(ca, cb)
	require.NoError(t, err)
	diff, err := s.Sub(ca, cb)
	require.NoError(t, err)
	neg, err := s.Neg(ca)
	require.NoError(t, err)
	sumP, err := s.AddPlain(ca, pb)
	require.NoError(t, err)
	diffP, err := s.SubPlain(ca, pb)
	require.NoError(t, err)

	gotSum, gotDiff, gotNeg := decode(sum), decode(diff), decode(neg)
	gotSumP, gotDiffP := decode(sumP), decode(diffP)
	for i := range a {
		require.Equal(t, (a[i]+b[i])%97, gotSum[i])
		require.Equal(t, (a[i]+97-b[i])%97, gotDiff[i])
		require.Equal(t, (97-a[i])%97, gotNeg[i])
		require.Equal(t, gotSum[i], gotSumP[i])
		require.Equal(t, gotDiff[i], gotDiffP[i])
	}
}

func TestNoOpMul(t *testing.T) {

	// 17 is not NTT friendly at degree 16; the schoolbook product must
	// still work, including the negacyclic wraparound.
	s, sk := newNoOp(t, 16, 17)

	// (2 + X) * 3X = 6X + 3X^2.
	p1, err := s.EncodeCoeff([]uint64{2, 1})
	require.NoError(t, err)
	p2, err := s.EncodeCoeff([]uint64{0, 3})
	require.NoError(t, err)
	c1, err := s.Encrypt(p1, sk)
	require.NoError(t, err)
	c2, err := s.Encrypt(p2, sk)
	require.NoError(t, err)

	prod, err := s.Mul(c1, c2)
	require.NoError(t, err)
	require.Equal(t, 0, prod.Degree())

	pt, err := s.Decrypt(prod, sk)
	require.NoError(t, err)
	got, err := s.DecodeCoeff(pt)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 6, 3}, got[:3])

	// X^15 * X = X^16 = -1 mod X^16+1.
	wrapHi := make([]uint64, 16)
	wrapHi[15] = 2
	p3, err := s.EncodeCoeff(wrapHi)
	require.NoError(t, err)
	c3, err := s.Encrypt(p3, sk)
	require.NoError(t, err)

	wrap, err := s.MulPlain(c3, p2)
	require.NoError(t, err)
	pt, err = s.Decrypt(wrap, sk)
	require.NoError(t, err)
	got, err = s.DecodeCoeff(pt)
	require.NoError(t, err)
	require.Equal(t, uint64(17-6), got[0])
	for _, v := range got[1:] {
		require.Zero(t, v)
	}
}

func TestNoOpRotations(t *testing.T) {

	s, sk := newNoOp(t, 16, 97)

	values := []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	pt, err := s.EncodeSimd(values)
	require.NoError(t, err)
	ct, err := s.Encrypt(pt, sk)
	require.NoError(t, err)

	decodeSimd := func(ct *rlwe.Ciphertext) []uint64 {
		pt, err := s.Decrypt(ct, sk)
		require.NoError(t, err)
		v, err := s.DecodeSimd(pt)
		require.NoError(t, err)
		return v
	}

	// Column rotation acts independently on the two rows of 8 slots.
	rot, err := s.RotateColumns(ct, 1, nil)
	require.NoError(t, err)
	got := rotatedRows(values, 1)
	require.Equal(t, got, decodeSimd(rot))

	back, err := s.RotateColumns(rot, -1, nil)
	require.NoError(t, err)
	require.Equal(t, values, decodeSimd(back))

	rot3, err := s.RotateColumns(ct, 3, nil)
	require.NoError(t, err)
	require.Equal(t, rotatedRows(values, 3), decodeSimd(rot3))

	swapped, err := s.SwapRows(ct, nil)
	require.NoError(t, err)
	want := append(append([]uint64{}, values[8:]...), values[:8]...)
	require.Equal(t, want, decodeSimd(swapped))
}

// rotatedRows applies the documented column-rotation semantics to a
// two-row slot vector: out[i] = in[(i-step) mod cols] within each row.
func rotatedRows(values []uint64, step int) []uint64 {
	cols := len(values) / 2
	out := make([]uint64, len(values))
	for r := 0; r < 2; r++ {
		for i := 0; i < cols; i++ {
			out[r*cols+i] = values[r*cols+((i-step)%cols+cols)%cols]
		}
	}
	return out
}

func TestNoOpIdentityOps(t *testing.T) {

	s, sk := newNoOp(t, 16, 97)

	pt, err := s.EncodeCoeff([]uint64{1, 2, 3})
	require.NoError(t, err)
	ct, err := s.Encrypt(pt, sk)
	require.NoError(t, err)

	relin, err := s.Relinearize(ct, nil)
	require.NoError(t, err)
	require.True(t, ct.Equal(relin))

	down, err := s.ModSwitchDown(ct)
	require.NoError(t, err)
	require.True(t, ct.Equal(down))

	single, err := s.ModSwitchDownToSingle(ct)
	require.NoError(t, err)
	require.True(t, ct.Equal(single))

	budget, err := s.NoiseBudget(ct, sk)
	require.NoError(t, err)
	require.True(t, math.IsInf(budget, 1), "nothing degrades without encryption")
	require.Zero(t, s.MinNoiseBudget())
}

func TestNoOpEvaluationKey(t *testing.T) {

	s, sk := newNoOp(t, 16, 97)

	cfg := rlwe.EvaluationKeyConfig{GaloisElements: []uint64{5, 13}, HasRelinearizationKey: true}
	ek, err := s.GenerateEvaluationKey(cfg, sk)
	require.NoError(t, err)
	require.True(t, ek.Config().Contains(cfg))
}

func TestNoOpContextMismatch(t *testing.T) {

	s, sk := newNoOp(t, 16, 97)
	other, otherSk := newNoOp(t, 16, 17)

	pt, err := other.EncodeCoeff([]uint64{1})
	require.NoError(t, err)
	ct, err := other.Encrypt(pt, otherSk)
	require.NoError(t, err)

	_, err = s.Decrypt(ct, sk)
	require.ErrorIs(t, err, rlwe.ErrContextMismatch)
	_, err = s.AddPlain(ct, pt)
	require.ErrorIs(t, err, rlwe.ErrContextMismatch)
}

func TestAsyncAdapter(t *testing.T) {

	s, sk := newNoOp(t, 16, 97)
	async := Async{S: s}

	pt, err := s.EncodeCoeff([]uint64{7})
	require.NoError(t, err)

	ct, err := async.Encrypt(context.Background(), pt, sk)
	require.NoError(t, err)

	sum, err := async.Add(context.Background(), ct, ct)
	require.NoError(t, err)
	dec, err := async.Decrypt(context.Background(), sum, sk)
	require.NoError(t, err)
	got, err := s.DecodeCoeff(dec)
	require.NoError(t, err)
	require.Equal(t, uint64(14), got[0])

	// A canceled context stops every call before it starts.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = async.Encrypt(canceled, pt, sk)
	require.ErrorIs(t, err, context.Canceled)
	_, err = async.Mul(canceled, ct, ct)
	require.ErrorIs(t, err, context.Canceled)
	_, err = async.RotateColumns(canceled, ct, 1, nil)
	require.ErrorIs(t, err, context.Canceled)
	_, err = async.ModSwitchDown(canceled, ct)
	require.ErrorIs(t, err, context.Canceled)
}
