package wideint

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randUint128(r *rand.Rand) Uint128 {
	return NewUint128(r.Uint64(), r.Uint64())
}

// requireBigEqual compares through Cmp: two big.Int values representing
// zero can differ under reflection.
func requireBigEqual(t *testing.T, want, got *big.Int, msgAndArgs ...interface{}) {
	t.Helper()
	require.Zero(t, want.Cmp(got), msgAndArgs...)
}

func TestUint128BigRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for i := 0; i < 1000; i++ {
		u := randUint128(r)
		require.Equal(t, u, Uint128FromBig(u.Big()))
	}
}

func TestUint128Arithmetic(t *testing.T) {

	r := rand.New(rand.NewSource(1))
	mod128 := new(big.Int).Lsh(big.NewInt(1), 128)

	for i := 0; i < 1000; i++ {
		u, v := randUint128(r), randUint128(r)
		ub, vb := u.Big(), v.Big()

		sum := new(big.Int).Add(ub, vb)
		sum.Mod(sum, mod128)
		requireBigEqual(t, sum, u.Add(v).Big(), "add")

		diff := new(big.Int).Sub(ub, vb)
		diff.Mod(diff, mod128)
		requireBigEqual(t, diff, u.Sub(v).Big(), "sub")

		prod := new(big.Int).Mul(ub, vb)
		lo := new(big.Int).Mod(prod, mod128)
		requireBigEqual(t, lo, u.Mul(v).Big(), "mul low half")
		requireBigEqual(t, prod, u.MulFull(v).Big(), "mul full")

		require.Equal(t, ub.Cmp(vb), u.Cmp(v), "cmp")
		require.Equal(t, ub.BitLen(), u.BitLen(), "bitlen")
	}
}

func TestMul64(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		x, y := r.Uint64(), r.Uint64()
		want := new(big.Int).Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
		requireBigEqual(t, want, Mul64(x, y).Big())
	}
}

func TestUint128Shifts(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	mod128 := new(big.Int).Lsh(big.NewInt(1), 128)
	for i := 0; i < 200; i++ {
		u := randUint128(r)
		for _, n := range []uint{0, 1, 17, 63, 64, 65, 100, 127} {
			lsh := new(big.Int).Lsh(u.Big(), n)
			lsh.Mod(lsh, mod128)
			requireBigEqual(t, lsh, u.Lsh(n).Big(), "lsh %d", n)
			requireBigEqual(t, new(big.Int).Rsh(u.Big(), n), u.Rsh(n).Big(), "rsh %d", n)
		}
	}
}

func TestUint128QuoRem(t *testing.T) {

	r := rand.New(rand.NewSource(4))

	for i := 0; i < 1000; i++ {
		u := randUint128(r)
		d := r.Uint64() | 1
		q, rem := u.QuoRem64(d)
		db := new(big.Int).SetUint64(d)
		wantQ, wantR := new(big.Int).QuoRem(u.Big(), db, new(big.Int))
		requireBigEqual(t, wantQ, q.Big())
		require.Equal(t, wantR.Uint64(), rem)
	}

	for i := 0; i < 1000; i++ {
		u, v := randUint128(r), randUint128(r)
		if v.IsZero() {
			continue
		}
		q, rem := u.QuoRem(v)
		wantQ, wantR := new(big.Int).QuoRem(u.Big(), v.Big(), new(big.Int))
		requireBigEqual(t, wantQ, q.Big())
		requireBigEqual(t, wantR, rem.Big())
	}
}

func TestUint128CarryChain(t *testing.T) {

	u := NewUint128(^uint64(0), ^uint64(0))
	sum, carry := u.AddCarry(From64(1), 0)
	require.True(t, sum.IsZero())
	require.Equal(t, uint64(1), carry)

	diff, borrow := From64(0).SubBorrow(From64(1), 0)
	require.Equal(t, NewUint128(^uint64(0), ^uint64(0)), diff)
	require.Equal(t, uint64(1), borrow)
}

func TestUint256(t *testing.T) {

	r := rand.New(rand.NewSource(5))

	for i := 0; i < 500; i++ {
		u := randUint128(r).MulFull(randUint128(r))
		require.Equal(t, u, Uint256FromBig(u.Big()))

		d := r.Uint64() | 1
		q, rem := u.QuoRem64(d)
		db := new(big.Int).SetUint64(d)
		wantQ, wantR := new(big.Int).QuoRem(u.Big(), db, new(big.Int))
		requireBigEqual(t, wantQ, q.Big())
		require.Equal(t, wantR.Uint64(), rem)

		for _, n := range []uint{0, 1, 64, 100, 128, 200, 255} {
			requireBigEqual(t, new(big.Int).Rsh(u.Big(), n), u.Rsh(n).Big(), "rsh %d", n)
		}
	}
}
