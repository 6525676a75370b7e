package ring

import (
	"fmt"
	"math"
	"math/big"

	"github.com/hegolib/hego/utils"
)

// SubRing stores the per-modulus precomputations: fast reduction
// factors and the NTT root tables for one prime of the RNS basis.
type SubRing struct {
	Modulus

	// N is the ring degree.
	N int

	// Psi is a primitive 2N-th root of unity mod Q.
	Psi uint64

	// RootsForward and RootsBackward hold the powers of Psi and
	// Psi^-1 in bit-reversed order, in Shoup form.
	RootsForward  []MulConstant
	RootsBackward []MulConstant

	// NInv is N^-1 mod Q in Shoup form.
	NInv MulConstant
}

// NTTFriendly reports whether the modulus supports the degree-N NTT,
// that is whether Q = 1 mod 2N.
func (s *SubRing) NTTFriendly() bool { return s.RootsForward != nil }

func newSubRing(n int, q uint64) (*SubRing, error) {

	if !utils.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("ring: degree %d is not a power of two", n)
	}

	m, err := NewModulus(q)
	if err != nil {
		return nil, err
	}

	if !IsPrime(q) {
		return nil, fmt.Errorf("ring: modulus %d is not prime", q)
	}

	s := &SubRing{Modulus: m, N: n}

	// A modulus without a primitive 2N-th root of unity still forms a
	// valid coefficient-format sub-ring; only the NTT is unavailable.
	nthRoot := uint64(2 * n)
	if q%nthRoot != 1 {
		return s, nil
	}

	if s.Psi, err = primitiveNthRoot(m, nthRoot); err != nil {
		return nil, err
	}

	psiInv, err := m.Inverse(s.Psi)
	if err != nil {
		return nil, err
	}
	nInv, err := m.Inverse(uint64(n))
	if err != nil {
		return nil, err
	}
	s.NInv = m.NewMulConstant(nInv)

	logN := utils.Log2(n)
	s.RootsForward = make([]MulConstant, n)
	s.RootsBackward = make([]MulConstant, n)

	fwd, bwd := uint64(1), uint64(1)
	for j := 0; j < n; j++ {
		idx := utils.BitReverse64(uint64(j), logN)
		s.RootsForward[idx] = m.NewMulConstant(fwd)
		s.RootsBackward[idx] = m.NewMulConstant(bwd)
		fwd = m.MulMod(fwd, s.Psi)
		bwd = m.MulMod(bwd, psiInv)
	}

	return s, nil
}

// primitiveNthRoot finds a primitive nthRoot-th root of unity mod q
// (nthRoot a power of two dividing q-1): psi = g^((q-1)/nthRoot) is
// primitive iff psi^(nthRoot/2) = -1.
func primitiveNthRoot(m Modulus, nthRoot uint64) (uint64, error) {
	if (m.Q-1)%nthRoot != 0 {
		return 0, fmt.Errorf("ring: no %d-th root of unity mod %d", nthRoot, m.Q)
	}
	e := (m.Q - 1) / nthRoot
	for g := uint64(2); g < m.Q; g++ {
		psi := m.Exp(g, e)
		if m.Exp(psi, nthRoot>>1) == m.Q-1 {
			return psi, nil
		}
	}
	return 0, fmt.Errorf("ring: no primitive %d-th root of unity mod %d", nthRoot, m.Q)
}

// PolyContext is an immutable precomputed parameter bundle for one RNS
// basis: the ring degree, the per-modulus NTT tables and an optional
// link to the context with one fewer modulus, forming the chain used
// by modulus switching. Contexts are shared by reference across all
// polynomials using the same basis.
type PolyContext struct {
	n        int
	subRings []*SubRing
	bigQ     *big.Int
	next     *PolyContext
}

// NewPolyContext validates the degree and moduli and precomputes the
// NTT tables. next, if not nil, must have the same degree and exactly
// one fewer modulus.
func NewPolyContext(n int, moduli []uint64, next *PolyContext) (*PolyContext, error) {

	if !utils.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("ring: degree %d is not a power of two", n)
	}
	if len(moduli) == 0 {
		return nil, fmt.Errorf("ring: empty modulus chain")
	}
	if !utils.AllDistinct(moduli) {
		return nil, fmt.Errorf("ring: moduli must be distinct")
	}
	if next != nil {
		if next.n != n {
			return nil, fmt.Errorf("ring: next context degree %d != %d", next.n, n)
		}
		if next.ModuliCount() != len(moduli)-1 {
			return nil, fmt.Errorf("ring: next context must have one fewer modulus")
		}
	}

	c := &PolyContext{n: n, next: next, bigQ: big.NewInt(1)}
	c.subRings = make([]*SubRing, len(moduli))
	for i, q := range moduli {
		s, err := newSubRing(n, q)
		if err != nil {
			return nil, err
		}
		c.subRings[i] = s
		c.bigQ.Mul(c.bigQ, new(big.Int).SetUint64(q))
	}

	return c, nil
}

// N returns the ring degree.
func (c *PolyContext) N() int { return c.n }

// ModuliCount returns the number of moduli in the basis.
func (c *PolyContext) ModuliCount() int { return len(c.subRings) }

// Moduli returns a copy of the modulus chain.
func (c *PolyContext) Moduli() []uint64 {
	qs := make([]uint64, len(c.subRings))
	for i, s := range c.subRings {
		qs[i] = s.Q
	}
	return qs
}

// SubRingAt returns the precomputations for the i-th modulus.
func (c *PolyContext) SubRingAt(i int) *SubRing { return c.subRings[i] }

// BigQ returns the product of the moduli. The caller must not mutate
// the returned value.
func (c *PolyContext) BigQ() *big.Int { return c.bigQ }

// Next returns the context with one fewer modulus, or nil.
func (c *PolyContext) Next() *PolyContext { return c.next }

// GetContext returns the context with the given modulus count,
// reachable by following next links.
func (c *PolyContext) GetContext(moduliCount int) (*PolyContext, error) {
	for ctx := c; ctx != nil; ctx = ctx.next {
		if ctx.ModuliCount() == moduliCount {
			return ctx, nil
		}
	}
	return nil, fmt.Errorf("ring: no context with %d moduli reachable from %d", moduliCount, c.ModuliCount())
}

// Equal returns true if both contexts have the same degree and moduli.
func (c *PolyContext) Equal(other *PolyContext) bool {
	if c == other {
		return true
	}
	if other == nil || c.n != other.n || len(c.subRings) != len(other.subRings) {
		return false
	}
	for i := range c.subRings {
		if c.subRings[i].Q != other.subRings[i].Q {
			return false
		}
	}
	return true
}

// MaxLazyProductAccumulationCount bounds how many unreduced products of
// residues can be summed in a 128-bit accumulator before overflow.
func (c *PolyContext) MaxLazyProductAccumulationCount() int {
	var qMax uint64
	for _, s := range c.subRings {
		if s.Q > qMax {
			qMax = s.Q
		}
	}
	prod := new(big.Int).SetUint64(qMax - 1)
	prod.Mul(prod, prod)
	cap128 := new(big.Int).Lsh(big.NewInt(1), 128)
	cap128.Sub(cap128, big.NewInt(1))
	cnt := cap128.Quo(cap128, prod)
	if !cnt.IsInt64() || cnt.Int64() > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(cnt.Int64())
}
