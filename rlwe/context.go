package rlwe

import (
	"errors"
	"fmt"

	"github.com/hegolib/hego/ring"
)

// ErrContextMismatch is returned when an operation mixes objects built
// from different contexts.
var ErrContextMismatch = errors.New("rlwe: context mismatch")

// Context owns every precomputation derived from one parameter set:
// the plaintext ring, the secret-key ring over the full chain, the
// ciphertext context chain for modulus switching, the per-level
// key-switching bases and RNS tools, and the SIMD encoding permutation
// when the plaintext modulus supports it. A Context is deeply
// immutable after construction and safe to share across goroutines.
type Context struct {
	params Parameters

	ptCtx *ring.PolyContext
	skCtx *ring.PolyContext
	ctCtx *ring.PolyContext

	// Index l holds the precomputations of the ciphertext level with
	// l+1 moduli. ksCtxs/ksTools are nil without an evaluation-key
	// modulus.
	ctChain  []*ring.PolyContext
	rnsTools []*ring.RnsTool
	ksCtxs   []*ring.PolyContext
	ksTools  []*ring.RnsTool

	simdPerm []uint64
}

// NewContext builds the full precomputation chain for params. The last
// coefficient modulus is reserved as the key-switching modulus when
// the chain has more than one entry.
func NewContext(params Parameters) (*Context, error) {

	n := params.N()
	moduli := params.Moduli()

	c := &Context{params: params}

	var err error
	if c.ptCtx, err = ring.NewPolyContext(n, []uint64{params.PlaintextModulus()}, nil); err != nil {
		return nil, err
	}

	ctModuli := moduli
	if len(moduli) > 1 {
		ctModuli = moduli[:len(moduli)-1]
	}

	var prev *ring.PolyContext
	c.ctChain = make([]*ring.PolyContext, len(ctModuli))
	for l := range ctModuli {
		if c.ctChain[l], err = ring.NewPolyContext(n, ctModuli[:l+1], prev); err != nil {
			return nil, err
		}
		prev = c.ctChain[l]
	}
	c.ctCtx = prev

	if len(moduli) > 1 {
		if c.skCtx, err = ring.NewPolyContext(n, moduli, c.ctCtx); err != nil {
			return nil, err
		}
	} else {
		c.skCtx = c.ctCtx
	}

	if c.skCtx.MaxLazyProductAccumulationCount() < len(moduli) {
		return nil, fmt.Errorf("rlwe: %d moduli of this size overflow the key-switching accumulator", len(moduli))
	}

	c.rnsTools = make([]*ring.RnsTool, len(ctModuli))
	for l := range ctModuli {
		if c.rnsTools[l], err = ring.NewRnsTool(c.ctChain[l], c.ptCtx); err != nil {
			return nil, err
		}
	}

	if params.SupportsEvaluationKey() {
		p := moduli[len(moduli)-1]
		c.ksCtxs = make([]*ring.PolyContext, len(ctModuli))
		c.ksTools = make([]*ring.RnsTool, len(ctModuli))
		for l := range ctModuli {
			if l == len(ctModuli)-1 {
				c.ksCtxs[l] = c.skCtx
			} else {
				ks := append(append([]uint64{}, ctModuli[:l+1]...), p)
				if c.ksCtxs[l], err = ring.NewPolyContext(n, ks, c.ctChain[l]); err != nil {
					return nil, err
				}
			}
			if c.ksTools[l], err = ring.NewRnsTool(c.ksCtxs[l], c.ptCtx); err != nil {
				return nil, err
			}
		}
	}

	if params.SupportsSimdEncoding() {
		c.simdPerm = simdPermutation(params.LogN())
	}

	return c, nil
}

// Parameters returns the parameter set the context was built from.
func (c *Context) Parameters() Parameters { return c.params }

// PlaintextContext returns the single-modulus plaintext ring context.
func (c *Context) PlaintextContext() *ring.PolyContext { return c.ptCtx }

// SecretKeyContext returns the context over the full modulus chain.
func (c *Context) SecretKeyContext() *ring.PolyContext { return c.skCtx }

// CiphertextContext returns the top-level ciphertext context.
func (c *Context) CiphertextContext() *ring.PolyContext { return c.ctCtx }

// RnsTool returns the RNS conversion tool of the ciphertext level with
// the given modulus count.
func (c *Context) RnsTool(moduliCount int) (*ring.RnsTool, error) {
	if moduliCount < 1 || moduliCount > len(c.rnsTools) {
		return nil, fmt.Errorf("rlwe: no ciphertext level with %d moduli", moduliCount)
	}
	return c.rnsTools[moduliCount-1], nil
}

// KeySwitchContext returns the key-switching basis [q_0..q_l, P] of
// the ciphertext level with the given modulus count.
func (c *Context) KeySwitchContext(moduliCount int) (*ring.PolyContext, error) {
	if c.ksCtxs == nil {
		return nil, fmt.Errorf("rlwe: parameters do not support evaluation keys")
	}
	if moduliCount < 1 || moduliCount > len(c.ksCtxs) {
		return nil, fmt.Errorf("rlwe: no ciphertext level with %d moduli", moduliCount)
	}
	return c.ksCtxs[moduliCount-1], nil
}

// KeySwitchTool returns the RNS tool over the key-switching basis of
// the given ciphertext level, used to divide out the special modulus.
func (c *Context) KeySwitchTool(moduliCount int) (*ring.RnsTool, error) {
	if c.ksTools == nil {
		return nil, fmt.Errorf("rlwe: parameters do not support evaluation keys")
	}
	if moduliCount < 1 || moduliCount > len(c.ksTools) {
		return nil, fmt.Errorf("rlwe: no ciphertext level with %d moduli", moduliCount)
	}
	return c.ksTools[moduliCount-1], nil
}

// SimdPermutation returns the slot-to-coefficient permutation table,
// or nil when the plaintext modulus does not support batching. The
// caller must not mutate the returned slice.
func (c *Context) SimdPermutation() []uint64 { return c.simdPerm }

// Equal reports whether both contexts were built from equal
// parameters.
func (c *Context) Equal(other *Context) bool {
	if c == other {
		return true
	}
	return other != nil && c.params.Equal(other.params)
}
