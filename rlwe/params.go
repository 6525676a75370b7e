// Package rlwe provides the generic RLWE layer shared by schemes built
// on this module: encryption parameters, the precomputed context
// chain, ciphertext and key types, the key-switching primitive,
// Galois-element bookkeeping and the wire serialization.
package rlwe

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"

	"github.com/ALTree/bigfloat"
	"github.com/zeebo/blake3"

	"github.com/hegolib/hego/ring"
	"github.com/hegolib/hego/utils"
)

// MaxModuliCount is the largest supported ciphertext modulus chain
// length.
const MaxModuliCount = 32

// SecurityLevel tags the post-quantum-classical security target used
// to bound the total modulus size.
type SecurityLevel int

const (
	// SecurityLevelNone disables the bit-budget check. Test and toy
	// parameters only.
	SecurityLevelNone SecurityLevel = 0
	// SecurityLevel128 targets 128-bit classical security with a
	// ternary secret.
	SecurityLevel128 SecurityLevel = 128
)

// maxLogQ128 is the homomorphic encryption standard bound on
// log2(prod q_i) per degree at 128-bit classical security.
var maxLogQ128 = map[int]float64{
	1024:  27,
	2048:  54,
	4096:  109,
	8192:  218,
	16384: 438,
	32768: 881,
}

// ErrorStdDev tags the error distribution width.
type ErrorStdDev int

const (
	// ErrorStdDev32 selects the discrete Gaussian with standard
	// deviation 3.2, truncated at six standard deviations.
	ErrorStdDev32 ErrorStdDev = iota
)

// StdDev returns the standard deviation of the tagged distribution.
func (e ErrorStdDev) StdDev() float64 { return 3.2 }

// Bound returns the truncation bound of the tagged distribution.
func (e ErrorStdDev) Bound() float64 { return 19.2 }

// Parameters is an immutable, validated encryption parameter set: ring
// degree, plaintext modulus, coefficient modulus chain, error
// distribution and security target. Two parameter sets are equal iff
// their digests are equal.
type Parameters struct {
	logN      int
	t         uint64
	moduli    []uint64
	errStdDev ErrorStdDev
	security  SecurityLevel
	digest    [32]byte
}

// NewParameters validates and bundles an encryption parameter set.
// The degree must be a power of two, the plaintext modulus a prime
// smaller than every coefficient modulus, and every coefficient
// modulus a distinct NTT-friendly prime for the degree. Unless the
// security level is SecurityLevelNone, the total modulus bit-size is
// checked against the level's bound for the degree.
func NewParameters(n int, t uint64, moduli []uint64, errStdDev ErrorStdDev, security SecurityLevel) (Parameters, error) {

	if n < 4 || !utils.IsPowerOfTwo(n) {
		return Parameters{}, fmt.Errorf("rlwe: degree %d is not a power of two >= 4", n)
	}
	if len(moduli) == 0 || len(moduli) > MaxModuliCount {
		return Parameters{}, fmt.Errorf("rlwe: modulus count %d out of range [1, %d]", len(moduli), MaxModuliCount)
	}
	if !utils.AllDistinct(moduli) {
		return Parameters{}, fmt.Errorf("rlwe: coefficient moduli must be distinct")
	}
	if t == 0 || !ring.IsPrime(t) {
		return Parameters{}, fmt.Errorf("rlwe: plaintext modulus %d is not prime", t)
	}

	bigQ := big.NewInt(1)
	for _, q := range moduli {
		if q > ring.MaxModulus {
			return Parameters{}, fmt.Errorf("rlwe: modulus %d exceeds %d", q, uint64(ring.MaxModulus))
		}
		if q <= t {
			return Parameters{}, fmt.Errorf("rlwe: modulus %d does not exceed the plaintext modulus %d", q, t)
		}
		if q%uint64(2*n) != 1 {
			return Parameters{}, fmt.Errorf("rlwe: modulus %d is not NTT-friendly for degree %d", q, n)
		}
		if !ring.IsPrime(q) {
			return Parameters{}, fmt.Errorf("rlwe: modulus %d is not prime", q)
		}
		bigQ.Mul(bigQ, new(big.Int).SetUint64(q))
	}

	if security != SecurityLevelNone {
		bound, ok := maxLogQ128[n]
		if security != SecurityLevel128 || !ok {
			return Parameters{}, fmt.Errorf("rlwe: no security bound for degree %d at level %d", n, security)
		}
		if logQ := log2Big(bigQ); logQ > bound {
			return Parameters{}, fmt.Errorf("rlwe: log2(Q) = %.1f exceeds the %.0f-bit bound for degree %d at security level %d", logQ, bound, n, security)
		}
	}

	p := Parameters{
		logN:      utils.Log2(n),
		t:         t,
		moduli:    append([]uint64(nil), moduli...),
		errStdDev: errStdDev,
		security:  security,
	}
	p.digest = p.computeDigest()
	return p, nil
}

// log2Big returns log2(x) for a positive x.
func log2Big(x *big.Int) float64 {
	f := new(big.Float).SetPrec(256).SetInt(x)
	l := bigfloat.Log(f)
	l.Quo(l, bigfloat.Log(big.NewFloat(2)))
	v, _ := l.Float64()
	return v
}

func (p Parameters) computeDigest() [32]byte {
	h := blake3.New()
	buf := make([]byte, 8)
	write := func(v uint64) {
		binary.LittleEndian.PutUint64(buf, v)
		h.Write(buf)
	}
	write(uint64(p.logN))
	write(p.t)
	write(uint64(len(p.moduli)))
	for _, q := range p.moduli {
		write(q)
	}
	write(uint64(p.errStdDev))
	write(uint64(p.security))
	var d [32]byte
	copy(d[:], h.Sum(nil))
	return d
}

// N returns the ring degree.
func (p Parameters) N() int { return 1 << p.logN }

// LogN returns the base-two logarithm of the ring degree.
func (p Parameters) LogN() int { return p.logN }

// PlaintextModulus returns t.
func (p Parameters) PlaintextModulus() uint64 { return p.t }

// Moduli returns a copy of the coefficient modulus chain.
func (p Parameters) Moduli() []uint64 { return append([]uint64(nil), p.moduli...) }

// ModuliCount returns the coefficient modulus chain length.
func (p Parameters) ModuliCount() int { return len(p.moduli) }

// ErrorStdDev returns the error distribution tag.
func (p Parameters) ErrorStdDev() ErrorStdDev { return p.errStdDev }

// SecurityLevel returns the security target tag.
func (p Parameters) SecurityLevel() SecurityLevel { return p.security }

// Digest returns the parameter digest.
func (p Parameters) Digest() [32]byte { return p.digest }

// Equal reports whether both parameter sets are identical.
func (p Parameters) Equal(other Parameters) bool { return p.digest == other.digest }

// BitsPerPlaintext returns the plaintext capacity in bits,
// floor(log2(t)) per coefficient.
func (p Parameters) BitsPerPlaintext() int {
	return (bits.Len64(p.t) - 1) * p.N()
}

// BytesPerPlaintext returns the bytes needed to hold one plaintext.
func (p Parameters) BytesPerPlaintext() int {
	return utils.DivCeil(p.BitsPerPlaintext(), 8)
}

// SupportsSimdEncoding reports whether the plaintext modulus admits
// the degree-N plaintext NTT required by batching, t = 1 mod 2N.
func (p Parameters) SupportsSimdEncoding() bool {
	return p.t%uint64(2*p.N()) == 1
}

// SupportsEvaluationKey reports whether the chain is long enough to
// reserve a key-switching modulus.
func (p Parameters) SupportsEvaluationKey() bool {
	return len(p.moduli) >= 2
}
