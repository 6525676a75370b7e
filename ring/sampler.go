package ring

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/hegolib/hego/utils/sampling"
)

// randUint64 draws the next 8 bytes from the PRNG as a little-endian
// word.
func randUint64(prng sampling.PRNG) uint64 {
	var b [8]byte
	if _, err := prng.Read(b[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

// randFloat64 draws a uniform float in (0, 1].
func randFloat64(prng sampling.PRNG) float64 {
	return (float64(randUint64(prng)>>11) + 1) * (1.0 / 9007199254740992.0)
}

// UniformSampler samples polynomials with coefficients uniform in
// [0, q) per limb, by per-limb rejection. Its output is a
// deterministic function of the PRNG stream.
type UniformSampler struct {
	prng sampling.PRNG
	ctx  *PolyContext
}

// NewUniformSampler creates a UniformSampler over ctx.
func NewUniformSampler(prng sampling.PRNG, ctx *PolyContext) *UniformSampler {
	return &UniformSampler{prng: prng, ctx: ctx}
}

// Read fills p with fresh uniform coefficients, leaving its format
// unchanged.
func (s *UniformSampler) Read(p *Poly) {
	for i, sr := range s.ctx.subRings {
		q := sr.Q
		mask := (uint64(1) << bits.Len64(q-1)) - 1
		row := p.Coeffs.Row(i)
		for j := range row {
			for {
				if v := randUint64(s.prng) & mask; v < q {
					row[j] = v
					break
				}
			}
		}
	}
}

// ReadNew samples a fresh uniform polynomial in the given format.
func (s *UniformSampler) ReadNew(format Format) *Poly {
	p := NewPoly(s.ctx, format)
	s.Read(p)
	return p
}

// TernarySampler samples polynomials with coefficients uniform in
// {-1, 0, 1}, represented consistently across all limbs.
type TernarySampler struct {
	prng sampling.PRNG
	ctx  *PolyContext
}

// NewTernarySampler creates a TernarySampler over ctx.
func NewTernarySampler(prng sampling.PRNG, ctx *PolyContext) *TernarySampler {
	return &TernarySampler{prng: prng, ctx: ctx}
}

// Read fills p, in Coeff format, with a fresh ternary sample.
func (s *TernarySampler) Read(p *Poly) {
	n := s.ctx.n
	for j := 0; j < n; j++ {
		// Unbiased draw from {0, 1, 2} by 2-bit rejection.
		var v uint64
		for {
			if v = randUint64(s.prng) & 3; v < 3 {
				break
			}
		}
		for i, sr := range s.ctx.subRings {
			switch v {
			case 0:
				p.Coeffs.Set(i, j, 0)
			case 1:
				p.Coeffs.Set(i, j, 1)
			default:
				p.Coeffs.Set(i, j, sr.Q-1)
			}
		}
	}
}

// GaussianSampler samples polynomials with coefficients drawn from a
// truncated discrete Gaussian.
type GaussianSampler struct {
	prng  sampling.PRNG
	ctx   *PolyContext
	sigma float64
	bound float64
}

// NewGaussianSampler creates a GaussianSampler with the given standard
// deviation and truncation bound (in absolute value).
func NewGaussianSampler(prng sampling.PRNG, ctx *PolyContext, sigma, bound float64) *GaussianSampler {
	return &GaussianSampler{prng: prng, ctx: ctx, sigma: sigma, bound: bound}
}

// Read fills p, in Coeff format, with a fresh Gaussian sample.
func (s *GaussianSampler) Read(p *Poly) {
	n := s.ctx.n
	for j := 0; j < n; j++ {
		var z int64
		for {
			u1 := randFloat64(s.prng)
			u2 := randFloat64(s.prng)
			f := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2) * s.sigma
			if math.Abs(f) <= s.bound {
				z = int64(math.Round(f))
				break
			}
		}
		for i, sr := range s.ctx.subRings {
			p.Coeffs.Set(i, j, sr.ReduceSigned(z))
		}
	}
}
