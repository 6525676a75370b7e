package ring

// NTT computes the in-place forward negacyclic NTT of p over the
// sub-ring. The roots table is in bit-reversed order, so the output
// slot i holds the evaluation at Psi^(2*bitrev(i)+1) and no explicit
// reordering pass is needed.
func (s *SubRing) NTT(p []uint64) {
	q := s.Q
	t := len(p)
	for m := 1; m < len(p); m <<= 1 {
		t >>= 1
		for i := 0; i < m; i++ {
			j1 := 2 * i * t
			psi := s.RootsForward[m+i]
			for j := j1; j < j1+t; j++ {
				u := p[j]
				v := s.MulConst(p[j+t], psi)
				p[j] = CRed(u+v, q)
				p[j+t] = CRed(u+q-v, q)
			}
		}
	}
}

// INTT computes the in-place inverse negacyclic NTT of p over the
// sub-ring, including the final multiplication by N^-1.
func (s *SubRing) INTT(p []uint64) {
	q := s.Q
	t := 1
	for m := len(p); m > 1; m >>= 1 {
		j1 := 0
		h := m >> 1
		for i := 0; i < h; i++ {
			psi := s.RootsBackward[h+i]
			for j := j1; j < j1+t; j++ {
				u := p[j]
				v := p[j+t]
				p[j] = CRed(u+v, q)
				p[j+t] = s.MulConst(u+q-v, psi)
			}
			j1 += 2 * t
		}
		t <<= 1
	}
	for j := range p {
		p[j] = s.MulConst(p[j], s.NInv)
	}
}
