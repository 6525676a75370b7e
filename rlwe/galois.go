package rlwe

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/hegolib/hego/utils"
)

// GaloisGen generates the cyclic half of (Z/2NZ)* indexing the SIMD
// slot rotations. 5 has order N/2 mod 2N for every power-of-two N.
const GaloisGen uint64 = 5

// simdPermutation builds the slot-to-coefficient index table of the
// batching encoding: slot i of the first row lands on coefficient
// perm[i], slot i of the second row on perm[N/2+i], such that the
// plaintext NTT aligns slots with the powers of GaloisGen.
func simdPermutation(logN int) []uint64 {
	n := uint64(1) << logN
	mask := 2*n - 1
	halfN := n >> 1
	perm := make([]uint64, n)
	pow := uint64(1)
	for i := uint64(0); i < halfN; i++ {
		pos := pow >> 1
		perm[i] = utils.BitReverse64(pos, logN)
		perm[i+halfN] = utils.BitReverse64(n-pos-1, logN)
		pow = pow * GaloisGen & mask
	}
	return perm
}

// galoisPow returns GaloisGen^k mod 2N.
func galoisPow(k, n int) uint64 {
	mask := uint64(2*n) - 1
	galEl := uint64(1)
	g := GaloisGen
	for ; k > 0; k >>= 1 {
		if k&1 == 1 {
			galEl = galEl * g & mask
		}
		g = g * g & mask
	}
	return galEl
}

// GaloisElementForColumnRotation returns the Galois element rotating
// each of the two SIMD rows by step positions: positive steps rotate
// right, negative steps rotate left. A step of 0 returns the identity
// element 1.
func (p Parameters) GaloisElementForColumnRotation(step int) uint64 {
	halfN := p.N() >> 1
	k := ((halfN-step)%halfN + halfN) % halfN
	return galoisPow(k, p.N())
}

// GaloisElementForRowSwap returns the Galois element exchanging the
// two SIMD rows, 2N-1.
func (p Parameters) GaloisElementForRowSwap() uint64 {
	return uint64(2*p.N()) - 1
}

// GaloisElementsForRotations maps rotation steps to their Galois
// elements, deduplicated and sorted, ready for an EvaluationKeyConfig.
func (p Parameters) GaloisElementsForRotations(steps []int) []uint64 {
	set := make(map[uint64]struct{}, len(steps))
	for _, s := range steps {
		set[p.GaloisElementForColumnRotation(s)] = struct{}{}
	}
	elements := make([]uint64, 0, len(set))
	for e := range set {
		elements = append(elements, e)
	}
	slices.Sort(elements)
	return elements
}

// PlanMultiStep decomposes a rotation by step over slotCount slots
// into rotations by the available positive steps, each usable any
// number of times, minimizing the total application count. Since
// slot rotation is cyclic, both wrap targets r and r+slotCount are
// tried greedily and the shorter plan wins. The returned plan lists
// the steps to apply in order; it is empty when step is a multiple of
// slotCount.
func PlanMultiStep(step, slotCount int, available []int) ([]int, error) {

	if slotCount < 2 || !utils.IsPowerOfTwo(slotCount) {
		return nil, fmt.Errorf("rlwe: slot count %d is not a power of two >= 2", slotCount)
	}

	r := ((step % slotCount) + slotCount) % slotCount
	if r == 0 {
		return nil, nil
	}

	steps := make([]int, 0, len(available))
	for _, s := range available {
		if s < 1 || s >= slotCount {
			return nil, fmt.Errorf("rlwe: available step %d out of range [1, %d)", s, slotCount)
		}
		if !slices.Contains(steps, s) {
			steps = append(steps, s)
		}
	}
	slices.SortFunc(steps, func(a, b int) bool { return a > b })

	planA, okA := greedyPlan(r, steps)
	planB, okB := greedyPlan(r+slotCount, steps)

	switch {
	case okA && (!okB || len(planA) <= len(planB)):
		return planA, nil
	case okB:
		return planB, nil
	default:
		return nil, fmt.Errorf("rlwe: rotation step %d unreachable from available steps %v", step, available)
	}
}

func greedyPlan(target int, sortedDesc []int) ([]int, bool) {
	var plan []int
	for _, s := range sortedDesc {
		for target >= s {
			target -= s
			plan = append(plan, s)
		}
	}
	if target != 0 {
		return nil, false
	}
	return plan, true
}
