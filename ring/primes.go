package ring

import (
	"fmt"
	"math/big"
)

// smallPrimes is the trial-division witness list applied before the
// probabilistic test.
var smallPrimes = []uint64{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61,
	67, 71, 73, 79, 83, 89, 97,
}

// IsPrime reports whether x is prime. ProbablyPrime(0) applies
// Baillie-PSW, which has no known composite below 2^64 passing it.
func IsPrime(x uint64) bool {
	for _, p := range smallPrimes {
		if x == p {
			return true
		}
		if x%p == 0 {
			return false
		}
	}
	if x < smallPrimes[len(smallPrimes)-1] {
		return false
	}
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// GenerateNTTPrimes generates n distinct primes congruent to 1 mod
// nthRoot, close to 2^logQ, alternating between the upward and
// downward search directions. It returns an error when the candidate
// space below the modulus bound is exhausted.
func GenerateNTTPrimes(logQ, nthRoot, n int) ([]uint64, error) {

	if logQ < 2 || logQ > 61 {
		return nil, fmt.Errorf("ring: prime bit-size %d out of range [2, 61]", logQ)
	}
	if nthRoot <= 0 {
		return nil, fmt.Errorf("ring: invalid NthRoot %d", nthRoot)
	}

	var primes []uint64
	step := uint64(nthRoot)
	pow2 := uint64(1) << logQ

	next := pow2 + 1
	prev := pow2 + 1
	checkNext := true
	checkPrev := true

	for len(primes) < n {

		if !checkNext && !checkPrev {
			return nil, fmt.Errorf("ring: cannot generate %d NTT primes of %d bits for NthRoot %d", n, logQ, nthRoot)
		}

		if checkNext {
			if next > MaxModulus-step {
				checkNext = false
			} else {
				next += step
				if IsPrime(next) {
					primes = append(primes, next)
					if len(primes) == n {
						break
					}
				}
			}
		}

		if checkPrev {
			if prev < step {
				checkPrev = false
			} else {
				prev -= step
				if IsPrime(prev) {
					primes = append(primes, prev)
				}
			}
		}
	}

	return primes, nil
}
