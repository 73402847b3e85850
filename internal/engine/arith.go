package engine

import (
	"math"
)

// maxSquarable is the largest value whose square fits in uint32.
const maxSquarable = 65535

// SatSquare returns p*p, saturating at math.MaxUint32 instead of wrapping.
func SatSquare(p uint32) uint32 {
	if p > maxSquarable {
		return math.MaxUint32
	}

	return p * p
}

// SatAdd returns a+b, saturating at math.MaxUint32 instead of wrapping.
func SatAdd(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}

	return a + b
}

// EstimatePrimeCount returns an upper estimate of π(limit) used to reserve
// prime list capacity up front.
func EstimatePrimeCount(limit uint32) int {
	if limit < 17 {
		return 7
	}
	n := float64(limit)

	// Rosser-Schoenfeld: π(x) < 1.25506 x / ln x for x > 1.
	return int(1.25506*n/math.Log(n)) + 1
}
