// Package analyzer implements the closed-form attacker-success model from
// Nakamoto's Section 11 (§4.7): a pure function of attacker share and
// confirmation depth, carrying no simulation state, used to validate
// simulated double-spend outcomes against theory.
package analyzer

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// SuccessProbability returns the probability that an attacker with hash
// power share q eventually catches up and overtakes a chain that is
// already z confirmations ahead, per Nakamoto §11:
//
//	p = 1 - q
//	λ = z * (q/p)
//	P = 1 - Σ_{k=0..z} poisson(k; λ) * (1 - (q/p)^(z-k))
//
// q must be in (0,1); z must be >= 0.
func SuccessProbability(q float64, z int) float64 {
	if q >= 0.5 {
		return 1
	}
	if z <= 0 {
		return 1
	}

	p := 1 - q
	ratio := q / p
	lambda := float64(z) * ratio
	pois := distuv.Poisson{Lambda: lambda}

	var sum float64
	for k := 0; k <= z; k++ {
		sum += pois.Prob(float64(k)) * (1 - math.Pow(ratio, float64(z-k)))
	}
	return 1 - sum
}

// maxSearchConfirmations bounds RequiredConfirmations's linear search, per
// §4.7 ("capped at 1000").
const maxSearchConfirmations = 1000

// RequiredConfirmations returns the smallest z such that
// SuccessProbability(q, z) <= targetP, searching from z=0 upward and
// capping at maxSearchConfirmations. If no such z is found within the cap,
// it returns maxSearchConfirmations.
func RequiredConfirmations(q, targetP float64) int {
	for z := 0; z <= maxSearchConfirmations; z++ {
		if SuccessProbability(q, z) <= targetP {
			return z
		}
	}
	return maxSearchConfirmations
}
