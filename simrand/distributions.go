// Package simrand centralizes every random-variate draw the simulator
// makes, on top of gonum's stat/distuv, so that every sampling site names
// the distribution it draws from instead of hand-rolling inverse-CDF
// arithmetic. The exponential PoW-duration draw is the one the core
// depends on directly (§4.3); the rest back the external Workload
// Generator and link-bandwidth collaborators named in §1's Non-goals.
package simrand

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// PoWDuration draws a proof-of-work solve time for a node whose hash power
// is hashPower hashes/sec and whose operating difficulty (expected hashes
// to win) is difficulty. The solve time is exponentially distributed with
// rate = hashPower/difficulty, matching Bitcoin's memoryless block-finding
// process (§4.3, §4.6 rationale for not re-sampling in-flight PoW).
func PoWDuration(rng *rand.Rand, hashPower, difficulty float64) float64 {
	rate := hashPower / difficulty
	if rate <= 0 {
		return math.Inf(1)
	}
	return distuv.Exponential{Rate: rate, Src: rng}.Rand()
}

// InterArrival draws the time until the next transaction arrival for a
// Poisson process with the given lambda (workload.lambda, §6).
func InterArrival(rng *rand.Rand, lambda float64) float64 {
	if lambda <= 0 {
		return math.Inf(1)
	}
	return distuv.Exponential{Rate: lambda, Src: rng}.Rand()
}

// PositiveNormal draws from Normal(mean, sd) and clamps the result to be
// at least 1, so transaction sizes, fees and hash-power draws never come
// out non-positive (workload.txSizeMean/SD, txFeeValueMean/SD,
// pow.hashPowerMean/SD, §6).
func PositiveNormal(rng *rand.Rand, mean, sd float64) float64 {
	if sd <= 0 {
		return math.Max(mean, 1)
	}
	v := distuv.Normal{Mu: mean, Sigma: sd, Src: rng}.Rand()
	if v < 1 {
		return 1
	}
	return v
}

// LogNormalLatency draws a positive value from a LogNormal fit to the
// given mean/SD. The out-of-core link-bandwidth model uses it as the link
// throughput (net.throughputMean/SD, §6) and turns it into a delay; the
// core only ever sees that delay through the netlink.Link interface.
func LogNormalLatency(rng *rand.Rand, mean, sd float64) float64 {
	if mean <= 0 {
		mean = 1
	}
	if sd <= 0 {
		sd = mean / 4
	}
	// Method-of-moments fit of a LogNormal to the requested mean/SD.
	variance := sd * sd
	mu := math.Log(mean*mean / math.Sqrt(variance+mean*mean))
	sigma := math.Sqrt(math.Log(1 + variance/(mean*mean)))
	return distuv.LogNormal{Mu: mu, Sigma: sigma, Src: rng}.Rand()
}

// Bernoulli reports true with probability p.
func Bernoulli(rng *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return rng.Float64() < p
}
