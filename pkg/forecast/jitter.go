package forecast

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
)

const (
	jitterMin  = 0.95
	jitterSpan = 0.10
	confMin    = 0.85
	confSpan   = 0.10
)

// Seed is the 32-bit FNV-1a hash of product+season+weather, concatenated
// without separators.
func Seed(product, season, weather string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(product))
	h.Write([]byte(season))
	h.Write([]byte(weather))
	return h.Sum32()
}

// Jitter returns the multiplicative perturbation in [0.95, 1.05] for the
// triple. The generator is seeded per call so the value depends on the
// inputs alone.
func Jitter(product, season, weather string) float64 {
	r := rand.New(rand.NewPCG(uint64(Seed(product, season, weather)), 0))
	return jitterMin + jitterSpan*r.Float64()
}

// RandomConfidence draws an unseeded confidence value in [0.85, 0.95],
// rounded to 2 decimals.
func RandomConfidence() float64 {
	return round2(confMin + confSpan*rand.Float64())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
