// Package scoring holds the pure numeric helpers shared by every engine.
// Nothing here touches the clock, the store or the network.
package scoring

import (
	"math"
	"slices"
	"time"
)

// Clamp bounds v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WeightedAverage combines component values by weight, normalising by the
// weights of the components actually present. Components without a weight
// and weights without a component are ignored. Returns 0 when nothing
// overlaps.
func WeightedAverage(values, weights map[string]float64) float64 {
	keys := make([]string, 0, len(values))
	for k := range values {
		if _, ok := weights[k]; ok {
			keys = append(keys, k)
		}
	}
	// fixed summation order keeps results bit-identical between runs
	slices.Sort(keys)

	var sum, total float64
	for _, k := range keys {
		w := weights[k]
		sum += values[k] * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// Entropy is log2(charsetSize^length), computed without the power.
func Entropy(charsetSize, length int) float64 {
	if charsetSize <= 1 || length <= 0 {
		return 0
	}
	return float64(length) * math.Log2(float64(charsetSize))
}

// TimeDecay returns the weight of a signal of the given age under
// exponential decay: 1 at age 0, 0.5 at one half-life.
func TimeDecay(age, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 0
	}
	if age <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(halfLife))
}

// Mean of xs; 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev is the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var acc float64
	for _, x := range xs {
		d := x - m
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(xs)))
}
