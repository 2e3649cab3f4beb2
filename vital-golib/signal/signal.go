// Package signal holds NaN-aware primitives over sampled physiological traces. A missing sample is math.NaN().
package signal

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Missing is the value used for a missing sample.
var Missing = math.NaN()

// IsMissing reports whether v is a missing (or non-finite) sample.
func IsMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Finite returns the non-missing samples of xs in order.
func Finite(xs []float64) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(xs))
	for _, v := range xs {
		if !IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

// MissingFraction is the share of missing samples in xs; an empty slice counts as fully missing.
func MissingFraction(xs []float64) float64 {
	if len(xs) == 0 {
		return 1
	}
	var n int
	for _, v := range xs {
		if IsMissing(v) {
			n++
		}
	}
	return float64(n) / float64(len(xs))
}

// FiniteMax is the largest non-missing sample; ok is false when there is none.
func FiniteMax(xs []float64) (max float64, ok bool) {
	max, err := stats.Max(Finite(xs))
	if err != nil {
		return 0, false
	}
	return max, true
}

// FiniteMin is the smallest non-missing sample; ok is false when there is none.
func FiniteMin(xs []float64) (min float64, ok bool) {
	min, err := stats.Min(Finite(xs))
	if err != nil {
		return 0, false
	}
	return min, true
}

// FiniteRange is max-min over the non-missing samples; ok is false when there is none.
func FiniteRange(xs []float64) (float64, bool) {
	finite := Finite(xs)
	max, err := stats.Max(finite)
	if err != nil {
		return 0, false
	}
	min, _ := stats.Min(finite)
	return max - min, true
}

// MaxJump is the largest absolute difference between consecutive non-missing samples, skipping over gaps.
func MaxJump(xs []float64) float64 {
	var jump float64
	prev, seen := 0.0, false
	for _, v := range xs {
		if IsMissing(v) {
			continue
		}
		if seen {
			if d := math.Abs(v - prev); d > jump {
				jump = d
			}
		}
		prev, seen = v, true
	}
	return jump
}

// FillMissing returns a copy of xs with missing samples forward-filled from the previous sample, and any
// leading run back-filled from the first present sample. An all-missing input comes back unchanged.
func FillMissing(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)

	first := -1
	for i, v := range out {
		if IsMissing(v) {
			if first >= 0 {
				out[i] = out[i-1]
			}
			continue
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return out
	}
	for i := 0; i < first; i++ {
		out[i] = out[first]
	}
	return out
}

// TrimMissing drops the leading and trailing missing runs of xs. The result aliases xs.
func TrimMissing(xs []float64) []float64 {
	lo, hi := 0, len(xs)
	for lo < hi && IsMissing(xs[lo]) {
		lo++
	}
	for hi > lo && IsMissing(xs[hi-1]) {
		hi--
	}
	return xs[lo:hi]
}

// MovingAverage is the trailing mean of width n. Missing samples contribute zero to the running sum, so
// the output has len(xs)-n+1 values; it is empty when n < 1 or n > len(xs).
func MovingAverage(xs []float64, n int) []float64 {
	if n < 1 || n > len(xs) {
		return nil
	}
	cum := make([]float64, len(xs)+1)
	for i, v := range xs {
		if IsMissing(v) {
			v = 0
		}
		cum[i+1] = cum[i] + v
	}
	out := make([]float64, len(xs)-n+1)
	for i := range out {
		out[i] = (cum[i+n] - cum[i]) / float64(n)
	}
	return out
}

// Mean is the arithmetic mean of xs, NaN when xs is empty.
func Mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return math.NaN()
	}
	return m
}
