// Package beats compares the shape of individual heartbeats against the average beat of their segment.
package beats

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Segments cuts a window-sample slice around every peak. A window is clipped to the data bounds and
// edge-padded back to full width, with the larger half of the padding on the left.
func Segments(data []float64, peaks []int, window int) [][]float64 {
	if window < 1 || len(data) == 0 {
		return nil
	}
	half := window / 2
	segs := make([][]float64, 0, len(peaks))
	for _, p := range peaks {
		lo := p - half
		if lo < 0 {
			lo = 0
		}
		if lim := len(data) - half; lo > lim {
			lo = lim
		}
		if lo < 0 {
			lo = 0
		}
		hi := p + half
		if hi > len(data) {
			hi = len(data)
		}
		if hi <= lo {
			continue
		}
		segs = append(segs, pad(data[lo:hi], window))
	}
	return segs
}

func pad(seg []float64, window int) []float64 {
	out := make([]float64, window)
	n := window - len(seg)
	if n <= 0 {
		copy(out, seg[:window])
		return out
	}
	left := (n + 1) / 2
	for i := range out {
		switch j := i - left; {
		case j < 0:
			out[i] = seg[0]
		case j >= len(seg):
			out[i] = seg[len(seg)-1]
		default:
			out[i] = seg[j]
		}
	}
	return out
}

// Template is the element-wise mean of segs, which must all have the same length.
func Template(segs [][]float64) []float64 {
	if len(segs) == 0 {
		return nil
	}
	mean := make([]float64, len(segs[0]))
	for _, s := range segs {
		for i, v := range s {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(segs))
	}
	return mean
}

// NormalFraction is the fraction of segs whose Pearson correlation with their Template is at least thresh.
// A beat whose correlation is undefined counts as abnormal.
func NormalFraction(segs [][]float64, thresh float64) float64 {
	if len(segs) == 0 {
		return 0
	}
	tmpl := Template(segs)
	var normal int
	for _, s := range segs {
		if r := correlation(tmpl, s); r >= thresh {
			normal++
		}
	}
	return float64(normal) / float64(len(segs))
}

// correlation returns NaN when either side has zero variance.
func correlation(a, b []float64) float64 {
	sa, _ := stats.StandardDeviationPopulation(a)
	sb, _ := stats.StandardDeviationPopulation(b)
	if sa == 0 || sb == 0 {
		return math.NaN()
	}
	r, err := stats.Correlation(a, b)
	if err != nil {
		return math.NaN()
	}
	return r
}
