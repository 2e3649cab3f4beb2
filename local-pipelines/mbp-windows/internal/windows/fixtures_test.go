package windows

import (
	"math"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/cases"
)

// testConfig has no prediction gap, so a window spans 80 seconds (8000 samples).
func testConfig() Config {
	cfg := DefaultConfig
	cfg.MinutesAhead = 0
	cfg.NumWorkers = 3
	cfg.PlausibilityFloor = 70
	return cfg
}

var beatGaps = []int{78, 80, 83, 79}

// wave is an arterial-like trace of gaussian beats on a flat baseline.
func wave(n int, baseline, amplitude float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = baseline
	}
	for c, k := 40, 0; c < n; c, k = c+beatGaps[k%len(beatGaps)], k+1 {
		for i := c - 20; i <= c+20; i++ {
			if i < 0 || i >= n {
				continue
			}
			d := float64(i - c)
			xs[i] += amplitude * math.Exp(-d*d/(2*5*5))
		}
	}
	return xs
}

// normalWave never dips near the threshold: every window is a non-event.
func normalWave(n int) []float64 {
	return wave(n, 80, 45)
}

// hypotensiveWave stays below the threshold: every window is an event.
func hypotensiveWave(n int) []float64 {
	return wave(n, 40, 35)
}

func constant(n int, v float64) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = v
	}
	return xs
}

func testCase(id string) cases.Case {
	return cases.Case{
		CaseID: id,
		Age:    63,
		Sex:    "M",
		Weight: 67.5,
		Height: 171.2,
	}
}

// mixedBeatWave is like wave but every beat k with k%normalEvery != 0 is a wide double hump.
// normalEvery <= 0 keeps every beat a single gaussian.
func mixedBeatWave(n int, normalEvery int) []float64 {
	xs := constant(n, 80)
	for c, k := 40, 0; c < n; c, k = c+beatGaps[k%len(beatGaps)], k+1 {
		humped := normalEvery > 0 && k%normalEvery != 0
		for i := c - 30; i <= c+30; i++ {
			if i < 0 || i >= n {
				continue
			}
			d := float64(i - c)
			if humped {
				xs[i] += 36*(math.Exp(-(d-15)*(d-15)/32)+math.Exp(-(d+15)*(d+15)/32)) - 10*math.Exp(-d*d/50)
			} else {
				xs[i] += 45 * math.Exp(-d*d/50)
			}
		}
	}
	return xs
}
