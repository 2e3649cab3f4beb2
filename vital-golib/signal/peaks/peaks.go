// Package peaks finds heartbeat peaks in an arterial pressure waveform.
//
// The detector compares the signal against its own 0.75s rolling mean raised by a range of lifts, keeps the
// maximum of each region above the raised mean, and picks the lift whose beat intervals are most regular
// while the heart rate stays plausible.
package peaks

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/signal"
)

// ErrBadSignal is returned when no lift yields a plausible set of peaks.
var ErrBadSignal = errors.Sentinel("peaks: could not find a plausible beat sequence")

// Lifts are the rolling-mean raises tried, in percent of the mean of the rolling mean.
var Lifts = []float64{5, 10, 15, 20, 25, 30, 40, 50, 60, 70, 80, 90, 100, 110, 120, 150, 200, 300}

const (
	windowSeconds = 0.75
	// a peak this early (in ms) is likely a cut-off beat
	leadingPeakMs = 150
)

// Options configures Detect.
type Options struct {
	SampleRate float64
	BPMMin     float64
	BPMMax     float64
}

// DefaultOptions for a 100Hz arterial trace.
func DefaultOptions() Options {
	return Options{
		SampleRate: 100,
		BPMMin:     30,
		BPMMax:     150,
	}
}

// Result is the peak set chosen by Detect.
type Result struct {
	// Peaks are sample indices, ascending.
	Peaks []int
	BPM   float64
	// RRSD is the population standard deviation of the beat intervals, in ms.
	RRSD float64
	// Lift is the percentage applied to the rolling mean for the chosen peak set.
	Lift float64
}

// Detect finds peaks in xs, which must contain no missing samples. Any failure, including a panic in the
// numeric code, is reported as an error wrapping ErrBadSignal.
func Detect(xs []float64, opts Options) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, errors.Wrapf(ErrBadSignal, "recovered: %v", r)
		}
	}()

	if opts.SampleRate <= 0 {
		return Result{}, fmt.Errorf("peaks: sample rate must be positive, got %v", opts.SampleRate)
	}
	if len(xs) == 0 {
		return Result{}, errors.Wrapf(ErrBadSignal, "empty signal")
	}
	for _, v := range xs {
		if signal.IsMissing(v) {
			return Result{}, errors.Wrapf(ErrBadSignal, "signal has missing samples")
		}
	}

	rolmean := RollingMean(xs, int(windowSeconds*opts.SampleRate))
	base := signal.Mean(rolmean)

	best := Result{RRSD: math.Inf(1)}
	found := false
	for _, lift := range Lifts {
		raise := base / 100 * lift
		peaks := findPeaks(xs, rolmean, raise, opts.SampleRate)

		bpm := float64(len(peaks)) / (float64(len(xs)) / opts.SampleRate) * 60
		rrsd := rrStdDev(peaks, opts.SampleRate)

		if rrsd <= 0.1 || bpm < opts.BPMMin || bpm > opts.BPMMax {
			continue
		}
		if !found || rrsd < best.RRSD {
			best = Result{Peaks: peaks, BPM: bpm, RRSD: rrsd, Lift: lift}
			found = true
		}
	}
	if !found {
		return Result{}, errors.Wrapf(ErrBadSignal, "no lift in %v%% gave %v-%v bpm", Lifts, opts.BPMMin, opts.BPMMax)
	}
	return best, nil
}

// RollingMean is the centered mean over windows of width n, padded at both ends with the first and last
// window mean so the output has the length of xs.
func RollingMean(xs []float64, n int) []float64 {
	if n < 1 {
		n = 1
	}
	if n > len(xs) {
		n = len(xs)
	}
	means := signal.MovingAverage(xs, n)
	out := make([]float64, len(xs))
	if len(means) == 0 {
		return out
	}

	head := (len(xs) - len(means)) / 2
	for i := range out {
		switch j := i - head; {
		case j < 0:
			out[i] = means[0]
		case j >= len(means):
			out[i] = means[len(means)-1]
		default:
			out[i] = means[j]
		}
	}
	return out
}

// findPeaks returns the index of the maximum of every contiguous run where xs exceeds rolmean+raise.
func findPeaks(xs, rolmean []float64, raise, fs float64) []int {
	var peaks []int
	start := -1
	flush := func(end int) {
		best := start
		for i := start + 1; i < end; i++ {
			if xs[i] > xs[best] {
				best = i
			}
		}
		peaks = append(peaks, best)
		start = -1
	}
	for i, v := range xs {
		above := v > rolmean[i]+raise
		switch {
		case above && start < 0:
			start = i
		case !above && start >= 0:
			flush(i)
		}
	}
	if start >= 0 {
		flush(len(xs))
	}

	if len(peaks) > 0 && float64(peaks[0]) <= fs/1000*leadingPeakMs {
		peaks = peaks[1:]
	}
	return peaks
}

// rrStdDev is the population standard deviation of the peak intervals in ms, +Inf with fewer than two peaks.
func rrStdDev(peaks []int, fs float64) float64 {
	if len(peaks) < 2 {
		return math.Inf(1)
	}
	rr := make(stats.Float64Data, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		rr = append(rr, float64(peaks[i]-peaks[i-1])/fs*1000)
	}
	sd, err := stats.StandardDeviationPopulation(rr)
	if err != nil {
		return math.Inf(1)
	}
	return sd
}
