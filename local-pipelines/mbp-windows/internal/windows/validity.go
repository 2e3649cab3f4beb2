package windows

import (
	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/signal"
	"github.com/vitalwatch/vitalwatch/vital-golib/signal/beats"
	"github.com/vitalwatch/vitalwatch/vital-golib/signal/peaks"
)

// Verdict of the validity check, kept for diagnostics.
type Verdict struct {
	Valid          bool
	Peaks          []int
	BPM            float64
	NormalFraction float64
}

// Checker decides whether a current segment holds a plausible, consistently shaped beat sequence.
type Checker struct {
	cfg  ValidityConfig
	opts peaks.Options
}

// NewChecker for cfg.
func NewChecker(cfg Config) Checker {
	return Checker{
		cfg: cfg.Validity,
		opts: peaks.Options{
			SampleRate: float64(cfg.SampleRate),
			BPMMin:     cfg.Validity.BPMMin,
			BPMMax:     cfg.Validity.BPMMax,
		},
	}
}

// Validate reports whether segment passes Check.
func (c Checker) Validate(segment []float64) bool {
	v, _ := c.Check(segment)
	return v.Valid
}

// Check fills missing samples, detects peaks and compares every beat with the segment's mean beat.
// A detection failure makes the segment invalid; the error is returned for diagnostics only.
func (c Checker) Check(segment []float64) (Verdict, error) {
	filled := signal.FillMissing(segment)
	if signal.MissingFraction(filled) > 0 {
		return Verdict{}, errors.Errorf("segment has no samples")
	}

	res, err := peaks.Detect(filled, c.opts)
	if err != nil {
		return Verdict{}, err
	}
	if len(res.Peaks) == 0 {
		return Verdict{}, errors.Wrapf(peaks.ErrBadSignal, "no peaks")
	}

	segs := beats.Segments(filled, res.Peaks, c.cfg.Window)
	frac := beats.NormalFraction(segs, c.cfg.CorrThresh)
	return Verdict{
		Valid:          frac >= c.cfg.PctThresh,
		Peaks:          res.Peaks,
		BPM:            res.BPM,
		NormalFraction: frac,
	}, nil
}
