package windows

import (
	"github.com/vitalwatch/vitalwatch/vital-golib/signal"
)

// Gate applies the data-quality predicates to a window. The future segment gets the cheap checks only;
// the beat validity check runs on the current segment.
type Gate struct {
	cfg     GateConfig
	checker Checker
}

// NewGate for cfg.
func NewGate(cfg Config) Gate {
	return Gate{
		cfg:     cfg.Gate,
		checker: NewChecker(cfg),
	}
}

// Check returns the first failing reason, or "" if the window passes.
func (g Gate) Check(current, future []float64) Reason {
	for _, seg := range [][]float64{current, future} {
		if r := g.basic(seg); r != "" {
			return r
		}
	}
	if !g.checker.Validate(current) {
		return ReasonInvalidBeats
	}
	return ""
}

func (g Gate) basic(seg []float64) Reason {
	if signal.MissingFraction(seg) > g.cfg.MaxMissingFrac {
		return ReasonMissing
	}
	max, ok := signal.FiniteMax(seg)
	if !ok {
		return ReasonMissing
	}
	min, _ := signal.FiniteMin(seg)
	if max > g.cfg.MaxValue || min < g.cfg.MinValue {
		return ReasonOutOfRange
	}
	if r, _ := signal.FiniteRange(seg); r < g.cfg.MinRange {
		return ReasonFlat
	}
	if signal.MaxJump(seg) > g.cfg.MaxJump {
		return ReasonJump
	}
	return ""
}
