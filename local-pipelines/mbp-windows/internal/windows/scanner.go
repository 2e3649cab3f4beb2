package windows

import (
	"context"
	"fmt"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/cases"
	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/signal"
)

// Sample is an accepted, labeled window. Its future segment has already been persisted under ID.
type Sample struct {
	ID     string
	CaseID string
	// Offset of the window in the trimmed trace, in samples.
	Offset int

	Age    float64
	Sex    float64
	Weight float64
	Height float64

	// Current is the filled current segment.
	Current []float64
	Class   Label
}

// CaseResult of scanning one case.
type CaseResult struct {
	CaseID    string
	Samples   []Sample
	Counters  Counters
	Events    int
	NonEvents int
}

// EventPct is the share of events among the accepted samples, in percent.
func (r CaseResult) EventPct() float64 {
	if len(r.Samples) == 0 {
		return 0
	}
	return float64(r.Events) * 100 / float64(len(r.Samples))
}

// Scanner slides a window over a case's trace and keeps the windows that pass the gate and get a label.
type Scanner struct {
	cfg     Config
	gate    Gate
	labeler Labeler
	store   FutureStore
}

// NewScanner that persists future segments to store.
func NewScanner(cfg Config, store FutureStore) *Scanner {
	return &Scanner{
		cfg:     cfg,
		gate:    NewGate(cfg),
		labeler: NewLabeler(cfg),
		store:   store,
	}
}

// SignalID of the window starting at offset in the trace of caseID.
func (s *Scanner) SignalID(caseID string, offset int) string {
	return fmt.Sprintf("%s_%d", caseID, offset/s.cfg.SampleRate)
}

// ScanCase scans trace, which belongs to c. A rejected window moves the cursor one second, an accepted one
// thirty seconds. The future segment of an accepted window is saved before the window is added to the
// result; a failed save stops the scan and returns the samples accepted so far with the error.
func (s *Scanner) ScanCase(ctx context.Context, c cases.Case, trace []float64) (CaseResult, error) {
	res := CaseResult{
		CaseID:   c.CaseID,
		Counters: make(Counters),
	}

	trace = signal.TrimMissing(trace)
	if max, ok := signal.FiniteMax(trace); !ok || max < s.cfg.PlausibilityFloor {
		res.Counters.Inc(ReasonCaseImplausible)
		return res, nil
	}

	span := s.cfg.SpanLen()
	if len(trace) <= span {
		res.Counters.Inc(ReasonCaseTooShort)
		return res, nil
	}

	curLen, futOffset := s.cfg.CurrentLen(), s.cfg.FutureOffset()
	for i := 0; i < len(trace)-span; {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		current := trace[i : i+curLen]
		future := trace[i+futOffset : i+span]

		if reason := s.gate.Check(current, future); reason != "" {
			res.Counters.Inc(reason)
			i += s.cfg.RejectAdvance()
			continue
		}

		label := s.labeler.Label(future)
		if label == Indeterminate {
			res.Counters.Inc(ReasonIndeterminate)
			i += s.cfg.RejectAdvance()
			continue
		}

		id := s.SignalID(c.CaseID, i)
		if err := s.store.Save(id, signal.FillMissing(future)); err != nil {
			return res, errors.Wrapf(err, "case %s", c.CaseID)
		}

		res.Samples = append(res.Samples, Sample{
			ID:      id,
			CaseID:  c.CaseID,
			Offset:  i,
			Age:     float64(c.Age),
			Sex:     c.SexValue(s.cfg.HotSex),
			Weight:  float64(c.Weight),
			Height:  float64(c.Height),
			Current: signal.FillMissing(current),
			Class:   label,
		})
		if label == Event {
			res.Events++
		} else {
			res.NonEvents++
		}
		i += s.cfg.AcceptAdvance()
	}
	return res, nil
}
