package windows

import "github.com/vitalwatch/vitalwatch/vital-golib/signal"

// Label of a future segment.
type Label int

// Event and NonEvent are also the class values written to the Y table.
const (
	Indeterminate Label = -1
	NonEvent      Label = 0
	Event         Label = 1
)

func (l Label) String() string {
	switch l {
	case Event:
		return "event"
	case NonEvent:
		return "non_event"
	default:
		return "indeterminate"
	}
}

// Labeler smooths a future segment and compares it with a threshold.
type Labeler struct {
	Threshold float64
	Window    int
}

// NewLabeler for cfg.
func NewLabeler(cfg Config) Labeler {
	return Labeler{
		Threshold: cfg.Label.Threshold,
		Window:    cfg.SmoothingLen(),
	}
}

// Label is Event when the whole smoothed segment stays below the threshold, NonEvent when it stays above,
// and Indeterminate otherwise.
func (l Labeler) Label(future []float64) Label {
	smoothed := signal.MovingAverage(future, l.Window)
	if len(smoothed) == 0 {
		return Indeterminate
	}
	max, _ := signal.FiniteMax(smoothed)
	min, _ := signal.FiniteMin(smoothed)
	switch {
	case max < l.Threshold:
		return Event
	case min > l.Threshold:
		return NonEvent
	default:
		return Indeterminate
	}
}
