package windows

import "sort"

// Reason a window or a case was dropped.
type Reason string

// Window rejections.
const (
	ReasonMissing       Reason = "missing"
	ReasonOutOfRange    Reason = "out_of_range"
	ReasonFlat          Reason = "flat"
	ReasonJump          Reason = "jump"
	ReasonInvalidBeats  Reason = "invalid_beats"
	ReasonIndeterminate Reason = "indeterminate"
)

// Case rejections.
const (
	ReasonCaseUnreadable  Reason = "case_unreadable"
	ReasonCaseImplausible Reason = "case_implausible"
	ReasonCaseTooShort    Reason = "case_too_short"
)

// Counters counts rejections by reason.
type Counters map[Reason]int64

// Inc counts one rejection.
func (c Counters) Inc(r Reason) {
	c[r]++
}

// Add aggregates two Counters; the receiver may be mutated.
func (c Counters) Add(other Counters) Counters {
	if c == nil {
		c = make(Counters, len(other))
	}
	for r, n := range other {
		c[r] += n
	}
	return c
}

// Total number of rejections.
func (c Counters) Total() int64 {
	var total int64
	for _, n := range c {
		total += n
	}
	return total
}

// Reasons with a non-zero count, sorted.
func (c Counters) Reasons() []Reason {
	var rs []Reason
	for r, n := range c {
		if n > 0 {
			rs = append(rs, r)
		}
	}
	sort.Slice(rs, func(i, j int) bool { return rs[i] < rs[j] })
	return rs
}
