package cases

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
)

// UnreadableError is returned when a case's trace is missing or corrupt. The case is skipped.
type UnreadableError struct {
	CaseID string
	Err    error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("case %s unreadable: %v", e.CaseID, e.Err)
}

// Unwrap returns the underlying error.
func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// IsUnreadable reports whether err is, or wraps, an UnreadableError.
func IsUnreadable(err error) bool {
	var u *UnreadableError
	return errors.As(err, &u)
}

// TraceSource returns the raw samples of a case.
type TraceSource interface {
	Load(caseID string) ([]float64, error)
}

// TraceLoader reads traces stored as <Dir>/<caseid>.csv.
type TraceLoader struct {
	FS  afero.Fs
	Dir string
}

// NewTraceLoader returns a loader over dir on fs.
func NewTraceLoader(fs afero.Fs, dir string) TraceLoader {
	return TraceLoader{FS: fs, Dir: dir}
}

// Path of the trace for caseID.
func (l TraceLoader) Path(caseID string) string {
	return filepath.Join(l.Dir, caseID+".csv")
}

// Load implements TraceSource. Every failure is an *UnreadableError.
func (l TraceLoader) Load(caseID string) ([]float64, error) {
	r, err := fileutil.NewReader(l.FS, l.Path(caseID))
	if err != nil {
		return nil, &UnreadableError{CaseID: caseID, Err: err}
	}
	defer r.Close()

	xs, err := ReadTrace(r)
	if err != nil {
		return nil, &UnreadableError{CaseID: caseID, Err: err}
	}
	return xs, nil
}

// Sample is one trace value. Empty cells and "nan" (any case) are missing; anything else must parse.
type Sample float64

// UnmarshalCSV implements gocsv.TypeUnmarshaller
func (s *Sample) UnmarshalCSV(cell string) error {
	cell = strings.TrimSpace(cell)
	if cell == "" || strings.EqualFold(cell, "nan") {
		*s = Sample(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return err
	}
	*s = Sample(v)
	return nil
}

type traceRow struct {
	Value Sample `csv:"value"`
}

// ReadTrace parses a headerless trace with one sample per line. Blank lines are skipped.
func ReadTrace(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 1

	var rows []traceRow
	if err := gocsv.UnmarshalCSVWithoutHeaders(cr, &rows); err != nil {
		return nil, errors.Wrapf(err, "error parsing trace")
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("empty trace")
	}

	xs := make([]float64, len(rows))
	for i, row := range rows {
		xs[i] = float64(row.Value)
	}
	return xs, nil
}

// MemTraces is an in-memory TraceSource; a case without an entry is unreadable.
type MemTraces map[string][]float64

// Load implements TraceSource
func (m MemTraces) Load(caseID string) ([]float64, error) {
	xs, ok := m[caseID]
	if !ok {
		return nil, &UnreadableError{CaseID: caseID, Err: errors.Errorf("no trace")}
	}
	return xs, nil
}
