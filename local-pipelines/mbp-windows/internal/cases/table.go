package cases

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
)

// Covariate is a numeric demographic value; an empty or unparseable cell is missing (NaN).
type Covariate float64

// UnmarshalCSV implements gocsv.TypeUnmarshaller
func (c *Covariate) UnmarshalCSV(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*c = Covariate(math.NaN())
		return nil
	}
	*c = Covariate(v)
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller
func (c Covariate) MarshalCSV() (string, error) {
	return FormatFloat(float64(c)), nil
}

// FormatFloat is the shortest representation that round-trips v; NaN is written as "NaN".
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Case is one row of the case table.
type Case struct {
	CaseID string    `csv:"caseid"`
	Age    Covariate `csv:"age"`
	Sex    string    `csv:"sex"`
	Weight Covariate `csv:"weight"`
	Height Covariate `csv:"height"`
}

// SexValue encodes Sex as 1 when it equals hot and 0 otherwise.
func (c Case) SexValue(hot string) float64 {
	if c.Sex == hot {
		return 1
	}
	return 0
}

// ReadTable parses a case table. Every row needs a non-empty caseid and caseids must be unique.
func ReadTable(r io.Reader) ([]Case, error) {
	var rows []*Case
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrapf(err, "error parsing case table")
	}

	seen := make(map[string]int, len(rows))
	cases := make([]Case, 0, len(rows))
	for i, row := range rows {
		row.CaseID = strings.TrimSpace(row.CaseID)
		row.Sex = strings.TrimSpace(row.Sex)
		if row.CaseID == "" {
			return nil, errors.Errorf("case table row %d: missing caseid", i+1)
		}
		if prev, ok := seen[row.CaseID]; ok {
			return nil, errors.Errorf("case table rows %d and %d: duplicate caseid %s", prev+1, i+1, row.CaseID)
		}
		seen[row.CaseID] = i
		cases = append(cases, *row)
	}
	return cases, nil
}

// LoadTable reads the case table at path.
func LoadTable(fs afero.Fs, path string) ([]Case, error) {
	r, err := fileutil.NewReader(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open case table")
	}
	defer r.Close()

	cases, err := ReadTable(r)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return cases, nil
}
