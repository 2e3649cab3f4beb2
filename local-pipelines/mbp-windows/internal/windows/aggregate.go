package windows

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/cases"
	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
)

// Output of a run: samples ordered by shard, then by scan order within the shard.
type Output struct {
	Samples   []Sample
	Counters  Counters
	Cases     int
	Events    int
	NonEvents int
	Elapsed   time.Duration
}

// Aggregate concatenates shard results in shard order. Results must be indexed by shard.
func Aggregate(results []ShardResult) Output {
	out := Output{Counters: make(Counters)}
	for _, r := range results {
		out.Samples = append(out.Samples, r.Samples...)
		out.Counters = out.Counters.Add(r.Counters)
		out.Cases += r.Cases
		out.Events += r.Events
		out.NonEvents += r.NonEvents
	}
	return out
}

// Table file names for a phase.
func XFilename(phase string) string    { return fmt.Sprintf("x_%s.csv", phase) }
func YFilename(phase string) string    { return fmt.Sprintf("y_%s.csv", phase) }
func DoneFilename(phase string) string { return fmt.Sprintf("DONE_%s", phase) }

// YRow is one row of the label table.
type YRow struct {
	ID    string `csv:"id"`
	Class int    `csv:"class"`
}

// Summary is written to the DONE marker of a phase.
type Summary struct {
	Phase      string           `yaml:"phase"`
	Cases      int              `yaml:"cases"`
	Samples    int              `yaml:"samples"`
	Events     int              `yaml:"events"`
	NonEvents  int              `yaml:"non_events"`
	Rejections map[string]int64 `yaml:"rejections"`
}

// Summarize out for phase.
func Summarize(phase string, out Output) Summary {
	rej := make(map[string]int64)
	for _, r := range out.Counters.Reasons() {
		rej[string(r)] = out.Counters[r]
	}
	return Summary{
		Phase:      phase,
		Cases:      out.Cases,
		Samples:    len(out.Samples),
		Events:     out.Events,
		NonEvents:  out.NonEvents,
		Rejections: rej,
	}
}

// XHeader for current segments of n samples.
func XHeader(n int) []string {
	header := []string{"id", "age", "sex", "weight", "height"}
	for i := 0; i < n; i++ {
		header = append(header, "sample_"+strconv.Itoa(i))
	}
	return header
}

// WriteX writes the feature table of samples, whose current segments all have n samples.
func WriteX(w io.Writer, n int, samples []Sample) error {
	cw := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	cw.Write(XHeader(n))

	row := make([]string, 0, 5+n)
	for _, s := range samples {
		if len(s.Current) != n {
			return errors.Errorf("sample %s has %d current samples, expected %d", s.ID, len(s.Current), n)
		}
		row = append(row[:0], s.ID,
			cases.FormatFloat(s.Age), cases.FormatFloat(s.Sex),
			cases.FormatFloat(s.Weight), cases.FormatFloat(s.Height))
		for _, v := range s.Current {
			row = append(row, cases.FormatFloat(v))
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// WriteY writes the label table of samples.
func WriteY(w io.Writer, samples []Sample) error {
	rows := make([]YRow, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, YRow{ID: s.ID, Class: int(s.Class)})
	}
	return gocsv.Marshal(&rows, w)
}

// WriteTables writes the X and Y tables of a phase to dir, each through a temporary file, and then the
// DONE marker. A phase with a marker is complete.
func WriteTables(fs afero.Fs, dir, phase string, cfg Config, out Output) error {
	err := fileutil.WriteAtomic(fs, filepath.Join(dir, XFilename(phase)), func(w io.Writer) error {
		return WriteX(w, cfg.CurrentLen(), out.Samples)
	})
	if err != nil {
		return err
	}

	err = fileutil.WriteAtomic(fs, filepath.Join(dir, YFilename(phase)), func(w io.Writer) error {
		return WriteY(w, out.Samples)
	})
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(fs, filepath.Join(dir, DoneFilename(phase)), func(w io.Writer) error {
		buf, err := yaml.Marshal(Summarize(phase, out))
		if err != nil {
			return err
		}
		_, err = w.Write(buf)
		return err
	})
}

// PhaseDone reports whether the tables of phase were completely written to dir.
func PhaseDone(fs afero.Fs, dir, phase string) (bool, error) {
	return fileutil.Exists(fs, filepath.Join(dir, DoneFilename(phase)))
}

// ReadY reads a label table.
func ReadY(r io.Reader) ([]YRow, error) {
	var rows []YRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrapf(err, "error parsing label table")
	}
	return rows, nil
}

// ReadX reads a feature table as its header and raw records.
func ReadX(r io.Reader) ([]string, [][]string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "error parsing feature table")
	}
	if len(records) == 0 {
		return nil, nil, errors.Errorf("feature table has no header")
	}
	return records[0], records[1:], nil
}

// LogSummary logs the totals of a phase.
func LogSummary(logger *zap.Logger, phase string, out Output) {
	fields := []zap.Field{
		zap.String("phase", phase),
		zap.String("cases", humanize.Comma(int64(out.Cases))),
		zap.String("samples", humanize.Comma(int64(len(out.Samples)))),
		zap.Int("events", out.Events),
		zap.Int("non_events", out.NonEvents),
		zap.Duration("elapsed", out.Elapsed),
	}
	if n := len(out.Samples); n > 0 {
		fields = append(fields, zap.Float64("event_pct", float64(out.Events)*100/float64(n)))
	}
	for _, r := range out.Counters.Reasons() {
		fields = append(fields, zap.Int64("rejected_"+string(r), out.Counters[r]))
	}
	logger.Info("phase complete", fields...)
}
