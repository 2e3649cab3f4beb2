package windows

import (
	"image/color"
	"io"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
)

// Window is a persisted sample read back from the output directory.
type Window struct {
	ID      string
	Class   int
	Current []float64
	Future  []float64
}

// LoadWindow finds signalID in the tables of phase under dir and loads its future segment.
func LoadWindow(fs afero.Fs, dir, phase, signalID string) (Window, error) {
	_, xrows, err := readXFile(fs, filepath.Join(dir, XFilename(phase)))
	if err != nil {
		return Window{}, err
	}
	yrows, err := readYFile(fs, filepath.Join(dir, YFilename(phase)))
	if err != nil {
		return Window{}, err
	}

	win := Window{ID: signalID, Class: -1}
	for _, y := range yrows {
		if y.ID == signalID {
			win.Class = y.Class
			break
		}
	}
	for _, row := range xrows {
		if len(row) == 0 || row[0] != signalID {
			continue
		}
		if len(row) < 5 {
			return Window{}, errors.Errorf("%s: short row", signalID)
		}
		for _, cell := range row[5:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Window{}, errors.Wrapf(err, "%s", signalID)
			}
			win.Current = append(win.Current, v)
		}
		break
	}
	if win.Current == nil || win.Class < 0 {
		return Window{}, errors.Errorf("%s not found in %s tables", signalID, phase)
	}

	win.Future, err = NewNPYStore(fs, dir).Load(signalID)
	if err != nil {
		return Window{}, err
	}
	return win, nil
}

// PlotWindow renders the current and future segments of win against time in seconds, the future shifted
// to its real offset, as a PNG.
func PlotWindow(w io.Writer, cfg Config, win Window) error {
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = win.ID + " (" + Label(win.Class).String() + ")"
	p.X.Label.Text = "seconds"
	p.Y.Label.Text = "mmHg"

	rate := float64(cfg.SampleRate)
	current, err := plotter.NewLine(timeSeries(win.Current, 0, rate))
	if err != nil {
		return err
	}
	future, err := plotter.NewLine(timeSeries(win.Future, float64(cfg.FutureOffset())/rate, rate))
	if err != nil {
		return err
	}
	future.Color = color.RGBA{R: 200, A: 255}

	threshold, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: cfg.Label.Threshold},
		{X: float64(cfg.SpanLen()) / rate, Y: cfg.Label.Threshold},
	})
	if err != nil {
		return err
	}
	threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(current, future, threshold)
	p.Legend.Add("current", current)
	p.Legend.Add("future", future)
	p.Legend.Add("threshold", threshold)

	wt, err := p.WriterTo(16*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func timeSeries(xs []float64, start, rate float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i, v := range xs {
		pts[i].X = start + float64(i)/rate
		pts[i].Y = v
	}
	return pts
}

// RenderWindow writes the plot of win to path.
func RenderWindow(fs afero.Fs, path string, cfg Config, win Window) error {
	return fileutil.WriteAtomic(fs, path, func(w io.Writer) error {
		return PlotWindow(w, cfg, win)
	})
}
