package windows

import (
	"io/ioutil"

	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"

	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
)

const (
	currentSeconds = 20
	futureSeconds  = 60
	acceptSeconds  = 30
)

// ValidityConfig configures the beat validity check of the current segment.
type ValidityConfig struct {
	BPMMin float64 `yaml:"bpm_min"`
	BPMMax float64 `yaml:"bpm_max"`
	// Window is the width in samples of the segment cut around each beat.
	Window     int     `yaml:"window"`
	CorrThresh float64 `yaml:"corr_thresh"`
	PctThresh  float64 `yaml:"pct_thresh"`
}

// LabelConfig configures the event labeler.
type LabelConfig struct {
	Threshold float64 `yaml:"threshold"`
	// SmoothingWindow in samples; zero means two seconds.
	SmoothingWindow int `yaml:"smoothing_window"`
}

// GateConfig holds the data-quality thresholds applied to both segments of a window.
type GateConfig struct {
	MaxMissingFrac float64 `yaml:"max_missing_frac"`
	MinValue       float64 `yaml:"min_value"`
	MaxValue       float64 `yaml:"max_value"`
	MinRange       float64 `yaml:"min_range"`
	MaxJump        float64 `yaml:"max_jump"`
}

// Config for building windows. It is passed by value and never mutated once a run starts.
type Config struct {
	SampleRate   int `yaml:"srate"`
	MinutesAhead int `yaml:"minutes_ahead"`
	NumWorkers   int `yaml:"workers"`

	Validity ValidityConfig `yaml:"validity"`
	Label    LabelConfig    `yaml:"label"`
	Gate     GateConfig     `yaml:"gate"`

	// PlausibilityFloor rejects a whole case whose largest sample is below it.
	PlausibilityFloor float64 `yaml:"plausibility_floor"`
	// HotSex is the sex value encoded as 1.
	HotSex string `yaml:"hot_sex"`
}

// DefaultConfig ...
var DefaultConfig = Config{
	SampleRate:   100,
	MinutesAhead: 5,
	NumWorkers:   32,
	Validity: ValidityConfig{
		BPMMin:     30,
		BPMMax:     150,
		Window:     128,
		CorrThresh: 0.8,
		PctThresh:  0.5,
	},
	Label: LabelConfig{
		Threshold: 65,
	},
	Gate: GateConfig{
		MaxMissingFrac: 0.1,
		MinValue:       20,
		MaxValue:       200,
		MinRange:       30,
		MaxJump:        30,
	},
	PlausibilityFloor: 120,
	HotSex:            "M",
}

// CurrentLen is the number of samples in a current segment.
func (c Config) CurrentLen() int { return currentSeconds * c.SampleRate }

// FutureLen is the number of samples in a future segment.
func (c Config) FutureLen() int { return futureSeconds * c.SampleRate }

// FutureOffset is the distance from the window start to the start of its future segment.
func (c Config) FutureOffset() int { return (currentSeconds + c.MinutesAhead*60) * c.SampleRate }

// SpanLen is the distance from the window start to the end of its future segment.
func (c Config) SpanLen() int { return c.FutureOffset() + c.FutureLen() }

// RejectAdvance is how far the cursor moves past a rejected window.
func (c Config) RejectAdvance() int { return c.SampleRate }

// AcceptAdvance is how far the cursor moves past an accepted window.
func (c Config) AcceptAdvance() int { return acceptSeconds * c.SampleRate }

// SmoothingLen is the moving-average width used by the labeler.
func (c Config) SmoothingLen() int {
	if c.Label.SmoothingWindow > 0 {
		return c.Label.SmoothingWindow
	}
	return 2 * c.SampleRate
}

// Validate checks that the configuration can drive a scan.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return errors.Errorf("srate must be positive, got %d", c.SampleRate)
	case c.MinutesAhead < 0:
		return errors.Errorf("minutes_ahead must not be negative, got %d", c.MinutesAhead)
	case c.NumWorkers <= 0:
		return errors.Errorf("workers must be positive, got %d", c.NumWorkers)
	case c.Validity.BPMMin <= 0 || c.Validity.BPMMax < c.Validity.BPMMin:
		return errors.Errorf("invalid bpm range [%v, %v]", c.Validity.BPMMin, c.Validity.BPMMax)
	case c.Validity.Window < 2:
		return errors.Errorf("validity window must be at least 2, got %d", c.Validity.Window)
	case !inUnit(c.Validity.CorrThresh):
		return errors.Errorf("corr_thresh must be in (0, 1], got %v", c.Validity.CorrThresh)
	case !inUnit(c.Validity.PctThresh):
		return errors.Errorf("pct_thresh must be in (0, 1], got %v", c.Validity.PctThresh)
	case c.Label.SmoothingWindow < 0 || c.SmoothingLen() > c.FutureLen():
		return errors.Errorf("smoothing window %d does not fit a %d sample future", c.SmoothingLen(), c.FutureLen())
	case !inUnit(c.Gate.MaxMissingFrac):
		return errors.Errorf("max_missing_frac must be in (0, 1], got %v", c.Gate.MaxMissingFrac)
	case c.Gate.MaxValue <= c.Gate.MinValue:
		return errors.Errorf("invalid value range [%v, %v]", c.Gate.MinValue, c.Gate.MaxValue)
	case c.Gate.MinRange < 0 || c.Gate.MaxJump <= 0:
		return errors.Errorf("min_range and max_jump must be positive, got %v and %v", c.Gate.MinRange, c.Gate.MaxJump)
	}
	return nil
}

func inUnit(v float64) bool {
	return v > 0 && v <= 1
}

// LoadConfig overlays the YAML file at path onto DefaultConfig.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig

	r, err := fileutil.NewReader(fs, path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to open config")
	}
	defer r.Close()

	buf, err := ioutil.ReadAll(r)
	if err != nil {
		return Config{}, errors.Wrapf(err, "error reading %s", path)
	}
	if err := yaml.UnmarshalStrict(buf, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "error parsing %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}
