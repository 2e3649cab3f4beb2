package main

import (
	"path/filepath"
	"time"

	humanize "github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/cases"
	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/windows"
	"github.com/vitalwatch/vitalwatch/vital-golib/cmdline"
	"github.com/vitalwatch/vitalwatch/vital-golib/errors"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
	"github.com/vitalwatch/vitalwatch/vital-golib/vitallog"
)

var prepareCmd = cmdline.Command{
	Name:     "prepare",
	Synopsis: "build the train and val window tables from a case table and its traces",
	Args: &prepareArgs{
		ValFrac: 0.2,
		Seed:    cases.DefaultSeed,
	},
}

type prepareArgs struct {
	Cases    string  `arg:"--cases,required" help:"case table csv (caseid,age,sex,weight,height)"`
	Data     string  `arg:"--data,required" help:"directory holding <caseid>.csv traces"`
	Out      string  `arg:"--out,required" help:"output directory"`
	Config   string  `arg:"--config" help:"yaml file overriding the default configuration"`
	Workers  int     `arg:"--workers" help:"number of shards and workers, overrides the config"`
	ValFrac  float64 `arg:"--val-frac" help:"fraction of cases held out for validation"`
	Seed     int64   `arg:"--seed" help:"seed of the train/val split"`
	Force    bool    `arg:"--force" help:"rebuild phases that are already done"`
	Progress bool    `arg:"--progress" help:"show a progress bar"`
	Debug    bool    `arg:"--debug" help:"debug logging"`

	logger *zap.Logger `arg:"-"`
}

func (args *prepareArgs) Validate() error {
	if args.ValFrac < 0 || args.ValFrac >= 1 {
		return errors.Errorf("--val-frac must be in [0, 1), got %v", args.ValFrac)
	}
	if args.Workers < 0 {
		return errors.Errorf("--workers must not be negative, got %d", args.Workers)
	}
	return nil
}

func (args *prepareArgs) Handle() error {
	logger := args.logger
	if logger == nil {
		logger = vitallog.New(vitallog.Options{Debug: args.Debug})
		defer logger.Sync()
	}

	cfg, err := loadConfig(args.Config)
	if err != nil {
		return err
	}
	if args.Workers > 0 {
		cfg.NumWorkers = args.Workers
	}

	table, err := cases.LoadTable(fs, args.Cases)
	if err != nil {
		return err
	}
	train, val := cases.Split(table, args.ValFrac, args.Seed)
	logger.Info("loaded case table",
		zap.String("path", args.Cases),
		zap.Int("train", len(train)),
		zap.Int("val", len(val)))

	engine, err := windows.NewEngine(windows.Options{
		Config:   cfg,
		Traces:   cases.NewTraceLoader(fs, args.Data),
		Store:    windows.NewNPYStore(fs, args.Out),
		Logger:   logger,
		Progress: args.Progress,
	})
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	var durations vitallog.Durations
	phases := []struct {
		name  string
		table []cases.Case
	}{
		{"train", train},
		{"val", val},
	}
	for _, phase := range phases {
		done, err := windows.PhaseDone(fs, args.Out, phase.name)
		if err != nil {
			return err
		}
		if done && !args.Force {
			logger.Info("phase already done, skipping", zap.String("phase", phase.name))
			continue
		}

		start := time.Now()
		out, err := engine.Run(ctx, phase.table)
		if err != nil {
			return errors.Wrapf(err, "phase %s", phase.name)
		}
		if err := windows.WriteTables(fs, args.Out, phase.name, cfg, out); err != nil {
			return errors.Wrapf(err, "phase %s", phase.name)
		}
		durations.Since(phase.name, start)

		windows.LogSummary(logger, phase.name, out)
		if size, err := fileutil.Size(fs, filepath.Join(args.Out, windows.XFilename(phase.name))); err == nil {
			logger.Info("wrote tables",
				zap.String("phase", phase.name),
				zap.String("dir", args.Out),
				zap.String("x_size", humanize.Bytes(uint64(size))))
		}
	}

	durations.Flush(vitallog.Printer{L: logger})
	return nil
}
