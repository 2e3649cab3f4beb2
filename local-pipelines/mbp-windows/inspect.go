package main

import (
	"fmt"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/windows"
	"github.com/vitalwatch/vitalwatch/vital-golib/cmdline"
)

var inspectCmd = cmdline.Command{
	Name:     "inspect",
	Synopsis: "plot the current and future segments of a window",
	Args: &inspectArgs{
		Phase: "train",
	},
}

type inspectArgs struct {
	Out    string `arg:"--out,required" help:"output directory of prepare"`
	Phase  string `arg:"--phase"`
	ID     string `arg:"--id,required" help:"signal id, <caseid>_<seconds>"`
	PNG    string `arg:"--png,required" help:"image to write"`
	Config string `arg:"--config" help:"configuration used by prepare"`
}

func (args *inspectArgs) Handle() error {
	cfg, err := loadConfig(args.Config)
	if err != nil {
		return err
	}

	win, err := windows.LoadWindow(fs, args.Out, args.Phase, args.ID)
	if err != nil {
		return err
	}
	if err := windows.RenderWindow(fs, args.PNG, cfg, win); err != nil {
		return err
	}

	fmt.Printf("%s (%s) -> %s\n", win.ID, windows.Label(win.Class), args.PNG)
	return nil
}
