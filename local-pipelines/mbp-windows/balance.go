package main

import (
	"fmt"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/windows"
	"github.com/vitalwatch/vitalwatch/vital-golib/cmdline"
)

var balanceCmd = cmdline.Command{
	Name:     "balance",
	Synopsis: "undersample the majority class of a phase's tables",
	Args: &balanceArgs{
		Phase: "train",
	},
}

type balanceArgs struct {
	Out   string `arg:"--out,required" help:"output directory of prepare"`
	Phase string `arg:"--phase"`
	Seed  int64  `arg:"--seed"`
}

func (args *balanceArgs) Handle() error {
	counts, err := windows.BalanceTables(fs, args.Out, args.Phase, args.Seed)
	if err != nil {
		return err
	}
	fmt.Printf("[before sampling] class counts: %v\n", counts.Before)
	fmt.Printf("[after sampling] class counts: %v\n", counts.After)
	return nil
}
