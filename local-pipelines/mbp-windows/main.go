package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"

	"github.com/vitalwatch/vitalwatch/local-pipelines/mbp-windows/internal/windows"
	"github.com/vitalwatch/vitalwatch/vital-golib/cmdline"
	"github.com/vitalwatch/vitalwatch/vital-golib/fileutil"
)

// filesystem for every input and output of the commands
var fs afero.Fs = fileutil.OS

func main() {
	cmdline.MustDispatch(prepareCmd, inspectCmd, balanceCmd)
}

// loadConfig returns the defaults, or the defaults overlaid with the YAML file at path.
func loadConfig(path string) (windows.Config, error) {
	if path == "" {
		return windows.DefaultConfig, nil
	}
	return windows.LoadConfig(fs, path)
}

// interruptible returns a context cancelled on SIGINT or SIGTERM.
func interruptible() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
	return ctx, cancel
}
