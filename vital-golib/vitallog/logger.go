package vitallog

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures New.
type Options struct {
	// Debug enables debug-level output.
	Debug bool
	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a JSON logger with RFC3339 timestamps and caller information that writes warnings
// and errors to Stderr and everything below warn level to Stdout.
func New(opts Options) *zap.Logger {
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	minLevel := zapcore.InfoLevel
	if opts.Debug {
		minLevel = zapcore.DebugLevel
	}

	isWarnLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.WarnLevel
	})
	isInfoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= minLevel && lvl < zapcore.WarnLevel
	})

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewJSONEncoder(config)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stderr)), isWarnLevel),
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stdout)), isInfoLevel),
	)
	return zap.New(core, zap.AddCaller())
}

// Interface is the printf-style subset used by code that reports progress lines.
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Printer adapts a zap logger to Interface, logging each line at info level.
type Printer struct {
	L *zap.Logger
}

// Printf implements Interface
func (p Printer) Printf(format string, v ...interface{}) {
	p.L.WithOptions(zap.AddCallerSkip(1)).Info(fmt.Sprintf(format, v...))
}

// Println implements Interface
func (p Printer) Println(v ...interface{}) {
	p.L.WithOptions(zap.AddCallerSkip(1)).Info(fmt.Sprint(v...))
}
