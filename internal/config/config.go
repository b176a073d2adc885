// Package config handles application configuration and setup
package config

import (
	"github.com/mnafees/chopper/v2/internal"
	"github.com/retroenv/retrogolib/log"
)

// Default host settings
const (
	DefaultIPS   = 700
	DefaultScale = 10
)

// Options contains the settings shared by all front ends
type Options struct {
	Input   string // ROM file to run
	Variant string // variant name as accepted by internal.ParseVariant
	IPS     int    // instructions executed per second
	Seed    int64  // RND seed, 0 picks one from the clock
	Scale   int    // window pixels per physical display pixel
	Cycles  int    // headless runner: instructions to execute
	Volume  float64
	Trace   bool // log every executed instruction
	Debug   bool
	Quiet   bool
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// NewMachine creates a machine configured by the options and loads the input ROM
func NewMachine(opts Options, logger *log.Logger) (*internal.C8VM, error) {
	variant, err := internal.ParseVariant(opts.Variant)
	if err != nil {
		return nil, err
	}

	vmOpts := []internal.Option{internal.WithLogger(logger)}
	if opts.Seed != 0 {
		vmOpts = append(vmOpts, internal.WithSeed(opts.Seed))
	}
	vm, err := internal.NewC8VM(vmOpts...)
	if err != nil {
		return nil, err
	}
	if err := vm.LoadProgram(opts.Input, variant); err != nil {
		return nil, err
	}
	return vm, nil
}

// StepsPerFrame returns how many instructions to execute per 60 Hz frame
func (o Options) StepsPerFrame() int {
	n := o.IPS / 60
	if n < 1 {
		return 1
	}
	return n
}
