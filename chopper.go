// Package main runs a CHIP-8 family program headless for a fixed number of
// instructions and prints the final display and machine state
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/cli"
	"github.com/mnafees/chopper/v2/internal/config"
	"github.com/retroenv/retrogolib/log"
)

func main() {
	opts, err := cli.ParseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage(os.Stderr)
			os.Exit(1)
		}
		config.CreateLogger(opts.Debug, opts.Quiet).Fatal(err.Error())
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	vm, err := config.NewMachine(opts, logger)
	if err != nil {
		logger.Fatal("Loading program failed", log.Err(err))
	}

	runErr := run(vm, opts, logger)
	if err := report(os.Stdout, vm); err != nil {
		logger.Fatal("Writing report failed", log.Err(err))
	}
	if runErr != nil {
		logger.Error("Program faulted", log.Err(runErr))
		os.Exit(1)
	}
}

// run executes up to opts.Cycles instructions with a timer tick after every
// frame worth of steps. A key wait ends the run since no input is available.
func run(vm *internal.C8VM, opts config.Options, logger *log.Logger) error {
	perFrame := opts.StepsPerFrame()
	for cycle := 1; cycle <= opts.Cycles; cycle++ {
		if opts.Trace {
			if ins, err := vm.CurrentInstruction(); err == nil {
				logger.Debug("Step", log.Hex("pc", vm.State().PC), log.String("instruction", ins.String()))
			}
		}

		res, err := vm.Step()
		if err != nil {
			return err
		}
		switch res {
		case internal.Halted:
			logger.Info("Program exited", log.Int("cycles", cycle))
			return nil
		case internal.AwaitingKey:
			logger.Info("Program is waiting for a key", log.Int("cycles", cycle))
			return nil
		case internal.AwaitingTick:
			vm.TickTimers()
			continue
		}
		if cycle%perFrame == 0 {
			vm.TickTimers()
		}
	}
	return nil
}

func report(w io.Writer, vm *internal.C8VM) error {
	if _, err := fmt.Fprint(w, vm.Frame().String()); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(vm.State())
}
