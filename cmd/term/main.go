// Package main runs a CHIP-8 family program inside the terminal
package main

import (
	"errors"
	"os"

	"github.com/mnafees/chopper/v2/internal/cli"
	"github.com/mnafees/chopper/v2/internal/config"
	"github.com/mnafees/chopper/v2/pkg/term"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags(os.Args[0], os.Args[1:])
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage(os.Stderr)
			os.Exit(1)
		}
		config.CreateLogger(opts.Debug, opts.Quiet).Fatal(err.Error())
	}

	// the terminal is taken over, keep log output to errors
	logger := config.CreateLogger(false, true)
	vm, err := config.NewMachine(opts, logger)
	if err != nil {
		logger.Fatal("Loading program failed", log.Err(err))
	}

	if err := term.New(vm, opts, logger, nil).Run(ctx); err != nil {
		logger.Error("Emulation stopped", log.Err(err))
		os.Exit(1)
	}
}
