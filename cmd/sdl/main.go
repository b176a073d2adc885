// Package main runs a CHIP-8 family program in an SDL window with speaker audio
package main

import (
	"errors"
	"os"
	"sync"

	"github.com/mnafees/chopper/v2/internal/cli"
	"github.com/mnafees/chopper/v2/internal/config"
	"github.com/mnafees/chopper/v2/pkg/audio"
	"github.com/mnafees/chopper/v2/pkg/sdl"
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

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	vm, err := config.NewMachine(opts, logger)
	if err != nil {
		logger.Fatal("Loading program failed", log.Err(err))
	}

	var lock sync.Locker
	player, err := audio.NewPlayer(vm, opts.Volume)
	if err != nil {
		logger.Warn("Audio disabled", log.Err(err))
	} else {
		defer player.Close()
		lock = player
	}

	io := sdl.NewIO(vm, opts, logger, lock)
	defer io.Destroy()
	if err := io.SetupWindow("Chopper | CHIP-8 Emulator"); err != nil {
		logger.Error("Setting up window failed", log.Err(err))
		return
	}
	if err := io.Loop(ctx); err != nil {
		logger.Error("Emulation stopped", log.Err(err))
	}
}
