// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/config"
)

// ParseFlags parses the command line arguments following the program name
func ParseFlags(name string, args []string) (config.Options, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts config.Options
	readOptionFlags(flags, &opts)

	err := flags.Parse(args)
	if err != nil {
		return opts, &UsageError{flags: flags, name: name, msg: err.Error()}
	}
	rest := flags.Args()
	if len(rest) == 0 {
		return opts, &UsageError{flags: flags, name: name, msg: "no ROM file given"}
	}
	if len(rest) > 1 {
		return opts, &UsageError{
			flags: flags,
			name:  name,
			msg:   fmt.Sprintf("unexpected argument %s after ROM file, options must come first", rest[1]),
		}
	}
	opts.Input = rest[0]

	if _, err := internal.ParseVariant(opts.Variant); err != nil {
		return opts, err
	}
	if opts.IPS <= 0 {
		return opts, fmt.Errorf("invalid instructions per second %d", opts.IPS)
	}
	if opts.Scale <= 0 {
		return opts, fmt.Errorf("invalid scale %d", opts.Scale)
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	name  string
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the flag summary to the given writer
func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s [options] <CHIP-8 program>\n\n", e.name)
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}

func readOptionFlags(flags *flag.FlagSet, opts *config.Options) {
	flags.StringVar(&opts.Variant, "variant", internal.VIP.String(), "machine variant to emulate (vip/schip-legacy/schip-modern/xo)")
	flags.IntVar(&opts.IPS, "ips", config.DefaultIPS, "instructions executed per second")
	flags.Int64Var(&opts.Seed, "seed", 0, "seed for the RND instruction, 0 picks one from the clock")
	flags.IntVar(&opts.Scale, "scale", config.DefaultScale, "window pixels per display pixel")
	flags.IntVar(&opts.Cycles, "cycles", 1000, "number of instructions to execute in headless mode")
	flags.Float64Var(&opts.Volume, "volume", -3, "audio volume in powers of two, relative to full scale")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
