// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/db47h/fredy/internal/cli"
	"github.com/db47h/fredy/internal/config"
	"github.com/db47h/fredy/internal/logging"
	"github.com/db47h/fredy/internal/metrics"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a program and print its readout",
		Long: `Runs the program in FILE. Optional animatronics are resolved from --input
or, if not given, by asking on standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: runE,
	}
	f := cmd.Flags()
	f.String("config", "", "YAML run configuration file")
	f.BoolP("debug", "d", false, "print the schedule and night reports, log at debug level")
	f.Bool("draw", false, "print the circuit diagram")
	f.StringP("input", "i", "", "resolution bits for optional animatronics (1/Y/y = present)")
	f.String("backend", "", "also sample the network on a backend: reference or circuit")
	f.Int("shots", 0, "number of shots to sample (default 10)")
	f.Int("workers", 0, "worker goroutines per simulated circuit (default GOMAXPROCS)")
	f.Int("parallel", 0, "number of circuits sampling concurrently")
	f.Float64("noise", 0, "measurement bit flip probability (circuit backend)")
	f.Int64("seed", 0, "noise seed")
	f.String("reduce", "", "shot reduction: first or majority")
	f.Bool("colour", false, "colour night reports")
	f.Bool("metrics", false, "print metrics to stderr when done")
	f.BoolP("watch", "w", false, "run again whenever FILE changes")
	return cmd
}

// loadConfig reads the --config file, if any, and applies flags set on the
// command line.
//
func loadConfig(f *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if path, _ := f.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	f.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "debug":
			cfg.Debug, _ = f.GetBool(fl.Name)
		case "draw":
			cfg.Draw, _ = f.GetBool(fl.Name)
		case "input":
			in, _ := f.GetString(fl.Name)
			cfg.Input = &in
		case "backend":
			cfg.Backend, _ = f.GetString(fl.Name)
		case "shots":
			cfg.Shots, _ = f.GetInt(fl.Name)
		case "workers":
			cfg.Workers, _ = f.GetInt(fl.Name)
		case "parallel":
			cfg.Parallel, _ = f.GetInt(fl.Name)
		case "noise":
			cfg.Noise, _ = f.GetFloat64(fl.Name)
		case "seed":
			cfg.Seed, _ = f.GetInt64(fl.Name)
		case "reduce":
			cfg.Reduce, _ = f.GetString(fl.Name)
		case "colour":
			cfg.Colour, _ = f.GetBool(fl.Name)
		case "metrics":
			cfg.Metrics, _ = f.GetBool(fl.Name)
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func runE(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	watch, _ := cmd.Flags().GetBool("watch")

	opts := cli.Options{
		Path:        args[0],
		Config:      cfg,
		Stdin:       cmd.InOrStdin(),
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
		Interactive: isTerminal(cmd.InOrStdin()),
		Logger:      logging.ForDebug(cmd.ErrOrStderr(), cfg.Debug),
	}
	if cfg.Metrics {
		opts.Metrics = metrics.New()
		defer opts.Metrics.WriteText(cmd.ErrOrStderr())
	}
	s := cli.NewSession(opts)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if watch {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		return s.Watch(ctx)
	}
	return s.Run(ctx)
}

func isTerminal(r interface{}) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
