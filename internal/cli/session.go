// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package cli implements the fredy command runs.
//
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/db47h/fredy"
	"github.com/db47h/fredy/circuit"
	"github.com/db47h/fredy/internal/config"
	"github.com/db47h/fredy/internal/logging"
	"github.com/db47h/fredy/internal/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Options configures a Session.
//
type Options struct {
	Path   string
	Config config.Config

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Interactive enables prompt echo when optional slots are resolved from
	// Stdin.
	Interactive bool

	Logger  *slog.Logger
	Metrics *metrics.Collector
	// OnRun, if set, is called after each run in watch mode.
	OnRun func(err error)
}

// Session runs a program file, possibly several times. It remembers the last
// resolution record so that reruns do not prompt again.
//
type Session struct {
	opts   Options
	engine *fredy.Engine
	record string
	nopt   int
}

// NewSession returns a new session. Nil readers and writers default to the
// standard streams.
//
func NewSession(opts Options) *Session {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = logging.ForDebug(opts.Stderr, opts.Config.Debug)
	}
	eo := []fredy.Option{fredy.WithLogger(opts.Logger)}
	if opts.Metrics != nil {
		eo = append(eo, fredy.WithObserver(opts.Metrics))
	}
	return &Session{opts: opts, engine: fredy.NewEngine(eo...), nopt: -1}
}

// Load parses the session's program file.
//
func Load(path string) (*fredy.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open program")
	}
	defer f.Close()
	p, err := fredy.ParseProgram(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

// Run loads and runs the program once, then prints its readout.
//
func (s *Session) Run(ctx context.Context) error {
	cfg := &s.opts.Config
	out := s.opts.Stdout
	log := s.opts.Logger.With("run", uuid.NewString())

	p, err := Load(s.opts.Path)
	if err != nil {
		return err
	}
	log.Debug("program loaded", "path", s.opts.Path, "slots", p.Size(), "nights", len(p.Steps()))
	fmt.Fprintln(out, "Animatronics:", strings.Join(p.Labels(), ", "))
	if cfg.Debug {
		steps := make([]string, len(p.Steps()))
		for i, st := range p.Steps() {
			steps[i] = st.String()
		}
		fmt.Fprintln(out, "Schedule:", strings.Join(steps, " | "))
	}

	r := p.NewRegister()
	var res fredy.PresenceResolver
	switch {
	case cfg.Input != nil:
		if err = r.ResolveBits(*cfg.Input); err != nil {
			return err
		}
	case s.record != "" && s.nopt == len(r.Optionals()):
		log.Debug("replaying resolution record", "record", s.record)
		if err = r.ResolveBits(s.record); err != nil {
			return err
		}
	default:
		var w io.Writer
		if s.opts.Interactive {
			w = out
		}
		res = fredy.NewPrompter(s.opts.Stdin, w)
	}

	result, err := s.engine.Replay(ctx, r, p.Steps(), res)
	if err != nil {
		return err
	}
	s.record, s.nopt = r.Record(), len(r.Optionals())

	if len(r.Optionals()) > 0 {
		fmt.Fprintln(out, "Resolved:", s.record)
	}
	if cfg.Debug {
		WriteReports(out, fredy.Describe(result.Trace), cfg.Colour)
	}
	if cfg.Draw {
		if err = circuit.Draw(out, p.Labels(), p.Steps(), r.Mask()); err != nil {
			return err
		}
	}

	ro := result.Readout()
	if cfg.Backend != config.BackendNone {
		if err = s.sample(ctx, p, ro.Bits()); err != nil {
			return err
		}
	}
	return WriteReadout(out, ro)
}

func (s *Session) sample(ctx context.Context, p *fredy.Program, bits string) error {
	cfg := &s.opts.Config
	var ex fredy.Executor
	switch cfg.Backend {
	case config.BackendReference:
		ex = &fredy.Reference{Engine: fredy.NewEngine()}
	case config.BackendCircuit:
		ex = &circuit.Executor{
			Workers:  cfg.Workers,
			Parallel: cfg.Parallel,
			Noise:    cfg.Noise,
			Seed:     cfg.Seed,
		}
	default:
		return errors.Errorf("unknown backend %q", cfg.Backend)
	}

	r := p.NewRegister()
	if err := r.ResolveBits(s.record); err != nil {
		return err
	}
	counts, err := fredy.Sample(ctx, ex, r, p.Steps(), cfg.Shots)
	if err != nil {
		return errors.Wrap(err, cfg.Backend)
	}
	fmt.Fprintln(s.opts.Stdout, "Results:", counts)
	reduced := counts.First()
	if cfg.Reduce == config.ReduceMajority {
		reduced = counts.Majority()
	}
	fmt.Fprintln(s.opts.Stdout, "Sampled:", reduced)

	agreeErr := fredy.Agree(counts, bits, cfg.Shots)
	if s.opts.Metrics != nil {
		s.opts.Metrics.Sampled(cfg.Backend, cfg.Shots, agreeErr == nil)
	}
	if agreeErr != nil {
		if cfg.Ideal() {
			return agreeErr
		}
		s.opts.Logger.Warn("noisy backend disagrees with reference", "err", agreeErr)
	}
	return nil
}
