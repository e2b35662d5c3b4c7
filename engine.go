// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fredy

import (
	"context"
	"io"
	"log/slog"
)

// A Night records the evaluation of one step.
//
type Night struct {
	Index  int         // 1-based
	Step   Step        // evaluated step
	Fired  bool        // control slot was occupied
	Before [3]Occupant // west, control and east occupants before the step
}

// A Trace is the ordered record of evaluated nights.
//
type Trace []Night

// Fired returns, for each night, whether the swap fired.
//
func (t Trace) Fired() []bool {
	f := make([]bool, len(t))
	for i := range t {
		f[i] = t[i].Fired
	}
	return f
}

// FiredCount returns the number of nights where the swap fired.
//
func (t Trace) FiredCount() int {
	n := 0
	for i := range t {
		if t[i].Fired {
			n++
		}
	}
	return n
}

// An Observer is notified of engine activity.
//
type Observer interface {
	NightEvaluated(night int, fired bool)
	RunCompleted(r *Result)
}

// An Option configures an Engine.
//
type Option func(*Engine)

// WithLogger sets the engine's logger. Nights are logged at debug level.
//
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithObserver adds an observer to the engine.
//
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.obs = append(e.obs, o)
		}
	}
}

// Engine is the reference evaluator of schedules.
//
// An Engine holds no run state and can be used concurrently, as long as each
// run works on its own Register.
//
type Engine struct {
	log *slog.Logger
	obs []Observer
}

// NewEngine returns a new Engine.
//
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Apply evaluates steps in order against r. For each step, if the control
// slot is occupied, the occupants of the west and east slots are exchanged.
// Steps whose control aliases an operand are evaluated literally.
//
// Apply stops at the first step referencing a slot outside the register and
// returns the trace of the nights evaluated so far together with an
// ErrIndexOutOfRange error. In that case r is left in the state reached after
// the last valid step and must not be taken as a final state.
//
func (e *Engine) Apply(r *Register, steps []Step) (Trace, error) {
	t := make(Trace, 0, len(steps))
	for i, s := range steps {
		if err := s.Check(r.Size()); err != nil {
			err.(*Error).Night = i + 1
			return t, err
		}
		n := Night{
			Index:  i + 1,
			Step:   s,
			Before: [3]Occupant{r.occ[s.West-1], r.occ[s.Control-1], r.occ[s.East-1]},
		}
		if r.occ[s.Control-1].Present {
			r.swap(s.West, s.East)
			n.Fired = true
		}
		t = append(t, n)
		e.log.Debug("night", "night", n.Index, "step", s.String(), "fired", n.Fired)
		for _, o := range e.obs {
			o.NightEvaluated(n.Index, n.Fired)
		}
	}
	return t, nil
}

// Result is the outcome of a run.
//
type Result struct {
	Register *Register
	Trace    Trace
	Complete bool // all steps were evaluated
}

// Readout returns the readout of the result's register.
//
func (r *Result) Readout() Readout {
	return NewReadout(r.Register)
}

// Run runs p on a fresh register. Optional slots are resolved with res, which
// may be nil if p has no optional slots.
//
func (e *Engine) Run(ctx context.Context, p *Program, res PresenceResolver) (*Result, error) {
	return e.Replay(ctx, p.NewRegister(), p.steps, res)
}

// RunBits runs p on a fresh register, resolving optional slots from bits.
// See Register.ResolveBits.
//
func (e *Engine) RunBits(ctx context.Context, p *Program, bits string) (*Result, error) {
	r := p.NewRegister()
	if err := r.ResolveBits(bits); err != nil {
		return nil, err
	}
	return e.Replay(ctx, r, p.steps, nil)
}

// Replay resets r, resolves its optional slots and applies steps. If r
// already holds a complete resolution record, it is replayed and res is not
// used.
//
func (e *Engine) Replay(ctx context.Context, r *Register, steps []Step, res PresenceResolver) (*Result, error) {
	r.Reset()
	if err := r.Resolve(ctx, res); err != nil {
		return nil, err
	}
	e.log.Debug("register resolved", "occupants", r.Occupants(), "record", r.Record())
	t, err := e.Apply(r, steps)
	out := &Result{Register: r, Trace: t, Complete: err == nil}
	if err != nil {
		return out, err
	}
	e.log.Debug("run completed", "nights", len(t), "fired", t.FiredCount())
	for _, o := range e.obs {
		o.RunCompleted(out)
	}
	return out, nil
}
