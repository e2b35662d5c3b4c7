// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fredy

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrDisagreement is returned by Agree when sampled counts do not match the
// reference readout.
//
var ErrDisagreement = errors.New("backend disagrees with reference readout")

// An Executor runs a controlled swap network a number of times (shots) and
// reports how often each output bit string was observed. Slot positions are
// 1-based.
//
// Executors are programmed in order: Prepare, then ControlledSwap once per
// step, then Measure, then Run.
//
type Executor interface {
	// Prepare sets the initial (classical) state of every slot.
	Prepare(occupancy []bool) error
	// ControlledSwap appends a gate swapping west and east if control is set.
	ControlledSwap(west, control, east int) error
	// Measure sets the slots to read out, most significant bit first.
	Measure(mask []int) error
	// Run executes the network shots times.
	Run(ctx context.Context, shots int) (*Counts, error)
}

// Sample programs ex with the current state of r and steps, then runs it for
// the given number of shots.
//
func Sample(ctx context.Context, ex Executor, r *Register, steps []Step, shots int) (*Counts, error) {
	if shots < 1 {
		return nil, errors.Errorf("invalid shot count %d", shots)
	}
	if err := ex.Prepare(r.Occupancy()); err != nil {
		return nil, errors.Wrap(err, "prepare")
	}
	for i, s := range steps {
		if err := s.Check(r.Size()); err != nil {
			err.(*Error).Night = i + 1
			return nil, err
		}
		if err := ex.ControlledSwap(s.West, s.Control, s.East); err != nil {
			return nil, errors.Wrapf(err, "night %d", i+1)
		}
	}
	if err := ex.Measure(r.Mask()); err != nil {
		return nil, errors.Wrap(err, "measure")
	}
	return ex.Run(ctx, shots)
}

// Agree checks that c holds exactly one bit string, equal to bits, observed
// for every one of the given shots.
//
func Agree(c *Counts, bits string, shots int) error {
	if c.Len() != 1 || c.Get(bits) != shots {
		return errors.Wrapf(ErrDisagreement, "expected {%q: %d}, got %s", bits, shots, c)
	}
	return nil
}

// Counts maps observed bit strings to their number of occurrences. It
// remembers the order in which bit strings were first observed.
//
// The zero value is ready to use.
//
type Counts struct {
	m     map[string]int
	order []string
}

// Add adds n observations of bits.
//
func (c *Counts) Add(bits string, n int) {
	if c.m == nil {
		c.m = make(map[string]int)
	}
	if _, ok := c.m[bits]; !ok {
		c.order = append(c.order, bits)
	}
	c.m[bits] += n
}

// Merge adds all observations of o to c.
//
func (c *Counts) Merge(o *Counts) {
	for _, k := range o.order {
		c.Add(k, o.m[k])
	}
}

// Get returns the number of observations of bits.
//
func (c *Counts) Get(bits string) int { return c.m[bits] }

// Len returns the number of distinct bit strings.
//
func (c *Counts) Len() int { return len(c.order) }

// Keys returns the observed bit strings in order of first observation.
//
func (c *Counts) Keys() []string { return append([]string(nil), c.order...) }

// Total returns the total number of observations.
//
func (c *Counts) Total() int {
	t := 0
	for _, n := range c.m {
		t += n
	}
	return t
}

// First returns the first observed bit string.
//
func (c *Counts) First() string {
	if len(c.order) == 0 {
		return ""
	}
	return c.order[0]
}

// Majority returns the most observed bit string. Ties are broken in favor of
// the first observed.
//
func (c *Counts) Majority() string {
	var best string
	most := 0
	for _, k := range c.order {
		if n := c.m[k]; n > most {
			best, most = k, n
		}
	}
	return best
}

// Map returns a copy of the counts as a map.
//
func (c *Counts) Map() map[string]int {
	m := make(map[string]int, len(c.m))
	for k, v := range c.m {
		m[k] = v
	}
	return m
}

// String returns the counts sorted by bit string, as in {"01": 3, "11": 7}.
//
func (c *Counts) String() string {
	ks := c.Keys()
	sort.Strings(ks)
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range ks {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(k))
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(c.m[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// Reference is a single threaded Executor that evaluates every shot with an
// Engine. It is the executor other backends are compared against.
//
type Reference struct {
	Engine *Engine

	occ   []bool
	steps []Step
	mask  []int
}

// Prepare implements Executor.
//
func (x *Reference) Prepare(occupancy []bool) error {
	if len(occupancy) == 0 {
		return errors.New("empty register")
	}
	x.occ = append(x.occ[:0], occupancy...)
	x.steps = x.steps[:0]
	x.mask = nil
	return nil
}

// ControlledSwap implements Executor.
//
func (x *Reference) ControlledSwap(west, control, east int) error {
	s := Step{West: west, Control: control, East: east}
	if err := s.Check(len(x.occ)); err != nil {
		return err
	}
	x.steps = append(x.steps, s)
	return nil
}

// Measure implements Executor.
//
func (x *Reference) Measure(mask []int) error {
	for _, p := range mask {
		if p < 1 || p > len(x.occ) {
			return &Error{Kind: ErrIndexOutOfRange, Slot: p, Msg: "measured slot"}
		}
	}
	x.mask = append([]int(nil), mask...)
	return nil
}

// labels builds a register template matching the prepared state. The mask is
// read directly since it may list slots in any order.
//
func (x *Reference) labels() []string {
	ls := make([]string, len(x.occ))
	for i, o := range x.occ {
		if o {
			ls[i] = "s" + strconv.Itoa(i+1)
		} else {
			ls[i] = EmptyMarker
		}
	}
	return ls
}

// Run implements Executor.
//
func (x *Reference) Run(ctx context.Context, shots int) (*Counts, error) {
	e := x.Engine
	if e == nil {
		e = NewEngine()
	}
	var c Counts
	for i := 0; i < shots; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := NewRegister(x.labels())
		if err != nil {
			return nil, err
		}
		if _, err := e.Apply(r, x.steps); err != nil {
			return nil, err
		}
		var b strings.Builder
		for _, p := range x.mask {
			if r.occ[p-1].Present {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		c.Add(b.String(), 1)
	}
	return &c, nil
}
