// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fredy

import (
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"
)

// A Readout is the projection of a register onto its output slots.
//
type Readout struct {
	bits string
}

// NewReadout returns the readout of the current state of r.
//
func NewReadout(r *Register) Readout {
	var b strings.Builder
	for _, p := range r.mask {
		if r.occ[p-1].Present {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return Readout{b.String()}
}

// Bits returns one '0' or '1' per output slot, in mask order.
//
func (r Readout) Bits() string { return r.bits }

// Int returns the bit string as an unsigned integer, most significant bit
// first. An empty mask reads as 0.
//
func (r Readout) Int() *big.Int {
	n := new(big.Int)
	if r.bits == "" {
		return n
	}
	n.SetString(r.bits, 2)
	return n
}

// Char returns Int as a Unicode code point. It fails with ErrInvalidCodepoint
// if the value is above utf8.MaxRune. Surrogate halves are returned as is.
//
func (r Readout) Char() (rune, error) {
	n := r.Int()
	if !n.IsInt64() || n.Int64() > utf8.MaxRune {
		return utf8.RuneError, &Error{Kind: ErrInvalidCodepoint, Msg: n.String()}
	}
	return rune(n.Int64()), nil
}

func (r Readout) String() string {
	c, err := r.Char()
	if err != nil {
		return fmt.Sprintf("%s (%s, invalid)", r.bits, r.Int())
	}
	return fmt.Sprintf("%s (%s, %q)", r.bits, r.Int(), c)
}

// A Report describes a night for diagnostic purposes.
//
type Report struct {
	Night    int // 1-based
	Employee int // number of fired nights so far, this one included
	Step     Step
	Before   [3]Occupant
	Fired    bool
}

func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Night %d (employee %d):", r.Night, r.Employee)
	for i, p := range r.Step.Operands() {
		fmt.Fprintf(&b, " %d=%s", p, r.Before[i])
	}
	if r.Fired {
		b.WriteString(" swapped")
	} else {
		b.WriteString(" idle")
	}
	return b.String()
}

// Describe returns a report for each night of t.
//
func Describe(t Trace) []Report {
	rs := make([]Report, len(t))
	emp := 0
	for i, n := range t {
		if n.Fired {
			emp++
		}
		rs[i] = Report{
			Night:    n.Index,
			Employee: emp,
			Step:     n.Step,
			Before:   n.Before,
			Fired:    n.Fired,
		}
	}
	return rs
}
