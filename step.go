// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fredy

import (
	"strconv"

	"github.com/db47h/fredy/internal/lex"
	"github.com/pkg/errors"
)

// A Step is one night of the schedule: a controlled swap of the West and East
// slots, conditioned on the Control slot being occupied. Positions are
// 1-based.
//
type Step struct {
	West    int
	Control int
	East    int
}

func (s Step) String() string {
	return strconv.Itoa(s.West) + "," + strconv.Itoa(s.Control) + "," + strconv.Itoa(s.East)
}

// Operands returns the step's positions in west, control, east order.
//
func (s Step) Operands() [3]int {
	return [3]int{s.West, s.Control, s.East}
}

// Check verifies that all positions of s lie in [1, size]. It returns an
// ErrIndexOutOfRange error for the first offending position.
//
func (s Step) Check(size int) error {
	for _, p := range s.Operands() {
		if p < 1 || p > size {
			return &Error{Kind: ErrIndexOutOfRange, Slot: p, Msg: "step " + s.String() + " outside [1, " + strconv.Itoa(size) + "]"}
		}
	}
	return nil
}

// ParseStep parses a "west,control,east" schedule line.
//
func ParseStep(line string) (Step, error) {
	var ops [3]int
	l := lex.New(line)
	for n := range ops {
		i := l.Lex()
		if i.Type != lex.Int {
			return Step{}, parseError(line, i.Pos, "expected slot number, got "+i.String())
		}
		ops[n] = i.Value.(int)
		i = l.Lex()
		switch {
		case n < 2 && i.Type == lex.Comma:
		case n == 2 && i.Type == lex.EOF:
		case n < 2:
			return Step{}, parseError(line, i.Pos, "expected comma, got "+i.String())
		default:
			return Step{}, parseError(line, i.Pos, "expected end of line, got "+i.String())
		}
	}
	return Step{West: ops[0], Control: ops[1], East: ops[2]}, nil
}

func parseError(in string, pos lex.Pos, msg string) error {
	return &Error{Kind: ErrMalformedProgram, Msg: errors.Errorf("in %q at pos %d: %s", in, pos+1, msg).Error()}
}
