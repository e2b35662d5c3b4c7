// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fredy

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// CommentPrefix starts a comment line in the schedule.
//
const CommentPrefix = "#"

// A Program is a parsed source: the register template and the schedule.
// A Program is immutable and can be shared between concurrent runs. Programs
// are created with ParseProgram or NewProgram; the zero value is not usable.
//
type Program struct {
	labels []string
	steps  []Step
	lines  []int // source line of each step
	parsed bool
}

// NewProgram returns a new Program. Labels are checked as in NewRegister and
// every step must reference slots in [1, len(labels)].
//
func NewProgram(labels []string, steps []Step) (*Program, error) {
	p := &Program{
		labels: append([]string(nil), labels...),
		steps:  append([]Step(nil), steps...),
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseProgram reads a program from r.
//
// The first line declares the slots as comma separated labels. Each following
// line is a "west,control,east" step. Blank lines and lines starting with '#'
// are ignored.
//
func ParseProgram(r io.Reader) (*Program, error) {
	p := Program{parsed: true}
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrap(err, "read program")
		}
		return nil, malformedProgram(1, "missing slot declaration")
	}
	p.labels = SplitLabels(sc.Text())
	n := 1
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, CommentPrefix) {
			continue
		}
		s, err := ParseStep(line)
		if err != nil {
			err.(*Error).Line = n
			return nil, err
		}
		p.steps = append(p.steps, s)
		p.lines = append(p.lines, n)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read program")
	}
	if err := p.check(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Program) check() error {
	r, err := NewRegister(p.labels)
	if err != nil {
		if e, ok := err.(*Error); ok && p.parsed {
			e.Line = 1
		}
		return err
	}
	for i, s := range p.steps {
		if err := s.Check(r.Size()); err != nil {
			e := err.(*Error)
			e.Night = i + 1
			if p.parsed {
				e.Line = p.lines[i]
			}
			return e
		}
	}
	return nil
}

// Labels returns the slot labels.
//
func (p *Program) Labels() []string { return append([]string(nil), p.labels...) }

// Steps returns the schedule.
//
func (p *Program) Steps() []Step { return append([]Step(nil), p.steps...) }

// Size returns the register size.
//
func (p *Program) Size() int { return len(p.labels) }

// NewRegister returns a fresh register built from the program's template.
//
// p must have been returned by ParseProgram or NewProgram: NewRegister panics
// on the zero Program, which declares no slot.
//
func (p *Program) NewRegister() *Register {
	r, err := NewRegister(p.labels)
	if err != nil {
		// labels were checked when p was built.
		panic(err)
	}
	return r
}
