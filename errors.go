// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fredy

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Use errors.Is to identify the kind of an error returned by this
// package.
//
var (
	ErrMalformedProgram = errors.New("malformed program")
	ErrIndexOutOfRange  = errors.New("slot index out of range")
	ErrMalformedInput   = errors.New("malformed input")
	ErrInvalidCodepoint = errors.New("invalid code point")
)

// Error carries an error kind together with the location that caused it.
// Zero valued locations are omitted from the message.
//
type Error struct {
	Kind  error
	Line  int // source line, 1-based
	Night int // schedule entry, 1-based
	Slot  int // slot position, 1-based
	Msg   string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Line > 0 {
		fmt.Fprintf(&b, ": line %d", e.Line)
	}
	if e.Night > 0 {
		fmt.Fprintf(&b, ": night %d", e.Night)
	}
	if e.Slot != 0 || e.Kind == ErrIndexOutOfRange {
		fmt.Fprintf(&b, ": slot %d", e.Slot)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func malformedProgram(line int, format string, args ...interface{}) error {
	return &Error{Kind: ErrMalformedProgram, Line: line, Msg: fmt.Sprintf(format, args...)}
}
