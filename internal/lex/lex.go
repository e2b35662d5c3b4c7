// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a tokenizer for schedule lines.
//
package lex

import (
	"errors"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Type is the type of a lexed item.
//
type Type int

// Item types.
//
const (
	EOF Type = iota
	Raw
	Int
	Comma
)

func (t Type) String() string {
	switch t {
	case EOF:
		return "end of input"
	case Raw:
		return "raw"
	case Int:
		return "integer"
	case Comma:
		return "comma"
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Pos is a byte offset in the input.
//
type Pos int

// An Item is a lexed token.
//
// Value is an int for Int items and a string for all others.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case EOF:
		return "end of input"
	case Int:
		return "integer " + strconv.Itoa(i.Value.(int))
	}
	return strconv.Quote(i.Value.(string))
}

// A StateFn is a lexer state. It returns the next state or nil to resume in
// the initial state once an item has been emitted.
//
type StateFn func(l *Lexer) StateFn

// Lexer tokenizes a single line.
//
type Lexer struct {
	in    string
	pos   int // position after the current rune
	start int // start of the current item
	cur   rune
	w     int // width of cur
	items []Item
	state StateFn
}

// New returns a new lexer for the given input.
//
func New(input string) *Lexer {
	return &Lexer{in: input}
}

// Lex returns the next item in the input. Once the end of input is reached,
// it keeps returning EOF items.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = lexInit
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next advances to the next rune and returns it, or -1 at end of input.
//
func (l *Lexer) Next() rune {
	if l.pos >= len(l.in) {
		l.cur, l.w = -1, 0
		return -1
	}
	l.cur, l.w = utf8.DecodeRuneInString(l.in[l.pos:])
	l.pos += l.w
	return l.cur
}

// Backup steps back one rune. It can only be called once per call to Next.
//
func (l *Lexer) Backup() {
	l.pos -= l.w
	l.w = 0
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune { return l.cur }

// Emit emits an item starting at the beginning of the current token.
//
func (l *Lexer) Emit(t Type, value interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: Pos(l.start), Value: value})
}

// AcceptWhile advances while f returns true.
//
func (l *Lexer) AcceptWhile(f func(r rune) bool) {
	r := l.Next()
	for r >= 0 && f(r) {
		r = l.Next()
	}
	l.Backup()
}

func lexInit(l *Lexer) StateFn {
	l.start = l.pos
	r := l.Next()
	switch {
	case r < 0:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
		return lexInit
	case r == ',':
		l.Emit(Comma, ",")
	case r == '-' || r == '+' || '0' <= r && r <= '9':
		return lexNumber
	default:
		l.Emit(Raw, string(r))
		return lexEOF
	}
	return nil
}

// lexNumber lexes an optionally signed decimal integer. Values that do not
// fit in an int saturate to math.MinInt or math.MaxInt.
//
func lexNumber(l *Lexer) StateFn {
	if c := l.Current(); c == '-' || c == '+' {
		r := l.Next()
		if r < '0' || r > '9' {
			l.Backup()
			l.Emit(Raw, string(c))
			return lexEOF
		}
	}
	l.AcceptWhile(func(r rune) bool { return '0' <= r && r <= '9' })
	s := l.in[l.start:l.pos]
	n, err := strconv.Atoi(s)
	if err != nil {
		if !errors.Is(err, strconv.ErrRange) {
			l.Emit(Raw, s)
			return lexEOF
		}
		n = math.MaxInt
		if s[0] == '-' {
			n = math.MinInt
		}
	}
	l.Emit(Int, n)
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *Lexer) StateFn {
	l.start = len(l.in)
	l.Emit(EOF, "end of input")
	return lexEOF
}
