// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package circuit

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/db47h/fredy"
)

// Diagram symbols.
//
const (
	symWire    = "─"
	symControl = "●"
	symSwap    = "x"
	symAlias   = "⊗" // control is also a swap operand
	symCross   = "│"
)

// Draw writes a text diagram of the network to w: one row per slot, one column
// per step. Measured slots end with M and their bit number, 0 being the most
// significant.
//
//	Foxy  ─x──
//	EMPTY ─●──
//	(B!)  ─x── M0
//	C!    ──── M1
//
func Draw(w io.Writer, labels []string, steps []fredy.Step, mask []int) error {
	pad := 0
	for _, l := range labels {
		if n := utf8.RuneCountInString(l); n > pad {
			pad = n
		}
	}
	bit := make(map[int]int, len(mask))
	for i, p := range mask {
		if _, ok := bit[p]; !ok {
			bit[p] = i
		}
	}

	bw := bufio.NewWriter(w)
	for i, l := range labels {
		slot := i + 1
		bw.WriteString(l)
		bw.WriteString(strings.Repeat(" ", pad-utf8.RuneCountInString(l)+1))
		bw.WriteString(symWire)
		for _, s := range steps {
			bw.WriteString(cell(slot, s))
			bw.WriteString(symWire)
			bw.WriteString(symWire)
		}
		if b, ok := bit[slot]; ok {
			bw.WriteString(" M")
			bw.WriteString(strconv.Itoa(b))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func cell(slot int, s fredy.Step) string {
	lo, hi := s.West, s.West
	for _, p := range s.Operands() {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	op := slot == s.West || slot == s.East
	switch {
	case slot == s.Control && op:
		return symAlias
	case slot == s.Control:
		return symControl
	case op:
		return symSwap
	case lo < slot && slot < hi:
		return symCross
	}
	return symWire
}
