// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fredy

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Label markers.
//
const (
	EmptyMarker  = "EMPTY"
	OutputMarker = "!"
)

// An Occupant is the content of a slot. The zero value is an empty slot.
//
type Occupant struct {
	Name    string
	Present bool
}

// Empty returns true if o holds no one.
//
func (o Occupant) Empty() bool { return !o.Present }

func (o Occupant) String() string {
	if !o.Present {
		return EmptyMarker
	}
	return o.Name
}

// A Slot describes one storage location of a Register as declared in a
// program. Its flags are derived once from the label and never change.
//
type Slot struct {
	Label    string // declared label, whitespace trimmed
	Identity string // occupant name used when the slot is present
	Optional bool   // label is parenthesized
	Output   bool   // label contains the output marker
	Empty    bool   // slot starts empty
}

// ParseLabel parses a single slot label.
//
//	ParseLabel("Foxy")       // starts occupied by Foxy
//	ParseLabel("EMPTY")      // starts empty
//	ParseLabel("(Golden!)")  // optional, output, identity "Golden"
//
func ParseLabel(label string) (Slot, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Slot{}, errors.New("empty label")
	}
	s := Slot{
		Label:    label,
		Optional: strings.ContainsRune(label, '('),
		Output:   strings.Contains(label, OutputMarker),
	}
	s.Empty = s.Optional || strings.Contains(label, EmptyMarker)
	s.Identity = strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '!':
			return -1
		}
		return r
	}, label))
	return s, nil
}

func (s *Slot) initial() Occupant {
	if s.Empty {
		return Occupant{}
	}
	return Occupant{Name: s.Identity, Present: true}
}

// SplitLabels splits a comma separated label declaration.
//
func SplitLabels(line string) []string {
	ls := strings.Split(line, ",")
	for i := range ls {
		ls[i] = strings.TrimSpace(ls[i])
	}
	return ls
}

// A Register is a fixed size, ordered set of slots.
//
// A Register keeps its declaration template and the record of how its
// optional slots were resolved separately from the live occupants, so that
// Reset followed by Resolve replays the same run.
//
type Register struct {
	slots  []Slot
	occ    []Occupant
	mask   []int
	opts   []int  // positions of optional slots
	record []bool // resolution record, one entry per optional slot
}

// NewRegister returns a new register for the given labels. See ParseLabel.
//
func NewRegister(labels []string) (*Register, error) {
	if len(labels) == 0 {
		return nil, malformedProgram(0, "no slot declared")
	}
	r := &Register{
		slots: make([]Slot, len(labels)),
		occ:   make([]Occupant, len(labels)),
	}
	for i, l := range labels {
		s, err := ParseLabel(l)
		if err != nil {
			return nil, &Error{Kind: ErrMalformedProgram, Slot: i + 1, Msg: err.Error()}
		}
		r.slots[i] = s
		if s.Output {
			r.mask = append(r.mask, i+1)
		}
		if s.Optional {
			r.opts = append(r.opts, i+1)
		}
	}
	r.Reset()
	return r, nil
}

// Size returns the number of slots in the register.
//
func (r *Register) Size() int { return len(r.slots) }

// Mask returns the 1-based positions of output slots, in declaration order.
//
func (r *Register) Mask() []int {
	return append([]int(nil), r.mask...)
}

// OutSize returns the number of output slots.
//
func (r *Register) OutSize() int { return len(r.mask) }

// Optionals returns the 1-based positions of optional slots, in declaration
// order.
//
func (r *Register) Optionals() []int {
	return append([]int(nil), r.opts...)
}

// Slot returns the declaration of the slot at the given 1-based position.
//
func (r *Register) Slot(pos int) (Slot, error) {
	if err := r.check(pos); err != nil {
		return Slot{}, err
	}
	return r.slots[pos-1], nil
}

// Slots returns a copy of all slot declarations.
//
func (r *Register) Slots() []Slot {
	return append([]Slot(nil), r.slots...)
}

// Get returns the current occupant of the slot at the given 1-based position.
//
func (r *Register) Get(pos int) (Occupant, error) {
	if err := r.check(pos); err != nil {
		return Occupant{}, err
	}
	return r.occ[pos-1], nil
}

// Occupants returns a copy of the current occupants.
//
func (r *Register) Occupants() []Occupant {
	return append([]Occupant(nil), r.occ...)
}

// Occupancy returns the occupied state of every slot.
//
func (r *Register) Occupancy() []bool {
	b := make([]bool, len(r.occ))
	for i, o := range r.occ {
		b[i] = o.Present
	}
	return b
}

func (r *Register) check(pos int) error {
	if pos < 1 || pos > len(r.slots) {
		return &Error{Kind: ErrIndexOutOfRange, Slot: pos, Msg: "valid range is [1, " + strconv.Itoa(len(r.slots)) + "]"}
	}
	return nil
}

// swap exchanges the occupants of two valid positions.
//
func (r *Register) swap(a, b int) {
	r.occ[a-1], r.occ[b-1] = r.occ[b-1], r.occ[a-1]
}

// Reset restores every slot to its declared occupant. Optional slots are
// emptied but the resolution record is kept: a subsequent call to Resolve
// replays it.
//
func (r *Register) Reset() {
	for i := range r.slots {
		r.occ[i] = r.slots[i].initial()
	}
}

// Record returns the resolution record as a bit string, or an empty string if
// the optional slots have not been resolved yet.
//
func (r *Register) Record() string {
	if len(r.record) < len(r.opts) {
		return ""
	}
	var b strings.Builder
	for _, p := range r.record {
		if p {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Resolved returns true if every optional slot has a recorded resolution.
//
func (r *Register) Resolved() bool {
	return len(r.record) == len(r.opts)
}

// ResolveBits resolves optional slots from a bit string, one character per
// optional slot in declaration order. '1', 'Y' and 'y' mean present, any
// other character means absent. Extra characters are ignored.
//
func (r *Register) ResolveBits(bits string) error {
	rs := []rune(bits)
	if len(rs) < len(r.opts) {
		return &Error{Kind: ErrMalformedInput, Msg: "got " + strconv.Itoa(len(rs)) + " resolution bits for " + strconv.Itoa(len(r.opts)) + " optional slots"}
	}
	rec := make([]bool, len(r.opts))
	for i := range r.opts {
		rec[i] = PresentBit(rs[i])
	}
	r.apply(rec)
	return nil
}

// Resolve resolves optional slots. If a complete resolution record exists, it
// is replayed and res is not called. Otherwise res is queried once per
// optional slot, in declaration order, and its answers are recorded.
//
func (r *Register) Resolve(ctx context.Context, res PresenceResolver) error {
	if r.Resolved() {
		r.apply(r.record)
		return nil
	}
	if res == nil {
		return &Error{Kind: ErrMalformedInput, Msg: "no resolution input for " + strconv.Itoa(len(r.opts)) + " optional slots"}
	}
	rec := make([]bool, 0, len(r.opts))
	for _, pos := range r.opts {
		p, err := res.Present(ctx, r.slots[pos-1])
		if err != nil {
			return errors.Wrapf(err, "resolve slot %d (%s)", pos, r.slots[pos-1].Label)
		}
		rec = append(rec, p)
	}
	r.apply(rec)
	return nil
}

func (r *Register) apply(rec []bool) {
	r.record = append(r.record[:0], rec...)
	for i, pos := range r.opts {
		if rec[i] {
			r.occ[pos-1] = Occupant{Name: r.slots[pos-1].Identity, Present: true}
		} else {
			r.occ[pos-1] = Occupant{}
		}
	}
}

// Clone returns a deep copy of r.
//
func (r *Register) Clone() *Register {
	return &Register{
		slots:  append([]Slot(nil), r.slots...),
		occ:    append([]Occupant(nil), r.occ...),
		mask:   append([]int(nil), r.mask...),
		opts:   append([]int(nil), r.opts...),
		record: append([]bool(nil), r.record...),
	}
}

// PresentBit returns true if c is one of '1', 'Y' or 'y'.
//
func PresentBit(c rune) bool {
	return c == '1' || c == 'Y' || c == 'y'
}
