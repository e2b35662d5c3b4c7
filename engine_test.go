package fredy_test

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"testing/quick"

	"github.com/db47h/fredy"
	"github.com/db47h/fredy/fredytest"
	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, src string) *fredy.Program {
	t.Helper()
	p, err := fredy.ParseProgram(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestEngine_endToEnd(t *testing.T) {
	data := []struct {
		name  string
		src   string
		input string
		fired []bool
		bits  string
		val   int64
	}{
		// control slot 2 is empty: nothing moves.
		{"idle", "A,EMPTY,(B!),C!\n1,2,3\n", "1", []bool{false}, "11", 3},
		// Y is present: X moves to slot 3 and slot 1 empties.
		{"swap", "X!,Y,EMPTY\n1,2,3\n", "", []bool{true}, "0", 0},
		{"absent", "A,EMPTY,(B!),C!\n1,2,3\n", "0", []bool{false}, "01", 1},
		{"chain", "A!,B,EMPTY!,(C)\n1,2,3\n3,4,1\n", "y", []bool{true, true}, "10", 2},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			res, err := fredy.NewEngine().RunBits(context.Background(), mustParse(t, d.src), d.input)
			if err != nil {
				t.Fatal(err)
			}
			if !res.Complete {
				t.Error("run not complete")
			}
			if diff := cmp.Diff(d.fired, res.Trace.Fired()); diff != "" {
				t.Errorf("fired mismatch (-want +got):\n%s", diff)
			}
			ro := res.Readout()
			if ro.Bits() != d.bits {
				t.Errorf("Bits() = %q, expected %q", ro.Bits(), d.bits)
			}
			if ro.Int().Int64() != d.val {
				t.Errorf("Int() = %v, expected %d", ro.Int(), d.val)
			}
			c, err := ro.Char()
			if err != nil || c != rune(d.val) {
				t.Errorf("Char() = %q, %v, expected %q", c, err, rune(d.val))
			}
		})
	}
}

func TestEngine_swapMovesOccupant(t *testing.T) {
	res, err := fredy.NewEngine().Run(context.Background(), mustParse(t, "X!,Y,EMPTY\n1,2,3\n"), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []fredy.Occupant{{}, {Name: "Y", Present: true}, {Name: "X", Present: true}}
	if diff := cmp.Diff(want, res.Register.Occupants()); diff != "" {
		t.Errorf("occupants mismatch (-want +got):\n%s", diff)
	}
	n := res.Trace[0]
	wantBefore := [3]fredy.Occupant{{Name: "X", Present: true}, {Name: "Y", Present: true}, {}}
	if n.Before != wantBefore || n.Index != 1 || !n.Fired {
		t.Errorf("night = %+v", n)
	}
}

func TestEngine_edgeCases(t *testing.T) {
	data := []struct {
		name  string
		src   string
		fired []bool
		occ   []bool
	}{
		{"same_operands", "A,B,EMPTY\n1,2,1\n", []bool{true}, []bool{true, true, false}},
		{"control_is_west", "A,EMPTY\n1,1,2\n", []bool{true}, []bool{false, true}},
		{"control_is_east", "EMPTY,A\n1,2,2\n", []bool{true}, []bool{true, false}},
		{"empty_control_is_west", "EMPTY,A\n1,1,2\n", []bool{false}, []bool{false, true}},
		{"duplicate_steps", "A,B,EMPTY\n1,2,3\n1,2,3\n", []bool{true, true}, []bool{true, true, false}},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			res, err := fredy.NewEngine().Run(context.Background(), mustParse(t, d.src), nil)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(d.fired, res.Trace.Fired()); diff != "" {
				t.Errorf("fired mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(d.occ, res.Register.Occupancy()); diff != "" {
				t.Errorf("occupancy mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngine_Apply_bounds(t *testing.T) {
	data := []struct {
		name string
		bad  fredy.Step
		slot int
	}{
		{"west_zero", fredy.Step{West: 0, Control: 1, East: 2}, 0},
		{"west_big", fredy.Step{West: 4, Control: 1, East: 2}, 4},
		{"control_negative", fredy.Step{West: 1, Control: -2, East: 2}, -2},
		{"east_big", fredy.Step{West: 1, Control: 2, East: 9}, 9},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			r, err := fredy.NewRegister([]string{"A", "B", "EMPTY"})
			if err != nil {
				t.Fatal(err)
			}
			steps := []fredy.Step{{West: 1, Control: 2, East: 3}, d.bad, {West: 3, Control: 2, East: 1}}
			tr, err := fredy.NewEngine().Apply(r, steps)
			if !errors.Is(err, fredy.ErrIndexOutOfRange) {
				t.Fatalf("got error %v, expected %v", err, fredy.ErrIndexOutOfRange)
			}
			var e *fredy.Error
			if !errors.As(err, &e) || e.Night != 2 || e.Slot != d.slot {
				t.Errorf("got error %#v", err)
			}
			// state after the last valid step
			if len(tr) != 1 {
				t.Errorf("got %d nights, expected 1", len(tr))
			}
			if diff := cmp.Diff([]bool{false, true, true}, r.Occupancy()); diff != "" {
				t.Errorf("occupancy mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngine_Replay(t *testing.T) {
	p := mustParse(t, "(A),B!,(C!)\n1,3,2\n")
	e := fredy.NewEngine()
	ctx := context.Background()
	calls := 0
	res := fredy.ResolverFunc(func(context.Context, fredy.Slot) (bool, error) {
		calls++
		return true, nil
	})
	r := p.NewRegister()
	first, err := e.Replay(ctx, r, p.Steps(), res)
	if err != nil {
		t.Fatal(err)
	}
	bits := first.Readout().Bits()
	trace := first.Trace
	second, err := e.Replay(ctx, r, p.Steps(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("resolver called %d times, expected 2", calls)
	}
	if second.Readout().Bits() != bits {
		t.Errorf("replay readout %q, expected %q", second.Readout().Bits(), bits)
	}
	if diff := cmp.Diff(trace, second.Trace); diff != "" {
		t.Errorf("replay trace mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_determinism(t *testing.T) {
	e := fredy.NewEngine()
	ctx := context.Background()
	f := func(seed int64) bool {
		rng := rand.New(rand.NewSource(seed))
		size := rng.Intn(10) + 1
		p := fredytest.RandomProgram(rng, size, rng.Intn(30), true)
		bits := fredytest.RandomBits(rng, size)
		r1, err1 := e.RunBits(ctx, p, bits)
		r2, err2 := e.RunBits(ctx, p, bits)
		if err1 != nil || err2 != nil {
			return false
		}
		return cmp.Equal(r1.Trace, r2.Trace) && r1.Readout() == r2.Readout()
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

// Each controlled swap is its own inverse, so running a schedule followed by
// the same schedule in reverse order restores the register, provided no step
// uses its control slot as an operand.
func TestEngine_selfInverse(t *testing.T) {
	e := fredy.NewEngine()
	f := func(seed int64) bool {
		rng := rand.New(rand.NewSource(seed))
		size := rng.Intn(10) + 2
		p := fredytest.RandomProgram(rng, size, rng.Intn(30), false)
		r := p.NewRegister()
		if err := r.ResolveBits(fredytest.RandomBits(rng, size)); err != nil {
			return false
		}
		in := r.Occupants()
		steps := p.Steps()
		back := make([]fredy.Step, len(steps))
		for i, s := range steps {
			back[len(steps)-1-i] = s
		}
		if _, err := e.Apply(r, steps); err != nil {
			return false
		}
		if _, err := e.Apply(r, back); err != nil {
			return false
		}
		return cmp.Equal(in, r.Occupants())
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}

	// a single step applied twice
	r, _ := fredy.NewRegister([]string{"A", "B", "EMPTY"})
	s := []fredy.Step{{West: 1, Control: 2, East: 3}, {West: 1, Control: 2, East: 3}}
	if _, err := e.Apply(r, s); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]bool{true, true, false}, r.Occupancy()); diff != "" {
		t.Errorf("occupancy mismatch (-want +got):\n%s", diff)
	}
}

// Swapping two adjacent steps that share no slot does not change the readout.
func TestEngine_independentStepsCommute(t *testing.T) {
	e := fredy.NewEngine()
	ctx := context.Background()
	f := func(seed int64) bool {
		rng := rand.New(rand.NewSource(seed))
		size := 6 + rng.Intn(6)
		p := fredytest.RandomProgram(rng, size, 0, true)
		perm := rng.Perm(size)
		a := fredy.Step{West: perm[0] + 1, Control: perm[1] + 1, East: perm[2] + 1}
		b := fredy.Step{West: perm[3] + 1, Control: perm[4] + 1, East: perm[5] + 1}
		bits := fredytest.RandomBits(rng, size)

		p1, err := fredy.NewProgram(p.Labels(), []fredy.Step{a, b})
		if err != nil {
			return false
		}
		p2, err := fredy.NewProgram(p.Labels(), []fredy.Step{b, a})
		if err != nil {
			return false
		}
		r1, err1 := e.RunBits(ctx, p1, bits)
		r2, err2 := e.RunBits(ctx, p2, bits)
		if err1 != nil || err2 != nil {
			return false
		}
		return r1.Readout().Bits() == r2.Readout().Bits()
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

type countObserver struct {
	nights, fired, runs int
}

func (o *countObserver) NightEvaluated(_ int, fired bool) {
	o.nights++
	if fired {
		o.fired++
	}
}

func (o *countObserver) RunCompleted(*fredy.Result) { o.runs++ }

func TestEngine_observer(t *testing.T) {
	var o countObserver
	e := fredy.NewEngine(fredy.WithObserver(&o), fredy.WithLogger(nil))
	if _, err := e.Run(context.Background(), mustParse(t, "A,B,EMPTY\n1,2,3\n2,1,3\n"), nil); err != nil {
		t.Fatal(err)
	}
	if o.nights != 2 || o.fired != 1 || o.runs != 1 {
		t.Errorf("observer got %+v", o)
	}
}
