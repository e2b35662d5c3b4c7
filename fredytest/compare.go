// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package fredytest provides utility functions for testing executors.
//
package fredytest

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/db47h/fredy"
)

// RandomProgram returns a random program over size slots with the given number
// of steps. Slots are randomly occupied, empty or optional, and at least one
// of them is an output. Unless aliasing is true, no step uses its control
// slot as one of its operands.
//
func RandomProgram(rng *rand.Rand, size, steps int, aliasing bool) *fredy.Program {
	if size < 1 || !aliasing && size < 2 {
		panic("register too small")
	}
	labels := make([]string, size)
	out := false
	for i := range labels {
		var l string
		switch rng.Intn(3) {
		case 0:
			l = "s" + strconv.Itoa(i+1)
		case 1:
			l = fredy.EmptyMarker
		default:
			l = "(o" + strconv.Itoa(i+1) + ")"
		}
		if rng.Intn(2) == 0 || i == size-1 && !out {
			l += fredy.OutputMarker
			out = true
		}
		labels[i] = l
	}
	ss := make([]fredy.Step, steps)
	for i := range ss {
		s := fredy.Step{West: rng.Intn(size) + 1, Control: rng.Intn(size) + 1, East: rng.Intn(size) + 1}
		for !aliasing && (s.Control == s.West || s.Control == s.East) {
			s.Control = rng.Intn(size) + 1
		}
		ss[i] = s
	}
	p, err := fredy.NewProgram(labels, ss)
	if err != nil {
		panic(err)
	}
	return p
}

// RandomBits returns a random resolution bit string of length n.
//
func RandomBits(rng *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(byte('0' + rng.Intn(2)))
	}
	return b.String()
}

// CompareExecutor runs p resolved with bits on the reference engine and
// samples it on ex for the given number of shots. It fails t if ex reports
// anything but the reference readout for every shot.
//
func CompareExecutor(t testing.TB, ex fredy.Executor, p *fredy.Program, bits string, shots int) {
	t.Helper()
	ctx := context.Background()

	res, err := fredy.NewEngine().RunBits(ctx, p, bits)
	if err != nil {
		t.Fatal(err)
	}
	want := res.Readout().Bits()

	r := p.NewRegister()
	if err = r.ResolveBits(bits); err != nil {
		t.Fatal(err)
	}
	c, err := fredy.Sample(ctx, ex, r, p.Steps(), shots)
	if err != nil {
		t.Fatal(err)
	}
	if err = fredy.Agree(c, want, shots); err != nil {
		t.Fatalf("labels %v, steps %v, input %q: %v", p.Labels(), p.Steps(), bits, err)
	}
}

// CompareRandom runs CompareExecutor against iter random programs. A new
// executor is obtained from newEx for each program.
//
func CompareRandom(t testing.TB, newEx func() fredy.Executor, iter, shots int) {
	t.Helper()

	seed := time.Now().UnixNano()
	rng := rand.New(rand.NewSource(seed))
	start := time.Now()
	for i := 0; i < iter; i++ {
		size := rng.Intn(12) + 1
		p := RandomProgram(rng, size, rng.Intn(24), true)
		bits := RandomBits(rng, size)
		CompareExecutor(t, newEx(), p, bits, shots)
	}
	t.Logf("seed %d: %d programs in %v", seed, iter, time.Since(start))
}
