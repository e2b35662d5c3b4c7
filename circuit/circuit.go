// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package circuit provides a gate level simulator for controlled swap
// networks.
//
// A network over n slots and d steps is laid out as d+1 layers of n wires.
// Layer 0 holds the prepared inputs. Step k is mounted as a CSWAP component
// reading layer k and driving the west and east wires of layer k+1, plus one
// pass-through component for every other slot. All components are updated
// simultaneously at each simulation step by a pool of worker goroutines, so
// the last layer settles after d+1 steps.
//
package circuit

import (
	"runtime"
	"sync"

	"github.com/db47h/fredy"
	"github.com/pkg/errors"
)

// A Component is a component in a circuit that can Get and Set wire states.
//
type Component func(c *Circuit)

// Circuit is a runnable circuit simulation.
//
type Circuit struct {
	s0    []bool // wire states frame #0
	s1    []bool // wire states frame #1
	in    []bool // prepared inputs
	cs    []Component
	width int
	depth int
	tick  uint

	wc []chan struct{}
	wg sync.WaitGroup
}

// New builds a new circuit of width slots for the given steps.
//
// workers is the number of goroutines used to update the state of the Circuit
// each step of the simulation. If less or equal to 0, the value of GOMAXPROCS
// will be used.
//
// Callers must make sure to call Dispose() once the circuit is no longer needed
// in order to release allocated resources.
//
func New(workers int, width int, steps []fredy.Step) (*Circuit, error) {
	if width < 1 {
		return nil, errors.New("empty register")
	}
	for i, s := range steps {
		if err := s.Check(width); err != nil {
			return nil, errors.Wrapf(err, "night %d", i+1)
		}
	}

	c := &Circuit{
		in:    make([]bool, width),
		width: width,
		depth: len(steps),
	}
	count := width * (len(steps) + 1)
	c.s0 = make([]bool, count)
	c.s1 = make([]bool, count)

	for slot := 1; slot <= width; slot++ {
		c.cs = append(c.cs, input(slot-1, c.Wire(slot, 0)))
	}
	for k, s := range steps {
		c.cs = append(c.cs, cswap(c.Wire(s.West, k), c.Wire(s.Control, k), c.Wire(s.East, k),
			c.Wire(s.West, k+1), c.Wire(s.East, k+1)))
		for slot := 1; slot <= width; slot++ {
			if slot != s.West && slot != s.East {
				c.cs = append(c.cs, pass(c.Wire(slot, k), c.Wire(slot, k+1)))
			}
		}
	}

	// workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers <= 0 {
		workers = 1
	}
	ups := c.cs
	size := len(ups) / workers
	if size*workers < len(ups) {
		size++
	}
	for len(ups) > 0 {
		if size > len(ups) {
			size = len(ups)
		}
		wc := make(chan struct{}, 1)
		c.wc = append(c.wc, wc)
		go worker(c, ups[:size], wc)
		ups = ups[size:]
	}

	return c, nil
}

func input(i int, out int) Component {
	return func(c *Circuit) { c.Set(out, c.in[i]) }
}

func pass(in, out int) Component {
	return func(c *Circuit) { c.Set(out, c.Get(in)) }
}

// cswap reads control ctl before the swap, so a control aliasing one of its
// operands behaves as in the reference engine.
//
func cswap(w, ctl, e, wOut, eOut int) Component {
	return func(c *Circuit) {
		a, b := c.Get(w), c.Get(e)
		if c.Get(ctl) {
			a, b = b, a
		}
		c.Set(wOut, a)
		c.Set(eOut, b)
	}
}

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

// Wire returns the wire number of the given 1-based slot in the given layer.
//
func (c *Circuit) Wire(slot, layer int) int {
	return layer*c.width + slot - 1
}

// Width returns the number of slots.
//
func (c *Circuit) Width() int { return c.width }

// Depth returns the number of steps in the network.
//
func (c *Circuit) Depth() int { return c.depth }

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint { return c.tick }

// Load sets the input state of every slot.
//
func (c *Circuit) Load(in []bool) error {
	if len(in) != c.width {
		return errors.Errorf("got %d inputs for %d slots", len(in), c.width)
	}
	copy(c.in, in)
	return nil
}

// Get returns the state of wire n.
//
func (c *Circuit) Get(n int) bool {
	return c.s0[n]
}

// Set sets the state s of wire n.
//
func (c *Circuit) Set(n int, s bool) {
	c.s1[n] = s
}

// Step advances the simulation by one step.
//
func (c *Circuit) Step() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}

	c.wg.Wait()
	c.tick++
	c.s0, c.s1 = c.s1, c.s0
}

// Settle runs the simulation until the last layer reflects the loaded inputs.
//
func (c *Circuit) Settle() {
	for i := 0; i <= c.depth; i++ {
		c.Step()
	}
}

// Output returns the state of the given 1-based slot on the last layer.
//
func (c *Circuit) Output(slot int) bool {
	return c.Get(c.Wire(slot, c.depth))
}
