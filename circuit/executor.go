// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package circuit

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/db47h/fredy"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Executor is a fredy.Executor running shots on simulated circuits.
//
// Shots are split in Parallel batches, each run on its own Circuit with
// Workers goroutines. With a zero Noise, every shot yields the same bit
// string. Otherwise each measured bit is flipped with probability Noise,
// using a pseudo random source seeded from Seed and the batch number.
//
type Executor struct {
	Workers  int
	Parallel int
	Noise    float64
	Seed     int64

	occ   []bool
	steps []fredy.Step
	mask  []int
}

// Prepare implements fredy.Executor.
//
func (x *Executor) Prepare(occupancy []bool) error {
	if len(occupancy) == 0 {
		return errors.New("empty register")
	}
	x.occ = append(x.occ[:0], occupancy...)
	x.steps = x.steps[:0]
	x.mask = nil
	return nil
}

// ControlledSwap implements fredy.Executor.
//
func (x *Executor) ControlledSwap(west, control, east int) error {
	s := fredy.Step{West: west, Control: control, East: east}
	if err := s.Check(len(x.occ)); err != nil {
		return err
	}
	x.steps = append(x.steps, s)
	return nil
}

// Measure implements fredy.Executor.
//
func (x *Executor) Measure(mask []int) error {
	for _, p := range mask {
		if p < 1 || p > len(x.occ) {
			return &fredy.Error{Kind: fredy.ErrIndexOutOfRange, Slot: p, Msg: "measured slot"}
		}
	}
	x.mask = append([]int(nil), mask...)
	return nil
}

// Run implements fredy.Executor.
//
func (x *Executor) Run(ctx context.Context, shots int) (*fredy.Counts, error) {
	if shots < 1 {
		return nil, errors.Errorf("invalid shot count %d", shots)
	}
	if x.Noise < 0 || x.Noise > 1 {
		return nil, errors.Errorf("noise %v outside [0, 1]", x.Noise)
	}
	batches := x.Parallel
	if batches <= 0 {
		batches = 1
	}
	if batches > shots {
		batches = shots
	}

	var (
		mu    sync.Mutex
		total fredy.Counts
	)
	g, ctx := errgroup.WithContext(ctx)
	for b := 0; b < batches; b++ {
		n := shots / batches
		if b < shots%batches {
			n++
		}
		b := b
		g.Go(func() error {
			c, err := x.batch(ctx, b, n)
			if err != nil {
				return err
			}
			mu.Lock()
			total.Merge(c)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &total, nil
}

func (x *Executor) batch(ctx context.Context, b, shots int) (*fredy.Counts, error) {
	c, err := New(x.Workers, len(x.occ), x.steps)
	if err != nil {
		return nil, err
	}
	defer c.Dispose()
	if err = c.Load(x.occ); err != nil {
		return nil, err
	}
	var rng *rand.Rand
	if x.Noise > 0 {
		rng = rand.New(rand.NewSource(x.Seed + int64(b)))
	}

	var counts fredy.Counts
	var sb strings.Builder
	for i := 0; i < shots; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.Settle()
		sb.Reset()
		for _, p := range x.mask {
			v := c.Output(p)
			if rng != nil && rng.Float64() < x.Noise {
				v = !v
			}
			if v {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		counts.Add(sb.String(), 1)
	}
	return &counts, nil
}
