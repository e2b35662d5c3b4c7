// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package fredy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// A PresenceResolver decides whether an optional slot is present.
//
type PresenceResolver interface {
	Present(ctx context.Context, s Slot) (bool, error)
}

// ResolverFunc adapts a function to the PresenceResolver interface.
//
type ResolverFunc func(ctx context.Context, s Slot) (bool, error)

// Present calls f(ctx, s).
//
func (f ResolverFunc) Present(ctx context.Context, s Slot) (bool, error) { return f(ctx, s) }

// BitString returns a PresenceResolver that consumes bits one at a time. See
// PresentBit. Asking for more answers than there are bits fails with
// ErrMalformedInput.
//
func BitString(bits string) PresenceResolver {
	rs := []rune(bits)
	i := 0
	return ResolverFunc(func(_ context.Context, s Slot) (bool, error) {
		if i >= len(rs) {
			return false, &Error{Kind: ErrMalformedInput, Msg: "resolution input exhausted at " + s.Label}
		}
		i++
		return PresentBit(rs[i-1]), nil
	})
}

// A Prompter asks the user about optional slots:
//
//	Is (Golden!) present? (Y/N)
//
// Answers "y", "yes" and "1" (case insensitive) mean present. Anything else,
// including end of input, means absent.
//
type Prompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewPrompter returns a new Prompter reading answers from r. If w is nil, no
// prompt is written.
//
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{r: bufio.NewReader(r), w: w}
}

// Present implements PresenceResolver.
//
func (p *Prompter) Present(ctx context.Context, s Slot) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p.w != nil {
		fmt.Fprintf(p.w, "Is %s present? (Y/N) ", s.Label)
	}
	ans, err := p.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, "read answer")
	}
	switch strings.ToLower(strings.TrimSpace(ans)) {
	case "y", "yes", "1":
		return true, nil
	}
	return false, nil
}
