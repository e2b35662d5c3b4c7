// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"fmt"
	"io"

	"github.com/db47h/fredy"
	"github.com/muesli/termenv"
)

// WriteReports prints one line per night. Fired nights are highlighted when
// colour is set.
//
func WriteReports(w io.Writer, rs []fredy.Report, colour bool) {
	profile := termenv.Ascii
	if colour {
		profile = termenv.ANSI256
	}
	o := termenv.NewOutput(w, termenv.WithProfile(profile))
	for _, r := range rs {
		line := o.String(r.String())
		if r.Fired {
			line = line.Foreground(o.Color("#fb7185")).Bold()
		} else {
			line = line.Faint()
		}
		fmt.Fprintln(w, line)
	}
}

// WriteReadout prints the bit string, integer and character values of ro.
//
func WriteReadout(w io.Writer, ro fredy.Readout) error {
	fmt.Fprintln(w, "Bits:", ro.Bits())
	fmt.Fprintln(w, "As Int:", ro.Int())
	c, err := ro.Char()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "As Chr: %q\n", c)
	return nil
}
