// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/db47h/fredy/internal/cli"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Parse and validate a program without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cli.Load(args[0])
			if err != nil {
				return err
			}
			r := p.NewRegister()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d animatronics, %d optional, %d output, %d nights\n",
				args[0], r.Size(), len(r.Optionals()), r.OutSize(), len(p.Steps()))
			var opts, outs []string
			for _, pos := range r.Optionals() {
				s, err := r.Slot(pos)
				if err != nil {
					return err
				}
				opts = append(opts, s.Label)
			}
			for _, s := range r.Slots() {
				if s.Output {
					outs = append(outs, s.Label)
				}
			}
			if len(opts) > 0 {
				fmt.Fprintln(w, "Optional:", strings.Join(opts, ", "))
			}
			if len(outs) > 0 {
				fmt.Fprintln(w, "Output:", strings.Join(outs, ", "))
			}
			return nil
		},
	}
}
