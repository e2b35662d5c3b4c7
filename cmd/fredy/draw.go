// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"github.com/db47h/fredy/circuit"
	"github.com/db47h/fredy/internal/cli"
	"github.com/spf13/cobra"
)

func newDrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draw FILE",
		Short: "Print the circuit diagram of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cli.Load(args[0])
			if err != nil {
				return err
			}
			return circuit.Draw(cmd.OutOrStdout(), p.Labels(), p.Steps(), p.NewRegister().Mask())
		},
	}
}
