// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time.
//
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fredy",
		Short: "Finites at Fredy's interpreter",
		Long: `fredy interprets Finites at Fredy's programs: a register of animatronics
and a schedule of nightly controlled swaps, read out as a bit string.

See https://esolangs.org/wiki/Finites_at_Fredy%27s`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	run := newRunCmd()
	root.AddCommand(run, newCheckCmd(), newDrawCmd(), newVersionCmd())

	// 'run' is the default command.
	root.Args = run.Args
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())
	return root
}
