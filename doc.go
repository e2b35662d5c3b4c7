// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package fredy implements an interpreter for "Finites at Fredy's" programs.

A program declares a register of named slots (the animatronics) on its first
line and a schedule of nights on the following lines. Each night is a
controlled swap (a Fredkin gate): if the control slot is occupied, the contents
of the west and east slots are exchanged. Once all nights have run, the slots
flagged with '!' are read out as a bit string, most significant bit first.

	Foxy, EMPTY, (Golden!), Bonnie!
	# west, control, east
	1,2,3
	3,4,1

Slots declared as EMPTY start empty. Parenthesized slots are optional: their
presence is resolved before the first night, either from a bit string or by
asking a PresenceResolver.

The Engine is the reference implementation. Any Executor, such as the
gate-level simulator in package circuit, must agree with it: since the inputs
are classical and every gate is a permutation, all shots of an ideal backend
yield the bit string computed by Readout.Bits.
*/
package fredy
