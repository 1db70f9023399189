// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

/*
Package labdrv binds instrument settings to SCPI command templates.

A driver declares a Table of Property bindings, each pairing a query
template with a set template:

	var outputs = labdrv.MustTable(
		labdrv.Property{
			Name: "voltage",
			Get:  "INST:SEL {ch};:VOLT?",
			Set:  "INST:SEL {ch};:VOLT %g",
			Kind: labdrv.Float,
			Unit: "V",
		},
	)

Reading a property sends its query through the Adapter and parses the
response. Writing validates the value, maps it to its wire token and sends
the formatted set command. {ch} is replaced with the channel identifier when
the property is accessed through a Channel. Nothing is cached: every read
queries the instrument.

Each Instrument and Channel owns a clone of its table, so a dynamic property
can be re-pointed at different commands on one instance with Override.
*/
package labdrv
