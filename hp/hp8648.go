// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package hp provides drivers for Hewlett-Packard instruments.
package hp

import (
	"github.com/gotmc/labdrv"
)

// HP8648Properties are the bindings of the HP 8648 RF signal generator.
var HP8648Properties = labdrv.MustTable(
	labdrv.Property{
		Name: "power",
		Get:  ":POW?;",
		Set:  ":POW %g dBm;",
		Kind: labdrv.Float,
		Unit: "dBm",
		Doc:  "Output power.",
	},
	labdrv.Property{
		Name: "frequency",
		Get:  ":FREQ?;",
		Set:  ":FREQ %e Hz;",
		Kind: labdrv.Float,
		Unit: "Hz",
		Doc:  "Output frequency.",
	},
)

// HP8648 is the Hewlett-Packard 8648 RF signal generator.
//
//	gen := hp.NewHP8648(gpib)
//	gen.Reset()
//	gen.SetPower(0)         // 0 dBm
//	gen.SetFrequency(100e6) // 100 MHz
//	gen.Enable()
type HP8648 struct {
	*labdrv.Instrument
	labdrv.SCPI
}

// NewHP8648 creates a signal generator. The name defaults to "Agilent 8648
// RF Signal Generator" and can be changed with WithName.
func NewHP8648(adapter labdrv.Adapter, opts ...labdrv.Option) *HP8648 {
	inst := labdrv.New(adapter, "Agilent 8648 RF Signal Generator", HP8648Properties, opts...)
	return &HP8648{Instrument: inst, SCPI: labdrv.NewSCPI(inst)}
}

// Power returns the output power in dBm.
func (g *HP8648) Power() (float64, error) { return g.Float("power") }

// SetPower sets the output power in dBm.
func (g *HP8648) SetPower(dBm float64) error { return g.Set("power", dBm) }

// Frequency returns the output frequency in Hz.
func (g *HP8648) Frequency() (float64, error) { return g.Float("frequency") }

// SetFrequency sets the output frequency in Hz.
func (g *HP8648) SetFrequency(hz float64) error { return g.Set("frequency", hz) }

// Enable turns the RF output on.
func (g *HP8648) Enable() error { return g.Write(":OUTPUT ON;") }

// Disable turns the RF output off.
func (g *HP8648) Disable() error { return g.Write(":OUTPUT OFF;") }
