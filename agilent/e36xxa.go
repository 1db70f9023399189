// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package agilent provides drivers for HP/Agilent/Keysight E36xxA DC power
// supplies.
package agilent

import (
	"github.com/gotmc/labdrv"
)

// OutputProperties are the bindings of one power supply output. {ch} is the
// output's SCPI name, selected with INST:SEL before each command.
var OutputProperties = labdrv.MustTable(
	labdrv.Property{
		Name:       "enabled",
		Get:        "INST:SEL {ch};:OUTPUT:STATE?",
		Set:        "INST:SEL {ch};:OUTPUT:STATE %s",
		Kind:       labdrv.Bool,
		Map:        labdrv.OnOff,
		GetProcess: labdrv.NumericOnOff,
		Dynamic:    true,
		Doc:        "Output enabled.",
	},
	labdrv.Property{
		Name: "voltage",
		Get:  "INST:SEL {ch};:SOURCE:VOLTAGE:LEVEL:IMMEDIATE:AMPLITUDE?",
		Set:  "INST:SEL {ch};:SOURCE:VOLTAGE:LEVEL:IMMEDIATE:AMPLITUDE %g",
		Kind: labdrv.Float,
		Unit: "V",
		Doc:  "Output voltage setting.",
	},
	labdrv.Property{
		Name: "max_voltage",
		Get:  "INST:SEL {ch};:SOURCE:VOLTAGE:LEVEL:IMMEDIATE:AMPLITUDE? MAX",
		Kind: labdrv.Float,
		Unit: "V",
		Doc:  "Maximum possible output voltage.",
	},
	labdrv.Property{
		Name: "min_voltage",
		Get:  "INST:SEL {ch};:SOURCE:VOLTAGE:LEVEL:IMMEDIATE:AMPLITUDE? MIN",
		Kind: labdrv.Float,
		Unit: "V",
		Doc:  "Minimum possible output voltage.",
	},
	labdrv.Property{
		Name: "measured_voltage",
		Get:  "MEASURE:VOLTAGE:DC? {ch}",
		Kind: labdrv.Float,
		Unit: "V",
		Doc:  "Measured output voltage.",
	},
	labdrv.Property{
		Name: "current",
		Get:  "INST:SEL {ch};:SOURCE:CURRENT:LEVEL:IMMEDIATE:AMPLITUDE?",
		Set:  "INST:SEL {ch};:SOURCE:CURRENT:LEVEL:IMMEDIATE:AMPLITUDE %g",
		Kind: labdrv.Float,
		Unit: "A",
		Doc:  "Output current limit setting.",
	},
	labdrv.Property{
		Name: "max_current",
		Get:  "INST:SEL {ch};:SOURCE:CURRENT:LEVEL:IMMEDIATE:AMPLITUDE? MAX",
		Kind: labdrv.Float,
		Unit: "A",
		Doc:  "Maximum possible output current.",
	},
	labdrv.Property{
		Name: "min_current",
		Get:  "INST:SEL {ch};:SOURCE:CURRENT:LEVEL:IMMEDIATE:AMPLITUDE? MIN",
		Kind: labdrv.Float,
		Unit: "A",
		Doc:  "Minimum possible output current.",
	},
	labdrv.Property{
		Name: "measured_current",
		Get:  "MEASURE:CURRENT:DC? {ch}",
		Kind: labdrv.Float,
		Unit: "A",
		Doc:  "Measured output current.",
	},
)

// OutputChannel is one output of an E36xxA power supply.
type OutputChannel struct {
	*labdrv.Channel
}

// Enabled reports whether the output is on.
func (c OutputChannel) Enabled() (bool, error) { return c.Bool("enabled") }

// SetEnabled turns the output on or off.
func (c OutputChannel) SetEnabled(on bool) error { return c.Set("enabled", on) }

// Voltage returns the output voltage setting in volts.
func (c OutputChannel) Voltage() (float64, error) { return c.Float("voltage") }

// SetVoltage sets the output voltage in volts.
func (c OutputChannel) SetVoltage(volts float64) error { return c.Set("voltage", volts) }

// MaxVoltage returns the highest voltage the output can be set to.
func (c OutputChannel) MaxVoltage() (float64, error) { return c.Float("max_voltage") }

// MinVoltage returns the lowest voltage the output can be set to.
func (c OutputChannel) MinVoltage() (float64, error) { return c.Float("min_voltage") }

// MeasuredVoltage measures the output voltage in volts.
func (c OutputChannel) MeasuredVoltage() (float64, error) { return c.Float("measured_voltage") }

// Current returns the output current setting in amperes.
func (c OutputChannel) Current() (float64, error) { return c.Float("current") }

// SetCurrent sets the output current in amperes.
func (c OutputChannel) SetCurrent(amps float64) error { return c.Set("current", amps) }

// MaxCurrent returns the highest current the output can be set to.
func (c OutputChannel) MaxCurrent() (float64, error) { return c.Float("max_current") }

// MinCurrent returns the lowest current the output can be set to.
func (c OutputChannel) MinCurrent() (float64, error) { return c.Float("min_current") }

// MeasuredCurrent measures the output current in amperes.
func (c OutputChannel) MeasuredCurrent() (float64, error) { return c.Float("measured_current") }

// E36xxA is the common base of the E36xxA family.
type E36xxA struct {
	*labdrv.Instrument
	labdrv.SCPI
}

// NewE36xxA creates a power supply of the given model name.
func NewE36xxA(adapter labdrv.Adapter, model string, opts ...labdrv.Option) *E36xxA {
	inst := labdrv.New(adapter, model, nil, opts...)
	return &E36xxA{Instrument: inst, SCPI: labdrv.NewSCPI(inst)}
}

// Beep sounds the front panel beeper.
func (p *E36xxA) Beep() error { return p.Write("SYST:BEEP") }

// E3631AChannels are the SCPI names of the E3631A outputs.
var E3631AChannels = []string{"P6V", "P25V", "N25V"}

// E3631A is the triple output E3631A.
type E3631A struct {
	*E36xxA
	ch *labdrv.ChannelSet[OutputChannel]
}

// NewE3631A creates an E3631A with its three outputs.
func NewE3631A(adapter labdrv.Adapter, opts ...labdrv.Option) (*E3631A, error) {
	base := NewE36xxA(adapter, "HP/Agilent/Keysight E3631A Power Supply", opts...)
	ch, err := labdrv.NewChannelSet(base.Instrument, E3631AChannels, OutputProperties,
		func(c *labdrv.Channel) OutputChannel { return OutputChannel{c} })
	if err != nil {
		return nil, err
	}
	return &E3631A{E36xxA: base, ch: ch}, nil
}

// Ch returns the output with the given SCPI name: P6V, P25V or N25V.
func (p *E3631A) Ch(id string) (OutputChannel, error) { return p.ch.Get(id) }

// Channels returns the outputs in front panel order.
func (p *E3631A) Channels() []OutputChannel { return p.ch.All() }
