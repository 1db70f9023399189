// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package drivers looks up instrument drivers by model name, for tools that
// pick the instrument at run time.
package drivers

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gotmc/labdrv"
	"github.com/gotmc/labdrv/agilent"
	"github.com/gotmc/labdrv/hp"
)

// Driver describes one instrument model.
type Driver struct {
	Model       string
	Description string

	// Properties are bound on the instrument itself, ChannelProperties on
	// each of Channels.
	Properties        *labdrv.Table
	Channels          []string
	ChannelProperties *labdrv.Table

	open func(labdrv.Adapter, ...labdrv.Option) (*Device, error)
}

// Open creates the instrument on adapter.
func (d *Driver) Open(adapter labdrv.Adapter, opts ...labdrv.Option) (*Device, error) {
	dev, err := d.open(adapter, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Model, err)
	}
	dev.Driver = d
	return dev, nil
}

// Device is an opened instrument. Typed holds the model's own driver type,
// such as *agilent.E3631A.
type Device struct {
	Driver     *Driver
	Instrument *labdrv.Instrument
	SCPI       labdrv.SCPI
	Typed      any

	channel func(id string) (labdrv.Accessor, error)
}

// Scope returns the channel with the given id, or the instrument itself
// when id is empty.
func (d *Device) Scope(id string) (labdrv.Accessor, error) {
	if id == "" {
		return d.Instrument, nil
	}
	if d.channel == nil {
		return nil, fmt.Errorf("%s has no channels: %w", d.Driver.Model, labdrv.ErrUnknownChannel)
	}
	return d.channel(id)
}

var registry = []*Driver{
	{
		Model:             "E3631A",
		Description:       "HP/Agilent/Keysight E3631A triple output DC power supply",
		Channels:          agilent.E3631AChannels,
		ChannelProperties: agilent.OutputProperties,
		open: func(a labdrv.Adapter, opts ...labdrv.Option) (*Device, error) {
			psu, err := agilent.NewE3631A(a, opts...)
			if err != nil {
				return nil, err
			}
			return &Device{
				Instrument: psu.Instrument,
				SCPI:       psu.SCPI,
				Typed:      psu,
				channel: func(id string) (labdrv.Accessor, error) {
					ch, err := psu.Ch(id)
					if err != nil {
						return nil, err
					}
					return ch.Channel, nil
				},
			}, nil
		},
	},
	{
		Model:       "HP8648",
		Description: "Hewlett-Packard 8648 RF signal generator",
		Properties:  hp.HP8648Properties,
		open: func(a labdrv.Adapter, opts ...labdrv.Option) (*Device, error) {
			gen := hp.NewHP8648(a, opts...)
			return &Device{Instrument: gen.Instrument, SCPI: gen.SCPI, Typed: gen}, nil
		},
	},
}

// Lookup returns the driver for model, ignoring case.
func Lookup(model string) (*Driver, error) {
	for _, d := range registry {
		if strings.EqualFold(d.Model, model) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unknown model %q (have %s)", model, strings.Join(Models(), ", "))
}

// Models returns the supported model names, sorted.
func Models() []string {
	models := make([]string, 0, len(registry))
	for _, d := range registry {
		models = append(models, d.Model)
	}
	slices.Sort(models)
	return models
}
