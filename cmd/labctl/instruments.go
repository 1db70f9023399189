// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gotmc/labdrv/agilent"
	"github.com/gotmc/labdrv/hp"
)

func idnCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "idn",
		Short: "Identify the instrument and report queued errors",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			dev, err := a.device()
			if err != nil {
				return a.closeOnError(err)
			}
			id, err := dev.SCPI.ID()
			if err != nil {
				return a.closeOnError(err)
			}
			fmt.Println(id)
			return a.closeOnError(dev.SCPI.CheckErrors())
		},
	}
}

func (a *app) supply() (*agilent.E3631A, error) {
	dev, err := a.device()
	if err != nil {
		return nil, err
	}
	psu, ok := dev.Typed.(*agilent.E3631A)
	if !ok {
		return nil, fmt.Errorf("%s is not a power supply", dev.Driver.Model)
	}
	return psu, nil
}

func psuCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "psu",
		Short: "Power supply commands",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the settings and measurements of every output",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				psu, err := a.supply()
				if err != nil {
					return a.closeOnError(err)
				}
				t := newTable("OUTPUT", "ENABLED", "VOLTAGE (V)", "CURRENT (A)", "MEASURED (V)", "MEASURED (A)")
				for _, ch := range psu.Channels() {
					row, err := outputRow(ch)
					if err != nil {
						return a.closeOnError(err)
					}
					t.Row(row...)
				}
				fmt.Println(t)
				return nil
			},
		},
		&cobra.Command{
			Use:   "beep",
			Short: "Sound the front panel beeper",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				psu, err := a.supply()
				if err != nil {
					return a.closeOnError(err)
				}
				return a.closeOnError(psu.Beep())
			},
		},
	)
	return cmd
}

func outputRow(ch agilent.OutputChannel) ([]string, error) {
	on, err := ch.Enabled()
	if err != nil {
		return nil, err
	}
	readings := []func() (float64, error){ch.Voltage, ch.Current, ch.MeasuredVoltage, ch.MeasuredCurrent}
	row := []string{ch.ID(), strconv.FormatBool(on)}
	for _, read := range readings {
		v, err := read()
		if err != nil {
			return nil, err
		}
		row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
	}
	return row, nil
}

func siggenCommand(a *app) *cobra.Command {
	generator := func() (*hp.HP8648, error) {
		dev, err := a.device()
		if err != nil {
			return nil, err
		}
		gen, ok := dev.Typed.(*hp.HP8648)
		if !ok {
			return nil, fmt.Errorf("%s is not a signal generator", dev.Driver.Model)
		}
		return gen, nil
	}

	cmd := &cobra.Command{
		Use:   "siggen",
		Short: "Signal generator commands",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Turn the RF output on",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				gen, err := generator()
				if err != nil {
					return a.closeOnError(err)
				}
				return a.closeOnError(gen.Enable())
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Turn the RF output off",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				gen, err := generator()
				if err != nil {
					return a.closeOnError(err)
				}
				return a.closeOnError(gen.Disable())
			},
		},
	)
	return cmd
}
