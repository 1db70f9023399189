// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/gotmc/labdrv"
	"github.com/gotmc/labdrv/lib/find"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func portsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List USB serial ports",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ttys, err := find.AllUsbTtys()
			if err != nil {
				return err
			}
			t := newTable("PORT", "VID", "PID", "SERIAL", "KIND")
			for _, tty := range ttys {
				kind := ""
				switch {
				case find.PrologixFilter(&tty):
					kind = "Prologix"
				case find.ArduinoFilter(&tty):
					kind = "Arduino (AR488?)"
				case find.PiPicoFilter(&tty):
					kind = "Raspberry Pi Pico"
				}
				t.Row(tty.Dev, tty.VID, tty.PID, tty.Serial, kind)
			}
			fmt.Println(t)
			return nil
		},
	}
}

func propsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "props",
		Short: "Show the properties of the selected model",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			d := a.driver
			fmt.Println(d.Description)
			if d.Properties.Len() > 0 {
				fmt.Println(propertyTable(d.Properties.Properties()))
			}
			if len(d.Channels) > 0 {
				fmt.Printf("Channels: %s\n", strings.Join(d.Channels, ", "))
				fmt.Println(propertyTable(d.ChannelProperties.Properties()))
			}
			return nil
		},
	}
}

func propertyTable(props []labdrv.Property) *table.Table {
	t := newTable("NAME", "KIND", "UNIT", "GET", "SET", "DESCRIPTION")
	for _, p := range props {
		t.Row(p.Name, p.Kind.String(), p.Unit, p.Get, p.Set, p.Doc)
	}
	return t
}

func getCommand(a *app) *cobra.Command {
	var ch string
	cmd := &cobra.Command{
		Use:   "get <property>",
		Short: "Read a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			scope, err := a.scope(ch)
			if err != nil {
				return a.closeOnError(err)
			}
			v, err := scope.Get(args[0])
			if err != nil {
				return a.closeOnError(err)
			}
			p, _ := scope.Property(args[0])
			fmt.Println(strings.TrimSpace(fmt.Sprintf("%v %s", v, p.Unit)))
			return nil
		},
	}
	cmd.Flags().StringVar(&ch, "ch", "", "channel id")
	return cmd
}

func setCommand(a *app) *cobra.Command {
	var ch string
	cmd := &cobra.Command{
		Use:   "set <property> <value>",
		Short: "Write a property",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			scope, err := a.scope(ch)
			if err != nil {
				return a.closeOnError(err)
			}
			p, ok := scope.Property(args[0])
			if !ok {
				return a.closeOnError(fmt.Errorf("%s: %w", args[0], labdrv.ErrUnknownProperty))
			}
			v, err := parseValue(p.Kind, args[1])
			if err != nil {
				return a.closeOnError(fmt.Errorf("%s: %w", args[0], err))
			}
			return a.closeOnError(scope.Set(args[0], v))
		},
	}
	cmd.Flags().StringVar(&ch, "ch", "", "channel id")
	return cmd
}

func (a *app) scope(ch string) (labdrv.Accessor, error) {
	dev, err := a.device()
	if err != nil {
		return nil, err
	}
	return dev.Scope(ch)
}

// parseValue converts a command line argument to the Go type of kind.
// Booleans also accept ON and OFF.
func parseValue(kind labdrv.Kind, s string) (any, error) {
	var (
		v   any
		err error
	)
	switch kind {
	case labdrv.Float:
		v, err = cast.ToFloat64E(s)
	case labdrv.Int:
		v, err = cast.ToIntE(s)
	case labdrv.Bool:
		switch strings.ToUpper(s) {
		case "ON":
			return true, nil
		case "OFF":
			return false, nil
		}
		v, err = cast.ToBoolE(s)
	default:
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, labdrv.ErrInvalidValue)
	}
	return v, nil
}
