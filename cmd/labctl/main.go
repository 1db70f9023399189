// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Command labctl talks to lab instruments through a Prologix GPIB-USB
// controller, or to a simulated instrument with --dummy.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gotmc/labdrv/lib/connutil"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	v := viper.New()
	var configFile string
	app := &app{}

	cmd := &cobra.Command{
		Use:           "labctl",
		Short:         "Control SCPI power supplies and signal generators over GPIB",
		Version:       fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return app.init(cfg)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return app.close()
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&configFile, "config", "", "config file (default: $HOME/.config/labctl/labctl.yaml)")
	fs.String("model", defaultModel, "instrument model")
	fs.String("profile", "", "binding profile applied to the instrument")
	fs.Bool("dummy", false, "use a simulated instrument instead of the GPIB controller")
	fs.Bool("debug", false, "log every command and response")
	fs.Bool("transcript", false, "print a colored transcript of the exchanges on stderr")
	conn := connutil.Defaults()
	conn.AddFlags(fs)

	cmd.AddCommand(
		portsCommand(),
		propsCommand(app),
		getCommand(app),
		setCommand(app),
		idnCommand(app),
		psuCommand(app),
		siggenCommand(app),
		&cobra.Command{
			Use:   "version",
			Short: "Version for labctl",
			Args:  cobra.NoArgs,
			Run: func(_ *cobra.Command, _ []string) {
				fmt.Println(cmd.Version)
			},
		},
	)
	return cmd
}
