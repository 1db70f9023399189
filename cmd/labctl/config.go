// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gotmc/labdrv/lib/connutil"
)

const defaultModel = "E3631A"

type config struct {
	Model      string `mapstructure:"model"`
	Profile    string `mapstructure:"profile"`
	Dummy      bool   `mapstructure:"dummy"`
	Debug      bool   `mapstructure:"debug"`
	Transcript bool   `mapstructure:"transcript"`

	connutil.Conn `mapstructure:",squash"`
}

// loadConfig merges, from lowest to highest priority, the defaults, the
// config file, LABCTL_* environment variables and the command line flags.
func loadConfig(v *viper.Viper, path string, fs *pflag.FlagSet) (*config, error) {
	d := connutil.Defaults()
	v.SetDefault("model", defaultModel)
	v.SetDefault("baud", d.Baud)
	v.SetDefault("pad", d.GpibPAD)
	v.SetDefault("sad", d.GpibSAD)
	v.SetDefault("delay", d.Delay)
	v.SetDefault("read_timeout", d.ReadTimeout)

	v.SetEnvPrefix("LABCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("labctl")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/labctl")
		v.AddConfigPath(".")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	if bindErr != nil {
		return nil, bindErr
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
