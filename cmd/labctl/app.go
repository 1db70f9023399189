// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gotmc/labdrv"
	"github.com/gotmc/labdrv/drivers"
	"github.com/gotmc/labdrv/lib/cmdlog"
	"github.com/gotmc/labdrv/lib/sim"
	"github.com/gotmc/labdrv/profile"
)

// app holds what the subcommands share. The instrument is opened lazily so
// commands such as ports and props work without one.
type app struct {
	cfg     *config
	log     *zap.Logger
	driver  *drivers.Driver
	dev     *drivers.Device
	cleanup func() error
}

var simulators = map[string]func(...sim.Option) *sim.Instrument{
	"E3631A": sim.E3631A,
	"HP8648": sim.HP8648,
}

func (a *app) init(cfg *config) error {
	a.cfg = cfg
	var err error
	if cfg.Debug {
		a.log, err = zap.NewDevelopment()
	} else {
		a.log, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	a.driver, err = drivers.Lookup(cfg.Model)
	return err
}

// device opens the configured instrument and applies the profile, if any.
func (a *app) device() (*drivers.Device, error) {
	if a.dev != nil {
		return a.dev, nil
	}

	var adapter labdrv.Adapter
	if a.cfg.Dummy {
		newSim, ok := simulators[a.driver.Model]
		if !ok {
			return nil, fmt.Errorf("no simulator for %s", a.driver.Model)
		}
		adapter = newSim(sim.WithLogger(a.log))
		a.log.Info("using simulated instrument", zap.String("model", a.driver.Model))
	} else {
		gpib, cleanup, err := a.cfg.Conn.Setup(a.log)
		if err != nil {
			return nil, err
		}
		adapter, a.cleanup = gpib, cleanup
	}
	if a.cfg.Transcript {
		adapter = cmdlog.Wrap(adapter, os.Stderr)
	}

	dev, err := a.driver.Open(adapter, labdrv.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	if a.cfg.Profile != "" {
		loader, err := profile.NewLoader()
		if err != nil {
			return nil, err
		}
		p, err := loader.Load(a.cfg.Profile)
		if err != nil {
			return nil, err
		}
		if err := p.Apply(dev); err != nil {
			return nil, fmt.Errorf("applying profile %s: %w", a.cfg.Profile, err)
		}
		a.log.Debug("applied profile", zap.String("profile", a.cfg.Profile))
	}
	a.dev = dev
	return dev, nil
}

func (a *app) close() error {
	var err error
	if a.cleanup != nil {
		err = a.cleanup()
		a.cleanup = nil
	}
	if a.log != nil {
		// Sync fails on terminals; nothing useful to report.
		_ = a.log.Sync()
	}
	return err
}

// closeOnError releases the connection when a command fails, since cobra
// skips PersistentPostRunE in that case.
func (a *app) closeOnError(err error) error {
	if err == nil {
		return nil
	}
	return multierr.Append(err, a.close())
}
