// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package prologix

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gotmc/query"
)

// controllerQuerier sends queries to the Prologix itself instead of the
// instrument, so the query helpers can parse controller settings.
type controllerQuerier struct{ c *Controller }

func (q controllerQuerier) Query(cmd string) (string, error) {
	s, err := q.c.QueryController(cmd)
	return strings.TrimSpace(s), err
}

// Version returns the Prologix controller's version string.
func (c *Controller) Version() (string, error) {
	return query.String(controllerQuerier{c}, "ver")
}

// InstrumentAddress returns the primary GPIB address currently configured
// and the secondary address, or 0 if there is none.
func (c *Controller) InstrumentAddress() (primary, secondary int, err error) {
	s, err := c.QueryController("addr")
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, 0, fmt.Errorf("unexpected address response %q", s)
	}
	if primary, err = strconv.Atoi(fields[0]); err != nil {
		return 0, 0, fmt.Errorf("parsing primary address %q: %w", fields[0], err)
	}
	if len(fields) == 2 {
		if secondary, err = strconv.Atoi(fields[1]); err != nil {
			return 0, 0, fmt.Errorf("parsing secondary address %q: %w", fields[1], err)
		}
	}
	return primary, secondary, nil
}

// ReadAfterWrite reports whether the controller automatically reads from the
// instrument after each command (++auto).
func (c *Controller) ReadAfterWrite() (bool, error) {
	return query.Bool(controllerQuerier{c}, "auto")
}

// SetReadAfterWrite enables or disables read-after-write. Queries only need
// to send `++read eoi` while it is disabled.
func (c *Controller) SetReadAfterWrite(enable bool) error {
	cmd := "auto 0"
	if enable {
		cmd = "auto 1"
	}
	if err := c.CommandController(cmd); err != nil {
		return err
	}
	c.mu.Lock()
	c.auto = enable
	c.mu.Unlock()
	return nil
}

// ReadTimeout returns the controller's read timeout in milliseconds.
func (c *Controller) ReadTimeout() (int, error) {
	return query.Int(controllerQuerier{c}, "read_tmo_ms")
}

// ServiceRequest reports whether the SRQ line is asserted.
func (c *Controller) ServiceRequest() (bool, error) {
	return query.Bool(controllerQuerier{c}, "srq")
}

// GPIBTermination returns the terminator appended to instrument commands.
func (c *Controller) GPIBTermination() (GpibTerm, error) {
	n, err := query.Int(controllerQuerier{c}, "eos")
	if err != nil {
		return 0, err
	}
	term := GpibTerm(n)
	if _, ok := gpibTermDesc[term]; !ok {
		return 0, fmt.Errorf("unknown GPIB termination %d", n)
	}
	return term, nil
}

// ClearDevice sends the Selected Device Clear (SDC) message to the instrument.
func (c *Controller) ClearDevice() error {
	return c.CommandController("clr")
}

// FrontPanel returns the instrument to local control when enable is true, or
// locks out its front panel otherwise.
func (c *Controller) FrontPanel(enable bool) error {
	if enable {
		return c.CommandController("loc")
	}
	return c.CommandController("llo")
}
