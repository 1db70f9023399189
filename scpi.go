// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// maxErrorQueue bounds CheckErrors in case an instrument never reports an
// empty queue.
const maxErrorQueue = 32

// SCPI provides the IEEE 488.2 common commands and the SCPI error queue.
// Drivers for SCPI instruments embed it next to their *Instrument.
type SCPI struct {
	inst *Instrument
}

// NewSCPI returns the common commands for inst.
func NewSCPI(inst *Instrument) SCPI { return SCPI{inst: inst} }

// ID returns the identification string (*IDN?).
func (s SCPI) ID() (string, error) {
	resp, err := s.inst.Ask("*IDN?")
	return strings.TrimSpace(resp), err
}

// Reset resets the instrument to its power-on state (*RST).
func (s SCPI) Reset() error { return s.inst.Write("*RST") }

// Clear clears the status registers and error queue (*CLS).
func (s SCPI) Clear() error { return s.inst.Write("*CLS") }

// Status returns the status byte (*STB?).
func (s SCPI) Status() (int, error) {
	resp, err := s.inst.Ask("*STB?")
	if err != nil {
		return 0, err
	}
	v, err := parse(Int, strings.TrimSpace(resp))
	if err != nil {
		return 0, fmt.Errorf("*STB?: %w", err)
	}
	return v.(int), nil
}

// Complete blocks until pending operations finish and reports the result
// of *OPC?.
func (s SCPI) Complete() (bool, error) {
	resp, err := s.inst.Ask("*OPC?")
	if err != nil {
		return false, err
	}
	v, err := parse(Bool, strings.TrimSpace(resp))
	if err != nil {
		return false, fmt.Errorf("*OPC?: %w", err)
	}
	return v.(bool), nil
}

// Options returns the installed options (*OPT?).
func (s SCPI) Options() ([]string, error) {
	resp, err := s.inst.Ask("*OPT?")
	if err != nil {
		return nil, err
	}
	resp = strings.TrimSpace(resp)
	if resp == "" || resp == "0" {
		return nil, nil
	}
	opts := strings.Split(resp, ",")
	for i := range opts {
		opts[i] = strings.Trim(strings.TrimSpace(opts[i]), `"`)
	}
	return opts, nil
}

// Error is an entry of the instrument's SCPI error queue.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("instrument error %d: %s", e.Code, e.Message)
}

// NextError pops one entry off the error queue (SYST:ERR?). It returns a
// nil *Error when the queue is empty.
func (s SCPI) NextError() (*Error, error) {
	resp, err := s.inst.Ask("SYST:ERR?")
	if err != nil {
		return nil, err
	}
	e, err := parseError(resp)
	if err != nil {
		return nil, err
	}
	if e.Code == 0 {
		return nil, nil
	}
	return e, nil
}

// CheckErrors drains the error queue and returns every entry found,
// combined into a single error.
func (s SCPI) CheckErrors() error {
	var errs error
	for range maxErrorQueue {
		e, err := s.NextError()
		if err != nil {
			return multierr.Append(errs, err)
		}
		if e == nil {
			return errs
		}
		errs = multierr.Append(errs, e)
	}
	return errs
}

// parseError parses responses such as `-113,"Undefined header"`.
func parseError(resp string) (*Error, error) {
	code, msg, _ := strings.Cut(strings.TrimSpace(resp), ",")
	n, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("SYST:ERR? %q: %w", resp, ErrParse)
	}
	return &Error{Code: n, Message: strings.Trim(strings.TrimSpace(msg), `"`)}, nil
}
