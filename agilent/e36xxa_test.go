// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package agilent

import (
	"errors"
	"strings"
	"testing"

	"github.com/gotmc/labdrv"
	"github.com/gotmc/labdrv/lib/sim"
)

func newTestSupply(t *testing.T) (*E3631A, *sim.Instrument) {
	t.Helper()
	s := sim.E3631A()
	psu, err := NewE3631A(s)
	if err != nil {
		t.Fatal(err)
	}
	return psu, s
}

func TestBeep(t *testing.T) {
	psu, s := newTestSupply(t)
	if err := psu.Beep(); err != nil {
		t.Fatal(err)
	}
	if w := s.Writes(); len(w) != 1 || w[0] != "SYST:BEEP" {
		t.Errorf("writes = %q, want exactly SYST:BEEP", w)
	}
	if q := s.Queries(); len(q) != 0 {
		t.Errorf("queries = %q, want none", q)
	}
}

func TestChannels(t *testing.T) {
	psu, _ := newTestSupply(t)
	var ids []string
	for _, ch := range psu.Channels() {
		ids = append(ids, ch.ID())
	}
	if strings.Join(ids, ",") != "P6V,P25V,N25V" {
		t.Errorf("channels = %v", ids)
	}
	if _, err := psu.Ch("P12V"); !errors.Is(err, labdrv.ErrUnknownChannel) {
		t.Errorf("err = %v, want ErrUnknownChannel", err)
	}
}

func TestVoltageIsChannelScoped(t *testing.T) {
	psu, s := newTestSupply(t)
	ch, err := psu.Ch("P25V")
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.SetVoltage(12.5); err != nil {
		t.Fatal(err)
	}
	v, err := ch.Voltage()
	if err != nil {
		t.Fatal(err)
	}
	if v != 12.5 {
		t.Errorf("voltage = %g, want 12.5", v)
	}
	for _, cmd := range append(s.Writes(), s.Queries()...) {
		if !strings.Contains(cmd, "INST:SEL P25V;") {
			t.Errorf("%q does not select P25V", cmd)
		}
		if strings.Contains(cmd, "P6V") || strings.Contains(cmd, "N25V") {
			t.Errorf("%q mentions another channel", cmd)
		}
	}
	if w := s.Writes(); len(w) != 1 || w[0] != "INST:SEL P25V;:SOURCE:VOLTAGE:LEVEL:IMMEDIATE:AMPLITUDE 12.5" {
		t.Errorf("writes = %q", w)
	}

	other, err := psu.Ch("P6V")
	if err != nil {
		t.Fatal(err)
	}
	if v, err := other.Voltage(); err != nil || v != 0 {
		t.Errorf("P6V voltage = %g, %v; want 0", v, err)
	}
}

func TestEnabled(t *testing.T) {
	psu, s := newTestSupply(t)
	ch, err := psu.Ch("P6V")
	if err != nil {
		t.Fatal(err)
	}
	// The simulator powers up answering 0, like the instrument.
	on, err := ch.Enabled()
	if err != nil {
		t.Fatal(err)
	}
	if on {
		t.Error("output enabled at power-up")
	}
	if err := ch.SetEnabled(true); err != nil {
		t.Fatal(err)
	}
	if w := s.Writes(); w[len(w)-1] != "INST:SEL P6V;:OUTPUT:STATE ON" {
		t.Errorf("last write = %q", w[len(w)-1])
	}
	if on, err := ch.Enabled(); err != nil || !on {
		t.Errorf("enabled = %t, %v; want true", on, err)
	}
	if err := ch.SetEnabled(false); err != nil {
		t.Fatal(err)
	}
	if w := s.Writes(); w[len(w)-1] != "INST:SEL P6V;:OUTPUT:STATE OFF" {
		t.Errorf("last write = %q", w[len(w)-1])
	}
}

func TestLimitsAndMeasurements(t *testing.T) {
	psu, _ := newTestSupply(t)
	ch, err := psu.Ch("P6V")
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.SetCurrent(1.5); err != nil {
		t.Fatal(err)
	}
	testCases := []struct {
		name string
		read func() (float64, error)
		want float64
	}{
		{"max_voltage", ch.MaxVoltage, 6.18},
		{"min_voltage", ch.MinVoltage, 0},
		{"max_current", ch.MaxCurrent, 5.15},
		{"min_current", ch.MinCurrent, 0},
		{"current", ch.Current, 1.5},
		{"measured_current", ch.MeasuredCurrent, 1.5},
		{"measured_voltage", ch.MeasuredVoltage, 0},
	}
	for _, tc := range testCases {
		got, err := tc.read()
		if err != nil {
			t.Errorf("%s: %s", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s = %g, want %g", tc.name, got, tc.want)
		}
	}
	for _, name := range []string{"max_voltage", "min_voltage", "measured_voltage", "max_current", "min_current", "measured_current"} {
		if err := ch.Set(name, 1.0); !errors.Is(err, labdrv.ErrInvalidOperation) {
			t.Errorf("set %s err = %v, want ErrInvalidOperation", name, err)
		}
	}
}

func TestIdentify(t *testing.T) {
	psu, _ := newTestSupply(t)
	id, err := psu.ID()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(id, "E3631A") {
		t.Errorf("ID = %q", id)
	}
	if err := psu.CheckErrors(); err != nil {
		t.Errorf("CheckErrors = %v", err)
	}
	if psu.Name() != "HP/Agilent/Keysight E3631A Power Supply" {
		t.Errorf("Name = %q", psu.Name())
	}
}
