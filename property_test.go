// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

import (
	"errors"
	"testing"
)

func TestCountVerbs(t *testing.T) {
	testCases := []struct {
		tmpl    string
		want    int
		wantErr bool
	}{
		{"INST:SEL {ch};:OUTPUT:STATE?", 0, false},
		{"INST:SEL {ch};:OUTPUT:STATE %s", 1, false},
		{":FREQ %e Hz;", 1, false},
		{":POW %g dBm;", 1, false},
		{"DUTY %.2f%%", 1, false},
		{"VOLT %+08.3f", 1, false},
		{"APPL %g,%g", 2, false},
		{"100%%", 0, false},
		{"INST:SEL {chan}", 0, true},
		{"INST:SEL {ch", 0, true},
		{"VOLT %", 0, true},
		{"VOLT %b", 0, true},
	}
	for _, tc := range testCases {
		t.Run(tc.tmpl, func(t *testing.T) {
			got, err := countVerbs(tc.tmpl)
			if tc.wantErr {
				if !errors.Is(err, ErrTemplate) {
					t.Fatalf("err = %v, want ErrTemplate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.want {
				t.Errorf("got %d verbs, want %d", got, tc.want)
			}
		})
	}
}

func TestPropertyCheck(t *testing.T) {
	testCases := []struct {
		name string
		prop Property
		ok   bool
	}{
		{"control", Property{Name: "v", Get: "VOLT?", Set: "VOLT %g"}, true},
		{"measurement", Property{Name: "v", Get: "MEAS:VOLT?"}, true},
		{"setting", Property{Name: "v", Set: "VOLT %g"}, true},
		{"unnamed", Property{Get: "VOLT?"}, false},
		{"no commands", Property{Name: "v"}, false},
		{"verb in get", Property{Name: "v", Get: "VOLT? %g"}, false},
		{"no verb in set", Property{Name: "v", Set: "VOLT"}, false},
		{"two verbs in set", Property{Name: "v", Set: "VOLT %g %g"}, false},
		{"unknown kind", Property{Name: "v", Get: "VOLT?", Kind: Kind(42)}, false},
		{
			"duplicate token",
			Property{Name: "v", Set: "OUTP %s", Kind: Bool, Map: Mapping{{true, "ON"}, {false, "on"}}},
			false,
		},
		{
			"duplicate value",
			Property{Name: "v", Set: "OUTP %s", Kind: Bool, Map: Mapping{{true, "ON"}, {true, "1"}}},
			false,
		},
		{
			"map value of another kind",
			Property{Name: "v", Set: "FUNC %s", Kind: Float, Map: Mapping{{"SIN", "SIN"}, {"SQU", "SQU"}}},
			false,
		},
		{
			"numeric map on float",
			Property{Name: "v", Set: "RANG %s", Kind: Float, Map: Mapping{{1, "LOW"}, {10.0, "HIGH"}}},
			true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.prop.check()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %s", err)
			}
			if !tc.ok && !errors.Is(err, ErrTemplate) {
				t.Errorf("err = %v, want ErrTemplate", err)
			}
		})
	}
}

func TestNumericOnOff(t *testing.T) {
	testCases := map[string]string{
		"1":     "ON",
		"0":     "OFF",
		"+1.0":  "ON",
		"0.000": "OFF",
		"ON":    "ON",
		"OFF":   "OFF",
		"2":     "2",
		"junk":  "junk",
	}
	for in, want := range testCases {
		if got := NumericOnOff(in); got != want {
			t.Errorf("NumericOnOff(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		kind    Kind
		in      string
		want    any
		wantErr bool
	}{
		{Float, "5.000", 5.0, false},
		{Float, "+1.00000000E+08", 100e6, false},
		{Float, "five", nil, true},
		{Int, "+3", 3, false},
		{Int, "3.000", 3, false},
		{Int, "3.5", nil, true},
		{Bool, "ON", true, false},
		{Bool, "off", false, false},
		{Bool, "1", true, false},
		{Bool, "maybe", nil, true},
		{String, "HEWLETT-PACKARD", "HEWLETT-PACKARD", false},
	}
	for _, tc := range testCases {
		t.Run(tc.kind.String()+"/"+tc.in, func(t *testing.T) {
			got, err := parse(tc.kind, tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrParse) {
					t.Fatalf("err = %v, want ErrParse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tc.want, tc.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	if v, err := coerce(Float, 3); err != nil || v != 3.0 {
		t.Errorf("coerce(Float, 3) = %v, %v", v, err)
	}
	if v, err := coerce(Int, 4.0); err != nil || v != 4 {
		t.Errorf("coerce(Int, 4.0) = %v, %v", v, err)
	}
	for _, tc := range []struct {
		kind Kind
		v    any
	}{
		{Float, "5"},
		{Int, 4.5},
		{Bool, "ON"},
		{String, 1},
	} {
		if _, err := coerce(tc.kind, tc.v); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("coerce(%s, %v) err = %v, want ErrInvalidValue", tc.kind, tc.v, err)
		}
	}
}
