// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/gotmc/labdrv"
)

func run(args ...string) error {
	cmd := rootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labctl.yaml")
	if err := os.WriteFile(path, []byte("model: HP8648\npad: 7\nar488: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LABCTL_DELAY", "10ms")

	fs := rootCommand().PersistentFlags()
	if err := fs.Parse([]string{"--pad", "9"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(viper.New(), path, fs)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "HP8648" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.GpibPAD != 9 {
		t.Errorf("pad = %d, want the flag's 9", cfg.GpibPAD)
	}
	if !cfg.AR488 {
		t.Error("ar488 from config file not set")
	}
	if cfg.Delay != 10*time.Millisecond {
		t.Errorf("delay = %v", cfg.Delay)
	}
	if cfg.Baud != 115200 || cfg.ReadTimeout != 2*time.Second || cfg.GpibSAD != 255 {
		t.Errorf("defaults = %+v", cfg.Conn)
	}
}

func TestParseValue(t *testing.T) {
	testCases := []struct {
		kind labdrv.Kind
		in   string
		want any
	}{
		{labdrv.Float, "12.5", 12.5},
		{labdrv.Float, "1e8", 1e8},
		{labdrv.Int, "3", 3},
		{labdrv.Bool, "on", true},
		{labdrv.Bool, "OFF", false},
		{labdrv.Bool, "true", true},
		{labdrv.String, "CURR", "CURR"},
	}
	for _, tc := range testCases {
		got, err := parseValue(tc.kind, tc.in)
		if err != nil || got != tc.want {
			t.Errorf("parseValue(%s, %q) = %v, %v; want %v", tc.kind, tc.in, got, err, tc.want)
		}
	}
	if _, err := parseValue(labdrv.Float, "five"); !errors.Is(err, labdrv.ErrInvalidValue) {
		t.Errorf("err = %v, want ErrInvalidValue", err)
	}
}

func TestDummyCommands(t *testing.T) {
	testCases := [][]string{
		{"--dummy", "idn"},
		{"--dummy", "props"},
		{"--dummy", "psu", "status"},
		{"--dummy", "psu", "beep"},
		{"--dummy", "get", "voltage", "--ch", "P25V"},
		{"--dummy", "set", "enabled", "on", "--ch", "P6V"},
		{"--dummy", "--transcript", "set", "current", "0.5", "--ch", "N25V"},
		{"--dummy", "--model", "HP8648", "siggen", "enable"},
		{"--dummy", "--model", "hp8648", "get", "frequency"},
		{"version"},
	}
	for _, args := range testCases {
		if err := run(args...); err != nil {
			t.Errorf("%q: %v", args, err)
		}
	}
}

func TestDummyCommandErrors(t *testing.T) {
	testCases := [][]string{
		{"--dummy", "set", "voltage", "five", "--ch", "P6V"},
		{"--dummy", "set", "max_voltage", "5", "--ch", "P6V"},
		{"--dummy", "get", "voltage", "--ch", "P12V"},
		{"--dummy", "get", "voltage"},
		{"--dummy", "siggen", "enable"},
		{"--dummy", "--model", "HP8648", "psu", "beep"},
		{"--dummy", "--model", "34401A", "idn"},
	}
	for _, args := range testCases {
		if err := run(args...); err == nil {
			t.Errorf("%q: expected error", args)
		}
	}
}

func TestDummyWithProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clone.yaml")
	doc := "model: E3631A\nchannels:\n  \"*\":\n    enabled:\n      get_process: none\n      map:\n        - {value: true, token: \"1\"}\n        - {value: false, token: \"0\"}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run("--dummy", "--profile", path, "set", "enabled", "on", "--ch", "P6V"); err != nil {
		t.Fatal(err)
	}
	if err := run("--dummy", "--profile", path, "--model", "HP8648", "idn"); err == nil {
		t.Error("expected error for a profile of another model")
	}
}
