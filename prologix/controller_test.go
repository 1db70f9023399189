// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package prologix

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gotmc/labdrv"
)

// Controller must be usable as a labdrv adapter.
var _ labdrv.Adapter = (*Controller)(nil)

// port captures what the controller writes and replays canned replies.
type port struct {
	out bytes.Buffer
	in  *strings.Reader
}

func newPort(replies string) *port {
	return &port{in: strings.NewReader(replies)}
}

func (p *port) Write(b []byte) (int, error) { return p.out.Write(b) }
func (p *port) Read(b []byte) (int, error)  { return p.in.Read(b) }

func (p *port) lines() []string {
	return strings.Split(strings.TrimSuffix(p.out.String(), "\n"), "\n")
}

func TestNewControllerInit(t *testing.T) {
	p := newPort("")
	_, err := NewController(p, 5, true, WithSecondaryAddress(96))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"++verbose 0",
		"++savecfg 0",
		"++addr 5 96",
		"++mode 1",
		"++auto 0",
		"++eoi 1",
		"++eos 0",
		"++read_tmo_ms 500",
		"++eot_char 10",
		"++eot_enable 1",
		"++savecfg 1",
		"++clr",
	}
	got := p.lines()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("init sequence\ngot  %q\nwant %q", got, want)
	}
}

func TestNewControllerAR488(t *testing.T) {
	p := newPort("")
	if _, err := NewController(p, 5, false, WithAR488()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(p.out.String(), "verbose") || strings.Contains(p.out.String(), "savecfg") {
		t.Errorf("AR488 init sent verbose/savecfg: %q", p.lines())
	}
}

func TestInvalidAddresses(t *testing.T) {
	if _, err := NewController(newPort(""), 31, false); err == nil {
		t.Error("expected error for primary address 31")
	}
	if _, err := NewController(newPort(""), 5, false, WithSecondaryAddress(95)); err == nil {
		t.Error("expected error for secondary address 95")
	}
}

func TestCommandAndQuery(t *testing.T) {
	p := newPort("")
	c, err := NewController(p, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	p.out.Reset()
	p.in = strings.NewReader("+5.00000000E+00\n")
	c.r.Reset(p)

	if err := c.Command("  VOLT %g ", 5.0); err != nil {
		t.Fatal(err)
	}
	resp, err := c.Query("VOLT?")
	if err != nil {
		t.Fatal(err)
	}
	if resp != "+5.00000000E+00\n" {
		t.Errorf("response = %q", resp)
	}
	want := []string{"VOLT 5", "VOLT?", "++read eoi"}
	if got := p.lines(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("sent %q, want %q", got, want)
	}
}

func TestEscape(t *testing.T) {
	testCases := map[string]string{
		"*IDN?":       "*IDN?",
		"VOLT +5":     "VOLT \x1b+5",
		"DATA a\x1bb": "DATA a\x1b\x1bb",
	}
	for in, want := range testCases {
		if got := escape(in); got != want {
			t.Errorf("escape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestControllerSettings(t *testing.T) {
	p := newPort("")
	c, err := NewController(p, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	p.out.Reset()
	p.in = strings.NewReader("Prologix GPIB-USB Controller version 6.107\n5 96\n0\n500\n1\n2\n")
	c.r.Reset(p)

	ver, err := c.Version()
	if err != nil || ver != "Prologix GPIB-USB Controller version 6.107" {
		t.Errorf("Version = %q, %v", ver, err)
	}
	pad, sad, err := c.InstrumentAddress()
	if err != nil || pad != 5 || sad != 96 {
		t.Errorf("InstrumentAddress = %d, %d, %v", pad, sad, err)
	}
	auto, err := c.ReadAfterWrite()
	if err != nil || auto {
		t.Errorf("ReadAfterWrite = %t, %v", auto, err)
	}
	tmo, err := c.ReadTimeout()
	if err != nil || tmo != 500 {
		t.Errorf("ReadTimeout = %d, %v", tmo, err)
	}
	srq, err := c.ServiceRequest()
	if err != nil || !srq {
		t.Errorf("ServiceRequest = %t, %v", srq, err)
	}
	term, err := c.GPIBTermination()
	if err != nil || term != AppendLF {
		t.Errorf("GPIBTermination = %v, %v", term, err)
	}
	want := []string{"++ver", "++addr", "++auto", "++read_tmo_ms", "++srq", "++eos"}
	if got := p.lines(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("sent %q, want %q", got, want)
	}
}

func TestReadAfterWriteSkipsRead(t *testing.T) {
	p := newPort("")
	c, err := NewController(p, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetReadAfterWrite(true); err != nil {
		t.Fatal(err)
	}
	p.out.Reset()
	p.in = strings.NewReader("HEWLETT-PACKARD,E3631A,0,2.1-5.0-1.0\n")
	c.r.Reset(p)
	if _, err := c.Query("*IDN?"); err != nil {
		t.Fatal(err)
	}
	if got := p.lines(); len(got) != 1 || got[0] != "*IDN?" {
		t.Errorf("sent %q, want only *IDN?", got)
	}
	if err := c.FrontPanel(true); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(p.out.String(), "++loc\n") {
		t.Errorf("FrontPanel(true) sent %q", p.lines())
	}
}
