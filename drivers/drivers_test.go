// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package drivers

import (
	"errors"
	"testing"

	"github.com/gotmc/labdrv"
	"github.com/gotmc/labdrv/agilent"
	"github.com/gotmc/labdrv/hp"
	"github.com/gotmc/labdrv/lib/sim"
)

func TestLookup(t *testing.T) {
	d, err := Lookup("e3631a")
	if err != nil {
		t.Fatal(err)
	}
	if d.Model != "E3631A" {
		t.Errorf("model = %s", d.Model)
	}
	if _, err := Lookup("34401A"); err == nil {
		t.Error("expected error for unknown model")
	}
	if got := Models(); len(got) != 2 || got[0] != "E3631A" || got[1] != "HP8648" {
		t.Errorf("Models = %v", got)
	}
}

func TestOpenE3631A(t *testing.T) {
	d, _ := Lookup("E3631A")
	dev, err := d.Open(sim.E3631A())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := dev.Typed.(*agilent.E3631A); !ok {
		t.Errorf("Typed = %T", dev.Typed)
	}
	ch, err := dev.Scope("N25V")
	if err != nil {
		t.Fatal(err)
	}
	if err := ch.Set("current", 0.5); err != nil {
		t.Fatal(err)
	}
	v, err := ch.Get("current")
	if err != nil {
		t.Fatal(err)
	}
	if v != 0.5 {
		t.Errorf("current = %v", v)
	}
	if _, err := dev.Scope("P12V"); !errors.Is(err, labdrv.ErrUnknownChannel) {
		t.Errorf("err = %v, want ErrUnknownChannel", err)
	}
}

func TestOpenHP8648(t *testing.T) {
	d, _ := Lookup("hp8648")
	dev, err := d.Open(sim.HP8648())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := dev.Typed.(*hp.HP8648); !ok {
		t.Errorf("Typed = %T", dev.Typed)
	}
	inst, err := dev.Scope("")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := inst.Property("frequency"); !ok {
		t.Error("frequency not bound")
	}
	if _, err := dev.Scope("1"); !errors.Is(err, labdrv.ErrUnknownChannel) {
		t.Errorf("err = %v, want ErrUnknownChannel", err)
	}
	id, err := dev.SCPI.ID()
	if err != nil || id != "HEWLETT-PACKARD,8648A,3847A00000,A.01.00" {
		t.Errorf("ID = %q, %v", id, err)
	}
}
