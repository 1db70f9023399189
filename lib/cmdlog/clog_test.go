package cmdlog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gotmc/labdrv/lib/sim"
)

func TestTranscriptPassesThrough(t *testing.T) {
	s := sim.HP8648()
	var out bytes.Buffer
	tr := Wrap(s, &out)

	if err := tr.Command(":FREQ %e Hz;", 1e9); err != nil {
		t.Fatal(err)
	}
	resp, err := tr.Query(":FREQ?;")
	if err != nil {
		t.Fatal(err)
	}
	if resp != "1.000000e+09\n" {
		t.Errorf("response = %q", resp)
	}
	if w := s.Writes(); len(w) != 1 || w[0] != ":FREQ 1.000000e+09 Hz;" {
		t.Errorf("writes = %q", w)
	}
	for _, want := range []string{":FREQ 1.000000e+09 Hz;", ":FREQ?;", "[12]", "1.000000e+09"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("transcript lacks %q:\n%s", want, out.String())
		}
	}
}

func TestTranscriptErrorsUnchanged(t *testing.T) {
	s := sim.New()
	broken := errors.New("port closed")
	s.Fail(broken)
	var out bytes.Buffer
	tr := Wrap(s, &out)
	if _, err := tr.Query("*IDN?"); err != broken {
		t.Errorf("err = %v, want %v", err, broken)
	}
	if !strings.Contains(out.String(), "port closed") {
		t.Errorf("transcript lacks the error: %q", out.String())
	}
}

func TestIsAscii(t *testing.T) {
	if !isAscii("ID TEK/7912AD,V77.1,F3.1;\r\n") {
		t.Error("printable response reported as binary")
	}
	if isAscii("%\x00\x04\x01\x02") {
		t.Error("binary response reported as ascii")
	}
}
