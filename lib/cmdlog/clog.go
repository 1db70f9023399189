// Package cmdlog prints a colored transcript of the commands sent to an
// instrument and the responses received.
package cmdlog

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gotmc/labdrv"
)

func isAscii(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		switch {
		case r < 7:
			return true
		case r > 6 && r < 14:
			return false
		case r > 13 && r < 32:
			return true
		case r > 127:
			return true
		}
		return false
	})
}

// Styles for commands, empty responses, printable responses and errors.
var (
	CmdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	R1Style  = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	R2Style  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	ErrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Transcript is a labdrv.Adapter that prints every exchange to w before
// returning the wrapped adapter's results unchanged.
type Transcript struct {
	next labdrv.Adapter
	w    io.Writer
}

// Wrap returns a Transcript of next written to w.
func Wrap(next labdrv.Adapter, w io.Writer) *Transcript {
	return &Transcript{next: next, w: w}
}

// Command sends the formatted command and prints it with any error.
func (t *Transcript) Command(format string, a ...any) error {
	c := format
	if a != nil {
		c = fmt.Sprintf(format, a...)
	}
	err := t.next.Command(c)
	if err != nil {
		fmt.Fprintf(t.w, "%s: %s\n", CmdStyle.Render(c), ErrStyle.Render(err.Error()))
	} else {
		fmt.Fprintf(t.w, "%s()\n", CmdStyle.Render(c))
	}
	return err
}

// Query sends q and prints the response: quoted when printable, as hex
// otherwise.
func (t *Transcript) Query(q string) (string, error) {
	resp, err := t.next.Query(q)
	styled := CmdStyle.Render(q)
	if err != nil {
		fmt.Fprintf(t.w, "%s: %s\n", styled, ErrStyle.Render(err.Error()))
		return resp, err
	}

	a := strings.TrimSuffix(resp, "\n")
	switch {
	case len(a) == 0:
		fmt.Fprintf(t.w, "%s: %s\n", styled, R1Style.Render("<no response>"))
	case isAscii(a):
		fmt.Fprintf(t.w, "%s: [%d] %s\n", styled, len(a), R2Style.Render(fmt.Sprintf("%q", a)))
	case len(a) < 32:
		fmt.Fprintf(t.w, "%s: [%d] %q (% 2x)\n", styled, len(a), a, []byte(a))
	default:
		fmt.Fprintf(t.w, "%s: [%d] % 2x\n", styled, len(a), []byte(a))
	}
	return resp, nil
}
