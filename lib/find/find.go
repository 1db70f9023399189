package find

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

type FilterFn func(*Usbtty) bool

// ArduinoFilter matches Arduino boards, such as those running AR488.
func ArduinoFilter(ut *Usbtty) bool {
	return strings.EqualFold(ut.VID, "2341") || strings.EqualFold(ut.VID, "2a03")
}

func PiPicoFilter(ut *Usbtty) bool {
	return strings.EqualFold(ut.VID, "2e8a")
}

// PrologixFilter matches the FTDI chip used by the Prologix GPIB-USB
// controller.
func PrologixFilter(ut *Usbtty) bool {
	return strings.EqualFold(ut.VID, "0403") && strings.EqualFold(ut.PID, "6001")
}

func SerialFilter(s string) FilterFn {
	return func(ut *Usbtty) bool { return ut.Serial == s }
}

// Find searches for a usb serial device and returns its device path. If
// filter is not nil, it is used to narrow choices down. The first device for
// which it returns true (if any) is chosen.
func Find(filter FilterFn) (string, error) {
	ttys, err := AllUsbTtys()
	if err != nil {
		return "", err
	}
	return pick(ttys, filter)
}

func pick(ttys Usbttys, filter FilterFn) (string, error) {
	if filter != nil {
		for i := range ttys {
			if filter(&ttys[i]) {
				return ttys[i].Dev, nil
			}
		}
		return "", fmt.Errorf("no matching ttys found among %d", len(ttys))
	}

	if len(ttys) == 0 {
		return "", fmt.Errorf("no matching ttys found")
	}
	if len(ttys) == 1 {
		return ttys[0].Dev, nil
	}
	return "", fmt.Errorf("multiple ttys:\n%s", ttys)
}

type Usbtty struct {
	Dev      string
	VID, PID string
	Serial   string
}

func (u Usbtty) String() string {
	return fmt.Sprintf("dev %s vid/pid %s/%s serial %s", u.Dev, u.VID, u.PID, u.Serial)
}

type Usbttys []Usbtty

func (uts Usbttys) String() string {
	s := make([]string, 0, len(uts))
	for _, ut := range uts {
		s = append(s, ut.String())
	}
	return strings.Join(s, "\n")
}

// AllUsbTtys lists the serial ports backed by usb devices.
func AllUsbTtys() (Usbttys, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	var devs Usbttys
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		devs = append(devs, Usbtty{
			Dev:    p.Name,
			VID:    p.VID,
			PID:    p.PID,
			Serial: p.SerialNumber,
		})
	}
	return devs, nil
}
