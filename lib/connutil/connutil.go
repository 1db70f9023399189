package connutil

import (
	"fmt"
	"time"

	"github.com/gotmc/labdrv/lib/find"
	"github.com/gotmc/labdrv/prologix"
	"github.com/spf13/pflag"
	"go.bug.st/serial"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// NoSecondary is the GpibSAD value for instruments without a secondary
// address.
const NoSecondary = 0xff

// Conn describes how to reach an instrument through a Prologix (or AR488)
// controller on a serial port.
type Conn struct {
	SerialPort  string        `mapstructure:"port"`
	Baud        int           `mapstructure:"baud"`
	GpibPAD     int           `mapstructure:"pad"`
	GpibSAD     int           `mapstructure:"sad"`
	Delay       time.Duration `mapstructure:"delay"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	AR488       bool          `mapstructure:"ar488"`
	Clear       bool          `mapstructure:"clear"`
}

// Defaults returns the settings used when neither flags nor config say
// otherwise.
func Defaults() Conn {
	return Conn{
		Baud:        115200,
		GpibPAD:     5,
		GpibSAD:     NoSecondary,
		Delay:       0,
		ReadTimeout: 2 * time.Second,
	}
}

// AddFlags registers the connection flags on fs, defaulting to c's values.
// An empty port means the Prologix (or an Arduino) is looked up by USB id.
func (c *Conn) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.SerialPort, "port", c.SerialPort, "serial port of the GPIB controller (default: auto-detect)")
	fs.IntVar(&c.Baud, "baud", c.Baud, "serial baud rate")
	fs.IntVar(&c.GpibPAD, "pad", c.GpibPAD, "GPIB primary address for the device")
	fs.IntVar(&c.GpibSAD, "sad", c.GpibSAD, "GPIB secondary address for the device (255 for none)")
	fs.DurationVar(&c.Delay, "delay", c.Delay, "delay before controller commands")
	fs.DurationVar(&c.ReadTimeout, "read-timeout", c.ReadTimeout, "serial read timeout")
	fs.BoolVar(&c.AR488, "ar488", c.AR488, "controller is an Arduino AR488")
	fs.BoolVar(&c.Clear, "clear", c.Clear, "send Selected Device Clear on connect")
}

// Options returns the controller options implied by c.
func (c *Conn) Options() []prologix.ControllerOption {
	var opts []prologix.ControllerOption
	if c.Delay > 0 {
		opts = append(opts, prologix.WithWriteDelay(c.Delay))
	}
	if c.GpibSAD != NoSecondary {
		opts = append(opts, prologix.WithSecondaryAddress(c.GpibSAD))
	}
	if c.AR488 {
		opts = append(opts, prologix.WithAR488())
	}
	return opts
}

// portName returns the configured port, or the first Prologix or Arduino
// found on USB.
func (c *Conn) portName(log *zap.Logger) (string, error) {
	if c.SerialPort != "" {
		return c.SerialPort, nil
	}
	for _, filter := range []find.FilterFn{find.PrologixFilter, find.ArduinoFilter} {
		name, err := find.Find(filter)
		if err == nil {
			log.Info("found GPIB controller", zap.String("port", name))
			return name, nil
		}
		log.Debug("locating serial port", zap.Error(err))
	}
	return "", fmt.Errorf("no GPIB controller found on USB, set the port explicitly")
}

// Setup opens the serial port and configures the controller. cleanup returns
// the instrument to front panel control and closes the port.
func (c *Conn) Setup(log *zap.Logger, opts ...prologix.ControllerOption) (gpib *prologix.Controller, cleanup func() error, err error) {
	nocleanup := func() error { return nil }

	name, err := c.portName(log)
	if err != nil {
		return nil, nocleanup, err
	}
	log.Info("opening serial port", zap.String("port", name), zap.Int("baud", c.Baud))

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: c.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, nocleanup, fmt.Errorf("opening %s: %w", name, err)
	}
	if err := port.SetReadTimeout(c.ReadTimeout); err != nil {
		return nil, nocleanup, multierr.Append(err, port.Close())
	}

	opts = append(c.Options(), opts...)
	opts = append(opts, prologix.WithLogger(log))
	gpib, err = prologix.NewController(port, c.GpibPAD, c.Clear, opts...)
	if err != nil {
		return nil, nocleanup, multierr.Append(err, port.Close())
	}

	cleanup = func() error {
		// Return local control to the front panel, then discard any unread
		// data on the serial port and close.
		err := gpib.FrontPanel(true)
		err = multierr.Append(err, port.ResetInputBuffer())
		return multierr.Append(err, port.Close())
	}
	return gpib, cleanup, nil
}
