// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package prologix drives instruments through a Prologix GPIB-USB (or
// compatible AR488) controller. A Controller satisfies labdrv.Adapter.
package prologix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Controller models a GPIB controller-in-charge.
type Controller struct {
	mu               sync.Mutex
	rw               io.ReadWriter
	r                *bufio.Reader
	primaryAddr      int
	hasSecondaryAddr bool
	secondaryAddr    int
	auto             bool
	usbTerm          byte
	eotChar          byte
	writeDelay       time.Duration
	debug            bool // if true, log controller commands before sending. Set via WithDebug().
	ar488            bool // compatibility with Arduino AR488 - see WithAR488 documentation for details.
	log              *zap.Logger
}

// ControllerOption applies an option to the controller.
type ControllerOption func(*Controller)

// NewController creates a GPIB controller-in-charge at the given address using
// the given Prologix connection, usually a Virtual COM Port (VCP). Enable
// clear to send the Selected Device Clear (SDC) message to the GPIB address.
// Optionally controller configuration can be included using a
// ControllerOption.
func NewController(
	rw io.ReadWriter,
	addr int,
	clear bool,
	opts ...ControllerOption,
) (*Controller, error) {
	c := Controller{
		rw:          rw,
		r:           bufio.NewReader(rw),
		primaryAddr: addr,
		usbTerm:     '\n',
		eotChar:     '\n',
		log:         zap.NewNop(),
	}

	// Apply options using the functional option pattern.
	for _, opt := range opts {
		opt(&c)
	}

	if !isPrimaryAddressValid(c.primaryAddr) {
		return nil, fmt.Errorf("invalid primary address %d (must be 0-30)", c.primaryAddr)
	}

	addrCmd := fmt.Sprintf("addr %d", c.primaryAddr)
	if c.hasSecondaryAddr {
		if !isSecondaryAddressValid(c.secondaryAddr) {
			return nil, fmt.Errorf("invalid secondary address %d (must be 96-126)", c.secondaryAddr)
		}
		addrCmd = fmt.Sprintf("addr %d %d", c.primaryAddr, c.secondaryAddr)
	}
	cmds := []string{}
	if !c.ar488 {
		cmds = append(cmds,
			"verbose 0", // turn off verbosity if on
			"savecfg 0", // Disable saving of configuration parameters in EPROM
		)
	}
	cmds = append(cmds,
		addrCmd,           // Set the primary address.
		"mode 1",          // Switch to controller mode.
		"auto 0",          // Turn off read-after-write and address instrument to listen.
		"eoi 1",           // Enable EOI assertion with last character.
		"eos 0",           // Set GPIB termination.
		"read_tmo_ms 500", // Set the read timeout to 500 ms.
		fmt.Sprintf("eot_char %d", c.eotChar),
		"eot_enable 1", // Append character when EOI detected.
	)
	if !c.ar488 {
		cmds = append(cmds, "savecfg 1")
	}
	if clear {
		cmds = append(cmds, "clr")
	}
	for _, cmd := range cmds {
		if err := c.CommandController(cmd); err != nil {
			return nil, err
		}
	}

	return &c, nil
}

// WithSecondaryAddress sets a secondary address, which must be in the range of
// 96 and 126, inclusive.
func WithSecondaryAddress(addr int) ControllerOption {
	return func(c *Controller) {
		c.hasSecondaryAddr = true
		c.secondaryAddr = addr
	}
}

// WithDebug causes commands and responses to be logged at info level rather
// than debug.
func WithDebug() ControllerOption { return func(c *Controller) { c.debug = true } }

// WithAR488 slightly alters the init commands, for compatibility with the
// Arduino-based AR488. Specifically, we do not emit 'verbose 0', nor do
// we toggle savecfg.
func WithAR488() ControllerOption { return func(c *Controller) { c.ar488 = true } }

// WithWriteDelay waits d before every controller (++) command. Some
// controllers drop commands that arrive too quickly after instrument data.
func WithWriteDelay(d time.Duration) ControllerOption {
	return func(c *Controller) { c.writeDelay = d }
}

// WithLogger sets the logger for commands and responses.
func WithLogger(log *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

func (c *Controller) trace(msg string, fields ...zap.Field) {
	if c.debug {
		c.log.Info(msg, fields...)
		return
	}
	c.log.Debug(msg, fields...)
}

// Write writes the given data to the instrument at the currently assigned GPIB
// address.
func (c *Controller) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rw.Write(p)
}

// Read reads from the instrument at the currently assigned GPIB address into
// the given byte slice.
func (c *Controller) Read(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.r.Read(p)
}

// Command formats according to a format specifier if provided and sends a
// SCPI/ASCII command to the instrument at the currently assigned GPIB address.
// All leading and trailing whitespace is removed before appending the USB
// terminator to the command sent to the Prologix.
func (c *Controller) Command(format string, a ...any) error {
	cmd := format
	if a != nil {
		cmd = fmt.Sprintf(format, a...)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(cmd)
}

// send writes cmd to the instrument, escaping the characters the Prologix
// would otherwise strip or interpret. Callers hold c.mu.
func (c *Controller) send(cmd string) error {
	cmd = escape(strings.TrimSpace(cmd))
	c.trace("cmd", zap.String("cmd", cmd))
	_, err := fmt.Fprintf(c.rw, "%s%c", cmd, c.usbTerm)
	return err
}

// Query queries the instrument at the currently assigned GPIB using the given
// SCPI/ASCII command. The cmd string does not need to include a new line
// character, since all leading and trailing whitespace is removed before
// appending the USB terminator to the command sent to the Prologix. When data
// from host is received over USB, the Prologix controller removes all
// non-escaped LF, CR and ESC characters and appends the GPIB terminator, as
// specified by the `eos` command, before sending the data to instruments.
func (c *Controller) Query(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.send(cmd); err != nil {
		return "", fmt.Errorf("error writing command: %w", err)
	}
	// If read-after-write is disabled, need to tell the Prologix controller to
	// read.
	if !c.auto {
		if err := c.controller("read eoi"); err != nil {
			return "", fmt.Errorf("error sending `++read eoi` command: %w", err)
		}
	}
	s, err := c.r.ReadString(c.eotChar)
	if errors.Is(err, io.EOF) && len(s) > 0 {
		err = nil
	}
	c.trace("read", zap.String("cmd", cmd), zap.String("response", s))
	return s, err
}

// QueryController sends the given command to the Prologix controller and
// returns its response as a string. To indicate this is a command for the
// Prologix controller, thereby not transmitting over GPIB, two plus signs `++`
// are prepended. Additionally, a new line is appended to act as the USB
// termination character.
func (c *Controller) QueryController(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.controller(cmd); err != nil {
		return "", err
	}
	s, err := c.r.ReadString(c.eotChar)
	c.trace("read data", zap.String("cmd", cmd), zap.String("response", s))
	return s, err
}

// CommandController sends the given command to the Prologix controller. To
// indicate this is a command for the Prologix controller, thereby not
// transmitting to the instrument over GPIB, two plus signs `++` are prepended.
// Additionally, a new line is appended to act as the USB termination character.
func (c *Controller) CommandController(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller(cmd)
}

func (c *Controller) controller(cmd string) error {
	if c.writeDelay > 0 {
		time.Sleep(c.writeDelay)
	}
	cmd = fmt.Sprintf("++%s%c", strings.ToLower(strings.TrimSpace(cmd)), c.usbTerm)
	c.trace("controller cmd", zap.String("cmd", cmd))
	_, err := io.WriteString(c.rw, cmd)
	return err
}

// escape prefixes LF, CR, ESC and '+' with ESC so they reach the instrument
// instead of being consumed by the Prologix.
func escape(cmd string) string {
	if !strings.ContainsAny(cmd, "\n\r\x1b+") {
		return cmd
	}
	var b strings.Builder
	for i := 0; i < len(cmd); i++ {
		switch cmd[i] {
		case '\n', '\r', 0x1b, '+':
			b.WriteByte(0x1b)
		}
		b.WriteByte(cmd[i])
	}
	return b.String()
}

// GpibTerm provides the type for the available GPIB terminators.
type GpibTerm int

// Available GPIB terminators for the Prologix Controller.
const (
	AppendCRLF GpibTerm = iota
	AppendCR
	AppendLF
	AppendNothing
)

var gpibTermDesc = map[GpibTerm]string{
	AppendCRLF:    `Append CR+LF (\r\n) to instrument commands`,
	AppendCR:      `Append CR (\r) to instrument commands`,
	AppendLF:      `Append LF (\n) to instrument commands`,
	AppendNothing: `Do not append anything to instrument commands`,
}

func (term GpibTerm) String() string {
	return gpibTermDesc[term]
}

// isPrimaryAddressValid checks that the primary GPIB address is between 0 and
// 30, inclusive.
func isPrimaryAddressValid(addr int) bool {
	return addr >= 0 && addr <= 30
}

// isSecondaryAddressValid checks that the secondary GPIB address is between 96
// and 126, inclusive.
func isSecondaryAddressValid(addr int) bool {
	return addr >= 96 && addr <= 126
}
