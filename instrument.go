// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Accessor is the property surface shared by *Instrument and *Channel.
type Accessor interface {
	Get(name string) (any, error)
	Set(name string, value any) error
	Property(name string) (Property, bool)
	Properties() []Property
	Override(name string, edit func(*Property)) error
	Write(cmd string) error
	Ask(cmd string) (string, error)
}

var (
	_ Accessor = (*Instrument)(nil)
	_ Accessor = (*Channel)(nil)
)

// Instrument is one device reached through an Adapter, with its own copy of
// a property table. The adapter is not owned: closing it is up to the
// caller.
type Instrument struct {
	scope
	name string
}

// Option applies an option to an instrument.
type Option func(*Instrument)

// WithLogger traces every command and response at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(i *Instrument) {
		if log != nil {
			i.log = log
		}
	}
}

// WithName replaces the name a driver gives its instrument.
func WithName(name string) Option {
	return func(i *Instrument) { i.name = name }
}

// New creates an instrument named name using the given adapter. The
// properties are cloned, so per-instance overrides never touch props.
func New(adapter Adapter, name string, props *Table, opts ...Option) *Instrument {
	i := Instrument{
		scope: scope{
			adapter: adapter,
			props:   props.Clone(),
			log:     zap.NewNop(),
		},
		name: name,
	}
	for _, opt := range opts {
		opt(&i)
	}
	i.log = i.log.With(zap.String("instrument", i.name))
	return &i
}

// Name returns the instrument's descriptive name.
func (i *Instrument) Name() string { return i.name }

// Adapter returns the adapter the instrument talks through.
func (i *Instrument) Adapter() Adapter { return i.adapter }

// Channel is a logical sub-unit of an instrument, such as one output of a
// multi-output power supply. Every property access supplies the channel
// identifier for {ch} in the command templates.
type Channel struct {
	scope
	inst *Instrument
}

// NewChannel creates the channel id of inst with its own copy of props.
func NewChannel(inst *Instrument, id string, props *Table) (*Channel, error) {
	if id == "" || strings.ContainsAny(id, "%{}; \t\r\n") {
		return nil, fmt.Errorf("channel id %q: %w", id, ErrUnknownChannel)
	}
	return &Channel{
		scope: scope{
			adapter: inst.adapter,
			channel: id,
			props:   props.Clone(),
			log:     inst.log.With(zap.String("channel", id)),
		},
		inst: inst,
	}, nil
}

// ID returns the channel identifier.
func (c *Channel) ID() string { return c.channel }

// Instrument returns the owning instrument.
func (c *Channel) Instrument() *Instrument { return c.inst }

// ChannelSet is the ordered collection of an instrument's channels, built
// once when the instrument is constructed. C is the driver's channel type.
type ChannelSet[C any] struct {
	ids   []string
	chans []C
	index map[string]int
}

// NewChannelSet creates one channel per id, in order, each wrapped by wrap
// into the driver's channel type.
func NewChannelSet[C any](
	inst *Instrument,
	ids []string,
	props *Table,
	wrap func(*Channel) C,
) (*ChannelSet[C], error) {
	s := ChannelSet[C]{index: make(map[string]int, len(ids))}
	for _, id := range ids {
		if _, dup := s.index[id]; dup {
			return nil, fmt.Errorf("channel id %q declared twice: %w", id, ErrUnknownChannel)
		}
		ch, err := NewChannel(inst, id, props)
		if err != nil {
			return nil, err
		}
		s.index[id] = len(s.chans)
		s.ids = append(s.ids, id)
		s.chans = append(s.chans, wrap(ch))
	}
	return &s, nil
}

// Get returns the channel with the given identifier.
func (s *ChannelSet[C]) Get(id string) (C, error) {
	i, ok := s.index[id]
	if !ok {
		var zero C
		return zero, fmt.Errorf("%q (have %s): %w", id, strings.Join(s.ids, ", "), ErrUnknownChannel)
	}
	return s.chans[i], nil
}

// At returns the i-th channel in declaration order.
func (s *ChannelSet[C]) At(i int) C { return s.chans[i] }

// Len returns the number of channels.
func (s *ChannelSet[C]) Len() int { return len(s.chans) }

// IDs returns the channel identifiers in declaration order.
func (s *ChannelSet[C]) IDs() []string { return append([]string(nil), s.ids...) }

// All returns the channels in declaration order.
func (s *ChannelSet[C]) All() []C { return append([]C(nil), s.chans...) }
