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

// scope carries what a property access needs: the adapter, the resolved
// property table and, for channels, the channel identifier. Instrument and
// Channel embed it.
type scope struct {
	adapter Adapter
	channel string
	props   *Table
	log     *zap.Logger
}

// expand fills in the channel identifier.
func (s *scope) expand(tmpl string) (string, error) {
	if !strings.Contains(tmpl, chToken) {
		return tmpl, nil
	}
	if s.channel == "" {
		return "", fmt.Errorf("%q needs a channel: %w", tmpl, ErrTemplate)
	}
	return strings.ReplaceAll(tmpl, chToken, s.channel), nil
}

func (s *scope) lookup(name string) (Property, error) {
	p, ok := s.props.Lookup(name)
	if !ok {
		return Property{}, s.errorf(name, "%w", ErrUnknownProperty)
	}
	return p, nil
}

// errorf prefixes an error with the channel (if any) and property name.
func (s *scope) errorf(name, format string, a ...any) error {
	if s.channel != "" {
		name = s.channel + " " + name
	}
	return fmt.Errorf("%s: "+format, append([]any{name}, a...)...)
}

// Get queries the named property and returns its value: float64, bool,
// int or string according to its Kind, or the mapped value when the
// property has a Map.
func (s *scope) Get(name string) (any, error) {
	p, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if p.WriteOnly() {
		return nil, s.errorf(name, "write-only: %w", ErrInvalidOperation)
	}
	cmd, err := s.expand(p.Get)
	if err != nil {
		return nil, s.errorf(name, "%w", err)
	}
	resp, err := s.adapter.Query(cmd)
	if err != nil {
		return nil, err
	}
	s.log.Debug("query", zap.String("cmd", cmd), zap.String("response", resp))
	resp = strings.TrimSpace(resp)
	if p.GetProcess != nil {
		resp = p.GetProcess(resp)
	}
	if len(p.Map) > 0 {
		v, ok := p.Map.value(resp)
		if !ok {
			return nil, s.errorf(name, "unexpected token %q: %w", resp, ErrParse)
		}
		return v, nil
	}
	v, err := parse(p.Kind, resp)
	if err != nil {
		return nil, s.errorf(name, "%w", err)
	}
	return v, nil
}

// Set validates value and sends the named property's set command. Invalid
// values are rejected before anything is written.
func (s *scope) Set(name string, value any) error {
	p, err := s.lookup(name)
	if err != nil {
		return err
	}
	if p.ReadOnly() {
		return s.errorf(name, "read-only: %w", ErrInvalidOperation)
	}
	v, err := coerce(p.Kind, value)
	if err != nil {
		return s.errorf(name, "%w", err)
	}
	validate, values := p.Validator, p.Values
	if validate == nil && len(p.Map) > 0 {
		validate, values = StrictDiscreteSet, p.Map.Values()
	}
	if validate != nil {
		if v, err = validate(v, values); err != nil {
			return s.errorf(name, "%w", err)
		}
	}
	if p.SetProcess != nil {
		v = p.SetProcess(v)
	}
	if len(p.Map) > 0 {
		tok, ok := p.Map.token(v)
		if !ok {
			return s.errorf(name, "%v has no token: %w", v, ErrInvalidValue)
		}
		v = tok
	}
	tmpl, err := s.expand(p.Set)
	if err != nil {
		return s.errorf(name, "%w", err)
	}
	cmd := fmt.Sprintf(tmpl, v)
	s.log.Debug("command", zap.String("cmd", cmd))
	return s.adapter.Command(cmd)
}

// Float gets a property and asserts it is a float64.
func (s *scope) Float(name string) (float64, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, s.errorf(name, "%v (%T) is not a float: %w", v, v, ErrParse)
	}
	return f, nil
}

// Bool gets a property and asserts it is a bool.
func (s *scope) Bool(name string) (bool, error) {
	v, err := s.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, s.errorf(name, "%v (%T) is not a bool: %w", v, v, ErrParse)
	}
	return b, nil
}

// Int gets a property and asserts it is an int.
func (s *scope) Int(name string) (int, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int)
	if !ok {
		return 0, s.errorf(name, "%v (%T) is not an int: %w", v, v, ErrParse)
	}
	return i, nil
}

// String gets a property and asserts it is a string.
func (s *scope) String(name string) (string, error) {
	v, err := s.Get(name)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", s.errorf(name, "%v (%T) is not a string: %w", v, v, ErrParse)
	}
	return str, nil
}

// Write sends cmd, filling in {ch} when called on a channel.
func (s *scope) Write(cmd string) error {
	cmd, err := s.expand(cmd)
	if err != nil {
		return err
	}
	s.log.Debug("command", zap.String("cmd", cmd))
	return s.adapter.Command(cmd)
}

// Ask sends cmd as a query and returns the raw response, filling in {ch}
// when called on a channel.
func (s *scope) Ask(cmd string) (string, error) {
	cmd, err := s.expand(cmd)
	if err != nil {
		return "", err
	}
	resp, err := s.adapter.Query(cmd)
	if err != nil {
		return "", err
	}
	s.log.Debug("query", zap.String("cmd", cmd), zap.String("response", resp))
	return resp, nil
}

// Property returns this instance's binding for name.
func (s *scope) Property(name string) (Property, bool) {
	return s.props.Lookup(name)
}

// Properties returns this instance's bindings in declaration order.
func (s *scope) Properties() []Property {
	return s.props.Properties()
}

// Override edits this instance's binding for a dynamic property. The edit
// is applied to a copy which is checked before it replaces the current
// binding, so a bad edit leaves the property unchanged. Other instances
// are unaffected.
func (s *scope) Override(name string, edit func(*Property)) error {
	p, err := s.lookup(name)
	if err != nil {
		return err
	}
	if !p.Dynamic {
		return s.errorf(name, "not dynamic: %w", ErrInvalidOperation)
	}
	p = p.clone()
	edit(&p)
	if p.Name != name {
		return s.errorf(name, "cannot rename to %q: %w", p.Name, ErrInvalidOperation)
	}
	if err := s.props.replace(p); err != nil {
		return s.errorf(name, "%w", err)
	}
	s.log.Debug("override", zap.String("property", name),
		zap.String("get", p.Get), zap.String("set", p.Set))
	return nil
}
