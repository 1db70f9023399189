// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

import (
	"fmt"
	"strconv"
	"strings"
)

// chToken is replaced by the channel identifier in command templates.
const chToken = "{ch}"

// Kind is the application-level type of a property value.
type Kind int

// Available property kinds.
const (
	Float Kind = iota
	Bool
	Int
	String
)

var kindDesc = map[Kind]string{
	Float:  "float",
	Bool:   "bool",
	Int:    "int",
	String: "string",
}

func (k Kind) String() string {
	if s, ok := kindDesc[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Pair associates an application value with the token sent on the wire.
type Pair struct {
	Value any
	Token string
}

// Mapping is an ordered, one-to-one set of value/token pairs. Tokens are
// matched case-insensitively when reading responses.
type Mapping []Pair

// OnOff maps booleans to the usual SCPI ON/OFF tokens.
var OnOff = Mapping{{Value: true, Token: "ON"}, {Value: false, Token: "OFF"}}

func (m Mapping) token(v any) (string, bool) {
	for _, p := range m {
		if equal(p.Value, v) {
			return p.Token, true
		}
	}
	return "", false
}

func (m Mapping) value(token string) (any, bool) {
	for _, p := range m {
		if strings.EqualFold(p.Token, token) {
			return p.Value, true
		}
	}
	return nil, false
}

// Values returns the application values in declaration order.
func (m Mapping) Values() []any {
	vals := make([]any, 0, len(m))
	for _, p := range m {
		vals = append(vals, p.Value)
	}
	return vals
}

func (m Mapping) check(k Kind) error {
	for i := range m {
		if _, err := coerce(k, m[i].Value); err != nil {
			return fmt.Errorf("value %v (%T) is not a %s: %w", m[i].Value, m[i].Value, k, ErrTemplate)
		}
		for j := i + 1; j < len(m); j++ {
			if equal(m[i].Value, m[j].Value) {
				return fmt.Errorf("value %v mapped twice: %w", m[i].Value, ErrTemplate)
			}
			if strings.EqualFold(m[i].Token, m[j].Token) {
				return fmt.Errorf("token %q mapped twice: %w", m[i].Token, ErrTemplate)
			}
		}
	}
	return nil
}

// Property binds a named instrument setting to a pair of command
// templates. Get is sent as a query and must not contain a value verb. Set
// must contain exactly one fmt verb for the value. Either may be empty,
// which makes the property write-only or read-only respectively. Both may
// contain the {ch} placeholder, filled in with the channel identifier.
type Property struct {
	Name string
	Get  string
	Set  string
	Kind Kind
	Unit string
	Doc  string

	// Validator checks values before they are sent, using Values as its
	// parameter (the discrete set, or the [min, max] range).
	Validator Validator
	Values    []any

	// Map translates values to and from wire tokens. When Validator is nil
	// the value must be one of Map's values.
	Map Mapping

	// GetProcess is applied to the trimmed response before mapping or
	// parsing. SetProcess is applied to the validated value, before it is
	// mapped to a token and formatted.
	GetProcess func(string) string
	SetProcess func(any) any

	// Dynamic properties may be overridden per instance.
	Dynamic bool
}

// clone copies p so that its Values and Map can be edited in place.
func (p Property) clone() Property {
	p.Values = append([]any(nil), p.Values...)
	p.Map = append(Mapping(nil), p.Map...)
	return p
}

// ReadOnly reports whether the property has no set command.
func (p Property) ReadOnly() bool { return p.Set == "" }

// WriteOnly reports whether the property has no get command.
func (p Property) WriteOnly() bool { return p.Get == "" }

// Channeled reports whether either template refers to a channel.
func (p Property) Channeled() bool {
	return strings.Contains(p.Get, chToken) || strings.Contains(p.Set, chToken)
}

func (p Property) check() error {
	if p.Name == "" {
		return fmt.Errorf("unnamed property: %w", ErrTemplate)
	}
	if p.Get == "" && p.Set == "" {
		return fmt.Errorf("%s: neither get nor set command: %w", p.Name, ErrTemplate)
	}
	if _, ok := kindDesc[p.Kind]; !ok {
		return fmt.Errorf("%s: unknown kind %d: %w", p.Name, int(p.Kind), ErrTemplate)
	}
	if p.Get != "" {
		n, err := countVerbs(p.Get)
		if err != nil {
			return fmt.Errorf("%s: get %q: %w", p.Name, p.Get, err)
		}
		if n != 0 {
			return fmt.Errorf("%s: get %q has %d value verbs: %w", p.Name, p.Get, n, ErrTemplate)
		}
	}
	if p.Set != "" {
		n, err := countVerbs(p.Set)
		if err != nil {
			return fmt.Errorf("%s: set %q: %w", p.Name, p.Set, err)
		}
		if n != 1 {
			return fmt.Errorf("%s: set %q has %d value verbs, want 1: %w", p.Name, p.Set, n, ErrTemplate)
		}
	}
	if err := p.Map.check(p.Kind); err != nil {
		return fmt.Errorf("%s: %w", p.Name, err)
	}
	return nil
}

// countVerbs returns the number of fmt verbs in tmpl, ignoring %%, and
// rejects brace tokens other than {ch}.
func countVerbs(tmpl string) (int, error) {
	rest := strings.ReplaceAll(tmpl, chToken, "")
	if strings.ContainsAny(rest, "{}") {
		return 0, fmt.Errorf("unknown placeholder: %w", ErrTemplate)
	}
	n := 0
	for i := 0; i < len(rest); i++ {
		if rest[i] != '%' {
			continue
		}
		i++
		if i < len(rest) && rest[i] == '%' {
			continue
		}
		for i < len(rest) && strings.IndexByte("+-# 0123456789.", rest[i]) >= 0 {
			i++
		}
		if i == len(rest) {
			return 0, fmt.Errorf("dangling %%: %w", ErrTemplate)
		}
		if strings.IndexByte("gGeEfFsdvxXq", rest[i]) < 0 {
			return 0, fmt.Errorf("unsupported verb %%%c: %w", rest[i], ErrTemplate)
		}
		n++
	}
	return n, nil
}

// NumericOnOff is a GetProcess for instruments that answer 1 or 0 where
// ON or OFF is expected. Any other response passes through unchanged.
func NumericOnOff(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	switch f {
	case 1:
		return "ON"
	case 0:
		return "OFF"
	}
	return s
}

// coerce converts v to the Go type used for kind k.
func coerce(k Kind, v any) (any, error) {
	switch k {
	case Float:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case Int:
		if f, ok := toFloat(v); ok && f == float64(int(f)) {
			return int(f), nil
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case String:
		switch s := v.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		}
	}
	return nil, fmt.Errorf("%v (%T) is not a %s: %w", v, v, k, ErrInvalidValue)
}

// parse converts a response to the Go type used for kind k.
func parse(k Kind, s string) (any, error) {
	switch k {
	case Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q as %s: %w", s, k, ErrParse)
		}
		return f, nil
	case Int:
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != float64(int(f)) {
			return nil, fmt.Errorf("%q as %s: %w", s, k, ErrParse)
		}
		return int(f), nil
	case Bool:
		switch strings.ToUpper(s) {
		case "ON":
			return true, nil
		case "OFF":
			return false, nil
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%q as %s: %w", s, k, ErrParse)
		}
		return b, nil
	case String:
		return s, nil
	}
	return nil, fmt.Errorf("%q as %s: %w", s, k, ErrParse)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// equal compares values, treating all numbers as float64.
func equal(a, b any) bool {
	fa, oka := toFloat(a)
	fb, okb := toFloat(b)
	if oka && okb {
		return fa == fb
	}
	if oka != okb {
		return false
	}
	return a == b
}
