// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

import "fmt"

// Table is an ordered set of properties keyed by name. Driver packages
// declare one Table per instrument or channel type; every Instrument and
// Channel works on its own clone, so overrides never leak between
// instances.
type Table struct {
	order []string
	props map[string]Property
}

// NewTable checks every property and returns them as a Table.
func NewTable(props ...Property) (*Table, error) {
	t := &Table{props: make(map[string]Property, len(props))}
	for _, p := range props {
		if err := p.check(); err != nil {
			return nil, err
		}
		if _, dup := t.props[p.Name]; dup {
			return nil, fmt.Errorf("%s: declared twice: %w", p.Name, ErrTemplate)
		}
		t.order = append(t.order, p.Name)
		t.props[p.Name] = p
	}
	return t, nil
}

// MustTable is like NewTable but panics on error. It is meant for
// package-level driver declarations.
func MustTable(props ...Property) *Table {
	t, err := NewTable(props...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the named property.
func (t *Table) Lookup(name string) (Property, bool) {
	if t == nil {
		return Property{}, false
	}
	p, ok := t.props[name]
	return p, ok
}

// Names returns the property names in declaration order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// Properties returns the properties in declaration order.
func (t *Table) Properties() []Property {
	if t == nil {
		return nil
	}
	props := make([]Property, 0, len(t.order))
	for _, name := range t.order {
		props = append(props, t.props[name])
	}
	return props
}

// Len returns the number of properties.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Clone returns a copy that can be modified independently.
func (t *Table) Clone() *Table {
	c := &Table{props: make(map[string]Property, t.Len())}
	if t == nil {
		return c
	}
	c.order = append(c.order, t.order...)
	for name, p := range t.props {
		c.props[name] = p.clone()
	}
	return c
}

// replace swaps in an edited property under its existing name.
func (t *Table) replace(p Property) error {
	if err := p.check(); err != nil {
		return err
	}
	t.props[p.Name] = p
	return nil
}
