// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

// Package profile loads binding profiles: YAML files that override the
// dynamic properties of one instrument instance, for example to talk to a
// clone that answers 1/0 where the original answers ON/OFF.
//
//	model: E3631A
//	channels:
//	  "*":
//	    enabled:
//	      get_process: none
//	      map:
//	        - {value: true, token: "1"}
//	        - {value: false, token: "0"}
package profile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/gotmc/labdrv"
	"github.com/gotmc/labdrv/drivers"
)

//go:embed schema/profile-v1.json
var schemaJSON string

// AllChannels as a channel key applies its overrides to every channel,
// before any overrides given for a channel by name.
const AllChannels = "*"

// Profile holds the overrides for one instrument.
type Profile struct {
	Model      string                         `yaml:"model"`
	Instrument map[string]Override            `yaml:"instrument"`
	Channels   map[string]map[string]Override `yaml:"channels"`
}

// Override replaces parts of a property binding. Unset fields keep the
// driver's value.
type Override struct {
	Get        *string `yaml:"get"`
	Set        *string `yaml:"set"`
	Unit       *string `yaml:"unit"`
	Doc        *string `yaml:"doc"`
	Validator  string  `yaml:"validator"`
	Values     []any   `yaml:"values"`
	Map        []Pair  `yaml:"map"`
	GetProcess string  `yaml:"get_process"`
}

// Pair is one entry of an override's value map.
type Pair struct {
	Value any    `yaml:"value"`
	Token string `yaml:"token"`
}

var validators = map[string]labdrv.Validator{
	"none":                nil,
	"strict_discrete_set": labdrv.StrictDiscreteSet,
	"strict_range":        labdrv.StrictRange,
	"truncated_range":     labdrv.TruncatedRange,
}

var getProcesses = map[string]func(string) string{
	"none":           nil,
	"numeric_on_off": labdrv.NumericOnOff,
}

// Loader parses and validates profiles.
type Loader struct {
	schema *jsonschema.Schema
}

// NewLoader compiles the profile schema.
func NewLoader() (*Loader, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile-v1.json", strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("profile-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Loader{schema: schema}, nil
}

// Load reads and parses the profile at path.
func (l *Loader) Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse validates data against the profile schema and decodes it.
func (l *Loader) Parse(data []byte) (*Profile, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("empty profile")
	}
	// The schema validates JSON values, so round-trip the document.
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("profile is not representable as JSON: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var inst any
	if err := dec.Decode(&inst); err != nil {
		return nil, err
	}
	if err := l.schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &p, nil
}

// Apply overrides the properties of dev. Every override is attempted; the
// errors of those that failed are combined. A failed override leaves its
// property unchanged.
func (p *Profile) Apply(dev *drivers.Device) error {
	if p.Model != "" && !strings.EqualFold(p.Model, dev.Driver.Model) {
		return fmt.Errorf("profile is for %s, not %s", p.Model, dev.Driver.Model)
	}
	return p.apply(dev.Instrument, dev.Driver.Channels, dev.Scope)
}

func (p *Profile) apply(inst labdrv.Accessor, channels []string, scope func(string) (labdrv.Accessor, error)) error {
	var errs error
	for _, name := range sortedKeys(p.Instrument) {
		errs = multierr.Append(errs, p.Instrument[name].apply(inst, name))
	}
	// Overrides for every channel go first so named channels win.
	if all, ok := p.Channels[AllChannels]; ok {
		for _, id := range channels {
			errs = multierr.Append(errs, applyChannel(scope, id, all))
		}
	}
	for _, id := range sortedKeys(p.Channels) {
		if id != AllChannels {
			errs = multierr.Append(errs, applyChannel(scope, id, p.Channels[id]))
		}
	}
	return errs
}

func applyChannel(scope func(string) (labdrv.Accessor, error), id string, overrides map[string]Override) error {
	ch, err := scope(id)
	if err != nil {
		return err
	}
	var errs error
	for _, name := range sortedKeys(overrides) {
		if err := overrides[name].apply(ch, name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("channel %s: %w", id, err))
		}
	}
	return errs
}

func (o Override) apply(a labdrv.Accessor, name string) error {
	validator, ok := validators[o.Validator]
	if o.Validator != "" && !ok {
		return fmt.Errorf("%s: unknown validator %q", name, o.Validator)
	}
	getProcess, ok := getProcesses[o.GetProcess]
	if o.GetProcess != "" && !ok {
		return fmt.Errorf("%s: unknown get_process %q", name, o.GetProcess)
	}
	return a.Override(name, func(prop *labdrv.Property) {
		if o.Get != nil {
			prop.Get = *o.Get
		}
		if o.Set != nil {
			prop.Set = *o.Set
		}
		if o.Unit != nil {
			prop.Unit = *o.Unit
		}
		if o.Doc != nil {
			prop.Doc = *o.Doc
		}
		if o.Validator != "" {
			prop.Validator = validator
		}
		if o.Values != nil {
			prop.Values = o.Values
		}
		if o.Map != nil {
			m := make(labdrv.Mapping, 0, len(o.Map))
			for _, pair := range o.Map {
				m = append(m, labdrv.Pair{Value: pair.Value, Token: pair.Token})
			}
			prop.Map = m
		}
		if o.GetProcess != "" {
			prop.GetProcess = getProcess
		}
	})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
