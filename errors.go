// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

import "errors"

// Errors returned by property access. They are wrapped with the property
// (and channel) name, so match them with errors.Is. Errors from the Adapter
// are never wrapped.
var (
	// ErrInvalidValue is returned when a value fails the property's type or
	// validator. Nothing is sent to the instrument.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidOperation is returned when setting a read-only property,
	// getting a write-only one, or overriding a property that is not
	// dynamic.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrParse is returned when a response cannot be converted to the
	// property's kind.
	ErrParse = errors.New("cannot parse response")

	ErrUnknownProperty = errors.New("unknown property")
	ErrUnknownChannel  = errors.New("unknown channel")

	// ErrTemplate is returned for malformed command templates and value
	// mappings, and when a template needs a channel that is not available.
	ErrTemplate = errors.New("invalid command template")
)
