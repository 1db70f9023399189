// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

import (
	"fmt"
	"math"
)

// Validator returns the value to send for value, given the property's
// Values, or an error wrapping ErrInvalidValue.
type Validator func(value any, values []any) (any, error)

// StrictDiscreteSet accepts only members of values.
func StrictDiscreteSet(value any, values []any) (any, error) {
	for _, v := range values {
		if equal(value, v) {
			return value, nil
		}
	}
	return nil, fmt.Errorf("%v not in %v: %w", value, values, ErrInvalidValue)
}

// StrictRange accepts numbers within [values[0], values[1]].
func StrictRange(value any, values []any) (any, error) {
	lo, hi, err := bounds(values)
	if err != nil {
		return nil, err
	}
	x, ok := toFloat(value)
	if !ok || math.IsNaN(x) {
		return nil, fmt.Errorf("%v is not a number: %w", value, ErrInvalidValue)
	}
	if x < lo || x > hi {
		return nil, fmt.Errorf("%v not in range [%g, %g]: %w", value, lo, hi, ErrInvalidValue)
	}
	return value, nil
}

// TruncatedRange clamps numbers to [values[0], values[1]].
func TruncatedRange(value any, values []any) (any, error) {
	lo, hi, err := bounds(values)
	if err != nil {
		return nil, err
	}
	x, ok := toFloat(value)
	if !ok || math.IsNaN(x) {
		return nil, fmt.Errorf("%v is not a number: %w", value, ErrInvalidValue)
	}
	x = min(max(x, lo), hi)
	if _, isInt := value.(int); isInt {
		return int(x), nil
	}
	return x, nil
}

func bounds(values []any) (lo, hi float64, err error) {
	if len(values) != 2 {
		return 0, 0, fmt.Errorf("range needs [min, max], got %v: %w", values, ErrInvalidValue)
	}
	lo, okLo := toFloat(values[0])
	hi, okHi := toFloat(values[1])
	if !okLo || !okHi || lo > hi {
		return 0, 0, fmt.Errorf("bad range %v: %w", values, ErrInvalidValue)
	}
	return lo, hi, nil
}
