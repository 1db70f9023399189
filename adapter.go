// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

// Adapter is the transport an instrument talks through, for example a
// Prologix GPIB controller or a VISA session. Both methods block until the
// exchange is complete. Command formats according to a format specifier
// only when arguments are given, so a fully formatted command may contain
// any character.
//
// An Adapter is not safe for concurrent use unless the implementation says
// otherwise; callers sharing one must serialize access.
type Adapter interface {
	Command(format string, a ...any) error
	Query(cmd string) (string, error)
}
