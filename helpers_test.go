// Copyright (c) 2020–2026 The labdrv developers. All rights reserved.
// Project site: https://github.com/gotmc/labdrv
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package labdrv

import "fmt"

// recorder is an Adapter that records commands and answers queries from a
// fixed table.
type recorder struct {
	writes    []string
	queries   []string
	responses map[string]string
	err       error
}

func newRecorder(responses map[string]string) *recorder {
	return &recorder{responses: responses}
}

func (r *recorder) Command(format string, a ...any) error {
	if r.err != nil {
		return r.err
	}
	cmd := format
	if a != nil {
		cmd = fmt.Sprintf(format, a...)
	}
	r.writes = append(r.writes, cmd)
	return nil
}

func (r *recorder) Query(cmd string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.queries = append(r.queries, cmd)
	resp, ok := r.responses[cmd]
	if !ok {
		return "", fmt.Errorf("no response for %q", cmd)
	}
	return resp, nil
}
