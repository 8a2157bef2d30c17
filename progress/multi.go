// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

// Multi fans events out to several reporters, in order.
type Multi []Reporter

// NewMulti drops nil reporters.
func NewMulti(reporters ...Reporter) Multi {
	m := make(Multi, 0, len(reporters))

	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}

	return m
}

// Report implements Reporter.
func (m Multi) Report(event Event) {
	for _, r := range m {
		r.Report(event)
	}
}

// Close closes every reporter in reverse order.
func (m Multi) Close() {
	for i := len(m) - 1; i >= 0; i-- {
		m[i].Close()
	}
}
