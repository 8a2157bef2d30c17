// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pmap

import (
	"fmt"

	"github.com/matt-FFFFFF/pmap/task"
)

// unzip transposes tuple results into columns. Every value must be a tuple of the
// same arity as the first one.
func unzip(values []any) ([][]any, error) {
	var cols [][]any

	for pos, v := range values {
		t, ok := tuple(v)
		if !ok {
			return nil, fmt.Errorf("%w: position %d returned %T", ErrNotATuple, pos, v)
		}

		if pos == 0 {
			cols = make([][]any, len(t))
			for i := range cols {
				cols[i] = make([]any, len(values))
			}
		}

		if len(t) != len(cols) {
			return nil, fmt.Errorf("%w: position 0 returned %d values, position %d returned %d",
				ErrArityMismatch, len(cols), pos, len(t))
		}

		for i, x := range t {
			cols[i][pos] = x
		}
	}

	if cols == nil {
		cols = [][]any{}
	}

	return cols, nil
}

func tuple(v any) ([]any, bool) {
	switch t := v.(type) {
	case task.Tuple:
		return t, true
	case []any:
		return t, true
	default:
		return nil, false
	}
}
