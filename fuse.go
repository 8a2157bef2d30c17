// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pmap

import (
	"fmt"
	"reflect"

	"github.com/matt-FFFFFF/pmap/task"
)

// buildTasks tags every element of the input with its position. When fusing,
// the elements of iterable are sequences which are zipped into spread payloads.
func buildTasks(iterable []any, fuse, shortest bool) ([]task.Task, error) {
	if !fuse {
		tasks := make([]task.Task, len(iterable))
		for i, v := range iterable {
			tasks[i] = task.Task{Position: i, Payload: task.Single(v)}
		}

		return tasks, nil
	}

	if len(iterable) == 0 {
		return nil, ErrNoIterables
	}

	seqs := make([][]any, len(iterable))
	length := 0

	for i, v := range iterable {
		s, ok := sequence(v)
		if !ok {
			return nil, fmt.Errorf("%w: input %d is %T", ErrNotASequence, i, v)
		}

		seqs[i] = s

		switch {
		case i == 0:
			length = len(s)
		case len(s) == length:
		case shortest:
			length = min(length, len(s))
		default:
			return nil, fmt.Errorf("%w: input 0 has %d elements, input %d has %d",
				ErrFusedLengthMismatch, len(seqs[0]), i, len(s))
		}
	}

	tasks := make([]task.Task, length)

	for pos := range tasks {
		args := make([]any, len(seqs))
		for i, s := range seqs {
			args[i] = s[pos]
		}

		tasks[pos] = task.Task{Position: pos, Payload: task.Spread(args...)}
	}

	return tasks, nil
}

// sequence converts any slice or array to []any. Strings are not sequences.
func sequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case task.Tuple:
		return s, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}

	return out, true
}
