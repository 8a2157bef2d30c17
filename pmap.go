// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pmap applies a function to every element of a sequence, either on the
// calling goroutine or on a pool of workers, and returns the results in input order.
//
// Every element is tagged with its position before it is dispatched. Workers may
// finish in any order; each completion is written into a pre-sized buffer at its
// position, so the output order never depends on scheduling. Several sequences
// can be fused into argument tuples, and tuple results can be unzipped into
// columns. Progress is reported to a progress.Reporter, a terminal bar by default.
//
//	out, err := pmap.Map(ctx, square, []any{1, 2, 3}, 4, pmap.WithLabel("squares"))
package pmap

import (
	"github.com/matt-FFFFFF/pmap/task"
)

var (
	// Version is set during the build process.
	Version = "dev"
	// Commit is set during the build process.
	Commit = "unknown"
)

type (
	// Func is the function applied to every element.
	Func = task.Func
	// Kwargs are the fixed keyword arguments passed to every call.
	Kwargs = task.Kwargs
	// Tuple is a fixed-arity group of values, returned by functions whose results are unzipped.
	Tuple = task.Tuple
)

// Output is the result of Map.
type Output struct {
	// Values holds one output per input element, in input order.
	Values []any
	// Columns is set when unzipping: Columns[i][j] is element i of the tuple returned for input j.
	Columns [][]any
}
