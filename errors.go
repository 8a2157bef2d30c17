// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pmap

import (
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/pmap/pool"
	"github.com/matt-FFFFFF/pmap/registry"
	"github.com/matt-FFFFFF/pmap/task"
)

// Error kinds. Every error returned by Map wraps exactly one of them, except
// context errors, which are returned unchanged.
var (
	// ErrFunction wraps an error returned or raised by the mapped function.
	ErrFunction = errors.New("function failed")
	// ErrContract wraps a misuse of the API or a result of the wrong shape.
	ErrContract = errors.New("contract violation")
	// ErrResource wraps a failure to acquire or keep the worker pool.
	ErrResource = errors.New("resource failure")
)

var (
	// ErrNotATuple is returned when unzipping and a result is not a Tuple.
	ErrNotATuple = errors.New("result is not a tuple")
	// ErrArityMismatch is returned when unzipping and results have different arities.
	ErrArityMismatch = errors.New("result tuples have different arities")
	// ErrFusedLengthMismatch is returned when fused sequences differ in length.
	ErrFusedLengthMismatch = errors.New("fused sequences have different lengths")
	// ErrNoIterables is returned when fusing without any sequence.
	ErrNoIterables = errors.New("no sequences to fuse")
	// ErrNotASequence is returned when fusing and an element of the input is not a slice or array.
	ErrNotASequence = errors.New("fused input is not a sequence")
	// ErrInvalidBatchSize is returned for a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
	// ErrDuplicatePosition is returned when a pool completes a position twice.
	ErrDuplicatePosition = errors.New("position completed twice")
	// ErrPositionOutOfRange is returned when a pool completes an unknown position.
	ErrPositionOutOfRange = errors.New("position out of range")
	// ErrIncompleteResults is returned when a pool stops before completing every position.
	ErrIncompleteResults = errors.New("not every position was completed")
	// ErrResultType is returned by the typed helpers when a result has an unexpected type.
	ErrResultType = errors.New("result has unexpected type")
	// ErrArgumentType is returned by the typed helpers when an argument has an unexpected type.
	ErrArgumentType = errors.New("argument has unexpected type")
)

func contractError(err error) error {
	return fmt.Errorf("%w: %w", ErrContract, err)
}

func resourceError(err error) error {
	return fmt.Errorf("%w: %w", ErrResource, err)
}

func functionError(position int, err error) error {
	return fmt.Errorf("%w: position %d: %w", ErrFunction, position, err)
}

// classify assigns a kind to an error that came out of a pool.
// Errors raised by the function keep the function kind whatever they wrap,
// except a worker reporting that it does not know the function.
func classify(err error) error {
	var te *pool.TaskError
	if errors.As(err, &te) {
		if re, ok := te.Err.(*pool.RemoteError); ok && errors.Is(re, registry.ErrUnknownFunction) { //nolint:errorlint
			return contractError(err)
		}

		return functionError(te.Position, te.Err)
	}

	switch {
	case errors.Is(err, registry.ErrUnknownFunction),
		errors.Is(err, pool.ErrInvalidBatchSize),
		errors.Is(err, pool.ErrNoFunction),
		errors.Is(err, task.ErrNilFunc):
		return contractError(err)
	default:
		return resourceError(err)
	}
}
