// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pmap

import (
	"context"
	"fmt"
	"slices"
)

// MapOf is Map for a typed slice and a typed function.
func MapOf[T, R any](
	ctx context.Context,
	fn func(ctx context.Context, kw Kwargs, x T) (R, error),
	xs []T,
	workers int,
	opts ...Option,
) ([]R, error) {
	wrapped := func(ctx context.Context, kw Kwargs, args ...any) (any, error) {
		x, err := argument[T](args, 0)
		if err != nil {
			return nil, err
		}

		return fn(ctx, kw, x)
	}

	out, err := Map(ctx, wrapped, toAny(xs), workers, opts...)
	if err != nil {
		return nil, err
	}

	return results[R](out.Values)
}

// Map2 fuses two typed slices and applies fn to each pair.
// Both slices must have the same length unless WithShortest is given.
func Map2[A, B, R any](
	ctx context.Context,
	fn func(ctx context.Context, kw Kwargs, a A, b B) (R, error),
	as []A,
	bs []B,
	workers int,
	opts ...Option,
) ([]R, error) {
	wrapped := func(ctx context.Context, kw Kwargs, args ...any) (any, error) {
		a, err := argument[A](args, 0)
		if err != nil {
			return nil, err
		}

		b, err := argument[B](args, 1)
		if err != nil {
			return nil, err
		}

		return fn(ctx, kw, a, b)
	}

	opts = append(slices.Clip(opts), WithFuse())

	out, err := Map(ctx, wrapped, []any{toAny(as), toAny(bs)}, workers, opts...)
	if err != nil {
		return nil, err
	}

	return results[R](out.Values)
}

func toAny[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}

	return out
}

func argument[T any](args []any, i int) (T, error) {
	var zero T

	if i >= len(args) {
		return zero, fmt.Errorf("%w: missing argument %d", ErrArgumentType, i)
	}

	if args[i] == nil {
		return zero, nil
	}

	x, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("%w: argument %d is %T, want %T", ErrArgumentType, i, args[i], zero)
	}

	return x, nil
}

func results[R any](values []any) ([]R, error) {
	out := make([]R, len(values))

	for i, v := range values {
		if v == nil {
			continue
		}

		r, ok := v.(R)
		if !ok {
			return nil, contractError(fmt.Errorf("%w: position %d is %T, want %T", ErrResultType, i, v, out[i]))
		}

		out[i] = r
	}

	return out, nil
}
