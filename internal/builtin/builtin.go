// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package builtin holds the functions the pmap command can run by name.
// They take integer or floating point arguments; a result is an int when
// every operand was an integer.
package builtin

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/pmap/registry"
	"github.com/matt-FFFFFF/pmap/task"
)

var (
	// ErrNotANumber is returned when an argument or kwarg is not numeric.
	ErrNotANumber = errors.New("value is not a number")
	// ErrArguments is returned when a function receives the wrong number of arguments.
	ErrArguments = errors.New("wrong number of arguments")
	// ErrMissingKwarg is returned when a required keyword argument is absent.
	ErrMissingKwarg = errors.New("missing keyword argument")
)

// Descriptions maps every builtin name to a one line summary.
var Descriptions = map[string]string{
	"times10":     "x -> x*10",
	"affine":      "x -> x*const1 + const2 (kwargs const1, const2)",
	"multiply":    "(a, b) -> a*b",
	"pair":        "x -> (x, x*10)",
	"sum_product": "(a, b) -> (a+b, a*b)",
	"method":      "(a[, b=1]) -> a*arg1 * b*arg2, or the two factors with multi_output",
}

var funcs = map[string]task.Func{
	"times10":     times10,
	"affine":      affine,
	"multiply":    multiply,
	"pair":        pair,
	"sum_product": sumProduct,
	"method":      method,
}

// Register adds every builtin to reg.
func Register(reg registry.Registry) error {
	var err error

	for name, fn := range funcs {
		err = errors.Join(err, reg.Register(name, fn))
	}

	return err
}

func times10(_ context.Context, _ task.Kwargs, args ...any) (any, error) {
	x, err := unary(args)
	if err != nil {
		return nil, err
	}

	return x.mul(intNum(10)).value(), nil
}

func affine(_ context.Context, kw task.Kwargs, args ...any) (any, error) {
	x, err := unary(args)
	if err != nil {
		return nil, err
	}

	c1, err := requiredKwarg(kw, "const1")
	if err != nil {
		return nil, err
	}

	c2, err := requiredKwarg(kw, "const2")
	if err != nil {
		return nil, err
	}

	return x.mul(c1).add(c2).value(), nil
}

func multiply(_ context.Context, _ task.Kwargs, args ...any) (any, error) {
	a, b, err := binary(args)
	if err != nil {
		return nil, err
	}

	return a.mul(b).value(), nil
}

func pair(_ context.Context, _ task.Kwargs, args ...any) (any, error) {
	x, err := unary(args)
	if err != nil {
		return nil, err
	}

	return task.Tuple{x.value(), x.mul(intNum(10)).value()}, nil
}

func sumProduct(_ context.Context, _ task.Kwargs, args ...any) (any, error) {
	a, b, err := binary(args)
	if err != nil {
		return nil, err
	}

	return task.Tuple{a.add(b).value(), a.mul(b).value()}, nil
}

// method scales the first argument by arg1 and the optional second by arg2 when
// those kwargs are numeric, then returns their product or, with multi_output, both.
func method(_ context.Context, kw task.Kwargs, args ...any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("%w: want 1 or 2, got %d", ErrArguments, len(args))
	}

	a, err := toNum(args[0])
	if err != nil {
		return nil, err
	}

	b := intNum(1)

	if len(args) == 2 {
		if b, err = toNum(args[1]); err != nil {
			return nil, err
		}
	}

	if f, ok := optionalKwarg(kw, "arg1"); ok {
		a = a.mul(f)
	}

	if f, ok := optionalKwarg(kw, "arg2"); ok {
		b = b.mul(f)
	}

	if multi, _ := kw["multi_output"].(bool); multi {
		return task.Tuple{a.value(), b.value()}, nil
	}

	return a.mul(b).value(), nil
}

func unary(args []any) (num, error) {
	if len(args) != 1 {
		return num{}, fmt.Errorf("%w: want 1, got %d", ErrArguments, len(args))
	}

	return toNum(args[0])
}

func binary(args []any) (num, num, error) {
	if len(args) != 2 {
		return num{}, num{}, fmt.Errorf("%w: want 2, got %d", ErrArguments, len(args))
	}

	a, err := toNum(args[0])
	if err != nil {
		return num{}, num{}, err
	}

	b, err := toNum(args[1])
	if err != nil {
		return num{}, num{}, err
	}

	return a, b, nil
}

func requiredKwarg(kw task.Kwargs, name string) (num, error) {
	v, ok := kw.Get(name)
	if !ok {
		return num{}, fmt.Errorf("%w: %s", ErrMissingKwarg, name)
	}

	n, err := toNum(v)
	if err != nil {
		return num{}, fmt.Errorf("kwarg %s: %w", name, err)
	}

	return n, nil
}

// optionalKwarg ignores absent or non-numeric values.
func optionalKwarg(kw task.Kwargs, name string) (num, bool) {
	v, ok := kw.Get(name)
	if !ok {
		return num{}, false
	}

	n, err := toNum(v)

	return n, err == nil
}
