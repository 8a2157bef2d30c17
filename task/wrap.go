// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package task

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrNilFunc is returned when a wrapper has no function to call.
var ErrNilFunc = errors.New("no function to call")

// Func is a function applied to every element by the map engine.
// args holds one value for single payloads, or the spread values of a fused payload.
// To produce several outputs, return a Tuple.
type Func func(ctx context.Context, kw Kwargs, args ...any) (any, error)

// Wrap calls fn with the payload of t and returns the output tagged with t.Position.
// Every call receives its own copy of kw.
// Errors returned by fn are passed through unchanged.
func Wrap(ctx context.Context, t Task, fn Func, kw Kwargs) (Completion, error) {
	if fn == nil {
		return Completion{Position: t.Position}, ErrNilFunc
	}

	out, err := fn(ctx, kw.Clone(), t.Payload.Arguments()...)
	if err != nil {
		return Completion{Position: t.Position}, err
	}

	return Completion{Position: t.Position, Output: out}, nil
}

// Wrapper binds a function to its kwargs so that tasks can be executed
// without carrying the configuration in every task.
type Wrapper struct {
	Func   Func
	Kwargs Kwargs
}

// Bind creates a Wrapper for fn. The kwargs are cloned.
func Bind(fn Func, kw Kwargs) Wrapper {
	return Wrapper{Func: fn, Kwargs: kw.Clone()}
}

// Call executes the task on the calling goroutine. Panics are not recovered.
func (w Wrapper) Call(ctx context.Context, t Task) (Completion, error) {
	return Wrap(ctx, t, w.Func, w.Kwargs)
}

// SafeCall executes the task and converts a panic into a *PanicError.
// Pools use it so that a panicking function cannot take down a worker.
func (w Wrapper) SafeCall(ctx context.Context, t Task) (c Completion, err error) {
	defer func() {
		if r := recover(); r != nil {
			c = Completion{Position: t.Position}
			err = &PanicError{Position: t.Position, Value: r, Stack: debug.Stack()}
		}
	}()

	return w.Call(ctx, t)
}

// PanicError is returned when a function panics while executing a task on a worker.
type PanicError struct {
	Position int
	Value    any
	Stack    []byte
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	prefix := fmt.Sprintf("task %d panicked:", e.Position)

	switch x := e.Value.(type) {
	case string:
		return fmt.Sprintf("%s %s", prefix, x)
	case error:
		return fmt.Sprintf("%s %s", prefix, x.Error())
	default:
		return fmt.Sprintf("%s %v", prefix, x)
	}
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}
