// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package registry maps function names to task functions.
// Worker processes cannot receive a function value from their parent,
// so the parent sends a name and the worker resolves it here.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matt-FFFFFF/pmap/task"
)

var (
	// ErrUnknownFunction is returned when a function name is not registered.
	ErrUnknownFunction = errors.New("unknown function")
	// ErrDuplicateFunction is returned when a function name is registered twice.
	ErrDuplicateFunction = errors.New("function already registered")
	// ErrInvalidRegistration is returned for an empty name or a nil function.
	ErrInvalidRegistration = errors.New("invalid function registration")
)

// Registry holds the mapping between function names and functions.
// Register functions during program initialisation; lookups are read only
// and safe to run concurrently once registration is done.
type Registry map[string]task.Func

// Default is the registry used by worker processes unless told otherwise.
var Default = make(Registry)

// RegistrationFunc adds functions to a registry.
type RegistrationFunc func(Registry) error

// New creates a registry and applies the given registration functions.
func New(fns ...RegistrationFunc) (Registry, error) {
	r := make(Registry)

	for _, fn := range fns {
		if err := fn(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds fn under name.
func (r Registry) Register(name string, fn task.Func) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: %q", ErrInvalidRegistration, name)
	}

	if _, exists := r[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, name)
	}

	r[name] = fn

	return nil
}

// MustRegister is like Register but panics on error.
func (r Registry) MustRegister(name string, fn task.Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the function registered under name.
func (r Registry) Lookup(name string) (task.Func, error) {
	fn, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}

	return fn, nil
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// Register adds fn to the default registry.
func Register(name string, fn task.Func) error {
	return Default.Register(name, fn)
}

// Lookup resolves name in the default registry.
func Lookup(name string) (task.Func, error) {
	return Default.Lookup(name)
}
