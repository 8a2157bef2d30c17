// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package task

import (
	"encoding/gob"
	"maps"
)

func init() {
	// Types that travel inside interface values over the worker process protocol.
	gob.Register(Tuple{})
	gob.Register([]any{})
	gob.Register(map[string]any{})
}

// Kwargs are the fixed named parameters passed to every invocation of a Func.
// Each invocation receives its own shallow copy.
type Kwargs map[string]any

// Clone returns a shallow copy of the kwargs. A nil receiver yields an empty map.
func (k Kwargs) Clone() Kwargs {
	if k == nil {
		return Kwargs{}
	}

	return maps.Clone(k)
}

// Get returns the named parameter and whether it was set.
func (k Kwargs) Get(name string) (any, bool) {
	v, ok := k[name]
	return v, ok
}

// Tuple is a fixed-arity group of values.
// Functions return a Tuple when they produce several outputs per element.
type Tuple []any

// Payload is the argument part of a task.
// It is either a single value passed as the only positional argument,
// or a group of values spread over several positional arguments.
type Payload struct {
	Value  any   // Set for single payloads
	Args   []any // Set for spread payloads
	Spread bool  // True when Args must be spread into positional arguments
}

// Single creates a payload holding one value.
func Single(v any) Payload {
	return Payload{Value: v}
}

// Spread creates a payload whose values are spread as positional arguments.
func Spread(args ...any) Payload {
	return Payload{Args: args, Spread: true}
}

// Arguments returns the positional arguments the payload expands to.
func (p Payload) Arguments() []any {
	if p.Spread {
		return p.Args
	}

	return []any{p.Value}
}

// Task is a position tagged payload.
type Task struct {
	Position int
	Payload  Payload
}

// Completion is the output of a task tagged with the position of the task.
type Completion struct {
	Position int
	Output   any
}
