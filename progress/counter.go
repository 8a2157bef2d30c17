// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"slices"
	"sync"
)

// Counter records every event it receives.
type Counter struct {
	mu     sync.Mutex
	events []Event
	closes int
}

// NewCounter creates an empty Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Report implements Reporter.
func (c *Counter) Report(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, event)
}

// Close implements Reporter.
func (c *Counter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closes++
}

// Events returns a copy of the received events.
func (c *Counter) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.events)
}

// Count returns the number of events of type t.
func (c *Counter) Count(t EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0

	for _, e := range c.events {
		if e.Type == t {
			n++
		}
	}

	return n
}

// Closed reports whether Close has been called.
func (c *Counter) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closes > 0
}
