// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a single progress update.
type Event struct {
	Label     string    // Label of the map, may be empty
	Type      EventType // What happened
	Message   string    // Human readable status
	Timestamp time.Time // When it happened
	Data      EventData // Type specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventStarted is sent once with Data.Total set.
	EventStarted EventType = iota
	// EventProgress is sent once per completed item.
	EventProgress
	// EventCompleted is sent when every item has completed.
	EventCompleted
	// EventFailed is sent when the map stops on an error.
	EventFailed
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventData contains type specific information.
type EventData struct {
	Position  int   // Position of the item that completed, EventProgress only
	Completed int   // Items completed so far
	Total     int   // Total number of items
	Error     error // EventFailed only
}

// Reporter receives events. Report must not block.
type Reporter interface {
	Report(event Event)
	// Close signals that no more events will be sent. It must be safe to call more than once.
	Close()
}

// Listener consumes events forwarded by a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(event Event)

// OnEvent calls f.
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// NullReporter discards everything.
type NullReporter struct{}

// Report does nothing.
func (NullReporter) Report(Event) {}

// Close does nothing.
func (NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}
