// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/pmap/progress"
)

// DefaultLabel is shown for events without a label.
const DefaultLabel = "map"

// JobStatus represents the current state of a job in the TUI.
type JobStatus int

const (
	StatusPending JobStatus = iota
	StatusRunning
	StatusSuccess
	StatusFailed
)

// String returns a string representation of the job status.
func (s JobStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// JobNode is the display state of one labelled map.
type JobNode struct {
	Label     string
	Status    JobStatus
	Completed int
	Total     int
	StartTime *time.Time
	EndTime   *time.Time
	ErrorMsg  string
	mutex     sync.RWMutex
}

// NewJobNode creates a pending job node.
func NewJobNode(label string) *JobNode {
	return &JobNode{
		Label:  label,
		Status: StatusPending,
	}
}

// UpdateStatus safely updates the job status, recording start and end times.
func (n *JobNode) UpdateStatus(status JobStatus) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.Status = status
	now := time.Now()

	switch status {
	case StatusRunning:
		if n.StartTime == nil {
			n.StartTime = &now
		}
	case StatusSuccess, StatusFailed:
		if n.StartTime == nil {
			n.StartTime = &now
		}

		if n.EndTime == nil {
			n.EndTime = &now
		}
	}
}

// UpdateCounts safely updates the completed and total counts.
// A zero total leaves the known total unchanged.
func (n *JobNode) UpdateCounts(completed, total int) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if total > 0 {
		n.Total = total
	}

	if completed > n.Completed {
		n.Completed = completed
	}
}

// UpdateError safely updates the error message.
func (n *JobNode) UpdateError(err string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.ErrorMsg = err
}

// Snapshot is a consistent copy of a JobNode for rendering.
type Snapshot struct {
	Label     string
	Status    JobStatus
	Completed int
	Total     int
	Elapsed   time.Duration
	ErrorMsg  string
}

// Percent is the completed fraction, 0 when the total is unknown.
func (s Snapshot) Percent() float64 {
	if s.Total <= 0 {
		return 0
	}

	return float64(s.Completed) / float64(s.Total)
}

// Snapshot safely copies the node.
func (n *JobNode) Snapshot() Snapshot {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	s := Snapshot{
		Label:     n.Label,
		Status:    n.Status,
		Completed: n.Completed,
		Total:     n.Total,
		ErrorMsg:  n.ErrorMsg,
	}

	if n.StartTime != nil {
		s.Elapsed = time.Since(*n.StartTime)
		if n.EndTime != nil {
			s.Elapsed = n.EndTime.Sub(*n.StartTime)
		}
	}

	return s
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	jobs      []*JobNode
	index     map[string]*JobNode
	width     int
	height    int
	quitting  bool
	completed bool
	err       error
	autoQuit  bool
	mutex     sync.RWMutex

	bar      bprogress.Model
	viewport viewport.Model
	styles   *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Detail  lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
	Border  lipgloss.Style
	Status  lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Detail: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
	}
}

// NewModel creates a new TUI model.
func NewModel(ctx context.Context) *Model {
	return &Model{
		ctx:      ctx,
		index:    make(map[string]*JobNode),
		bar:      bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(defaultBarWidth)),
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		styles:   NewStyles(),
	}
}

// SetAutoQuit makes the program exit as soon as the work is done instead of waiting for a key press.
func (m *Model) SetAutoQuit(v bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.autoQuit = v
}

// Jobs returns snapshots of every job in the order they were first seen.
func (m *Model) Jobs() []Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	out := make([]Snapshot, len(m.jobs))
	for i, j := range m.jobs {
		out[i] = j.Snapshot()
	}

	return out
}

// getOrCreateJob safely gets or creates the node for label.
func (m *Model) getOrCreateJob(label string) *JobNode {
	if label == "" {
		label = DefaultLabel
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if n, ok := m.index[label]; ok {
		return n
	}

	n := NewJobNode(label)
	m.index[label] = n
	m.jobs = append(m.jobs, n)

	return n
}

// processProgressEvent applies an event to the job it belongs to.
func (m *Model) processProgressEvent(event progress.Event) {
	n := m.getOrCreateJob(event.Label)

	switch event.Type {
	case progress.EventStarted:
		n.UpdateCounts(0, event.Data.Total)
		n.UpdateStatus(StatusRunning)

	case progress.EventProgress:
		n.UpdateCounts(event.Data.Completed, event.Data.Total)
		n.UpdateStatus(StatusRunning)

	case progress.EventCompleted:
		n.UpdateCounts(event.Data.Completed, event.Data.Total)
		n.UpdateStatus(StatusSuccess)

	case progress.EventFailed:
		n.UpdateCounts(event.Data.Completed, event.Data.Total)
		n.UpdateStatus(StatusFailed)

		if event.Data.Error != nil {
			n.UpdateError(event.Data.Error.Error())
		} else if event.Message != "" {
			n.UpdateError(event.Message)
		}
	}
}
