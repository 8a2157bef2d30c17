// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/pmap/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(label string, t progress.EventType, data progress.EventData) progress.Event {
	return progress.Event{Label: label, Type: t, Timestamp: time.Now(), Data: data}
}

func TestNewJobNode(t *testing.T) {
	node := NewJobNode("tens")

	require.NotNil(t, node)
	assert.Equal(t, "tens", node.Label)
	assert.Equal(t, StatusPending, node.Status)
	assert.Nil(t, node.StartTime)
	assert.Nil(t, node.EndTime)
	assert.Empty(t, node.ErrorMsg)
}

func TestJobNode_UpdateStatus(t *testing.T) {
	node := NewJobNode("tens")

	node.UpdateStatus(StatusRunning)
	assert.NotNil(t, node.StartTime)
	assert.Nil(t, node.EndTime)

	node.UpdateStatus(StatusSuccess)
	assert.NotNil(t, node.EndTime)
	assert.Equal(t, StatusSuccess, node.Snapshot().Status)
}

func TestJobNode_UpdateCounts(t *testing.T) {
	node := NewJobNode("tens")

	node.UpdateCounts(0, 4)
	node.UpdateCounts(3, 0)
	node.UpdateCounts(2, 4)

	s := node.Snapshot()
	assert.Equal(t, 3, s.Completed)
	assert.Equal(t, 4, s.Total)
	assert.InDelta(t, 0.75, s.Percent(), 1e-9)
	assert.Zero(t, Snapshot{}.Percent())
}

func TestModel_ProcessProgressEvent(t *testing.T) {
	model := NewModel(context.Background())

	model.processProgressEvent(event("tens", progress.EventStarted, progress.EventData{Total: 2}))
	model.processProgressEvent(event("", progress.EventStarted, progress.EventData{Total: 1}))

	jobs := model.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "tens", jobs[0].Label)
	assert.Equal(t, DefaultLabel, jobs[1].Label)
	assert.Equal(t, StatusRunning, jobs[0].Status)

	model.processProgressEvent(event("tens", progress.EventProgress, progress.EventData{Position: 1, Completed: 1, Total: 2}))
	assert.Equal(t, 1, model.Jobs()[0].Completed)

	model.processProgressEvent(event("tens", progress.EventCompleted, progress.EventData{Completed: 2, Total: 2}))
	assert.Equal(t, StatusSuccess, model.Jobs()[0].Status)
	assert.Equal(t, 2, model.Jobs()[0].Completed)

	model.processProgressEvent(event("", progress.EventFailed, progress.EventData{Total: 1, Error: assert.AnError}))
	failed := model.Jobs()[1]
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Contains(t, failed.ErrorMsg, "assert.AnError")
}

func TestModel_UpdateAndView(t *testing.T) {
	model := NewModel(context.Background())

	_, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	_, _ = model.Update(ProgressEventMsg{Event: event("tens", progress.EventStarted, progress.EventData{Total: 4})})
	_, _ = model.Update(ProgressEventMsg{Event: event("tens", progress.EventProgress, progress.EventData{Completed: 1, Total: 4})})

	view := model.View()
	assert.Contains(t, view, "tens")
	assert.Contains(t, view, "1/4")
	assert.Contains(t, view, "elements: 1/4")

	_, cmd := model.Update(DoneMsg{Err: errors.New("boom")})
	assert.Nil(t, cmd)
	assert.Contains(t, model.View(), "Finished with errors: boom")

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, "Shutting down...\n", model.View())
}

func TestModel_AutoQuit(t *testing.T) {
	model := NewModel(context.Background())
	model.SetAutoQuit(true)

	_, cmd := model.Update(DoneMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReporter(t *testing.T) {
	reporter := &Reporter{}
	ev := event("tens", progress.EventStarted, progress.EventData{Total: 1})

	assert.NotPanics(t, func() {
		reporter.Report(ev)
	})

	assert.NotPanics(t, func() {
		reporter.Close()
		reporter.Close()
	})

	assert.NotPanics(t, func() {
		reporter.Report(ev)
	})
}

func TestRunner_Run(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out bytes.Buffer

	r := NewRunner(ctx, WithAutoQuit(), WithProgramOptions(
		tea.WithInput(nil),
		tea.WithOutput(&out),
		tea.WithoutSignalHandler(),
	))

	err := r.Run(ctx, func(_ context.Context) error {
		rep := r.Reporter()
		defer rep.Close()

		rep.Report(event("tens", progress.EventStarted, progress.EventData{Total: 2}))
		rep.Report(event("tens", progress.EventProgress, progress.EventData{Completed: 1, Total: 2}))
		rep.Report(event("tens", progress.EventProgress, progress.EventData{Completed: 2, Total: 2}))
		rep.Report(event("tens", progress.EventCompleted, progress.EventData{Completed: 2, Total: 2}))

		return nil
	})
	require.NoError(t, err)

	jobs := r.Model().Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, StatusSuccess, jobs[0].Status)
	assert.Equal(t, 2, jobs[0].Completed)
}

func TestRunner_RunReturnsWorkError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := NewRunner(ctx, WithAutoQuit(), WithProgramOptions(
		tea.WithInput(nil),
		tea.WithOutput(&bytes.Buffer{}),
		tea.WithoutSignalHandler(),
	))

	err := r.Run(ctx, func(_ context.Context) error {
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)
}
