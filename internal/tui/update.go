// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/pmap/progress"
)

const (
	defaultBarWidth       = 30
	defaultViewportWidth  = 80
	defaultViewportHeight = 10
	minViewportWidth      = 20
	reservedLines         = 8
	minLabelWidth         = 8
	durationRounding      = 100 * time.Millisecond
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// DoneMsg indicates that the work started by the Runner has returned.
type DoneMsg struct {
	Err error
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		m.mutex.Unlock()

		return m, cmd

	case ProgressEventMsg:
		m.processProgressEvent(msg.Event)
		return m, cmd

	case DoneMsg:
		m.mutex.Lock()
		m.completed = true
		m.err = msg.Err
		autoQuit := m.autoQuit
		m.mutex.Unlock()

		if autoQuit {
			return m, tea.Quit
		}

		return m, nil
	}

	return m, cmd
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// updateViewportSize must be called with the mutex held.
func (m *Model) updateViewportSize() {
	w := m.width - 4 //nolint:mnd // border and padding
	if w < minViewportWidth {
		w = minViewportWidth
	}

	h := m.height - reservedLines
	if h < 1 {
		h = 1
	}

	m.viewport.Width = w
	m.viewport.Height = h
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	jobs := m.Jobs()

	m.mutex.RLock()
	completed, err := m.completed, m.err
	m.mutex.RUnlock()

	var content strings.Builder

	labelWidth := minLabelWidth
	for _, j := range jobs {
		labelWidth = max(labelWidth, lipgloss.Width(j.Label))
	}

	for _, j := range jobs {
		m.renderJob(&content, j, labelWidth)
	}

	if completed {
		content.WriteString("\n")

		if err != nil {
			content.WriteString(m.styles.Failed.Render("Finished with errors: " + err.Error()))
		} else {
			content.WriteString(m.styles.Success.Render("Finished successfully"))
		}

		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("pmap"))
	view.WriteString("\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))
	view.WriteString("\n\n")
	view.WriteString(m.renderStatusBar(jobs))
	view.WriteString("\n")

	help := "'q' to quit"
	if completed {
		help = "'q' to quit and return to the terminal"
	}

	view.WriteString(m.styles.Help.Render(help))

	return view.String()
}

// renderJob writes one line per job, plus an error line for failed jobs.
func (m *Model) renderJob(b *strings.Builder, j Snapshot, labelWidth int) {
	var (
		icon  string
		style lipgloss.Style
	)

	switch j.Status {
	case StatusPending:
		icon, style = "⏳", m.styles.Pending
	case StatusRunning:
		icon, style = "⚡", m.styles.Running
	case StatusSuccess:
		icon, style = "✅", m.styles.Success
	case StatusFailed:
		icon, style = "❌", m.styles.Failed
	default:
		icon, style = "❓", m.styles.Pending
	}

	label := j.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(j.Label))

	fmt.Fprintf(b, "%s %s %s %s",
		icon,
		style.Render(label),
		m.bar.ViewAs(j.Percent()),
		m.styles.Detail.Render(fmt.Sprintf("%d/%d (%v)", j.Completed, j.Total, j.Elapsed.Round(durationRounding))),
	)
	b.WriteString("\n")

	if j.Status == StatusFailed && j.ErrorMsg != "" {
		b.WriteString("   ")
		b.WriteString(m.styles.Error.Render("Error: " + j.ErrorMsg))
		b.WriteString("\n")
	}
}

func (m *Model) renderStatusBar(jobs []Snapshot) string {
	var running, succeeded, failed, done, total int

	for _, j := range jobs {
		switch j.Status {
		case StatusRunning:
			running++
		case StatusSuccess:
			succeeded++
		case StatusFailed:
			failed++
		}

		done += j.Completed
		total += j.Total
	}

	return m.styles.Status.Render(fmt.Sprintf("jobs: %d running, %d done, %d failed | elements: %d/%d",
		running, succeeded, failed, done, total))
}
