// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/pmap/progress"
)

// Runner manages the TUI program and hands out reporters that feed it.
type Runner struct {
	model   *Model
	program *tea.Program
	mutex   sync.Mutex
}

// Reporter implements progress.Reporter and forwards events to the TUI.
// Closing it only stops this reporter, so that one Runner can display several maps.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewReporter creates a reporter that sends events to program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{
		program: program,
	}
}

// Report implements progress.Reporter.
func (tr *Reporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *Reporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner, *[]tea.ProgramOption)

// WithAutoQuit exits the program when the work returns.
func WithAutoQuit() RunnerOption {
	return func(r *Runner, _ *[]tea.ProgramOption) {
		r.model.SetAutoQuit(true)
	}
}

// WithProgramOptions passes options to the bubbletea program, for example input and output in tests.
func WithProgramOptions(opts ...tea.ProgramOption) RunnerOption {
	return func(_ *Runner, p *[]tea.ProgramOption) {
		*p = append(*p, opts...)
	}
}

// NewRunner creates a new TUI runner using the alternate screen.
func NewRunner(ctx context.Context, opts ...RunnerOption) *Runner {
	r := &Runner{
		model: NewModel(ctx),
	}

	popts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	for _, o := range opts {
		o(r, &popts)
	}

	r.program = tea.NewProgram(r.model, popts...)

	return r
}

// Reporter returns a new reporter for one map.
func (r *Runner) Reporter() progress.Reporter {
	return NewReporter(r.program)
}

// Model returns the model displayed by the runner.
func (r *Runner) Model() *Model {
	return r.model
}

// Run starts the TUI and calls fn. It returns once both fn and the TUI have finished.
// The error of fn takes precedence over a TUI error.
func (r *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	workDone := make(chan error, 1)

	go func() {
		workDone <- fn(ctx)
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var workErr, tuiErr error

	select {
	case workErr = <-workDone:
		r.program.Send(DoneMsg{Err: workErr})
		tuiErr = <-tuiDone

	case tuiErr = <-tuiDone:
		// The user left early; the work still has to return before we can.
		workErr = <-workDone

	case <-ctx.Done():
		r.program.Quit()

		workErr = <-workDone
		tuiErr = <-tuiDone
	}

	if errors.Is(tuiErr, tea.ErrProgramKilled) {
		tuiErr = nil
	}

	if workErr != nil {
		return workErr
	}

	return tuiErr //nolint:wrapcheck
}
