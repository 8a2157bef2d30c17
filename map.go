// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pmap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/pmap/internal/ctxlog"
	"github.com/matt-FFFFFF/pmap/pool"
	"github.com/matt-FFFFFF/pmap/progress"
	"github.com/matt-FFFFFF/pmap/task"
)

// Map applies fn to every element of iterable and returns the outputs in input order.
//
// With workers == 0 the elements are processed one after another on the calling
// goroutine. With workers > 0 a pool of that many workers is acquired for the
// call and released before Map returns; tasks are handed over in batches of the
// configured size and completions are written back by position as they arrive.
// A negative worker count is a resource failure.
//
// The first error stops the map and no partial result is returned. The progress
// reporter is closed on every return path.
func Map(ctx context.Context, fn task.Func, iterable []any, workers int, opts ...Option) (*Output, error) {
	cfg := newConfig(opts...)

	reporter := cfg.newReporter()
	defer reporter.Close()

	runID := uuid.NewString()
	ctx = ctxlog.New(ctx, ctxlog.Logger(ctx).With("run", runID))

	if fn == nil {
		return nil, contractError(task.ErrNilFunc)
	}

	if cfg.batchSize < 1 {
		return nil, contractError(fmt.Errorf("%w: got %d", ErrInvalidBatchSize, cfg.batchSize))
	}

	if workers < 0 {
		return nil, resourceError(fmt.Errorf("%w: got %d", pool.ErrInvalidWorkers, workers))
	}

	tasks, err := buildTasks(iterable, cfg.fuse, cfg.shortest)
	if err != nil {
		return nil, contractError(err)
	}

	m := &mapper{
		id:       runID,
		cfg:      cfg,
		reporter: reporter,
		kwargs:   cfg.kwargs.Clone(),
		values:   make([]any, len(tasks)),
		filled:   make([]bool, len(tasks)),
	}

	if len(tasks) > 0 {
		if err := m.run(ctx, fn, tasks, workers); err != nil {
			return nil, err
		}
	}

	out := &Output{Values: m.values}

	if cfg.unzip {
		cols, err := unzip(m.values)
		if err != nil {
			return nil, contractError(err)
		}

		out.Columns = cols
	}

	return out, nil
}

// mapper owns the result buffer of one call. Only the goroutine running Map touches it.
type mapper struct {
	id        string
	cfg       *config
	reporter  progress.Reporter
	kwargs    task.Kwargs
	values    []any
	filled    []bool
	completed int
}

func (m *mapper) run(ctx context.Context, fn task.Func, tasks []task.Task, workers int) error {
	start := time.Now()
	mode := "sync"

	if workers > 0 {
		mode = "distributed"
	}

	ctxlog.Debug(ctx, "map started",
		"mode", mode,
		"workers", workers,
		"length", len(tasks),
		"batchSize", m.cfg.batchSize,
		"fuse", m.cfg.fuse,
		"label", m.cfg.label)

	m.report(progress.EventStarted, "started", progress.EventData{Total: len(tasks)})

	var err error
	if workers == 0 {
		err = m.sync(ctx, fn, tasks)
	} else {
		err = m.distributed(ctx, fn, tasks, workers)
	}

	if err == nil && m.completed != len(m.values) {
		err = contractError(fmt.Errorf("%w: %d of %d", ErrIncompleteResults, m.completed, len(m.values)))
	}

	if err != nil {
		m.report(progress.EventFailed, err.Error(), progress.EventData{
			Completed: m.completed,
			Total:     len(m.values),
			Error:     err,
		})
		ctxlog.Debug(ctx, "map failed", "error", err, "elapsed", time.Since(start))

		return err
	}

	m.report(progress.EventCompleted, "completed", progress.EventData{Completed: m.completed, Total: len(m.values)})
	ctxlog.Debug(ctx, "map finished", "elapsed", time.Since(start))

	return nil
}

// sync runs the tasks in order on the calling goroutine. Panics in fn are not recovered.
func (m *mapper) sync(ctx context.Context, fn task.Func, tasks []task.Task) error {
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck
		}

		c, err := task.Wrap(ctx, t, fn, m.kwargs)
		if err != nil {
			return functionError(t.Position, err)
		}

		if err := m.store(c); err != nil {
			return contractError(err)
		}
	}

	return nil
}

func (m *mapper) distributed(ctx context.Context, fn task.Func, tasks []task.Task, workers int) (err error) {
	p, err := m.cfg.poolFactory()(ctx, workers)
	if err != nil {
		return resourceError(err)
	}

	defer func() {
		cerr := p.Close()

		switch {
		case cerr == nil:
		case err == nil:
			err = resourceError(cerr)
		default:
			ctxlog.Debug(ctx, "pool teardown error", "error", cerr)
		}

		ctxlog.Debug(ctx, "pool released", "workers", workers)
	}()

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	job := &pool.Job{
		ID:        m.id,
		Func:      m.cfg.funcName,
		Kwargs:    m.kwargs,
		BatchSize: m.cfg.batchSize,
		Tasks:     tasks,
		Exec:      task.Wrapper{Func: fn, Kwargs: m.kwargs},
	}

	for o := range p.Submit(jobCtx, job) {
		if o.Err != nil {
			return classify(o.Err)
		}

		if err := m.store(o.Completion); err != nil {
			return contractError(err)
		}
	}

	return ctx.Err() //nolint:wrapcheck
}

// store writes a completion into the buffer and advances progress by one.
func (m *mapper) store(c task.Completion) error {
	if c.Position < 0 || c.Position >= len(m.values) {
		return fmt.Errorf("%w: %d", ErrPositionOutOfRange, c.Position)
	}

	if m.filled[c.Position] {
		return fmt.Errorf("%w: %d", ErrDuplicatePosition, c.Position)
	}

	m.values[c.Position] = c.Output
	m.filled[c.Position] = true
	m.completed++

	m.report(progress.EventProgress, "", progress.EventData{
		Position:  c.Position,
		Completed: m.completed,
		Total:     len(m.values),
	})

	return nil
}

func (m *mapper) report(t progress.EventType, msg string, data progress.EventData) {
	m.reporter.Report(progress.Event{
		Label:     m.cfg.label,
		Type:      t,
		Message:   msg,
		Timestamp: time.Now(),
		Data:      data,
	})
}
