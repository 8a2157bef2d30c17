// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"sync"

	"github.com/matt-FFFFFF/pmap/internal/ctxlog"
	"github.com/matt-FFFFFF/pmap/task"
	"golang.org/x/sync/errgroup"
)

var _ Pool = (*GoroutinePool)(nil)

// GoroutinePool runs tasks on a fixed number of goroutines.
// A panic in the function becomes a *task.PanicError for that task.
type GoroutinePool struct {
	queue  chan batch
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	jobs   sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

type batch struct {
	ctx     context.Context
	exec    task.Wrapper
	tasks   []task.Task
	results chan<- Outcome
}

// NewGoroutinePool starts workers goroutines. They stop when ctx is cancelled or the pool is closed.
func NewGoroutinePool(ctx context.Context, workers int) (*GoroutinePool, error) {
	if err := checkWorkers(workers); err != nil {
		return nil, err
	}

	poolCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(poolCtx)

	p := &GoroutinePool{
		queue:  make(chan batch),
		ctx:    poolCtx,
		cancel: cancel,
		group:  g,
	}

	for range workers {
		g.Go(func() error {
			p.work(gctx)
			return nil
		})
	}

	ctxlog.Debug(ctx, "goroutine pool started", "workers", workers)

	return p, nil
}

// Submit implements Pool.
func (p *GoroutinePool) Submit(ctx context.Context, job *Job) <-chan Outcome {
	if err := checkBatchSize(job); err != nil {
		return failed(err)
	}

	if job.Exec.Func == nil {
		return failed(task.ErrNilFunc)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return failed(ErrClosed)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	results := make(chan Outcome, len(job.Tasks))
	out := make(chan Outcome)

	p.jobs.Add(2)

	go func() {
		defer p.jobs.Done()

		for _, tasks := range split(job.Tasks, job.BatchSize) {
			b := batch{ctx: jobCtx, exec: job.Exec, tasks: tasks, results: results}

			select {
			case p.queue <- b:
			case <-jobCtx.Done():
				return
			case <-p.ctx.Done():
				return
			}
		}
	}()

	go func() {
		defer p.jobs.Done()
		defer cancel()
		defer close(out)

		forward(jobCtx, p.ctx, len(job.Tasks), results, out)
	}()

	return out
}

// Close stops the workers and waits for them and any job goroutines to return.
func (p *GoroutinePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}

	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.jobs.Wait()

	return p.group.Wait() //nolint:wrapcheck
}

func (p *GoroutinePool) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-p.queue:
			b.run()
		}
	}
}

// run executes the batch in order. results has room for every task, so sends never block.
func (b batch) run() {
	for _, t := range b.tasks {
		if b.ctx.Err() != nil {
			return
		}

		c, err := b.exec.SafeCall(b.ctx, t)
		if err != nil {
			b.results <- Outcome{Completion: c, Err: &TaskError{Position: t.Position, Err: err}}
			return
		}

		b.results <- Outcome{Completion: c}
	}
}
