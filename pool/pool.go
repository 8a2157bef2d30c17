// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/pmap/task"
)

var (
	// ErrInvalidWorkers is returned when a pool is requested with fewer than one worker.
	ErrInvalidWorkers = errors.New("worker count must be at least 1")
	// ErrInvalidBatchSize is returned when a job has a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
	// ErrNoFunction is returned when a job names no function for a process pool.
	ErrNoFunction = errors.New("job has no function name")
	// ErrClosed is returned when submitting to, or running on, a closed pool.
	ErrClosed = errors.New("pool is closed")
	// ErrWorkerStart is returned when a worker process cannot be started.
	ErrWorkerStart = errors.New("could not start worker process")
	// ErrWorkerExited is returned when a worker process dies or stops answering.
	ErrWorkerExited = errors.New("worker process exited")
	// ErrProtocol is returned when a worker receives or sends an unexpected message.
	ErrProtocol = errors.New("worker protocol error")
	// ErrRemotePanic is wrapped by a RemoteError when the function panicked in a worker process.
	ErrRemotePanic = errors.New("function panicked in worker process")
)

// Job is a set of tasks to be run with one function.
type Job struct {
	ID        string       // Identifies the job in logs
	Func      string       // Registry name of the function, used by process pools
	Kwargs    task.Kwargs  // Keyword arguments passed to every call
	BatchSize int          // Tasks handed to a worker at a time
	Tasks     []task.Task  // Tasks to run
	Exec      task.Wrapper // In process form of the function, used by goroutine pools
}

// Outcome is a completed task or the error that stopped the job.
type Outcome struct {
	Completion task.Completion
	Err        error
}

// Pool runs jobs.
//
// The channel returned by Submit yields one Outcome per task in arbitrary
// order and is closed after the last one, or straight after the first Outcome
// carrying an error. Cancelling ctx stops the job and closes the channel.
type Pool interface {
	Submit(ctx context.Context, job *Job) <-chan Outcome
	Close() error
}

// Factory creates a pool with the given number of workers.
type Factory func(ctx context.Context, workers int) (Pool, error)

// Goroutines returns a Factory for GoroutinePool.
func Goroutines() Factory {
	return func(ctx context.Context, workers int) (Pool, error) {
		return NewGoroutinePool(ctx, workers)
	}
}

// Processes returns a Factory for ProcessPool.
func Processes(cfg ProcessConfig) Factory {
	return func(ctx context.Context, workers int) (Pool, error) {
		return NewProcessPool(ctx, workers, cfg)
	}
}

// TaskError is the error of a task that failed on a worker.
type TaskError struct {
	Position int
	Err      error
}

// Error implements the error interface for TaskError.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d: %v", e.Position, e.Err)
}

// Unwrap returns the function's error.
func (e *TaskError) Unwrap() error {
	return e.Err
}

func checkWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}

	return nil
}

func checkBatchSize(job *Job) error {
	if job.BatchSize < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBatchSize, job.BatchSize)
	}

	return nil
}

// failed returns a closed channel holding a single error outcome.
func failed(err error) <-chan Outcome {
	ch := make(chan Outcome, 1)
	ch <- Outcome{Err: err}
	close(ch)

	return ch
}

// split cuts tasks into batches of at most size tasks.
func split(tasks []task.Task, size int) [][]task.Task {
	out := make([][]task.Task, 0, (len(tasks)+size-1)/size)

	for start := 0; start < len(tasks); start += size {
		out = append(out, tasks[start:min(start+size, len(tasks))])
	}

	return out
}

// forward copies up to n outcomes from in to out, stopping after the first error.
// It gives up when either context is done; if only the pool is done the
// caller is told the pool closed under it.
func forward(jobCtx, poolCtx context.Context, n int, in <-chan Outcome, out chan<- Outcome) {
	for range n {
		var o Outcome

		select {
		case o = <-in:
		case <-jobCtx.Done():
			return
		case <-poolCtx.Done():
			o = Outcome{Err: ErrClosed}
		}

		select {
		case out <- o:
		case <-jobCtx.Done():
			return
		}

		if o.Err != nil {
			return
		}
	}
}
