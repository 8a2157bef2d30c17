// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/pmap/internal/ctxlog"
	"github.com/matt-FFFFFF/pmap/internal/teereader"
	"github.com/matt-FFFFFF/pmap/task"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultGracePeriod is how long Close waits for a worker to exit before killing it.
	DefaultGracePeriod = 5 * time.Second
	// DefaultWorkerArg is the argument passed to worker processes when ProcessConfig.Args is nil.
	DefaultWorkerArg = "worker"

	tailWait       = 500 * time.Millisecond
	lastLineLength = 200
)

var _ Pool = (*ProcessPool)(nil)

// ProcessConfig describes how worker processes are started.
type ProcessConfig struct {
	Path        string        // Executable, defaults to os.Executable()
	Args        []string      // Arguments, excluding the executable name; nil means DefaultWorkerArg
	Env         []string      // Added to the current environment
	Dir         string        // Working directory, empty means the current one
	GracePeriod time.Duration // Defaults to DefaultGracePeriod
	Stderr      io.Writer     // Receives worker stderr, defaults to io.Discard
}

// ProcessPool runs tasks in worker processes.
// Functions are resolved by name in the worker's registry, so arguments,
// kwargs and results must be gob encodable. Jobs on one pool run one at a time.
type ProcessPool struct {
	cfg     ProcessConfig
	workers []*worker
	ctx     context.Context
	cancel  context.CancelFunc
	busy    chan struct{}
	jobs    sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	once    sync.Once
	err     error
}

type worker struct {
	id         int
	proc       *os.Process
	stdin      *os.File
	stdout     *os.File
	enc        *gob.Encoder
	dec        *gob.Decoder
	tail       *teereader.TailReader
	stderrDone chan struct{}
}

// NewProcessPool starts workers worker processes.
func NewProcessPool(ctx context.Context, workers int, cfg ProcessConfig) (*ProcessPool, error) {
	if err := checkWorkers(workers); err != nil {
		return nil, err
	}

	if cfg.Path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Join(ErrWorkerStart, err)
		}

		cfg.Path = exe
	}

	if cfg.Args == nil {
		cfg.Args = []string{DefaultWorkerArg}
	}

	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}

	if cfg.Stderr == nil {
		cfg.Stderr = io.Discard
	}

	poolCtx, cancel := context.WithCancel(ctx)
	p := &ProcessPool{
		cfg:    cfg,
		ctx:    poolCtx,
		cancel: cancel,
		busy:   make(chan struct{}, 1),
	}

	env := slices.Concat(os.Environ(), cfg.Env, []string{WorkerEnv + "=1"})

	for i := range workers {
		w, err := p.start(i, env)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("%w: worker %d: %w", ErrWorkerStart, i, err)
		}

		p.workers = append(p.workers, w)
	}

	ctxlog.Debug(ctx, "process pool started", "workers", workers, "path", cfg.Path)

	return p, nil
}

func (p *ProcessPool) start(id int, env []string) (*worker, error) {
	var files []*os.File

	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	pipe := func() (*os.File, *os.File, error) {
		r, w, err := os.Pipe()
		if err == nil {
			files = append(files, r, w)
		}

		return r, w, err
	}

	stdinR, stdinW, err := pipe()
	if err != nil {
		return nil, err
	}

	stdoutR, stdoutW, err := pipe()
	if err != nil {
		closeAll()
		return nil, err
	}

	stderrR, stderrW, err := pipe()
	if err != nil {
		closeAll()
		return nil, err
	}

	proc, err := os.StartProcess(p.cfg.Path, slices.Concat([]string{filepath.Base(p.cfg.Path)}, p.cfg.Args), &os.ProcAttr{
		Dir:   p.cfg.Dir,
		Env:   env,
		Files: []*os.File{stdinR, stdoutW, stderrW},
	})
	if err != nil {
		closeAll()
		return nil, err
	}

	// the child holds its own copies
	_ = stdinR.Close()
	_ = stdoutW.Close()
	_ = stderrW.Close()

	w := &worker{
		id:         id,
		proc:       proc,
		stdin:      stdinW,
		stdout:     stdoutR,
		enc:        gob.NewEncoder(stdinW),
		dec:        gob.NewDecoder(stdoutR),
		tail:       teereader.New(stderrR, 0),
		stderrDone: make(chan struct{}),
	}

	go func() {
		defer close(w.stderrDone)

		_, _ = io.Copy(p.cfg.Stderr, w.tail)
		_ = stderrR.Close()
	}()

	return w, nil
}

// Submit implements Pool.
func (p *ProcessPool) Submit(ctx context.Context, job *Job) <-chan Outcome {
	if err := checkBatchSize(job); err != nil {
		return failed(err)
	}

	if job.Func == "" {
		return failed(ErrNoFunction)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return failed(ErrClosed)
	}

	jobCtx, cancel := context.WithCancel(ctx)
	results := make(chan Outcome, len(job.Tasks)+len(p.workers))
	out := make(chan Outcome)

	p.jobs.Add(2)

	go func() {
		defer p.jobs.Done()
		p.run(jobCtx, job, results)
	}()

	go func() {
		defer p.jobs.Done()
		defer cancel()
		defer close(out)

		forward(jobCtx, p.ctx, len(job.Tasks), results, out)
	}()

	return out
}

func (p *ProcessPool) run(ctx context.Context, job *Job, results chan<- Outcome) {
	select {
	case p.busy <- struct{}{}:
	case <-ctx.Done():
		return
	case <-p.ctx.Done():
		return
	}

	defer func() { <-p.busy }()

	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan []task.Task)

	g.Go(func() error {
		defer close(queue)

		for _, b := range split(job.Tasks, job.BatchSize) {
			select {
			case queue <- b:
			case <-gctx.Done():
				return gctx.Err()
			}
		}

		return nil
	})

	h := &header{JobID: job.ID, Func: job.Func, Kwargs: job.Kwargs}

	for _, w := range p.workers {
		g.Go(func() error {
			return p.drive(gctx, w, h, queue, results)
		})
	}

	if err := g.Wait(); err != nil {
		ctxlog.Debug(ctx, "process job stopped", "job", job.ID, "error", err)
	}
}

// drive feeds batches from queue to one worker and reports what comes back.
func (p *ProcessPool) drive(ctx context.Context, w *worker, h *header, queue <-chan []task.Task, results chan<- Outcome) error {
	if err := w.enc.Encode(request{Header: h}); err != nil {
		err = p.exited(w, err)
		results <- Outcome{Err: err}

		return err
	}

	for {
		var (
			b  []task.Task
			ok bool
		)

		select {
		case b, ok = <-queue:
			if !ok {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := w.enc.Encode(request{Batch: b}); err != nil {
			err = p.exited(w, err)
			results <- Outcome{Err: err}

			return err
		}

		var rep reply
		if err := w.dec.Decode(&rep); err != nil {
			err = p.exited(w, err)
			results <- Outcome{Err: err}

			return err
		}

		for _, c := range rep.Completions {
			results <- Outcome{Completion: c}
		}

		if rep.Failed {
			err := &TaskError{
				Position: rep.Position,
				Err:      &RemoteError{Position: rep.Position, Code: rep.Code, Message: rep.Message},
			}
			results <- Outcome{Completion: task.Completion{Position: rep.Position}, Err: err}

			return err
		}
	}
}

// exited describes a worker that stopped answering, with the last line it wrote to stderr.
func (p *ProcessPool) exited(w *worker, cause error) error {
	select {
	case <-w.stderrDone:
	case <-time.After(tailWait):
	}

	if line := w.tail.LastLine(lastLineLength); line != "" {
		return fmt.Errorf("%w: worker %d (pid %d): %s: %w", ErrWorkerExited, w.id, w.proc.Pid, line, cause)
	}

	return fmt.Errorf("%w: worker %d (pid %d): %w", ErrWorkerExited, w.id, w.proc.Pid, cause)
}

// Close ends every worker's input, waits for them to exit, killing any that
// outlive the grace period, then waits for job goroutines.
func (p *ProcessPool) Close() error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		p.cancel()

		var merr *multierror.Error

		for _, w := range p.workers {
			merr = multierror.Append(merr, p.stop(w))
		}

		p.jobs.Wait()

		p.err = merr.ErrorOrNil()
	})

	return p.err
}

func (p *ProcessPool) stop(w *worker) error {
	_ = w.stdin.Close()

	type waited struct {
		state *os.ProcessState
		err   error
	}

	done := make(chan waited, 1)

	go func() {
		state, err := w.proc.Wait()
		done <- waited{state: state, err: err}
	}()

	killed := false

	var res waited

	select {
	case res = <-done:
	case <-time.After(p.cfg.GracePeriod):
		killed = true

		ctxlog.Debug(p.ctx, "killing worker", "worker", w.id, "pid", w.proc.Pid)

		if err := w.proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			ctxlog.Error(p.ctx, "worker kill error", "worker", w.id, "pid", w.proc.Pid, "error", err)
		}

		res = <-done
	}

	_ = w.stdout.Close()
	<-w.stderrDone

	switch {
	case res.err != nil:
		return fmt.Errorf("worker %d: %w", w.id, res.err)
	case !killed && !res.state.Success():
		return fmt.Errorf("%w: worker %d: %s", ErrWorkerExited, w.id, res.state)
	default:
		return nil
	}
}
