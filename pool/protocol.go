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

	"github.com/matt-FFFFFF/pmap/internal/ctxlog"
	"github.com/matt-FFFFFF/pmap/registry"
	"github.com/matt-FFFFFF/pmap/task"
)

// WorkerEnv is set to "1" in the environment of worker processes.
const WorkerEnv = "PMAP_WORKER"

const (
	codeFunction = "function"
	codePanic    = "panic"
	codeUnknown  = "unknown_function"
	codeProtocol = "protocol"
)

// request is sent from the pool to a worker. A header selects the function
// for the batches that follow it.
type request struct {
	Header *header
	Batch  []task.Task
}

type header struct {
	JobID  string
	Func   string
	Kwargs task.Kwargs
}

// reply answers one batch. Completions holds the tasks that finished before any failure.
type reply struct {
	Completions []task.Completion
	Failed      bool
	Position    int
	Code        string
	Message     string
}

// RemoteError is a task failure reported by a worker process.
// Only the message survives the trip; Code says what kind of failure it was.
type RemoteError struct {
	Position int
	Code     string
	Message  string
}

// Error implements the error interface for RemoteError.
func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap maps the failure code back to a sentinel where there is one.
func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case codeUnknown:
		return registry.ErrUnknownFunction
	case codePanic:
		return ErrRemotePanic
	case codeProtocol:
		return ErrProtocol
	default:
		return nil
	}
}

// IsWorker reports whether this process was started as a pool worker.
func IsWorker() bool {
	return os.Getenv(WorkerEnv) == "1"
}

// ServeIfWorker serves the worker protocol and exits when this process is a pool worker.
// Otherwise it returns immediately. Call it at the top of main, and of TestMain in
// tests that use process pools, after registering functions in reg.
func ServeIfWorker(ctx context.Context, reg registry.Registry) {
	if !IsWorker() {
		return
	}

	os.Exit(RunWorker(ctx, reg))
}

// RunWorker serves the worker protocol on stdin and stdout and returns an exit code.
// os.Stdout is pointed at stderr for the duration so stray prints cannot corrupt replies.
func RunWorker(ctx context.Context, reg registry.Registry) int {
	out := os.Stdout
	os.Stdout = os.Stderr

	defer func() { os.Stdout = out }()

	ctx = ctxlog.NewForWriter(ctx, os.Stderr)

	if err := ServeWorker(ctx, os.Stdin, out, reg); err != nil {
		ctxlog.Error(ctx, "worker failed", "error", err)
		return 1
	}

	return 0
}

// ServeWorker reads requests from r and writes replies to w until r reaches EOF.
func ServeWorker(ctx context.Context, r io.Reader, w io.Writer, reg registry.Registry) error {
	dec := gob.NewDecoder(r)
	enc := gob.NewEncoder(w)

	var (
		exec    *task.Wrapper
		current *header
		lookErr error
	)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return errors.Join(ErrProtocol, err)
		}

		if req.Header != nil {
			current = req.Header
			exec = nil

			fn, err := reg.Lookup(current.Func)
			lookErr = err

			if err == nil {
				bound := task.Bind(fn, current.Kwargs)
				exec = &bound
			}

			ctxlog.Debug(ctx, "worker job", "job", current.JobID, "function", current.Func, "error", err)

			continue
		}

		var rep reply

		switch {
		case current == nil:
			rep = failure(req.Batch, codeProtocol, "batch received before header")
		case lookErr != nil:
			rep = failure(req.Batch, codeUnknown, lookErr.Error())
		default:
			rep = runBatch(ctx, *exec, req.Batch)
		}

		if err := enc.Encode(rep); err != nil {
			return errors.Join(ErrProtocol, err)
		}
	}
}

func runBatch(ctx context.Context, exec task.Wrapper, batch []task.Task) reply {
	rep := reply{Completions: make([]task.Completion, 0, len(batch))}

	for _, t := range batch {
		c, err := exec.SafeCall(ctx, t)
		if err != nil {
			code := codeFunction

			var pe *task.PanicError
			if errors.As(err, &pe) {
				code = codePanic
			}

			rep.Failed = true
			rep.Position = t.Position
			rep.Code = code
			rep.Message = err.Error()

			return rep
		}

		rep.Completions = append(rep.Completions, c)
	}

	return rep
}

func failure(batch []task.Task, code, msg string) reply {
	pos := -1
	if len(batch) > 0 {
		pos = batch[0].Position
	}

	return reply{Failed: true, Position: pos, Code: code, Message: fmt.Sprintf("worker: %s", msg)}
}
