// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pmap

import (
	"io"
	"os"

	"github.com/matt-FFFFFF/pmap/pool"
	"github.com/matt-FFFFFF/pmap/progress"
	"github.com/matt-FFFFFF/pmap/task"
)

// DefaultBatchSize is the number of tasks handed to a worker at a time.
const DefaultBatchSize = 1

type config struct {
	fuse      bool
	shortest  bool
	unzip     bool
	batchSize int
	label     string
	disabled  bool
	kwargs    task.Kwargs
	reporter  progress.Reporter
	writer    io.Writer
	factory   pool.Factory
	funcName  string
}

// Option configures Map.
type Option func(*config)

func newConfig(opts ...Option) *config {
	c := &config{
		batchSize: DefaultBatchSize,
		kwargs:    task.Kwargs{},
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// WithFuse treats every element of the input as a sequence; the sequences are
// zipped element-wise and each group is spread into the function's arguments.
func WithFuse() Option {
	return func(c *config) {
		c.fuse = true
	}
}

// WithShortest lets fused sequences differ in length; the map stops at the shortest.
// It implies WithFuse.
func WithShortest() Option {
	return func(c *config) {
		c.fuse = true
		c.shortest = true
	}
}

// WithUnzip transposes the Tuple results into Output.Columns.
func WithUnzip() Option {
	return func(c *config) {
		c.unzip = true
	}
}

// WithBatchSize sets how many tasks a worker receives at a time.
func WithBatchSize(n int) Option {
	return func(c *config) {
		c.batchSize = n
	}
}

// WithLabel sets the progress label.
func WithLabel(label string) Option {
	return func(c *config) {
		c.label = label
	}
}

// WithDisabled suppresses progress reporting. A reporter given with WithReporter
// is then neither used nor closed.
func WithDisabled() Option {
	return func(c *config) {
		c.disabled = true
	}
}

// WithKwargs adds fixed keyword arguments passed to every call.
func WithKwargs(kw task.Kwargs) Option {
	return func(c *config) {
		for k, v := range kw {
			c.kwargs[k] = v
		}
	}
}

// WithKwarg adds a single fixed keyword argument.
func WithKwarg(name string, value any) Option {
	return func(c *config) {
		c.kwargs[name] = value
	}
}

// WithReporter sends progress to r instead of the terminal bar. Map closes r before returning.
func WithReporter(r progress.Reporter) Option {
	return func(c *config) {
		c.reporter = r
	}
}

// WithProgressWriter draws the default bar on w instead of stderr.
func WithProgressWriter(w io.Writer) Option {
	return func(c *config) {
		c.writer = w
	}
}

// WithPool sets the factory used to acquire a pool when workers > 0.
func WithPool(f pool.Factory) Option {
	return func(c *config) {
		c.factory = f
	}
}

// WithFuncName sets the registry name sent to pools that run functions by name.
func WithFuncName(name string) Option {
	return func(c *config) {
		c.funcName = name
	}
}

// WithProcesses runs the map on worker processes which resolve name in their registry.
// See pool.ServeIfWorker.
func WithProcesses(name string, cfg pool.ProcessConfig) Option {
	return func(c *config) {
		c.factory = pool.Processes(cfg)
		c.funcName = name
	}
}

func (c *config) newReporter() progress.Reporter {
	switch {
	case c.disabled:
		return progress.NewNullReporter()
	case c.reporter != nil:
		return c.reporter
	}

	w := c.writer
	if w == nil {
		w = os.Stderr
	}

	return progress.NewBar(w, progress.WithBarLabel(c.label))
}

func (c *config) poolFactory() pool.Factory {
	if c.factory == nil {
		return pool.Goroutines()
	}

	return c.factory
}
