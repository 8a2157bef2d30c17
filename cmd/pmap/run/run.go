// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run command, which executes the jobs of a job file.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/matt-FFFFFF/pmap"
	"github.com/matt-FFFFFF/pmap/internal/color"
	"github.com/matt-FFFFFF/pmap/internal/ctxlog"
	"github.com/matt-FFFFFF/pmap/internal/jobfile"
	"github.com/matt-FFFFFF/pmap/internal/report"
	"github.com/matt-FFFFFF/pmap/internal/tui"
	"github.com/matt-FFFFFF/pmap/pool"
	"github.com/matt-FFFFFF/pmap/progress"
	"github.com/matt-FFFFFF/pmap/registry"
	"github.com/urfave/cli/v3"
)

const eventBufferSize = 64

const (
	fileFlag       = "file"
	jobFlag        = "job"
	workersFlag    = "workers"
	processesFlag  = "processes"
	batchSizeFlag  = "batch-size"
	noProgressFlag = "no-progress"
	tuiFlag        = "tui"
	jsonFlag       = "json"
	outFlag        = "out"
	cliExitStr     = ""
)

var (
	// ErrJobFailed is returned when a map returns an error.
	ErrJobFailed = errors.New("job failed")
	// ErrWriteResults is returned when results cannot be written.
	ErrWriteResults = errors.New("failed to write results")
)

// settings are the command line overrides applied to every job.
type settings struct {
	workers    *int
	processes  bool
	batchSize  int
	noProgress bool
	progressW  io.Writer
	stderr     io.Writer // worker process stderr
}

// New returns the run command.
func New() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the jobs of a job file",
		Description: `Run the jobs defined in a YAML or HCL job file and print their results in input order.

Job file URLs use Hashicorp's go-getter syntax, which allows for fetching files from various sources.
See https://github.com/hashicorp/go-getter.

All jobs run one after another unless --job selects one of them.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     fileFlag,
				Aliases:  []string{"f"},
				Usage:    "URL of the job file. Supports Hashicorp's go-getter syntax.",
				Required: true,
				OnlyOnce: true,
			},
			&cli.StringSliceFlag{
				Name:    jobFlag,
				Aliases: []string{"j"},
				Usage:   "Name of a job to run. Specify multiple times to run several; defaults to all jobs.",
			},
			&cli.IntFlag{
				Name:    workersFlag,
				Aliases: []string{"w"},
				Usage:   "Override the number of workers. 0 runs the map on the calling goroutine.",
			},
			&cli.BoolFlag{
				Name:        processesFlag,
				Usage:       "Run workers as separate processes",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.IntFlag{
				Name:  batchSizeFlag,
				Usage: "Override the number of elements handed to a worker at a time",
			},
			&cli.BoolFlag{
				Name:        noProgressFlag,
				Usage:       "Do not display progress",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        tuiFlag,
				Aliases:     []string{"t", "interactive"},
				Usage:       "Run with an interactive Terminal User Interface (TUI) showing progress",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.BoolFlag{
				Name:        jsonFlag,
				Usage:       "Print results as JSON",
				DefaultText: "false",
				OnlyOnce:    true,
			},
			&cli.StringFlag{
				Name:      outFlag,
				Usage:     "Also write the results as JSON to this file",
				TakesFile: true,
				OnlyOnce:  true,
			},
		},
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	root := cmd.Root()

	data, name, err := getURL(ctx, cmd.String(fileFlag))
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	file, err := jobfile.Parse(name, data)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to load job file %s: %s", name, err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	jobs, err := selectJobs(file, cmd.StringSlice(jobFlag))
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	s := settings{
		processes:  cmd.Bool(processesFlag),
		batchSize:  cmd.Int(batchSizeFlag),
		noProgress: cmd.Bool(noProgressFlag),
		progressW:  root.ErrWriter,
		stderr:     root.ErrWriter,
	}

	if cmd.IsSet(workersFlag) {
		w := cmd.Int(workersFlag)
		s.workers = &w
	}

	var (
		results []report.Result
		execErr error
	)

	switch cmd.Bool(tuiFlag) {
	case true:
		logger.Info("Starting interactive TUI mode...")

		// logs would corrupt the display, so they are replayed afterwards
		buf := new(bytes.Buffer)
		tuiCtx := ctxlog.NewForWriter(ctx, buf)

		runner := tui.NewRunner(tuiCtx)
		s.stderr = nil

		execErr = runner.Run(tuiCtx, func(ctx context.Context) error {
			var err error

			results, err = runJobs(ctx, jobs, s, runner.Reporter)

			return err
		})

		buf.WriteTo(root.ErrWriter) //nolint:errcheck
	default:
		results, execErr = runJobs(ctx, jobs, s, nil)
	}

	if err := writeResults(root.Writer, results, cmd.Bool(jsonFlag)); err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if out := cmd.String(outFlag); out != "" {
		if err := writeOutFile(out, results); err != nil {
			logger.Error(err.Error())
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Results written to %s", out))
	}

	if execErr != nil {
		logger.Error(execErr.Error())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

// selectJobs returns the named jobs in the order given, or every job when names is empty.
func selectJobs(f *jobfile.File, names []string) ([]*jobfile.Job, error) {
	if len(names) == 0 {
		return f.Jobs, nil
	}

	jobs := make([]*jobfile.Job, 0, len(names))

	for _, n := range names {
		j, err := f.Find(n)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		jobs = append(jobs, j)
	}

	return jobs, nil
}

// runJobs runs the jobs one after another and stops at the first failure.
// Results of the jobs that succeeded are returned alongside the error.
// newReporter, when set, supplies the progress reporter of each map.
func runJobs(ctx context.Context, jobs []*jobfile.Job, s settings, newReporter func() progress.Reporter) ([]report.Result, error) {
	results := make([]report.Result, 0, len(jobs))

	for _, j := range jobs {
		fn, err := registry.Lookup(j.Function)
		if err != nil {
			return results, fmt.Errorf("%w: %s: %w", ErrJobFailed, j.Name, err)
		}

		iterable, err := j.Iterable()
		if err != nil {
			return results, fmt.Errorf("%w: %s: %w", ErrJobFailed, j.Name, err)
		}

		workers := j.Workers
		if s.workers != nil {
			workers = *s.workers
		}

		opts := j.Options()

		if s.batchSize > 0 {
			opts = append(opts, pmap.WithBatchSize(s.batchSize))
		}

		if s.processes || j.Processes {
			opts = append(opts, pmap.WithProcesses(j.Function, pool.ProcessConfig{Stderr: s.stderr}))
		} else {
			opts = append(opts, pmap.WithFuncName(j.Function))
		}

		if r := jobReporter(ctx, j, s, newReporter); r != nil {
			opts = append(opts, pmap.WithReporter(r))
		} else {
			opts = append(opts, pmap.WithDisabled())
		}

		ctxlog.Debug(ctx, "running job", "job", j.Name, "function", j.Function, "workers", workers)

		out, err := pmap.Map(ctx, fn, iterable, workers, opts...)
		if err != nil {
			return results, fmt.Errorf("%w: %s: %w", ErrJobFailed, j.Name, err)
		}

		results = append(results, report.Result{Job: j.Name, Function: j.Function, Output: *out})
	}

	return results, nil
}

// jobReporter builds the progress reporter of one job, or nil when the job reports nothing.
// With debug logging on, lifecycle events are also logged through a channel reporter.
func jobReporter(ctx context.Context, j *jobfile.Job, s settings, newReporter func() progress.Reporter) progress.Reporter {
	if j.Disabled {
		return nil
	}

	var display progress.Reporter

	switch {
	case s.noProgress:
	case newReporter != nil:
		display = newReporter()
	default:
		w := s.progressW
		if w == nil {
			w = os.Stderr
		}

		display = progress.NewBar(w, progress.WithBarLabel(j.ProgressLabel()))
	}

	if !ctxlog.Logger(ctx).Enabled(ctx, slog.LevelDebug) {
		return display
	}

	events := progress.NewChannelReporter(ctx, eventBufferSize)
	events.Listen(progress.ListenerFunc(func(e progress.Event) {
		if e.Type == progress.EventProgress {
			return
		}

		ctxlog.Debug(ctx, "map event",
			"label", e.Label, "event", e.Type.String(), "completed", e.Data.Completed, "total", e.Data.Total)
	}))

	return progress.NewMulti(display, events)
}

func writeResults(w io.Writer, results []report.Result, asJSON bool) error {
	colour := w == os.Stdout && color.Capable(os.Stdout)

	for _, r := range results {
		var err error

		if asJSON {
			err = report.WriteJSON(w, r, colour)
		} else {
			err = report.WriteText(w, r)
		}

		if err != nil {
			return errors.Join(ErrWriteResults, err)
		}
	}

	return nil
}

func writeOutFile(name string, results []report.Result) (err error) {
	f, err := FsFactory().Create(name)
	if err != nil {
		return errors.Join(ErrWriteResults, err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, ErrWriteResults, cerr)
		}
	}()

	for _, r := range results {
		if err := report.WriteJSON(f, r, false); err != nil {
			return errors.Join(ErrWriteResults, err)
		}
	}

	return nil
}
