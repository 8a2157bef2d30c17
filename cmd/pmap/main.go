// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the pmap command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/pmap"
	"github.com/matt-FFFFFF/pmap/cmd/pmap/functions"
	"github.com/matt-FFFFFF/pmap/cmd/pmap/run"
	"github.com/matt-FFFFFF/pmap/cmd/pmap/worker"
	"github.com/matt-FFFFFF/pmap/internal/builtin"
	"github.com/matt-FFFFFF/pmap/internal/ctxlog"
	"github.com/matt-FFFFFF/pmap/internal/signalbroker"
	"github.com/matt-FFFFFF/pmap/pool"
	"github.com/matt-FFFFFF/pmap/registry"
	"github.com/urfave/cli/v3"
)

// exitInterrupted is the conventional exit code after SIGINT.
const exitInterrupted = 130

func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			run.New(),
			functions.New(),
			worker.New(),
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "pmap",
		Description: `pmap applies a registered function to every element of one or more input
sequences, in parallel, and prints the outputs in input order. Jobs are described
in YAML or HCL files; progress is shown as a bar or in an interactive view.`,
		Usage:     "pmap run -f jobs.yaml",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

func main() {
	ctx, cancel := context.WithCancelCause(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	defer cancel(nil)

	if err := builtin.Register(registry.Default); err != nil {
		ctxlog.Error(ctx, "failed to register functions", "error", err)
		os.Exit(1)
	}

	// worker processes never get as far as the CLI
	pool.ServeIfWorker(ctx, registry.Default)

	sigCh, stop := signalbroker.New(ctx)
	defer stop()

	go signalbroker.Watch(ctx, sigCh, cancel, func(os.Signal) {
		os.Exit(exitInterrupted)
	})

	rootCmd := newRootCmd()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", pmap.Version, pmap.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	if errors.Is(context.Cause(ctx), signalbroker.ErrInterrupted) {
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", context.Cause(ctx))
		os.Exit(exitInterrupted)
	}

	if err != nil {
		ctxlog.Error(ctx, "command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Debug(ctx, "command completed successfully")
}
