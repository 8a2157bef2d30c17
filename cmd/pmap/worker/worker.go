// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package worker is the hidden command run by process pool workers.
package worker

import (
	"context"

	"github.com/matt-FFFFFF/pmap/pool"
	"github.com/matt-FFFFFF/pmap/registry"
	"github.com/urfave/cli/v3"
)

// New returns the worker command. It serves the pool protocol on stdin and stdout.
func New() *cli.Command {
	return &cli.Command{
		Name:   pool.DefaultWorkerArg,
		Usage:  "serve map batches on stdin and stdout (used internally by --processes)",
		Hidden: true,
		Action: func(ctx context.Context, _ *cli.Command) error {
			if code := pool.RunWorker(ctx, registry.Default); code != 0 {
				return cli.Exit("", code)
			}

			return nil
		},
	}
}
