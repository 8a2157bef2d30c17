// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker turns termination signals into context cancellation.
// The first signal cancels gracefully so in-flight maps can stop and release
// their workers; a second signal calls the supplied force function.
package signalbroker

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/pmap/internal/ctxlog"
)

// ErrInterrupted is the cancellation cause set by Watch.
var ErrInterrupted = errors.New("interrupted by signal")

var termSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// New subscribes to sigs, or to the termination signals when none are given.
// Call the returned stop function to unsubscribe.
func New(ctx context.Context, sigs ...os.Signal) (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 2)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "subscribing to signals", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch, func() { signal.Stop(ch) }
}

// Watch cancels ctx with ErrInterrupted on the first signal and calls force on the second.
// It returns when ctx is done after a force, when sigCh is closed, or after force returns.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelCauseFunc, force func(os.Signal)) {
	interrupted := false

	for {
		select {
		case <-ctx.Done():
			if !interrupted {
				return
			}

			// keep listening so a second signal can still force an exit
			sig, ok := <-sigCh
			if !ok {
				return
			}

			ctxlog.Warn(ctx, "second signal received, forcing exit", "signal", sig.String())

			if force != nil {
				force(sig)
			}

			return

		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if interrupted {
				ctxlog.Warn(ctx, "second signal received, forcing exit", "signal", sig.String())

				if force != nil {
					force(sig)
				}

				return
			}

			interrupted = true

			ctxlog.Warn(ctx, "signal received, cancelling", "signal", sig.String())
			cancel(ErrInterrupted)
		}
	}
}
