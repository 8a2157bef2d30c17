// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default logger writes human readable lines to stderr, leaving stdout for
// results and for the worker process protocol. The level is read from the
// environment: <EXECUTABLE>_LOG_LEVEL first, then PMAP_LOG_LEVEL.
// Accepted values are DEBUG, INFO, WARN and ERROR; anything else means WARN.
package ctxlog
