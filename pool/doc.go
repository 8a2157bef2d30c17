// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pool executes position tagged tasks on a fixed set of workers.
//
// Two implementations are provided. GoroutinePool runs the bound function on
// worker goroutines in this process. ProcessPool starts worker processes from
// an executable that calls ServeIfWorker early in main, and ships tasks to them
// as gob encoded batches over stdin and stdout. Completions come back in
// arbitrary order; callers restore order from the position tag.
package pool
