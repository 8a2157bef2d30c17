// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package task holds the unit of work that flows between the map engine and
// the worker pools, and the indexing wrapper that executes it.
//
// A Task pairs a zero-based position with a payload. Pools may complete tasks
// in any order; the position carried back in the Completion is the only key
// the engine uses to put the output back in input order.
package task
