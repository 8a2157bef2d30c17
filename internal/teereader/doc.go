// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader wraps a reader and remembers the tail of what passed through it.
// Worker process pools use it on the child's stderr so that a worker that dies
// can be reported with its last words.
package teereader
