// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color decides whether ANSI colours should be used and applies them.
//
// NO_COLOR always wins, then FORCE_COLOR, then whether stderr is a terminal.
// Progress and log output go to stderr, so that is the stream that is probed.
package color
