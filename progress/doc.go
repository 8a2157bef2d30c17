// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries progress events from a running map to whoever renders them.
//
// A map reports one EventStarted carrying the total, one EventProgress per
// completed item, then EventCompleted or EventFailed, and finally calls Close.
// Reporters must not block the caller: they either act immediately or drop.
package progress
