// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a full screen view of running map jobs for the pmap command.
// Each job is shown on one line with its status, a progress bar and the number of
// completed elements. Events arrive through the progress.Reporter handed out by the Runner.
package tui
