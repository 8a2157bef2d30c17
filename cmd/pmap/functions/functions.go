// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package functions lists the functions a job can name.
package functions

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/pmap/internal/builtin"
	"github.com/matt-FFFFFF/pmap/registry"
	"github.com/urfave/cli/v3"
)

// New returns the functions command.
func New() *cli.Command {
	return &cli.Command{
		Name:    "functions",
		Aliases: []string{"fn"},
		Usage:   "List the functions that jobs can use",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return List(cmd.Root().Writer, registry.Default)
		},
	}
}

// List writes one line per registered function with its description, sorted by name.
func List(w io.Writer, reg registry.Registry) error {
	names := reg.Names()

	width := 0
	for _, n := range names {
		width = max(width, lipgloss.Width(n))
	}

	name := lipgloss.NewStyle().Bold(true).Width(width + 2) //nolint:mnd

	for _, n := range names {
		desc := builtin.Descriptions[n]
		if desc == "" {
			desc = "-"
		}

		if _, err := fmt.Fprintln(w, name.Render(n)+desc); err != nil {
			return err //nolint:wrapcheck
		}
	}

	return nil
}
