// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Code is an SGR parameter.
type Code int

const (
	// NoColor disables colour output when set to any value.
	NoColor = "NO_COLOR"
	// ForceColor enables colour output when set, unless NoColor is also set.
	ForceColor = "FORCE_COLOR"

	escape = "\033["
	reset  = "\033[0m"
)

// Attributes.
const (
	Reset Code = iota
	Bold
	Faint
)

// Foreground colours.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// Hi-intensity foreground colours.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

var enabled = Capable(os.Stderr)

// Enabled reports whether stderr should receive colour output.
func Enabled() bool {
	return enabled
}

// Capable reports whether f should receive colour output, honouring NO_COLOR and FORCE_COLOR.
func Capable(f *os.File) bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// Colorize applies codes to s if colour output is enabled.
func Colorize(s string, codes ...Code) string {
	if !enabled {
		return s
	}

	return Paint(s, codes...)
}

// Paint applies codes to s unconditionally and resets afterwards.
func Paint(s string, codes ...Code) string {
	if len(codes) == 0 {
		return s
	}

	var sb strings.Builder

	sb.Grow(len(s) + len(escape) + len(reset) + 4*len(codes))
	sb.WriteString(escape)

	for i, c := range codes {
		if i > 0 {
			sb.WriteByte(';')
		}

		sb.WriteString(strconv.Itoa(int(c)))
	}

	sb.WriteByte('m')
	sb.WriteString(s)
	sb.WriteString(reset)

	return sb.String()
}
