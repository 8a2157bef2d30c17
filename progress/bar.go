// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/matt-FFFFFF/pmap/internal/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	defaultBarInterval = 100 * time.Millisecond
	defaultLineWidth   = 80
	minBarWidth        = 10
)

// Bar renders a single line progress bar to a writer, redrawing in place with a carriage return.
// Redraws are throttled; the final state is always drawn by Close.
type Bar struct {
	mu        sync.Mutex
	w         io.Writer
	label     string
	model     bprogress.Model
	printer   *message.Printer
	lineWidth int
	interval  time.Duration
	now       func() time.Time

	total     int
	completed int
	failed    bool
	started   bool
	lastDraw  time.Time
	closed    bool
}

// BarOption configures a Bar.
type BarOption func(*Bar)

// WithBarLabel sets the text printed before the bar.
func WithBarLabel(label string) BarOption {
	return func(b *Bar) {
		b.label = label
	}
}

// WithBarWidth fixes the line width instead of probing the terminal.
func WithBarWidth(width int) BarOption {
	return func(b *Bar) {
		b.lineWidth = width
	}
}

// WithBarInterval sets the minimum time between redraws. Zero redraws on every event.
func WithBarInterval(d time.Duration) BarOption {
	return func(b *Bar) {
		b.interval = d
	}
}

// NewBar creates a Bar writing to w. Colours are used only when w is a colour capable terminal.
func NewBar(w io.Writer, opts ...BarOption) *Bar {
	b := &Bar{
		w:         w,
		printer:   message.NewPrinter(language.English),
		lineWidth: defaultLineWidth,
		interval:  defaultBarInterval,
		now:       time.Now,
	}

	profile := termenv.Ascii

	if f, ok := w.(*os.File); ok {
		if color.Capable(f) {
			profile = termenv.ANSI256
		}

		if term.IsTerminal(int(f.Fd())) {
			if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
				b.lineWidth = width
			}
		}
	}

	for _, o := range opts {
		o(b)
	}

	b.model = bprogress.New(
		bprogress.WithDefaultGradient(),
		bprogress.WithoutPercentage(),
		bprogress.WithColorProfile(profile),
	)

	return b
}

// Report implements Reporter.
func (b *Bar) Report(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	if event.Label != "" && b.label == "" {
		b.label = event.Label
	}

	switch event.Type {
	case EventStarted:
		b.started = true
		b.total = event.Data.Total
		b.draw(true)
	case EventProgress:
		b.completed = max(b.completed, event.Data.Completed)
		if event.Data.Total > 0 {
			b.total = event.Data.Total
		}

		b.draw(false)
	case EventCompleted:
		b.completed = b.total
	case EventFailed:
		b.failed = true
	}
}

// Close draws the final state and ends the line. Closing a bar that never started prints nothing.
func (b *Bar) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	if !b.started {
		return
	}

	b.draw(true)
	_, _ = io.WriteString(b.w, "\n")
}

// draw must be called with the lock held.
func (b *Bar) draw(force bool) {
	now := b.now()
	if !force && b.interval > 0 && now.Sub(b.lastDraw) < b.interval {
		return
	}

	b.lastDraw = now
	_, _ = io.WriteString(b.w, "\r"+b.line())
}

func (b *Bar) line() string {
	counts := b.printer.Sprintf("%d/%d", b.completed, b.total)
	if b.failed {
		counts += " failed"
	}

	prefix := ""
	if b.label != "" {
		prefix = b.label + ": "
	}

	width := b.lineWidth - len([]rune(prefix)) - len(counts) - 1
	b.model.Width = max(width, minBarWidth)

	percent := 1.0
	if b.total > 0 {
		percent = float64(b.completed) / float64(b.total)
	}

	var sb strings.Builder

	sb.WriteString(prefix)
	sb.WriteString(b.model.ViewAs(percent))
	sb.WriteString(" ")
	sb.WriteString(counts)

	return sb.String()
}
