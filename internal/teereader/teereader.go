// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"io"
	"strings"
	"sync"
)

// DefaultKeep is the number of complete lines retained when New is given keep <= 0.
const DefaultKeep = 20

// TailReader passes reads through and keeps the last complete lines in a bounded ring.
// Its accessors are safe to call while another goroutine is reading.
type TailReader struct {
	r       io.Reader
	keep    int
	lines   []string
	partial strings.Builder
	mu      sync.RWMutex
}

// New wraps r, retaining at most keep complete lines.
func New(r io.Reader, keep int) *TailReader {
	if keep <= 0 {
		keep = DefaultKeep
	}

	return &TailReader{
		r:    r,
		keep: keep,
	}
}

// Read implements io.Reader.
func (t *TailReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.mu.Lock()
		t.consume(string(p[:n]))
		t.mu.Unlock()
	}

	return n, err //nolint:wrapcheck
}

// consume must be called with the write lock held.
func (t *TailReader) consume(data string) {
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			t.partial.WriteString(data)

			return
		}

		t.partial.WriteString(strings.TrimSuffix(data[:i], "\r"))
		t.push(t.partial.String())
		t.partial.Reset()

		data = data[i+1:]
	}
}

func (t *TailReader) push(line string) {
	if len(t.lines) == t.keep {
		copy(t.lines, t.lines[1:])
		t.lines = t.lines[:t.keep-1]
	}

	t.lines = append(t.lines, line)
}

// LastLine returns the most recent complete line, truncated to maxLength
// runes with a trailing "..." when maxLength > 3.
func (t *TailReader) LastLine(maxLength int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.lines) == 0 {
		return ""
	}

	return truncate(t.lines[len(t.lines)-1], maxLength)
}

// Lines returns a copy of the retained complete lines, oldest first.
func (t *TailReader) Lines() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, len(t.lines))
	copy(out, t.lines)

	return out
}

// Partial returns data read after the last newline.
func (t *TailReader) Partial() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.partial.String()
}

// Tail returns the retained lines followed by any partial line, joined by newlines.
func (t *TailReader) Tail() string {
	lines := t.Lines()
	if p := t.Partial(); p != "" {
		lines = append(lines, p)
	}

	return strings.Join(lines, "\n")
}

func truncate(s string, maxLength int) string {
	if maxLength <= 3 {
		return s
	}

	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}

	return string(r[:maxLength-3]) + "..."
}
