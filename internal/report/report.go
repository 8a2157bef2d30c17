// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report renders the output of a map job for the command line.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/pmap"
)

// ErrEncode is returned when a result cannot be represented as JSON.
var ErrEncode = errors.New("failed to encode result")

// Result is the outcome of one job.
type Result struct {
	Job      string
	Function string
	Output   pmap.Output
}

// Len is the number of input elements the result covers.
func (r Result) Len() int {
	if r.Output.Columns != nil {
		if len(r.Output.Columns) == 0 {
			return 0
		}

		return len(r.Output.Columns[0])
	}

	return len(r.Output.Values)
}

// WriteText writes a plain listing of the result, one line per output or column.
func WriteText(w io.Writer, r Result) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "job: %s\n", r.Job)
	fmt.Fprintf(&sb, "function: %s\n", r.Function)
	fmt.Fprintf(&sb, "results: %d\n", r.Len())

	if r.Output.Columns != nil {
		fmt.Fprintf(&sb, "columns: %d\n", len(r.Output.Columns))

		for i, col := range r.Output.Columns {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, formatValue(col))
		}
	} else {
		for i, v := range r.Output.Values {
			fmt.Fprintf(&sb, "  [%d] %s\n", i, formatValue(v))
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err //nolint:wrapcheck
}

// WriteJSON writes the result as indented JSON, colourised with colorjson when colour is set.
func WriteJSON(w io.Writer, r Result, colour bool) error {
	doc, err := document(r)
	if err != nil {
		return err
	}

	var b []byte

	if colour {
		f := colorjson.NewFormatter()
		f.Indent = 2
		b, err = f.Marshal(doc)
	} else {
		b, err = json.MarshalIndent(doc, "", "  ")
	}

	if err != nil {
		return errors.Join(ErrEncode, err)
	}

	_, err = w.Write(append(b, '\n'))

	return err //nolint:wrapcheck
}

// document round-trips the result through encoding/json so colorjson only sees the types it renders.
func document(r Result) (map[string]any, error) {
	m := map[string]any{
		"job":      r.Job,
		"function": r.Function,
		"count":    r.Len(),
	}

	if r.Output.Columns != nil {
		m["columns"] = r.Output.Columns
	} else {
		m["values"] = r.Output.Values
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, errors.Join(ErrEncode, err)
	}

	return out, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}

		return "[" + strings.Join(parts, " ") + "]"
	case pmap.Tuple:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}

		return "(" + strings.Join(parts, ", ") + ")"
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}
