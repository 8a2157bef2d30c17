// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"testing"

	"github.com/matt-FFFFFF/pmap"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	values = Result{
		Job:      "tens",
		Function: "times10",
		Output:   pmap.Output{Values: []any{0, 10, 20}},
	}
	columns = Result{
		Job:      "pairs",
		Function: "pair",
		Output:   pmap.Output{Columns: [][]any{{1, 2}, {10, 20}}},
	}
	mixed = Result{
		Job:      "mixed",
		Function: "method",
		Output:   pmap.Output{Values: []any{pmap.Tuple{1, 10}, "x", nil, 2.5}},
	}
)

func TestWriteText(t *testing.T) {
	g := goldie.New(t)

	tcs := map[string]Result{
		"text_values":  values,
		"text_columns": columns,
		"text_mixed":   mixed,
	}

	for name, r := range tcs {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteText(&buf, r))
			g.Assert(t, name, buf.Bytes())
		})
	}
}

func TestWriteJSON(t *testing.T) {
	g := goldie.New(t)

	tcs := map[string]Result{
		"json_values":  values,
		"json_columns": columns,
	}

	for name, r := range tcs {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteJSON(&buf, r, false))
			g.Assert(t, name, buf.Bytes())
		})
	}
}

func TestWriteJSONColour(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, mixed, true))

	out := buf.String()
	assert.Contains(t, out, `"job": `)
	assert.Contains(t, out, "mixed")
	assert.Contains(t, out, "2.5")
}

func TestLen(t *testing.T) {
	assert.Equal(t, 3, values.Len())
	assert.Equal(t, 2, columns.Len())
	assert.Equal(t, 0, Result{Output: pmap.Output{Columns: [][]any{}}}.Len())
	assert.Equal(t, 0, Result{}.Len())
}
