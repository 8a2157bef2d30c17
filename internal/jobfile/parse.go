// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var (
	// ErrUnknownFormat is returned for a file extension that is neither YAML nor HCL.
	ErrUnknownFormat = errors.New("unknown job file format")
	// ErrParse is returned when a job file cannot be decoded.
	ErrParse = errors.New("failed to parse job file")
	// ErrRead is returned when a job file cannot be read.
	ErrRead = errors.New("failed to read job file")
)

// Load reads and parses the job file at path from the filesystem returned by FsFactory.
func Load(path string) (*File, error) {
	data, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}

	return Parse(path, data)
}

// Parse decodes data, choosing the format from the extension of filename.
// The result is validated.
func Parse(filename string, data []byte) (*File, error) {
	var (
		f   *File
		err error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".json":
		f, err = parseYAML(data)
	case ".hcl":
		f, err = parseHCL(filename, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(filename))
	}

	if err != nil {
		return nil, err
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

func parseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	for _, j := range f.Jobs {
		if j == nil {
			return nil, fmt.Errorf("%w: empty job entry", ErrParse)
		}

		normalizeJob(j)
	}

	return &f, nil
}

type hclFile struct {
	Jobs []hclJob `hcl:"job,block"`
}

type hclJob struct {
	Name      string     `hcl:"name,label"`
	Function  string     `hcl:"function"`
	Label     string     `hcl:"label,optional"`
	Workers   int        `hcl:"workers,optional"`
	Processes bool       `hcl:"processes,optional"`
	Fuse      bool       `hcl:"fuse,optional"`
	Shortest  bool       `hcl:"shortest,optional"`
	Unzip     bool       `hcl:"unzip,optional"`
	BatchSize int        `hcl:"batch_size,optional"`
	Disabled  bool       `hcl:"disabled,optional"`
	Kwargs    cty.Value  `hcl:"kwargs,optional"`
	Inputs    []hclInput `hcl:"input,block"`
}

type hclInput struct {
	Values cty.Value `hcl:"values,optional"`
	Range  []int     `hcl:"range,optional"`
}

func parseHCL(filename string, data []byte) (*File, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrParse, diags)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, &hcl.EvalContext{}, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %w", ErrParse, diags)
	}

	f := &File{Jobs: make([]*Job, 0, len(raw.Jobs))}

	for _, rj := range raw.Jobs {
		j := &Job{
			Name:      rj.Name,
			Function:  rj.Function,
			Label:     rj.Label,
			Workers:   rj.Workers,
			Processes: rj.Processes,
			Fuse:      rj.Fuse,
			Shortest:  rj.Shortest,
			Unzip:     rj.Unzip,
			BatchSize: rj.BatchSize,
			Disabled:  rj.Disabled,
			Inputs:    make([]Input, 0, len(rj.Inputs)),
		}

		kw, err := ctyToGo(rj.Kwargs)
		if err != nil {
			return nil, fmt.Errorf("%w: job %q kwargs: %w", ErrParse, rj.Name, err)
		}

		if kw != nil {
			m, ok := kw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: job %q: kwargs must be an object", ErrParse, rj.Name)
			}

			j.Kwargs = m
		}

		for i, ri := range rj.Inputs {
			in := Input{Range: ri.Range}

			values, err := ctyToGo(ri.Values)
			if err != nil {
				return nil, fmt.Errorf("%w: job %q input %d: %w", ErrParse, rj.Name, i, err)
			}

			if values != nil {
				seq, ok := values.([]any)
				if !ok {
					return nil, fmt.Errorf("%w: job %q input %d: values must be a list", ErrParse, rj.Name, i)
				}

				in.Values = seq
			}

			j.Inputs = append(j.Inputs, in)
		}

		f.Jobs = append(f.Jobs, j)
	}

	return f, nil
}

// ctyToGo converts through JSON so that objects become maps and tuples become slices.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}

	b, err := ctyjson.SimpleJSONValue{Value: v}.MarshalJSON()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return normalize(out), nil
}

func normalizeJob(j *Job) {
	for i := range j.Inputs {
		if j.Inputs[i].Values != nil {
			j.Inputs[i].Values = normalize(j.Inputs[i].Values).([]any)
		}
	}

	if j.Kwargs != nil {
		j.Kwargs = normalize(j.Kwargs).(map[string]any)
	}
}

// normalize turns every number into an int when it is integral and fits, otherwise a float64.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return normalizeInt(i)
		}

		if f, err := x.Float64(); err == nil {
			return f
		}

		return x.String()
	case int:
		return x
	case int64:
		return normalizeInt(x)
	case uint64:
		if x <= math.MaxInt64 {
			return normalizeInt(int64(x))
		}

		return float64(x)
	case float32:
		return float64(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = normalize(e)
		}

		return out
	default:
		return v
	}
}

func normalizeInt(i int64) any {
	if i >= math.MinInt && i <= math.MaxInt {
		return int(i)
	}

	return float64(i)
}
