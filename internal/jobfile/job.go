// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package jobfile

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/pmap"
)

var (
	// ErrNoJobs is returned for a file without jobs.
	ErrNoJobs = errors.New("no jobs defined")
	// ErrJobNotFound is returned by Find for an unknown job name.
	ErrJobNotFound = errors.New("job not found")
	// ErrInvalidJob is returned by Validate.
	ErrInvalidJob = errors.New("invalid job")
)

// File is the content of a job file.
type File struct {
	Jobs []*Job `yaml:"jobs" json:"jobs"`
}

// Job describes one call to pmap.Map.
type Job struct {
	Name      string         `yaml:"name" json:"name"`
	Function  string         `yaml:"function" json:"function"`
	Label     string         `yaml:"label,omitempty" json:"label,omitempty"`
	Workers   int            `yaml:"workers,omitempty" json:"workers,omitempty"`
	Processes bool           `yaml:"processes,omitempty" json:"processes,omitempty"`
	Fuse      bool           `yaml:"fuse,omitempty" json:"fuse,omitempty"`
	Shortest  bool           `yaml:"shortest,omitempty" json:"shortest,omitempty"`
	Unzip     bool           `yaml:"unzip,omitempty" json:"unzip,omitempty"`
	BatchSize int            `yaml:"batch_size,omitempty" json:"batch_size,omitempty"`
	Disabled  bool           `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Inputs    []Input        `yaml:"inputs" json:"inputs"`
	Kwargs    map[string]any `yaml:"kwargs,omitempty" json:"kwargs,omitempty"`
}

// Input is one sequence, given either as literal values or as a range.
type Input struct {
	Values []any `yaml:"values,omitempty" json:"values,omitempty"`
	// Range is [stop], [start, stop] or [start, stop, step], as in Python's range.
	Range []int `yaml:"range,omitempty" json:"range,omitempty"`
}

// InvalidInputError describes a malformed input of a job.
type InvalidInputError struct {
	Job    string
	Index  int
	Reason string
}

// Error implements the error interface for InvalidInputError.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("job %q input %d: %s", e.Job, e.Index, e.Reason)
}

// Find returns the job called name. An empty name selects the only job of a single job file.
func (f *File) Find(name string) (*Job, error) {
	if len(f.Jobs) == 0 {
		return nil, ErrNoJobs
	}

	if name == "" && len(f.Jobs) == 1 {
		return f.Jobs[0], nil
	}

	for _, j := range f.Jobs {
		if j.Name == name {
			return j, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrJobNotFound, name)
}

// Validate reports every problem with the file's jobs.
func (f *File) Validate() error {
	if len(f.Jobs) == 0 {
		return ErrNoJobs
	}

	var merr *multierror.Error

	seen := make(map[string]struct{}, len(f.Jobs))

	for i, j := range f.Jobs {
		if j.Name == "" {
			merr = multierror.Append(merr, fmt.Errorf("job %d: name is required", i))
		}

		if _, ok := seen[j.Name]; ok && j.Name != "" {
			merr = multierror.Append(merr, fmt.Errorf("job %q: defined more than once", j.Name))
		}

		seen[j.Name] = struct{}{}

		if err := j.Validate(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidJob, err)
	}

	return nil
}

// Validate reports every problem with the job.
func (j *Job) Validate() error {
	var merr *multierror.Error

	if j.Function == "" {
		merr = multierror.Append(merr, fmt.Errorf("job %q: function is required", j.Name))
	}

	if j.Workers < 0 {
		merr = multierror.Append(merr, fmt.Errorf("job %q: workers must not be negative", j.Name))
	}

	if j.BatchSize < 0 {
		merr = multierror.Append(merr, fmt.Errorf("job %q: batch_size must not be negative", j.Name))
	}

	switch {
	case len(j.Inputs) == 0:
		merr = multierror.Append(merr, fmt.Errorf("job %q: at least one input is required", j.Name))
	case len(j.Inputs) > 1 && !j.Fuse && !j.Shortest:
		merr = multierror.Append(merr, fmt.Errorf("job %q: several inputs need fuse", j.Name))
	}

	for i, in := range j.Inputs {
		if _, err := in.Sequence(); err != nil {
			merr = multierror.Append(merr, &InvalidInputError{Job: j.Name, Index: i, Reason: err.Error()})
		}
	}

	if err := merr.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidJob, err)
	}

	return nil
}

// Sequence expands the input.
func (in Input) Sequence() ([]any, error) {
	switch {
	case in.Values != nil && in.Range != nil:
		return nil, errors.New("values and range are mutually exclusive")
	case in.Values != nil:
		return in.Values, nil
	case in.Range != nil:
		return expandRange(in.Range)
	default:
		return nil, errors.New("one of values or range is required")
	}
}

func expandRange(r []int) ([]any, error) {
	start, stop, step := 0, 0, 1

	switch len(r) {
	case 1:
		stop = r[0]
	case 2:
		start, stop = r[0], r[1]
	case 3:
		start, stop, step = r[0], r[1], r[2]
	default:
		return nil, fmt.Errorf("range takes 1 to 3 numbers, got %d", len(r))
	}

	if step == 0 {
		return nil, errors.New("range step must not be zero")
	}

	out := []any{}

	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, i)
	}

	return out, nil
}

// Iterable returns the input of pmap.Map: the single sequence, or one sequence per input when fusing.
func (j *Job) Iterable() ([]any, error) {
	if !j.Fuse && !j.Shortest {
		if len(j.Inputs) != 1 {
			return nil, fmt.Errorf("%w: job %q: want exactly one input without fuse", ErrInvalidJob, j.Name)
		}

		return j.Inputs[0].Sequence()
	}

	out := make([]any, len(j.Inputs))

	for i, in := range j.Inputs {
		seq, err := in.Sequence()
		if err != nil {
			return nil, &InvalidInputError{Job: j.Name, Index: i, Reason: err.Error()}
		}

		out[i] = seq
	}

	return out, nil
}

// ProgressLabel is the label shown on progress output, the job name unless a label is set.
func (j *Job) ProgressLabel() string {
	if j.Label == "" {
		return j.Name
	}

	return j.Label
}

// Options translates the job's settings. Pool selection is left to the caller.
func (j *Job) Options() []pmap.Option {
	opts := []pmap.Option{pmap.WithLabel(j.ProgressLabel()), pmap.WithKwargs(j.Kwargs)}

	if j.BatchSize > 0 {
		opts = append(opts, pmap.WithBatchSize(j.BatchSize))
	}

	if j.Fuse {
		opts = append(opts, pmap.WithFuse())
	}

	if j.Shortest {
		opts = append(opts, pmap.WithShortest())
	}

	if j.Unzip {
		opts = append(opts, pmap.WithUnzip())
	}

	if j.Disabled {
		opts = append(opts, pmap.WithDisabled())
	}

	return opts
}
