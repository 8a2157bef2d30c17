// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/pmap/internal/ctxlog"
	"github.com/matt-FFFFFF/pmap/internal/jobfile"
	"github.com/matt-FFFFFF/pmap/progress"
	"github.com/prashantv/gostub"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// runCLI runs the run command under a root command writing to buffers.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	root := &cli.Command{
		Name:           "pmap",
		Commands:       []*cli.Command{New()},
		Writer:         &out,
		ErrWriter:      &errOut,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}

	err := root.Run(context.Background(), append([]string{"pmap", "run"}, args...))

	return out.String(), errOut.String(), err
}

func Test_getURL(t *testing.T) {
	t.Parallel()

	want, err := os.ReadFile("testdata/jobs.yaml")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		url      string
		wantErr  error
		wantName string
	}{
		{
			name:    "empty url returns error",
			url:     "",
			wantErr: ErrGetJobFile,
		},
		{
			name:    "missing local file",
			url:     "./testdata/missing.yaml",
			wantErr: ErrGetJobFile,
		},
		{
			name:     "local file",
			url:      "./testdata/jobs.yaml",
			wantName: "jobs.yaml",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			data, name, err := getURL(context.Background(), tc.url)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, data)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantName, name)
			assert.Equal(t, want, data)
		})
	}
}

func Test_splitFileNameFromGetterURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		url      string
		wantURL  string
		wantFile string
	}{
		{
			url:      "git::https://github.com/org/repo//jobs/tens.yaml?ref=v1",
			wantURL:  "git::https://github.com/org/repo//jobs?ref=v1",
			wantFile: "tens.yaml",
		},
		{
			url:      "git::https://github.com/org/repo//tens.yaml",
			wantURL:  "git::https://github.com/org/repo",
			wantFile: "tens.yaml",
		},
		{
			url: "https://example.com/jobs.yaml",
		},
		{
			url: "git::https://github.com/org/repo//",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			t.Parallel()

			gotURL, gotFile := splitFileNameFromGetterURL(tc.url)
			assert.Equal(t, tc.wantURL, gotURL)
			assert.Equal(t, tc.wantFile, gotFile)
		})
	}
}

func TestRunAllJobs(t *testing.T) {
	out, _, err := runCLI(t, "-f", "testdata/jobs.yaml", "--no-progress")
	require.NoError(t, err)

	goldie.New(t).Assert(t, "run_all", []byte(out))
}

func TestRunSelectedJobWithOverrides(t *testing.T) {
	out, _, err := runCLI(t, "-f", "testdata/jobs.hcl", "-j", "affine", "--workers", "0", "--no-progress", "--json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "affine", doc["job"])
	assert.Equal(t, []any{3.0, 5.0, 7.0}, doc["values"])
}

func TestRunDrawsProgress(t *testing.T) {
	_, errOut, err := runCLI(t, "-f", "testdata/jobs.yaml", "-j", "tens")
	require.NoError(t, err)
	assert.Contains(t, errOut, "tens")
	assert.Contains(t, errOut, "3/3")
}

func TestRunWritesOutFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "results.json")

	_, _, err := runCLI(t, "-f", "testdata/jobs.yaml", "-j", "tens", "--no-progress", "--out", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"job": "tens"`)
}

var errDiskFull = errors.New("disk full")

// failingCloseFs creates files whose Close fails.
type failingCloseFs struct {
	afero.Fs
}

type failingCloseFile struct {
	afero.File
}

func (f failingCloseFs) Create(name string) (afero.File, error) {
	file, err := f.Fs.Create(name)
	if err != nil {
		return nil, err
	}

	return failingCloseFile{File: file}, nil
}

func (f failingCloseFile) Close() error {
	f.File.Close() //nolint:errcheck
	return errDiskFull
}

func stubOutFs(t *testing.T, fs afero.Fs) {
	t.Helper()

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	t.Cleanup(stubs.Reset)
}

func TestRunWritesOutFileThroughFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	stubOutFs(t, fs)

	_, _, err := runCLI(t, "-f", "testdata/jobs.yaml", "-j", "tens", "--no-progress", "--out", "/results.json")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/results.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"job": "tens"`)
}

func TestWriteOutFileCloseError(t *testing.T) {
	stubOutFs(t, failingCloseFs{Fs: afero.NewMemMapFs()})

	err := writeOutFile("/results.json", nil)
	require.ErrorIs(t, err, ErrWriteResults)
	require.ErrorIs(t, err, errDiskFull)
}

func TestRunReportsOutFileCloseError(t *testing.T) {
	stubOutFs(t, failingCloseFs{Fs: afero.NewMemMapFs()})

	_, _, err := runCLI(t, "-f", "testdata/jobs.yaml", "-j", "tens", "--no-progress", "--out", "/results.json")
	require.Error(t, err)

	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
}

func TestRunUnknownJob(t *testing.T) {
	_, _, err := runCLI(t, "-f", "testdata/jobs.yaml", "-j", "nope", "--no-progress")
	require.Error(t, err)

	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
}

func TestRunStopsAtFailingJob(t *testing.T) {
	out, _, err := runCLI(t, "-f", "testdata/broken.yaml", "--no-progress")
	require.Error(t, err)
	assert.Contains(t, out, "job: tens")
	assert.NotContains(t, out, "job: missing")
}

func TestSelectJobs(t *testing.T) {
	f := &jobfile.File{Jobs: []*jobfile.Job{{Name: "a"}, {Name: "b"}}}

	jobs, err := selectJobs(f, nil)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = selectJobs(f, []string{"b", "a"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "b", jobs[0].Name)

	_, err = selectJobs(f, []string{"c"})
	require.ErrorIs(t, err, jobfile.ErrJobNotFound)
}

func TestRunJobsLogsEventsAtDebug(t *testing.T) {
	var logs bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.New(context.Background(), logger)

	f, err := jobfile.Load("testdata/jobs.yaml")
	require.NoError(t, err)

	j, err := f.Find("tens")
	require.NoError(t, err)

	results, err := runJobs(ctx, []*jobfile.Job{j}, settings{noProgress: true}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Contains(t, logs.String(), "map event")
	assert.Contains(t, logs.String(), "event=started")
	assert.Contains(t, logs.String(), "event=completed")
	assert.NotContains(t, logs.String(), "event=progress")
}

func TestJobReporter(t *testing.T) {
	var logs bytes.Buffer

	debug := ctxlog.New(context.Background(),
		slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	info := ctxlog.New(context.Background(),
		slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo})))

	t.Run("no progress at info", func(t *testing.T) {
		assert.Nil(t, jobReporter(info, &jobfile.Job{Name: "a"}, settings{noProgress: true}, nil))
	})

	t.Run("disabled job", func(t *testing.T) {
		assert.Nil(t, jobReporter(debug, &jobfile.Job{Name: "a", Disabled: true}, settings{}, nil))
	})

	t.Run("bar at info", func(t *testing.T) {
		r := jobReporter(info, &jobfile.Job{Name: "a"}, settings{progressW: &bytes.Buffer{}}, nil)
		assert.IsType(t, &progress.Bar{}, r)
	})

	t.Run("display and events at debug", func(t *testing.T) {
		counter := progress.NewCounter()
		r := jobReporter(debug, &jobfile.Job{Name: "a"}, settings{}, func() progress.Reporter { return counter })

		m, ok := r.(progress.Multi)
		require.True(t, ok)
		assert.Len(t, m, 2)

		r.Report(progress.Event{Label: "a", Type: progress.EventStarted})
		r.Close()

		assert.True(t, counter.Closed())
		assert.Equal(t, 1, counter.Count(progress.EventStarted))
	})
}
