// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pmap_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matt-FFFFFF/pmap"
	"github.com/matt-FFFFFF/pmap/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderInvariance(t *testing.T) {
	xs := ints(0, 40)

	expected := make([]any, len(xs))
	for i, x := range xs {
		expected[i] = x.(int) * x.(int)
	}

	for name, opts := range modes(t, "jitter") {
		for _, workers := range []int{0, 1, 2, 10} {
			for _, batch := range []int{1, 4} {
				t.Run(fmt.Sprintf("%s/workers=%d/batch=%d", name, workers, batch), func(t *testing.T) {
					out, err := pmap.Map(context.Background(), jitter, xs, workers, append(opts, pmap.WithBatchSize(batch))...)
					require.NoError(t, err)
					assert.Equal(t, expected, out.Values)
					assert.Nil(t, out.Columns)
				})
			}
		}
	}
}

func TestTimesTenScenario(t *testing.T) {
	expected := []any{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}

	for name, opts := range modes(t, "times10") {
		for _, workers := range []int{0, 1, 2, 10} {
			t.Run(fmt.Sprintf("%s/workers=%d", name, workers), func(t *testing.T) {
				out, err := pmap.Map(context.Background(), times10, ints(0, 10), workers, opts...)
				require.NoError(t, err)
				assert.Equal(t, expected, out.Values)
			})
		}
	}
}

func TestFuseUnzipScenario(t *testing.T) {
	for name, opts := range modes(t, "sumprod") {
		t.Run(name, func(t *testing.T) {
			opts := append(opts, pmap.WithFuse(), pmap.WithUnzip())

			out, err := pmap.Map(context.Background(), sumProduct, []any{ints(0, 5), ints(5, 10)}, 2, opts...)
			require.NoError(t, err)
			require.Len(t, out.Columns, 2)
			assert.Equal(t, []any{5, 7, 9, 11, 13}, out.Columns[0])
			assert.Equal(t, []any{0, 6, 14, 24, 36}, out.Columns[1])
		})
	}
}

func TestFusion(t *testing.T) {
	xs, ys := ints(0, 12), ints(100, 112)

	expected := make([]any, len(xs))
	for i := range xs {
		expected[i] = xs[i].(int) * ys[i].(int)
	}

	for name, opts := range modes(t, "mul") {
		for _, workers := range []int{0, 3} {
			t.Run(fmt.Sprintf("%s/workers=%d", name, workers), func(t *testing.T) {
				out, err := pmap.Map(context.Background(), multiply, []any{xs, ys}, workers, append(opts, pmap.WithFuse())...)
				require.NoError(t, err)
				assert.Equal(t, expected, out.Values)
			})
		}
	}
}

func TestFusionTypedSlices(t *testing.T) {
	out, err := pmap.Map(context.Background(), multiply, []any{[]int{1, 2, 3}, [3]int{4, 5, 6}}, 0,
		pmap.WithFuse(), pmap.WithDisabled())
	require.NoError(t, err)
	assert.Equal(t, []any{4, 10, 18}, out.Values)
}

func TestFusionShortest(t *testing.T) {
	out, err := pmap.Map(context.Background(), multiply, []any{ints(0, 5), ints(1, 3)}, 2,
		pmap.WithShortest(), pmap.WithDisabled())
	require.NoError(t, err)
	assert.Equal(t, []any{0, 2}, out.Values)
}

func TestKwargsPassThrough(t *testing.T) {
	for name, opts := range modes(t, "scale") {
		for _, workers := range []int{0, 4} {
			t.Run(fmt.Sprintf("%s/workers=%d", name, workers), func(t *testing.T) {
				opts := append(opts, pmap.WithKwargs(pmap.Kwargs{"factor": 3}), pmap.WithKwarg("bias", 1))

				out, err := pmap.Map(context.Background(), scale, ints(0, 5), workers, opts...)
				require.NoError(t, err)
				assert.Equal(t, []any{1, 4, 7, 10, 13}, out.Values)
			})
		}
	}
}

func TestKwargsNotShared(t *testing.T) {
	kw := pmap.Kwargs{"factor": 2, "bias": 0}

	mutate := func(_ context.Context, k pmap.Kwargs, args ...any) (any, error) {
		k["bias"] = 99
		return args[0], nil
	}

	_, err := pmap.Map(context.Background(), mutate, ints(0, 1), 0, pmap.WithKwargs(kw), pmap.WithDisabled())
	require.NoError(t, err)
	assert.Equal(t, 0, kw["bias"])
}

func TestKwargsFreshPerCall(t *testing.T) {
	readThenWrite := func(_ context.Context, k pmap.Kwargs, _ ...any) (any, error) {
		v := k["bias"]
		k["bias"] = 99

		return v, nil
	}

	for _, workers := range []int{0, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out, err := pmap.Map(context.Background(), readThenWrite, ints(0, 3), workers,
				pmap.WithKwarg("bias", 0), pmap.WithDisabled())
			require.NoError(t, err)
			assert.Equal(t, []any{0, 0, 0}, out.Values)
		})
	}
}

func TestKwargsConcurrentWrites(t *testing.T) {
	scratch := func(_ context.Context, k pmap.Kwargs, args ...any) (any, error) {
		k["scratch"] = args[0]
		delete(k, "bias")

		return k["scratch"], nil
	}

	xs := ints(0, 200)

	out, err := pmap.Map(context.Background(), scratch, xs, 8,
		pmap.WithKwarg("bias", 1), pmap.WithBatchSize(1), pmap.WithDisabled())
	require.NoError(t, err)
	assert.Equal(t, xs, out.Values)
}

func TestUnzip(t *testing.T) {
	pair := func(_ context.Context, _ pmap.Kwargs, args ...any) (any, error) {
		x := args[0].(int)
		return pmap.Tuple{x, fmt.Sprint(x)}, nil
	}

	for _, workers := range []int{0, 2} {
		out, err := pmap.Map(context.Background(), pair, ints(0, 4), workers, pmap.WithUnzip(), pmap.WithDisabled())
		require.NoError(t, err)
		assert.Equal(t, [][]any{{0, 1, 2, 3}, {"0", "1", "2", "3"}}, out.Columns)
		assert.Len(t, out.Values, 4)
	}
}

func TestEmptyInput(t *testing.T) {
	for _, workers := range []int{0, 1, 10} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			counter := progress.NewCounter()
			acquired := false

			out, err := pmap.Map(context.Background(), times10, []any{}, workers,
				pmap.WithReporter(counter),
				pmap.WithUnzip(),
				pmap.WithPool(spyFactory(&acquired)))
			require.NoError(t, err)
			assert.Empty(t, out.Values)
			assert.Equal(t, [][]any{}, out.Columns)
			assert.Empty(t, counter.Events())
			assert.True(t, counter.Closed())
			assert.False(t, acquired, "no pool for empty input")
		})
	}
}

func TestEmptyFusedInput(t *testing.T) {
	out, err := pmap.Map(context.Background(), multiply, []any{[]int{}, []int{}}, 2, pmap.WithFuse(), pmap.WithDisabled())
	require.NoError(t, err)
	assert.Empty(t, out.Values)
}

func TestSingleElement(t *testing.T) {
	for name, opts := range modes(t, "times10") {
		for _, workers := range []int{0, 1, 10} {
			t.Run(fmt.Sprintf("%s/workers=%d", name, workers), func(t *testing.T) {
				out, err := pmap.Map(context.Background(), times10, []any{7}, workers, opts...)
				require.NoError(t, err)
				assert.Equal(t, []any{70}, out.Values)
			})
		}
	}
}

func TestSingleTupleIsOneArgument(t *testing.T) {
	count := func(_ context.Context, _ pmap.Kwargs, args ...any) (any, error) {
		return len(args), nil
	}

	out, err := pmap.Map(context.Background(), count, []any{pmap.Tuple{1, 2, 3}}, 0, pmap.WithDisabled())
	require.NoError(t, err)
	assert.Equal(t, []any{1}, out.Values)
}

func TestProgressEvents(t *testing.T) {
	for _, workers := range []int{0, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			counter := progress.NewCounter()

			_, err := pmap.Map(context.Background(), times10, ints(0, 6), workers,
				pmap.WithReporter(counter), pmap.WithLabel("tens"))
			require.NoError(t, err)

			events := counter.Events()
			require.Len(t, events, 8)
			assert.Equal(t, progress.EventStarted, events[0].Type)
			assert.Equal(t, 6, events[0].Data.Total)
			assert.Equal(t, progress.EventCompleted, events[7].Type)
			assert.True(t, counter.Closed())

			positions := make([]int, 0, 6)

			for i, e := range events[1:7] {
				assert.Equal(t, progress.EventProgress, e.Type)
				assert.Equal(t, i+1, e.Data.Completed)
				assert.Equal(t, "tens", e.Label)

				positions = append(positions, e.Data.Position)
			}

			if workers == 0 {
				assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, positions, "sync mode advances in input order")
			} else {
				assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5}, positions)
			}
		})
	}
}

func TestDefaultBar(t *testing.T) {
	buf := &bytes.Buffer{}

	_, err := pmap.Map(context.Background(), times10, ints(0, 10), 2,
		pmap.WithProgressWriter(buf), pmap.WithLabel("tens"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(buf.String(), "\rtens: "))
	assert.True(t, strings.HasSuffix(buf.String(), "10/10\n"), buf.String())
}

func TestDisabledIsSilent(t *testing.T) {
	buf := &bytes.Buffer{}

	out, err := pmap.Map(context.Background(), times10, ints(0, 3), 0, pmap.WithProgressWriter(buf), pmap.WithDisabled())
	require.NoError(t, err)
	assert.Equal(t, []any{0, 10, 20}, out.Values)
	assert.Empty(t, buf.String())
}

func TestMapOf(t *testing.T) {
	double := func(_ context.Context, _ pmap.Kwargs, x int) (string, error) {
		return strings.Repeat("x", x), nil
	}

	out, err := pmap.MapOf(context.Background(), double, []int{0, 1, 2, 3}, 2, pmap.WithDisabled())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "x", "xx", "xxx"}, out)
}

func TestMap2(t *testing.T) {
	join := func(_ context.Context, kw pmap.Kwargs, a string, b int) (string, error) {
		return fmt.Sprintf("%s%s%d", a, kw["sep"], b), nil
	}

	out, err := pmap.Map2(context.Background(), join, []string{"a", "b"}, []int{1, 2}, 2,
		pmap.WithKwarg("sep", "-"), pmap.WithDisabled())
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1", "b-2"}, out)
}

func TestMap2LeavesCallerOptions(t *testing.T) {
	add := func(_ context.Context, _ pmap.Kwargs, a, b int) (int, error) {
		return a + b, nil
	}

	opts := make([]pmap.Option, 1, 4)
	opts[0] = pmap.WithDisabled()

	out, err := pmap.Map2(context.Background(), add, []int{1, 2}, []int{3, 4}, 0, opts...)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 6}, out)
	assert.Nil(t, opts[:2][1], "spare capacity untouched")
}
