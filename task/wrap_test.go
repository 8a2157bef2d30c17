// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countArgs(_ context.Context, _ Kwargs, args ...any) (any, error) {
	return len(args), nil
}

func TestWrap_SinglePayload(t *testing.T) {
	c, err := Wrap(context.Background(), Task{Position: 3, Payload: Single(7)}, countArgs, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Position)
	assert.Equal(t, 1, c.Output)
}

func TestWrap_SingleTupleIsOneArgument(t *testing.T) {
	c, err := Wrap(context.Background(), Task{Position: 0, Payload: Single(Tuple{1, 2, 3})}, countArgs, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Output)
}

func TestWrap_SpreadPayload(t *testing.T) {
	add := func(_ context.Context, _ Kwargs, args ...any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	}

	c, err := Wrap(context.Background(), Task{Position: 5, Payload: Spread(2, 40)}, add, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Position)
	assert.Equal(t, 42, c.Output)
}

func TestWrap_Kwargs(t *testing.T) {
	scale := func(_ context.Context, kw Kwargs, args ...any) (any, error) {
		f, _ := kw.Get("factor")
		return args[0].(int) * f.(int), nil
	}

	c, err := Wrap(context.Background(), Task{Payload: Single(4)}, scale, Kwargs{"factor": 5})
	require.NoError(t, err)
	assert.Equal(t, 20, c.Output)
}

func TestWrap_KwargsCopiedPerCall(t *testing.T) {
	kw := Kwargs{"bias": 0}
	mutate := func(_ context.Context, k Kwargs, _ ...any) (any, error) {
		v := k["bias"]
		k["bias"] = 99

		return v, nil
	}

	for i := range 3 {
		c, err := Wrap(context.Background(), Task{Position: i, Payload: Single(i)}, mutate, kw)
		require.NoError(t, err)
		assert.Equal(t, 0, c.Output)
	}

	assert.Equal(t, Kwargs{"bias": 0}, kw)
}

func TestWrap_ReturnsTupleUnchanged(t *testing.T) {
	pair := func(_ context.Context, _ Kwargs, args ...any) (any, error) {
		return Tuple{args[0], args[0]}, nil
	}

	c, err := Wrap(context.Background(), Task{Position: 1, Payload: Single("a")}, pair, nil)
	require.NoError(t, err)
	assert.Equal(t, Tuple{"a", "a"}, c.Output)
}

func TestWrap_ErrorPassedThrough(t *testing.T) {
	testErr := errors.New("boom")
	fail := func(_ context.Context, _ Kwargs, _ ...any) (any, error) {
		return nil, testErr
	}

	c, err := Wrap(context.Background(), Task{Position: 9, Payload: Single(1)}, fail, nil)
	assert.Same(t, testErr, err)
	assert.Equal(t, 9, c.Position)
}

func TestWrap_NilFunc(t *testing.T) {
	_, err := Wrap(context.Background(), Task{}, nil, nil)
	assert.ErrorIs(t, err, ErrNilFunc)
}

func TestBind_ClonesKwargs(t *testing.T) {
	kw := Kwargs{"a": 1}
	w := Bind(countArgs, kw)
	kw["a"] = 2

	v, ok := w.Kwargs.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestWrapper_SafeCallRecoversPanic(t *testing.T) {
	w := Bind(func(_ context.Context, _ Kwargs, _ ...any) (any, error) {
		panic("function panicked")
	}, nil)

	c, err := w.SafeCall(context.Background(), Task{Position: 4, Payload: Single(0)})
	require.Error(t, err)

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 4, pe.Position)
	assert.Equal(t, 4, c.Position)
	assert.Contains(t, err.Error(), "task 4 panicked: function panicked")
	assert.NotEmpty(t, pe.Stack)
}

func TestPanicError_UnwrapsErrorValue(t *testing.T) {
	inner := errors.New("inner")
	err := &PanicError{Value: inner}
	assert.ErrorIs(t, err, inner)
	assert.NoError(t, (&PanicError{Value: 42}).Unwrap())
}

func TestPayload_Arguments(t *testing.T) {
	assert.Equal(t, []any{1}, Single(1).Arguments())
	assert.Equal(t, []any{1, 2}, Spread(1, 2).Arguments())
}

func TestKwargs_CloneNil(t *testing.T) {
	var kw Kwargs
	c := kw.Clone()
	require.NotNil(t, c)
	assert.Empty(t, c)
}
