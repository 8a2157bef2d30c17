// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package builtin

import (
	"fmt"
)

// num is an integer until it meets a float.
type num struct {
	i       int64
	f       float64
	isFloat bool
}

func intNum(i int64) num {
	return num{i: i}
}

func floatNum(f float64) num {
	return num{f: f, isFloat: true}
}

func toNum(v any) (num, error) {
	switch x := v.(type) {
	case int:
		return intNum(int64(x)), nil
	case int8:
		return intNum(int64(x)), nil
	case int16:
		return intNum(int64(x)), nil
	case int32:
		return intNum(int64(x)), nil
	case int64:
		return intNum(x), nil
	case uint:
		return intNum(int64(x)), nil //nolint:gosec
	case uint8:
		return intNum(int64(x)), nil
	case uint16:
		return intNum(int64(x)), nil
	case uint32:
		return intNum(int64(x)), nil
	case uint64:
		return intNum(int64(x)), nil //nolint:gosec
	case float32:
		return floatNum(float64(x)), nil
	case float64:
		return floatNum(x), nil
	default:
		return num{}, fmt.Errorf("%w: %T", ErrNotANumber, v)
	}
}

func (n num) float() float64 {
	if n.isFloat {
		return n.f
	}

	return float64(n.i)
}

func (n num) add(o num) num {
	if n.isFloat || o.isFloat {
		return floatNum(n.float() + o.float())
	}

	return intNum(n.i + o.i)
}

func (n num) mul(o num) num {
	if n.isFloat || o.isFloat {
		return floatNum(n.float() * o.float())
	}

	return intNum(n.i * o.i)
}

// value returns an int or a float64.
func (n num) value() any {
	if n.isFloat {
		return n.f
	}

	return int(n.i)
}
