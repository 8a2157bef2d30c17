// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pool

import (
	"encoding/gob"
	"io"
)

func newEncoder(w io.Writer) *gob.Encoder {
	return gob.NewEncoder(w)
}

func gobEncode(w io.Writer, v any) error {
	return gob.NewEncoder(w).Encode(v)
}

func gobDecode(r io.Reader, v any) error {
	return gob.NewDecoder(r).Decode(v)
}
