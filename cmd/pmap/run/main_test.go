// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"os"
	"testing"

	"github.com/matt-FFFFFF/pmap/internal/builtin"
	"github.com/matt-FFFFFF/pmap/registry"
)

func TestMain(m *testing.M) {
	if err := builtin.Register(registry.Default); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}
