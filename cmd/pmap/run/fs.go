// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import "github.com/spf13/afero"

// FsFactory returns the filesystem that --out is written to.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}
