// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package version

import "runtime/debug"

// Version is the string reported by --version. Release builds get the module
// version stamped by the Go toolchain; local builds fall back to "dev".
var Version = func() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}()
