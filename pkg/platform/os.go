// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// IsWindows reports whether the binary runs on Windows.
func IsWindows() bool {
	return runtime.GOOS == Windows
}

// ExecutableName returns name as an executable file name for goos: on
// Windows it gains an .exe suffix unless it already has one.
func ExecutableName(goos, name string) string {
	if goos == Windows && !strings.EqualFold(filepath.Ext(name), ".exe") {
		return name + ".exe"
	}
	return name
}
