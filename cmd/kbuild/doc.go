// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the kbuild command tree: shader validation, include
// flattening and the engine's pre-build steps.
package cmd
