// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown help
// pages for the failure modes kbuild reports to operators (missing glslang
// installation, shader link failures, missing PDB sources, and so on).
package issue
