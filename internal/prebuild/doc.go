// SPDX-License-Identifier: MPL-2.0

// Package prebuild drives the engine's pre-build steps: generating the asset
// path header and, for debug-like configurations, copying vendor PDB files.
//
// Progress is reported through a Sequence value owned by each run, so
// concurrent runs never share step counters.
package prebuild
