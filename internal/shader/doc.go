// SPDX-License-Identifier: MPL-2.0

// Package shader discovers GLSL shader programs under a directory tree and
// link-checks each of them with glslangValidator.
//
// A program is the set of stage files (.vert, .frag) that share a stem, the
// file path relative to the scan root without its extension. Validation runs
// one tool invocation per program, strictly in sequence, and keeps going after
// a failure so a single run reports every broken program.
package shader
