// SPDX-License-Identifier: MPL-2.0

// Package glslinc flattens GLSL sources that use #include directives into a
// single translation unit, emitting #line directives so compiler diagnostics
// still point at the original files.
package glslinc
