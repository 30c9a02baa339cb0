// SPDX-License-Identifier: MPL-2.0

// Package config handles kbuild configuration using Viper with CUE as the file
// format.
//
// Configuration is loaded from the platform config directory
// ($XDG_CONFIG_HOME/kbuild/config.cue on Linux, ~/Library/Application
// Support/kbuild on macOS, %APPDATA%\kbuild on Windows), then from
// ./config.cue, or exclusively from an explicit --config file. Files are
// validated against the embedded #Config schema. The GLSLANG_PATH environment
// variable overrides glslang.path.
package config
