// SPDX-License-Identifier: MPL-2.0

// Package assetpath writes the generated C++ header that bakes the engine's
// absolute asset directory into the build.
package assetpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	"github.com/kakadu-engine/kbuild/pkg/platform"
)

const (
	// GeneratedDirName is created under the project directory.
	GeneratedDirName = "Generated"
	// HeaderFileName is the generated header's file name.
	HeaderFileName = "EngineAssetAbsolutePath.h"
	// MacroName is the preprocessor macro holding the asset root.
	MacroName = "ENGINE_ASSET_ROOT_ABSOLUTE"
)

// ErrAssetDirNotFound is returned when the engine asset directory does not
// exist after expansion.
var ErrAssetDirNotFound = errors.New("engine asset dir not found")

type (
	// AssetDirNotFoundError carries the resolved directory that was missing.
	AssetDirNotFoundError struct {
		Dir string
	}

	// Options tunes Generate.
	Options struct {
		// Environ supplies variables for $VAR expansion. Nil uses the process
		// environment.
		Environ expand.Environ
		// HomeDir replaces a leading ~. Empty uses os.UserHomeDir.
		HomeDir string
		// GOOS selects platform rules. Empty uses runtime.GOOS. On Windows
		// %VAR% references are expanded as well.
		GOOS string
	}
)

// Error implements the error interface.
func (e *AssetDirNotFoundError) Error() string {
	return fmt.Sprintf("Engine asset dir not found: %s", e.Dir)
}

// Unwrap returns ErrAssetDirNotFound for errors.Is checks.
func (e *AssetDirNotFoundError) Unwrap() error {
	return ErrAssetDirNotFound
}

// Generate expands engineAssetDir, checks that it exists and writes
// <project>/Generated/EngineAssetAbsolutePath.h, where project is the asset
// directory's grandparent. It returns the written header path.
func Generate(engineAssetDir string, opts Options) (string, error) {
	expanded, err := ExpandPath(engineAssetDir, opts)
	if err != nil {
		return "", err
	}

	assetDir, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", expanded, err)
	}
	if _, err := os.Stat(assetDir); err != nil {
		return "", &AssetDirNotFoundError{Dir: assetDir}
	}
	if resolved, err := filepath.EvalSymlinks(assetDir); err == nil {
		assetDir = resolved
	}

	outDir := filepath.Join(ProjectDir(assetDir), GeneratedDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", outDir, err)
	}

	headerPath := filepath.Join(outDir, HeaderFileName)
	if err := os.WriteFile(headerPath, []byte(Header(assetDir)), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", headerPath, err)
	}
	return headerPath, nil
}

// ProjectDir returns the grandparent of assetDir, or assetDir itself when it
// has no grandparent.
func ProjectDir(assetDir string) string {
	parent := filepath.Dir(assetDir)
	if parent == assetDir {
		return assetDir
	}
	grandparent := filepath.Dir(parent)
	if grandparent == parent {
		return assetDir
	}
	return grandparent
}

// Header renders the header text for an absolute asset directory. The path
// always uses forward slashes.
func Header(assetDir string) string {
	return fmt.Sprintf("#pragma once\n\n#define %s R\"(%s)\"\n", MacroName, filepath.ToSlash(assetDir))
}

// ExpandPath replaces a leading ~ with the home directory and expands $VAR
// and ${VAR} references. Unset $ variables expand to the empty string. On
// Windows, %VAR% references to set variables are expanded too, and unset
// ones are kept as written. Both / and \ separate path segments.
func ExpandPath(path string, opts Options) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home := opts.HomeDir
		if home == "" {
			h, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("expanding ~: %w", err)
			}
			home = h
		}
		path = home + path[1:]
	}

	env := opts.Environ
	if env == nil {
		env = expand.ListEnviron(os.Environ()...)
	}
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == platform.Windows {
		path = expandPercent(path, env)
	}
	if !strings.Contains(path, "$") {
		return path, nil
	}

	// Segments are expanded one at a time so that a backslash separator is
	// never read as a shell escape.
	cfg := &expand.Config{Env: env}
	var out strings.Builder
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '/' && path[i] != '\\' {
			continue
		}
		seg, err := expandSegment(cfg, path[start:i])
		if err != nil {
			return "", fmt.Errorf("expanding path %q: %w", path, err)
		}
		out.WriteString(seg)
		if i < len(path) {
			out.WriteByte(path[i])
		}
		start = i + 1
	}
	return out.String(), nil
}

func expandSegment(cfg *expand.Config, seg string) (string, error) {
	if !strings.Contains(seg, "$") {
		return seg, nil
	}
	word, err := syntax.NewParser().Document(strings.NewReader(seg))
	if err != nil {
		return "", err
	}
	return expand.Document(cfg, word)
}

// expandPercent expands cmd-style %VAR% references. %% becomes a single %.
func expandPercent(path string, env expand.Environ) string {
	var sb strings.Builder
	for {
		start := strings.IndexByte(path, '%')
		if start < 0 {
			break
		}
		end := strings.IndexByte(path[start+1:], '%')
		if end < 0 {
			break
		}
		end += start + 1

		sb.WriteString(path[:start])
		name := path[start+1 : end]
		switch v := env.Get(name); {
		case name == "":
			sb.WriteByte('%')
		case v.IsSet():
			sb.WriteString(v.String())
		default:
			sb.WriteString(path[start : end+1])
		}
		path = path[end+1:]
	}
	sb.WriteString(path)
	return sb.String()
}
