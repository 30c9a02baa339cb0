// SPDX-License-Identifier: MPL-2.0

// Package pdbcopy copies the debug symbol files of prebuilt vendor libraries
// next to the engine's build output.
package pdbcopy

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrMissing is returned when a source file or the destination directory
// does not exist.
var ErrMissing = errors.New("missing")

type (
	// MissingError names the first path that did not exist.
	MissingError struct {
		Path string
	}

	// CopyError wraps a failure while copying one file.
	CopyError struct {
		Src string
		Err error
	}
)

// Error implements the error interface.
func (e *MissingError) Error() string {
	return "Missing: " + e.Path
}

// Unwrap returns ErrMissing for errors.Is checks.
func (e *MissingError) Unwrap() error {
	return ErrMissing
}

// Error implements the error interface.
func (e *CopyError) Error() string {
	return fmt.Sprintf("Copy failed: %s: %v", e.Src, e.Err)
}

// Unwrap returns the underlying error.
func (e *CopyError) Unwrap() error {
	return e.Err
}

// Sources returns the PDB files copied for platform, in copy order.
func Sources(solutionDir, platform string) []string {
	debugDir := platform + "-Debug"
	return []string{
		filepath.Join(solutionDir, "Lib", debugDir, "glfw3.pdb"),
		filepath.Join(solutionDir, "Bin", debugDir, "Vendor", "Vendor.pdb"),
	}
}

// Copy copies every file from Sources into outDir, overwriting existing
// copies. Nothing is copied unless all sources and outDir exist; outDir is
// never created. It returns the written paths.
func Copy(solutionDir, platform, outDir string) ([]string, error) {
	sources := Sources(solutionDir, platform)
	for _, p := range append(sources, outDir) {
		if _, err := os.Stat(p); err != nil {
			return nil, &MissingError{Path: p}
		}
	}

	written := make([]string, 0, len(sources))
	for _, src := range sources {
		dst := filepath.Join(outDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			return written, &CopyError{Src: src, Err: err}
		}
		slog.Debug("copied pdb", "src", src, "dst", dst)
		written = append(written, dst)
	}
	return written, nil
}

// copyFile copies src to dst, keeping the source's permission bits and
// modification time.
func copyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return err
	}
	if err = out.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
