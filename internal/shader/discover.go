// SPDX-License-Identifier: MPL-2.0

package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidExcludePattern is returned when an exclude glob does not parse.
var ErrInvalidExcludePattern = errors.New("invalid exclude pattern")

type (
	// DiscoverOptions tunes Discover.
	DiscoverOptions struct {
		// Exclude holds doublestar globs matched against the slash-separated
		// file path relative to the scan root (extension included).
		Exclude []string
	}

	// Discovery is the result of scanning one directory tree.
	Discovery struct {
		// Root is the absolute scan root.
		Root string
		// Programs holds the discovered programs in walk order.
		Programs *ProgramSet
		// Dirs holds every absolute directory that contained at least one
		// stage file, sorted.
		Dirs []string
	}
)

// Empty reports whether nothing was found.
func (d *Discovery) Empty() bool {
	return d == nil || d.Programs.Len() == 0
}

// Discover walks scanRoot and groups every .vert/.frag file by stem. A scan
// root that does not exist, or is not a directory, yields an empty Discovery
// rather than an error. Unreadable subdirectories are skipped.
func Discover(scanRoot string, opts DiscoverOptions) (*Discovery, error) {
	for _, pat := range opts.Exclude {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidExcludePattern, pat)
		}
	}

	root, err := filepath.Abs(scanRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root: %w", err)
	}

	result := &Discovery{Root: root, Programs: NewProgramSet()}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		slog.Debug("scan root is not a directory", "root", root, "error", err)
		return result, nil
	}

	dirs := make(map[string]struct{})

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkDirErr error) error {
		if walkDirErr != nil {
			slog.Debug("skipping unreadable path", "path", path, "error", walkDirErr)
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		ext := filepath.Ext(name)
		stage, ok := stageForExt(ext)
		if !ok || strings.TrimSuffix(name, ext) == "" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if excluded(rel, opts.Exclude) {
			slog.Debug("excluded shader", "file", rel)
			return nil
		}

		dir := filepath.Dir(path)
		dirs[dir] = struct{}{}
		result.Programs.Add(StageFile{
			Path:  path,
			Dir:   dir,
			Stem:  strings.TrimSuffix(rel, ext),
			Stage: stage,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, walkErr)
	}

	result.Dirs = make([]string, 0, len(dirs))
	for dir := range dirs {
		result.Dirs = append(result.Dirs, dir)
	}
	slices.Sort(result.Dirs)

	slog.Debug("shader discovery complete", "root", root, "programs", result.Programs.Len(), "dirs", len(result.Dirs))
	return result, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pat := range patterns {
		if matched, err := doublestar.Match(pat, rel); err == nil && matched {
			return true
		}
	}
	return false
}
