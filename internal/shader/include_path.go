// SPDX-License-Identifier: MPL-2.0

package shader

import (
	"fmt"
	"path/filepath"
	"slices"
)

// BuildIncludeSearchPath returns the directories handed to the validator as
// -I flags: scanRoot first, then discoveredDirs in sorted order, then
// extraDirs (made absolute) in the given order. Later duplicates of an
// absolute path are dropped.
func BuildIncludeSearchPath(scanRoot string, discoveredDirs, extraDirs []string) ([]string, error) {
	root, err := filepath.Abs(scanRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving scan root: %w", err)
	}

	out := make([]string, 0, 1+len(discoveredDirs)+len(extraDirs))
	seen := make(map[string]struct{}, cap(out))
	add := func(dir string) {
		if _, ok := seen[dir]; ok {
			return
		}
		seen[dir] = struct{}{}
		out = append(out, dir)
	}

	add(root)

	sorted := make([]string, len(discoveredDirs))
	for i, d := range discoveredDirs {
		sorted[i] = filepath.Clean(d)
	}
	slices.Sort(sorted)
	for _, d := range sorted {
		add(d)
	}

	for _, d := range extraDirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("resolving include dir %q: %w", d, err)
		}
		add(abs)
	}

	return out, nil
}
