// SPDX-License-Identifier: MPL-2.0

package glslinc

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	includeDirective = "#include"
	includeExtension = "GL_ARB_shading_language_include"
)

// ErrIncludeNotFound is returned when an #include names a file that exists in
// neither the including file's directory nor any include directory.
var ErrIncludeNotFound = errors.New("include not found")

// sourceExtensions lists the extensions whose files may carry the
// GL_ARB_shading_language_include #extension line.
var sourceExtensions = map[string]bool{
	".glsl": true,
	".frag": true,
	".vert": true,
	".geom": true,
	".comp": true,
	".tese": true,
	".tesc": true,
}

type (
	// Result is a flattened source.
	Result struct {
		// Source is the flattened text.
		Source string
		// Files maps the file IDs used in #line directives to absolute paths.
		// The main source is always ID 0.
		Files map[int]string
	}

	// IncludeError describes an #include that could not be resolved.
	IncludeError struct {
		// File is the including file.
		File string
		// Line is the 1-based line of the directive.
		Line int
		// Name is the requested include.
		Name string
	}

	resolver struct {
		includeDirs []string
		ids         map[string]int
	}
)

// Error implements the error interface.
func (e *IncludeError) Error() string {
	return fmt.Sprintf("%s:%d: include %q not found", e.File, e.Line, e.Name)
}

// Unwrap returns ErrIncludeNotFound for errors.Is checks.
func (e *IncludeError) Unwrap() error {
	return ErrIncludeNotFound
}

// Resolve reads sourcePath and inlines every #include it (transitively)
// references. Includes are looked up next to the including file first, then
// in includeDirs in order. Each file is inlined once; later directives naming
// an already inlined file are dropped.
func Resolve(sourcePath string, includeDirs []string) (Result, error) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return Result{}, fmt.Errorf("resolving %s: %w", sourcePath, err)
	}

	r := &resolver{includeDirs: includeDirs, ids: map[string]int{abs: 0}}
	var b strings.Builder
	if err := r.flatten(&b, abs); err != nil {
		return Result{}, err
	}

	files := make(map[int]string, len(r.ids))
	for path, id := range r.ids {
		files[id] = path
	}
	return Result{Source: b.String(), Files: files}, nil
}

func (r *resolver) flatten(b *strings.Builder, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading shader source: %w", err)
	}
	parentID := r.ids[path]
	stripExtension := sourceExtensions[filepath.Ext(path)]

	lines := strings.SplitAfter(string(data), "\n")
	restore := false
	for i, line := range lines {
		if line == "" {
			continue
		}
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)

		if stripExtension && strings.HasPrefix(trimmed, "#extension") && strings.Contains(trimmed, includeExtension) {
			// Numbering below stays relative to the original file.
			restore = true
			continue
		}

		name, ok := includeName(trimmed)
		if !ok {
			if restore {
				fmt.Fprintf(b, "#line %d %d\n", lineNo, parentID)
				restore = false
			}
			b.WriteString(line)
			continue
		}

		target, found := r.lookup(filepath.Dir(path), name)
		if !found {
			return &IncludeError{File: path, Line: lineNo, Name: name}
		}
		if _, seen := r.ids[target]; seen {
			slog.Debug("skipping repeated include", "file", path, "include", target)
			restore = true
			continue
		}

		id := len(r.ids)
		r.ids[target] = id
		fmt.Fprintf(b, "#line 0 %d\n", id)
		if err := r.flatten(b, target); err != nil {
			return err
		}
		if s := b.String(); s != "" && !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
		restore = true
	}
	return nil
}

func (r *resolver) lookup(dir, name string) (string, bool) {
	candidates := make([]string, 0, len(r.includeDirs)+1)
	candidates = append(candidates, filepath.Join(dir, name))
	for _, inc := range r.includeDirs {
		candidates = append(candidates, filepath.Join(inc, name))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			abs, err := filepath.Abs(c)
			if err != nil {
				continue
			}
			return abs, true
		}
	}
	return "", false
}

// includeName extracts the file name from an #include line. Quotes around
// the name are optional.
func includeName(trimmed string) (string, bool) {
	rest, ok := strings.CutPrefix(trimmed, includeDirective)
	if !ok {
		return "", false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '"' {
		return "", false
	}
	if idx := strings.Index(rest, "//"); idx >= 0 {
		rest = rest[:idx]
	}
	name := strings.Trim(strings.TrimSpace(rest), `"`)
	if name == "" {
		return "", false
	}
	return name, true
}

// FormatFileTable renders Files as "<id>: <path>" lines ordered by ID, for
// mapping #line file numbers back to paths.
func (r Result) FormatFileTable() string {
	var b strings.Builder
	for id := range len(r.Files) {
		if path, ok := r.Files[id]; ok {
			b.WriteString(strconv.Itoa(id))
			b.WriteString(": ")
			b.WriteString(path)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
