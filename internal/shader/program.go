// SPDX-License-Identifier: MPL-2.0

package shader

import "slices"

const (
	// StageVertex is a vertex shader stage (.vert).
	StageVertex Stage = "vert"
	// StageFragment is a fragment shader stage (.frag).
	StageFragment Stage = "frag"
)

type (
	// Stage names a shader stage by its file extension, without the dot.
	Stage string

	// StageFile is one discovered shader stage file.
	StageFile struct {
		// Path is the absolute file path.
		Path string
		// Dir is the absolute containing directory.
		Dir string
		// Stem is the slash-separated path relative to the scan root, without
		// the extension. It is the program key.
		Stem string
		// Stage is derived from the extension.
		Stage Stage
	}

	// Program groups the stage files sharing a stem, in discovery order.
	Program struct {
		Key    string
		Stages []StageFile
	}

	// ProgramSet is an insertion-ordered mapping from stem to Program.
	ProgramSet struct {
		keys  []string
		byKey map[string]*Program
	}
)

// stageForExt maps a file extension (with dot) to its Stage. Matching is
// case-sensitive.
func stageForExt(ext string) (Stage, bool) {
	switch ext {
	case ".vert":
		return StageVertex, true
	case ".frag":
		return StageFragment, true
	default:
		return "", false
	}
}

// Paths returns the absolute stage file paths in discovery order.
func (p Program) Paths() []string {
	paths := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		paths[i] = s.Path
	}
	return paths
}

// HasStage reports whether the program contains a file of the given stage.
func (p Program) HasStage(stage Stage) bool {
	return slices.ContainsFunc(p.Stages, func(s StageFile) bool { return s.Stage == stage })
}

// NewProgramSet returns an empty set.
func NewProgramSet() *ProgramSet {
	return &ProgramSet{byKey: make(map[string]*Program)}
}

// Add appends f to the program keyed by its stem, creating the program on
// first use. Files are never deduplicated.
func (s *ProgramSet) Add(f StageFile) {
	p, ok := s.byKey[f.Stem]
	if !ok {
		p = &Program{Key: f.Stem}
		s.byKey[f.Stem] = p
		s.keys = append(s.keys, f.Stem)
	}
	p.Stages = append(p.Stages, f)
}

// Len returns the number of programs.
func (s *ProgramSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Keys returns program keys in insertion order.
func (s *ProgramSet) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// Get returns the program for key.
func (s *ProgramSet) Get(key string) (Program, bool) {
	if s == nil {
		return Program{}, false
	}
	p, ok := s.byKey[key]
	if !ok {
		return Program{}, false
	}
	return p.clone(), true
}

// Programs returns every program in insertion order.
func (s *ProgramSet) Programs() []Program {
	if s == nil {
		return nil
	}
	out := make([]Program, len(s.keys))
	for i, k := range s.keys {
		out[i] = s.byKey[k].clone()
	}
	return out
}

func (p *Program) clone() Program {
	return Program{Key: p.Key, Stages: slices.Clone(p.Stages)}
}
