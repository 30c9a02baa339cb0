// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/kakadu-engine/kbuild/internal/testutil"
)

func TestShadersList_JSON(t *testing.T) {
	t.Parallel()

	root := testutil.ShaderTree(t, "a/shader.vert", "a/shader.frag", "b/only.vert")
	res := runCLI(t, configWith(nil), &recordingInvoker{}, "shaders", "list", "--scan-dir", root, "--format", "json")
	if res.err != nil {
		t.Fatalf("error: %v", res.err)
	}

	var listing shaderListing
	if err := json.Unmarshal([]byte(res.stdout), &listing); err != nil {
		t.Fatalf("invalid JSON %q: %v", res.stdout, err)
	}
	if listing.ScanRoot != root {
		t.Errorf("scan_root = %q, want %q", listing.ScanRoot, root)
	}
	if len(listing.Programs) != 2 || listing.Programs[0].Key != "a/shader" || strings.Join(listing.Programs[0].Stages, ",") != "frag,vert" {
		t.Fatalf("programs = %+v", listing.Programs)
	}
	if !listing.Programs[0].Complete || listing.Programs[1].Complete {
		t.Errorf("complete flags = %v/%v, want true/false", listing.Programs[0].Complete, listing.Programs[1].Complete)
	}
	if len(listing.IncludePath) != 3 || listing.IncludePath[0] != root {
		t.Errorf("include_path = %v", listing.IncludePath)
	}
}

func TestShadersList_TOML(t *testing.T) {
	t.Parallel()

	root := testutil.ShaderTree(t, "x/y.frag")
	res := runCLI(t, configWith(nil), &recordingInvoker{}, "shaders", "list", "--scan-dir", root, "--format", "toml")
	if res.err != nil {
		t.Fatalf("error: %v", res.err)
	}

	var listing shaderListing
	if err := toml.Unmarshal([]byte(res.stdout), &listing); err != nil {
		t.Fatalf("invalid TOML %q: %v", res.stdout, err)
	}
	if len(listing.Programs) != 1 || listing.Programs[0].Key != "x/y" {
		t.Errorf("programs = %+v", listing.Programs)
	}
}

func TestShadersList_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing scan dir", func(t *testing.T) {
		t.Parallel()

		res := runCLI(t, configWith(nil), &recordingInvoker{}, "shaders", "list", "--scan-dir", filepath.Join(t.TempDir(), "gone"))
		var exitErr *ExitError
		if !errors.As(res.err, &exitErr) {
			t.Fatalf("error = %v, want ExitError", res.err)
		}
		if !strings.Contains(res.stderr, "shader directory not found") {
			t.Errorf("stderr = %q", res.stderr)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		res := runCLI(t, configWith(nil), &recordingInvoker{}, "shaders", "list", "--scan-dir", t.TempDir(), "--format", "yaml")
		if res.err == nil || !strings.Contains(res.stderr, `unknown format "yaml"`) {
			t.Errorf("err = %v, stderr = %q", res.err, res.stderr)
		}
	})
}

func TestListingMarkdown(t *testing.T) {
	t.Parallel()

	md := listingMarkdown(shaderListing{
		ScanRoot:    "/r",
		IncludePath: []string{"/r", "/r/a"},
		Programs: []programListing{
			{Key: "a/s", Stages: []string{"frag", "vert"}, Complete: true},
			{Key: "b/v", Stages: []string{"vert"}},
		},
	})
	for _, want := range []string{"# Shader programs", "| `a/s` | frag, vert | yes |", "| `b/v` | vert | no |", "1. `/r`", "2. `/r/a`"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	empty := listingMarkdown(shaderListing{ScanRoot: "/r"})
	if !strings.Contains(empty, "No .vert/.frag found.") {
		t.Errorf("empty markdown = %q", empty)
	}
}

func TestShadersFlatten(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "inc/common.glsl", "float k = 1.0;\n")
	main := testutil.MustWriteFile(t, dir, "s.frag", "#version 450\n#include \"common.glsl\"\nvoid main() {}\n")
	want := "#version 450\n#line 0 1\nfloat k = 1.0;\n#line 3 0\nvoid main() {}\n"

	t.Run("stdout", func(t *testing.T) {
		t.Parallel()

		res := runCLI(t, configWith(nil), &recordingInvoker{}, "shaders", "flatten", main, "-I", filepath.Join(dir, "inc"))
		if res.err != nil {
			t.Fatalf("error: %v\nstderr: %s", res.err, res.stderr)
		}
		if res.stdout != want {
			t.Errorf("stdout = %q, want %q", res.stdout, want)
		}
	})

	t.Run("output file", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "flat.frag")
		res := runCLI(t, configWith(nil), &recordingInvoker{}, "shaders", "flatten", main, "-I", filepath.Join(dir, "inc"), "-o", out)
		if res.err != nil {
			t.Fatalf("error: %v", res.err)
		}
		if got := testutil.MustReadFile(t, out); got != want {
			t.Errorf("file = %q, want %q", got, want)
		}
	})

	t.Run("unresolved include", func(t *testing.T) {
		t.Parallel()

		res := runCLI(t, configWith(nil), &recordingInvoker{}, "shaders", "flatten", main)
		if res.err == nil || !strings.Contains(res.stderr, `include "common.glsl" not found`) {
			t.Errorf("err = %v, stderr = %q", res.err, res.stderr)
		}
	})
}
