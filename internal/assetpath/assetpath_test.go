// SPDX-License-Identifier: MPL-2.0

package assetpath

import (
	"errors"
	"path/filepath"
	"testing"

	"mvdan.cc/sh/v3/expand"

	"github.com/kakadu-engine/kbuild/internal/testutil"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	assetDir := filepath.Join(root, "Engine", "Engine", "Asset")
	testutil.MustMkdirAll(t, assetDir)

	got, err := Generate(assetDir, Options{})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	resolvedAsset, err := filepath.EvalSymlinks(assetDir)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(filepath.Dir(filepath.Dir(resolvedAsset)), GeneratedDirName, HeaderFileName)
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}

	content := testutil.MustReadFile(t, got)
	wantContent := "#pragma once\n\n#define ENGINE_ASSET_ROOT_ABSOLUTE R\"(" + filepath.ToSlash(resolvedAsset) + ")\"\n"
	if content != wantContent {
		t.Errorf("header =\n%s\nwant\n%s", content, wantContent)
	}

	// Regenerating overwrites in place.
	if _, err := Generate(assetDir, Options{}); err != nil {
		t.Fatalf("second Generate() error: %v", err)
	}
}

func TestGenerate_Expansion(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.MustMkdirAll(t, filepath.Join(root, "Engine", "Engine", "Asset"))

	tests := []struct {
		name string
		in   string
		opts Options
	}{
		{name: "braced variable", in: "${SOL}/Engine/Engine/Asset", opts: Options{Environ: expand.ListEnviron("SOL=" + root)}},
		{name: "bare variable", in: "$SOL/Engine/Engine/Asset", opts: Options{Environ: expand.ListEnviron("SOL=" + root)}},
		{name: "home directory", in: "~/Engine/Engine/Asset", opts: Options{HomeDir: root}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Generate(tt.in, tt.opts)
			if err != nil {
				t.Fatalf("Generate(%q) error: %v", tt.in, err)
			}
			if filepath.Base(got) != HeaderFileName || filepath.Base(filepath.Dir(got)) != GeneratedDirName {
				t.Errorf("Generate(%q) = %q", tt.in, got)
			}
		})
	}
}

func TestGenerate_MissingDir(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope", "Asset")
	_, err := Generate(missing, Options{})
	if !errors.Is(err, ErrAssetDirNotFound) {
		t.Fatalf("error = %v, want ErrAssetDirNotFound", err)
	}
	if want := "Engine asset dir not found: " + missing; err.Error() != want {
		t.Errorf("error text = %q, want %q", err.Error(), want)
	}
}

func TestProjectDir(t *testing.T) {
	t.Parallel()

	root := filepath.VolumeName(t.TempDir()) + string(filepath.Separator)
	tests := []struct {
		in   string
		want string
	}{
		{in: filepath.Join(root, "sol", "Engine", "Asset"), want: filepath.Join(root, "sol")},
		{in: filepath.Join(root, "Asset"), want: filepath.Join(root, "Asset")},
		{in: root, want: root},
	}
	for _, tt := range tests {
		if got := ProjectDir(tt.in); got != tt.want {
			t.Errorf("ProjectDir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	env := expand.ListEnviron("FOO=bar", "USERPROFILE=C:/Users/dev")
	tests := []struct {
		name string
		in   string
		goos string
		want string
	}{
		{name: "backslash separators keep the variable", in: `C:\proj\$FOO\Engine\Asset`, goos: "windows", want: `C:\proj\bar\Engine\Asset`},
		{name: "braced variable between backslashes", in: `C:\proj\${FOO}\Asset`, goos: "linux", want: `C:\proj\bar\Asset`},
		{name: "slash separators", in: "/sol/$FOO/Asset", goos: "linux", want: "/sol/bar/Asset"},
		{name: "unset dollar variable is empty", in: "/sol/$MISSING/Asset", goos: "linux", want: "/sol//Asset"},
		{name: "percent variable on windows", in: `%USERPROFILE%\Engine\Asset`, goos: "windows", want: `C:/Users/dev\Engine\Asset`},
		{name: "unset percent variable kept", in: `%NOPE%\Asset`, goos: "windows", want: `%NOPE%\Asset`},
		{name: "double percent", in: `a%%b`, goos: "windows", want: `a%b`},
		{name: "percent left alone elsewhere", in: "/sol/%FOO%/Asset", goos: "linux", want: "/sol/%FOO%/Asset"},
		{name: "no references", in: `D:\Engine\Asset`, goos: "windows", want: `D:\Engine\Asset`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ExpandPath(tt.in, Options{Environ: env, GOOS: tt.goos})
			if err != nil {
				t.Fatalf("ExpandPath(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
