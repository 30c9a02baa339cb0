// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kakadu-engine/kbuild/internal/assetpath"
	"github.com/kakadu-engine/kbuild/internal/config"
	"github.com/kakadu-engine/kbuild/internal/glslinc"
	"github.com/kakadu-engine/kbuild/internal/issue"
	"github.com/kakadu-engine/kbuild/internal/pdbcopy"
	"github.com/kakadu-engine/kbuild/internal/shader"
	"github.com/kakadu-engine/kbuild/internal/testutil"
)

func TestGenerateAssetPath(t *testing.T) {
	t.Parallel()

	sol := t.TempDir()
	asset := filepath.Join(sol, "Engine", "Engine", "Asset")
	testutil.MustMkdirAll(t, asset)

	res := runCLI(t, configWith(nil), &recordingInvoker{}, "generate-asset-path", "--engine", asset)
	if res.err != nil {
		t.Fatalf("error: %v", res.err)
	}
	header := filepath.Join(sol, "Engine", assetpath.GeneratedDirName, assetpath.HeaderFileName)
	if !strings.HasPrefix(res.stdout, "Generated: ") || !strings.Contains(testutil.MustReadFile(t, header), filepath.ToSlash(asset)) {
		t.Errorf("stdout = %q", res.stdout)
	}

	missing := runCLI(t, configWith(nil), &recordingInvoker{}, "generate-asset-path", "--engine", filepath.Join(sol, "nope"))
	if missing.err == nil || !strings.Contains(missing.stderr, "Engine asset dir not found: ") {
		t.Errorf("err = %v, stderr = %q", missing.err, missing.stderr)
	}
}

func TestCopyPDB(t *testing.T) {
	t.Parallel()

	sol := debugSolution(t, "x64")
	out := t.TempDir()
	res := runCLI(t, configWith(nil), &recordingInvoker{}, "copy-pdb", sol, "x64", out)
	if res.err != nil {
		t.Fatalf("error: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != "Done." {
		t.Errorf("stdout = %q", res.stdout)
	}

	missingOut := filepath.Join(t.TempDir(), "absent")
	failed := runCLI(t, configWith(nil), &recordingInvoker{}, "copy-pdb", sol, "x64", missingOut)
	if failed.err == nil || !strings.Contains(failed.stderr, "Missing: "+missingOut) {
		t.Errorf("err = %v, stderr = %q", failed.err, failed.stderr)
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{name: "tool not configured", err: shader.ErrToolNotConfigured, want: issue.GlslangNotConfiguredId},
		{name: "asset dir", err: &assetpath.AssetDirNotFoundError{Dir: "/x"}, want: issue.AssetDirNotFoundId},
		{name: "pdb", err: fmt.Errorf("step: %w", &pdbcopy.MissingError{Path: "/y"}), want: issue.PDBMissingId},
		{name: "include", err: &glslinc.IncludeError{File: "a", Line: 1, Name: "b"}, want: issue.IncludeNotFoundId},
		{name: "config", err: &config.InvalidConfigError{}, want: issue.ConfigLoadFailedId},
		{name: "other", err: errors.New("other"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := classifyError(tt.err)
			var svcErr *ServiceError
			if !errors.As(got, &svcErr) {
				if tt.want != 0 {
					t.Fatalf("classifyError() = %v, want issue %d", got, tt.want)
				}
				return
			}
			if svcErr.IssueID != tt.want {
				t.Errorf("IssueID = %d, want %d", svcErr.IssueID, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error lost its cause")
			}
		})
	}
}

func TestNewServiceError_NilPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("newServiceError(nil) did not panic")
		}
	}()
	_ = newServiceError(nil, issue.PDBMissingId)
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := configWith(func(c *config.Config) {
		c.Glslang.Path = "/opt/glslang/bin"
		c.Shaders.IncludeDirs = []string{"Shader/Include"}
	})
	res := runCLI(t, cfg, &recordingInvoker{}, "config", "show")
	if res.err != nil {
		t.Fatalf("error: %v", res.err)
	}
	for _, want := range []string{"Current Configuration", "/opt/glslang/bin", "glslangValidator", "Shader/Include", "x64", "auto"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
}
