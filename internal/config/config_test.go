// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kakadu-engine/kbuild/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Glslang.Path != "" {
		t.Errorf("Glslang.Path = %q, want empty", cfg.Glslang.Path)
	}
	if cfg.Glslang.Binary != DefaultGlslangBinary {
		t.Errorf("Glslang.Binary = %q, want %q", cfg.Glslang.Binary, DefaultGlslangBinary)
	}
	if cfg.PreBuild.Platform != DefaultPlatform {
		t.Errorf("PreBuild.Platform = %q, want %q", cfg.PreBuild.Platform, DefaultPlatform)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("UI.ColorScheme = %q, want auto", cfg.UI.ColorScheme)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("default config invalid: %v", errs)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv(EnvGlslangPath, "")

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if cfg.Glslang.Path != "" {
		t.Errorf("Glslang.Path = %q, want empty (empty env counts as unset)", cfg.Glslang.Path)
	}
	if cfg.Glslang.Binary != DefaultGlslangBinary {
		t.Errorf("Glslang.Binary = %q", cfg.Glslang.Binary)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	t.Setenv(EnvGlslangPath, "")

	dir := t.TempDir()
	want := writeConfig(t, dir, `
glslang: {
	path:   "/opt/glslang/bin"
	binary: "glslangValidator"
}
shaders: {
	include_dirs: ["/engine/Shader/Include"]
	exclude: ["**/wip/**"]
}
prebuild: platform: "arm64"
ui: {
	verbose:      true
	color_scheme: "dark"
}
`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.Glslang.Path != "/opt/glslang/bin" {
		t.Errorf("Glslang.Path = %q", cfg.Glslang.Path)
	}
	if len(cfg.Shaders.IncludeDirs) != 1 || cfg.Shaders.IncludeDirs[0] != "/engine/Shader/Include" {
		t.Errorf("Shaders.IncludeDirs = %v", cfg.Shaders.IncludeDirs)
	}
	if len(cfg.Shaders.Exclude) != 1 || cfg.Shaders.Exclude[0] != "**/wip/**" {
		t.Errorf("Shaders.Exclude = %v", cfg.Shaders.Exclude)
	}
	if cfg.PreBuild.Platform != "arm64" {
		t.Errorf("PreBuild.Platform = %q", cfg.PreBuild.Platform)
	}
	if !cfg.UI.Verbose || cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("UI = %+v", cfg.UI)
	}
}

func TestLoad_EnvOverridesGlslangPath(t *testing.T) {
	t.Setenv(EnvGlslangPath, "/from/env")

	dir := t.TempDir()
	writeConfig(t, dir, `glslang: path: "/from/file"`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Glslang.Path != "/from/env" {
		t.Errorf("Glslang.Path = %q, want /from/env", cfg.Glslang.Path)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown field", content: `unknown: true`, want: "unknown"},
		{name: "bad color scheme", content: `ui: color_scheme: "purple"`, want: "color_scheme"},
		{name: "binary with separator", content: `glslang: binary: "bin/glslang"`, want: "binary"},
		{name: "syntax error", content: `glslang: {`, want: "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("expected error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error is not ActionableError: %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.cue")
	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: missing})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("error = %v, want config file not found", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := loadWithOptions(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestCreateDefaultConfig_RoundTrip(t *testing.T) {
	t.Setenv(EnvGlslangPath, "")

	dir := t.TempDir()
	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if !created {
		t.Fatal("expected a new file")
	}

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: path})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.PreBuild.Platform != DefaultPlatform || cfg.Glslang.Binary != DefaultGlslangBinary {
		t.Errorf("unexpected config after round trip: %+v", cfg)
	}

	if _, created, err := CreateDefaultConfig(dir); err != nil || created {
		t.Errorf("second CreateDefaultConfig() = created %v, err %v; want false, nil", created, err)
	}
}

func TestColorScheme(t *testing.T) {
	t.Parallel()

	if valid, _ := ColorScheme("purple").IsValid(); valid {
		t.Error("purple should be invalid")
	}
	_, errs := ColorScheme("purple").IsValid()
	if len(errs) != 1 || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("errs = %v, want ErrInvalidColorScheme", errs)
	}
	if got := ColorSchemeLight.GlamourStyle(); got != "light" {
		t.Errorf("GlamourStyle() = %q", got)
	}
	if got := ColorSchemeAuto.GlamourStyle(); got != "auto" {
		t.Errorf("GlamourStyle() = %q", got)
	}
}
