// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakadu-engine/kbuild/internal/config"
)

// newConfigCommand creates the `kbuild config` command tree.
func newConfigCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage kbuild configuration",
		Long: `Manage kbuild configuration.

Configuration is read from --config, else from the platform config
directory, else from ./config.cue:
  - Linux: ~/.config/kbuild/config.cue
  - macOS: ~/Library/Application Support/kbuild/config.cue
  - Windows: %APPDATA%\kbuild\config.cue

` + config.EnvGlslangPath + ` overrides glslang.path.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return app.reportError(cmd, err, "auto")
			}
			path, _ := config.Locate(config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			showConfig(app.stdout, cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, created, err := config.CreateDefaultConfig("")
			if err != nil {
				return app.reportError(cmd, err, "auto")
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return app.reportError(cmd, err, "auto")
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

			active, err := config.Locate(config.LoadOptions{ConfigFilePath: rootFlags.configPath})
			if err != nil {
				return app.reportError(cmd, err, "auto")
			}
			if active == "" {
				active = "(none, using defaults)"
			}
			fmt.Fprintf(app.stdout, "Active file: %s\n", active)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, path string) {
	key := func(k string) string { return KeyStyle.Render(k) }
	val := func(v any) string { return SuccessStyle.Render(fmt.Sprint(v)) }
	none := SubtitleStyle.Render("(not set)")

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path == "" {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", key("Config file"), path)
	}

	fmt.Fprintf(w, "\n%s:\n", key("glslang"))
	if cfg.Glslang.Path == "" {
		fmt.Fprintf(w, "  path: %s\n", none)
	} else {
		fmt.Fprintf(w, "  path: %s\n", val(cfg.Glslang.Path))
	}
	fmt.Fprintf(w, "  binary: %s\n", val(cfg.Glslang.Binary))

	fmt.Fprintf(w, "\n%s:\n", key("shaders"))
	fmt.Fprintf(w, "  include_dirs: %s\n", listOrNone(cfg.Shaders.IncludeDirs, none))
	fmt.Fprintf(w, "  exclude: %s\n", listOrNone(cfg.Shaders.Exclude, none))

	fmt.Fprintf(w, "\n%s:\n", key("prebuild"))
	fmt.Fprintf(w, "  platform: %s\n", val(cfg.PreBuild.Platform))

	fmt.Fprintf(w, "\n%s:\n", key("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", val(cfg.UI.Verbose))
	fmt.Fprintf(w, "  color_scheme: %s\n", val(cfg.UI.ColorScheme))
}

func listOrNone(values []string, none string) string {
	if len(values) == 0 {
		return none
	}
	return SuccessStyle.Render(strings.Join(values, ", "))
}
