// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/kakadu-engine/kbuild/internal/issue"
	"github.com/kakadu-engine/kbuild/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the kbuild command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "kbuild",
		Short: "Build-time tooling for the Kakadu engine",
		Long: TitleStyle.Render("kbuild") + SubtitleStyle.Render(" - Build-time tooling for the Kakadu engine") + `

kbuild runs the engine's pre-build and post-build steps: it link-checks
GLSL shader programs with glslangValidator, flattens #include directives,
generates the absolute asset path header and copies vendor PDB files.

` + SubtitleStyle.Render("Examples:") + `
  kbuild validate-shaders --scan-dir Engine/Engine/Asset/Shader
  kbuild prebuild --configuration Debug --outdir Bin/x64-Debug/Engine
  kbuild shaders list --scan-dir Engine/Engine/Asset/Shader
  kbuild config show`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.setVerbose(flags.verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/kbuild/config.cue)")

	rootCmd.AddCommand(
		newValidateShadersCommand(app, flags),
		newShadersCommand(app, flags),
		newGenerateAssetPathCommand(app),
		newCopyPDBCommand(app),
		newPreBuildCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's exit code. It is called
// by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(int(types.ExitFailure))
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}

// formatErrorForDisplay formats an error for user display. Actionable errors
// use their own formatting; verbose mode shows the full error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
