// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kakadu-engine/kbuild/internal/prebuild"
)

// Environment variables set by MSBuild for pre-build events.
const (
	envSolutionDir   = "SolutionDir"
	envOutDir        = "OutDir"
	envConfiguration = "Configuration"
)

func newPreBuildCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "prebuild",
		Short: "Run the engine's pre-build steps",
		Long: `Run the engine's pre-build steps in order:

  1. Generate the engine absolute asset path header.
  2. For Debug and ASan configurations, copy vendor PDB files into the
     output directory.

Each flag defaults to the matching MSBuild environment variable
(` + envSolutionDir + `, ` + envOutDir + `, ` + envConfiguration + `). The solution dir falls back to
the working directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return app.reportError(cmd, err, "auto")
			}

			opts := prebuild.Options{
				SolutionDir:   trimmed(v, "solution-dir"),
				OutDir:        trimmed(v, "outdir"),
				Configuration: trimmed(v, "configuration"),
				Platform:      cfg.PreBuild.Platform,
			}
			if err := prebuild.Run(cmd.Context(), opts, app.stdout, app.stderr); err != nil {
				// The failed step was already reported on stderr.
				cmd.SilenceErrors = true
				return exitFailure(nil)
			}
			return nil
		},
	}

	cmd.Flags().String("solution-dir", "", "solution root (default $"+envSolutionDir+" or the working directory)")
	cmd.Flags().String("outdir", "", "build output directory for PDB copies (default $"+envOutDir+")")
	cmd.Flags().String("configuration", "", "build configuration, e.g. Debug or Release (default $"+envConfiguration+")")

	for key, env := range map[string]string{
		"solution-dir":  envSolutionDir,
		"outdir":        envOutDir,
		"configuration": envConfiguration,
	} {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(key))
		_ = v.BindEnv(key, env)
	}

	return cmd
}

// trimmed returns the viper value for key with surrounding whitespace
// removed, so a blank environment variable counts as unset.
func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}
