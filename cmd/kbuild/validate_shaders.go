// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kakadu-engine/kbuild/internal/config"
	"github.com/kakadu-engine/kbuild/internal/issue"
	"github.com/kakadu-engine/kbuild/internal/shader"
	"github.com/kakadu-engine/kbuild/internal/watch"
	"github.com/kakadu-engine/kbuild/pkg/types"
)

var errValidationFailed = errors.New("some shaders have validation errors")

type validateShadersFlags struct {
	scanDir     string
	includeDirs []string
	exclude     []string
	watch       bool
	version     bool
}

func newValidateShadersCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &validateShadersFlags{}

	cmd := &cobra.Command{
		Use:   "validate-shaders",
		Short: "Link-check every shader program with glslangValidator",
		Long: `Link-check every shader program under a directory with glslangValidator.

Stage files (.vert, .frag) that share a path and base name form one program
and are validated together. Validation is skipped when no glslang
installation is configured (` + config.EnvGlslangPath + ` or glslang.path).`,
		Example: `  kbuild validate-shaders --scan-dir Engine/Engine/Asset/Shader
  kbuild validate-shaders --scan-dir Shader --include-dir Shader/Include --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.version {
				fmt.Fprintln(app.stdout, shader.ValidatorVersion)
				return nil
			}
			if strings.TrimSpace(flags.scanDir) == "" {
				return errors.New(`required flag "scan-dir" not set`)
			}

			cfg, err := loadValidateConfig(cmd.Context(), app, rootFlags)
			if err != nil {
				return app.reportError(cmd, err, config.ColorSchemeAuto.GlamourStyle())
			}
			opts := validateOptions(cfg, flags, app)
			style := cfg.UI.ColorScheme.GlamourStyle()

			if flags.watch {
				return app.reportError(cmd, runValidateWatch(cmd.Context(), app, opts, style), style)
			}
			return app.reportError(cmd, runValidatePass(cmd.Context(), app, opts, style), style)
		},
	}

	cmd.Flags().StringVar(&flags.scanDir, "scan-dir", "", "directory to scan for .vert/.frag shader stages (required)")
	cmd.Flags().StringArrayVar(&flags.includeDirs, "include-dir", nil, "extra #include search directory (repeatable)")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "glob of stage files to skip, relative to the scan dir (repeatable)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "re-validate whenever shader sources change")
	cmd.Flags().BoolVar(&flags.version, "version", false, "print the validator version and exit")

	return cmd
}

// loadValidateConfig loads the configuration. A broken config file only fails
// the command when GLSLANG_PATH is set: without it the tool location is
// unknown and the run is skipped anyway, so defaults are used instead.
func loadValidateConfig(ctx context.Context, app *App, rootFlags *rootFlagValues) (*config.Config, error) {
	cfg, err := app.loadConfig(ctx, rootFlags)
	if err == nil {
		return cfg, nil
	}
	if strings.TrimSpace(os.Getenv(config.EnvGlslangPath)) != "" {
		return nil, err
	}
	slog.Warn("ignoring configuration, "+config.EnvGlslangPath+" is not set", "error", err)
	return config.DefaultConfig(), nil
}

// validateOptions merges flags with configuration. Configured include dirs
// and excludes follow the command-line ones.
func validateOptions(cfg *config.Config, flags *validateShadersFlags, app *App) shader.RunOptions {
	return shader.RunOptions{
		ToolDir:     cfg.Glslang.Path,
		ToolBinary:  cfg.Glslang.Binary,
		ScanDir:     flags.scanDir,
		IncludeDirs: slices.Concat(flags.includeDirs, cfg.Shaders.IncludeDirs),
		Exclude:     slices.Concat(flags.exclude, cfg.Shaders.Exclude),
		Invoker:     app.Invoker,
		Out:         app.stdout,
	}
}

// runValidatePass runs one validation pass and prints its summary. A failed
// pass returns an ExitError whose message was already printed.
func runValidatePass(ctx context.Context, app *App, opts shader.RunOptions, style string) error {
	if strings.TrimSpace(opts.ToolDir) != "" {
		fmt.Fprintf(app.stdout, "\nkbuild validate-shaders (v%s): Validating GLSL shaders in %q via glslangValidator...\n",
			shader.ValidatorVersion, absOrSelf(opts.ScanDir))
	}

	res, err := shader.Run(ctx, opts)
	if err != nil {
		return err
	}
	printOutcome(app.stdout, res)

	if app.verbose() {
		switch res.Outcome {
		case shader.OutcomeSkipped:
			renderServiceError(app.stderr, newServiceError(shader.ErrToolNotConfigured, issue.GlslangNotConfiguredId), style)
		case shader.OutcomeFailed:
			fmt.Fprintln(app.stderr, WarningStyle.Render("Failed programs:"))
			for _, failed := range res.Report.Failures() {
				fmt.Fprintf(app.stderr, "  - %s\n", failed.Key)
			}
			renderServiceError(app.stderr, newServiceError(errValidationFailed, issue.ShaderValidationFailedId), style)
		}
	}
	if !res.Outcome.Success() {
		return &ExitError{Code: types.ExitFailure}
	}
	return nil
}

func printOutcome(w io.Writer, res shader.RunResult) {
	switch res.Outcome {
	case shader.OutcomeSkipped:
		fmt.Fprintf(w, "Environment variable %q is not defined. Skipping post-build shader validation.\n\n", config.EnvGlslangPath)
	case shader.OutcomeNothingToValidate:
		fmt.Fprintf(w, "No .vert/.frag found under: %s\n\n", res.ScanRoot)
	case shader.OutcomePassed:
		fmt.Fprintln(w, "kbuild validate-shaders: All shaders validated successfully.")
		fmt.Fprintln(w)
	case shader.OutcomeFailed:
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Error: kbuild validate-shaders: Some shaders have validation errors.")
		fmt.Fprintln(w)
	}
}

// runValidateWatch runs one pass, then re-runs whole passes whenever shader
// sources under the scan dir change, until the context is cancelled. Without
// a configured tool it prints the skip notice and returns without watching.
func runValidateWatch(ctx context.Context, app *App, opts shader.RunOptions, style string) error {
	if strings.TrimSpace(opts.ToolDir) == "" {
		return runValidatePass(ctx, app, opts, style)
	}

	pass := func(ctx context.Context, changed []string) error {
		if len(changed) > 0 {
			slog.Info("shader sources changed", "files", len(changed))
		}
		if err := runValidatePass(ctx, app, opts, style); err != nil {
			var exitErr *ExitError
			if errors.As(err, &exitErr) && exitErr.Err == nil {
				return nil
			}
			return err
		}
		return nil
	}

	w, err := watch.New(watch.Config{
		BaseDir:  opts.ScanDir,
		Ignore:   opts.Exclude,
		OnChange: pass,
	})
	if err != nil {
		return err
	}
	if err := pass(ctx, nil); err != nil {
		return err
	}
	slog.Info("watching shader sources", "dir", w.BaseDir())
	return w.Run(ctx)
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
