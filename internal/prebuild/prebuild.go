// SPDX-License-Identifier: MPL-2.0

package prebuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kakadu-engine/kbuild/internal/assetpath"
	"github.com/kakadu-engine/kbuild/internal/pdbcopy"
)

const (
	// DescGenerateAssetPath describes the asset path step.
	DescGenerateAssetPath = "Generating engine absolute asset path."
	// DescCopyPDB describes the PDB copy step.
	DescCopyPDB = "Copying 3rd party lib. PDB files."

	// DefaultPlatform is used when Options.Platform is empty.
	DefaultPlatform = "x64"

	// StepCount is the step total printed in progress headers. It counts
	// every step the driver knows, so Release builds print 1/2 as well.
	StepCount = 2
)

// ErrOutDirRequired is returned by the PDB step when no out dir was given.
var ErrOutDirRequired = errors.New("out dir is required to copy PDB files")

// Options are the inputs of one pre-build run.
type Options struct {
	// SolutionDir is the solution root. Empty uses the working directory.
	SolutionDir string
	// OutDir receives PDB copies. Only needed for debug-like configurations.
	OutDir string
	// Configuration is the build configuration name, e.g. Debug or Release.
	Configuration string
	// Platform selects the vendor library folders. Empty uses x64.
	Platform string
	// AssetPath tunes asset directory expansion.
	AssetPath assetpath.Options
}

// CopiesPDBs reports whether configuration needs vendor PDB files: Debug,
// or any configuration containing "asan", compared case-insensitively.
func CopiesPDBs(configuration string) bool {
	cfg := strings.ToLower(strings.TrimSpace(configuration))
	return cfg == "debug" || strings.Contains(cfg, "asan")
}

// EngineAssetDir returns the engine asset directory inside solutionDir.
func EngineAssetDir(solutionDir string) string {
	return filepath.Join(solutionDir, "Engine", "Engine", "Asset")
}

// Plan returns the steps a run with opts performs, in order.
func Plan(opts Options) ([]Step, error) {
	sol, err := solutionDir(opts.SolutionDir)
	if err != nil {
		return nil, err
	}

	steps := []Step{{
		Description: DescGenerateAssetPath,
		Run: func(_ context.Context, out io.Writer) error {
			header, err := assetpath.Generate(EngineAssetDir(sol), opts.AssetPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Generated: %s\n", header)
			return nil
		},
	}}

	if CopiesPDBs(opts.Configuration) {
		platform := opts.Platform
		if platform == "" {
			platform = DefaultPlatform
		}
		steps = append(steps, Step{
			Description: DescCopyPDB,
			Run: func(_ context.Context, out io.Writer) error {
				if strings.TrimSpace(opts.OutDir) == "" {
					return ErrOutDirRequired
				}
				outDir, err := filepath.Abs(opts.OutDir)
				if err != nil {
					return fmt.Errorf("resolving out dir: %w", err)
				}
				if _, err := pdbcopy.Copy(sol, platform, outDir); err != nil {
					return err
				}
				fmt.Fprintln(out, "Done.")
				return nil
			},
		})
	}
	return steps, nil
}

// Run plans and executes the pre-build steps, stopping at the first
// failure. Progress goes to out and failure lines to errOut.
func Run(ctx context.Context, opts Options, out, errOut io.Writer) error {
	steps, err := Plan(opts)
	if err != nil {
		return err
	}
	slog.Debug("pre-build planned", "steps", len(steps), "configuration", opts.Configuration)

	if out == nil {
		out = io.Discard
	}
	fmt.Fprintln(out)
	seq := NewSequence(StepCount, out, errOut)
	for _, step := range steps {
		if err := seq.Run(ctx, step); err != nil {
			return err
		}
	}
	slog.Debug("pre-build finished", "ran", seq.Index(), "of", seq.Count())
	fmt.Fprintln(out)
	return nil
}

func solutionDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving solution dir: %w", err)
	}
	return abs, nil
}
