// SPDX-License-Identifier: MPL-2.0

package shader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kakadu-engine/kbuild/pkg/platform"
)

// ValidatorVersion is the version of the validation contract printed by
// `kbuild validate-shaders --version`.
const ValidatorVersion = "2"

const (
	// OutcomeSkipped means no validator installation was configured.
	OutcomeSkipped Outcome = iota
	// OutcomeNothingToValidate means the scan root was missing or held no
	// .vert/.frag files.
	OutcomeNothingToValidate
	// OutcomePassed means every program linked.
	OutcomePassed
	// OutcomeFailed means at least one program failed.
	OutcomeFailed
)

// ErrToolNotConfigured is returned by ToolPath when no installation
// directory is known.
var ErrToolNotConfigured = errors.New("glslang installation directory not configured")

type (
	// Outcome classifies a validation run.
	Outcome int

	// RunOptions are the inputs of one validation pass.
	RunOptions struct {
		// ToolDir is the glslang installation directory. Empty skips the run.
		ToolDir string
		// ToolBinary is the executable name inside ToolDir.
		ToolBinary string
		// ScanDir is the directory to scan for stage files.
		ScanDir string
		// IncludeDirs are appended to the include search path in order.
		IncludeDirs []string
		// Exclude holds doublestar globs of stage files to skip.
		Exclude []string
		// Invoker runs the tool. Nil uses an ExecInvoker.
		Invoker Invoker
		// Out receives per-program failure diagnostics.
		Out io.Writer
	}

	// RunResult describes a completed pass.
	RunResult struct {
		Outcome     Outcome
		ScanRoot    string
		ToolPath    string
		Discovery   *Discovery
		IncludePath []string
		Report      Report
	}
)

// String returns a lower-case name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNothingToValidate:
		return "nothing-to-validate"
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Success reports whether the outcome maps to exit status 0.
func (o Outcome) Success() bool {
	return o != OutcomeFailed
}

// ToolPath returns the validator executable inside dir, adding .exe on
// Windows.
func ToolPath(dir, binary string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", ErrToolNotConfigured
	}
	if binary == "" {
		binary = "glslangValidator"
	}
	return filepath.Join(dir, platform.ExecutableName(runtime.GOOS, binary)), nil
}

// Run performs one gated validation pass: skip when the tool is not
// configured, succeed trivially when there is nothing to validate, otherwise
// discover, build the include search path and validate every program.
func Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	toolPath, err := ToolPath(opts.ToolDir, opts.ToolBinary)
	if errors.Is(err, ErrToolNotConfigured) {
		return RunResult{Outcome: OutcomeSkipped}, nil
	}

	disc, err := Discover(opts.ScanDir, DiscoverOptions{Exclude: opts.Exclude})
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{ScanRoot: disc.Root, ToolPath: toolPath, Discovery: disc}
	if disc.Empty() {
		result.Outcome = OutcomeNothingToValidate
		return result, nil
	}

	result.IncludePath, err = BuildIncludeSearchPath(disc.Root, disc.Dirs, opts.IncludeDirs)
	if err != nil {
		return RunResult{}, err
	}

	invoker := opts.Invoker
	if invoker == nil {
		invoker = NewExecInvoker()
	}

	v := &Validator{Invoker: invoker, ToolPath: toolPath, Out: opts.Out}
	result.Report = v.ValidatePrograms(ctx, disc.Programs, result.IncludePath)

	result.Outcome = OutcomePassed
	if !result.Report.OK() {
		result.Outcome = OutcomeFailed
	}
	slog.Debug("shader validation finished", "outcome", result.Outcome, "programs", len(result.Report.Results))
	return result, nil
}
