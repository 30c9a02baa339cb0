// SPDX-License-Identifier: MPL-2.0

package shader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kakadu-engine/kbuild/pkg/types"
)

type (
	// Validator link-checks programs with glslangValidator.
	Validator struct {
		// Invoker runs the tool.
		Invoker Invoker
		// ToolPath is the validator executable.
		ToolPath string
		// Out receives tool output and an error line for each failing
		// program. Nil discards it.
		Out io.Writer
	}

	// ProgramResult is the outcome of validating one program.
	ProgramResult struct {
		Key      string
		Args     []string
		ExitCode types.ExitCode
		Stdout   []byte
		Stderr   []byte
		// Err is set when the tool could not be run.
		Err error
	}

	// Report collects per-program results in validation order.
	Report struct {
		Results []ProgramResult
	}
)

// Failed reports whether the program did not link.
func (r ProgramResult) Failed() bool {
	return r.Err != nil || !r.ExitCode.IsSuccess()
}

// OK reports whether every program passed. An empty report is OK.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if res.Failed() {
			return false
		}
	}
	return true
}

// Failures returns the failed results.
func (r Report) Failures() []ProgramResult {
	var out []ProgramResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// ValidatorArgs builds the glslangValidator command line for one program:
// the stage files, one -I<dir> per include directory, then -l to link the
// stages into a whole program.
func ValidatorArgs(stageFiles, includeSearchPath []string) []string {
	args := make([]string, 0, len(stageFiles)+len(includeSearchPath)+1)
	args = append(args, stageFiles...)
	for _, dir := range includeSearchPath {
		args = append(args, "-I"+dir)
	}
	return append(args, "-l")
}

// ValidatePrograms invokes the tool once per program, in order. A failing
// program does not stop the run.
func (v *Validator) ValidatePrograms(ctx context.Context, programs *ProgramSet, includeSearchPath []string) Report {
	out := v.Out
	if out == nil {
		out = io.Discard
	}

	report := Report{Results: make([]ProgramResult, 0, programs.Len())}
	for _, prog := range programs.Programs() {
		args := ValidatorArgs(prog.Paths(), includeSearchPath)
		slog.Debug("validating shader program", "program", prog.Key, "tool", v.ToolPath, "args", args)

		res, err := v.Invoker.Invoke(ctx, v.ToolPath, args)
		pr := ProgramResult{
			Key:      prog.Key,
			Args:     args,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			Err:      err,
		}
		report.Results = append(report.Results, pr)

		if pr.Failed() {
			writeFailure(out, pr)
		}
	}
	return report
}

func writeFailure(w io.Writer, pr ProgramResult) {
	writeBlock(w, pr.Stdout)
	writeBlock(w, pr.Stderr)
	if pr.Err != nil {
		fmt.Fprintf(w, "error: %v\n", pr.Err)
	}
	fmt.Fprintf(w, "error: Shader program %q failed to link/validate.\n\n", pr.Key)
}

func writeBlock(w io.Writer, b []byte) {
	if len(b) == 0 {
		return
	}
	_, _ = w.Write(b)
	if !bytes.HasSuffix(b, []byte("\n")) {
		_, _ = io.WriteString(w, "\n")
	}
}
