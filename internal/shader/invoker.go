// SPDX-License-Identifier: MPL-2.0

package shader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/kakadu-engine/kbuild/pkg/types"
)

type (
	// Invoker runs an external tool to completion and captures its output.
	// A non-zero exit status is reported through InvokeResult.ExitCode; the
	// error return is reserved for failures to run the tool at all.
	Invoker interface {
		Invoke(ctx context.Context, name string, args []string) (InvokeResult, error)
	}

	// InvokeResult is the captured outcome of one tool run.
	InvokeResult struct {
		ExitCode types.ExitCode
		Stdout   []byte
		Stderr   []byte
	}

	// ExecInvoker runs tools as child processes.
	ExecInvoker struct {
		// Dir is the working directory; empty means the current directory.
		Dir string
	}
)

// NewExecInvoker returns an Invoker backed by os/exec.
func NewExecInvoker() *ExecInvoker {
	return &ExecInvoker{}
}

// Invoke runs name with args and waits for it to exit.
func (e *ExecInvoker) Invoke(ctx context.Context, name string, args []string) (InvokeResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := InvokeResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = types.ExitCode(exitErr.ExitCode())
		if result.ExitCode < 0 {
			// Terminated by a signal.
			result.ExitCode = types.ExitFailure
		}
		return result, nil
	}

	return result, fmt.Errorf("failed to run %s: %w", name, err)
}
