// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kakadu-engine/kbuild/internal/assetpath"
	"github.com/kakadu-engine/kbuild/internal/config"
	"github.com/kakadu-engine/kbuild/internal/glslinc"
	"github.com/kakadu-engine/kbuild/internal/issue"
	"github.com/kakadu-engine/kbuild/internal/pdbcopy"
	"github.com/kakadu-engine/kbuild/internal/shader"
	"github.com/kakadu-engine/kbuild/pkg/types"
)

// ServiceError is an error that carries an issue catalog entry for the CLI
// layer to render. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError attaches the matching catalog entry to well-known errors.
func classifyError(err error) error {
	var svcErr *ServiceError
	if err == nil || errors.As(err, &svcErr) {
		return err
	}

	var cfgErr *config.InvalidConfigError
	switch {
	case errors.Is(err, shader.ErrToolNotConfigured):
		return newServiceError(err, issue.GlslangNotConfiguredId)
	case errors.Is(err, assetpath.ErrAssetDirNotFound):
		return newServiceError(err, issue.AssetDirNotFoundId)
	case errors.Is(err, pdbcopy.ErrMissing):
		return newServiceError(err, issue.PDBMissingId)
	case errors.Is(err, glslinc.ErrIncludeNotFound):
		return newServiceError(err, issue.IncludeNotFoundId)
	case errors.Is(err, config.ErrInvalidConfig), errors.As(err, &cfgErr):
		return newServiceError(err, issue.ConfigLoadFailedId)
	default:
		return err
	}
}

// renderServiceError prints the catalog entry of svcErr, if any, in the
// given glamour style.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, style string) {
	if svcErr == nil || svcErr.IssueID == 0 {
		return
	}

	entry := issue.Get(svcErr.IssueID)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(style)
	if err != nil {
		slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", err)
		return
	}
	fmt.Fprint(stderr, rendered)
}

// reportError prints err for the user, with catalog help in verbose mode,
// and converts it into an ExitError so fang does not print it again.
func (a *App) reportError(cmd *cobra.Command, err error, style string) error {
	if err == nil {
		return nil
	}
	cmd.SilenceErrors = true
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return err
	}

	err = classifyError(err)
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose()))

	var svcErr *ServiceError
	if a.verbose() && errors.As(err, &svcErr) {
		renderServiceError(a.stderr, svcErr, style)
	}
	return &ExitError{Code: exitCodeOf(err)}
}

// exitCodeOf returns the exit code carried by err, or ExitFailure.
func exitCodeOf(err error) types.ExitCode {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && !exitErr.Code.IsSuccess() {
		return exitErr.Code
	}
	return types.ExitFailure
}
