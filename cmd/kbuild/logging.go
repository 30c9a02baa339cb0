// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger returns the charm logger used as the slog handler. Diagnostics
// go to stderr so they never mix with tool output on stdout.
func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "kbuild",
		Level:  log.InfoLevel,
	})
}

func installLogger(logger *log.Logger) {
	slog.SetDefault(slog.New(logger))
}
