// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/kakadu-engine/kbuild/internal/config"
	"github.com/kakadu-engine/kbuild/internal/shader"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: every command handler receives an App and
	// reaches configuration, the validator invoker and output through it.
	App struct {
		Config  config.Provider
		Invoker shader.Invoker
		logger  *log.Logger
		stdout  io.Writer
		stderr  io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  config.Provider
		Invoker shader.Invoker
		Stdout  io.Writer
		Stderr  io.Writer
	}
)

// NewApp creates an App with defaults for omitted dependencies and installs
// its logger as the slog default.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Invoker == nil {
		deps.Invoker = shader.NewExecInvoker()
	}

	app := &App{
		Config:  deps.Config,
		Invoker: deps.Invoker,
		logger:  newLogger(deps.Stderr),
		stdout:  deps.Stdout,
		stderr:  deps.Stderr,
	}
	installLogger(app.logger)
	return app, nil
}

// loadConfig loads configuration honoring --config and applies ui.verbose
// when the flag was not given.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, err
	}
	if cfg.UI.Verbose && !flags.verbose {
		a.setVerbose(true)
	}
	return cfg, nil
}

func (a *App) setVerbose(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	a.logger.SetLevel(level)
}

func (a *App) verbose() bool {
	return a.logger.GetLevel() <= log.DebugLevel
}
