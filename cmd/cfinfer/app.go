// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/cfinfer/cfinfer/internal/command"
	"github.com/cfinfer/cfinfer/internal/config"
	"github.com/cfinfer/cfinfer/internal/issue"
	"github.com/cfinfer/cfinfer/pkg/checker"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra command handler receives an App reference and reads
	// configuration, writers and global flags through it.
	App struct {
		Config ConfigProvider
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer

		// Values of the persistent root flags.
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		Path(opts config.LoadOptions) (string, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}

	return &App{
		Config: deps.Config,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// loadOptions returns the config lookup options selected by the root flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath}
}

// loadConfig loads the configuration and turns failures into a renderable
// ServiceError.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, a.fail(err, issue.ConfigLoadFailedId)
	}
	return cfg, nil
}

// checkers returns the built-in registry extended with the descriptors
// declared in cfg.
func (a *App) checkers(cfg *config.Config) (*checker.Registry, error) {
	reg, err := checker.Builtin().With(cfg.Descriptors()...)
	if err != nil {
		return nil, a.fail(err, issue.ConfigLoadFailedId)
	}
	return reg, nil
}

// installLogger makes a charmbracelet/log logger on stderr the slog default.
// Verbose mode lowers the level to debug.
func (a *App) installLogger() *slog.Logger {
	level := log.WarnLevel
	if a.verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// toolchainFromConfig builds the toolchain locations. The environment has
// already been folded into cfg by the config loader; CLASSPATH is inherited.
func toolchainFromConfig(cfg *config.Config) command.Toolchain {
	return command.Toolchain{
		InferenceHome: cfg.Toolchain.InferenceHome,
		JavaHome:      cfg.Toolchain.JavaHome,
		AFUHome:       cfg.Toolchain.AFUHome,
		ClassPath:     os.Getenv("CLASSPATH"),
	}
}


