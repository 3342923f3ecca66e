// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cfinfer/cfinfer/internal/command"
	"github.com/cfinfer/cfinfer/internal/runtime"
	"github.com/cfinfer/cfinfer/pkg/checker"
	"github.com/cfinfer/cfinfer/pkg/inference"
	"github.com/cfinfer/cfinfer/pkg/types"

	"github.com/google/uuid"
)

var (
	// ErrStepFailed is wrapped by StepError.
	ErrStepFailed = errors.New("step failed")
	// ErrSolutionMissing is returned when constraint generation left no solution file.
	ErrSolutionMissing = errors.New("solution file missing")
)

type (
	// StepError reports a step whose child could not run or exited non-zero.
	StepError struct {
		Step       inference.Step
		Invocation command.Invocation
		ExitCode   types.ExitCode
		// Err is set when the child could not be started.
		Err error
	}

	// Driver runs pipelines against one toolchain.
	Driver struct {
		toolchain command.Toolchain
		registry  *runtime.Registry
		workDir   string
		stdout    io.Writer
		stderr    io.Writer
		stdin     io.Reader
		logger    *slog.Logger
	}

	// Option configures a Driver.
	Option func(*Driver)
)

// WithWorkDir sets the directory the children run in. Relative input files
// and output directories are resolved against it. Empty means the current
// directory.
func WithWorkDir(dir string) Option {
	return func(d *Driver) { d.workDir = dir }
}

// WithIO overrides the standard streams handed to children and used for
// step banners.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(d *Driver) {
		d.stdin, d.stdout, d.stderr = stdin, stdout, stderr
	}
}

// WithRegistry replaces the runtime registry.
func WithRegistry(r *runtime.Registry) Option {
	return func(d *Driver) { d.registry = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// NewDriver creates a Driver for tc.
func NewDriver(tc command.Toolchain, opts ...Option) *Driver {
	d := &Driver{
		toolchain: tc,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = runtime.DefaultRegistry(d.stdout)
	}
	return d
}

// Run executes the pipeline selected by cfg and returns the final state.
// Configuration problems are reported before any child starts; the first
// failing step aborts the run unless cfg.NotStrict is set.
func (d *Driver) Run(ctx context.Context, cfg inference.RunConfig, desc checker.Descriptor) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	explicit, err := cfg.ExplicitSteps()
	if err != nil {
		return nil, err
	}
	queue, err := Resolve(cfg.Mode, explicit)
	if err != nil {
		return nil, err
	}

	builder := command.NewBuilder(d.toolchain, d.workDir)
	if err := builder.Prepare(queue.Steps()); err != nil {
		return nil, err
	}

	rt, err := d.registry.ForPrintOnly(cfg.PrintOnly)
	if err != nil {
		return nil, err
	}

	logger := d.logger.With("run_id", uuid.NewString())
	logger.Debug("pipeline resolved",
		"mode", cfg.Mode, "steps", queue.Steps(), "checker", desc.Checker, "runtime", rt.Name())

	state := NewState(d.resolveAll(cfg.Files))
	outDir := d.resolve(cfg.OutputDir)

	for {
		step, ok := queue.Pop()
		if !ok {
			break
		}
		fmt.Fprintf(d.stdout, "\n==== Executing step %s\n", step)

		if !cfg.PrintOnly {
			if err := state.Verify(); err != nil {
				return state, err
			}
		}

		inv, err := builder.Build(command.Request{Step: step, Config: cfg, Checker: desc, Files: state.Files()})
		if err != nil {
			return state, err
		}

		ectx := runtime.NewExecutionContext(ctx, inv)
		ectx.Stdin, ectx.Stdout, ectx.Stderr = d.stdin, d.stdout, d.stderr

		logger.Debug("executing step", "step", step, "command", inv.String())
		result := rt.Execute(ectx)

		if result.Error != nil {
			return state, &StepError{Step: step, Invocation: inv, ExitCode: result.ExitCode, Err: result.Error}
		}
		if !result.Success() {
			if !cfg.NotStrict {
				return state, &StepError{Step: step, Invocation: inv, ExitCode: result.ExitCode}
			}
			logger.Warn("step exited with non-zero status, continuing", "step", step, "exit_code", int(result.ExitCode))
		}

		if err := d.handOff(step, cfg, state, outDir); err != nil {
			return state, err
		}
		logger.Debug("step finished", "step", step, "files", state.Files())
	}

	return state, nil
}

// handOff applies the filesystem and state effects that follow a step.
// Print-only runs keep only the state rewrites.
func (d *Driver) handOff(step inference.Step, cfg inference.RunConfig, state *State, outDir string) error {
	switch step {
	case inference.StepGenerate:
		if cfg.PrintOnly {
			return nil
		}
		return d.persistSolution(outDir)

	case inference.StepFloodSolve:
		if !cfg.PrintOnly {
			if err := d.persistSolution(outDir); err != nil {
				return err
			}
			for _, f := range state.Files() {
				if err := copyFile(f, filepath.Join(outDir, filepath.Base(f))); err != nil {
					return err
				}
			}
		}
		state.Relocate(outDir)

	case inference.StepInsertJaif:
		if !cfg.InPlace {
			state.Relocate(outDir)
		}

	case inference.StepTypecheck:
	}
	return nil
}

// persistSolution copies the solution file from the working directory into outDir.
func (d *Driver) persistSolution(outDir string) error {
	src := d.resolve(command.JaifName)
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: %s", ErrSolutionMissing, src)
	}
	return copyFile(src, filepath.Join(outDir, command.JaifName))
}

func (d *Driver) resolve(p string) string {
	if d.workDir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.workDir, p)
}

func (d *Driver) resolveAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = d.resolve(p)
	}
	return out
}

// copyFile copies src to dst, creating dst's directory.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %s: command exited with unexpected status code: %d", e.Step, e.ExitCode)
}

// Unwrap exposes ErrStepFailed and the start error, if any.
func (e *StepError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrStepFailed, e.Err}
	}
	return []error{ErrStepFailed}
}
