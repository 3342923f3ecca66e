// SPDX-License-Identifier: MPL-2.0

package inference

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// DefaultXmx is the JVM max heap used when --xmx is not given.
	DefaultXmx = "2048m"
	// DefaultOutputDir receives the solution artifact and annotated sources.
	DefaultOutputDir = "./output"
	// StepSeparator delimits the explicit --steps list.
	StepSeparator = ","
)

var (
	// ErrInvalidRunConfig is the sentinel error wrapped by InvalidRunConfigError.
	ErrInvalidRunConfig = errors.New("invalid run configuration")
	// ErrSolverInTypecheck is reported when a solver is combined with ModeTypecheck.
	ErrSolverInTypecheck = errors.New("solver is unused in typecheck mode")
	// ErrMissingChecker is reported when no checker was selected.
	ErrMissingChecker = errors.New("a checker is required")
	// ErrNoInputFiles is reported when no source file was given.
	ErrNoInputFiles = errors.New("at least one source file is required")
)

type (
	// RunConfig holds every setting of a single pipeline run. It is assembled
	// once from the command line and passed by value; nothing downstream
	// modifies it.
	RunConfig struct {
		// Checker is the checker short name or fully qualified class.
		Checker string
		// Solver overrides the checker's default solver.
		Solver string
		// Stubs is a stub file passed to the checker.
		Stubs string
		// ExtraClasspath is appended to the JVM classpath (and to CLASSPATH for insertion).
		ExtraClasspath string
		// JavaArgs are extra JVM options, split with shell word rules.
		JavaArgs string
		// ProgArgs are extra program arguments, split with shell word rules.
		ProgArgs string
		// Xmx is the JVM max heap size (e.g. "2048m").
		Xmx string
		// LogLevel is forwarded to the Java side.
		LogLevel LogLevel
		// Mode selects the canonical pipeline.
		Mode Mode
		// Steps is the raw comma-separated --steps override; empty means use Mode.
		Steps string
		// OutputDir receives default.jaif and annotated sources.
		OutputDir string
		// Debug makes the JVM wait for a debugger on port 5005.
		Debug bool
		// NotStrict relaxes checker strictness and downgrades failing steps to warnings.
		NotStrict bool
		// PrintWorld asks the inference side to dump its constraint world.
		PrintWorld bool
		// InPlace makes annotation insertion overwrite the original sources.
		InPlace bool
		// PrintOnly renders commands without running them.
		PrintOnly bool
		// Files are the source files given on the command line.
		Files []string
	}

	// InvalidRunConfigError collects every field-level problem found by
	// RunConfig.Validate. errors.Is matches ErrInvalidRunConfig and each
	// field error's own sentinel.
	InvalidRunConfigError struct {
		FieldErrors []error
	}
)

// WithDefaults returns a copy of c with empty settings replaced by package defaults.
func (c RunConfig) WithDefaults() RunConfig {
	if c.Mode == "" {
		c.Mode = DefaultMode
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Xmx == "" {
		c.Xmx = DefaultXmx
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	c.Files = slices.Clone(c.Files)
	return c
}

// Validate checks the configuration before anything is built or spawned.
func (c RunConfig) Validate() error {
	var errs []error
	if err := c.Mode.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Mode == ModeTypecheck && c.Solver != "" {
		errs = append(errs, ErrSolverInTypecheck)
	}
	if strings.TrimSpace(c.Checker) == "" {
		errs = append(errs, ErrMissingChecker)
	}
	if len(c.Files) == 0 {
		errs = append(errs, ErrNoInputFiles)
	}
	if _, err := c.ExplicitSteps(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidRunConfigError{FieldErrors: errs}
	}
	return nil
}

// ExplicitSteps parses the --steps override. Items are trimmed and empty
// items dropped; a nil slice means no override was given.
func (c RunConfig) ExplicitSteps() ([]Step, error) {
	if strings.TrimSpace(c.Steps) == "" {
		return nil, nil
	}
	var steps []Step
	for item := range strings.SplitSeq(c.Steps, StepSeparator) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		step := Step(item)
		if err := step.Validate(); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// Error implements the error interface.
func (e *InvalidRunConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRunConfig, strings.Join(msgs, "; "))
}

// Unwrap exposes ErrInvalidRunConfig and every field error to errors.Is/As.
func (e *InvalidRunConfigError) Unwrap() []error {
	return append([]error{ErrInvalidRunConfig}, e.FieldErrors...)
}
