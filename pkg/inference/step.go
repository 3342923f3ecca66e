// SPDX-License-Identifier: MPL-2.0

package inference

import (
	"errors"
	"fmt"
)

const (
	// StepGenerate runs InferenceCli to generate and solve constraints.
	StepGenerate Step = "generate"
	// StepTypecheck runs the packaged checker as an annotation processor.
	StepTypecheck Step = "typecheck"
	// StepInsertJaif inserts the solved annotations into the sources.
	StepInsertJaif Step = "insert-jaif"
	// StepFloodSolve is the legacy generate variant pinned to the propagation solver.
	StepFloodSolve Step = "floodsolve"
)

// ErrInvalidStep is the sentinel error wrapped by InvalidStepError.
var ErrInvalidStep = errors.New("invalid step")

type (
	// Step names one stage of the pipeline.
	Step string

	// InvalidStepError is returned when a Step is not one of Steps().
	InvalidStepError struct {
		Value Step
	}
)

// Steps returns the full step vocabulary.
func Steps() []Step {
	return []Step{StepGenerate, StepTypecheck, StepInsertJaif, StepFloodSolve}
}

// Validate returns an *InvalidStepError if s is not in the vocabulary.
func (s Step) Validate() error {
	switch s {
	case StepGenerate, StepTypecheck, StepInsertJaif, StepFloodSolve:
		return nil
	default:
		return &InvalidStepError{Value: s}
	}
}

// RunsJava reports whether the step launches a JVM and therefore needs the
// inference distribution classpath and JAVA_HOME.
func (s Step) RunsJava() bool {
	switch s {
	case StepGenerate, StepTypecheck, StepFloodSolve:
		return true
	default:
		return false
	}
}

// String returns the step name.
func (s Step) String() string { return string(s) }

// Error implements the error interface.
func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("unknown step %q (known steps: %s)", e.Value, joinValues(Steps()))
}

// Unwrap returns ErrInvalidStep for errors.Is() compatibility.
func (e *InvalidStepError) Unwrap() error { return ErrInvalidStep }
