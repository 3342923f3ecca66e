// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"slices"

	"github.com/cfinfer/cfinfer/pkg/inference"
)

// modePipelines is the canonical step sequence of each mode.
var modePipelines = map[inference.Mode][]inference.Step{
	inference.ModeInfer:              {inference.StepGenerate},
	inference.ModeTypecheck:          {inference.StepTypecheck},
	inference.ModeRoundtrip:          {inference.StepGenerate, inference.StepInsertJaif},
	inference.ModeRoundtripTypecheck: {inference.StepGenerate, inference.StepInsertJaif, inference.StepTypecheck},
}

// Queue is a FIFO of steps consumed with Pop.
type Queue struct {
	steps []inference.Step
}

// Resolve returns the steps to run. A non-empty explicit list is used
// verbatim and bypasses the mode table.
func Resolve(mode inference.Mode, explicit []inference.Step) (*Queue, error) {
	if len(explicit) > 0 {
		for _, step := range explicit {
			if err := step.Validate(); err != nil {
				return nil, err
			}
		}
		return &Queue{steps: slices.Clone(explicit)}, nil
	}

	steps, ok := modePipelines[mode]
	if !ok {
		return nil, &inference.InvalidModeError{Value: mode}
	}
	return &Queue{steps: slices.Clone(steps)}, nil
}

// Pop removes and returns the next step.
func (q *Queue) Pop() (inference.Step, bool) {
	if len(q.steps) == 0 {
		return "", false
	}
	step := q.steps[0]
	q.steps = q.steps[1:]
	return step, true
}

// Len returns the number of steps left.
func (q *Queue) Len() int {
	return len(q.steps)
}

// Steps returns the steps left without consuming them.
func (q *Queue) Steps() []inference.Step {
	return slices.Clone(q.steps)
}
