// SPDX-License-Identifier: MPL-2.0

package runtime

import "io"

// DryRunRuntime prints invocations instead of running them.
type DryRunRuntime struct {
	out io.Writer
}

// NewDryRunRuntime creates a dry-run runtime announcing on out. A nil out
// falls back to the execution context's Stdout.
func NewDryRunRuntime(out io.Writer) *DryRunRuntime {
	return &DryRunRuntime{out: out}
}

func (r *DryRunRuntime) Name() string {
	return string(RuntimeTypeDryRun)
}

// Execute always succeeds.
func (r *DryRunRuntime) Execute(ctx *ExecutionContext) *Result {
	out := r.out
	if out == nil {
		out = ctx.Stdout
	}
	announce(out, "Would have executed command:", ctx.Invocation)
	return &Result{}
}
