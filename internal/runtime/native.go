// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/cfinfer/cfinfer/pkg/types"
)

// NativeRuntime starts invocations as child processes.
type NativeRuntime struct{}

// NewNativeRuntime creates a new native runtime
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Execute prints the command line, runs the child with the context's stdio
// and waits for it. A child that ran and exited non-zero is reported through
// ExitCode only; Error is reserved for children that could not run.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	inv := ctx.Invocation
	announce(ctx.Stdout, "Executing command:", inv)

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	cmd := exec.CommandContext(execCtx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = ctx.Stdin
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	if len(inv.Env) > 0 {
		// exec keeps the last value of duplicated keys.
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	err := cmd.Run()
	if err == nil {
		return &Result{ExitCode: types.ExitSuccess}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return &Result{ExitCode: types.ExitCode(code)}
		}
		if ctxErr := execCtx.Err(); ctxErr != nil {
			return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("%s interrupted: %w", inv.Path, ctxErr)}
		}
		return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("%s: %w", inv.Path, err)}
	}
	return &Result{ExitCode: types.ExitFailure, Error: fmt.Errorf("failed to start %s: %w", inv.Path, err)}
}
