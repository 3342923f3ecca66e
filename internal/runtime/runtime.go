// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cfinfer/cfinfer/internal/command"
	"github.com/cfinfer/cfinfer/pkg/types"
)

// Runtime type constants for the supported execution modes.
const (
	RuntimeTypeNative RuntimeType = "native"
	RuntimeTypeDryRun RuntimeType = "dry-run"
)

type (
	// ExecutionContext contains all information needed to execute one step.
	ExecutionContext struct {
		// Context cancels the running child.
		Context context.Context
		// Invocation is the process to run.
		Invocation command.Invocation
		// Stdout receives the announcement line and the child's standard output.
		Stdout io.Writer
		// Stderr receives the child's standard error.
		Stderr io.Writer
		// Stdin is connected to the child.
		Stdin io.Reader
	}

	// Result contains the result of a step execution
	Result struct {
		// ExitCode is the exit code of the child
		ExitCode types.ExitCode
		// Error is set when the child could not be started or waited for
		Error error
	}

	// Runtime defines the interface for step execution
	Runtime interface {
		// Name returns the runtime name
		Name() string
		// Execute runs the invocation. It never returns nil.
		Execute(ctx *ExecutionContext) *Result
	}

	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// Registry holds all available runtimes
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext creates an execution context wired to the process stdio.
func NewExecutionContext(ctx context.Context, inv command.Invocation) *ExecutionContext {
	return &ExecutionContext{
		Context:    ctx,
		Invocation: inv,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Stdin:      os.Stdin,
	}
}

// Success returns true if the step executed successfully
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// NewRegistry creates a new runtime registry
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// DefaultRegistry registers the native runtime and a dry-run runtime that
// announces on out.
func DefaultRegistry(out io.Writer) *Registry {
	r := NewRegistry()
	r.Register(RuntimeTypeNative, NewNativeRuntime())
	r.Register(RuntimeTypeDryRun, NewDryRunRuntime(out))
	return r
}

// Register adds a runtime to the registry
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered", typ)
	}
	return rt, nil
}

// ForPrintOnly returns the dry-run runtime when printOnly is set and the native one otherwise.
func (r *Registry) ForPrintOnly(printOnly bool) (Runtime, error) {
	if printOnly {
		return r.Get(RuntimeTypeDryRun)
	}
	return r.Get(RuntimeTypeNative)
}

// announce writes the two-line banner shared by both runtimes.
func announce(w io.Writer, header string, inv command.Invocation) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "%s\n%s\n\n", header, inv)
}
