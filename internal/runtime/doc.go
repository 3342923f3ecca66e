// SPDX-License-Identifier: MPL-2.0

// Package runtime executes pipeline step invocations.
//
// Two runtime implementations are available:
//   - native: starts the invocation as a child process and waits for it
//   - dry-run: prints the command line it would have run and reports success
//
// Both implement the Runtime interface with Name() and Execute(). The Registry
// selects the implementation for a run; ExecutionContext carries the invocation
// together with the I/O streams of the step.
package runtime
