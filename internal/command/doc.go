// SPDX-License-Identifier: MPL-2.0

// Package command turns a run configuration into the child-process invocations
// of each pipeline step: the inference CLI and the checker on the JVM, and the
// annotation file utilities' insert-annotations-to-source script.
//
// Building is pure apart from listing the distribution directory once in
// Builder.Prepare; nothing here starts a process.
package command
