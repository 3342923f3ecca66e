// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and remediation
// hints. The issue catalog holds one Markdown help page per failure class (missing
// toolchain, failing step, harness failures) that the CLI renders with glamour.
package issue
