// SPDX-License-Identifier: MPL-2.0

// Package harness runs the inference pipeline over a directory of test sources,
// one child process per file, and summarises successes, failures and golden
// file mismatches. A failing file never stops the batch.
package harness
