// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for cfinfer.
//
// This package implements the Cobra command hierarchy: `run` drives one
// inference pipeline, `test` runs the batch harness, `checkers` lists the
// known type systems and `config` inspects the configuration file. Command
// handlers receive an App and delegate to the internal packages.
package cmd
