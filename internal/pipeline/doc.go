// SPDX-License-Identifier: MPL-2.0

// Package pipeline resolves a run configuration into an ordered queue of steps
// and drives them one after another, handing the working file list from step
// to step.
package pipeline
