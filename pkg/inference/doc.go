// SPDX-License-Identifier: MPL-2.0

// Package inference defines the value types that describe one run of the
// inference toolchain: the run mode, the pipeline step vocabulary, the
// logback log levels understood by the Java side, and the immutable
// RunConfig assembled from the command line.
//
// Every enumerated type validates against a closed set and reports failures
// as typed errors that unwrap to a package sentinel, so callers can use
// errors.Is for classification and errors.As to recover the offending value.
package inference
