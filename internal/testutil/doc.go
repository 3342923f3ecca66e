// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv, MustUnsetenv),
// file operations (MustMkdirAll, MustWriteFile, MustReadFile), and FakeToolchain,
// which lays out a shell-script stand-in for the Java inference distribution so
// pipelines can run end to end without a JDK.
package testutil
