// SPDX-License-Identifier: MPL-2.0

// Package config handles cfinfer configuration using Viper with CUE as the file format.
//
// Configuration is loaded from $XDG_CONFIG_HOME/cfinfer/config.cue (or the platform
// equivalent), falling back to ./config.cue. Every field is optional; the toolchain
// locations are normally taken from CHECKER_INFERENCE, JAVA_HOME and AFU_HOME, which
// Viper binds onto the toolchain section.
//
// The file is validated against the embedded CUE schema (config_schema.cue) before it is
// merged, so mistakes are reported with their path inside the document.
package config
