// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Decoding always follows the same three steps: compile the schema, compile
// the user document and unify it with a schema definition, then validate and
// decode into a Go value. Errors carry the file name and the JSON-style path
// of the offending field, e.g. "config.cue: defaults.log_level: ...".
package cueutil
