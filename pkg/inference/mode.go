// SPDX-License-Identifier: MPL-2.0

package inference

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ModeInfer generates constraints and solves them.
	ModeInfer Mode = "infer"
	// ModeTypecheck runs the checker as a plain annotation processor.
	ModeTypecheck Mode = "typecheck"
	// ModeRoundtrip infers and then inserts the solution into the sources.
	ModeRoundtrip Mode = "roundtrip"
	// ModeRoundtripTypecheck is ModeRoundtrip followed by a typecheck of the annotated sources.
	ModeRoundtripTypecheck Mode = "roundtrip-typecheck"

	// DefaultMode is used when neither the flag nor the config file picks one.
	DefaultMode = ModeInfer
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid mode")

type (
	// Mode is a shortcut for a canonical pipeline.
	Mode string

	// InvalidModeError is returned when a Mode is not one of Modes().
	InvalidModeError struct {
		Value Mode
	}
)

// Modes returns the accepted modes in documentation order.
func Modes() []Mode {
	return []Mode{ModeInfer, ModeTypecheck, ModeRoundtrip, ModeRoundtripTypecheck}
}

// Validate returns an *InvalidModeError if m is not a known mode.
func (m Mode) Validate() error {
	switch m {
	case ModeInfer, ModeTypecheck, ModeRoundtrip, ModeRoundtripTypecheck:
		return nil
	default:
		return &InvalidModeError{Value: m}
	}
}

// String returns the mode keyword.
func (m Mode) String() string { return string(m) }

// Error implements the error interface.
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("mode: %q not in allowed modes: [%s]", e.Value, joinValues(Modes()))
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
