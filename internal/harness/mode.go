// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"errors"
	"fmt"

	"github.com/cfinfer/cfinfer/pkg/inference"
)

const (
	ModeTypecheck          Mode = "typecheck"
	ModeInfer              Mode = "infer"
	ModeRoundtrip          Mode = "roundtrip"
	ModeRoundtripTypecheck Mode = "roundtrip-typecheck"
	// ModeGold runs a roundtrip and compares each annotated file with its golden copy.
	ModeGold Mode = "gold"
	// ModeGoldUpdate runs a roundtrip and overwrites the golden copies.
	ModeGoldUpdate Mode = "gold-update"

	// DefaultMode is the harness mode used when none is given.
	DefaultMode = ModeTypecheck
)

// ErrInvalidMode is the sentinel error wrapped by InvalidModeError.
var ErrInvalidMode = errors.New("invalid harness mode")

type (
	// Mode selects what the harness does with each test file.
	Mode string

	// InvalidModeError is returned when a Mode value is not recognized.
	InvalidModeError struct {
		Value Mode
	}
)

// Modes returns every harness mode.
func Modes() []Mode {
	return []Mode{ModeTypecheck, ModeInfer, ModeRoundtrip, ModeRoundtripTypecheck, ModeGold, ModeGoldUpdate}
}

// Validate returns an *InvalidModeError for unknown modes.
func (m Mode) Validate() error {
	switch m {
	case ModeTypecheck, ModeInfer, ModeRoundtrip, ModeRoundtripTypecheck, ModeGold, ModeGoldUpdate:
		return nil
	}
	return &InvalidModeError{Value: m}
}

// IsGold reports whether m compares or updates golden files.
func (m Mode) IsGold() bool {
	return m == ModeGold || m == ModeGoldUpdate
}

// RunMode is the pipeline mode each child runs with.
func (m Mode) RunMode() inference.Mode {
	if m.IsGold() {
		return inference.ModeRoundtrip
	}
	return inference.Mode(m)
}

func (m Mode) String() string { return string(m) }

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("harness mode %q not in allowed modes: %v", e.Value, Modes())
}

// Unwrap returns ErrInvalidMode for errors.Is() compatibility.
func (e *InvalidModeError) Unwrap() error { return ErrInvalidMode }
