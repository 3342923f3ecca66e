// SPDX-License-Identifier: MPL-2.0

package checker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidDescriptor is the sentinel error wrapped by InvalidDescriptorError.
var ErrInvalidDescriptor = errors.New("invalid checker descriptor")

type (
	// Descriptor describes how to run one type system.
	Descriptor struct {
		// Name is the short registry key (e.g. "OsTrusted").
		Name string `json:"name" mapstructure:"name"`
		// Checker is the fully qualified checker class.
		Checker string `json:"checker" mapstructure:"checker"`
		// Solver is the default solver class; empty lets InferenceCli pick its default.
		Solver string `json:"solver,omitempty" mapstructure:"solver"`
		// Stubs is the default stub file. Relative paths resolve against the
		// inference source tree (see StubPath).
		Stubs string `json:"stubs,omitempty" mapstructure:"stubs"`
		// Subtype and Supertype name the bottom and top qualifiers of the
		// hierarchy, forwarded to the propagation solver by the floodsolve step.
		Subtype   string `json:"subtype,omitempty" mapstructure:"subtype"`
		Supertype string `json:"supertype,omitempty" mapstructure:"supertype"`
		// Synthetic is set for descriptors built from a raw, unregistered name.
		Synthetic bool `json:"-" mapstructure:"-"`
	}

	// InvalidDescriptorError is returned when a Descriptor has invalid fields.
	InvalidDescriptorError struct {
		Name   string
		Reason string
	}
)

// Validate checks that the descriptor can be used to build commands.
func (d Descriptor) Validate() error {
	if strings.TrimSpace(d.Checker) == "" {
		return &InvalidDescriptorError{Name: d.Name, Reason: "checker class is empty"}
	}
	if strings.ContainsAny(d.Checker, " \t\n") {
		return &InvalidDescriptorError{Name: d.Name, Reason: fmt.Sprintf("checker class %q contains whitespace", d.Checker)}
	}
	if (d.Subtype == "") != (d.Supertype == "") {
		return &InvalidDescriptorError{Name: d.Name, Reason: "subtype and supertype must be set together"}
	}
	return nil
}

// HasQualifierPair reports whether both hierarchy qualifiers are known.
func (d Descriptor) HasQualifierPair() bool {
	return d.Subtype != "" && d.Supertype != ""
}

// StubPath resolves the descriptor's stub file. Absolute paths are returned
// unchanged; relative ones are joined onto srcRoot. It returns "" when the
// descriptor has no default stubs.
func (d Descriptor) StubPath(srcRoot string) string {
	if d.Stubs == "" {
		return ""
	}
	if filepath.IsAbs(d.Stubs) || srcRoot == "" {
		return d.Stubs
	}
	return filepath.Join(srcRoot, filepath.FromSlash(d.Stubs))
}

// Error implements the error interface.
func (e *InvalidDescriptorError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid checker descriptor: %s", e.Reason)
	}
	return fmt.Sprintf("invalid checker descriptor %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidDescriptor for errors.Is() compatibility.
func (e *InvalidDescriptorError) Unwrap() error { return ErrInvalidDescriptor }
