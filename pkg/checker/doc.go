// SPDX-License-Identifier: MPL-2.0

// Package checker is the registry of known type systems.
//
// A Descriptor bundles the fully qualified checker class with the solver,
// stub file and qualifier pair that type system normally runs with. The
// built-in registry is immutable; Registry.With layers additional
// descriptors (for example from the config file) on top of it, and
// Registry.Resolve falls back to a synthetic descriptor when a name is not
// registered so arbitrary checker classes can still be driven.
package checker
