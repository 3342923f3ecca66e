// SPDX-License-Identifier: MPL-2.0

package checker

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Registry maps lower-cased short names to descriptors. The zero value is
// an empty registry; use Builtin for the shipped type systems.
type Registry struct {
	byName map[string]Descriptor
}

var builtin = []Descriptor{
	{
		Name:      "Hardcoded",
		Checker:   "hardcoded.HardcodedChecker",
		Stubs:     "hardcoded/jdk.astub",
		Subtype:   "hardcoded.quals.NotHardcoded",
		Supertype: "hardcoded.quals.MaybeHardcoded",
	},
	{
		Name:    "Interning",
		Checker: "interning.InterningChecker",
		Solver:  "checkers.inference.solver.MaxSat2TypeSolver",
	},
	{
		Name:    "Nullness",
		Checker: "nninf.NninfChecker",
	},
	{
		Name:      "OsTrusted",
		Checker:   "ostrusted.OsTrustedChecker",
		Solver:    "checkers.inference.solver.MaxSat2TypeSolver",
		Stubs:     "ostrusted/jdk.astub",
		Subtype:   "ostrusted.quals.OsTrusted",
		Supertype: "ostrusted.quals.OsUntrusted",
	},
	{
		Name:    "Sink",
		Checker: "sparta.checkers.SpartaSinkChecker",
		Solver:  "sparta.checkers.SpartaSinkSolver",
		Stubs:   "sparta/checkers/information_flow.astub",
	},
	{
		Name:    "Source",
		Checker: "sparta.checkers.SpartaSourceChecker",
		Solver:  "sparta.checkers.SpartaSourceSolver",
		Stubs:   "sparta/checkers/information_flow.astub",
	},
	{
		Name:      "Trusted",
		Checker:   "trusted.TrustedChecker",
		Subtype:   "trusted.quals.Trusted",
		Supertype: "trusted.quals.Untrusted",
	},
}

// Builtin returns a registry holding the shipped type systems.
func Builtin() *Registry {
	r := &Registry{byName: make(map[string]Descriptor, len(builtin))}
	for _, d := range builtin {
		r.byName[key(d.Name)] = d
	}
	return r
}

// With returns a new registry containing r's descriptors overlaid with
// extra. Entries in extra replace built-ins of the same name; r is left
// untouched. Each extra descriptor must validate.
func (r *Registry) With(extra ...Descriptor) (*Registry, error) {
	next := &Registry{byName: make(map[string]Descriptor, len(r.entries())+len(extra))}
	maps.Copy(next.byName, r.entries())
	for _, d := range extra {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Name == "" {
			d.Name = d.Checker
		}
		next.byName[key(d.Name)] = d
	}
	return next, nil
}

// Lookup finds a descriptor by short name, ignoring case. A fully qualified
// class is not a short name, so it never picks up registered defaults.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.entries()[key(name)]
	return d, ok
}

// Resolve returns the registered descriptor for name, or a synthetic one
// that treats name as the checker class.
func (r *Registry) Resolve(name string) Descriptor {
	if d, ok := r.Lookup(name); ok {
		return d
	}
	return Synthetic(name)
}

// All returns every descriptor sorted by name.
func (r *Registry) All() []Descriptor {
	all := slices.Collect(maps.Values(r.entries()))
	slices.SortFunc(all, func(a, b Descriptor) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return all
}

// Synthetic builds a descriptor for a checker that is not registered.
func Synthetic(class string) Descriptor {
	return Descriptor{Name: class, Checker: class, Synthetic: true}
}

func (r *Registry) entries() map[string]Descriptor {
	if r == nil {
		return nil
	}
	return r.byName
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
