// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// ErrSourceMissing is returned by Verify when a listed file does not exist.
var ErrSourceMissing = errors.New("source file missing")

// State is the working file list of one run. It starts as the input files
// and is replaced by steps that produce new sources.
type State struct {
	files []string
}

// NewState creates a state holding a copy of files.
func NewState(files []string) *State {
	return &State{files: slices.Clone(files)}
}

// Files returns a copy of the current file list.
func (s *State) Files() []string {
	return slices.Clone(s.files)
}

// Relocate points every file at dir, keeping base names.
func (s *State) Relocate(dir string) {
	for i, f := range s.files {
		s.files[i] = filepath.Join(dir, filepath.Base(f))
	}
}

// Verify checks that every file exists and is not a directory.
func (s *State) Verify() error {
	for _, f := range s.files {
		info, err := os.Stat(f)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrSourceMissing, f)
		}
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrSourceMissing, f)
		}
	}
	return nil
}
