// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"fmt"
	"io"
)

// Summary records the outcome of every test file of a harness run.
type Summary struct {
	Passed     []string
	Failed     []string
	Mismatched []string
}

// OK reports whether every test passed.
func (s *Summary) OK() bool {
	return len(s.Failed) == 0 && len(s.Mismatched) == 0
}

// Total is the number of tests that ran.
func (s *Summary) Total() int {
	return len(s.Passed) + len(s.Failed) + len(s.Mismatched)
}

// Print writes the counts followed by the failed and mismatched paths.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "%d Passed, %d failed, %d mismatched\n", len(s.Passed), len(s.Failed), len(s.Mismatched))
	fmt.Fprintln(w, "Failed tests:")
	for _, f := range s.Failed {
		fmt.Fprintln(w, f)
	}
	if len(s.Mismatched) > 0 {
		fmt.Fprintln(w, "Mismatched tests:")
		for _, f := range s.Mismatched {
			fmt.Fprintln(w, f)
		}
	}
}
