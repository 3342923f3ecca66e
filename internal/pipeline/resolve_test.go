// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"errors"
	"testing"

	"github.com/cfinfer/cfinfer/pkg/inference"

	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mode     inference.Mode
		explicit []inference.Step
		want     []inference.Step
	}{
		{name: "infer", mode: inference.ModeInfer, want: []inference.Step{"generate"}},
		{name: "typecheck", mode: inference.ModeTypecheck, want: []inference.Step{"typecheck"}},
		{name: "roundtrip", mode: inference.ModeRoundtrip, want: []inference.Step{"generate", "insert-jaif"}},
		{
			name: "roundtrip-typecheck",
			mode: inference.ModeRoundtripTypecheck,
			want: []inference.Step{"generate", "insert-jaif", "typecheck"},
		},
		{
			name:     "explicit steps bypass the mode table",
			mode:     inference.ModeTypecheck,
			explicit: []inference.Step{"insert-jaif", "generate", "generate"},
			want:     []inference.Step{"insert-jaif", "generate", "generate"},
		},
		{
			name:     "explicit steps with unknown mode",
			mode:     "whatever",
			explicit: []inference.Step{"floodsolve"},
			want:     []inference.Step{"floodsolve"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, err := Resolve(tt.mode, tt.explicit)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, q.Steps()); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	if _, err := Resolve("bogus", nil); !errors.Is(err, inference.ErrInvalidMode) {
		t.Errorf("Resolve(bogus) error = %v, want ErrInvalidMode", err)
	}
	if _, err := Resolve(inference.ModeInfer, []inference.Step{"generate", "solve"}); !errors.Is(err, inference.ErrInvalidStep) {
		t.Errorf("Resolve(unknown step) error = %v, want ErrInvalidStep", err)
	}
}

func TestQueuePop(t *testing.T) {
	t.Parallel()

	explicit := []inference.Step{"generate", "typecheck"}
	q, err := Resolve(inference.ModeInfer, explicit)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	explicit[0] = "floodsolve"

	var got []inference.Step
	for {
		step, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, step)
	}
	if diff := cmp.Diff([]inference.Step{"generate", "typecheck"}, got); diff != "" {
		t.Errorf("Pop() order mismatch (-want +got):\n%s", diff)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after draining", q.Len())
	}

	// Draining one queue leaves the mode table intact.
	q2, _ := Resolve(inference.ModeRoundtrip, nil)
	q2.Pop()
	q3, _ := Resolve(inference.ModeRoundtrip, nil)
	if q3.Len() != 2 {
		t.Errorf("mode table was modified: %v", q3.Steps())
	}
}
