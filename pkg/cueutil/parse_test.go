// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name:   string
	level?: "low" | "high"
	tags?: [...string]
}
`

type testSettings struct {
	Name  string   `json:"name"`
	Level string   `json:"level,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		got, err := Decode[testSettings]([]byte(testSchema), "#Settings",
			[]byte(`name: "x", level: "high", tags: ["a", "b"]`))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got.Name != "x" || got.Level != "high" || len(got.Tags) != 2 {
			t.Errorf("Decode() = %+v", got)
		}
	})

	t.Run("schema violation names the field", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[testSettings]([]byte(testSchema), "#Settings",
			[]byte(`name: "x", level: "medium"`), WithFilename("settings.cue"))
		if err == nil {
			t.Fatal("Decode() expected an error for a disallowed value")
		}
		if !strings.Contains(err.Error(), "settings.cue") || !strings.Contains(err.Error(), "level") {
			t.Errorf("Decode() error = %q, want file and field", err)
		}
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[testSettings]([]byte(testSchema), "#Settings",
			[]byte(`name: "x", colour: "red"`))
		if err == nil {
			t.Fatal("Decode() expected an error for a field outside the closed definition")
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[testSettings]([]byte(testSchema), "#Settings", []byte(`name: `))
		if err == nil {
			t.Fatal("Decode() expected a syntax error")
		}
	})

	t.Run("non concrete allowed when requested", func(t *testing.T) {
		t.Parallel()

		got, err := Decode[map[string]any]([]byte(testSchema), "#Settings",
			[]byte(`name: "n", level: "low"`), WithConcrete(false))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if (*got)["level"] != "low" {
			t.Errorf("Decode() = %v", *got)
		}
	})

	t.Run("size limit", func(t *testing.T) {
		t.Parallel()

		_, err := Decode[testSettings]([]byte(testSchema), "#Settings",
			[]byte(`name: "a long enough document"`), WithMaxFileSize(4))
		if err == nil {
			t.Fatal("Decode() expected a size error")
		}
	})
}
