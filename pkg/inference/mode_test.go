// SPDX-License-Identifier: MPL-2.0

package inference

import (
	"errors"
	"strings"
	"testing"
)

func TestModeValidate(t *testing.T) {
	t.Parallel()

	for _, m := range Modes() {
		if err := m.Validate(); err != nil {
			t.Errorf("Mode(%q).Validate() = %v, want nil", m, err)
		}
	}

	for _, bad := range []Mode{"", "xmlsolve", "Infer", "gold"} {
		err := bad.Validate()
		if !errors.Is(err, ErrInvalidMode) {
			t.Errorf("Mode(%q).Validate() = %v, want ErrInvalidMode", bad, err)
		}
		var modeErr *InvalidModeError
		if !errors.As(err, &modeErr) || modeErr.Value != bad {
			t.Errorf("Mode(%q).Validate() did not carry the offending value", bad)
		}
	}
}

func TestInvalidModeErrorListsAllowedModes(t *testing.T) {
	t.Parallel()

	msg := (&InvalidModeError{Value: "bogus"}).Error()
	for _, m := range Modes() {
		if !strings.Contains(msg, string(m)) {
			t.Errorf("error %q does not mention mode %q", msg, m)
		}
	}
}

func TestLogLevelValidate(t *testing.T) {
	t.Parallel()

	for _, l := range LogLevels() {
		if err := l.Validate(); err != nil {
			t.Errorf("LogLevel(%q).Validate() = %v, want nil", l, err)
		}
	}

	for _, bad := range []LogLevel{"", "info", "VERBOSE", "FATAL"} {
		if err := bad.Validate(); !errors.Is(err, ErrInvalidLogLevel) {
			t.Errorf("LogLevel(%q).Validate() = %v, want ErrInvalidLogLevel", bad, err)
		}
	}
}

func TestStepValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		step     Step
		wantErr  bool
		runsJava bool
	}{
		{StepGenerate, false, true},
		{StepTypecheck, false, true},
		{StepFloodSolve, false, true},
		{StepInsertJaif, false, false},
		{"solve", true, false},
		{"", true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			t.Parallel()

			err := tt.step.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidStep) {
				t.Errorf("Validate() error does not wrap ErrInvalidStep: %v", err)
			}
			if got := tt.step.RunsJava(); got != tt.runsJava {
				t.Errorf("RunsJava() = %v, want %v", got, tt.runsJava)
			}
		})
	}
}
