// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cfinfer/cfinfer/internal/config"
	"github.com/cfinfer/cfinfer/pkg/checker"
	"github.com/cfinfer/cfinfer/pkg/types"
)

func TestPrintCheckers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printCheckers(&buf, []checker.Descriptor{
		{Name: "Plain", Checker: "p.PlainChecker"},
		{Name: "Full", Checker: "f.FullChecker", Solver: "f.Solver", Stubs: "f.astub", Subtype: "f.Bottom", Supertype: "f.Top"},
	})
	out := buf.String()

	for _, want := range []string{"p.PlainChecker", "solver: f.Solver", "stubs: f.astub", "qualifiers: f.Bottom <: f.Top"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "solver:") != 1 {
		t.Errorf("only descriptors with a solver print one:\n%s", out)
	}
}

func TestCheckersIncludesConfiguredDescriptors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Checkers = map[string]checker.Descriptor{
		"mine": {Name: "Mine", Checker: "my.MineChecker"},
	}

	code, stdout, stderr := execute(t, &stubConfig{cfg: cfg}, "checkers")
	if code != types.ExitSuccess {
		t.Fatalf("exit code = %d, want 0\n%s", code, stderr)
	}
	for _, want := range []string{"my.MineChecker", "ostrusted.OsTrustedChecker", "sparta.checkers.SpartaSinkChecker"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfigShowWithStubProvider(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Toolchain.JavaHome = "/jdk"

	code, stdout, _ := execute(t, &stubConfig{cfg: cfg, path: "/etc/cfinfer.cue"}, "config", "show")
	if code != types.ExitSuccess {
		t.Fatalf("exit code = %d, want 0", code)
	}
	for _, want := range []string{"Config file: /etc/cfinfer.cue", "java_home: /jdk", "inference_home: (not set)", "(none configured)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}
