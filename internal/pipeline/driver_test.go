// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cfinfer/cfinfer/internal/command"
	"github.com/cfinfer/cfinfer/internal/testutil"
	"github.com/cfinfer/cfinfer/pkg/checker"
	"github.com/cfinfer/cfinfer/pkg/inference"
	"github.com/cfinfer/cfinfer/pkg/types"

	"github.com/google/go-cmp/cmp"
)

type driverFixture struct {
	fake    *testutil.FakeToolchain
	workDir string
	files   []string
	stdout  *bytes.Buffer
	logs    *bytes.Buffer
	driver  *Driver
}

func newDriverFixture(t *testing.T) *driverFixture {
	t.Helper()

	fake := testutil.NewFakeToolchain(t)
	workDir := t.TempDir()
	files := testutil.WriteSources(t, filepath.Join(workDir, "src"), "A.java", "B.java")

	var stdout, logs bytes.Buffer
	tc := command.Toolchain{InferenceHome: fake.InferenceHome, JavaHome: fake.JavaHome, AFUHome: fake.AFUHome}
	d := NewDriver(tc,
		WithWorkDir(workDir),
		WithIO(strings.NewReader(""), &stdout, io.Discard),
		WithLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
	return &driverFixture{fake: fake, workDir: workDir, files: files, stdout: &stdout, logs: &logs, driver: d}
}

func (f *driverFixture) config(mode inference.Mode) inference.RunConfig {
	return inference.RunConfig{
		Checker: "ostrusted.OsTrustedChecker",
		Mode:    mode,
		Files:   f.files,
	}.WithDefaults()
}

var testDescriptor = checker.Descriptor{Name: "OsTrusted", Checker: "ostrusted.OsTrustedChecker"}

func TestDriverInfer(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)

	state, err := f.driver.Run(t.Context(), f.config(inference.ModeInfer), testDescriptor)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	outDir := filepath.Join(f.workDir, "output")
	if got := testutil.MustReadFile(t, filepath.Join(outDir, "default.jaif")); got != testutil.FakeJaif {
		t.Errorf("persisted solution = %q", got)
	}
	if diff := cmp.Diff(f.files, state.Files()); diff != "" {
		t.Errorf("infer should not change the file list (-want +got):\n%s", diff)
	}

	calls := f.fake.Calls(t)
	if len(calls) != 1 || !strings.Contains(calls[0], command.InferenceMain) {
		t.Errorf("calls = %v, want one generate", calls)
	}
	if !strings.Contains(f.stdout.String(), "==== Executing step generate") {
		t.Errorf("missing step banner:\n%s", f.stdout.String())
	}
	if !strings.Contains(f.stdout.String(), "Executing command:") {
		t.Errorf("missing command announcement:\n%s", f.stdout.String())
	}
	if !strings.Contains(f.logs.String(), "run_id=") {
		t.Errorf("logs should carry the run id:\n%s", f.logs.String())
	}
}

func TestDriverRoundtripTypecheck(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)

	state, err := f.driver.Run(t.Context(), f.config(inference.ModeRoundtripTypecheck), testDescriptor)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	outDir := filepath.Join(f.workDir, "output")
	want := []string{filepath.Join(outDir, "A.java"), filepath.Join(outDir, "B.java")}
	if diff := cmp.Diff(want, state.Files()); diff != "" {
		t.Errorf("state after insertion (-want +got):\n%s", diff)
	}
	for _, p := range want {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("annotated copy missing: %v", err)
		}
	}

	calls := f.fake.Calls(t)
	// generate, afu (+ CLASSPATH line), typecheck
	if len(calls) != 4 {
		t.Fatalf("calls = %v, want 4 lines", calls)
	}
	if !strings.HasPrefix(calls[1], "afu -v -d ./output "+filepath.Join("output", "default.jaif")) {
		t.Errorf("afu call = %q", calls[1])
	}
	if !strings.Contains(calls[3], "-processor ostrusted.OsTrustedChecker") ||
		!strings.HasSuffix(calls[3], strings.Join(want, " ")) {
		t.Errorf("typecheck should run on the annotated copies: %q", calls[3])
	}
}

func TestDriverInPlace(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)

	cfg := f.config(inference.ModeRoundtrip)
	cfg.InPlace = true
	state, err := f.driver.Run(t.Context(), cfg, testDescriptor)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if diff := cmp.Diff(f.files, state.Files()); diff != "" {
		t.Errorf("in-place insertion should keep the file list (-want +got):\n%s", diff)
	}
	if calls := f.fake.Calls(t); !strings.HasPrefix(calls[1], "afu -v -i ") {
		t.Errorf("afu call = %q, want -i", calls[1])
	}
}

func TestDriverPrintOnly(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)

	cfg := f.config(inference.ModeRoundtripTypecheck)
	cfg.PrintOnly = true
	state, err := f.driver.Run(t.Context(), cfg, testDescriptor)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if calls := f.fake.Calls(t); len(calls) != 0 {
		t.Errorf("print-only run spawned children: %v", calls)
	}
	if _, err := os.Stat(filepath.Join(f.workDir, "output")); !os.IsNotExist(err) {
		t.Errorf("print-only run created the output dir (err = %v)", err)
	}
	if n := strings.Count(f.stdout.String(), "Would have executed command:"); n != 3 {
		t.Errorf("announced %d commands, want 3:\n%s", n, f.stdout.String())
	}
	outDir := filepath.Join(f.workDir, "output")
	if state.Files()[0] != filepath.Join(outDir, "A.java") {
		t.Errorf("print-only should still rewrite the state: %v", state.Files())
	}
}

func TestDriverStepFailure(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)
	f.fake.FailJava(t, 2)

	_, err := f.driver.Run(t.Context(), f.config(inference.ModeRoundtrip), testDescriptor)

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Run() error = %v, want StepError", err)
	}
	if stepErr.Step != inference.StepGenerate || stepErr.ExitCode != types.ExitCode(2) {
		t.Errorf("StepError = %+v", stepErr)
	}
	if !errors.Is(err, ErrStepFailed) {
		t.Error("StepError should match ErrStepFailed")
	}
	if calls := f.fake.Calls(t); len(calls) != 1 {
		t.Errorf("remaining steps should be skipped, calls = %v", calls)
	}
}

func TestDriverNotStrictContinues(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)
	f.fake.FailJava(t, 2)

	cfg := f.config(inference.ModeRoundtripTypecheck)
	cfg.NotStrict = true
	if _, err := f.driver.Run(t.Context(), cfg, testDescriptor); err != nil {
		t.Fatalf("Run() error = %v, want failures downgraded", err)
	}
	if calls := f.fake.Calls(t); len(calls) != 4 {
		t.Errorf("all steps should run, calls = %v", calls)
	}
	if !strings.Contains(f.logs.String(), "continuing") {
		t.Errorf("expected a warning in the logs:\n%s", f.logs.String())
	}
}

func TestDriverFloodSolve(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)

	cfg := f.config(inference.ModeInfer)
	cfg.Steps = "floodsolve, typecheck"
	d, _ := checker.Builtin().Lookup("OsTrusted")

	state, err := f.driver.Run(t.Context(), cfg, d)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	outDir := filepath.Join(f.workDir, "output")
	if state.Files()[1] != filepath.Join(outDir, "B.java") {
		t.Errorf("floodsolve should move the state to the output dir: %v", state.Files())
	}
	if _, err := os.Stat(filepath.Join(outDir, "B.java")); err != nil {
		t.Errorf("floodsolve should copy the sources: %v", err)
	}
	calls := f.fake.Calls(t)
	if !strings.Contains(calls[0], "--solver "+command.PropagationSolver) {
		t.Errorf("floodsolve call = %q", calls[0])
	}
}

func TestDriverRejectsBeforeSpawning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*inference.RunConfig)
		want   error
	}{
		{name: "unknown step", mutate: func(c *inference.RunConfig) { c.Steps = "generate,solve" }, want: inference.ErrInvalidStep},
		{name: "solver in typecheck", mutate: func(c *inference.RunConfig) {
			c.Mode = inference.ModeTypecheck
			c.Solver = "x.Solver"
		}, want: inference.ErrSolverInTypecheck},
		{name: "bad log level", mutate: func(c *inference.RunConfig) { c.LogLevel = "LOUD" }, want: inference.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newDriverFixture(t)
			cfg := f.config(inference.ModeRoundtrip)
			tt.mutate(&cfg)

			if _, err := f.driver.Run(t.Context(), cfg, testDescriptor); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
			if calls := f.fake.Calls(t); len(calls) != 0 {
				t.Errorf("nothing should run, calls = %v", calls)
			}
		})
	}
}

func TestDriverMissingToolchain(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)

	d := NewDriver(command.Toolchain{InferenceHome: t.TempDir(), JavaHome: f.fake.JavaHome},
		WithWorkDir(f.workDir), WithIO(nil, io.Discard, io.Discard))
	if _, err := d.Run(t.Context(), f.config(inference.ModeInfer), testDescriptor); !errors.Is(err, command.ErrDistributionNotFound) {
		t.Errorf("Run() error = %v, want ErrDistributionNotFound", err)
	}

	d = NewDriver(command.Toolchain{InferenceHome: f.fake.InferenceHome},
		WithWorkDir(f.workDir), WithIO(nil, io.Discard, io.Discard))
	if _, err := d.Run(t.Context(), f.config(inference.ModeTypecheck), testDescriptor); !errors.Is(err, command.ErrJavaHomeNotSet) {
		t.Errorf("Run() error = %v, want ErrJavaHomeNotSet", err)
	}
}

func TestDriverMissingSource(t *testing.T) {
	t.Parallel()
	f := newDriverFixture(t)

	cfg := f.config(inference.ModeInfer)
	cfg.Files = append(cfg.Files, filepath.Join(f.workDir, "src", "Gone.java"))
	if _, err := f.driver.Run(t.Context(), cfg, testDescriptor); !errors.Is(err, ErrSourceMissing) {
		t.Errorf("Run() error = %v, want ErrSourceMissing", err)
	}
}

func TestPersistSolutionMissing(t *testing.T) {
	t.Parallel()

	d := NewDriver(command.Toolchain{}, WithWorkDir(t.TempDir()))
	if err := d.persistSolution(t.TempDir()); !errors.Is(err, ErrSolutionMissing) {
		t.Errorf("persistSolution() error = %v, want ErrSolutionMissing", err)
	}
}
