// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	goruntime "runtime"
	"strings"
	"testing"

	"github.com/cfinfer/cfinfer/internal/testutil"
	"github.com/cfinfer/cfinfer/pkg/inference"

	"github.com/google/go-cmp/cmp"
)

// fakeCLI stands in for `cfinfer run`: it fails for files named Fail*, and
// otherwise writes an "annotated" copy into --output-dir when one is given.
const fakeCLI = `#!/bin/sh
echo "$*" >> "@LOG@"
out=""
file=""
while [ $# -gt 0 ]; do
	case "$1" in
		--output-dir) out="$2"; shift 2 ;;
		--mode|--checker) shift 2 ;;
		*) file="$1"; shift ;;
	esac
done
base="$(basename "$file")"
case "$base" in
	Fail*) exit 1 ;;
esac
if [ -n "$out" ]; then
	printf 'annotated %s\n' "$base" > "$out/$base"
fi
exit 0
`

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type harnessFixture struct {
	dir     string
	log     string
	harness *Harness
	stdout  *bytes.Buffer
}

func newHarnessFixture(t *testing.T) *harnessFixture {
	t.Helper()
	if goruntime.GOOS == "windows" {
		t.Skip("fake CLI is a POSIX shell script")
	}

	root := t.TempDir()
	log := filepath.Join(root, "calls.log")
	exe := filepath.Join(root, "cfinfer")
	testutil.MustWriteFile(t, exe, strings.ReplaceAll(fakeCLI, "@LOG@", log), 0o755)

	var stdout bytes.Buffer
	h := New(exe, WithOutput(&stdout, io.Discard), WithLogger(quietLogger))
	return &harnessFixture{dir: filepath.Join(root, "tests"), log: log, harness: h, stdout: &stdout}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteSources(t, dir, "A.java", "Basic.java", "LoopBasic.java", "Simple.java", "sub/D.java")
	testutil.MustWriteFile(t, filepath.Join(dir, "notes.txt"), "", 0o644)
	testutil.MustMkdirAll(t, filepath.Join(dir, "Dir.java"), 0o755)
	other := t.TempDir()
	testutil.WriteSources(t, other, "Z.java")
	missing := filepath.Join(t.TempDir(), "gone")

	tests := []struct {
		name    string
		include []string
		pattern string
		mode    Mode
		want    []string
	}{
		{
			name: "typecheck excludes exact base names",
			mode: ModeTypecheck,
			want: []string{"A.java", "LoopBasic.java", "Z.java"},
		},
		{
			name: "other modes keep everything",
			mode: ModeRoundtrip,
			want: []string{"A.java", "Basic.java", "LoopBasic.java", "Simple.java", "Z.java"},
		},
		{
			name:    "pattern filters base names",
			mode:    ModeInfer,
			pattern: "Basic",
			want:    []string{"Basic.java", "LoopBasic.java"},
		},
		{
			name:    "recursive include",
			mode:    ModeInfer,
			include: []string{"**/D.java"},
			want:    []string{"D.java"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var re *regexp.Regexp
			if tt.pattern != "" {
				re = regexp.MustCompile(tt.pattern)
			}
			files, err := Discover([]string{dir, missing, other}, tt.include, re, tt.mode, quietLogger)
			if err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			got := make([]string, len(files))
			for i, f := range files {
				got[i] = filepath.Base(f)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Discover() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultDirs(t *testing.T) {
	t.Parallel()

	got := DefaultSearchDirs("/cf/checker", "/inf")
	want := []string{
		filepath.Join("/cf/checker", "tests", "all-systems"),
		filepath.Join("/inf", "testing", "examples"),
		filepath.Join("/inf", "testing", "examples", "refmerge"),
		filepath.Join("/inf", "testing", "examples", "generics"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DefaultSearchDirs() mismatch (-want +got):\n%s", diff)
	}
	if len(DefaultSearchDirs("", "")) != 0 {
		t.Error("DefaultSearchDirs() without roots should be empty")
	}
	if DefaultGoldDir("/inf") != filepath.Join("/inf", "testing", "common_gold") {
		t.Errorf("DefaultGoldDir() = %q", DefaultGoldDir("/inf"))
	}
}

func TestHarnessRecordsFailuresAndContinues(t *testing.T) {
	t.Parallel()
	f := newHarnessFixture(t)
	testutil.WriteSources(t, f.dir, "A.java", "FailB.java", "C.java")

	summary, err := f.harness.Run(t.Context(), Options{
		Mode:       ModeTypecheck,
		Checker:    "ostrusted.OsTrustedChecker",
		Args:       `--xmx 1g`,
		SearchDirs: []string{f.dir},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(summary.Passed) != 2 || len(summary.Failed) != 1 || summary.OK() {
		t.Errorf("summary = %+v", summary)
	}
	if filepath.Base(summary.Failed[0]) != "FailB.java" {
		t.Errorf("failed = %v", summary.Failed)
	}

	calls := strings.Split(strings.TrimSpace(testutil.MustReadFile(t, f.log)), "\n")
	if len(calls) != 3 {
		t.Fatalf("calls = %v, want 3", calls)
	}
	wantPrefix := "run --xmx 1g --mode typecheck --checker ostrusted.OsTrustedChecker "
	if !strings.HasPrefix(calls[0], wantPrefix) {
		t.Errorf("call = %q, want prefix %q", calls[0], wantPrefix)
	}
	if strings.Contains(calls[0], "--output-dir") {
		t.Errorf("non-gold runs should use the default output dir: %q", calls[0])
	}

	var out bytes.Buffer
	summary.Print(&out)
	if !strings.HasPrefix(out.String(), "2 Passed, 1 failed, 0 mismatched\nFailed tests:\n") {
		t.Errorf("Print() = %q", out.String())
	}
	if !strings.Contains(f.stdout.String(), "Executing test ") || !strings.Contains(f.stdout.String(), "Failure") {
		t.Errorf("progress output = %q", f.stdout.String())
	}
}

func TestHarnessGoldUpdateThenGold(t *testing.T) {
	t.Parallel()
	f := newHarnessFixture(t)
	testutil.WriteSources(t, f.dir, "A.java", "B.java")
	goldDir := filepath.Join(t.TempDir(), "gold")

	opts := Options{Mode: ModeGold, Checker: "c", SearchDirs: []string{f.dir}, GoldDir: goldDir}

	summary, err := f.harness.Run(t.Context(), opts)
	if err != nil {
		t.Fatalf("Run(gold) error = %v", err)
	}
	if len(summary.Mismatched) != 2 {
		t.Errorf("missing gold files should be mismatches: %+v", summary)
	}

	opts.Mode = ModeGoldUpdate
	if summary, err = f.harness.Run(t.Context(), opts); err != nil || !summary.OK() {
		t.Fatalf("Run(gold-update) = %+v, %v", summary, err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(goldDir, "A.java")); got != "annotated A.java\n" {
		t.Errorf("gold file = %q", got)
	}

	opts.Mode = ModeGold
	if summary, err = f.harness.Run(t.Context(), opts); err != nil || !summary.OK() {
		t.Fatalf("Run(gold) after update = %+v, %v", summary, err)
	}

	testutil.MustWriteFile(t, filepath.Join(goldDir, "B.java"), "stale\n", 0o644)
	summary, err = f.harness.Run(t.Context(), opts)
	if err != nil {
		t.Fatalf("Run(gold) error = %v", err)
	}
	if len(summary.Mismatched) != 1 || filepath.Base(summary.Mismatched[0]) != "B.java" {
		t.Errorf("summary = %+v, want B.java mismatched", summary)
	}

	calls := testutil.MustReadFile(t, f.log)
	if !strings.Contains(calls, "--mode "+string(inference.ModeRoundtrip)) || !strings.Contains(calls, "--output-dir ") {
		t.Errorf("gold runs should be roundtrips into a scratch dir:\n%s", calls)
	}
}

func TestHarnessRejectsBadOptions(t *testing.T) {
	t.Parallel()

	h := New("cfinfer", WithOutput(io.Discard, io.Discard), WithLogger(quietLogger))

	if _, err := h.Run(t.Context(), Options{Mode: "xmlsolve"}); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Run(bad mode) error = %v, want ErrInvalidMode", err)
	}
	if _, err := h.Run(t.Context(), Options{Mode: ModeTypecheck, Pattern: "("}); err == nil {
		t.Error("Run(bad pattern) should fail")
	}
	if _, err := h.Run(t.Context(), Options{Mode: ModeGold}); err == nil {
		t.Error("Run(gold) without a gold dir should fail")
	}
}

func TestModeRunMode(t *testing.T) {
	t.Parallel()

	for _, m := range Modes() {
		if err := m.Validate(); err != nil {
			t.Errorf("%s.Validate() = %v", m, err)
		}
		want := inference.Mode(m)
		if m.IsGold() {
			want = inference.ModeRoundtrip
		}
		if m.RunMode() != want {
			t.Errorf("%s.RunMode() = %s, want %s", m, m.RunMode(), want)
		}
		if err := m.RunMode().Validate(); err != nil {
			t.Errorf("%s.RunMode() is not a pipeline mode: %v", m, err)
		}
	}
}
