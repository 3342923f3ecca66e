// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cfinfer/cfinfer/internal/command"
	"github.com/cfinfer/cfinfer/internal/runtime"

	"mvdan.cc/sh/v3/shell"
)

type (
	// Options configures one harness run.
	Options struct {
		Mode    Mode
		Checker string
		// Pattern is a regular expression matched against test file base names.
		Pattern string
		// Args are extra `run` arguments, split with shell word rules.
		Args string
		// Debug shows the output of every child.
		Debug      bool
		SearchDirs []string
		Include    []string
		GoldDir    string
	}

	// Harness runs test files through a cfinfer executable.
	Harness struct {
		executable string
		runtime    runtime.Runtime
		stdout     io.Writer
		stderr     io.Writer
		logger     *slog.Logger
	}

	// Option configures a Harness.
	Option func(*Harness)
)

// WithRuntime replaces the runtime used to start children.
func WithRuntime(rt runtime.Runtime) Option {
	return func(h *Harness) { h.runtime = rt }
}

// WithOutput sets where progress, the summary and (in debug mode) child
// output are written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(h *Harness) { h.stdout, h.stderr = stdout, stderr }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// New creates a Harness that runs `<executable> run ...` for every test.
func New(executable string, opts ...Option) *Harness {
	h := &Harness{
		executable: executable,
		runtime:    runtime.NewNativeRuntime(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run discovers the test files and runs each one. The returned error is
// reserved for invalid options; test failures are recorded in the Summary.
func (h *Harness) Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := opts.Mode.Validate(); err != nil {
		return nil, err
	}
	if opts.Mode.IsGold() && opts.GoldDir == "" {
		return nil, fmt.Errorf("mode %s needs a gold directory", opts.Mode)
	}

	var pattern *regexp.Regexp
	if opts.Pattern != "" {
		p, err := regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("test pattern: %w", err)
		}
		pattern = p
	}

	extra, err := shell.Fields(opts.Args, nil)
	if err != nil {
		return nil, fmt.Errorf("args: %w", err)
	}

	h.logger.Debug("search directories", "dirs", opts.SearchDirs)
	files, err := Discover(opts.SearchDirs, opts.Include, pattern, opts.Mode, h.logger)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, file := range files {
		fmt.Fprintf(h.stdout, "Executing test %s\n", file)
		switch outcome := h.runOne(ctx, opts, extra, file); outcome {
		case outcomePassed:
			fmt.Fprintln(h.stdout, "Success")
			summary.Passed = append(summary.Passed, file)
		case outcomeMismatched:
			fmt.Fprintln(h.stdout, "Mismatch")
			summary.Mismatched = append(summary.Mismatched, file)
		default:
			fmt.Fprintln(h.stdout, "Failure")
			summary.Failed = append(summary.Failed, file)
		}
	}
	return summary, nil
}

type outcome int

const (
	outcomePassed outcome = iota
	outcomeFailed
	outcomeMismatched
)

func (h *Harness) runOne(ctx context.Context, opts Options, extra []string, file string) outcome {
	args := append([]string{"run"}, extra...)
	args = append(args, "--mode", opts.Mode.RunMode().String(), "--checker", opts.Checker)

	var outDir string
	if opts.Mode.IsGold() {
		tmp, err := os.MkdirTemp("", "cfinfer-gold-*")
		if err != nil {
			h.logger.Error("create output directory", "error", err)
			return outcomeFailed
		}
		defer os.RemoveAll(tmp)
		outDir = tmp
		args = append(args, "--output-dir", outDir)
	}
	args = append(args, file)

	ectx := runtime.NewExecutionContext(ctx, command.Invocation{Path: h.executable, Args: args})
	ectx.Stdin = nil
	if opts.Debug {
		ectx.Stdout, ectx.Stderr = h.stdout, h.stderr
	} else {
		ectx.Stdout, ectx.Stderr = io.Discard, io.Discard
	}

	result := h.runtime.Execute(ectx)
	if !result.Success() {
		h.logger.Debug("test failed", "file", file, "exit_code", int(result.ExitCode), "error", result.Error)
		return outcomeFailed
	}

	if !opts.Mode.IsGold() {
		return outcomePassed
	}

	base := filepath.Base(file)
	produced := filepath.Join(outDir, base)
	gold := filepath.Join(opts.GoldDir, base)

	if opts.Mode == ModeGoldUpdate {
		if err := copyGold(produced, gold); err != nil {
			h.logger.Error("update gold file", "file", gold, "error", err)
			return outcomeFailed
		}
		return outcomePassed
	}

	same, err := sameContent(produced, gold)
	if err != nil {
		h.logger.Debug("gold comparison", "file", file, "error", err)
	}
	if !same {
		return outcomeMismatched
	}
	return outcomePassed
}

// sameContent reports byte equality. A missing file is never equal.
func sameContent(a, b string) (bool, error) {
	da, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

func copyGold(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
