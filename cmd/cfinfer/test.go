// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cfinfer/cfinfer/internal/config"
	"github.com/cfinfer/cfinfer/internal/harness"
	"github.com/cfinfer/cfinfer/internal/issue"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"
)

// testFlags holds the raw `test` flag values.
type testFlags struct {
	mode       string
	pattern    string
	debug      bool
	args       string
	checker    string
	searchDirs []string
	goldDir    string
}

// newTestCommand creates the `cfinfer test` command.
func newTestCommand(app *App) *cobra.Command {
	flags := &testFlags{}

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run the batch test harness",
		Long: `Run every discovered test file through 'cfinfer run' and summarize the results.

Test files are collected from the search directories (--search-dir, the
config file, or the checker framework and inference example directories).
In gold mode the annotated output of a roundtrip is compared byte for byte
with the golden copy; gold-update overwrites the golden copies instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			return executeTests(cmd.Context(), app, flags.options(cmd, cfg, app.configPath))
		},
	}

	flags.register(cmd)

	return cmd
}

// register defines the `test` flags on cmd.
func (tf *testFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&tf.mode, "mode", string(harness.DefaultMode), "harness mode: typecheck, infer, roundtrip, roundtrip-typecheck, gold, gold-update")
	f.StringVarP(&tf.pattern, "test", "t", "", "only run tests whose file name matches this regular expression")
	f.BoolVarP(&tf.debug, "debug", "d", false, "show the output of every test run")
	f.StringVarP(&tf.args, "args", "a", "", "extra arguments for every 'cfinfer run'")
	f.StringVar(&tf.checker, "checker", config.DefaultHarnessChecker, "checker to run the tests with")
	f.StringArrayVar(&tf.searchDirs, "search-dir", nil, "directory to search for tests (repeatable)")
	f.StringVar(&tf.goldDir, "gold-dir", "", "directory holding the golden files")
}

// options resolves the harness options. Flags win over the config file,
// which wins over the locations derived from the toolchain.
func (tf *testFlags) options(cmd *cobra.Command, cfg *config.Config, configPath string) harness.Options {
	opts := harness.Options{
		Mode:       harness.Mode(tf.mode),
		Checker:    tf.checker,
		Pattern:    tf.pattern,
		Args:       tf.args,
		Debug:      tf.debug,
		SearchDirs: tf.searchDirs,
		Include:    cfg.Harness.Include,
		GoldDir:    tf.goldDir,
	}

	if !cmd.Flags().Changed("checker") && cfg.Harness.Checker != "" {
		opts.Checker = cfg.Harness.Checker
	}
	if len(opts.SearchDirs) == 0 {
		opts.SearchDirs = cfg.Harness.SearchDirs
	}
	if len(opts.SearchDirs) == 0 {
		opts.SearchDirs = harness.DefaultSearchDirs(cfg.Harness.CheckersTests, cfg.Toolchain.InferenceHome)
	}
	if opts.GoldDir == "" {
		opts.GoldDir = cfg.Harness.GoldDir
	}
	if opts.GoldDir == "" {
		opts.GoldDir = harness.DefaultGoldDir(cfg.Toolchain.InferenceHome)
	}

	// Children must read the same configuration file.
	if configPath != "" {
		quoted, err := syntax.Quote(configPath, syntax.LangBash)
		if err != nil {
			quoted = configPath
		}
		opts.Args = strings.TrimSpace("--config " + quoted + " " + opts.Args)
	}

	return opts
}

// executeTests runs the harness with the current executable and prints the
// summary. Any failure or mismatch turns into exit status 1.
func executeTests(ctx context.Context, app *App, opts harness.Options) error {
	exe, err := os.Executable()
	if err != nil {
		return app.fail(fmt.Errorf("locate cfinfer executable: %w", err), issue.HarnessFailedId)
	}

	h := harness.New(exe,
		harness.WithOutput(app.stdout, app.stderr),
		harness.WithLogger(slog.Default()),
	)
	summary, err := h.Run(ctx, opts)
	if err != nil {
		issueID := issue.HarnessFailedId
		if errors.Is(err, harness.ErrInvalidMode) {
			issueID = issue.InvalidRunConfigId
		}
		return app.fail(err, issueID)
	}

	fmt.Fprintln(app.stdout)
	summary.Print(app.stdout)

	if !summary.OK() {
		fmt.Fprintf(app.stderr, "%s %d of %d tests did not pass\n",
			ErrorStyle.Render("✗"), len(summary.Failed)+len(summary.Mismatched), summary.Total())
		return &ExitError{Code: 1}
	}
	if summary.Total() > 0 {
		fmt.Fprintf(app.stdout, "%s all %d tests passed\n", SuccessStyle.Render("✓"), summary.Total())
	}
	return nil
}
