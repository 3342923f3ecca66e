// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cfinfer/cfinfer/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cfinfer",
		Short: "Drive checker framework inference pipelines",
		Long: TitleStyle.Render("cfinfer") + SubtitleStyle.Render(" - Drive checker framework inference pipelines") + `

cfinfer assembles the inference distribution classpath, builds the Java and
annotation-insertion command lines for each pipeline step, runs them in order
and hands the produced files from one step to the next.

` + SubtitleStyle.Render("Pipelines (--mode):") + `
  infer                 generate
  typecheck             typecheck
  roundtrip             generate, insert-jaif
  roundtrip-typecheck   generate, insert-jaif, typecheck

` + SubtitleStyle.Render("Examples:") + `
  cfinfer run --checker OsTrusted --mode roundtrip Foo.java
  cfinfer run --checker OsTrusted -p Foo.java     Print the commands only
  cfinfer test --mode gold -t 'Gen.*'              Compare against gold files
  cfinfer checkers                                List known type systems`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.installLogger()
		},
	}

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/cfinfer/config.cue)")

	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newTestCommand(app))
	rootCmd.AddCommand(newCheckersCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with the resulting status.
// This is called by main.main().
func Execute() {
	os.Exit(int(run(context.Background(), NewApp(Dependencies{}), os.Args[1:])))
}

// run executes the command tree with args and maps the outcome to an exit code.
func run(ctx context.Context, app *App, args []string) types.ExitCode {
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
	if err == nil {
		return types.ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return types.ExitFailure
}

// handleError reports err on w. ServiceErrors render their own message and
// issue help; silent ExitErrors print nothing; everything else falls back to
// fang's default error output.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		svcErr.Render(w)
		return
	}

	fang.DefaultErrorHandler(w, styles, err)
}
