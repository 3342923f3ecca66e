// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/cfinfer/cfinfer/internal/command"
	"github.com/cfinfer/cfinfer/internal/config"
	"github.com/cfinfer/cfinfer/internal/issue"
	"github.com/cfinfer/cfinfer/internal/pipeline"
	"github.com/cfinfer/cfinfer/pkg/checker"
	"github.com/cfinfer/cfinfer/pkg/inference"

	"github.com/spf13/cobra"
)

// runFlags holds the raw `run` flag values before they become a RunConfig.
type runFlags struct {
	stubs          string
	checker        string
	debug          bool
	extraClasspath string
	javaArgs       string
	mode           string
	logLevel       string
	steps          string
	notStrict      bool
	outputDir      string
	inPlace        bool
	printWorld     bool
	progArgs       string
	solver         string
	xmx            string
	printOnly      bool
}

// newRunCommand creates the `cfinfer run` command.
func newRunCommand(app *App) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [flags] <file.java>...",
		Short: "Run an inference pipeline on Java sources",
		Long: `Run an inference pipeline on Java sources.

The pipeline is selected with --mode or given explicitly with --steps.
Every step is printed before it runs; with --print-only nothing is executed.

Mode, log level, heap size and output directory fall back to the
` + CmdStyle.Render("defaults") + ` section of the config file when the flag is not given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			rc := flags.runConfig(cmd, cfg, args)
			return executeRun(cmd.Context(), app, cfg, rc)
		},
	}

	flags.register(cmd)

	return cmd
}

// register defines the `run` flags on cmd.
func (rf *runFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&rf.stubs, "stubs", "", "stub file passed to the checker")
	f.StringVar(&rf.checker, "checker", "", "checker name or fully qualified checker class (required)")
	f.BoolVar(&rf.debug, "debug", false, "wait for a debugger on port 5005")
	f.StringVar(&rf.extraClasspath, "extra-classpath", "", "additional classpath entries")
	f.StringVar(&rf.javaArgs, "java-args", "", "extra JVM arguments, split with shell rules")
	f.StringVar(&rf.mode, "mode", string(inference.DefaultMode), "pipeline mode: infer, typecheck, roundtrip, roundtrip-typecheck")
	f.StringVar(&rf.logLevel, "log-level", string(inference.DefaultLogLevel), "Java side log level: OFF, ERROR, WARN, INFO, DEBUG, TRACE, ALL")
	f.StringVar(&rf.steps, "steps", "", "comma-separated steps overriding --mode (generate, typecheck, insert-jaif, floodsolve)")
	f.BoolVar(&rf.notStrict, "not-strict", false, "relax checker strictness and continue after failing steps")
	f.StringVar(&rf.outputDir, "output-dir", inference.DefaultOutputDir, "directory for default.jaif and annotated sources")
	f.BoolVar(&rf.inPlace, "in-place", false, "insert annotations into the original sources")
	f.BoolVar(&rf.printWorld, "print-world", false, "dump the constraint world during inference")
	f.StringVar(&rf.progArgs, "prog-args", "", "extra program arguments, split with shell rules")
	f.StringVar(&rf.solver, "solver", "", "solver class overriding the checker default")
	f.StringVar(&rf.xmx, "xmx", inference.DefaultXmx, "JVM max heap size")
	f.BoolVarP(&rf.printOnly, "print-only", "p", false, "print the commands without executing them")

	_ = cmd.MarkFlagRequired("checker")
}

// runConfig assembles the RunConfig. Flags that were not given on the
// command line take their value from the config file defaults.
func (rf *runFlags) runConfig(cmd *cobra.Command, cfg *config.Config, files []string) inference.RunConfig {
	rc := inference.RunConfig{
		Checker:        rf.checker,
		Solver:         rf.solver,
		Stubs:          rf.stubs,
		ExtraClasspath: rf.extraClasspath,
		JavaArgs:       rf.javaArgs,
		ProgArgs:       rf.progArgs,
		Xmx:            rf.xmx,
		LogLevel:       inference.LogLevel(rf.logLevel),
		Mode:           inference.Mode(rf.mode),
		Steps:          rf.steps,
		OutputDir:      rf.outputDir,
		Debug:          rf.debug,
		NotStrict:      rf.notStrict,
		PrintWorld:     rf.printWorld,
		InPlace:        rf.inPlace,
		PrintOnly:      rf.printOnly,
		Files:          files,
	}

	changed := cmd.Flags().Changed
	if !changed("mode") && cfg.Defaults.Mode != "" {
		rc.Mode = cfg.Defaults.Mode
	}
	if !changed("log-level") && cfg.Defaults.LogLevel != "" {
		rc.LogLevel = cfg.Defaults.LogLevel
	}
	if !changed("xmx") && cfg.Defaults.Xmx != "" {
		rc.Xmx = cfg.Defaults.Xmx
	}
	if !changed("output-dir") && cfg.Defaults.OutputDir != "" {
		rc.OutputDir = cfg.Defaults.OutputDir
	}

	return rc.WithDefaults()
}

// executeRun validates rc, resolves the checker and drives the pipeline.
func executeRun(ctx context.Context, app *App, cfg *config.Config, rc inference.RunConfig) error {
	if err := rc.Validate(); err != nil {
		return classifyRunError(err, app.verbose)
	}

	reg, err := app.checkers(cfg)
	if err != nil {
		return err
	}
	desc := reg.Resolve(rc.Checker)
	if desc.Synthetic {
		slog.Debug("checker not registered, using raw class name", "checker", rc.Checker)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	if rc.NotStrict && !rc.PrintOnly {
		fmt.Fprintf(app.stderr, "%s --not-strict: failing steps are reported and the run continues\n",
			WarningStyle.Render("!"))
	}

	driver := pipeline.NewDriver(toolchainFromConfig(cfg),
		pipeline.WithWorkDir(wd),
		pipeline.WithIO(app.stdin, app.stdout, app.stderr),
		pipeline.WithLogger(slog.Default()),
	)
	if _, err := driver.Run(ctx, rc, desc); err != nil {
		return classifyRunError(err, app.verbose)
	}
	return nil
}

// classifyRunError maps pipeline failures to issue catalog IDs. Toolchain
// errors gain suggestions on the way.
func classifyRunError(err error, verbose bool) error {
	issueID := issue.StepFailedId

	switch {
	case errors.Is(err, inference.ErrInvalidStep):
		issueID = issue.UnknownStepId
	case errors.Is(err, inference.ErrInvalidRunConfig),
		errors.Is(err, inference.ErrInvalidMode),
		errors.Is(err, inference.ErrInvalidLogLevel),
		errors.Is(err, checker.ErrInvalidDescriptor):
		issueID = issue.InvalidRunConfigId
	case errors.Is(err, command.ErrDistributionNotFound):
		issueID = issue.DistributionNotFoundId
		err = issue.NewErrorContext().
			WithOperation("assemble classpath").
			WithSuggestion("Set CHECKER_INFERENCE (or toolchain.inference_home) to the inference checkout").
			WithSuggestion("Build the distribution so that its dist directory holds the jars").
			Wrap(err).
			BuildError()
	case errors.Is(err, command.ErrJavaHomeNotSet):
		issueID = issue.JavaHomeNotSetId
		err = issue.NewErrorContext().
			WithOperation("locate java").
			WithSuggestion("Set JAVA_HOME (or toolchain.java_home) to a JDK installation").
			Wrap(err).
			BuildError()
	case errors.Is(err, pipeline.ErrSolutionMissing):
		issueID = issue.SolutionArtifactMissingId
	case errors.Is(err, pipeline.ErrSourceMissing):
		issueID = issue.SourceFileMissingId
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist):
		issueID = issue.ToolNotFoundId
	}

	return newServiceError(err, issueID, verbose)
}
