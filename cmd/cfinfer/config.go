// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cfinfer/cfinfer/internal/config"
	"github.com/cfinfer/cfinfer/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `cfinfer config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cfinfer configuration",
		Long: `Manage cfinfer configuration.

Configuration is read from the --config file, else from:
  - Linux: $XDG_CONFIG_HOME/cfinfer/config.cue (default ~/.config/cfinfer/config.cue)
  - macOS: ~/Library/Application Support/cfinfer/config.cue
  - Windows: %APPDATA%\cfinfer\config.cue
and finally from ./config.cue.

CHECKER_INFERENCE, JAVA_HOME, AFU_HOME and CHECKERS_TESTS (or CHECKERS)
override the toolchain and harness locations of the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig(app.loadOptions())
			if err != nil {
				return app.fail(err, issue.ConfigLoadFailedId)
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return err
	}
	path, err := app.Config.Path(app.loadOptions())
	if err != nil {
		return app.fail(err, issue.ConfigLoadFailedId)
	}

	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("toolchain"))
	printValue(w, "inference_home", cfg.Toolchain.InferenceHome)
	printValue(w, "java_home", cfg.Toolchain.JavaHome)
	printValue(w, "afu_home", cfg.Toolchain.AFUHome)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("defaults"))
	printValue(w, "mode", cfg.Defaults.Mode.String())
	printValue(w, "log_level", cfg.Defaults.LogLevel.String())
	printValue(w, "xmx", cfg.Defaults.Xmx)
	printValue(w, "output_dir", cfg.Defaults.OutputDir)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("checkers"))
	descs := cfg.Descriptors()
	if len(descs) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, d := range descs {
		fmt.Fprintf(w, "  - %s (%s)\n", valueStyle.Render(d.Name), d.Checker)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("harness"))
	printValue(w, "checkers_tests", cfg.Harness.CheckersTests)
	printValue(w, "search_dirs", strings.Join(cfg.Harness.SearchDirs, ", "))
	printValue(w, "gold_dir", cfg.Harness.GoldDir)
	printValue(w, "checker", cfg.Harness.Checker)
	printValue(w, "include", strings.Join(cfg.Harness.Include, ", "))

	return nil
}

func printValue(w io.Writer, key, value string) {
	if value == "" {
		fmt.Fprintf(w, "  %s: %s\n", key, SubtitleStyle.Render("(not set)"))
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", key, SuccessStyle.Render(value))
}

func showConfigPath(app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	path, err := app.Config.Path(app.loadOptions())
	if err != nil {
		return app.fail(err, issue.ConfigLoadFailedId)
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	if path == "" {
		fmt.Fprintf(app.stdout, "Config file: %s\n", SubtitleStyle.Render("(none, using defaults)"))
		return nil
	}
	fmt.Fprintf(app.stdout, "Config file: %s\n", path)
	return nil
}
