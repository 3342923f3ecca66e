// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/cfinfer/cfinfer/pkg/checker"

	"github.com/spf13/cobra"
)

// newCheckersCommand creates the `cfinfer checkers` command.
func newCheckersCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "checkers",
		Short: "List the known type systems",
		Long: `List the built-in type systems and those declared in the config file.

Names are matched case-insensitively by 'cfinfer run --checker'. Any other
value is used as the fully qualified checker class.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			reg, err := app.checkers(cfg)
			if err != nil {
				return err
			}
			printCheckers(app.stdout, reg.All())
			return nil
		},
	}
}

func printCheckers(w io.Writer, descs []checker.Descriptor) {
	fmt.Fprintln(w, TitleStyle.Render("Type systems"))
	fmt.Fprintln(w)
	for _, d := range descs {
		fmt.Fprintf(w, "%s %s\n", columnStyle.Render(d.Name), CmdStyle.Render(d.Checker))
		if d.Solver != "" {
			fmt.Fprintf(w, "%s solver: %s\n", columnStyle.Render(""), VerboseStyle.Render(d.Solver))
		}
		if d.Stubs != "" {
			fmt.Fprintf(w, "%s stubs: %s\n", columnStyle.Render(""), VerboseStyle.Render(d.Stubs))
		}
		if d.HasQualifierPair() {
			fmt.Fprintf(w, "%s qualifiers: %s <: %s\n", columnStyle.Render(""),
				VerboseStyle.Render(d.Subtype), VerboseStyle.Render(d.Supertype))
		}
	}
}
