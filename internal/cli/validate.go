package cli

import (
	"fmt"

	"github.com/Zachkp/folio/internal/profile"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <profile>",
		Short: "Check that a profile file parses and is complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := profile.Load(args[0])
			if err != nil {
				color.New(color.FgRed).Fprint(out, "✗ ")
				fmt.Fprintln(out, args[0])
				return err
			}
			color.New(color.FgGreen).Fprint(out, "✓ ")
			fmt.Fprintf(out, "%s: %s, %d projects, %d experience entries\n",
				args[0], p.Name, len(p.Projects), len(p.Experience))
			return nil
		},
	}
}
