package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "import <program> <file.csv>",
		Short: "Bulk-load members from a spreadsheet export",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.members.Import(cmd.Context(), args[0], raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported=%d skipped=%d malformed=%d\n", res.Imported, res.Skipped, res.Malformed)
			return nil
		},
	}
}
