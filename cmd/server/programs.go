package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newProgramsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "programs",
		Short: "Manage the program registry",
	}
	cmd.AddCommand(
		newProgramsListCmd(c),
		newProgramsAddCmd(c),
		newProgramsToggleCmd(c),
		newProgramsRenameCmd(c),
	)
	return cmd
}

func newProgramsListCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List programs with their member counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			details, err := a.programs.ListDetails(cmd.Context(), all)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROGRAM\tNAME\tVISIBLE\tRECEIVED")
			for _, d := range details {
				fmt.Fprintf(w, "%s\t%s\t%t\t%d/%d\n", d.EnglishName, d.ArabicName, d.Visible, d.Received, d.Total)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include hidden programs")
	return cmd
}

func newProgramsAddCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "add <english-name> <arabic-name>",
		Short: "Register a program and create its member table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.programs.Add(cmd.Context(), strings.ToLower(strings.TrimSpace(args[0])), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", p.EnglishName, p.ArabicName)
			return nil
		},
	}
}

func newProgramsToggleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <english-name>",
		Short: "Flip whether a program is listed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.programs.ToggleVisibility(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if p == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "no program named %s\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s visible=%t\n", p.EnglishName, p.Visible)
			return nil
		},
	}
}

func newProgramsRenameCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <english-name> <arabic-name>",
		Short: "Change a program's Arabic display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.programs.Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", p.EnglishName, p.ArabicName)
			return nil
		},
	}
}
