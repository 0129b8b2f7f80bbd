package main

import (
	"github.com/aretw0/layoutkit/internal/cli"
	"github.com/spf13/cobra"
)

func newWorkspaceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Work with an editing workspace",
	}

	var filename string
	var state bool
	export := &cobra.Command{
		Use:   "export",
		Short: "Load a layout into a fresh workspace and print its export",
		Long: `Loads the most recent layout (or --layout) into a new workspace and prints the
layout the workspace exports. With --state, prints the workspace state instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.rt.Kit().Open(cmd.Context(), filename)
			if err != nil {
				return err
			}
			if state {
				return cli.PrintJSON(cmd.OutOrStdout(), ws.Snapshot())
			}
			return cli.PrintJSON(cmd.OutOrStdout(), ws.GetLayoutJSON())
		},
	}
	export.Flags().StringVarP(&filename, "layout", "l", "", "Layout filename (default: most recent)")
	export.Flags().BoolVar(&state, "state", false, "Print containers and available nodes instead of the export")

	cmd.AddCommand(export)
	return cmd
}
