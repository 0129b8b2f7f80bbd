package main

import (
	"github.com/aretw0/layoutkit/internal/cli"
	"github.com/aretw0/layoutkit/pkg/transform"
	"github.com/spf13/cobra"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the field catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "nodes",
		Short: "Print the draggable nodes built from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.rt.Catalog.LoadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return cli.PrintJSON(cmd.OutOrStdout(), transform.ImportCatalog(cat))
		},
	})
	return cmd
}
