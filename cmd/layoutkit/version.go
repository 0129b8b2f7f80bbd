package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/layoutkit"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of layoutkit",
		// No runtime needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "layoutkit version %s\n", strings.TrimSpace(layoutkit.Version))
		},
	}
}
