package main

import (
	"github.com/aretw0/layoutkit/internal/cli"
	"github.com/spf13/cobra"
)

// app carries the runtime shared by every subcommand. It is built once in the
// root PersistentPreRunE.
type app struct {
	overrides cli.Overrides
	rt        *cli.Runtime
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "layoutkit",
		Short: "LayoutKit stores and transforms drag-and-drop form layouts",
		Long: `LayoutKit keeps form layouts built from a field catalog: groups of fields
arranged in columns. It serves them over HTTP and MCP and inspects them from the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(a.overrides)
			if err != nil {
				return err
			}
			rt, err := cli.Build(cfg, cli.NewLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			a.rt = rt
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.rt == nil {
				return nil
			}
			return a.rt.Close()
		},
	}

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.overrides.ConfigPath, "config", "", "Config file (default: ./layoutkit.yaml if present)")
	flags.StringVar(&a.overrides.Dir, "dir", "", "Directory holding layout files (file storage)")
	flags.StringVar(&a.overrides.CatalogPath, "catalog", "", "Field catalog file, JSON or YAML (default: embedded catalog)")
	flags.StringVar(&a.overrides.Storage, "storage", "", "Storage driver: file, memory, redis or remote")
	flags.StringVar(&a.overrides.LogLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newServeCmd(a),
		newMCPCmd(a),
		newLayoutCmd(a),
		newCatalogCmd(a),
		newWorkspaceCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}
