package main

import (
	"fmt"

	"github.com/aretw0/layoutkit/internal/cli"
	mcpAdapter "github.com/aretw0/layoutkit/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	var transport string
	var port int

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the Model Context Protocol server",
		Long: `Exposes the saved layouts and the field catalog to MCP clients.
The stdio transport keeps stdout for protocol messages; logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := mcpAdapter.NewServer(a.rt.Repository, a.rt.Catalog, mcpAdapter.WithLogger(a.rt.Logger))

			switch transport {
			case "stdio":
				a.rt.Logger.Info("MCP Server listening (stdio)")
				return srv.ServeStdio()
			case "sse":
				ctx := cli.NewSignalContext(cmd.Context())
				defer ctx.Cancel()
				return srv.ServeSSE(ctx, port)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
			}
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "Transport: stdio or sse")
	cmd.Flags().IntVarP(&port, "port", "p", 8081, "Port for the sse transport")
	return cmd
}
