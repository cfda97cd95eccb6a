package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/foldrag/internal/adapters/driven/manifest/jsonfile"
	"github.com/custodia-labs/foldrag/internal/adapters/driving/mcp"
	"github.com/custodia-labs/foldrag/internal/core/ports/driven"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions of the indexed folder.

By default, the server communicates over stdio using JSON-RPC.
Use --port to serve streamable HTTP instead.

Tools:     ask, search
Resources: foldrag://manifest, foldrag://files

Examples:
  # Stdio mode (default)
  foldrag mcp serve --store ./rag_store

  # HTTP mode (for MCP Inspector, remote access)
  foldrag mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pipeline, closeFn, err := newPipeline(cfg, driven.NopProgress{})
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := commandContext(cmd)
	if err := pipeline.Load(ctx); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Pipeline: pipeline,
		Manifest: jsonfile.NewStore(cfg.ManifestPath()),
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
