package main

import (
	"context"

	mcptools "github.com/felixgeelhaar/linework/internal/mcp"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agent integration",
	Long: `Start a Model Context Protocol (MCP) server for AI agent integration.

The MCP server exposes the construction engine to AI agents via the
Model Context Protocol, so an agent can replay scripts, inspect the step
log and query snap targets.

Available tools:
  - linework_replay   Replay a construction script into a fresh figure
  - linework_steps    List the live steps of the current figure
  - linework_snap     Rank the snap targets near a world point
  - linework_cursor   Read or move the session cursor
  - linework_status   Get the session and figure snapshot

Examples:
  linework mcp                       # Start stdio MCP server
  linework mcp --http :8080          # Start HTTP MCP server
  linework mcp --config custom.toml  # Use specific config file`,
	RunE: runMCP,
}

var mcpHTTP string

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Start HTTP server on address (e.g., :8080)")
}

func runMCP(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Create the linework application
	lw, err := newLinework(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = lw.Close() }()

	// Create MCP server
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "linework",
		Version: version,
	})

	// Register all tools
	mcptools.RegisterAll(srv, lw)

	// Serve based on transport
	if mcpHTTP != "" {
		return mcp.ServeHTTP(ctx, srv, mcpHTTP)
	}

	// Default to stdio
	return mcp.ServeStdio(ctx, srv)
}
