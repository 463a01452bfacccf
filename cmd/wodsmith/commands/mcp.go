// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Lets LLM agents drive the planning assistant via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/wodsmith/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs wodsmith as an MCP (Model Context Protocol) server, letting LLM
agents like Claude hold planning conversations, search stored weeks and
ingest new ones via stdio.

Logs go to stderr so stdout stays reserved for the protocol.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  wodsmith mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "wodsmith": {
  #       "command": "wodsmith",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.HasLLM() {
		a.Logger.Warn("no LLM API key configured; send_message will fail")
	}
	if _, err := a.Seed(ctx); err != nil {
		a.Logger.Warn("seeding failed", zap.Error(err))
	}

	var sync func() error
	if a.Config.VectorBackend == "charm" {
		sync = a.Sync
	}

	server := mcpserver.NewMCPServer("wodsmith", versionInfo.Version)
	handlers := mcp.RegisterTools(server, mcp.Deps{
		Orchestrator: a.Orchestrator,
		Sessions:     a.Sessions,
		Retriever:    a.Retriever,
		Loader:       a.Loader,
		Sync:         sync,
		References:   a.Config.RetrievalCount,
		Logger:       a.Logger,
	})

	a.Logger.Info("MCP server starting on stdio")

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutdown signal received")
		handlers.Shutdown()
	case err := <-serverErr:
		handlers.Shutdown()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
