// ABOUTME: Standalone MCP server binary with stdio transport
// ABOUTME: Same tools as `wodsmith mcp`, for clients that launch a dedicated binary
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/wodsmith/internal/app"
	"github.com/harper/wodsmith/internal/config"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/mcp"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	if _, err := a.Seed(ctx); err != nil {
		logger.Warn("seeding failed", zap.Error(err))
	}

	server := mcpserver.NewMCPServer("wodsmith", "0.1.0")
	handlers := mcp.RegisterTools(server, mcp.Deps{
		Orchestrator: a.Orchestrator,
		Sessions:     a.Sessions,
		Retriever:    a.Retriever,
		Loader:       a.Loader,
		References:   cfg.RetrievalCount,
		Logger:       logger,
	})
	defer handlers.Shutdown()

	logger.Info("MCP server starting on stdio")
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}
