// ABOUTME: Serve command runs the HTTP API
// ABOUTME: Seeds the collection, then serves until interrupted
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/wodsmith/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

Routes:
  POST /api/sessions                  start a conversation
  GET  /api/sessions/:id              session state and current draft
  POST /api/sessions/:id/messages     send {"mensaje": "..."}
  POST /api/sessions/:id/reset        start over in the same session
  GET  /api/routines/search           similarity search over stored weeks
  POST /api/routines                  store a routine JSON
  GET  /healthz                       health check
  GET  /metrics                       Prometheus metrics`,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: HTTP_ADDR or :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.HasLLM() {
		a.Logger.Warn("no LLM API key configured; message routes will return 503")
	}
	if n, err := a.Seed(ctx); err != nil {
		a.Logger.Warn("seeding failed", zap.Error(err))
	} else if n > 0 {
		a.Logger.Info("collection seeded", zap.Int("routines", n))
	}

	addr := serveAddr
	if addr == "" {
		addr = a.Config.HTTPAddr
	}

	e := server.New(server.NewHandler(server.Deps{
		Orchestrator: a.Orchestrator,
		Sessions:     a.Sessions,
		Retriever:    a.Retriever,
		Loader:       a.Loader,
		Metrics:      a.Metrics,
		Logger:       a.Logger,
		References:   a.Config.RetrievalCount,
	}))

	if err := server.Run(ctx, e, addr, a.Logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
