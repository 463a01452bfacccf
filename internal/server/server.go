// ABOUTME: HTTP API for the assistant built on echo
// ABOUTME: Exposes sessions, routine search and ingestion, health and Prometheus metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/harper/wodsmith/internal/core"
	"github.com/harper/wodsmith/internal/ingest"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/metrics"
	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// Deps are the components the handlers use. Orchestrator may be nil when no LLM is configured.
type Deps struct {
	Orchestrator *core.Orchestrator
	Sessions     *session.Store
	Retriever    *rag.Retriever
	Loader       *ingest.Loader
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
	// References is the default number of search results
	References int
}

// Handler handles HTTP requests
type Handler struct {
	orchestrator *core.Orchestrator
	sessions     *session.Store
	retriever    *rag.Retriever
	loader       *ingest.Loader
	metrics      *metrics.Metrics
	logger       *zap.Logger
	references   int
}

// NewHandler creates a Handler
func NewHandler(d Deps) *Handler {
	refs := d.References
	if refs <= 0 {
		refs = 3
	}
	return &Handler{
		orchestrator: d.Orchestrator,
		sessions:     d.Sessions,
		retriever:    d.Retriever,
		loader:       d.Loader,
		metrics:      d.Metrics,
		logger:       logging.OrNop(d.Logger),
		references:   refs,
	}
}

// RegisterRoutes registers routes with the echo server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.POST("/sessions/:id/messages", h.SendMessage)
	api.POST("/sessions/:id/reset", h.ResetSession)
	api.GET("/sessions/:id/routine", h.GetRoutine)
	api.GET("/routines/search", h.SearchRoutines)
	api.POST("/routines", h.IngestRoutine)

	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))
}

// New returns an echo instance with middleware and routes
func New(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				h.logger.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			h.logger.Info("request", fields...)
			return nil
		},
	}))

	h.RegisterRoutes(e)
	return e
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Health returns health status and the collection size
func (h *Handler) Health(c echo.Context) error {
	status := map[string]interface{}{
		"status": "ok",
		"llm":    h.orchestrator != nil,
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if h.loader != nil {
		if count, err := h.loader.Count(c.Request().Context()); err == nil {
			status["documentos"] = count
		}
	}
	return c.JSON(http.StatusOK, status)
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}
