// ABOUTME: MCP tool handler implementations for the routine assistant
// ABOUTME: Tool failures are returned as tool errors so the client sees the message
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/harper/wodsmith/internal/core"
	"github.com/harper/wodsmith/internal/ingest"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/routine"
	"github.com/harper/wodsmith/internal/session"
	"github.com/harper/wodsmith/internal/vectorstore"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

const maxSearchLimit = 20

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	orchestrator *core.Orchestrator
	sessions     *session.Store
	retriever    *rag.Retriever
	loader       *ingest.Loader
	sync         func() error
	references   int
	logger       *zap.Logger
	shutdownWg   *sync.WaitGroup // Track pending syncs
}

// SendMessage handles the send_message tool
func (h *Handlers) SendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	if h.orchestrator == nil {
		return mcp.NewToolResultError("no language model configured; set LLM_API_KEY"), nil
	}

	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		sessionID = h.sessions.Create().ID
	}

	var (
		out  core.Outcome
		view map[string]interface{}
	)
	err = h.sessions.With(sessionID, func(s *core.Session) {
		out = h.orchestrator.Process(ctx, s, message)
		view = sessionView(s)
	})
	if err != nil {
		return sessionError(sessionID, err), nil
	}

	if out.Intent == models.IntentApprove && out.Err == nil && out.State == core.StateApproved {
		h.syncAsync()
	}

	response := map[string]interface{}{
		"session_id": sessionID,
		"respuesta":  out.Reply,
		"intencion":  out.Intent.String(),
		"estado":     out.State.String(),
		"sesion":     view,
	}
	if out.Err != nil {
		response["error"] = out.Err.Error()
	}
	return jsonResult(response)
}

// GetSession handles the get_session tool
func (h *Handlers) GetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	s, err := h.sessions.Get(sessionID)
	if err != nil {
		return sessionError(sessionID, err), nil
	}
	return jsonResult(sessionView(s))
}

// ResetSession handles the reset_session tool
func (h *Handlers) ResetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}

	s, err := h.sessions.Reset(sessionID)
	if err != nil {
		return sessionError(sessionID, err), nil
	}
	return jsonResult(sessionView(s))
}

// SearchRoutines handles the search_routines tool
func (h *Handlers) SearchRoutines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", h.references)
	if limit < 1 {
		return mcp.NewToolResultError("limit must be a positive integer"), nil
	}
	limit = min(limit, maxSearchLimit)

	params := rag.QueryParams{
		Objective: request.GetString("objective", ""),
		Include:   rag.SplitList(request.GetString("include", "")),
		Avoid:     rag.SplitList(request.GetString("avoid", "")),
		Intensity: request.GetString("intensity", ""),
	}
	filter := rag.FilterFor(request.GetString("olympic", ""), request.GetString("pattern", ""))

	_, candidates, err := h.retriever.Retrieve(ctx, params, limit, filter)
	if err != nil {
		if errors.Is(err, vectorstore.ErrEmptyCollection) {
			return mcp.NewToolResultError("no routines stored yet; ingest some weeks first"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	results := make([]map[string]interface{}, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, map[string]interface{}{
			"semana_id": c.WeekID,
			"similitud": c.Similarity,
			"metadata":  c.Metadata,
		})
	}

	return jsonResult(map[string]interface{}{
		"consulta":   rag.BuildQuery(params),
		"resultados": results,
	})
}

// IngestRoutine handles the ingest_routine tool
func (h *Handlers) IngestRoutine(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		r   *models.WeekRoutine
		err error
	)

	args := request.GetArguments()
	switch {
	case args["routine"] != nil:
		payload, ok := args["routine"].(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("routine must be a JSON object"), nil
		}
		r, err = routine.Validate(payload)
	case request.GetString("path", "") != "":
		r, err = ingest.ReadFile(request.GetString("path", ""))
	default:
		return mcp.NewToolResultError("either routine or path is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid routine: %v", err)), nil
	}

	if err := h.loader.Load(ctx, r); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store routine: %v", err)), nil
	}
	h.syncAsync()

	return jsonResult(map[string]interface{}{
		"success":   true,
		"semana_id": r.WeekID,
		"dias":      len(r.Days),
	})
}

// Shutdown waits for pending syncs to complete
func (h *Handlers) Shutdown() {
	h.logger.Info("waiting for pending syncs to complete")
	h.shutdownWg.Wait()
	h.logger.Info("all syncs completed")
}

func (h *Handlers) syncAsync() {
	if h.sync == nil {
		return
	}
	h.shutdownWg.Add(1)
	go func() {
		defer h.shutdownWg.Done()
		if err := h.sync(); err != nil {
			h.logger.Warn("sync after store failed", zap.Error(err))
		}
	}()
}

func sessionView(s *core.Session) map[string]interface{} {
	view := map[string]interface{}{
		"id":           s.ID,
		"estado":       core.StateOf(s).String(),
		"aprobada":     s.Approved,
		"fecha_inicio": s.WeekStartDate,
		"n_ediciones":  s.EditCount,
		"historial":    s.History,
	}
	if s.CurrentRoutine != nil {
		view["rutina_actual"] = s.CurrentRoutine
		view["markdown"] = routine.ToMarkdown(s.CurrentRoutine)
	}
	return view
}

func sessionError(id string, err error) *mcp.CallToolResult {
	if errors.Is(err, session.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session %s not found", id))
	}
	return mcp.NewToolResultError(fmt.Sprintf("session lookup failed: %v", err))
}

func jsonResult(response interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
