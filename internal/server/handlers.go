// ABOUTME: Request handlers for sessions and the routine collection
// ABOUTME: Session handlers serialize through session.Store.With so one conversation runs at a time
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/harper/wodsmith/internal/core"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/routine"
	"github.com/harper/wodsmith/internal/session"
	"github.com/harper/wodsmith/internal/vectorstore"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxSearchLimit = 20

// SessionResponse is the public view of a session
type SessionResponse struct {
	ID            string              `json:"id"`
	State         string              `json:"estado"`
	Approved      bool                `json:"aprobada"`
	WeekStartDate string              `json:"fecha_inicio"`
	EditCount     int                 `json:"n_ediciones"`
	History       []models.Message    `json:"historial"`
	Routine       *models.WeekRoutine `json:"rutina_actual,omitempty"`
	Markdown      string              `json:"markdown,omitempty"`
}

// MessageRequest is the body of POST /api/sessions/:id/messages
type MessageRequest struct {
	Message string `json:"mensaje" validate:"required"`
}

// MessageResponse is the reply to one message
type MessageResponse struct {
	Reply   string          `json:"respuesta"`
	Intent  string          `json:"intencion"`
	Error   string          `json:"error,omitempty"`
	Session SessionResponse `json:"sesion"`
}

// SearchResponse lists the matches for a routine search
type SearchResponse struct {
	Query   string             `json:"consulta"`
	Results []models.Candidate `json:"resultados"`
}

func newSessionResponse(s *core.Session) SessionResponse {
	resp := SessionResponse{
		ID:            s.ID,
		State:         core.StateOf(s).String(),
		Approved:      s.Approved,
		WeekStartDate: s.WeekStartDate,
		EditCount:     s.EditCount,
		History:       s.History,
		Routine:       s.CurrentRoutine,
	}
	if s.CurrentRoutine != nil {
		resp.Markdown = routine.ToMarkdown(s.CurrentRoutine)
	}
	return resp
}

// CreateSession starts a new conversation
func (h *Handler) CreateSession(c echo.Context) error {
	s := h.sessions.Create()
	h.logger.Info("session created", zap.String("session_id", s.ID))
	return c.JSON(http.StatusCreated, newSessionResponse(s))
}

// GetSession returns a session with its current draft
func (h *Handler) GetSession(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

// SendMessage runs one conversational turn
func (h *Handler) SendMessage(c echo.Context) error {
	if h.orchestrator == nil {
		return errorJSON(c, http.StatusServiceUnavailable, "no language model configured")
	}

	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "mensaje is required")
	}

	var resp MessageResponse
	err := h.sessions.With(c.Param("id"), func(s *core.Session) {
		out := h.orchestrator.Process(c.Request().Context(), s, req.Message)
		resp.Reply = out.Reply
		resp.Intent = out.Intent.String()
		if out.Err != nil {
			resp.Error = out.Err.Error()
		}
		resp.Session = newSessionResponse(s.Clone())
	})
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetRoutine renders the current draft as Markdown, or HTML with ?format=html
func (h *Handler) GetRoutine(c echo.Context) error {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		return h.sessionError(c, err)
	}
	if !s.HasRoutine() {
		return errorJSON(c, http.StatusNotFound, "session has no routine yet")
	}

	if c.QueryParam("format") == "html" {
		html, err := routine.ToHTML(s.CurrentRoutine)
		if err != nil {
			h.logger.Error("render failed", zap.String("session_id", s.ID), zap.Error(err))
			return errorJSON(c, http.StatusInternalServerError, "failed to render routine")
		}
		return c.HTML(http.StatusOK, html)
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(routine.ToMarkdown(s.CurrentRoutine)))
}

// ResetSession clears a conversation but keeps its ID
func (h *Handler) ResetSession(c echo.Context) error {
	s, err := h.sessions.Reset(c.Param("id"))
	if err != nil {
		return h.sessionError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

// SearchRoutines runs a similarity search over stored routines
func (h *Handler) SearchRoutines(c echo.Context) error {
	limit := h.references
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return errorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxSearchLimit)
	}

	params := rag.QueryParams{
		Objective: c.QueryParam("objective"),
		Include:   rag.SplitList(c.QueryParam("include")),
		Avoid:     rag.SplitList(c.QueryParam("avoid")),
		Intensity: c.QueryParam("intensity"),
	}
	filter := rag.FilterFor(c.QueryParam("olympic"), c.QueryParam("pattern"))

	_, candidates, err := h.retriever.Retrieve(c.Request().Context(), params, limit, filter)
	if err != nil {
		if errors.Is(err, vectorstore.ErrEmptyCollection) {
			return errorJSON(c, http.StatusNotFound, "no routines stored yet")
		}
		h.logger.Error("search failed", zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "search failed")
	}
	if candidates == nil {
		candidates = []models.Candidate{}
	}
	return c.JSON(http.StatusOK, SearchResponse{Query: rag.BuildQuery(params), Results: candidates})
}

// IngestRoutine validates a routine and stores it under its week id
func (h *Handler) IngestRoutine(c echo.Context) error {
	var payload map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&payload); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid JSON body")
	}

	r, err := routine.Validate(payload)
	if err != nil {
		var verr *routine.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "routine validation failed",
				"fields": verr.Fields,
			})
		}
		return errorJSON(c, http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.loader.Load(c.Request().Context(), r); err != nil {
		h.logger.Error("ingest failed", zap.String("semana_id", r.WeekID), zap.Error(err))
		return errorJSON(c, http.StatusInternalServerError, "failed to store routine")
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"semana_id": r.WeekID,
		"dias":      len(r.Days),
	})
}

func (h *Handler) sessionError(c echo.Context, err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return errorJSON(c, http.StatusNotFound, "session not found")
	}
	h.logger.Error("session lookup failed", zap.Error(err))
	return errorJSON(c, http.StatusInternalServerError, "internal error")
}
