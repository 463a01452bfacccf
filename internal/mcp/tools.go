// ABOUTME: MCP tool definitions and registration for the routine assistant
// ABOUTME: Defines JSON schemas for the five tools exposed over stdio
package mcp

import (
	"sync"

	"github.com/harper/wodsmith/internal/core"
	"github.com/harper/wodsmith/internal/ingest"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Deps are the components the tools call into. Orchestrator and Sync may be nil.
type Deps struct {
	Orchestrator *core.Orchestrator
	Sessions     *session.Store
	Retriever    *rag.Retriever
	Loader       *ingest.Loader
	// Sync pushes the collection to the remote backend after a routine is stored
	Sync       func() error
	References int
	Logger     *zap.Logger
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, deps Deps) *Handlers {
	refs := deps.References
	if refs <= 0 {
		refs = 3
	}
	handlers := &Handlers{
		orchestrator: deps.Orchestrator,
		sessions:     deps.Sessions,
		retriever:    deps.Retriever,
		loader:       deps.Loader,
		sync:         deps.Sync,
		references:   refs,
		logger:       logging.OrNop(deps.Logger),
		shutdownWg:   &sync.WaitGroup{},
	}

	// 1. send_message - one conversational turn
	server.AddTool(mcp.Tool{
		Name:        "send_message",
		Description: "Send a message to the CrossFit programming assistant. Creates a session when session_id is omitted. Ask for a week, request changes, or say 'aprobar' to store the draft.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to continue; omit to start a new one",
				},
				"message": map[string]interface{}{
					"type":        "string",
					"description": "Athlete message in Spanish",
				},
			},
			Required: []string{"message"},
		},
	}, handlers.SendMessage)

	// 2. get_session - session state and current draft
	server.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get a session's state, history and current draft rendered as Markdown.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.GetSession)

	// 3. reset_session - start over in the same session
	server.AddTool(mcp.Tool{
		Name:        "reset_session",
		Description: "Discard a session's history and draft, keeping its ID.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.ResetSession)

	// 4. search_routines - similarity search over stored weeks
	server.AddTool(mcp.Tool{
		Name:        "search_routines",
		Description: "Search stored weekly routines by objective, movements and intensity. Returns week ids with similarity and metadata.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"objective": map[string]interface{}{
					"type":        "string",
					"description": "Training focus (e.g. 'fuerza', 'olímpicos')",
				},
				"include": map[string]interface{}{
					"type":        "string",
					"description": "Comma separated movements to include",
				},
				"avoid": map[string]interface{}{
					"type":        "string",
					"description": "Comma separated movements to avoid",
				},
				"intensity": map[string]interface{}{
					"type":        "string",
					"description": "baja, media, media-alta or alta",
				},
				"olympic": map[string]interface{}{
					"type":        "string",
					"description": "Only weeks containing this olympic lift",
				},
				"pattern": map[string]interface{}{
					"type":        "string",
					"description": "Only weeks containing this strength pattern",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 3)",
					"default":     3,
				},
			},
		},
	}, handlers.SearchRoutines)

	// 5. ingest_routine - store a routine directly
	server.AddTool(mcp.Tool{
		Name:        "ingest_routine",
		Description: "Validate a weekly routine (JSON object or path to a JSON file) and store it as a reference under its semana_id.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"routine": map[string]interface{}{
					"type":        "object",
					"description": "Routine object with semana_id, fecha_inicio and dias",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Path to a routine JSON file",
				},
			},
		},
	}, handlers.IngestRoutine)

	return handlers
}
