// ABOUTME: Generator drafts new weekly routines from retrieved references and edits existing ones
// ABOUTME: Each call is one completion followed by the parse then validate pipeline
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/wodsmith/internal/completion"
	"github.com/harper/wodsmith/internal/llm"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/routine"
	"github.com/harper/wodsmith/internal/vectorstore"
	"go.uber.org/zap"
)

// ErrGenerationFailed wraps failures of the language model call itself
var ErrGenerationFailed = errors.New("generation failed")

// Modes, also used as the metrics label
const (
	ModeGenerate = "generate"
	ModeEdit     = "edit"
)

// Retriever supplies formatted reference context for a request
type Retriever interface {
	Retrieve(ctx context.Context, params rag.QueryParams, k int, filter vectorstore.Filter) (string, []models.Candidate, error)
}

// Recorder receives completion latencies
type Recorder interface {
	ObserveLLMCall(mode string, d time.Duration)
}

// Config holds the sampling parameters
type Config struct {
	References            int
	MaxTokens             int
	GenerationTemperature float32
	EditTemperature       float32
}

// DefaultConfig returns 3 references, 8000 tokens, 0.7 for drafts and 0.3 for edits
func DefaultConfig() Config {
	return Config{
		References:            3,
		MaxTokens:             8000,
		GenerationTemperature: 0.7,
		EditTemperature:       0.3,
	}
}

// Generator drafts and edits routines
type Generator struct {
	llm       llm.Completer
	retriever Retriever
	cfg       Config
	recorder  Recorder
	logger    *zap.Logger
}

// New creates a Generator. Zero config fields fall back to DefaultConfig.
func New(completer llm.Completer, retriever Retriever, cfg Config, logger *zap.Logger) *Generator {
	def := DefaultConfig()
	if cfg.References <= 0 {
		cfg.References = def.References
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.GenerationTemperature <= 0 {
		cfg.GenerationTemperature = def.GenerationTemperature
	}
	if cfg.EditTemperature <= 0 {
		cfg.EditTemperature = def.EditTemperature
	}
	return &Generator{
		llm:       completer,
		retriever: retriever,
		cfg:       cfg,
		logger:    logging.OrNop(logger),
	}
}

// SetRecorder attaches a latency recorder
func (g *Generator) SetRecorder(r Recorder) {
	g.recorder = r
}

// GenerateRequest is a request for a new week
type GenerateRequest struct {
	Request       string
	WeekStartDate string
	History       []models.Message
	// References is the number of routines to retrieve; 0 uses the configured default
	References int
}

// EditRequest is a correction to the current week
type EditRequest struct {
	Correction string
	Current    *models.WeekRoutine
	History    []models.Message
}

// Generate retrieves references for the request and drafts a new week
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (string, *models.WeekRoutine, error) {
	k := req.References
	if k <= 0 {
		k = g.cfg.References
	}

	references, _, err := g.retriever.Retrieve(ctx, rag.QueryParams{Objective: req.Request}, k, nil)
	if err != nil {
		return "", nil, fmt.Errorf("failed to retrieve references: %w", err)
	}

	weekID, err := models.WeekIDFor(req.WeekStartDate)
	if err != nil {
		g.logger.Warn("week start date has no week id", zap.String("fecha_inicio", req.WeekStartDate), zap.Error(err))
		weekID = ""
	}

	raw, err := g.complete(ctx, ModeGenerate, llm.CompletionRequest{
		System:      GenerationSystemPrompt,
		Messages:    withTurn(req.History, generationPrompt(references, req.Request, req.WeekStartDate, weekID)),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.GenerationTemperature,
	})
	if err != nil {
		return "", nil, err
	}

	message, payload, err := completion.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse generated routine: %w", err)
	}

	record, err := routine.Validate(payload)
	if err != nil {
		return "", nil, fmt.Errorf("generated routine is invalid: %w", err)
	}

	if weekID != "" && record.WeekID != weekID {
		g.logger.Warn("generated week id differs from start date",
			zap.String("semana_id", record.WeekID), zap.String("expected", weekID))
	}
	g.logger.Info("routine generated", zap.String("semana_id", record.WeekID), zap.Int("dias", len(record.Days)))

	return message, record, nil
}

// Edit applies a correction to the current routine. The result replaces the whole record
// but always keeps the current week id.
func (g *Generator) Edit(ctx context.Context, req EditRequest) (string, *models.WeekRoutine, error) {
	if req.Current == nil {
		return "", nil, errors.New("no routine to edit")
	}

	prompt, err := editPrompt(req.Current, req.Correction)
	if err != nil {
		return "", nil, err
	}

	raw, err := g.complete(ctx, ModeEdit, llm.CompletionRequest{
		System:      EditSystemPrompt,
		Messages:    withTurn(req.History, prompt),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.EditTemperature,
	})
	if err != nil {
		return "", nil, err
	}

	message, payload, err := completion.Parse(raw)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse edited routine: %w", err)
	}

	if got := models.MetaText(payload["semana_id"]); got != req.Current.WeekID {
		g.logger.Warn("edit changed the week id, restoring it",
			zap.String("returned", got), zap.String("semana_id", req.Current.WeekID))
		payload["semana_id"] = req.Current.WeekID
	}

	record, err := routine.Validate(payload)
	if err != nil {
		return "", nil, fmt.Errorf("edited routine is invalid: %w", err)
	}

	g.logger.Info("routine edited", zap.String("semana_id", record.WeekID))
	return message, record, nil
}

func (g *Generator) complete(ctx context.Context, mode string, req llm.CompletionRequest) (string, error) {
	start := time.Now()
	raw, err := g.llm.Complete(ctx, req)
	elapsed := time.Since(start)
	if g.recorder != nil {
		g.recorder.ObserveLLMCall(mode, elapsed)
	}
	if err != nil {
		g.logger.Error("completion failed", zap.String("mode", mode), zap.Duration("elapsed", elapsed), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	g.logger.Debug("completion received", zap.String("mode", mode), zap.Duration("elapsed", elapsed), zap.Int("chars", len(raw)))
	return raw, nil
}

func withTurn(history []models.Message, content string) []models.Message {
	messages := make([]models.Message, 0, len(history)+1)
	messages = append(messages, history...)
	return append(messages, models.UserMessage(content))
}
