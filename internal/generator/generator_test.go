// ABOUTME: Tests for generation and editing against a scripted completer and retriever
// ABOUTME: Covers prompt contents, sampling parameters, week id pinning and error wrapping
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/harper/wodsmith/internal/completion"
	"github.com/harper/wodsmith/internal/llm"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/routine"
	"github.com/harper/wodsmith/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	err   error
	calls []llm.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

type fakeRetriever struct {
	context string
	err     error
	params  rag.QueryParams
	k       int
}

func (f *fakeRetriever) Retrieve(_ context.Context, params rag.QueryParams, k int, _ vectorstore.Filter) (string, []models.Candidate, error) {
	f.params = params
	f.k = k
	return f.context, nil, f.err
}

type fakeRecorder struct {
	modes []string
}

func (f *fakeRecorder) ObserveLLMCall(mode string, _ time.Duration) {
	f.modes = append(f.modes, mode)
}

func intPtr(v int) *int { return &v }

func week(id string) *models.WeekRoutine {
	return &models.WeekRoutine{
		WeekID:    id,
		StartDate: "2025-02-03",
		Days: []models.Day{{
			Name:        "Lunes",
			Date:        "2025-02-03",
			PrimaryType: models.BlockOly,
			Primary:     &models.PrimaryBlock{Type: models.BlockOly, Movement: "Snatch", Sets: intPtr(5), Reps: "2"},
			WOD: models.WOD{
				Format:    models.FormatEMOM,
				Duration:  intPtr(12),
				Exercises: []models.Exercise{{Name: "Power snatch", Reps: "3"}},
			},
			Metadata: models.DayMetadata{
				MuscleGroups: []string{"piernas"},
				OlympicLifts: []string{"snatch"},
				Intensity:    "media-alta",
			},
		}},
	}
}

func reply(t *testing.T, message string, r *models.WeekRoutine) string {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return "MENSAJE: " + message + "\n\nJSON:\n```json\n" + string(data) + "\n```"
}

func TestGenerate(t *testing.T) {
	completer := &fakeCompleter{reply: reply(t, "Semana con foco en snatch.", week("semana_2025_W06"))}
	retriever := &fakeRetriever{context: "RUTINAS DE REFERENCIA\n..."}
	recorder := &fakeRecorder{}
	g := New(completer, retriever, Config{}, nil)
	g.SetRecorder(recorder)

	history := []models.Message{models.UserMessage("hola"), models.AssistantMessage("¿qué semana querés?")}
	message, record, err := g.Generate(context.Background(), GenerateRequest{
		Request:       "Quiero una semana con énfasis en snatch",
		WeekStartDate: "2025-02-03",
		History:       history,
	})
	require.NoError(t, err)

	assert.Equal(t, "Semana con foco en snatch.", message)
	assert.Equal(t, "semana_2025_W06", record.WeekID)

	assert.Equal(t, "Quiero una semana con énfasis en snatch", retriever.params.Objective)
	assert.Equal(t, 3, retriever.k)

	require.Len(t, completer.calls, 1)
	call := completer.calls[0]
	assert.Equal(t, GenerationSystemPrompt, call.System)
	assert.Equal(t, float32(0.7), call.Temperature)
	assert.Equal(t, 8000, call.MaxTokens)
	require.Len(t, call.Messages, 3)
	assert.Equal(t, history[0], call.Messages[0])
	last := call.Messages[2]
	assert.Equal(t, models.RoleUser, last.Role)
	assert.Contains(t, last.Content, "RUTINAS DE REFERENCIA\n...")
	assert.Contains(t, last.Content, "Quiero una semana con énfasis en snatch")
	assert.Contains(t, last.Content, "FECHA DE INICIO DE LA SEMANA: 2025-02-03")
	assert.Contains(t, last.Content, "SEMANA_ID: semana_2025_W06")

	assert.Equal(t, []string{ModeGenerate}, recorder.modes)
	assert.Len(t, history, 2, "caller history must not grow")
}

func TestGenerate_ReferenceOverride(t *testing.T) {
	completer := &fakeCompleter{reply: reply(t, "ok", week("semana_2025_W06"))}
	retriever := &fakeRetriever{}
	g := New(completer, retriever, Config{References: 5}, nil)

	_, _, err := g.Generate(context.Background(), GenerateRequest{Request: "x", WeekStartDate: "2025-02-03", References: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, retriever.k)

	_, _, err = g.Generate(context.Background(), GenerateRequest{Request: "x", WeekStartDate: "2025-02-03"})
	require.NoError(t, err)
	assert.Equal(t, 5, retriever.k)
}

func TestGenerate_Errors(t *testing.T) {
	valid := reply(t, "ok", week("semana_2025_W06"))
	invalid := week("semana_2025_W06")
	invalid.Days[0].WOD.Format = "Tabata"

	tests := []struct {
		name      string
		retriever *fakeRetriever
		completer *fakeCompleter
		wantErr   error
	}{
		{
			name:      "empty collection",
			retriever: &fakeRetriever{err: vectorstore.ErrEmptyCollection},
			completer: &fakeCompleter{reply: valid},
			wantErr:   vectorstore.ErrEmptyCollection,
		},
		{
			name:      "completion failure",
			retriever: &fakeRetriever{},
			completer: &fakeCompleter{err: errors.New("rate limited")},
			wantErr:   ErrGenerationFailed,
		},
		{
			name:      "missing message",
			retriever: &fakeRetriever{},
			completer: &fakeCompleter{reply: `JSON: {"semana_id": "x"}`},
			wantErr:   completion.ErrMissingMessageSection,
		},
		{
			name:      "malformed payload",
			retriever: &fakeRetriever{},
			completer: &fakeCompleter{reply: "MENSAJE: hola\nJSON: {\"semana_id\": }"},
			wantErr:   completion.ErrMalformedPayload,
		},
		{
			name:      "schema violation",
			retriever: &fakeRetriever{},
			completer: &fakeCompleter{reply: reply(t, "ok", invalid)},
			wantErr:   routine.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.completer, tt.retriever, Config{}, nil)
			_, record, err := g.Generate(context.Background(), GenerateRequest{Request: "semana", WeekStartDate: "2025-02-03"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, record)
		})
	}
}

func TestGenerate_RetrievalSkipsCompletion(t *testing.T) {
	completer := &fakeCompleter{}
	g := New(completer, &fakeRetriever{err: vectorstore.ErrEmptyCollection}, Config{}, nil)

	_, _, err := g.Generate(context.Background(), GenerateRequest{Request: "x", WeekStartDate: "2025-02-03"})
	require.Error(t, err)
	assert.Empty(t, completer.calls)
}

func TestEdit(t *testing.T) {
	current := week("semana_2025_W06")
	edited := week("semana_2025_W06")
	edited.Days[0].WOD.Format = models.FormatForTime
	edited.Days[0].WOD.Duration = nil
	edited.Days[0].WOD.TimeCap = intPtr(15)

	completer := &fakeCompleter{reply: reply(t, "Cambié el WOD a For Time.", edited)}
	recorder := &fakeRecorder{}
	g := New(completer, &fakeRetriever{err: errors.New("must not be called")}, Config{}, nil)
	g.SetRecorder(recorder)

	message, record, err := g.Edit(context.Background(), EditRequest{
		Correction: "cambiá el WOD del lunes a For Time",
		Current:    current,
	})
	require.NoError(t, err)

	assert.Equal(t, "Cambié el WOD a For Time.", message)
	assert.Equal(t, models.FormatForTime, record.Days[0].WOD.Format)
	assert.Equal(t, models.FormatEMOM, current.Days[0].WOD.Format, "current routine must not be mutated")

	require.Len(t, completer.calls, 1)
	call := completer.calls[0]
	assert.Equal(t, EditSystemPrompt, call.System)
	assert.Equal(t, float32(0.3), call.Temperature)
	require.Len(t, call.Messages, 1)
	assert.Contains(t, call.Messages[0].Content, `"semana_id": "semana_2025_W06"`)
	assert.Contains(t, call.Messages[0].Content, "cambiá el WOD del lunes a For Time")
	assert.Equal(t, []string{ModeEdit}, recorder.modes)
}

func TestEdit_PinsWeekID(t *testing.T) {
	tests := []struct {
		name     string
		returned *models.WeekRoutine
	}{
		{"different id", week("semana_2025_W09")},
		{"invalid id", week("semana_nueva")},
		{"missing id", week("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&fakeCompleter{reply: reply(t, "ok", tt.returned)}, nil, Config{}, nil)
			_, record, err := g.Edit(context.Background(), EditRequest{Correction: "menos burpees", Current: week("semana_2025_W06")})
			require.NoError(t, err)
			assert.Equal(t, "semana_2025_W06", record.WeekID)
		})
	}
}

func TestEdit_Errors(t *testing.T) {
	g := New(&fakeCompleter{}, nil, Config{}, nil)
	_, _, err := g.Edit(context.Background(), EditRequest{Correction: "x"})
	require.Error(t, err)

	g = New(&fakeCompleter{err: context.DeadlineExceeded}, nil, Config{}, nil)
	_, _, err = g.Edit(context.Background(), EditRequest{Correction: "x", Current: week("semana_2025_W06")})
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
