// ABOUTME: Orchestrator routes each user message through the session state machine
// ABOUTME: Generate and edit call the generator; approve persists the draft into the vector collection
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harper/wodsmith/internal/generator"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/routine"
	"go.uber.org/zap"
)

// ErrPersistenceFailed wraps any failure to store an approved routine
var ErrPersistenceFailed = errors.New("failed to persist routine")

// User-facing replies
const (
	readySuffix        = "📋 La rutina está lista. Podés pedirme cambios o escribir **'aprobar'** cuando estés conforme para guardarla."
	editSuffix         = "✏️ Edición #%d aplicada. Podés seguir pidiendo cambios o escribir **'aprobar'** para guardar."
	reopenedNote       = "La versión guardada no cambia hasta que vuelvas a aprobar."
	nothingToApprove   = "No hay ninguna rutina para aprobar. Contame qué tipo de semana querés."
	alreadyApproved    = "Esta rutina ya fue guardada anteriormente."
	approvedReply      = "✅ **Rutina guardada correctamente** en la base de conocimiento.\n\nA partir de ahora esta semana sirve como referencia para generar futuras rutinas. Si querés generar otra semana, contame qué necesitás."
	approvedTurnFormat = "Rutina %s guardada como ejemplo futuro."
	generateFailed     = "❌ Hubo un error al generar la rutina: %v"
	editFailed         = "❌ Hubo un error al editar la rutina: %v"
	persistFailed      = "❌ Hubo un error al guardar la rutina. Intentá de nuevo."

	onboardingReply = "¡Hola! Soy tu asistente de programación CrossFit. Contame qué tipo de semana querés generar. Por ejemplo:\n\n" +
		"- *'Quiero una semana con énfasis en snatch y WODs cortos'*\n" +
		"- *'Generá una semana de intensidad media con trabajo de tren superior'*\n" +
		"- *'Necesito una semana variada para atletas intermedios'*"
	clarifyReply = "No entendí bien tu pedido. Podés:\n" +
		"- Pedirme un cambio específico en la rutina\n" +
		"- Escribir **'aprobar'** para guardar la rutina actual\n" +
		"- Pedirme una rutina completamente nueva"
)

// RoutineGenerator drafts and edits routines
type RoutineGenerator interface {
	Generate(ctx context.Context, req generator.GenerateRequest) (string, *models.WeekRoutine, error)
	Edit(ctx context.Context, req generator.EditRequest) (string, *models.WeekRoutine, error)
}

// RoutineStore persists approved routines
type RoutineStore interface {
	Upsert(ctx context.Context, id, document string, metadata map[string]any) error
}

// Recorder receives per-message metrics
type Recorder interface {
	ObserveMessage(intent string, failed bool)
	RoutinePersisted()
}

// Outcome is the result of processing one message
type Outcome struct {
	Reply  string
	Intent models.Intent
	// State is the session state after the message
	State State
	// Err is set when the action failed; Reply already describes it
	Err error
}

type transition func(o *Orchestrator, ctx context.Context, s *Session, utterance string) (string, error)

// dispatch maps state and intent to a transition. Missing pairs fall back to help.
var dispatch = map[State]map[models.Intent]transition{
	StateEmpty: {
		models.IntentGenerate: (*Orchestrator).generate,
		models.IntentApprove:  (*Orchestrator).approveNothing,
	},
	StateDrafting: {
		models.IntentEdit:    (*Orchestrator).edit,
		models.IntentApprove: (*Orchestrator).approve,
	},
	StateApproved: {
		models.IntentEdit:    (*Orchestrator).edit,
		models.IntentApprove: (*Orchestrator).approveAgain,
	},
}

// Orchestrator processes messages for sessions. It holds no per-session state;
// callers serialize Process calls for the same session.
type Orchestrator struct {
	generator RoutineGenerator
	store     RoutineStore
	recorder  Recorder
	logger    *zap.Logger
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(gen RoutineGenerator, store RoutineStore, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		generator: gen,
		store:     store,
		logger:    logging.OrNop(logger),
	}
}

// SetRecorder attaches a metrics recorder
func (o *Orchestrator) SetRecorder(r Recorder) {
	o.recorder = r
}

// Process classifies the utterance, runs the matching transition and returns the reply.
// Failed transitions leave the session untouched. Blank input gets the help reply.
func (o *Orchestrator) Process(ctx context.Context, s *Session, utterance string) Outcome {
	state := StateOf(s)
	intent := models.IntentOther
	if strings.TrimSpace(utterance) != "" {
		intent = Classify(utterance, s.HasRoutine())
	}

	o.logger.Info("processing message",
		zap.String("session_id", s.ID),
		zap.String("state", state.String()),
		zap.String("intent", intent.String()))

	step, ok := dispatch[state][intent]
	if !ok {
		step = (*Orchestrator).help
	}

	reply, err := step(o, ctx, s, utterance)
	if err != nil {
		o.logger.Error("message failed",
			zap.String("session_id", s.ID),
			zap.String("intent", intent.String()),
			zap.Error(err))
	}
	if o.recorder != nil {
		o.recorder.ObserveMessage(intent.String(), err != nil)
	}

	return Outcome{Reply: reply, Intent: intent, State: StateOf(s), Err: err}
}

func (o *Orchestrator) generate(ctx context.Context, s *Session, utterance string) (string, error) {
	message, record, err := o.generator.Generate(ctx, generator.GenerateRequest{
		Request:       utterance,
		WeekStartDate: s.WeekStartDate,
		History:       s.History,
	})
	if err != nil {
		return fmt.Sprintf(generateFailed, err), err
	}

	s.CurrentRoutine = record
	s.Approved = false
	s.EditCount = 0
	s.History = append(s.History, models.UserMessage(utterance), models.AssistantMessage(message))

	return message + "\n\n" + readySuffix, nil
}

func (o *Orchestrator) edit(ctx context.Context, s *Session, utterance string) (string, error) {
	message, record, err := o.generator.Edit(ctx, generator.EditRequest{
		Correction: utterance,
		Current:    s.CurrentRoutine,
		History:    s.History,
	})
	if err != nil {
		return fmt.Sprintf(editFailed, err), err
	}

	reopened := s.Approved
	s.CurrentRoutine = record
	s.Approved = false
	s.EditCount++
	s.History = append(s.History, models.UserMessage(utterance), models.AssistantMessage(message))

	reply := message + "\n\n" + fmt.Sprintf(editSuffix, s.EditCount)
	if reopened {
		reply += "\n" + reopenedNote
	}
	return reply, nil
}

func (o *Orchestrator) approve(ctx context.Context, s *Session, utterance string) (string, error) {
	if err := o.persist(ctx, s.CurrentRoutine); err != nil {
		return persistFailed, err
	}

	s.Approved = true
	s.History = append(s.History,
		models.UserMessage(utterance),
		models.AssistantMessage(fmt.Sprintf(approvedTurnFormat, s.CurrentRoutine.WeekID)))

	return approvedReply, nil
}

func (o *Orchestrator) persist(ctx context.Context, r *models.WeekRoutine) error {
	if err := routine.ValidateRecord(r); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	document := routine.ToEnrichedText(r)
	metadata := routine.ToMetadata(r).Map()
	if err := o.store.Upsert(ctx, r.WeekID, document, metadata); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	if o.recorder != nil {
		o.recorder.RoutinePersisted()
	}
	o.logger.Info("routine persisted", zap.String("semana_id", r.WeekID))
	return nil
}

func (o *Orchestrator) approveNothing(context.Context, *Session, string) (string, error) {
	return nothingToApprove, nil
}

func (o *Orchestrator) approveAgain(context.Context, *Session, string) (string, error) {
	return alreadyApproved, nil
}

func (o *Orchestrator) help(_ context.Context, s *Session, _ string) (string, error) {
	if !s.HasRoutine() {
		return onboardingReply, nil
	}
	return clarifyReply, nil
}
