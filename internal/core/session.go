// ABOUTME: Session holds one conversation: history, the current draft and its approval flag
// ABOUTME: State derives the orchestrator state from those fields
package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/harper/wodsmith/internal/models"
)

// Session is the in-memory state of one conversation
type Session struct {
	ID             string              `json:"id"`
	History        []models.Message    `json:"historial"`
	CurrentRoutine *models.WeekRoutine `json:"rutina_actual,omitempty"`
	Approved       bool                `json:"aprobada"`
	WeekStartDate  string              `json:"fecha_inicio"`
	EditCount      int                 `json:"n_ediciones"`
	CreatedAt      time.Time           `json:"created_at"`
}

// NewSession creates an empty session whose week starts on the Monday after now
func NewSession(now time.Time) *Session {
	return &Session{
		ID:            uuid.New().String(),
		History:       []models.Message{},
		WeekStartDate: models.NextMonday(now),
		CreatedAt:     now,
	}
}

// HasRoutine reports whether a draft exists
func (s *Session) HasRoutine() bool {
	return s.CurrentRoutine != nil
}

// Clone returns a deep copy, safe to hand out while the original keeps changing
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = append([]models.Message{}, s.History...)
	c.CurrentRoutine = s.CurrentRoutine.Clone()
	return &c
}

// State is the orchestrator state of a session
type State int

const (
	// StateEmpty - no routine yet
	StateEmpty State = iota
	// StateDrafting - a routine exists and is not persisted
	StateDrafting
	// StateApproved - the current routine is persisted
	StateApproved
)

// String returns the state label
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDrafting:
		return "drafting"
	case StateApproved:
		return "approved"
	}
	return "unknown"
}

// StateOf derives the state from the session fields
func StateOf(s *Session) State {
	switch {
	case s == nil || s.CurrentRoutine == nil:
		return StateEmpty
	case s.Approved:
		return StateApproved
	default:
		return StateDrafting
	}
}
