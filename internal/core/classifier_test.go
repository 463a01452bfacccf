// ABOUTME: Tests for the keyword intent classifier
// ABOUTME: Covers keyword priority, the edit fallback and input with no keywords

package core

import (
	"testing"

	"github.com/harper/wodsmith/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		utterance  string
		hasRoutine bool
		want       models.Intent
	}{
		{"first request", "Quiero una semana con énfasis en snatch", false, models.IntentGenerate},
		{"edit keyword without routine still generates", "cambiá todo", false, models.IntentGenerate},
		{"approve without routine", "aprobar", false, models.IntentApprove},
		{"approve wins over edit keyword", "Perfecto, pero cambiá nada", true, models.IntentApprove},
		{"uppercase approval", "LISTO", true, models.IntentApprove},
		{"multiword approval", "me gusta así", true, models.IntentApprove},
		{"edit keyword", "cambiá el WOD del miércoles a For Time", true, models.IntentEdit},
		{"edit phrase", "poné remo en lugar de bici", true, models.IntentEdit},
		{"accented keyword", "más volumen el jueves", true, models.IntentEdit},
		{"fallback edit", "el viernes quiero correr", true, models.IntentEdit},
		{"blank with routine falls back to edit", "   ", true, models.IntentEdit},
		{"empty without routine generates", "", false, models.IntentGenerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.utterance, tt.hasRoutine); got != tt.want {
				t.Errorf("Classify(%q, %v) = %v, want %v", tt.utterance, tt.hasRoutine, got, tt.want)
			}
		})
	}
}
