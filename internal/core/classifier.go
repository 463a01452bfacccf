// ABOUTME: Keyword classifier mapping a user utterance to generate, edit or approve
// ABOUTME: Pure function of the lowercased text and whether a routine already exists
package core

import (
	"strings"

	"github.com/harper/wodsmith/internal/models"
)

var approvalKeywords = []string{
	"aprobar", "guardar", "perfecto", "listo", "ok", "está bien",
	"me gusta", "confirmá", "confirmar", "publicar", "usar esta",
}

var editKeywords = []string{
	"cambiá", "cambiar", "modificá", "modificar", "reemplazá", "reemplazar",
	"quitá", "quitar", "agregá", "agregar", "ajustá", "ajustar",
	"bajá", "subí", "menos", "más", "en vez de", "en lugar de",
}

// Classify decides the intent of an utterance. Approval keywords win over everything.
// With a routine present, anything that is not an approval is treated as an edit.
func Classify(utterance string, hasRoutine bool) models.Intent {
	text := strings.ToLower(utterance)
	if containsAny(text, approvalKeywords) {
		return models.IntentApprove
	}
	if hasRoutine && containsAny(text, editKeywords) {
		return models.IntentEdit
	}
	if !hasRoutine {
		return models.IntentGenerate
	}
	// No edit keyword matched but a routine exists: still an edit
	return models.IntentEdit
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
