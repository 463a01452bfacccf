// ABOUTME: Retrieval result and flat metadata record stored next to each routine document
// ABOUTME: FlatMetadata keys are the ones the vector store filters on
package models

import "strconv"

// Flat metadata keys
const (
	MetaWeekID           = "semana_id"
	MetaStartDate        = "fecha_inicio"
	MetaOlympicLifts     = "movimientos_olimpicos"
	MetaStrengthPatterns = "patrones_fuerza"
	MetaMuscleGroups     = "grupos_musculares"
	MetaTotalDays        = "total_dias"
)

// FlatMetadata is the scalar-only summary of a WeekRoutine.
// List fields are sorted, deduplicated and joined with ", ".
type FlatMetadata struct {
	WeekID           string `json:"semana_id"`
	StartDate        string `json:"fecha_inicio"`
	OlympicLifts     string `json:"movimientos_olimpicos"`
	StrengthPatterns string `json:"patrones_fuerza"`
	MuscleGroups     string `json:"grupos_musculares"`
	TotalDays        int    `json:"total_dias"`
}

// Map converts the record into the scalar map the vector store persists
func (m FlatMetadata) Map() map[string]any {
	return map[string]any{
		MetaWeekID:           m.WeekID,
		MetaStartDate:        m.StartDate,
		MetaOlympicLifts:     m.OlympicLifts,
		MetaStrengthPatterns: m.StrengthPatterns,
		MetaMuscleGroups:     m.MuscleGroups,
		MetaTotalDays:        m.TotalDays,
	}
}

// Candidate is a stored routine returned by a similarity query
type Candidate struct {
	WeekID     string         `json:"semana_id"`
	Similarity float64        `json:"similitud"`
	Document   string         `json:"document"`
	Metadata   map[string]any `json:"metadata"`
}

// MetaString returns a metadata value as text, or "" when absent
func (c Candidate) MetaString(key string) string {
	return MetaText(c.Metadata[key])
}

// MetaText renders a scalar metadata value as text. Non-scalars render as "".
func MetaText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
