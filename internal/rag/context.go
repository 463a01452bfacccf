// ABOUTME: Builds the retrieval query and formats retrieved routines as model context
// ABOUTME: Both functions are pure; Retriever ties them to a vector collection
package rag

import (
	"fmt"
	"strings"

	"github.com/harper/wodsmith/internal/models"
)

// NoReferences is the context used when nothing was retrieved
const NoReferences = "No se encontraron rutinas de referencia en la base de datos."

// QueryParams are the optional facets of a retrieval query
type QueryParams struct {
	Objective string
	Include   []string
	Avoid     []string
	Intensity string
}

// BuildQuery composes the search text. Absent facets are omitted; order is fixed.
func BuildQuery(p QueryParams) string {
	parts := []string{"rutina de crossfit semanal"}
	if o := strings.TrimSpace(p.Objective); o != "" {
		parts = append(parts, "enfocada en "+o)
	}
	if inc := clean(p.Include); len(inc) > 0 {
		parts = append(parts, "con "+strings.Join(inc, ", "))
	}
	if avoid := clean(p.Avoid); len(avoid) > 0 {
		parts = append(parts, "sin repetir "+strings.Join(avoid, ", "))
	}
	if i := strings.TrimSpace(p.Intensity); i != "" {
		parts = append(parts, "de intensidad "+i)
	}
	return strings.Join(parts, " ")
}

// FormatContext renders candidates, in order, as the reference block of the prompt
func FormatContext(candidates []models.Candidate) string {
	if len(candidates) == 0 {
		return NoReferences
	}

	lines := []string{
		"RUTINAS DE REFERENCIA",
		strings.Repeat("=", 50),
		fmt.Sprintf("Se recuperaron %d rutinas similares para usar como base.", len(candidates)),
		"",
	}

	for i, c := range candidates {
		lines = append(lines,
			fmt.Sprintf("[Rutina %d - %s (similitud: %s)]", i+1, c.WeekID, models.MetaText(c.Similarity)),
			"Olímpicos usados: "+orDefault(c.MetaString(models.MetaOlympicLifts), "ninguno"),
			"Patrones de fuerza: "+orDefault(c.MetaString(models.MetaStrengthPatterns), "ninguno"),
			"Grupos musculares: "+orDefault(c.MetaString(models.MetaMuscleGroups), "no especificado"),
			"",
			c.Document,
			"",
			strings.Repeat("-", 50),
			"",
		)
	}

	return strings.Join(lines, "\n")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func clean(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
