// ABOUTME: Converts a WeekRoutine into the enriched text that gets embedded and the flat metadata stored beside it
// ABOUTME: Output labels are stable so stored documents stay greppable by block
package routine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harper/wodsmith/internal/models"
)

// ToEnrichedText renders the routine as the document body persisted in the vector store.
// Absent fields drop their line entirely.
func ToEnrichedText(r *models.WeekRoutine) string {
	if r == nil {
		return ""
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Semana: %s | Inicio: %s", r.WeekID, r.StartDate))

	for _, d := range r.Days {
		header := strings.ToUpper(d.Name)
		if t := dayType(d); t != "" {
			header += " - " + t
		}
		lines = append(lines, "", header)

		if d.Core != nil && len(d.Core.Exercises) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", roundsLabel("Core", d.Core.Rounds), joinExercises(d.Core.Exercises)))
		}

		if p := d.Primary; p != nil {
			if line := primaryLine(p, d.PrimaryType); line != "" {
				lines = append(lines, line)
			}
			if p.BeginnerVariant != "" {
				lines = append(lines, "Principiante: "+p.BeginnerVariant)
			}
		}

		if d.WOD.Format != "" || len(d.WOD.Exercises) > 0 {
			head := "WOD"
			if d.WOD.Format != "" {
				head += " " + d.WOD.Format
			}
			if disp := d.WOD.DisplayDuration(); disp != "" {
				head += " " + disp
			}
			lines = append(lines, head+":")
			for _, ex := range d.WOD.Exercises {
				line := "  - " + exerciseText(ex)
				if ex.Scale != "" {
					line += fmt.Sprintf(" (escala: %s)", ex.Scale)
				}
				lines = append(lines, line)
			}
		}

		if d.Accessories != nil && len(d.Accessories.Exercises) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", roundsLabel("Accesorios", d.Accessories.Rounds), joinExercises(d.Accessories.Exercises)))
		}

		m := d.Metadata
		if groups := nonEmpty(m.MuscleGroups); len(groups) > 0 {
			lines = append(lines, "Músculos: "+strings.Join(groups, ", "))
		}
		if lifts := nonEmpty(m.OlympicLifts); len(lifts) > 0 {
			lines = append(lines, "Olímpicos: "+strings.Join(lifts, ", "))
		}
		if m.Intensity != "" {
			lines = append(lines, "Intensidad: "+m.Intensity)
		}
		if m.StrengthPattern != "" {
			lines = append(lines, "Patrón: "+m.StrengthPattern)
		}
	}

	return strings.Join(lines, "\n")
}

// ToMetadata aggregates the per-day metadata into the flat record stored with the document
func ToMetadata(r *models.WeekRoutine) models.FlatMetadata {
	if r == nil {
		return models.FlatMetadata{}
	}

	lifts := map[string]struct{}{}
	patterns := map[string]struct{}{}
	groups := map[string]struct{}{}

	for _, d := range r.Days {
		addAll(lifts, d.Metadata.OlympicLifts)
		addAll(groups, d.Metadata.MuscleGroups)
		if p := strings.TrimSpace(d.Metadata.StrengthPattern); p != "" {
			patterns[p] = struct{}{}
		}
	}

	return models.FlatMetadata{
		WeekID:           r.WeekID,
		StartDate:        r.StartDate,
		OlympicLifts:     joinSorted(lifts),
		StrengthPatterns: joinSorted(patterns),
		MuscleGroups:     joinSorted(groups),
		TotalDays:        len(r.Days),
	}
}

func dayType(d models.Day) string {
	if d.PrimaryType != "" {
		return d.PrimaryType
	}
	if d.Primary != nil {
		return d.Primary.Type
	}
	return ""
}

func primaryLine(p *models.PrimaryBlock, fallbackType string) string {
	label := p.Type
	if label == "" {
		label = fallbackType
	}
	body := primaryBody(p)
	if body == "" {
		return ""
	}
	if label == "" {
		return body
	}
	return label + ": " + body
}

// primaryBody is the movement (or description) followed by sets x reps when both are set
func primaryBody(p *models.PrimaryBlock) string {
	body := p.Movement
	if body == "" {
		body = p.Description
	}
	if p.Sets != nil && *p.Sets > 0 && p.Reps != "" {
		body = strings.TrimSpace(fmt.Sprintf("%s %dx%s", body, *p.Sets, p.Reps))
	}
	return body
}

func roundsLabel(name string, rounds *int) string {
	if rounds == nil || *rounds <= 0 {
		return name
	}
	return fmt.Sprintf("%s (%d rondas)", name, *rounds)
}

func exerciseText(ex models.Exercise) string {
	return strings.TrimSpace(ex.Name + " " + ex.Reps.String())
}

func joinExercises(exs []models.Exercise) string {
	parts := make([]string, 0, len(exs))
	for _, ex := range exs {
		parts = append(parts, exerciseText(ex))
	}
	return strings.Join(parts, ", ")
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func addAll(set map[string]struct{}, values []string) {
	for _, v := range nonEmpty(values) {
		set[v] = struct{}{}
	}
}

func joinSorted(set map[string]struct{}) string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
