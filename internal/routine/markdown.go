// ABOUTME: Markdown rendering of a routine for the chat REPL and HTTP clients
// ABOUTME: Mirrors the block order of the enriched text with friendlier labels
package routine

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/harper/wodsmith/internal/models"
	"github.com/yuin/goldmark"
)

// EmptyMarkdown is shown when there is no routine to render
const EmptyMarkdown = "_No hay rutina generada todavía._"

// ToHTML renders the Markdown view as an HTML fragment
func ToHTML(r *models.WeekRoutine) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(ToMarkdown(r)), &buf); err != nil {
		return "", fmt.Errorf("failed to render routine: %w", err)
	}
	return buf.String(), nil
}

// ToMarkdown renders the routine as Markdown
func ToMarkdown(r *models.WeekRoutine) string {
	if r == nil {
		return EmptyMarkdown
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", weekTitle(r.WeekID))
	fmt.Fprintf(&b, "**Inicio:** %s\n\n", r.StartDate)

	for _, d := range r.Days {
		b.WriteString("---\n")
		title := d.Name
		if t := dayType(d); t != "" {
			title += " · " + t
		}
		if d.Date != "" {
			title += fmt.Sprintf(" (%s)", d.Date)
		}
		fmt.Fprintf(&b, "## %s\n\n", title)

		if d.Core != nil && len(d.Core.Exercises) > 0 {
			fmt.Fprintf(&b, "**CORE**%s\n", roundsSuffix(d.Core.Rounds))
			writeExercises(&b, d.Core.Exercises, false)
		}

		if p := d.Primary; p != nil {
			label := p.Type
			if label == "" {
				label = models.BlockFuerza
			}
			fmt.Fprintf(&b, "**%s**\n", label)
			if p.Description != "" {
				fmt.Fprintf(&b, "- %s\n", p.Description)
			} else if body := primaryBody(p); body != "" {
				fmt.Fprintf(&b, "- %s\n", body)
			}
			if p.BeginnerVariant != "" {
				fmt.Fprintf(&b, "- Principiante: %s\n", p.BeginnerVariant)
			}
			b.WriteString("\n")
		}

		if d.WOD.Format != "" || len(d.WOD.Exercises) > 0 {
			head := strings.TrimSpace("WOD " + d.WOD.Format + " " + d.WOD.DisplayDuration())
			fmt.Fprintf(&b, "**%s**\n", head)
			writeExercises(&b, d.WOD.Exercises, true)
		}

		if d.Accessories != nil && len(d.Accessories.Exercises) > 0 {
			fmt.Fprintf(&b, "**ACCESORIOS**%s\n", roundsSuffix(d.Accessories.Rounds))
			writeExercises(&b, d.Accessories.Exercises, false)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// weekTitle turns semana_2025_W06 into "Semana 2025 W06"
func weekTitle(id string) string {
	if id == "" {
		return "Rutina"
	}
	words := strings.Split(id, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func roundsSuffix(rounds *int) string {
	if rounds == nil || *rounds <= 0 {
		return ""
	}
	return fmt.Sprintf(" · %d rondas", *rounds)
}

func writeExercises(b *strings.Builder, exs []models.Exercise, withScale bool) {
	for _, ex := range exs {
		line := "- " + exerciseText(ex)
		if withScale && ex.Scale != "" {
			line += fmt.Sprintf(" *(escala: %s)*", ex.Scale)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}
