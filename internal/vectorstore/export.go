// ABOUTME: Export of a routine collection to YAML, Markdown and an embeddings JSON file
// ABOUTME: Used for backups and for reviewing what the assistant retrieves from
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/harper/wodsmith/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the complete exportable data structure
type ExportData struct {
	Version    string          `yaml:"version" json:"version"`
	ExportedAt string          `yaml:"exported_at" json:"exported_at"`
	Tool       string          `yaml:"tool" json:"tool"`
	Collection string          `yaml:"collection" json:"collection"`
	Metric     string          `yaml:"metric" json:"metric"`
	Routines   []ExportRoutine `yaml:"routines" json:"routines"`
	Embeddings string          `yaml:"embeddings_file,omitempty" json:"embeddings_file,omitempty"`
}

// ExportRoutine is one stored week with its flat metadata
type ExportRoutine struct {
	WeekID           string `yaml:"semana_id" json:"semana_id"`
	StartDate        string `yaml:"fecha_inicio,omitempty" json:"fecha_inicio,omitempty"`
	OlympicLifts     string `yaml:"movimientos_olimpicos,omitempty" json:"movimientos_olimpicos,omitempty"`
	StrengthPatterns string `yaml:"patrones_fuerza,omitempty" json:"patrones_fuerza,omitempty"`
	MuscleGroups     string `yaml:"grupos_musculares,omitempty" json:"grupos_musculares,omitempty"`
	TotalDays        string `yaml:"total_dias,omitempty" json:"total_dias,omitempty"`
	UpdatedAt        string `yaml:"updated_at" json:"updated_at"`
	Document         string `yaml:"document" json:"document"`
}

// ExportEmbedding is one stored vector
type ExportEmbedding struct {
	WeekID    string    `json:"semana_id"`
	Dimension int       `json:"dimension"`
	Vector    []float64 `json:"vector"`
}

// Export collects every stored routine
func (c *Collection) Export(ctx context.Context) (*ExportData, error) {
	records, err := c.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "wodsmith",
		Collection: c.name,
		Metric:     string(c.metric),
		Routines:   make([]ExportRoutine, 0, len(records)),
	}

	for _, rec := range records {
		data.Routines = append(data.Routines, ExportRoutine{
			WeekID:           rec.ID,
			StartDate:        models.MetaText(rec.Metadata[models.MetaStartDate]),
			OlympicLifts:     models.MetaText(rec.Metadata[models.MetaOlympicLifts]),
			StrengthPatterns: models.MetaText(rec.Metadata[models.MetaStrengthPatterns]),
			MuscleGroups:     models.MetaText(rec.Metadata[models.MetaMuscleGroups]),
			TotalDays:        models.MetaText(rec.Metadata[models.MetaTotalDays]),
			UpdatedAt:        rec.UpdatedAt.Format(time.RFC3339),
			Document:         rec.Document,
		})
	}

	return data, nil
}

// ExportToYAML exports the collection to a YAML file
func (c *Collection) ExportToYAML(ctx context.Context, outputPath string) error {
	data, err := c.Export(ctx)
	if err != nil {
		return err
	}

	return writeFile(outputPath, func(w io.Writer) error {
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	})
}

// ExportToMarkdown exports the collection to a Markdown file
func (c *Collection) ExportToMarkdown(ctx context.Context, outputPath string) error {
	data, err := c.Export(ctx)
	if err != nil {
		return err
	}

	return writeFile(outputPath, func(file io.Writer) error {
		_, _ = fmt.Fprintf(file, "# Exportación de rutinas - %s\n\n", time.Now().Format("2006-01-02"))
		_, _ = fmt.Fprintf(file, "Generado: %s\n\n", data.ExportedAt)
		_, _ = fmt.Fprintf(file, "- **Colección:** %s\n", data.Collection)
		_, _ = fmt.Fprintf(file, "- **Métrica:** %s\n", data.Metric)
		_, _ = fmt.Fprintf(file, "- **Rutinas:** %d\n\n", len(data.Routines))

		for _, r := range data.Routines {
			_, _ = fmt.Fprintf(file, "## %s\n\n", r.WeekID)
			_, _ = fmt.Fprintf(file, "- **Inicio:** %s\n", orDash(r.StartDate))
			_, _ = fmt.Fprintf(file, "- **Olímpicos:** %s\n", orDash(r.OlympicLifts))
			_, _ = fmt.Fprintf(file, "- **Patrones de fuerza:** %s\n", orDash(r.StrengthPatterns))
			_, _ = fmt.Fprintf(file, "- **Grupos musculares:** %s\n", orDash(r.MuscleGroups))
			_, _ = fmt.Fprintf(file, "- **Días:** %s\n\n", orDash(r.TotalDays))
			_, _ = fmt.Fprintf(file, "```\n%s\n```\n\n", r.Document)
			_, _ = fmt.Fprintln(file, "---")
			_, _ = fmt.Fprintln(file)
		}
		return nil
	})
}

// ExportEmbeddingsToJSON exports the stored vectors to a separate JSON file
func (c *Collection) ExportEmbeddingsToJSON(ctx context.Context, outputPath string) error {
	records, err := c.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	embeddings := make([]ExportEmbedding, 0, len(records))
	for _, rec := range records {
		embeddings = append(embeddings, ExportEmbedding{
			WeekID:    rec.ID,
			Dimension: len(rec.Embedding),
			Vector:    rec.Embedding,
		})
	}

	return writeFile(outputPath, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(embeddings); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	})
}

func writeFile(outputPath string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
