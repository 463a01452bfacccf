// ABOUTME: Tests for collection export
// ABOUTME: Verifies YAML, Markdown, and JSON export formats
package vectorstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/wodsmith/internal/models"
	"gopkg.in/yaml.v3"
)

func exportFixture(t *testing.T) *Collection {
	t.Helper()
	coll := openTest(t, axes)
	ctx := context.Background()

	meta := models.FlatMetadata{
		WeekID:           "semana_2025_W06",
		StartDate:        "2025-02-03",
		OlympicLifts:     "clean, snatch",
		StrengthPatterns: "bisagra, sentadilla",
		MuscleGroups:     "piernas",
		TotalDays:        5,
	}
	if err := coll.Upsert(ctx, "semana_2025_W06", "x", meta.Map()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := coll.Upsert(ctx, "semana_2025_W07", "y", map[string]any{models.MetaWeekID: "semana_2025_W07"}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return coll
}

func TestExport(t *testing.T) {
	coll := exportFixture(t)

	data, err := coll.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if data.Tool != "wodsmith" || data.Collection != "rutinas_crossfit" || data.Metric != "cosine" {
		t.Errorf("unexpected header: %+v", data)
	}
	if len(data.Routines) != 2 {
		t.Fatalf("Routines = %d, want 2", len(data.Routines))
	}

	first := data.Routines[0]
	if first.WeekID != "semana_2025_W06" {
		t.Errorf("Routines not ordered by id: %s first", first.WeekID)
	}
	if first.TotalDays != "5" || first.StrengthPatterns != "bisagra, sentadilla" {
		t.Errorf("metadata not exported: %+v", first)
	}
	if first.Document != "x" {
		t.Errorf("Document = %q", first.Document)
	}
}

func TestExportToYAML(t *testing.T) {
	coll := exportFixture(t)
	path := filepath.Join(t.TempDir(), "nested", "export.yaml")

	if err := coll.ExportToYAML(context.Background(), path); err != nil {
		t.Fatalf("ExportToYAML() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var data ExportData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if len(data.Routines) != 2 || data.Routines[1].WeekID != "semana_2025_W07" {
		t.Errorf("unexpected routines: %+v", data.Routines)
	}
}

func TestExportToMarkdown(t *testing.T) {
	coll := exportFixture(t)
	path := filepath.Join(t.TempDir(), "export.md")

	if err := coll.ExportToMarkdown(context.Background(), path); err != nil {
		t.Fatalf("ExportToMarkdown() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	content := string(raw)

	for _, want := range []string{"# Exportación de rutinas", "## semana_2025_W06", "**Olímpicos:** clean, snatch", "**Rutinas:** 2"} {
		if !strings.Contains(content, want) {
			t.Errorf("Markdown missing %q", want)
		}
	}
	if !strings.Contains(content, "**Inicio:** -") {
		t.Error("missing metadata should render as a dash")
	}
}

func TestExportEmbeddingsToJSON(t *testing.T) {
	coll := exportFixture(t)
	path := filepath.Join(t.TempDir(), "embeddings.json")

	if err := coll.ExportEmbeddingsToJSON(context.Background(), path); err != nil {
		t.Fatalf("ExportEmbeddingsToJSON() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	var embeddings []ExportEmbedding
	if err := json.Unmarshal(raw, &embeddings); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("embeddings = %d, want 2", len(embeddings))
	}
	if embeddings[0].Dimension != 3 || embeddings[0].Vector[0] != 1 {
		t.Errorf("unexpected embedding: %+v", embeddings[0])
	}
}
