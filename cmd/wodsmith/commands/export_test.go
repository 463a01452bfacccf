// ABOUTME: Tests for the export command
// ABOUTME: Ingests the seed weeks into a temp database and exports them
package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportFormatFor(t *testing.T) {
	tests := []struct {
		flag    string
		output  string
		want    string
		wantErr bool
	}{
		{"", "rutinas.yaml", "yaml", false},
		{"", "rutinas.md", "markdown", false},
		{"", "rutinas", "yaml", false},
		{"md", "rutinas.yaml", "markdown", false},
		{"YAML", "rutinas.md", "yaml", false},
		{"csv", "rutinas.csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.flag+"_"+tt.output, func(t *testing.T) {
			got, err := exportFormatFor(tt.flag, tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("exportFormatFor() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("exportFormatFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportAfterIngest(t *testing.T) {
	setTestEnv(t)

	if out, err := run(t, "ingest", "--verify=false"); err != nil {
		t.Fatalf("ingest error = %v\n%s", err, out)
	}

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "rutinas.yaml")
	vectors := filepath.Join(dir, "vectores.json")

	out, err := run(t, "export", "--output", yamlPath, "--embeddings", vectors)
	if err != nil {
		t.Fatalf("export error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Exported yaml") {
		t.Errorf("unexpected output:\n%s", out)
	}

	raw, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"tool: wodsmith", "semana_id: semana_2025_W06", "semana_id: semana_2025_W07"} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("YAML export missing %q", want)
		}
	}
	if _, err := os.Stat(vectors); err != nil {
		t.Errorf("embeddings file not written: %v", err)
	}

	mdPath := filepath.Join(dir, "rutinas.md")
	if out, err := run(t, "export", "--output", mdPath); err != nil {
		t.Fatalf("markdown export error = %v\n%s", err, out)
	}
	raw, err = os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(raw), "## semana_2025_W07") {
		t.Errorf("Markdown export missing week heading:\n%s", raw)
	}
}
