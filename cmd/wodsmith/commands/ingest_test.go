// ABOUTME: End to end tests for ingest, search and status against a temporary sqlite collection
// ABOUTME: Runs the commands through the root command with environment based config

package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/wodsmith/internal/models"
)

var seedDir = filepath.Join("..", "..", "..", "data", "processed")

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("EMBEDDING_PROVIDER", "local")
	t.Setenv("VECTOR_BACKEND", "sqlite")
	t.Setenv("VECTOR_DB_PATH", filepath.Join(t.TempDir(), "vectors.db"))
	t.Setenv("SEED_DIR", seedDir)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_FORMAT", "console")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIngestThenSearch(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "ingest")
	if err != nil {
		t.Fatalf("ingest error = %v\n%s", err, out)
	}
	for _, want := range []string{"Stored 2 routine(s)", "now has 2 document(s)", "Verification query", "semana_2025_W06"} {
		if !strings.Contains(out, want) {
			t.Errorf("ingest output should contain %q, got:\n%s", want, out)
		}
	}

	out, err = run(t, "search", "--objective", "fuerza", "--format", "json")
	if err != nil {
		t.Fatalf("search error = %v\n%s", err, out)
	}
	var candidates []models.Candidate
	if err := json.Unmarshal([]byte(out), &candidates); err != nil {
		t.Fatalf("search JSON invalid: %v\n%s", err, out)
	}
	if len(candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(candidates))
	}

	out, err = run(t, "search", "--id", "semana_2025_W07")
	if err != nil {
		t.Fatalf("search --id error = %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "Semana: semana_2025_W07") {
		t.Errorf("expected enriched document, got:\n%s", out)
	}
	if _, err := run(t, "search", "--id", "semana_1999_W01"); err == nil {
		t.Error("expected error for unknown week id")
	}

	out, err = run(t, "status", "--format", "json")
	if err != nil {
		t.Fatalf("status error = %v\n%s", err, out)
	}
	var status map[string]any
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("status JSON invalid: %v\n%s", err, out)
	}
	if status["documents"] != float64(2) || status["llm"] != false {
		t.Errorf("unexpected status %v", status)
	}
}

func TestIngestSingleFile(t *testing.T) {
	setTestEnv(t)

	out, err := run(t, "ingest", "--verify=false", filepath.Join(seedDir, "semana_02.json"))
	if err != nil {
		t.Fatalf("ingest error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Stored semana_2025_W07") || !strings.Contains(out, "now has 1 document(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestIngestPDFNeedsLLM(t *testing.T) {
	setTestEnv(t)

	_, err := run(t, "ingest", "--pdf", "semana.pdf")
	if err == nil || !strings.Contains(err.Error(), "LLM") {
		t.Errorf("expected missing LLM key error, got %v", err)
	}
}

func TestSearchEmptyCollection(t *testing.T) {
	setTestEnv(t)

	_, err := run(t, "search", "--objective", "fuerza")
	if err == nil || !strings.Contains(err.Error(), "wodsmith ingest") {
		t.Errorf("expected hint to ingest first, got %v", err)
	}

	_, err = run(t, "search", "--limit", "0")
	if err == nil {
		t.Error("expected error for zero limit")
	}
}
