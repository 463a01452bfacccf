// ABOUTME: Tests for the benchmark runner against the bundled seed weeks
// ABOUTME: Conversation scenarios use a scripted completer instead of a live model

package ragas

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/harper/wodsmith/internal/llm"
	"github.com/harper/wodsmith/internal/models"
)

const seedDir = "../../data/processed"

type scriptedCompleter struct {
	reply string
}

func (s *scriptedCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (string, error) {
	return s.reply, nil
}

func snatchWeek(t *testing.T) string {
	t.Helper()
	rounds := 12
	r := models.WeekRoutine{
		WeekID:    "semana_2025_W10",
		StartDate: "2025-03-03",
		Days: []models.Day{{
			Name:        "Lunes",
			Date:        "2025-03-03",
			PrimaryType: models.BlockOly,
			Primary:     &models.PrimaryBlock{Type: models.BlockOly, Movement: "Snatch", Reps: "5x2"},
			WOD: models.WOD{
				Format:    models.FormatEMOM,
				Duration:  &rounds,
				Exercises: []models.Exercise{{Name: "Power snatch", Reps: "3"}, {Name: "Row", Reps: "12 cal"}},
			},
			Metadata: models.DayMetadata{
				MuscleGroups: []string{"piernas"},
				OlympicLifts: []string{"snatch"},
				Intensity:    "media-alta",
			},
		}},
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return "MENSAJE: Semana con foco en snatch.\n\nJSON:\n```json\n" + string(data) + "\n```"
}

func TestNewBenchmarkRunnerMissingSeed(t *testing.T) {
	if _, err := NewBenchmarkRunner(RunnerConfig{SeedDir: filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Fatal("Expected error for missing seed directory")
	}
}

func TestRunRetrievalScenarios(t *testing.T) {
	runner, err := NewBenchmarkRunner(RunnerConfig{SeedDir: seedDir})
	if err != nil {
		t.Fatalf("NewBenchmarkRunner: %v", err)
	}

	for _, id := range []string{"r1", "r2", "r3"} {
		scenario, _ := GetTest(id)
		result, err := runner.RunTest(context.Background(), scenario)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if result.Status != "PASS" {
			t.Errorf("%s: expected PASS, got %s: %v", id, result.Status, result.Details)
		}
	}
}

func TestConversationScenarioSkippedWithoutLLM(t *testing.T) {
	runner, err := NewBenchmarkRunner(RunnerConfig{SeedDir: seedDir})
	if err != nil {
		t.Fatalf("NewBenchmarkRunner: %v", err)
	}

	result, err := runner.RunTest(context.Background(), GetTestC1())
	if err != nil {
		t.Fatalf("RunTest: %v", err)
	}
	if result.Status != "SKIP" {
		t.Errorf("Expected SKIP, got %s", result.Status)
	}
}

func TestConversationScenarioWithScriptedModel(t *testing.T) {
	runner, err := NewBenchmarkRunner(RunnerConfig{
		SeedDir:   seedDir,
		Completer: &scriptedCompleter{reply: snatchWeek(t)},
	})
	if err != nil {
		t.Fatalf("NewBenchmarkRunner: %v", err)
	}

	result, err := runner.RunTest(context.Background(), GetTestC1())
	if err != nil {
		t.Fatalf("RunTest: %v", err)
	}
	if result.Status != "PASS" {
		t.Errorf("Expected PASS, got %s: %v", result.Status, result.Details)
	}
	if weeks, _ := result.Details["retrieved_weeks"].([]string); len(weeks) == 0 {
		t.Error("Expected the draft to be grounded on retrieved weeks")
	}
}

func TestExportResults(t *testing.T) {
	runner, err := NewBenchmarkRunner(RunnerConfig{SeedDir: seedDir})
	if err != nil {
		t.Fatalf("NewBenchmarkRunner: %v", err)
	}

	results, err := runner.RunAllTests(context.Background())
	if err != nil {
		t.Fatalf("RunAllTests: %v", err)
	}
	if len(results) != len(GetAllTests()) {
		t.Fatalf("Expected %d results, got %d", len(GetAllTests()), len(results))
	}

	path := filepath.Join(t.TempDir(), "results.json")
	if err := runner.ExportResults(results, path); err != nil {
		t.Fatalf("ExportResults: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var summary Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Passed != 3 || summary.Skipped != 2 || summary.Failed != 0 {
		t.Errorf("Unexpected summary counts: %+v", summary)
	}
}
