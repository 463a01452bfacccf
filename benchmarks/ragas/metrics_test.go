// ABOUTME: Tests for RAGAS metric calculations
// ABOUTME: Covers faithfulness, recall, precision and overall status

package ragas

import (
	"testing"
)

func TestCalculateFaithfulness(t *testing.T) {
	calc := NewMetricsCalculator()

	tests := []struct {
		name      string
		response  string
		expected  []string
		forbidden []string
		want      float64
	}{
		{"all present", "- Snatch 5x2\n- Row 500m", []string{"snatch"}, []string{"burpee"}, 1.0},
		{"missing", "- Clean 3x3", []string{"snatch"}, nil, 0.5},
		{"forbidden", "- Snatch 5x2\n- Burpees 10", []string{"snatch"}, []string{"burpee"}, 0.5},
		{"both", "- Burpees 10", []string{"snatch"}, []string{"burpee"}, 0.0},
		{"nothing required", "", nil, nil, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, detail := calc.CalculateFaithfulness(tt.response, tt.expected, tt.forbidden)
			if got != tt.want {
				t.Errorf("Expected %.2f, got %.2f (%s)", tt.want, got, detail)
			}
		})
	}
}

func TestCalculateContextRecall(t *testing.T) {
	calc := NewMetricsCalculator()

	score, _ := calc.CalculateContextRecall([]string{"a", "b"}, []string{"a", "b"})
	if score != 1.0 {
		t.Errorf("Expected full recall, got %.2f", score)
	}

	score, _ = calc.CalculateContextRecall([]string{"a"}, []string{"a", "b"})
	if score != 0.5 {
		t.Errorf("Expected half recall, got %.2f", score)
	}

	score, _ = calc.CalculateContextRecall(nil, nil)
	if score != 1.0 {
		t.Errorf("Expected recall 1.0 when nothing is required, got %.2f", score)
	}
}

func TestCalculateContextPrecision(t *testing.T) {
	calc := NewMetricsCalculator()

	score, _ := calc.CalculateContextPrecision([]string{"a", "b", "c", "d"}, []string{"d"})
	if score != 0.75 {
		t.Errorf("Expected precision 0.75, got %.2f", score)
	}

	score, _ = calc.CalculateContextPrecision(nil, []string{"d"})
	if score != 1.0 {
		t.Errorf("Expected precision 1.0 with nothing retrieved, got %.2f", score)
	}
}

func TestEvaluateTest(t *testing.T) {
	calc := NewMetricsCalculator()
	scenario := GetTestR1()

	pass := calc.EvaluateTest(scenario, "", []string{"semana_2025_W06"})
	if pass.Status != "PASS" {
		t.Errorf("Expected PASS, got %s: %v", pass.Status, pass.Details)
	}
	if pass.OverallScore != 1.0 {
		t.Errorf("Expected overall 1.0, got %.2f", pass.OverallScore)
	}

	fail := calc.EvaluateTest(scenario, "", []string{"semana_2025_W07"})
	if fail.Status != "FAIL" {
		t.Errorf("Expected FAIL, got %s", fail.Status)
	}
	if fail.ContextRecallScore != 0 || fail.ContextPrecisionScore != 0 {
		t.Errorf("Expected zero recall and precision, got %.2f / %.2f", fail.ContextRecallScore, fail.ContextPrecisionScore)
	}
}

func TestGetTest(t *testing.T) {
	for _, s := range GetAllTests() {
		got, ok := GetTest(s.ID)
		if !ok || got.Name != s.Name {
			t.Errorf("GetTest(%q) did not return its scenario", s.ID)
		}
		if (s.Search == nil) == (len(s.Turns) == 0) {
			t.Errorf("Scenario %s must have exactly one of Search or Turns", s.ID)
		}
	}

	if _, ok := GetTest("missing"); ok {
		t.Error("Expected unknown id to be reported")
	}
}
