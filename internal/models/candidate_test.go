// ABOUTME: Tests for Candidate and FlatMetadata helpers
// ABOUTME: Verifies metadata map keys and scalar text conversion

package models

import "testing"

func TestFlatMetadata_Map(t *testing.T) {
	m := FlatMetadata{
		WeekID:           "semana_2025_W11",
		StartDate:        "2025-03-10",
		OlympicLifts:     "clean, snatch",
		StrengthPatterns: "squat",
		MuscleGroups:     "core, piernas",
		TotalDays:        5,
	}.Map()

	if len(m) != 6 {
		t.Fatalf("Map() len = %d, want 6", len(m))
	}
	if m[MetaWeekID] != "semana_2025_W11" {
		t.Errorf("semana_id = %v", m[MetaWeekID])
	}
	if m[MetaTotalDays] != 5 {
		t.Errorf("total_dias = %v, want 5", m[MetaTotalDays])
	}
}

func TestCandidate_MetaString(t *testing.T) {
	c := Candidate{Metadata: map[string]any{
		"s": "text",
		"i": 5,
		"f": float64(5),
		"b": true,
		"n": nil,
	}}

	tests := []struct {
		key  string
		want string
	}{
		{"s", "text"},
		{"i", "5"},
		{"f", "5"},
		{"b", "true"},
		{"n", ""},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := c.MetaString(tt.key); got != tt.want {
			t.Errorf("MetaString(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
