// ABOUTME: Scenario data structures for RAGAS-style benchmarks of the routine assistant
// ABOUTME: Defines retrieval probes, conversation turns and ground truth over the seed weeks

package ragas

// TestScenario represents a complete benchmark test
type TestScenario struct {
	ID          string
	Name        string
	Description string

	// Search runs a single retrieval probe. Mutually exclusive with Turns.
	Search *SearchProbe
	// Turns drive the orchestrator; requires a language model
	Turns       []ConversationTurn
	GroundTruth GroundTruth
}

// SearchProbe is a retrieval query with optional metadata filters
type SearchProbe struct {
	Objective string
	Include   []string
	Avoid     []string
	Intensity string
	Olympic   string
	Pattern   string
	K         int
}

// ConversationTurn represents a single turn in a test conversation
type ConversationTurn struct {
	TurnNumber  int
	UserMessage string
}

// GroundTruth defines expected outcomes for evaluation
type GroundTruth struct {
	// Turn whose reply and draft are scored
	FinalQueryTurn      int
	ExpectedInResponse  []string // Strings that MUST appear in reply or draft
	ForbiddenInResponse []string // Strings that MUST NOT appear in reply or draft

	// Week ids that should and should not be retrieved
	ExpectedContextItems  []string
	ForbiddenContextItems []string
}

// NeedsLLM reports whether the scenario drives the conversation
func (s TestScenario) NeedsLLM() bool {
	return len(s.Turns) > 0
}

// TestResult represents the outcome of a benchmark test
type TestResult struct {
	TestID                string                 `json:"test_id"`
	TestName              string                 `json:"test_name"`
	FaithfulnessScore     float64                `json:"faithfulness"`
	ContextRecallScore    float64                `json:"context_recall"`
	ContextPrecisionScore float64                `json:"context_precision"`
	OverallScore          float64                `json:"overall"`
	Status                string                 `json:"status"` // PASS, FAIL or SKIP
	Details               map[string]interface{} `json:"details,omitempty"`
	ErrorMessage          string                 `json:"error,omitempty"`
}

// GetTestR1 returns Test R1: hinge pattern filter
func GetTestR1() TestScenario {
	return TestScenario{
		ID:          "r1",
		Name:        "Hinge pattern filter",
		Description: "Only the week with a deadlift day lists the bisagra pattern",
		Search: &SearchProbe{
			Objective: "fuerza",
			Pattern:   "bisagra",
			K:         3,
		},
		GroundTruth: GroundTruth{
			ExpectedContextItems:  []string{"semana_2025_W06"},
			ForbiddenContextItems: []string{"semana_2025_W07"},
		},
	}
}

// GetTestR2 returns Test R2: pulling pattern filter
func GetTestR2() TestScenario {
	return TestScenario{
		ID:          "r2",
		Name:        "Pulling pattern filter",
		Description: "Only the week with weighted pull-ups lists the tirón pattern",
		Search: &SearchProbe{
			Objective: "fuerza de tren superior",
			Include:   []string{"pull-up"},
			Pattern:   "tirón",
			K:         3,
		},
		GroundTruth: GroundTruth{
			ExpectedContextItems:  []string{"semana_2025_W07"},
			ForbiddenContextItems: []string{"semana_2025_W06"},
		},
	}
}

// GetTestR3 returns Test R3: unfiltered references
func GetTestR3() TestScenario {
	return TestScenario{
		ID:          "r3",
		Name:        "Unfiltered references",
		Description: "An open request retrieves every stored week when k covers the collection",
		Search: &SearchProbe{
			Objective: "olímpicos",
			Include:   []string{"snatch", "clean"},
			Intensity: "media-alta",
			K:         2,
		},
		GroundTruth: GroundTruth{
			ExpectedContextItems: []string{"semana_2025_W06", "semana_2025_W07"},
		},
	}
}

// GetTestC1 returns Test C1: draft honours include and avoid lists
func GetTestC1() TestScenario {
	return TestScenario{
		ID:          "c1",
		Name:        "Draft honours requested movements",
		Description: "A week asked to include snatch and avoid burpees must do both",
		Turns: []ConversationTurn{
			{TurnNumber: 1, UserMessage: "Quiero una semana con énfasis en snatch, sin burpees"},
		},
		GroundTruth: GroundTruth{
			FinalQueryTurn:      1,
			ExpectedInResponse:  []string{"snatch"},
			ForbiddenInResponse: []string{"burpee"},
		},
	}
}

// GetTestC2 returns Test C2: edits keep the requested change
func GetTestC2() TestScenario {
	return TestScenario{
		ID:          "c2",
		Name:        "Edit applies the correction",
		Description: "After asking to replace running with rowing the draft has no Run",
		Turns: []ConversationTurn{
			{TurnNumber: 1, UserMessage: "Armame una semana de fuerza con sentadilla y peso muerto"},
			{TurnNumber: 2, UserMessage: "Cambiá todos los Run por Row"},
		},
		GroundTruth: GroundTruth{
			FinalQueryTurn:      2,
			ExpectedInResponse:  []string{"Row"},
			ForbiddenInResponse: []string{"- Run"},
		},
	}
}

// GetAllTests returns all benchmark scenarios
func GetAllTests() []TestScenario {
	return []TestScenario{
		GetTestR1(),
		GetTestR2(),
		GetTestR3(),
		GetTestC1(),
		GetTestC2(),
	}
}

// GetTest returns the scenario with the given id
func GetTest(id string) (TestScenario, bool) {
	for _, s := range GetAllTests() {
		if s.ID == id {
			return s, true
		}
	}
	return TestScenario{}, false
}
