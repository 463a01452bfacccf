// ABOUTME: Test runner for RAGAS benchmarks - executes scenarios and collects results
// ABOUTME: Each scenario gets a fresh in-memory collection loaded from the seed weeks

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/harper/wodsmith/internal/core"
	"github.com/harper/wodsmith/internal/generator"
	"github.com/harper/wodsmith/internal/ingest"
	"github.com/harper/wodsmith/internal/llm"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/routine"
	"github.com/harper/wodsmith/internal/vectorstore"
	"go.uber.org/zap"
)

// RunnerConfig configures a BenchmarkRunner
type RunnerConfig struct {
	SeedDir string
	// Completer drives conversation scenarios; nil skips them
	Completer    llm.Completer
	EmbeddingDim int
	Verbose      bool
	Out          io.Writer
	Logger       *zap.Logger
}

// BenchmarkRunner executes RAGAS benchmark tests
type BenchmarkRunner struct {
	cfg     RunnerConfig
	metrics *MetricsCalculator
	logger  *zap.Logger
}

// NewBenchmarkRunner creates a new benchmark runner
func NewBenchmarkRunner(cfg RunnerConfig) (*BenchmarkRunner, error) {
	if _, err := os.Stat(cfg.SeedDir); err != nil {
		return nil, fmt.Errorf("seed directory unavailable: %w", err)
	}
	if cfg.EmbeddingDim <= 0 {
		cfg.EmbeddingDim = 512
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &BenchmarkRunner{
		cfg:     cfg,
		metrics: NewMetricsCalculator(),
		logger:  logging.OrNop(cfg.Logger),
	}, nil
}

// recordingRetriever remembers which weeks each retrieval returned
type recordingRetriever struct {
	inner *rag.Retriever
	weeks []string
}

func (r *recordingRetriever) Retrieve(ctx context.Context, params rag.QueryParams, k int, filter vectorstore.Filter) (string, []models.Candidate, error) {
	text, candidates, err := r.inner.Retrieve(ctx, params, k, filter)
	r.weeks = r.weeks[:0]
	for _, c := range candidates {
		r.weeks = append(r.weeks, c.WeekID)
	}
	return text, candidates, err
}

// RunTest executes a single benchmark test
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) (TestResult, error) {
	if scenario.NeedsLLM() && r.cfg.Completer == nil {
		return TestResult{
			TestID:   scenario.ID,
			TestName: scenario.Name,
			Status:   "SKIP",
			Details:  map[string]interface{}{"reason": "no language model configured"},
		}, nil
	}

	r.printf("\n========================================\n")
	r.printf("RUNNING: %s\n", scenario.Name)
	r.printf("========================================\n")
	r.printf("Description: %s\n\n", scenario.Description)

	collection, err := r.freshCollection(ctx)
	if err != nil {
		return TestResult{}, fmt.Errorf("setup failed: %w", err)
	}
	retriever := &recordingRetriever{inner: rag.NewRetriever(collection, r.logger)}

	var (
		finalResponse string
		retrieved     []string
	)

	if scenario.Search != nil {
		p := scenario.Search
		params := rag.QueryParams{Objective: p.Objective, Include: p.Include, Avoid: p.Avoid, Intensity: p.Intensity}
		if _, _, err := retriever.Retrieve(ctx, params, p.K, rag.FilterFor(p.Olympic, p.Pattern)); err != nil {
			return TestResult{}, fmt.Errorf("retrieval failed: %w", err)
		}
		retrieved = append(retrieved, retriever.weeks...)
		r.printf("Query: %s\nRetrieved: %v\n", rag.BuildQuery(params), retrieved)
	}

	if scenario.NeedsLLM() {
		gen := generator.New(r.cfg.Completer, retriever, generator.Config{}, r.logger)
		orch := core.NewOrchestrator(gen, collection, r.logger)
		s := core.NewSession(time.Now())

		for _, turn := range scenario.Turns {
			r.printf("[Turn %d] User: %s\n", turn.TurnNumber, turn.UserMessage)

			out := orch.Process(ctx, s, turn.UserMessage)
			if out.Err != nil {
				return TestResult{}, fmt.Errorf("turn %d failed: %w", turn.TurnNumber, out.Err)
			}
			r.printf("[Turn %d] AI: %s\n\n", turn.TurnNumber, truncate(out.Reply, 150))

			if turn.TurnNumber == scenario.GroundTruth.FinalQueryTurn {
				finalResponse = out.Reply
				if s.CurrentRoutine != nil {
					finalResponse += "\n\n" + routine.ToMarkdown(s.CurrentRoutine)
				}
				retrieved = append(retrieved, retriever.weeks...)
			}
		}
	}

	result := r.metrics.EvaluateTest(scenario, finalResponse, retrieved)

	r.printf("\n========================================\n")
	r.printf("RESULTS: %s\n", scenario.Name)
	r.printf("========================================\n")
	r.printf("Faithfulness: %.2f\n", result.FaithfulnessScore)
	r.printf("Context Recall: %.2f\n", result.ContextRecallScore)
	r.printf("Context Precision: %.2f\n", result.ContextPrecisionScore)
	r.printf("Overall Score: %.2f\n", result.OverallScore)
	r.printf("Status: %s\n", result.Status)

	return result, nil
}

// RunAllTests executes all benchmark tests
func (r *BenchmarkRunner) RunAllTests(ctx context.Context) ([]TestResult, error) {
	scenarios := GetAllTests()
	results := make([]TestResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		result, err := r.RunTest(ctx, scenario)
		if err != nil {
			return nil, fmt.Errorf("test %s failed: %w", scenario.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// Summary counts results by status
type Summary struct {
	Timestamp  string       `json:"timestamp"`
	TotalTests int          `json:"total_tests"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
	Results    []TestResult `json:"results"`
}

// Summarize builds the summary for a set of results
func Summarize(results []TestResult) Summary {
	summary := Summary{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalTests: len(results),
		Results:    results,
	}
	for _, result := range results {
		switch result.Status {
		case "PASS":
			summary.Passed++
		case "SKIP":
			summary.Skipped++
		default:
			summary.Failed++
		}
	}
	return summary
}

// ExportResults exports test results to JSON
func (r *BenchmarkRunner) ExportResults(results []TestResult, outputPath string) error {
	jsonData, err := json.MarshalIndent(Summarize(results), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}

	r.printf("✓ Results exported to: %s\n", outputPath)
	return nil
}

func (r *BenchmarkRunner) freshCollection(ctx context.Context) (*vectorstore.Collection, error) {
	collection, err := vectorstore.Open(ctx, vectorstore.Options{Name: "benchmark"},
		vectorstore.NewMemoryBackend(), vectorstore.NewHashEmbedder(r.cfg.EmbeddingDim), r.logger)
	if err != nil {
		return nil, err
	}
	n, err := ingest.NewLoader(collection, r.logger).LoadDir(ctx, r.cfg.SeedDir)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("no routines in %s", r.cfg.SeedDir)
	}
	return collection, nil
}

func (r *BenchmarkRunner) printf(format string, args ...interface{}) {
	if r.cfg.Verbose {
		fmt.Fprintf(r.cfg.Out, format, args...)
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
