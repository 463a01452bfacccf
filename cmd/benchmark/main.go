// ABOUTME: Command-line benchmark runner for RAGAS tests
// ABOUTME: Executes retrieval and conversation benchmarks and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/wodsmith/benchmarks/ragas"
	"github.com/harper/wodsmith/internal/config"
	"github.com/harper/wodsmith/internal/llm"
	"github.com/joho/godotenv"
)

func main() {
	testID := flag.String("test", "", "Run specific test (r1, r2, r3, c1, c2). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	seedDir := flag.String("seed", "", "Directory of seed week files (defaults to SEED_DIR)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *seedDir == "" {
		*seedDir = cfg.SeedDir
	}

	runnerCfg := ragas.RunnerConfig{
		SeedDir: *seedDir,
		Verbose: *verbose,
		Out:     os.Stdout,
	}
	// Conversation scenarios are skipped without a key
	if cfg.LLMAPIKey != "" {
		client, err := llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:     cfg.LLMAPIKey,
			BaseURL:    cfg.LLMBaseURL,
			ChatModel:  cfg.ChatModel,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
		if err != nil {
			log.Fatalf("Failed to create LLM client: %v", err)
		}
		runnerCfg.Completer = client
	}

	color.Cyan("========================================")
	color.Cyan("wodsmith RAGAS Benchmarks")
	color.Cyan("========================================")
	fmt.Println()
	if runnerCfg.Completer == nil {
		color.Yellow("No LLM key configured: conversation scenarios will be skipped\n")
	}

	runner, err := ragas.NewBenchmarkRunner(runnerCfg)
	if err != nil {
		log.Fatalf("Failed to create benchmark runner: %v", err)
	}

	ctx := context.Background()
	var results []ragas.TestResult

	if *testID == "" {
		fmt.Println("Running all RAGAS benchmark tests...")
		fmt.Println()

		results, err = runner.RunAllTests(ctx)
		if err != nil {
			log.Fatalf("Benchmark failed: %v", err)
		}
	} else {
		scenario, ok := ragas.GetTest(strings.ToLower(*testID))
		if !ok {
			log.Fatalf("Unknown test ID: %s (valid options: r1, r2, r3, c1, c2)", *testID)
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)

		result, err := runner.RunTest(ctx, scenario)
		if err != nil {
			log.Fatalf("Test failed: %v", err)
		}
		results = []ragas.TestResult{result}
	}

	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		if result.Status == "SKIP" {
			color.Yellow("  Status: SKIP (%v)", result.Details["reason"])
			continue
		}
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Context Recall: %.2f\n", result.ContextRecallScore)
		fmt.Printf("  Context Precision: %.2f\n", result.ContextPrecisionScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		if result.Status == "PASS" {
			color.Green("  Status: PASS")
		} else {
			color.Red("  Status: %s", result.Status)
		}
	}

	summary := ragas.Summarize(results)
	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", summary.TotalTests)
	color.Green("Passed: %d", summary.Passed)
	color.Red("Failed: %d", summary.Failed)
	color.Yellow("Skipped: %d", summary.Skipped)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}
