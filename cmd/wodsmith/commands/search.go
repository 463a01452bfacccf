// ABOUTME: CLI command to search stored weekly routines
// ABOUTME: Builds the same query and filters the assistant uses for retrieval
package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/harper/wodsmith/internal/rag"
	"github.com/harper/wodsmith/internal/vectorstore"
	"github.com/spf13/cobra"
)

var (
	searchObjective string
	searchInclude   string
	searchAvoid     string
	searchIntensity string
	searchOlympic   string
	searchPattern   string
	searchLimit     int
	searchID        string
)

// NewSearchCmd creates search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search stored weekly routines",
		Long: `Search stored weekly routines by similarity.

The flags build the same natural-language query the assistant uses to
pick reference weeks. --olympic and --pattern restrict results to weeks
whose metadata lists that lift or strength pattern.

Examples:
  wodsmith search --objective fuerza
  wodsmith search --include "snatch,sentadilla" --avoid burpees --limit 5
  wodsmith search --olympic clean --format json
  wodsmith search --id semana_2025_W06`,
		Args: cobra.NoArgs,
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&searchObjective, "objective", "", "Training focus (e.g. fuerza, olímpicos)")
	cmd.Flags().StringVar(&searchInclude, "include", "", "Comma separated movements to include")
	cmd.Flags().StringVar(&searchAvoid, "avoid", "", "Comma separated movements to avoid")
	cmd.Flags().StringVar(&searchIntensity, "intensity", "", "baja, media, media-alta or alta")
	cmd.Flags().StringVar(&searchOlympic, "olympic", "", "Only weeks with this olympic lift")
	cmd.Flags().StringVar(&searchPattern, "pattern", "", "Only weeks with this strength pattern")
	cmd.Flags().IntVar(&searchLimit, "limit", 3, "Maximum results to return")
	cmd.Flags().StringVar(&searchID, "id", "", "Show the stored document for one week id")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(searchLimit, "limit"); err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if searchID != "" {
		return showRoutine(cmd, a.Collection, searchID)
	}

	params := rag.QueryParams{
		Objective: searchObjective,
		Include:   rag.SplitList(searchInclude),
		Avoid:     rag.SplitList(searchAvoid),
		Intensity: searchIntensity,
	}

	_, candidates, err := a.Retriever.Retrieve(ctx, params, searchLimit, rag.FilterFor(searchOlympic, searchPattern))
	if errors.Is(err, vectorstore.ErrEmptyCollection) {
		return fmt.Errorf("no routines stored yet; run 'wodsmith ingest' first")
	}
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No routines match the filters")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(candidates, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Query: %s\n\n", rag.BuildQuery(params))
	}
	if err := printCandidates(cmd.OutOrStdout(), candidates); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(candidates))
	}
	return nil
}

func showRoutine(cmd *cobra.Command, coll *vectorstore.Collection, id string) error {
	rec, err := coll.Get(cmd.Context(), id)
	if errors.Is(err, vectorstore.ErrNotFound) {
		return fmt.Errorf("no routine stored for %s", id)
	}
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(map[string]any{
			"semana_id": rec.ID,
			"metadata":  rec.Metadata,
			"document":  rec.Document,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), rec.Document)
	return nil
}
