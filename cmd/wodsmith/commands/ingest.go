// ABOUTME: CLI command to load routines into the collection
// ABOUTME: Accepts a directory or JSON file, or a PDF that is structured by the language model first
package commands

import (
	"fmt"
	"os"

	"github.com/harper/wodsmith/internal/rag"
	"github.com/spf13/cobra"
)

var (
	ingestPDF    string
	ingestOutDir string
	ingestVerify bool
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [dir|file.json]",
		Short: "Load weekly routines into the collection",
		Long: `Load weekly routines into the vector collection.

With a directory, every *.json file is validated and stored under its
semana_id; files that fail validation are reported and skipped. With a
single file, only that week is stored. Storing a week id again replaces
the previous version.

With --pdf, the PDF text is extracted and structured into the routine
schema by the language model, written as JSON into --out, and stored.

Examples:
  wodsmith ingest
  wodsmith ingest data/processed/semana_03.json
  wodsmith ingest --pdf raw/semana_04.pdf --out data/processed`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestPDF, "pdf", "", "PDF with one week of programming")
	cmd.Flags().StringVar(&ingestOutDir, "out", "", "Directory for the structured JSON (default: SEED_DIR)")
	cmd.Flags().BoolVar(&ingestVerify, "verify", true, "Run a test query after loading")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	switch {
	case ingestPDF != "":
		if err := a.Config.RequireLLM(); err != nil {
			return err
		}
		dir := ingestOutDir
		if dir == "" {
			dir = a.Config.SeedDir
		}
		r, path, err := a.Loader.IngestPDF(ctx, a.PDFParser, ingestPDF, dir)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", ingestPDF, err)
		}
		if !quiet {
			fmt.Fprintf(out, "Stored %s (%d days), JSON written to %s\n", r.WeekID, len(r.Days), path)
		}

	case len(args) == 1 && isFile(args[0]):
		r, err := a.Loader.LoadFile(ctx, args[0])
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "Stored %s (%d days)\n", r.WeekID, len(r.Days))
		}

	default:
		dir := a.Config.SeedDir
		if len(args) == 1 {
			dir = args[0]
		}
		n, err := a.Loader.LoadDir(ctx, dir)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(out, "Stored %d routine(s) from %s\n", n, dir)
		}
	}

	count, err := a.Collection.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}
	if !quiet {
		fmt.Fprintf(out, "Collection %s now has %d document(s)\n", a.Config.CollectionName, count)
	}

	if !ingestVerify || count == 0 {
		return nil
	}

	_, candidates, err := a.Retriever.Retrieve(ctx, rag.QueryParams{Objective: "fuerza"}, min(3, count), nil)
	if err != nil {
		return fmt.Errorf("verification query: %w", err)
	}
	if !quiet {
		fmt.Fprintln(out, "\nVerification query (fuerza):")
	}
	return printCandidates(out, candidates)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
