// ABOUTME: Export command writes the stored routines to YAML or Markdown
// ABOUTME: Optionally dumps the embedding vectors to a separate JSON file
package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	exportFormat     string
	exportOutput     string
	exportEmbeddings string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored routines",
		Long: `Export every routine in the collection with its metadata.

YAML keeps the full record; Markdown is meant for reading.`,
		Example: `  wodsmith export --output rutinas.yaml
  wodsmith export --type markdown --output rutinas.md
  wodsmith export --output rutinas.yaml --embeddings vectores.json`,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportFormat, "type", "", "export format: yaml or markdown (default from extension)")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "rutinas.yaml", "output file")
	cmd.Flags().StringVar(&exportEmbeddings, "embeddings", "", "also write embedding vectors to this JSON file")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := exportFormatFor(exportFormat, exportOutput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	switch format {
	case "markdown":
		err = a.Collection.ExportToMarkdown(ctx, exportOutput)
	default:
		err = a.Collection.ExportToYAML(ctx, exportOutput)
	}
	if err != nil {
		return fmt.Errorf("exporting routines: %w", err)
	}

	if exportEmbeddings != "" {
		if err := a.Collection.ExportEmbeddingsToJSON(ctx, exportEmbeddings); err != nil {
			return fmt.Errorf("exporting embeddings: %w", err)
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %s to %s\n", format, exportOutput)
		if exportEmbeddings != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Embeddings written to %s\n", exportEmbeddings)
		}
	}
	return nil
}

// exportFormatFor resolves the format from the flag or the output extension
func exportFormatFor(flag, output string) (string, error) {
	switch strings.ToLower(flag) {
	case "yaml", "yml":
		return "yaml", nil
	case "markdown", "md":
		return "markdown", nil
	case "":
	default:
		return "", fmt.Errorf("unknown export type %q (use yaml or markdown)", flag)
	}

	switch strings.ToLower(filepath.Ext(output)) {
	case ".md", ".markdown":
		return "markdown", nil
	}
	return "yaml", nil
}
