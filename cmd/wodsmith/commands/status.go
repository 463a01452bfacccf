// ABOUTME: Status command prints backend, collection and model configuration
// ABOUTME: Reads the document count without touching the language model
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show collection and model status",
		Long:  `Show the vector backend, collection size, embedding provider and chat model in use.`,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	count, err := a.Collection.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}

	cfg := a.Config
	status := map[string]interface{}{
		"backend":    cfg.VectorBackend,
		"collection": cfg.CollectionName,
		"metric":     string(a.Collection.Metric()),
		"documents":  count,
		"embeddings": cfg.EmbeddingProvider,
		"llm":        a.HasLLM(),
		"chat_model": cfg.ChatModel,
	}
	if cfg.VectorBackend == "sqlite" {
		status["db_path"] = cfg.VectorDBPath
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backend:     %s\n", cfg.VectorBackend)
	if cfg.VectorBackend == "sqlite" {
		fmt.Fprintf(out, "Database:    %s\n", cfg.VectorDBPath)
	}
	fmt.Fprintf(out, "Collection:  %s (%s)\n", cfg.CollectionName, a.Collection.Metric())
	fmt.Fprintf(out, "Documents:   %d\n", count)
	fmt.Fprintf(out, "Embeddings:  %s\n", cfg.EmbeddingProvider)
	if a.HasLLM() {
		fmt.Fprintf(out, "Chat model:  %s\n", cfg.ChatModel)
	} else {
		fmt.Fprintf(out, "Chat model:  not configured\n")
	}
	return nil
}
