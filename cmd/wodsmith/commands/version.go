// ABOUTME: Version command showing the build plus the model and routine store in use
// ABOUTME: Reads the same environment as chat and serve so the output matches what they would run
package commands

import (
	"fmt"
	"io"

	"github.com/harper/wodsmith/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	versionInfo = VersionInfo{
		Version: "dev",
		Commit:  "none",
		Date:    "unknown",
	}
)

// VersionInfo contains build information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// SetVersion sets the version information (called from main)
func SetVersion(version, commit, date string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.Date = date
}

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version, chat model and routine store",
		Long: `Display the wodsmith build together with the chat model that drafts routines,
the embedder used to index them and the vector store holding approved weeks.

Settings come from the environment and .env, exactly as chat and serve read them.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wodsmith %s\n", versionInfo.Version)
			fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
			fmt.Fprintf(out, "Built:  %s\n", versionInfo.Date)

			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				fmt.Fprintf(out, "Config: invalid (%v)\n", err)
				return
			}
			printRuntime(out, cfg)
		},
	}

	return cmd
}

func printRuntime(out io.Writer, cfg *config.Config) {
	endpoint := cfg.LLMBaseURL
	if endpoint == "" {
		endpoint = "api.openai.com"
	}
	if cfg.LLMAPIKey == "" {
		fmt.Fprintf(out, "Model:  %s via %s (no API key, chat disabled)\n", cfg.ChatModel, endpoint)
	} else {
		fmt.Fprintf(out, "Model:  %s via %s\n", cfg.ChatModel, endpoint)
	}

	if cfg.EmbeddingProvider == "openai" {
		fmt.Fprintf(out, "Embed:  openai %s\n", cfg.EmbeddingModel)
	} else {
		fmt.Fprintf(out, "Embed:  local hash, %d dims\n", cfg.LocalEmbeddingDim)
	}

	switch cfg.VectorBackend {
	case "sqlite":
		fmt.Fprintf(out, "Store:  sqlite %s (collection %s, %s)\n", cfg.VectorDBPath, cfg.CollectionName, cfg.DistanceMetric)
	case "charm":
		fmt.Fprintf(out, "Store:  charm %s@%s (collection %s, %s)\n", cfg.CharmDBName, cfg.CharmHost, cfg.CollectionName, cfg.DistanceMetric)
	default:
		fmt.Fprintf(out, "Store:  %s (collection %s, %s)\n", cfg.VectorBackend, cfg.CollectionName, cfg.DistanceMetric)
	}
}
