// ABOUTME: Shared helpers for CLI commands: app bootstrap and output formatting
// ABOUTME: Every command loads .env, config and the logger the same way through openApp
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/harper/wodsmith/internal/app"
	"github.com/harper/wodsmith/internal/config"
	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/models"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// openApp loads configuration, builds the logger and wires the application.
// quietLogs raises the default level to warn for interactive commands.
func openApp(ctx context.Context, quietLogs bool) (*app.App, error) {
	// Missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg, quietLogs)
	if err != nil {
		return nil, err
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	return a, nil
}

func newLogger(cfg *config.Config, quietLogs bool) (*zap.Logger, error) {
	level := cfg.LogLevel
	switch {
	case verbose:
		level = "debug"
	case quiet:
		level = "error"
	case quietLogs && level == "info":
		level = "warn"
	}

	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return logger, nil
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// orDash returns "-" for empty values
func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// printCandidates renders search hits as a table
func printCandidates(w io.Writer, candidates []models.Candidate) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "SIMILITUD\tSEMANA\tINICIO\tOLÍMPICOS\tPATRONES\tDÍAS\n")
	fmt.Fprintf(tw, "---------\t------\t------\t---------\t--------\t----\n")
	for _, c := range candidates {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\t%s\t%s\t%s\n",
			c.Similarity,
			c.WeekID,
			orDash(c.MetaString(models.MetaStartDate)),
			truncate(orDash(c.MetaString(models.MetaOlympicLifts)), 30),
			truncate(orDash(c.MetaString(models.MetaStrengthPatterns)), 30),
			orDash(c.MetaString(models.MetaTotalDays)))
	}
	return tw.Flush()
}
