// ABOUTME: Loader upserts routine JSON files into the vector collection
// ABOUTME: Supports single files, whole directories and seeding an empty collection on startup
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/routine"
	"go.uber.org/zap"
)

// Store is the part of the vector collection the loader writes to
type Store interface {
	Upsert(ctx context.Context, id, document string, metadata map[string]any) error
	Count(ctx context.Context) (int, error)
}

// Loader writes validated routines into a Store
type Loader struct {
	store  Store
	logger *zap.Logger
}

// NewLoader creates a Loader
func NewLoader(store Store, logger *zap.Logger) *Loader {
	return &Loader{store: store, logger: logging.OrNop(logger)}
}

// Load validates a routine and upserts it under its week id
func (l *Loader) Load(ctx context.Context, r *models.WeekRoutine) error {
	if err := routine.ValidateRecord(r); err != nil {
		return err
	}

	document := routine.ToEnrichedText(r)
	if err := l.store.Upsert(ctx, r.WeekID, document, routine.ToMetadata(r).Map()); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", r.WeekID, err)
	}

	l.logger.Info("routine loaded",
		zap.String("semana_id", r.WeekID),
		zap.Int("dias", len(r.Days)),
		zap.Int("chars", len(document)))
	return nil
}

// LoadFile reads, validates and upserts one routine JSON file
func (l *Loader) LoadFile(ctx context.Context, path string) (*models.WeekRoutine, error) {
	r, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := l.Load(ctx, r); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// LoadDir loads every *.json file in dir in name order. Files that fail are logged and skipped.
// Returns the number of routines loaded.
func (l *Loader) LoadDir(ctx context.Context, dir string) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("seed directory unavailable: %w", err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(paths)

	loaded := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}
		if _, err := l.LoadFile(ctx, path); err != nil {
			l.logger.Warn("skipping routine file", zap.String("path", path), zap.Error(err))
			continue
		}
		loaded++
	}

	l.logger.Info("directory loaded", zap.String("dir", dir), zap.Int("files", len(paths)), zap.Int("loaded", loaded))
	return loaded, nil
}

// Count returns the number of routines in the underlying store
func (l *Loader) Count(ctx context.Context) (int, error) {
	return l.store.Count(ctx)
}

// InitializeIfEmpty loads dir only when the collection has no documents.
// Returns 0 without touching the store otherwise.
func (l *Loader) InitializeIfEmpty(ctx context.Context, dir string) (int, error) {
	count, err := l.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	if count > 0 {
		l.logger.Info("collection already initialized", zap.Int("count", count))
		return 0, nil
	}

	l.logger.Warn("collection is empty, seeding", zap.String("dir", dir))
	return l.LoadDir(ctx, dir)
}

// ReadFile decodes and validates a routine JSON file
func ReadFile(path string) (*models.WeekRoutine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routine file: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", path, err)
	}

	r, err := routine.Validate(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// WriteFile stores a routine as indented JSON, creating parent directories
func WriteFile(r *models.WeekRoutine, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode routine: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write routine file: %w", err)
	}
	return nil
}

// OutputPath returns dir/<pdf name>.json for a PDF path
func OutputPath(pdfPath, dir string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(dir, base+".json")
}

// IngestPDF parses a PDF, writes the JSON next to the other seed files and loads it
func (l *Loader) IngestPDF(ctx context.Context, parser *PDFParser, pdfPath, outDir string) (*models.WeekRoutine, string, error) {
	r, err := parser.Parse(ctx, pdfPath)
	if err != nil {
		return nil, "", err
	}

	out := OutputPath(pdfPath, outDir)
	if err := WriteFile(r, out); err != nil {
		return nil, "", err
	}
	if err := l.Load(ctx, r); err != nil {
		return nil, out, err
	}
	return r, out, nil
}
