// ABOUTME: Named collection of routine documents with embedding similarity search
// ABOUTME: Storage is delegated to a Backend, vectors to an Embedder
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrEmptyCollection is returned by Query when the collection has no documents
	ErrEmptyCollection = errors.New("collection is empty")
	// ErrNotFound is returned by Get for unknown ids
	ErrNotFound = errors.New("document not found")
	// ErrInvalidMetadata is returned when a metadata value is not a scalar
	ErrInvalidMetadata = errors.New("metadata values must be string, number or bool")
)

// Record is a stored document with its embedding
type Record struct {
	ID        string         `json:"id"`
	Document  string         `json:"document"`
	Metadata  map[string]any `json:"metadata"`
	Embedding []float64      `json:"embedding"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Match is a query hit, ordered by ascending distance
type Match struct {
	ID       string
	Document string
	Metadata map[string]any
	Distance float64
}

// Similarity converts the distance into a 0..1-style score rounded to three decimals
func (m Match) Similarity() float64 {
	return math.Round((1-m.Distance)*1000) / 1000
}

// Candidate converts the match into the retrieval result shape
func (m Match) Candidate() models.Candidate {
	return models.Candidate{
		WeekID:     m.ID,
		Similarity: m.Similarity(),
		Document:   m.Document,
		Metadata:   m.Metadata,
	}
}

// Backend persists collections and their records. Implementations must be safe for concurrent use.
type Backend interface {
	// EnsureCollection creates the collection if missing and returns its stored metric
	EnsureCollection(ctx context.Context, name string, metric Metric) (Metric, error)
	Put(ctx context.Context, collection string, rec Record) error
	Get(ctx context.Context, collection, id string) (*Record, error)
	List(ctx context.Context, collection string) ([]Record, error)
	Count(ctx context.Context, collection string) (int, error)
	Close() error
}

// Embedder turns texts into vectors, one per input and in order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Options configures a collection
type Options struct {
	Name   string
	Metric Metric
}

// Collection is a handle on one named collection
type Collection struct {
	name     string
	metric   Metric
	backend  Backend
	embedder Embedder
	logger   *zap.Logger
}

// Open connects to the named collection, creating it when it does not exist.
// An existing collection keeps the metric it was created with.
func Open(ctx context.Context, opts Options, backend Backend, embedder Embedder, logger *zap.Logger) (*Collection, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	if backend == nil || embedder == nil {
		return nil, fmt.Errorf("backend and embedder are required")
	}

	metric := opts.Metric
	if metric == "" {
		metric = MetricCosine
	}
	if !metric.IsValid() {
		return nil, fmt.Errorf("unknown distance metric %q", metric)
	}

	stored, err := backend.EnsureCollection(ctx, opts.Name, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", opts.Name, err)
	}

	logger = logging.OrNop(logger)
	if stored != metric {
		logger.Warn("collection keeps its stored metric",
			zap.String("collection", opts.Name),
			zap.String("requested", string(metric)),
			zap.String("stored", string(stored)))
	}

	return &Collection{
		name:     opts.Name,
		metric:   stored,
		backend:  backend,
		embedder: embedder,
		logger:   logger,
	}, nil
}

// Name returns the collection name
func (c *Collection) Name() string {
	return c.name
}

// Metric returns the distance metric in use
func (c *Collection) Metric() Metric {
	return c.metric
}

// Upsert inserts or replaces the document stored under id
func (c *Collection) Upsert(ctx context.Context, id, document string, metadata map[string]any) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}
	clean, err := scalarMetadata(metadata)
	if err != nil {
		return err
	}

	vectors, err := c.embedder.Embed(ctx, []string{document})
	if err != nil {
		return fmt.Errorf("failed to embed document %s: %w", id, err)
	}
	if len(vectors) != 1 {
		return fmt.Errorf("embedder returned %d vectors for one document", len(vectors))
	}

	rec := Record{
		ID:        id,
		Document:  document,
		Metadata:  clean,
		Embedding: vectors[0],
		UpdatedAt: time.Now().UTC(),
	}
	if err := c.backend.Put(ctx, c.name, rec); err != nil {
		return fmt.Errorf("failed to store document %s: %w", id, err)
	}

	c.logger.Debug("document upserted", zap.String("collection", c.name), zap.String("id", id))
	return nil
}

// Query returns the k nearest documents to text. k is clamped to the document count.
func (c *Collection) Query(ctx context.Context, text string, k int, filter Filter) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	count, err := c.backend.Count(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if count == 0 {
		return nil, ErrEmptyCollection
	}
	if k > count {
		k = count
	}

	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}
	query := vectors[0]

	records, err := c.backend.List(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	matches := make([]Match, 0, len(records))
	for _, rec := range records {
		if !filter.Matches(rec.Metadata) {
			continue
		}
		if len(rec.Embedding) != len(query) {
			c.logger.Warn("skipping document with mismatched embedding dimension",
				zap.String("id", rec.ID),
				zap.Int("stored", len(rec.Embedding)),
				zap.Int("query", len(query)))
			continue
		}
		matches = append(matches, Match{
			ID:       rec.ID,
			Document: rec.Document,
			Metadata: rec.Metadata,
			Distance: c.metric.Distance(query, rec.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance == matches[j].Distance {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Distance < matches[j].Distance
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Count returns the number of stored documents
func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.backend.Count(ctx, c.name)
}

// List returns every stored record ordered by id
func (c *Collection) List(ctx context.Context) ([]Record, error) {
	return c.backend.List(ctx, c.name)
}

// Get returns the document stored under id, or ErrNotFound
func (c *Collection) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := c.backend.Get(ctx, c.name, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// scalarMetadata copies metadata, rejecting nested or nil values
func scalarMetadata(metadata map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(metadata))
	for k, v := range metadata {
		switch val := v.(type) {
		case string, bool, float64, float32, int64, int32:
			out[k] = val
		case int:
			out[k] = int64(val)
		default:
			return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidMetadata, k, v)
		}
	}
	return out, nil
}
