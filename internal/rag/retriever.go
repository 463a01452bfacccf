// ABOUTME: Retriever runs a similarity query and returns formatted reference context
// ABOUTME: This is the retrieval half of the generate flow
package rag

import (
	"context"
	"fmt"

	"github.com/harper/wodsmith/internal/logging"
	"github.com/harper/wodsmith/internal/models"
	"github.com/harper/wodsmith/internal/vectorstore"
	"go.uber.org/zap"
)

// Searcher is the part of a vector collection the retriever needs
type Searcher interface {
	Query(ctx context.Context, text string, k int, filter vectorstore.Filter) ([]vectorstore.Match, error)
}

// Retriever fetches similar routines for a request
type Retriever struct {
	store  Searcher
	logger *zap.Logger
}

// NewRetriever creates a Retriever over a collection
func NewRetriever(store Searcher, logger *zap.Logger) *Retriever {
	return &Retriever{store: store, logger: logging.OrNop(logger)}
}

// Retrieve queries the k most similar routines and formats them as context.
// An empty collection surfaces as vectorstore.ErrEmptyCollection.
func (r *Retriever) Retrieve(ctx context.Context, params QueryParams, k int, filter vectorstore.Filter) (string, []models.Candidate, error) {
	query := BuildQuery(params)
	r.logger.Info("retrieving reference routines", zap.String("query", query), zap.Int("k", k))

	matches, err := r.store.Query(ctx, query, k, filter)
	if err != nil {
		return "", nil, fmt.Errorf("retrieval failed: %w", err)
	}

	candidates := make([]models.Candidate, len(matches))
	for i, m := range matches {
		candidates[i] = m.Candidate()
		r.logger.Debug("reference routine",
			zap.String("semana_id", candidates[i].WeekID),
			zap.Float64("similitud", candidates[i].Similarity))
	}
	r.logger.Info("reference routines retrieved", zap.Int("count", len(candidates)))

	return FormatContext(candidates), candidates, nil
}
