// ABOUTME: In-process backend for tests and throwaway sessions
// ABOUTME: Nothing survives the process
package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryBackend keeps collections in maps guarded by a RWMutex
type MemoryBackend struct {
	mu          sync.RWMutex
	metrics     map[string]Metric
	collections map[string]map[string]Record
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		metrics:     make(map[string]Metric),
		collections: make(map[string]map[string]Record),
	}
}

func (b *MemoryBackend) EnsureCollection(_ context.Context, name string, metric Metric) (Metric, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if stored, ok := b.metrics[name]; ok {
		return stored, nil
	}
	b.metrics[name] = metric
	b.collections[name] = make(map[string]Record)
	return metric, nil
}

func (b *MemoryBackend) Put(_ context.Context, collection string, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	docs, ok := b.collections[collection]
	if !ok {
		return fmt.Errorf("unknown collection %s", collection)
	}
	docs[rec.ID] = copyRecord(rec)
	return nil
}

func (b *MemoryBackend) Get(_ context.Context, collection, id string) (*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.collections[collection][id]
	if !ok {
		return nil, nil
	}
	cp := copyRecord(rec)
	return &cp, nil
}

func (b *MemoryBackend) List(_ context.Context, collection string) ([]Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	docs := b.collections[collection]
	out := make([]Record, 0, len(docs))
	for _, rec := range docs {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (b *MemoryBackend) Count(_ context.Context, collection string) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.collections[collection]), nil
}

func (b *MemoryBackend) Close() error {
	return nil
}

func copyRecord(rec Record) Record {
	meta := make(map[string]any, len(rec.Metadata))
	for k, v := range rec.Metadata {
		meta[k] = v
	}
	rec.Metadata = meta
	rec.Embedding = append([]float64(nil), rec.Embedding...)
	return rec
}
