// ABOUTME: vectorstore.Backend implementation on the Charm KV
// ABOUTME: Collections and documents are JSON values under prefixed keys, synced to the cloud
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/harper/wodsmith/internal/charm"
	"github.com/harper/wodsmith/internal/vectorstore"
)

// KV is the subset of the charm client the backend needs.
// Get must return nil, nil for missing keys.
type KV interface {
	Set(key string, value []byte) error
	Get(key string) ([]byte, error)
	ListKeys(prefix string) ([]string, error)
}

type collectionInfo struct {
	Metric    string    `json:"metric"`
	CreatedAt time.Time `json:"created_at"`
}

// CharmBackend stores collections in a Charm KV database
type CharmBackend struct {
	kv     KV
	closer func() error
}

// NewCharmBackend creates a backend over the given KV. The charm client
// serializes access, so the backend holds no lock of its own.
func NewCharmBackend(store KV) *CharmBackend {
	b := &CharmBackend{kv: store}
	if c, ok := store.(interface{ Close() error }); ok {
		b.closer = c.Close
	}
	return b
}

// OpenCharmBackend opens the charm KV database described by cfg
func OpenCharmBackend(cfg *charm.Config) (*CharmBackend, error) {
	client, err := charm.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewCharmBackend(client), nil
}

func (b *CharmBackend) EnsureCollection(_ context.Context, name string, metric vectorstore.Metric) (vectorstore.Metric, error) {
	key := charm.CollectionKey(name)
	data, err := b.kv.Get(key)
	if err != nil {
		return "", fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	if data != nil {
		var info collectionInfo
		if err := json.Unmarshal(data, &info); err != nil {
			return "", fmt.Errorf("corrupt collection record %s: %w", name, err)
		}
		return vectorstore.Metric(info.Metric), nil
	}

	if err := b.setJSON(key, collectionInfo{Metric: string(metric), CreatedAt: time.Now().UTC()}); err != nil {
		return "", err
	}
	return metric, nil
}

func (b *CharmBackend) Put(_ context.Context, collection string, rec vectorstore.Record) error {
	return b.setJSON(charm.DocumentKey(collection, rec.ID), rec)
}

func (b *CharmBackend) Get(_ context.Context, collection, id string) (*vectorstore.Record, error) {
	data, err := b.kv.Get(charm.DocumentKey(collection, id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	var rec vectorstore.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt document %s: %w", id, err)
	}
	return &rec, nil
}

// List returns every document in the collection sorted by key.
// A document that cannot be read or decoded fails the whole call.
func (b *CharmBackend) List(_ context.Context, collection string) ([]vectorstore.Record, error) {
	keys, err := b.kv.ListKeys(charm.DocumentPrefixFor(collection))
	if err != nil {
		return nil, fmt.Errorf("failed to list document keys: %w", err)
	}
	sort.Strings(keys)

	records := make([]vectorstore.Record, 0, len(keys))
	for _, key := range keys {
		data, err := b.kv.Get(key)
		if err != nil {
			return nil, fmt.Errorf("failed to read document %s: %w", key, err)
		}
		if data == nil {
			return nil, fmt.Errorf("document %s listed but has no value", key)
		}
		var rec vectorstore.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("corrupt document %s: %w", key, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (b *CharmBackend) Count(_ context.Context, collection string) (int, error) {
	keys, err := b.kv.ListKeys(charm.DocumentPrefixFor(collection))
	if err != nil {
		return 0, fmt.Errorf("failed to list document keys: %w", err)
	}
	return len(keys), nil
}

// Close closes the underlying KV when it supports closing
func (b *CharmBackend) Close() error {
	if b.closer != nil {
		return b.closer()
	}
	return nil
}

func (b *CharmBackend) setJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return b.kv.Set(key, data)
}
