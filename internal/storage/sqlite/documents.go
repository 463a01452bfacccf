// ABOUTME: vectorstore.Backend implementation on SQLite
// ABOUTME: Embeddings are stored as BLOBs, metadata as JSON, upserts use ON CONFLICT
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/harper/wodsmith/internal/vectorstore"
)

// Backend persists collections in a SQLite database
type Backend struct {
	db *DB
}

// NewBackend creates a Backend over an open database
func NewBackend(db *DB) *Backend {
	return &Backend{db: db}
}

// OpenBackend opens (or creates) the database file and wraps it
func OpenBackend(path string) (*Backend, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewBackend(db), nil
}

func (b *Backend) EnsureCollection(ctx context.Context, name string, metric vectorstore.Metric) (vectorstore.Metric, error) {
	_, err := b.db.conn.ExecContext(ctx, `
		INSERT INTO collections (name, metric, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, string(metric), time.Now().UTC())
	if err != nil {
		return "", err
	}

	var stored string
	if err := b.db.conn.QueryRowContext(ctx, `SELECT metric FROM collections WHERE name = ?`, name).Scan(&stored); err != nil {
		return "", err
	}
	return vectorstore.Metric(stored), nil
}

func (b *Backend) Put(ctx context.Context, collection string, rec vectorstore.Record) error {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = b.db.conn.ExecContext(ctx, `
		INSERT INTO documents (collection, id, document, metadata, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			document = excluded.document,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, collection, rec.ID, rec.Document, string(meta), vectorToBlob(rec.Embedding), rec.UpdatedAt)
	return err
}

func (b *Backend) Get(ctx context.Context, collection, id string) (*vectorstore.Record, error) {
	row := b.db.conn.QueryRowContext(ctx, `
		SELECT id, document, metadata, embedding, updated_at
		FROM documents
		WHERE collection = ? AND id = ?
	`, collection, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (b *Backend) List(ctx context.Context, collection string) ([]vectorstore.Record, error) {
	rows, err := b.db.conn.QueryContext(ctx, `
		SELECT id, document, metadata, embedding, updated_at
		FROM documents
		WHERE collection = ?
		ORDER BY id ASC
	`, collection)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []vectorstore.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (b *Backend) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := b.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n)
	return n, err
}

// Close closes the underlying database
func (b *Backend) Close() error {
	return b.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*vectorstore.Record, error) {
	var (
		rec  vectorstore.Record
		meta string
		blob []byte
	)
	if err := s.Scan(&rec.ID, &rec.Document, &meta, &blob, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(meta), &rec.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", rec.ID, err)
	}
	rec.Embedding = blobToVector(blob)
	return &rec, nil
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}
