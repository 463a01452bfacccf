// ABOUTME: SQLite database schema for routine collections
// ABOUTME: One row per collection, one row per (collection, document id)
package sqlite

// Schema contains all SQL statements for database initialization
const Schema = `
-- Named collections and the distance metric they were created with
CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    metric TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Documents: enriched text, flat JSON metadata and the embedding as a float64 BLOB
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT NOT NULL REFERENCES collections(name) ON DELETE CASCADE,
    id TEXT NOT NULL,
    document TEXT NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}',
    embedding BLOB NOT NULL,
    updated_at DATETIME NOT NULL,
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(collection, updated_at);
`
