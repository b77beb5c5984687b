// Package sqlite keeps the deployment journal and vote tallies in a local
// SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS deployments (
    id TEXT PRIMARY KEY,
    chain_id INTEGER NOT NULL,
    module_id TEXT NOT NULL,
    future_id TEXT NOT NULL,
    contract_name TEXT NOT NULL,
    address TEXT NOT NULL,
    tx_hash TEXT NOT NULL,
    deployed_at TIMESTAMP NOT NULL,
    UNIQUE (chain_id, future_id)
);

CREATE TABLE IF NOT EXISTS vote_tallies (
    chain_id INTEGER NOT NULL,
    contract TEXT NOT NULL,
    candidate_index INTEGER NOT NULL,
    vote_count INTEGER NOT NULL DEFAULT 0,
    last_block INTEGER NOT NULL,
    last_updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (chain_id, contract, candidate_index)
);
`

// Open opens the journal at path, creating the file and its tables when
// missing. Use ":memory:" for a throwaway journal.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return db, nil
}
