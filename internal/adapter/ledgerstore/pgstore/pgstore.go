// Package pgstore implements the optional Postgres ledgerstore.Store
// backend. It stores the same opaque JSON blob shape as fsstore — one row
// per (collection, id) holding the raw marshaled record — rather than
// normalizing into relational columns, per §4.3's "two supported backends,
// both opaque JSON blobs keyed by collection."
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcus-ai/marcus/internal/port/ledgerstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS marcus_ledger_records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	blob       JSONB NOT NULL,
	PRIMARY KEY (collection, id)
);`

type Store struct {
	pool *pgxpool.Pool
}

// New connects and ensures the backing table exists.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("pgstore: ensure schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Save(ctx context.Context, collection, id string, blob []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO marcus_ledger_records (collection, id, blob)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET blob = EXCLUDED.blob`,
		collection, id, blob)
	if err != nil {
		return fmt.Errorf("pgstore: save %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, collection string) (map[string][]byte, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, blob FROM marcus_ledger_records WHERE collection = $1`, collection)
	if err != nil {
		return nil, fmt.Errorf("pgstore: load %s: %w", collection, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("pgstore: scan %s: %w", collection, err)
		}
		out[id] = blob
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, bool, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx, `SELECT blob FROM marcus_ledger_records WHERE collection = $1 AND id = $2`, collection, id).Scan(&blob)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pgstore: get %s/%s: %w", collection, id, err)
	}
	return blob, true, nil
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM marcus_ledger_records WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("pgstore: remove %s/%s: %w", collection, id, err)
	}
	return nil
}

var _ ledgerstore.Store = (*Store)(nil)
