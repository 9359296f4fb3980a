// Package ledgerstore declares the durable, collection-keyed JSON blob
// store used by the Assignment Ledger and the Dependency Inferer's cache
// (§4.3, §6.4). Two backends are provided in internal/adapter/ledgerstore:
// a filesystem store (temp+rename) and a Postgres store — both store the
// same opaque blob shape.
package ledgerstore

import "context"

// Store is a durable map of record id → opaque JSON blob, partitioned by
// collection (e.g. "assignments", "dependency_cache", "reversion_counts").
// Every write stamps "_stored_at" automatically. Mutations within a single
// collection are serialized by the implementation (§4.3 "per-collection
// advisory lock").
type Store interface {
	// Save atomically writes the blob keyed by id within collection.
	Save(ctx context.Context, collection, id string, blob []byte) error
	// Load returns the full contents of a collection as id → blob.
	Load(ctx context.Context, collection string) (map[string][]byte, error)
	// Get returns a single record, or ok=false if absent.
	Get(ctx context.Context, collection, id string) (blob []byte, ok bool, err error)
	Remove(ctx context.Context, collection, id string) error
}
