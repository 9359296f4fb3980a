// Package fsstore implements the default ledgerstore.Store backend: one
// JSON file per collection, each an object keyed by record id, written
// atomically via temp-file + os.Rename (§4.3, §6.4).
package fsstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"

	"github.com/marcus-ai/marcus/internal/port/ledgerstore"
)

type Store struct {
	dir  string
	fsync bool

	mu   sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir string, fsync bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("fsstore: create data directory: %w", err)
	}
	return &Store{dir: dir, fsync: fsync, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *Store) collectionLock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		s.locks[collection] = l
	}
	return l
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *Store) readAll(collection string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path(collection))
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage)
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		// Tolerate a corrupt file per §6.4: start from empty rather than
		// abort the whole collection.
		return map[string]json.RawMessage{}, nil
	}
	return out, nil
}

// writeAll implements the atomic write: marshal to a temp file in the same
// directory (so the rename is same-filesystem), optionally fsync, then
// rename over the destination (§4.3).
func (s *Store) writeAll(collection string, records map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("fsstore: marshal %s: %w", collection, err)
	}

	dest := s.path(collection)
	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("fsstore: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("fsstore: write temp file: %w", err)
	}
	if s.fsync {
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			return fmt.Errorf("fsstore: fsync temp file: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("fsstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("fsstore: rename into place: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, collection, id string, blob []byte) error {
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readAll(collection)
	if err != nil {
		return fmt.Errorf("fsstore: save: read %s: %w", collection, err)
	}
	records[id] = json.RawMessage(blob)
	return s.writeAll(collection, records)
}

func (s *Store) Load(ctx context.Context, collection string) (map[string][]byte, error) {
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readAll(collection)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(records))
	for id, raw := range records {
		out[id] = []byte(raw)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, bool, error) {
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readAll(collection)
	if err != nil {
		return nil, false, err
	}
	raw, ok := records[id]
	if !ok {
		return nil, false, nil
	}
	return []byte(raw), true, nil
}

func (s *Store) Remove(ctx context.Context, collection, id string) error {
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.readAll(collection)
	if err != nil {
		return fmt.Errorf("fsstore: remove: read %s: %w", collection, err)
	}
	if _, ok := records[id]; !ok {
		return nil
	}
	delete(records, id)
	return s.writeAll(collection, records)
}

var _ ledgerstore.Store = (*Store)(nil)
