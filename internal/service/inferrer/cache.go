package inferrer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/marcus-ai/marcus/internal/domain/task"
	"github.com/marcus-ai/marcus/internal/port/ledgerstore"
	"github.com/marcus-ai/marcus/internal/port/oracle"
)

const cacheCollection = "dependency_cache"

type cacheEntry struct {
	Results   []oracle.PairResult `json:"results"`
	CachedAt  time.Time           `json:"cached_at"`
}

// cacheKey implements §4.2.6: md5 of the sorted task fingerprints plus the
// sorted pair ids of the batch being queried.
func cacheKey(tasks []task.Task, pairs []oracle.PairQuery) string {
	fingerprints := make([]string, 0, len(tasks))
	for _, t := range tasks {
		descHash := md5.Sum([]byte(t.Description))
		fingerprints = append(fingerprints, t.ID+":"+t.Name+":"+hex.EncodeToString(descHash[:]))
	}
	sort.Strings(fingerprints)

	pairIDs := make([]string, 0, len(pairs))
	for _, p := range pairs {
		a, b := p.TaskAID, p.TaskBID
		if a > b {
			a, b = b, a
		}
		pairIDs = append(pairIDs, a+"|"+b)
	}
	sort.Strings(pairIDs)

	h := md5.New()
	for _, f := range fingerprints {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	for _, p := range pairIDs {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type cache struct {
	store ledgerstore.Store
	ttl   time.Duration
}

func newCache(store ledgerstore.Store, ttl time.Duration) *cache {
	return &cache{store: store, ttl: ttl}
}

// get returns cached results and whether they are still within TTL. Stale
// (expired) entries are still returned with fresh=false so a caller can
// serve them on Oracle failure (§4.2.6).
func (c *cache) get(ctx context.Context, key string) (results []oracle.PairResult, fresh bool, found bool) {
	blob, ok, err := c.store.Get(ctx, cacheCollection, key)
	if err != nil || !ok {
		return nil, false, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(blob, &entry); err != nil {
		return nil, false, false
	}
	fresh = time.Since(entry.CachedAt) < c.ttl
	return entry.Results, fresh, true
}

func (c *cache) put(ctx context.Context, key string, results []oracle.PairResult) error {
	blob, err := json.Marshal(cacheEntry{Results: results, CachedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return c.store.Save(ctx, cacheCollection, key, blob)
}
