package metadata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Resolver runs every configured provider against a query, applies the
// per-provider minimum-similarity filter, merges the survivors, and
// caches the result (spec §4.10).
type Resolver struct {
	providers []Provider
	cache     *ttlCache
	minConf   float64
}

func NewResolver(providers []Provider, ttl time.Duration, minConfidence float64) *Resolver {
	return &Resolver{providers: providers, cache: newTTLCache(ttl), minConf: minConfidence}
}

// Resolve looks up a manual override next to videoPath first; failing
// that, checks the in-memory TTL cache; failing that, queries every
// provider and merges.
func (r *Resolver) Resolve(ctx context.Context, videoPath string, q Query) (*Metadata, error) {
	if m, ok, err := loadManualOverride(videoPath); err != nil {
		return nil, err
	} else if ok {
		return m, nil
	}

	key := queryKey(q)
	if m, ok := r.cache.get(key); ok {
		return m, nil
	}

	var results []scored
	for _, p := range r.providers {
		m, err := p.Resolve(ctx, q)
		if err != nil || m == nil {
			continue
		}
		score := scoreCandidate(q, m)
		m.Confidence = score
		if score < p.MinSimilarity() {
			continue
		}
		results = append(results, scored{provider: p, result: m, score: score})
	}

	merged := Merge(results, r.minConf)
	if merged != nil {
		r.cache.put(key, merged)
	}
	return merged, nil
}

func queryKey(q Query) string {
	sort.Strings(q.Titles)
	h := sha256.Sum256([]byte(strings.Join(q.Titles, "|") + "|" + strings.Join(q.LangPriority, ",")))
	return hex.EncodeToString(h[:])
}

// loadManualOverride reads N.metadata.json next to the video into a
// Metadata (keys per its json tags), confidence fixed at 1.0 since it
// bypasses providers entirely (spec §4.10).
func loadManualOverride(videoPath string) (*Metadata, bool, error) {
	dir := filepath.Dir(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	overridePath := filepath.Join(dir, base+".metadata.json")

	data, err := os.ReadFile(overridePath)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("metadata: read override %s: %w", overridePath, err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, fmt.Errorf("metadata: parse override %s: %w", overridePath, err)
	}
	m.Confidence = 1.0
	return &m, true, nil
}

type ttlEntry struct {
	value   *Metadata
	expires time.Time
}

// ttlCache is a small in-memory cache with lazy expiry, matching the
// teacher's pattern of process-lifetime singletons for cross-job shared
// state (spec §5: "metadata cache [is a] singleton with internal
// locking").
type ttlCache struct {
	mu      sync.Mutex
	entries map[string]ttlEntry
	ttl     time.Duration
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{entries: map[string]ttlEntry{}, ttl: ttl}
}

func (c *ttlCache) get(key string) (*Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *ttlCache) put(key string, value *Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = ttlEntry{value: value, expires: time.Now().Add(c.ttl)}
}
