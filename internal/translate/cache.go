package translate

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/rs/zerolog"
)

// CacheKey computes the deterministic cache key of §4.9:
// SHA256(src_lang | '|' | dst_lang | '|' | text).
func CacheKey(srcLang, dstLang, text string) string {
	sum := sha256.Sum256([]byte(srcLang + "|" + dstLang + "|" + text))
	return hex.EncodeToString(sum[:])
}

// Cache is a durable local key-value store for translated text, backed by
// SQLite (pure-Go driver, no cgo) so the daemon stays a single static
// binary. On any backing-store failure it flips to a permanent no-op
// state and logs once, per §4.9 — callers never see cache errors.
type Cache struct {
	mu      sync.Mutex
	db      *sql.DB
	log     zerolog.Logger
	broken  bool
	warned  bool
}

func OpenCache(path string, log zerolog.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("translate: open cache %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS translations (
		key TEXT PRIMARY KEY,
		text TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("translate: init cache schema: %w", err)
	}
	return &Cache{db: db, log: log}, nil
}

func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get looks up key, returning ok=false on a miss or once the cache has
// flipped to no-op after a failure.
func (c *Cache) Get(key string) (text string, ok bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return "", false
	}
	row := c.db.QueryRow(`SELECT text FROM translations WHERE key = ?`, key)
	if err := row.Scan(&text); err != nil {
		if err != sql.ErrNoRows {
			c.fail(err)
		}
		return "", false
	}
	return text, true
}

// Put stores text under key, canonicalising format on every write
// (including cache-hit rewrites, per §4.9).
func (c *Cache) Put(key, text string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken {
		return
	}
	_, err := c.db.Exec(`INSERT INTO translations(key, text) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET text = excluded.text`, key, text)
	if err != nil {
		c.fail(err)
	}
}

func (c *Cache) fail(err error) {
	c.broken = true
	if !c.warned {
		c.warned = true
		c.log.Warn().Err(err).Msg("translation cache backing store failed, disabling cache for this run")
	}
}
