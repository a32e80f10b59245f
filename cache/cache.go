// Package cache stores model responses in SQLite so repeated runs with
// an unchanged prompt skip the API call entirely.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/promptcrafter/promptcrafter/errors"
)

// Entry is a cached model response
type Entry struct {
	CacheKey         string
	Provider         string
	Model            string
	Response         string
	PromptTokens     int
	CompletionTokens int
	CreatedAt        time.Time
	ExpiresAt        *time.Time
}

// Key identifies a cacheable request. Two requests share a cache entry
// only when every field matches.
type Key struct {
	Provider    string
	Model       string
	Temperature float64
	Prompt      string
}

// Hash returns the deterministic cache key for k
func (k Key) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%.4f\x00%s", k.Provider, k.Model, k.Temperature, k.Prompt)
	return hex.EncodeToString(h.Sum(nil))
}

// Cache is a SQLite-backed response cache with TTL expiry
type Cache struct {
	db     *sql.DB
	ttl    time.Duration // 0 = entries never expire
	logger *zap.SugaredLogger
}

// New creates a cache. A zero ttl disables expiry.
func New(db *sql.DB, ttl time.Duration, logger *zap.SugaredLogger) *Cache {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cache{db: db, ttl: ttl, logger: logger}
}

// Get returns the cached entry for key, or ErrNotFound when the entry
// is missing or expired. Expired entries are deleted on read.
func (c *Cache) Get(key Key) (*Entry, error) {
	hash := key.Hash()

	var e Entry
	var createdAt string
	var expiresAt sql.NullString
	err := c.db.QueryRow(
		`SELECT cache_key, provider, model, response, prompt_tokens, completion_tokens, created_at, expires_at
		 FROM response_cache WHERE cache_key = ?`, hash,
	).Scan(&e.CacheKey, &e.Provider, &e.Model, &e.Response,
		&e.PromptTokens, &e.CompletionTokens, &createdAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "cache miss for %s/%s", key.Provider, key.Model)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query response cache")
	}

	e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "corrupt created_at on cache entry %s", hash)
	}

	if expiresAt.Valid {
		exp, err := time.Parse(time.RFC3339, expiresAt.String)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt expires_at on cache entry %s", hash)
		}
		e.ExpiresAt = &exp
		if time.Now().After(exp) {
			if _, delErr := c.db.Exec(`DELETE FROM response_cache WHERE cache_key = ?`, hash); delErr != nil {
				c.logger.Warnw("Failed to delete expired cache entry", "key", hash, "error", delErr)
			}
			return nil, errors.Wrapf(errors.ErrNotFound, "cache entry expired for %s/%s", key.Provider, key.Model)
		}
	}

	return &e, nil
}

// Put stores a response under key, replacing any existing entry
func (c *Cache) Put(key Key, response string, promptTokens, completionTokens int) error {
	now := time.Now().UTC()

	var expiresAt interface{}
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl).Format(time.RFC3339)
	}

	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO response_cache
		 (cache_key, provider, model, prompt_sha256, response, prompt_tokens, completion_tokens, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key.Hash(), key.Provider, key.Model, promptSHA256(key.Prompt),
		response, promptTokens, completionTokens,
		now.Format(time.RFC3339), expiresAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to store cache entry")
	}
	return nil
}

// PurgeExpired removes every entry past its expiry and returns the count
func (c *Cache) PurgeExpired() (int64, error) {
	res, err := c.db.Exec(
		`DELETE FROM response_cache WHERE expires_at IS NOT NULL AND expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to purge expired cache entries")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count purged entries")
	}
	return n, nil
}

// Clear removes all cache entries and returns the count
func (c *Cache) Clear() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM response_cache`)
	if err != nil {
		return 0, errors.Wrap(err, "failed to clear response cache")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count cleared entries")
	}
	return n, nil
}

// Count returns the number of cached entries, expired or not
func (c *Cache) Count() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM response_cache`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count cache entries")
	}
	return n, nil
}

func promptSHA256(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
