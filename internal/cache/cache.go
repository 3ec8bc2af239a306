package cache

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

const dbName = "responses.db"

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key        TEXT PRIMARY KEY,
	response   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

// Cache stores LLM answers in a SQLite database keyed by a hash of the
// provider, model and prompt. A disabled Cache is a no-op.
type Cache struct {
	db         *sql.DB
	dir        string
	ttlSeconds int
	enabled    bool
	now        func() time.Time
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false, now: time.Now}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache directory")
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, dbName))
	if err != nil {
		return nil, errors.Wrap(err, "opening cache database")
	}
	// Single connection keeps writes serialized.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing cache schema")
	}

	return &Cache{
		db:         db,
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
		now:        time.Now,
	}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get retrieves a cached entry by key. Returns ("", false) on miss.
// Expired entries are deleted on read. Keys are stored as given; callers
// build them with BuildCacheKey.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	var response string
	var created int64
	err := c.db.QueryRow(`SELECT response, created_at FROM responses WHERE key = ?`, key).
		Scan(&response, &created)
	if err != nil {
		return "", false
	}
	if c.expired(created) {
		_, _ = c.db.Exec(`DELETE FROM responses WHERE key = ?`, key)
		return "", false
	}
	return response, true
}

// Put stores a response in the cache, replacing any previous entry for key.
func (c *Cache) Put(key, response string) error {
	if !c.enabled {
		return nil
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (key, response, created_at) VALUES (?, ?, ?)`,
		key, response, c.now().Unix(),
	)
	if err != nil {
		return errors.Wrap(err, "writing cache entry")
	}
	return nil
}

// Clear removes all cache entries and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	if !c.enabled {
		return 0, nil
	}
	res, err := c.db.Exec(`DELETE FROM responses`)
	if err != nil {
		return 0, errors.Wrap(err, "clearing cache")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

// Stats returns cache statistics.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled {
		return stats, nil
	}
	var total sql.NullInt64
	err := c.db.QueryRow(`SELECT COUNT(*), SUM(LENGTH(response)) FROM responses`).
		Scan(&stats.Entries, &total)
	if err != nil {
		return stats, errors.Wrap(err, "reading cache stats")
	}
	stats.TotalBytes = total.Int64

	if c.ttlSeconds > 0 {
		cutoff := c.now().Unix() - int64(c.ttlSeconds)
		err := c.db.QueryRow(`SELECT COUNT(*) FROM responses WHERE created_at < ?`, cutoff).
			Scan(&stats.Expired)
		if err != nil {
			return stats, errors.Wrap(err, "counting expired entries")
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

func (c *Cache) expired(created int64) bool {
	if c.ttlSeconds <= 0 {
		return false
	}
	return c.now().Unix()-created > int64(c.ttlSeconds)
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildCacheKey creates a cache key from the completion inputs.
func BuildCacheKey(provider, model, prompt string) string {
	return HashKey(fmt.Sprintf("%s:%s:%s", provider, model, prompt))
}

// DefaultDir returns the platform cache directory for clihelper.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "clihelper"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "cannot determine home directory")
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "clihelper"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "clihelper", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "clihelper", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "clihelper"), nil
	}
}
