package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttl int) *Cache {
	t.Helper()
	c, err := New(true, t.TempDir(), ttl)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_PutGet(t *testing.T) {
	c := newTestCache(t, 86400)

	key := "test-key"
	value := "Run `chmod +x script.sh` and try again."

	// Miss before put
	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss before put")
	}

	if err := c.Put(key, value); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Expected cache hit after put")
	}
	if got != value {
		t.Errorf("Got = %q, want %q", got, value)
	}
}

func TestCache_PutReplaces(t *testing.T) {
	c := newTestCache(t, 86400)

	if err := c.Put("k", "first"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := c.Put("k", "second"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || got != "second" {
		t.Errorf("Get = %q, %v; want %q, true", got, ok, "second")
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	c := newTestCache(t, 60)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	key := "expire-test"
	if err := c.Put(key, "data"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	now = now.Add(59 * time.Second)
	if _, ok := c.Get(key); !ok {
		t.Error("Expected cache hit before expiration")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss after TTL expiration")
	}

	// Expired rows are removed on read.
	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d after expired read, want 0", stats.Entries)
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c := newTestCache(t, 0)
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	if err := c.Put("k", "v"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	now = now.Add(365 * 24 * time.Hour)
	if _, ok := c.Get("k"); !ok {
		t.Error("TTL of 0 should never expire entries")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("Cache should be disabled")
	}

	// Operations should be no-ops
	if err := c.Put("key", "value"); err != nil {
		t.Errorf("Put on disabled cache should not error: %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Error("Get on disabled cache should always miss")
	}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear on disabled cache = %d, %v; want 0, nil", n, err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on disabled cache should not error: %v", err)
	}
}

func TestCache_CreatesDatabaseFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	c, err := New(true, dir, 60)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()

	if err := c.Put("k", "v"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "responses.db")); err != nil {
		t.Errorf("expected responses.db in %s: %v", dir, err)
	}
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(t, 86400)

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := c.Put(key, "data"); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 5 {
		t.Errorf("Clear removed %d entries, want 5", n)
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected miss after clear")
	}
}

func TestCache_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := c.Put("k", "kept"); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	c.Close()

	c2, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c2.Close()
	if got, ok := c2.Get("k"); !ok || got != "kept" {
		t.Errorf("Get after reopen = %q, %v; want %q, true", got, ok, "kept")
	}
}

func TestCache_GetStats(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 60)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer c.Close()
	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 0 || stats.TotalBytes != 0 {
		t.Errorf("empty stats = %+v", stats)
	}

	c.Put("key1", "value1")
	now = now.Add(2 * time.Minute)
	c.Put("key2", "value2")

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalBytes != int64(len("value1")+len("value2")) {
		t.Errorf("TotalBytes = %d, want %d", stats.TotalBytes, len("value1")+len("value2"))
	}
	if stats.Expired != 1 {
		t.Errorf("Expired = %d, want 1", stats.Expired)
	}
	if stats.Dir != dir {
		t.Errorf("Dir = %q, want %q", stats.Dir, dir)
	}
}

func TestDefaultDir_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := DefaultDir()
	if err != nil {
		t.Fatalf("DefaultDir error: %v", err)
	}
	if dir != "/tmp/xdg-cache/clihelper" {
		t.Errorf("DefaultDir = %q, want %q", dir, "/tmp/xdg-cache/clihelper")
	}
}

func TestHashKey(t *testing.T) {
	h1 := HashKey("test")
	h2 := HashKey("test")
	h3 := HashKey("other")

	if h1 != h2 {
		t.Error("Same input should produce same hash")
	}
	if h1 == h3 {
		t.Error("Different input should produce different hash")
	}
	if len(h1) != 64 { // SHA-256 hex = 64 chars
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestBuildCacheKey(t *testing.T) {
	k1 := BuildCacheKey("anthropic", "claude-3-haiku-20240307", "prompt")
	k2 := BuildCacheKey("anthropic", "claude-3-haiku-20240307", "prompt")
	k3 := BuildCacheKey("openai", "gpt-4o-mini", "prompt")
	k4 := BuildCacheKey("anthropic", "claude-3-haiku-20240307", "other prompt")

	if k1 != k2 {
		t.Error("Same inputs should produce same cache key")
	}
	if k1 == k3 {
		t.Error("Different provider should produce different cache key")
	}
	if k1 == k4 {
		t.Error("Different prompt should produce different cache key")
	}
}

func TestCache_StoresKeyAsGiven(t *testing.T) {
	c := newTestCache(t, 3600)
	key := BuildCacheKey("anthropic", "claude-3-haiku-20240307", "prompt")
	if err := c.Put(key, "answer"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	var stored string
	if err := c.db.QueryRow(`SELECT key FROM responses`).Scan(&stored); err != nil {
		t.Fatalf("query error: %v", err)
	}
	if stored != key {
		t.Errorf("stored key = %q, want %q", stored, key)
	}
	if len(stored) != 64 {
		t.Errorf("key length = %d, want a 64-char SHA-256 hex digest", len(stored))
	}
}
