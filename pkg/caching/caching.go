package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache stores fetched page bodies on disk, one file per URL, and serves them
// back until they are older than ttl.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates the cache directory if needed. A ttl <= 0 makes every
// lookup a miss while still writing fresh pages.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// key is the hex sha256 of the URL.
func (c *Cache) key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", hash)
}

func (c *Cache) file(url string) string {
	k := c.key(url)
	return filepath.Join(c.path, k[:2], k+".html")
}

// finalFile holds the post-redirect URL the body was served from.
func (c *Cache) finalFile(url string) string {
	k := c.key(url)
	return filepath.Join(c.path, k[:2], k+".url")
}

// Get returns the cached body for url and the URL it was finally served
// from when present and fresh. An entry without a recorded final URL
// reports url itself.
func (c *Cache) Get(url string) ([]byte, string, bool) {
	if c.ttl <= 0 {
		return nil, "", false
	}
	filePath := c.file(url)

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, "", false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return nil, "", false
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", false
	}
	finalURL := url
	if raw, err := os.ReadFile(c.finalFile(url)); err == nil && len(raw) > 0 {
		finalURL = string(raw)
	}
	return data, finalURL, true
}

// Set writes body for url along with the final URL after redirects. The final
// URL is written first and the body last, so a visible body always has its
// matching final URL.
func (c *Cache) Set(url, finalURL string, body []byte) error {
	filePath := c.file(url)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache shard: %w", err)
	}
	if finalURL == "" {
		finalURL = url
	}
	if err := writeAtomic(c.finalFile(url), []byte(finalURL)); err != nil {
		return err
	}
	return writeAtomic(filePath, body)
}

// writeAtomic goes through a temp file and a rename so concurrent workers
// never read a partial file.
func writeAtomic(filePath string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(filePath), ".page-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
