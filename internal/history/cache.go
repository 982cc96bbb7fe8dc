package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/artistblend/abx/internal/models"
	"github.com/artistblend/abx/internal/shared"
	"github.com/charmbracelet/log"
)

// cacheFileName is the single cache slot in the state directory.
const cacheFileName = "history.json"

// MaxCacheEntries bounds the local fallback cache. Saves beyond the cap
// evict the oldest entries.
const MaxCacheEntries = 50

// Cache is the local fallback copy of the playlist history, one JSON array
// in a single file. It is a disaster-recovery shadow of the backend's
// store, not a mirror: it is only written on degraded paths.
type Cache struct {
	path   string
	logger *log.Logger
}

// NewCache creates a cache stored under the given state directory.
func NewCache(dir string, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		path:   filepath.Join(dir, cacheFileName),
		logger: logger,
	}
}

// Path returns the cache slot location.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the cached entries, newest first. A corrupt slot (unreadable
// JSON, or JSON that is not an array) is deleted and read as empty so the
// next load starts clean. A missing slot is empty, never an error.
func (c *Cache) Load() []models.HistoryEntry {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("unreadable history cache", "path", c.path, "error", err)
		}
		return []models.HistoryEntry{}
	}

	var entries []models.HistoryEntry
	err = json.Unmarshal(data, &entries)
	if err == nil && entries == nil {
		// JSON null parses cleanly but is not a sequence of entries.
		err = fmt.Errorf("not an entry array")
	}
	if err != nil {
		c.logger.Warn("discarding history cache",
			"path", c.path, "error", fmt.Errorf("%w: %v", shared.ErrCorruptCache, err))
		os.Remove(c.path)
		return []models.HistoryEntry{}
	}
	return entries
}

// Save writes the entries to the slot, truncating to [MaxCacheEntries].
func (c *Cache) Save(entries []models.HistoryEntry) error {
	if len(entries) > MaxCacheEntries {
		entries = entries[:MaxCacheEntries]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

// Prepend inserts an entry at the front of the slot, evicting past the cap.
func (c *Cache) Prepend(entry models.HistoryEntry) error {
	entries := append([]models.HistoryEntry{entry}, c.Load()...)
	return c.Save(entries)
}

// Clear deletes the slot. Missing file is a no-op.
func (c *Cache) Clear() error {
	err := os.Remove(c.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
