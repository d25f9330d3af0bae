package cache

import (
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
	"lyricsync-go/lyric"
	"lyricsync-go/store"
	"lyricsync-go/utils"
)

const (
	idPrefix    = "id:"
	titlePrefix = "title:"
)

// Entry is one cached lyric: the merged lines plus the identity they were
// acquired under.
type Entry struct {
	ID       string       `json:"id,omitempty"`
	Title    string       `json:"title"`
	LengthMs int          `json:"lengthMs,omitempty"`
	Provider string       `json:"provider,omitempty"`
	Lines    []lyric.Line `json:"lines"`
}

// Summary is the listing view of a cached entry.
type Summary struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Provider  string `json:"provider,omitempty"`
	LineCount int    `json:"lineCount"`
}

// Cache stores merged lyrics keyed primarily by stable song ID and
// secondarily by normalized title. A title hit additionally requires the
// cached length to sit within the duration tolerance, so two songs sharing a
// title don't cross-contaminate.
type Cache struct {
	store       store.Store
	toleranceMs int
}

// New builds a lyric cache over the given store.
func New(s store.Store, toleranceMs int) *Cache {
	return &Cache{store: s, toleranceMs: toleranceMs}
}

// Put writes the entry under its ID key and its normalized-title key.
// Storage failures are logged and swallowed: a broken cache degrades to a
// miss, it never blocks lyric delivery.
func (c *Cache) Put(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("%s Failed to marshal entry for %q: %v", logcolors.LogCacheLyrics, entry.Title, err)
		return
	}

	if entry.ID != "" {
		if err := c.store.Set(idPrefix+entry.ID, string(data)); err != nil {
			log.Warnf("%s Failed to store id key for %q: %v", logcolors.LogCacheLyrics, entry.Title, err)
		}
	}
	if norm := utils.NormalizeTitle(entry.Title); norm != "" {
		if err := c.store.Set(titlePrefix+norm, string(data)); err != nil {
			log.Warnf("%s Failed to store title key for %q: %v", logcolors.LogCacheLyrics, entry.Title, err)
		}
	}

	log.Debugf("%s Stored %q (%d lines, provider: %s)",
		logcolors.LogCacheLyrics, entry.Title, len(entry.Lines), entry.Provider)
}

// ByID looks up an entry by stable song ID.
func (c *Cache) ByID(id string) (Entry, bool) {
	if id == "" {
		return Entry{}, false
	}
	return c.load(idPrefix + id)
}

// ByTitle looks up an entry by normalized title. When both lengths are known
// they must agree within the tolerance for the hit to count.
func (c *Cache) ByTitle(title string, lengthMs int) (Entry, bool) {
	norm := utils.NormalizeTitle(title)
	if norm == "" {
		return Entry{}, false
	}

	entry, ok := c.load(titlePrefix + norm)
	if !ok {
		return Entry{}, false
	}

	if lengthMs > 0 && entry.LengthMs > 0 {
		delta := entry.LengthMs - lengthMs
		if delta < 0 {
			delta = -delta
		}
		if delta > c.toleranceMs {
			log.Debugf("%s Title hit for %q rejected: length %dms vs %dms",
				logcolors.LogCacheLyrics, title, entry.LengthMs, lengthMs)
			return Entry{}, false
		}
	}
	return entry, true
}

func (c *Cache) load(key string) (Entry, bool) {
	raw, ok := c.store.Get(key)
	if !ok {
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Warnf("%s Corrupt entry at %s: %v", logcolors.LogCache, key, err)
		return Entry{}, false
	}
	return entry, true
}

// List returns a summary for every cached entry.
func (c *Cache) List() ([]Summary, error) {
	keys, err := c.store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list store keys: %w", err)
	}

	summaries := make([]Summary, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, idPrefix) && !strings.HasPrefix(key, titlePrefix) {
			continue
		}
		entry, ok := c.load(key)
		if !ok {
			continue
		}
		summaries = append(summaries, Summary{
			Key:       key,
			Title:     entry.Title,
			Provider:  entry.Provider,
			LineCount: len(entry.Lines),
		})
	}
	return summaries, nil
}

// Remove deletes one entry by store key.
func (c *Cache) Remove(key string) error {
	if key == "" {
		return fmt.Errorf("key required")
	}
	return c.store.Clear(key)
}

// Clear wipes the whole cache.
func (c *Cache) Clear() error {
	log.Infof("%s Clearing lyric cache", logcolors.LogCacheClear)
	return c.store.Clear("")
}
