package settings

import (
	"sort"
	"sync"

	"lyricsync-go/utils"
)

// Settings is the user preference document served by the settings endpoint.
type Settings struct {
	Blacklist     []string `json:"blacklist"`
	ShowSecondary bool     `json:"showSecondary"`
	OffsetMs      int      `json:"offsetMs"`
}

// BlacklistSet holds normalized titles that must never trigger acquisition.
type BlacklistSet struct {
	mu     sync.RWMutex
	titles map[string]struct{}
}

// NewBlacklistSet builds a set from raw titles.
func NewBlacklistSet(titles []string) *BlacklistSet {
	b := &BlacklistSet{titles: make(map[string]struct{}, len(titles))}
	for _, t := range titles {
		if norm := utils.NormalizeTitle(t); norm != "" {
			b.titles[norm] = struct{}{}
		}
	}
	return b
}

// Has reports whether title is blacklisted. Matching is on normalized form.
func (b *BlacklistSet) Has(title string) bool {
	norm := utils.NormalizeTitle(title)
	if norm == "" {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.titles[norm]
	return ok
}

// Add inserts a title. Returns false when it was already present.
func (b *BlacklistSet) Add(title string) bool {
	norm := utils.NormalizeTitle(title)
	if norm == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.titles[norm]; ok {
		return false
	}
	b.titles[norm] = struct{}{}
	return true
}

// Remove deletes a title. Returns false when it was not present.
func (b *BlacklistSet) Remove(title string) bool {
	norm := utils.NormalizeTitle(title)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.titles[norm]; !ok {
		return false
	}
	delete(b.titles, norm)
	return true
}

// Titles returns the normalized titles, sorted for stable output.
func (b *BlacklistSet) Titles() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.titles))
	for t := range b.titles {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
