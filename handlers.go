package main

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
	"lyricsync-go/stats"
)

func (a *app) getHealthStatus(w http.ResponseWriter, r *http.Request) {
	providerStatus := map[string]string{}
	for _, ad := range a.orch.Adapters() {
		providerStatus[ad.Name()] = ad.Status().String()
	}

	Respond(w).JSON(map[string]interface{}{
		"status":     "ok",
		"uptime":     stats.Get().Uptime().String(),
		"sync_state": a.controller.State().String(),
		"providers":  providerStatus,
		"peers":      a.hub.PeerCount(),
	})
}

func (a *app) getStats(w http.ResponseWriter, r *http.Request) {
	Respond(w).JSON(stats.Get().Snapshot())
}

func (a *app) getCacheDump(w http.ResponseWriter, r *http.Request) {
	entries, err := a.cache.List()
	if err != nil {
		log.Errorf("%s Failed to list cache: %v", logcolors.LogCache, err)
		Respond(w).Error(http.StatusInternalServerError, map[string]string{
			"error": "Failed to list cache",
		})
		return
	}

	body := map[string]interface{}{
		"number_of_keys": len(entries),
		"entries":        entries,
	}
	if s, ok := a.store.(storeStats); ok {
		keys, sizeKB := s.Stats()
		body["store_keys"] = keys
		body["size_kb"] = sizeKB
	}

	Respond(w).JSON(body)
}

// clearCache removes one entry when a key is given, the whole cache without.
func (a *app) clearCache(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")

	if key == "" {
		if err := a.cache.Clear(); err != nil {
			log.Errorf("%s Failed to clear cache: %v", logcolors.LogCacheClear, err)
			Respond(w).Error(http.StatusInternalServerError, map[string]string{
				"error": "Failed to clear cache",
			})
			return
		}
		log.Infof("%s Cleared all cached lyrics", logcolors.LogCacheClear)
		Respond(w).JSON(map[string]string{"status": "cleared"})
		return
	}

	if err := a.cache.Remove(key); err != nil {
		Respond(w).Error(http.StatusInternalServerError, map[string]string{
			"error": "Failed to remove entry",
		})
		return
	}
	log.Infof("%s Removed cache entry %q", logcolors.LogCacheClear, key)
	Respond(w).JSON(map[string]string{"status": "removed", "key": key})
}

// cacheLookup resolves a song the way the sync controller would: by id
// first, then by normalized title within the duration window.
func (a *app) cacheLookup(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	title := r.URL.Query().Get("title")
	if id == "" && title == "" {
		Respond(w).Error(http.StatusUnprocessableEntity, map[string]string{
			"error": "Provide an id or title query parameter",
		})
		return
	}

	if id != "" {
		if entry, ok := a.cache.ByID(id); ok {
			Respond(w).SetCacheStatus("HIT").SetProvider(entry.Provider).JSON(entry)
			return
		}
	}

	if title != "" {
		lengthMs, _ := strconv.Atoi(r.URL.Query().Get("duration"))
		if entry, ok := a.cache.ByTitle(title, lengthMs); ok {
			Respond(w).SetCacheStatus("HIT").SetProvider(entry.Provider).JSON(entry)
			return
		}
	}

	Respond(w).SetCacheStatus("MISS").Error(http.StatusNotFound, map[string]string{
		"error": "No cached lyrics for this song",
	})
}

// searchHandler runs the manual multi-provider search backing the control
// surface's source picker.
func (a *app) searchHandler(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("s")
	if title == "" {
		title = r.URL.Query().Get("title")
	}
	if title == "" {
		Respond(w).Error(http.StatusUnprocessableEntity, map[string]string{
			"error": "Song title not provided",
		})
		return
	}

	results := a.orch.SearchAll(r.Context(), title)
	Respond(w).JSON(map[string]interface{}{
		"title":   title,
		"results": results,
	})
}

func (a *app) helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w).JSON(map[string]interface{}{
		"help": "Lyric synchronization engine. Connect the player and control surface to /ws; " +
			"position frames drive acquisition and cursor pushes.",
		"endpoints": map[string]string{
			"/health":       "Service health, provider status and peer count",
			"/stats":        "Runtime counters",
			"/cache":        "List cached lyrics",
			"/cache/clear":  "Clear the cache (optionally ?key=...)",
			"/cache/lookup": "Look a song up (?id=... or ?title=...&duration=ms)",
			"/search":       "Search all providers (?s=Song%20Title)",
			"/ws":           "Control channel (WebSocket)",
		},
	})
}
