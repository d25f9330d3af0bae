package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"lyricsync-go/logcolors"
)

// APIKeyMiddleware requires the X-API-Key header on non-public paths when a
// key is configured. An empty key disables authentication entirely, so a
// local single-user install needs no setup.
//
// Entries in publicPaths ending with "*" match by prefix, which covers the
// websocket upgrade path and its subresources.
func APIKeyMiddleware(apiKey string, publicPaths []string) func(http.Handler) http.Handler {
	exact := make(map[string]bool, len(publicPaths))
	var prefixes []string
	for _, p := range publicPaths {
		if strings.HasSuffix(p, "*") {
			prefixes = append(prefixes, strings.TrimSuffix(p, "*"))
		} else {
			exact[p] = true
		}
	}

	isPublic := func(path string) bool {
		if exact[path] {
			return true
		}
		for _, prefix := range prefixes {
			if strings.HasPrefix(path, prefix) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				log.Warnf("%s Missing API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				writeAuthError(w, "API key required", "Provide a valid API key via X-API-Key header")
				return
			}
			if provided != apiKey {
				log.Warnf("%s Invalid API key from %s for %s", logcolors.LogAPIKey, r.RemoteAddr, r.URL.Path)
				writeAuthError(w, "Invalid API key", "The provided API key is not valid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, errMsg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + errMsg + `","message":"` + detail + `"}`))
}
