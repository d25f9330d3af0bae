package main

import (
	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes.
func setupRoutes(router *mux.Router, a *app) {
	// Health and stats
	router.HandleFunc("/health", a.getHealthStatus)
	router.HandleFunc("/stats", a.getStats)

	// Lyric cache management
	router.HandleFunc("/cache", a.getCacheDump)
	router.HandleFunc("/cache/clear", a.clearCache)
	router.HandleFunc("/cache/lookup", a.cacheLookup)

	// Manual multi-provider search
	router.HandleFunc("/search", a.searchHandler)

	// Control channel (position stream in, queries/commands, pushes out)
	router.Handle("/ws", a.controlWS)

	// Help
	router.HandleFunc("/", a.helpHandler)
}
