package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"lyricsync-go/cache"
	"lyricsync-go/circuitbreaker"
	"lyricsync-go/config"
	"lyricsync-go/control"
	"lyricsync-go/logcolors"
	"lyricsync-go/lyric"
	"lyricsync-go/middleware"
	"lyricsync-go/services/acquire"
	"lyricsync-go/services/providers"
	"lyricsync-go/services/providers/kugou"
	"lyricsync-go/services/providers/netease"
	"lyricsync-go/services/providers/qqmusic"
	"lyricsync-go/settings"
	"lyricsync-go/store"
	"lyricsync-go/syncer"
	"lyricsync-go/transport"
)

// app owns every long-lived component, wired once at startup. No package
// globals: the controller, orchestrator and cache are explicit instances.
type app struct {
	cfg        config.Config
	store      store.Store
	cache      *cache.Cache
	orch       *acquire.Orchestrator
	controller *syncer.Controller
	hub        *control.Hub
	controlWS  *control.Handler
	blacklist  *settings.BlacklistSet
}

// buildSources instantiates the configured providers in order. Unknown names
// log and are skipped.
func buildSources(proxy transport.Requester, cfg config.Config, names []string) []providers.Source {
	var sources []providers.Source
	for _, name := range names {
		switch name {
		case netease.ProviderName:
			sources = append(sources, netease.New(proxy, cfg.Configuration.NetEaseCookie))
		case qqmusic.ProviderName:
			sources = append(sources, qqmusic.New(proxy))
		case kugou.ProviderName:
			sources = append(sources, kugou.New(proxy))
		default:
			log.Warnf("%s Unknown provider %q in PROVIDER_ORDER, skipping", logcolors.LogConfig, name)
		}
	}
	return sources
}

func buildApp() *app {
	cfg := config.Get()
	c := cfg.Configuration

	proxy := transport.NewHTTPProxy(c.ProviderRatePerSec, c.ProviderRateBurst)

	var adapters []*providers.Adapter
	for _, src := range buildSources(proxy, cfg, cfg.Providers()) {
		breaker := circuitbreaker.New(circuitbreaker.Config{
			Name:      src.Name(),
			Threshold: c.CircuitBreakerThreshold,
			Cooldown:  time.Duration(c.CircuitBreakerCooldownSecs) * time.Second,
		})
		adapters = append(adapters, providers.NewAdapter(src, breaker, c.DurationToleranceMs))
	}
	orch := acquire.New(adapters, c.MinAcceptedLines)

	var st store.Store
	if bolt, err := store.NewBoltStore(c.CacheDBPath, cfg.FeatureFlags.CacheCompression); err != nil {
		log.Warnf("%s Persistent store unavailable (%v), falling back to memory", logcolors.LogCacheInit, err)
		st = store.NewMemoryStore()
	} else {
		st = bolt
	}
	lyricCache := cache.New(st, c.DurationToleranceMs)

	settingsClient := settings.NewClient(proxy, c.SettingsBaseURL)
	blacklist := loadBlacklist(settingsClient)

	probe := syncer.NewHTTPProbe(proxy, c.ClientBaseURL, c.ProbeTimeoutMs)

	hub := control.NewHub()
	controller := syncer.New(orch, lyricCache, probe, blacklist, c.DebounceMs, syncer.Callbacks{
		// The rendering layer lives on the other end of the control channel.
		OnCursor: func(index int, line lyric.Line) {
			hub.Push("cursor", map[string]interface{}{"index": index, "line": line})
		},
		OnLyrics: func(title string, lines []lyric.Line) {
			hub.Push("lyrics", map[string]interface{}{"title": title, "lines": lines})
		},
	})

	return &app{
		cfg:        cfg,
		store:      st,
		cache:      lyricCache,
		orch:       orch,
		controller: controller,
		hub:        hub,
		controlWS:  control.NewHandler(hub, controller, orch, lyricCache, blacklist, settingsClient),
		blacklist:  blacklist,
	}
}

// loadBlacklist pulls the persisted blacklist from the settings endpoint.
// An unreachable endpoint degrades to an empty set.
func loadBlacklist(client *settings.Client) *settings.BlacklistSet {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := client.Fetch(ctx)
	if err != nil {
		log.Warnf("%s Could not load settings (%v), starting with an empty blacklist", logcolors.LogSettings, err)
		return settings.NewBlacklistSet(nil)
	}

	log.Infof("%s Loaded %d blacklisted titles", logcolors.LogSettings, len(s.Blacklist))
	return settings.NewBlacklistSet(s.Blacklist)
}

// buildHandler assembles the middleware chain around the router:
// rate limit -> cors -> api key -> logging -> routes.
func buildHandler(a *app) http.Handler {
	c := a.cfg.Configuration

	router := mux.NewRouter()
	setupRoutes(router, a)

	logged := middleware.LoggingMiddleware(router)

	// The websocket upgrade and health probe stay public; everything else
	// needs the key when one is configured.
	keyed := middleware.APIKeyMiddleware(c.APIKey, []string{"/", "/health", "/ws*"})(logged)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedHeaders:   []string{"Content-Type", "X-API-Key"},
		AllowCredentials: false,
	}).Handler(keyed)

	limiter := middleware.NewIPRateLimiter(rate.Limit(c.RateLimitPerSecond), c.RateLimitBurstLimit)
	return middleware.RateLimitMiddleware(limiter)(corsHandler)
}
