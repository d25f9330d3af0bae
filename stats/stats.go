package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds runtime counters with atomic access
type Stats struct {
	StartTime time.Time

	// HTTP surface
	TotalRequests  atomic.Int64
	HealthRequests atomic.Int64
	StatsRequests  atomic.Int64
	CacheRequests  atomic.Int64
	SearchRequests atomic.Int64
	OtherRequests  atomic.Int64

	RateLimitExceeded atomic.Int64

	Status2xx atomic.Int64
	Status4xx atomic.Int64
	Status5xx atomic.Int64

	// Lyric cache performance
	CacheHits   atomic.Int64
	CacheMisses atomic.Int64

	// Sync controller
	PositionEvents atomic.Int64
	SongChanges    atomic.Int64
	StaleDrops     atomic.Int64

	// Acquisition outcomes
	AcquireSuccess atomic.Int64
	AcquireFailure atomic.Int64

	providerMu sync.Mutex
	providers  map[string]*providerCounters
}

type providerCounters struct {
	success atomic.Int64
	failure atomic.Int64
}

// Global stats instance
var global = &Stats{
	StartTime: time.Now(),
	providers: make(map[string]*providerCounters),
}

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest records a request to a specific endpoint
func (s *Stats) RecordRequest(endpoint string) {
	s.TotalRequests.Add(1)
	switch endpoint {
	case "/health":
		s.HealthRequests.Add(1)
	case "/stats":
		s.StatsRequests.Add(1)
	case "/cache", "/cache/clear", "/cache/lookup":
		s.CacheRequests.Add(1)
	case "/search":
		s.SearchRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

// RecordStatusCode records a response status code
func (s *Stats) RecordStatusCode(code int) {
	switch {
	case code >= 200 && code < 300:
		s.Status2xx.Add(1)
	case code >= 400 && code < 500:
		s.Status4xx.Add(1)
	case code >= 500:
		s.Status5xx.Add(1)
	}
}

// RecordRateLimitExceeded records a rejected request (429)
func (s *Stats) RecordRateLimitExceeded() {
	s.RateLimitExceeded.Add(1)
}

// RecordCacheHit records a lyric cache hit
func (s *Stats) RecordCacheHit() {
	s.CacheHits.Add(1)
}

// RecordCacheMiss records a lyric cache miss
func (s *Stats) RecordCacheMiss() {
	s.CacheMisses.Add(1)
}

// RecordPositionEvent records one playback position report
func (s *Stats) RecordPositionEvent() {
	s.PositionEvents.Add(1)
}

// RecordSongChange records a detected song change
func (s *Stats) RecordSongChange() {
	s.SongChanges.Add(1)
}

// RecordStaleDrop records a result discarded by the staleness guard
func (s *Stats) RecordStaleDrop() {
	s.StaleDrops.Add(1)
}

// RecordAcquisition records an acquisition outcome for a provider.
// provider is empty when every provider failed.
func (s *Stats) RecordAcquisition(provider string, ok bool) {
	if ok {
		s.AcquireSuccess.Add(1)
	} else {
		s.AcquireFailure.Add(1)
	}
	if provider == "" {
		return
	}

	s.providerMu.Lock()
	pc, exists := s.providers[provider]
	if !exists {
		pc = &providerCounters{}
		s.providers[provider] = pc
	}
	s.providerMu.Unlock()

	if ok {
		pc.success.Add(1)
	} else {
		pc.failure.Add(1)
	}
}

// Uptime returns the server uptime
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// CacheHitRate returns the cache hit rate as a percentage
func (s *Stats) CacheHitRate() float64 {
	hits := s.CacheHits.Load()
	misses := s.CacheMisses.Load()
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Snapshot returns a point-in-time snapshot of all stats
func (s *Stats) Snapshot() map[string]interface{} {
	uptime := s.Uptime()

	providers := map[string]interface{}{}
	s.providerMu.Lock()
	for name, pc := range s.providers {
		providers[name] = map[string]int64{
			"success": pc.success.Load(),
			"failure": pc.failure.Load(),
		}
	}
	s.providerMu.Unlock()

	return map[string]interface{}{
		"server": map[string]interface{}{
			"start_time":     s.StartTime.Format(time.RFC3339),
			"uptime":         uptime.String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
		"requests": map[string]interface{}{
			"total":  s.TotalRequests.Load(),
			"health": s.HealthRequests.Load(),
			"stats":  s.StatsRequests.Load(),
			"cache":  s.CacheRequests.Load(),
			"search": s.SearchRequests.Load(),
			"other":  s.OtherRequests.Load(),
		},
		"rate_limiting": map[string]interface{}{
			"exceeded": s.RateLimitExceeded.Load(),
		},
		"responses": map[string]interface{}{
			"2xx": s.Status2xx.Load(),
			"4xx": s.Status4xx.Load(),
			"5xx": s.Status5xx.Load(),
		},
		"lyric_cache": map[string]interface{}{
			"hits":     s.CacheHits.Load(),
			"misses":   s.CacheMisses.Load(),
			"hit_rate": s.CacheHitRate(),
		},
		"sync": map[string]interface{}{
			"position_events": s.PositionEvents.Load(),
			"song_changes":    s.SongChanges.Load(),
			"stale_drops":     s.StaleDrops.Load(),
		},
		"acquisition": map[string]interface{}{
			"success":   s.AcquireSuccess.Load(),
			"failure":   s.AcquireFailure.Load(),
			"providers": providers,
		},
	}
}
