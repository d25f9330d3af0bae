package logcolors

// ANSI color codes for log prefixes
const (
	Reset  = "\033[0m"
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Red    = "\033[31m"
)

// Cache-related log prefixes
const (
	LogCacheInit   = Blue + "[Cache:Init]" + Reset
	LogCache       = Blue + "[Cache]" + Reset
	LogCacheLyrics = Green + "[Cache:Lyrics]" + Reset
	LogCacheClear  = Blue + "[Cache:Clear]" + Reset
)

// Rate limiting log prefixes
const (
	LogRateLimit = Purple + "[RateLimit]" + Reset
	LogAPIKey    = Purple + "[APIKey]" + Reset
)

// Server/Init log prefixes
const (
	LogServer = Green + "[Server]" + Reset
	LogConfig = Cyan + "[Config]" + Reset
	LogStats  = Blue + "[Stats]" + Reset
)

// Acquisition and provider log prefixes
const (
	LogSearch         = Blue + "[Search]" + Reset
	LogHTTP           = Cyan + "[HTTP]" + Reset
	LogMatch          = Green + "[Match]" + Reset
	LogSuccess        = Green + "[Success]" + Reset
	LogLyrics         = Blue + "[Lyrics]" + Reset
	LogDurationFilter = Cyan + "[Duration Filter]" + Reset
	LogFallback       = Cyan + "[Fallback]" + Reset
	LogAcquire        = Purple + "[Acquire]" + Reset
	LogWarning        = Red + "[Warning]" + Reset
)

// Sync controller log prefixes
const (
	LogSync      = Green + "[Sync]" + Reset
	LogProbe     = Cyan + "[Probe]" + Reset
	LogBlacklist = Purple + "[Blacklist]" + Reset
	LogStale     = Red + "[Stale]" + Reset
)

// Control channel log prefixes
const (
	LogControl  = Cyan + "[Control]" + Reset
	LogSettings = Cyan + "[Settings]" + Reset
)

// CircuitBreakerPrefix returns a colored circuit breaker prefix with the given name
func CircuitBreakerPrefix(name string) string {
	return Purple + "[CircuitBreaker:" + name + "]" + Reset
}
