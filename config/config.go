package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Configuration struct {
		Port                string `envconfig:"PORT" default:"8080"`
		RateLimitPerSecond  int    `envconfig:"RATE_LIMIT_PER_SECOND" default:"5"`
		RateLimitBurstLimit int    `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"10"`
		APIKey              string `envconfig:"API_KEY" default:""`

		// Provider configuration
		ProviderOrder       string `envconfig:"PROVIDER_ORDER" default:"netease,qqmusic,kugou"`
		NetEaseCookie       string `envconfig:"NETEASE_COOKIE" default:""`
		ProviderRatePerSec  int    `envconfig:"PROVIDER_RATE_PER_SECOND" default:"4"`
		ProviderRateBurst   int    `envconfig:"PROVIDER_RATE_BURST" default:"8"`
		DurationToleranceMs int    `envconfig:"DURATION_TOLERANCE_MS" default:"5000"` // candidate duration window around target
		MinAcceptedLines    int    `envconfig:"MIN_ACCEPTED_LINES" default:"2"`       // merged results with <= this many lines are rejected

		// Sync controller timing
		DebounceMs     int `envconfig:"SONG_CHANGE_DEBOUNCE_MS" default:"100"`
		ProbeTimeoutMs int `envconfig:"LENGTH_PROBE_TIMEOUT_MS" default:"1000"`

		// Circuit breaker
		CircuitBreakerThreshold    int `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`
		CircuitBreakerCooldownSecs int `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"`

		// Storage
		CacheDBPath string `envconfig:"CACHE_DB_PATH" default:"./data/lyrics.db"`

		// External collaborators
		ClientBaseURL   string `envconfig:"CLIENT_BASE_URL" default:"http://127.0.0.1:24050"`
		SettingsBaseURL string `envconfig:"SETTINGS_BASE_URL" default:"http://127.0.0.1:24051"`
	}

	FeatureFlags struct {
		CacheCompression bool `envconfig:"FF_CACHE_COMPRESSION" default:"true"`
	}
}

// Providers returns the configured provider order as a slice.
func (c Config) Providers() []string {
	parts := strings.Split(c.Configuration.ProviderOrder, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			names = append(names, p)
		}
	}
	return names
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading env config: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}
