package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Version         string
	MaxRetries      int           // total extraction attempts, >= 1
	RetryDelay      time.Duration // fixed wait between rate-limited attempts
	FetchTimeout    time.Duration
	UpstreamRPS     float64 // 0 = unlimited
	UpstreamBurst   int
	Proxy           WebshareProxyConfig
	StealthEnabled  bool
	BrowserClient   *BrowserClient // nil = watch page fetched with a plain HTTP client
	BrowserProxied  bool           // BrowserClient rotates exits through a proxy pool
	HTTPClient      *http.Client   // nil = a fresh client is built per attempt
	CacheTTL        time.Duration  // 0 = memoization disabled
	CacheMaxEntries int
	CacheCleanup    time.Duration
	RedisURL        string
}

// Defaults used when a field is left zero.
const (
	DefaultMaxRetries   = 5
	DefaultRetryDelay   = time.Second
	DefaultFetchTimeout = 15 * time.Second
)

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, transcript).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	cfg = c
	Cfg = &cfg
	initLimiter(c.UpstreamRPS, c.UpstreamBurst)
}

// SecondsToDuration converts a float seconds value (RETRY_DELAY=2.5) to a Duration.
func SecondsToDuration(sec float64) time.Duration {
	if sec <= 0 {
		return 0
	}
	return time.Duration(sec * float64(time.Second))
}
