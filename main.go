// go_transcript is a YouTube transcript microservice.
//
// Serves transcripts as simplified JSON for workflow-automation consumers:
// GET /transcript/{video_id}, POST /transcript, GET /transcript/{video_id}/timestamps.
// Optionally exposes the same extraction as an MCP tool on MCP_PORT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "1.0.0"
	port    = env.Str("PORT", "8000")
	mcpPort = env.Str("MCP_PORT", "")
)

func main() {
	initLogger(env.Str("LOG_LEVEL", "info"))
	initEngine()
	defer engine.CloseCache()

	ex := transcript.NewExtractor()

	if mcpPort != "" {
		go runMCP(ex)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           transcriptserver.NewServer(ex, version).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("starting go_transcript",
			slog.String("port", port),
			slog.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", slog.Any("error", err))
	}
}

// initLogger installs a JSON slog handler at the LOG_LEVEL level.
func initLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

func initEngine() {
	c := engine.Config{
		Version:       version,
		MaxRetries:    env.Int("MAX_RETRIES", engine.DefaultMaxRetries),
		RetryDelay:    engine.SecondsToDuration(env.Float("RETRY_DELAY", engine.DefaultRetryDelay.Seconds())),
		FetchTimeout:  env.Duration("FETCH_TIMEOUT", engine.DefaultFetchTimeout),
		UpstreamRPS:   env.Float("UPSTREAM_RPS", 0),
		UpstreamBurst: env.Int("UPSTREAM_BURST", 1),
		Proxy: engine.WebshareProxyConfig{
			Username:  env.Str("WEBSHARE_PROXY_USERNAME", ""),
			Password:  env.Str("WEBSHARE_PROXY_PASSWORD", ""),
			Locations: engine.ParseLocations(env.Str("PROXY_LOCATIONS", "")),
		},
		CacheTTL:        env.Duration("CACHE_TTL", 0),
		CacheMaxEntries: env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanup:    env.Duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
		RedisURL:        env.Str("REDIS_URL", ""),
	}
	c.StealthEnabled, _ = strconv.ParseBool(env.Str("STEALTH_CLIENT", "false"))
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = engine.DefaultFetchTimeout
	}

	if c.Proxy.Enabled() {
		slog.Info("using webshare rotating residential proxies")
		if len(c.Proxy.Locations) > 0 {
			slog.Info("filtering proxy IPs to locations", slog.Any("locations", c.Proxy.Locations))
		}
	} else {
		slog.Info("using direct connection (no proxy)")
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(int(c.FetchTimeout.Seconds())))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			c.StealthEnabled = true
			c.BrowserProxied = true
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	if c.StealthEnabled {
		bc, err := stealth.NewClient(opts...)
		if err != nil {
			slog.Error("stealth client init failed", slog.Any("error", err))
		} else {
			c.BrowserClient = bc
			slog.Info("stealth browser client initialized")
			if c.Proxy.Enabled() && !c.BrowserProxied {
				slog.Warn("stealth client has no proxy pool, watch page will use the webshare proxy client instead")
			}
		}
	}

	engine.Init(c)
	slog.Info("retry policy",
		slog.Int("max_retries", engine.Cfg.MaxRetries),
		slog.Duration("retry_delay", engine.Cfg.RetryDelay))

	engine.InitCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanup)
}

// runMCP serves the youtube_transcript tool over MCP until the process exits.
func runMCP(ex *transcript.Extractor) {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)
	transcriptserver.RegisterTools(server, ex)
	slog.Info("mcp tools registered", slog.String("port", mcpPort))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 5 * time.Minute,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("mcp server failed", slog.Any("error", err))
	}
}
