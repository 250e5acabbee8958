package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests  atomic.Int64
	TranscriptSuccess   atomic.Int64
	TranscriptFailures  atomic.Int64
	ExtractionAttempts  atomic.Int64
	UpstreamRequests    atomic.Int64
	UpstreamRateLimited atomic.Int64
	Retries             atomic.Int64
	PlayerFallbacks     atomic.Int64
}

// metricKeys fixes the output order of FormatMetrics.
var metricKeys = []string{
	"transcript_requests", "transcript_success", "transcript_failures",
	"extraction_attempts", "upstream_requests", "upstream_rate_limited", "retries",
	"player_fallbacks",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"transcript_requests":   metrics.TranscriptRequests.Load(),
		"transcript_success":    metrics.TranscriptSuccess.Load(),
		"transcript_failures":   metrics.TranscriptFailures.Load(),
		"extraction_attempts":   metrics.ExtractionAttempts.Load(),
		"upstream_requests":     metrics.UpstreamRequests.Load(),
		"upstream_rate_limited": metrics.UpstreamRateLimited.Load(),
		"retries":               metrics.Retries.Load(),
		"player_fallbacks":      metrics.PlayerFallbacks.Load(),
		"cache_hits":            hits,
		"cache_misses":          misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the transcript and sources packages.
func IncrTranscriptRequests()  { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptSuccess()   { metrics.TranscriptSuccess.Add(1) }
func IncrTranscriptFailures()  { metrics.TranscriptFailures.Add(1) }
func IncrExtractionAttempts()  { metrics.ExtractionAttempts.Add(1) }
func IncrUpstreamRequests()    { metrics.UpstreamRequests.Add(1) }
func IncrUpstreamRateLimited() { metrics.UpstreamRateLimited.Add(1) }
func IncrRetries()             { metrics.Retries.Add(1) }
func IncrPlayerFallbacks()     { metrics.PlayerFallbacks.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
