// Package transcript extracts YouTube transcripts with a bounded retry policy
// around rate-limited upstream attempts.
package transcript

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
)

// DefaultLanguage is used when the caller passes an empty language code.
const DefaultLanguage = "en"

// Fetcher retrieves the caption segments of a video in one attempt.
type Fetcher interface {
	FetchTranscript(ctx context.Context, videoID string, langs []string) ([]engine.Segment, error)
}

// FetcherFactory builds the Fetcher for a single attempt.
type FetcherFactory func() Fetcher

// Extractor runs transcript extraction with retry on upstream rate limits.
type Extractor struct {
	newFetcher FetcherFactory
	retry      engine.RetryConfig
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithFetcherFactory replaces the YouTube client factory.
func WithFetcherFactory(f FetcherFactory) Option {
	return func(e *Extractor) { e.newFetcher = f }
}

// WithRetryConfig overrides the retry policy taken from engine.Cfg.
func WithRetryConfig(rc engine.RetryConfig) Option {
	return func(e *Extractor) { e.retry = rc }
}

// NewExtractor returns an Extractor that talks to YouTube using the engine
// configuration. Call after engine.Init.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		newFetcher: func() Fetcher { return sources.NewYouTubeClient() },
		retry:      engine.RetryConfigFromCfg(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract fetches the transcript of videoID in language ("" means "en").
//
// Every attempt uses a fresh Fetcher so a rotating proxy hands out a new exit
// IP. Rate-limit errors (see IsRetryable) are retried up to the configured
// number of attempts with a fixed delay; any other error fails immediately.
// A nil transcript is returned on failure.
func (e *Extractor) Extract(ctx context.Context, videoID, language string) (*engine.Transcript, error) {
	if language == "" {
		language = DefaultLanguage
	}
	engine.IncrTranscriptRequests()

	cacheKey := engine.CacheKey("transcript", videoID, language)
	if engine.CacheEnabled() {
		if t, ok := engine.CacheLoadJSON[engine.Transcript](ctx, cacheKey); ok {
			engine.IncrTranscriptSuccess()
			return &t, nil
		}
	}

	segments, err := engine.RetryDo(ctx, e.retry, IsRetryable, func() ([]engine.Segment, error) {
		engine.IncrExtractionAttempts()
		var segs []engine.Segment
		err := engine.TrackOperation(ctx, "youtube_fetch", func(ctx context.Context) error {
			var ferr error
			segs, ferr = e.newFetcher().FetchTranscript(ctx, videoID, []string{language})
			return ferr
		})
		return segs, err
	})
	if err != nil {
		engine.IncrTranscriptFailures()
		slog.Warn("could not fetch transcript",
			slog.String("video_id", videoID),
			slog.String("language", language),
			slog.Bool("not_available", IsNotAvailable(err)),
			slog.Any("error", err))
		return nil, err
	}

	t := Build(videoID, language, segments)
	engine.IncrTranscriptSuccess()
	engine.CacheStoreJSON(ctx, cacheKey, *t)
	return t, nil
}

// Build assembles a Transcript, joining segment texts with single spaces.
// Empty texts are kept, so they show up as doubled spaces.
func Build(videoID, language string, segments []engine.Segment) *engine.Transcript {
	if segments == nil {
		segments = []engine.Segment{}
	}
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return &engine.Transcript{
		VideoID:  videoID,
		Language: language,
		Segments: segments,
		Text:     strings.Join(texts, " "),
	}
}

// IsRetryable reports whether an extraction attempt failed on an upstream
// rate limit: the message mentions 429 or "too many" in any case.
func IsRetryable(err error) bool {
	return engine.IsRateLimited(err)
}

// IsNotAvailable reports whether err means the video has no transcript to give:
// captions disabled, language missing, video gone, or a malformed id.
func IsNotAvailable(err error) bool {
	return errors.Is(err, sources.ErrTranscriptsDisabled) ||
		errors.Is(err, sources.ErrNoTranscriptFound) ||
		errors.Is(err, sources.ErrVideoUnavailable) ||
		errors.Is(err, sources.ErrInvalidVideoID)
}
