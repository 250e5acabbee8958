package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// YouTube transcript fetching.
// Primary:  watch page ytInitialPlayerResponse → captionTracks → timedtext XML
// Fallback: ANDROID Innertube /player → captionTracks (when the page lists none usable)

// YouTubeClient fetches caption tracks for one extraction attempt.
// Build a new one per attempt so each attempt gets a fresh connection.
type YouTubeClient struct {
	base    string
	http    *http.Client
	browser *engine.BrowserClient // optional Chrome-fingerprint client for the watch page
}

// NewYouTubeClient builds a client from the engine configuration.
func NewYouTubeClient() *YouTubeClient {
	return &YouTubeClient{
		base:    ytBaseURL,
		http:    engine.NewUpstreamClient(),
		browser: engine.PageBrowser(),
	}
}

// NewYouTubeClientWith builds a client against baseURL (scheme://host) with
// explicit transports. browser may be nil.
func NewYouTubeClientWith(baseURL string, hc *http.Client, browser *engine.BrowserClient) *YouTubeClient {
	return &YouTubeClient{base: strings.TrimRight(baseURL, "/"), http: hc, browser: browser}
}

// FetchTranscript returns the ordered caption segments of videoID in the first
// of langs that has a transcript.
func (c *YouTubeClient) FetchTranscript(ctx context.Context, videoID string, langs []string) ([]engine.Segment, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidVideoID)
	}
	if looksLikeURL(videoID) {
		if id := extractVideoID(videoID); id != "" {
			return nil, fmt.Errorf("%w: pass the video id (%s), not the URL", ErrInvalidVideoID, id)
		}
		return nil, fmt.Errorf("%w: pass the video id, not the URL", ErrInvalidVideoID)
	}

	page, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	player := page.player
	var tracks []captionTrack
	if player != nil {
		if err := checkPlayability(player); err != nil && !errors.Is(err, ErrRequestBlocked) {
			return nil, err
		}
		tracks = usableTracks(player.captionTracks())
	}

	if len(tracks) == 0 {
		engine.IncrPlayerFallbacks()
		slog.Debug("youtube: no usable tracks in watch page, trying player", slog.String("id", videoID))
		player, err = c.fetchPlayer(ctx, videoID, page.apiKey)
		if err != nil {
			return nil, err
		}
		if err := checkPlayability(player); err != nil {
			return nil, err
		}
		tracks = usableTracks(player.captionTracks())
	}

	if len(tracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}

	track, err := pickTrack(tracks, langs)
	if err != nil {
		return nil, err
	}
	return c.fetchTimedText(ctx, track.BaseURL)
}

// do sends one upstream request and returns the body, mapping non-200
// statuses to *engine.StatusError.
func (c *YouTubeClient) do(ctx context.Context, method, reqURL string, headers map[string]string, body io.Reader, limit int64) ([]byte, error) {
	if err := engine.WaitUpstream(ctx); err != nil {
		return nil, err
	}
	engine.IncrUpstreamRequests()

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		// net/http negotiates and decodes gzip itself.
		if strings.EqualFold(k, "accept-encoding") {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, reqURL); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

func checkStatus(status int, reqURL string) error {
	if status == http.StatusOK {
		return nil
	}
	if status == http.StatusTooManyRequests {
		engine.IncrUpstreamRateLimited()
	}
	return &engine.StatusError{StatusCode: status, URL: reqURL}
}
