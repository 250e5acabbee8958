package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// YouTube Innertube API: low-level types and the ANDROID /player call.

const (
	ytBaseURL        = "https://www.youtube.com"
	ytWatchPath      = "/watch?v="
	ytPlayerPath     = "/youtubei/v1/player"
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"

	ytBotCheckReason = "Sign in to confirm you’re not a bot"
)

// --- ANDROID client types (/player endpoint) ---

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type innertubePlayerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer *struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// captionTracks returns the tracks listed in a player response, or nil.
func (r *innertubePlayerResp) captionTracks() []captionTrack {
	if r.Captions == nil || r.Captions.PlayerCaptionsTracklistRenderer == nil {
		return nil
	}
	return r.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
}

// checkPlayability maps a non-OK playabilityStatus to a failure class.
func checkPlayability(r *innertubePlayerResp) error {
	if r.PlayabilityStatus == nil {
		return nil
	}
	status, reason := r.PlayabilityStatus.Status, r.PlayabilityStatus.Reason
	switch status {
	case "", "OK":
		return nil
	case "LOGIN_REQUIRED":
		if reason == ytBotCheckReason {
			return fmt.Errorf("%w: %s", ErrRequestBlocked, reason)
		}
	}
	return &unplayableError{status: status, reason: reason}
}

// fetchPlayer calls the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/proxy) IP addresses.
func (c *YouTubeClient) fetchPlayer(ctx context.Context, videoID, apiKey string) (*innertubePlayerResp, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	endpoint := c.base + ytPlayerPath + "?prettyPrint=false"
	if apiKey != "" {
		endpoint += "&key=" + apiKey
	}
	body, err := c.do(ctx, http.MethodPost, endpoint, map[string]string{
		"Content-Type":             "application/json",
		"User-Agent":               ytAndroidUA,
		"X-Youtube-Client-Name":    "3",
		"X-Youtube-Client-Version": ytAndroidVersion,
	}, bytes.NewReader(reqBody), 3*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(body, &playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w (body: %s)", err, engine.TruncateRunes(string(body), 200, "..."))
	}
	return &playerResp, nil
}

// looksLikeURL reports whether the caller passed a URL where a video id was expected.
func looksLikeURL(videoID string) bool {
	return strings.HasPrefix(videoID, "http://") ||
		strings.HasPrefix(videoID, "https://") ||
		strings.Contains(videoID, "youtube.com/") ||
		strings.Contains(videoID, "youtu.be/")
}
