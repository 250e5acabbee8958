package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

const ytConsentAction = `action="https://consent.youtube.com/s"`

var (
	innertubeAPIKeyRE = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)
	consentValueRE    = regexp.MustCompile(`name="v" value="(.*?)"`)
	videoIDRE         = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
)

// watchPage is what the transcript pipeline needs from the HTML watch page.
type watchPage struct {
	apiKey string
	player *innertubePlayerResp // nil when the page carried no player response
}

// extractVideoID pulls the 11-char video ID from any YouTube URL format.
func extractVideoID(rawURL string) string {
	m := videoIDRE.FindStringSubmatch(rawURL)
	if len(m) >= 2 {
		return m[1]
	}
	return ""
}

// fetchWatchPage loads https://www.youtube.com/watch?v=ID, accepting the EU
// consent interstitial once if YouTube shows it.
func (c *YouTubeClient) fetchWatchPage(ctx context.Context, videoID string) (*watchPage, error) {
	body, err := c.getWatchHTML(ctx, videoID, "")
	if err != nil {
		return nil, err
	}
	if bytes.Contains(body, []byte(ytConsentAction)) {
		m := consentValueRE.FindSubmatch(body)
		if m == nil {
			return nil, fmt.Errorf("%w: consent page without consent value", ErrRequestBlocked)
		}
		body, err = c.getWatchHTML(ctx, videoID, "CONSENT=YES+"+string(m[1]))
		if err != nil {
			return nil, err
		}
		if bytes.Contains(body, []byte(ytConsentAction)) {
			return nil, fmt.Errorf("%w: consent cookie rejected", ErrRequestBlocked)
		}
	}
	return parseWatchPage(body)
}

func (c *YouTubeClient) getWatchHTML(ctx context.Context, videoID, cookie string) ([]byte, error) {
	headers := engine.ChromeHeaders()
	headers["accept-language"] = "en-US,en;q=0.9"
	if cookie != "" {
		headers["cookie"] = cookie
	}
	body, err := c.doPage(ctx, c.base+ytWatchPath+url.QueryEscape(videoID), headers)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	return body, nil
}

// parseWatchPage finds the INNERTUBE_API_KEY and ytInitialPlayerResponse in watch page HTML.
func parseWatchPage(body []byte) (*watchPage, error) {
	page := &watchPage{}
	if m := innertubeAPIKeyRE.FindSubmatch(body); m != nil {
		page.apiKey = string(m[1])
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}

	if page.apiKey == "" && doc.Find(".g-recaptcha").Length() > 0 {
		return nil, fmt.Errorf("%w: recaptcha challenge", ErrRequestBlocked)
	}

	var scriptErr error
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, ytInitialPlayerResponseMarker)
		if idx < 0 {
			return true
		}
		jsonData := extractJSON([]byte(text[idx+len(ytInitialPlayerResponseMarker):]))
		if jsonData == nil {
			scriptErr = errors.New("failed to extract ytInitialPlayerResponse JSON")
			return false
		}
		var player innertubePlayerResp
		if err := json.Unmarshal(jsonData, &player); err != nil {
			scriptErr = fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
			return false
		}
		page.player = &player
		return false
	})
	if scriptErr != nil {
		return nil, scriptErr
	}
	if page.player == nil && page.apiKey == "" {
		return nil, errors.New("watch page has neither ytInitialPlayerResponse nor INNERTUBE_API_KEY")
	}
	return page, nil
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// doPage fetches an HTML page, through the stealth Chrome client when configured.
func (c *YouTubeClient) doPage(ctx context.Context, pageURL string, headers map[string]string) ([]byte, error) {
	if c.browser == nil {
		return c.do(ctx, http.MethodGet, pageURL, headers, nil, 6*1024*1024)
	}
	if err := engine.WaitUpstream(ctx); err != nil {
		return nil, err
	}
	engine.IncrUpstreamRequests()
	data, _, status, err := c.browser.Do(http.MethodGet, pageURL, headers, nil)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status, pageURL); err != nil {
		return nil, err
	}
	return data, nil
}
