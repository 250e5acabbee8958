package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// --- Timedtext XML types ---

// ytTimedText covers both the classic format (<transcript><text start dur>)
// and srv3 (<timedtext><body><p t d>, milliseconds).
type ytTimedText struct {
	Lines []ytLine `xml:"text"`
	Paras []ytPara `xml:"body>p"`
}

type ytLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

type ytPara struct {
	T     string `xml:"t,attr"`
	D     string `xml:"d,attr"`
	Inner string `xml:",innerxml"`
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// usableTracks drops tracks that only work in a browser.
func usableTracks(tracks []captionTrack) []captionTrack {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if t.BaseURL != "" && !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	return usable
}

// pickTrack selects the caption track for the first requested language that
// has one, preferring a manually created track over an auto-generated one.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, error) {
	for _, lang := range langs {
		var generated *captionTrack
		for i, t := range tracks {
			if t.LanguageCode != lang {
				continue
			}
			if t.Kind != "asr" {
				return t, nil
			}
			if generated == nil {
				generated = &tracks[i]
			}
		}
		if generated != nil {
			return *generated, nil
		}
	}
	available := make([]string, 0, len(tracks))
	for _, t := range tracks {
		code := t.LanguageCode
		if t.Kind == "asr" {
			code += " (auto)"
		}
		available = append(available, code)
	}
	return captionTrack{}, &noTranscriptError{requested: langs, available: available}
}

// fetchTimedText downloads a caption track and parses it into segments.
func (c *YouTubeClient) fetchTimedText(ctx context.Context, baseURL string) ([]engine.Segment, error) {
	trackURL := strings.Replace(baseURL, "&fmt=srv3", "", 1)
	body, err := c.do(ctx, http.MethodGet, trackURL, map[string]string{
		"User-Agent":      engine.RandomUserAgent(),
		"Accept-Language": "en-US,en;q=0.9",
	}, nil, 4*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	return parseTimedText(body)
}

// parseTimedText converts timedtext XML into ordered segments.
func parseTimedText(body []byte) ([]engine.Segment, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: empty caption track", ErrTranscriptsDisabled)
	}
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]engine.Segment, 0, len(tt.Lines)+len(tt.Paras))
	for _, line := range tt.Lines {
		if line.Text == "" {
			continue
		}
		segments = append(segments, engine.Segment{
			Text:     engine.CleanCaptionText(line.Text),
			Start:    parseSeconds(line.Start),
			Duration: parseSeconds(line.Dur),
		})
	}
	for _, p := range tt.Paras {
		text := engine.CleanCaptionMarkup(p.Inner)
		if text == "" {
			continue
		}
		segments = append(segments, engine.Segment{
			Text:     text,
			Start:    parseSeconds(p.T) / 1000,
			Duration: parseSeconds(p.D) / 1000,
		})
	}
	return segments, nil
}

func parseSeconds(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
