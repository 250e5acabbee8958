package engine

import (
	"io"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// CleanCaptionText strips markup (<font>, <i>, <b>) from a caption line and
// decodes HTML entities such as &#39; and &amp;.
func CleanCaptionText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.TrimSpace(sb.String())
			}
			return strings.TrimSpace(html.UnescapeString(s))
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}

// CleanCaptionMarkup cleans raw inner XML of an srv3 paragraph. Tags are
// stripped first and entities decoded after, so an escaped "&lt;" stays text.
func CleanCaptionMarkup(inner string) string {
	return strings.TrimSpace(html.UnescapeString(CleanCaptionText(inner)))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
