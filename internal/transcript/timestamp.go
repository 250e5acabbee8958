package transcript

import (
	"fmt"
	"math"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// FormatTimestamp renders seconds as HH:MM:SS.mmm, e.g. 3665.123 → "01:01:05.123".
// Hours are not wrapped, so long inputs give more than two hour digits.
func FormatTimestamp(seconds float64) string {
	hours := int(math.Floor(seconds / 3600))
	minutes := int(math.Floor(floorMod(seconds, 3600) / 60))
	secs := floorMod(seconds, 60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// floorMod is a modulo whose result takes the sign of m.
func floorMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r != 0 && (r < 0) != (m < 0) {
		r += m
	}
	return r
}

// Timestamped converts segments to their start/end form with formatted labels.
func Timestamped(segments []engine.Segment) []engine.TimestampedSegment {
	out := make([]engine.TimestampedSegment, len(segments))
	for i, s := range segments {
		end := s.Start + s.Duration
		out[i] = engine.TimestampedSegment{
			Text:           s.Text,
			Start:          s.Start,
			End:            end,
			StartFormatted: FormatTimestamp(s.Start),
			EndFormatted:   FormatTimestamp(end),
		}
	}
	return out
}
