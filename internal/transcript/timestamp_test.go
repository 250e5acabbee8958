package transcript

import (
	"testing"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00.000"},
		{1.5, "00:00:01.500"},
		{59.999, "00:00:59.999"},
		{60, "00:01:00.000"},
		{61.25, "00:01:01.250"},
		{125.75, "00:02:05.750"},
		{0.1 + 0.2, "00:00:00.300"},
		{3600, "01:00:00.000"},
		{3665.123, "01:01:05.123"},
		{36000, "10:00:00.000"},
		{360000, "100:00:00.000"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimestamped(t *testing.T) {
	got := Timestamped([]engine.Segment{
		{Text: "Hello", Start: 0, Duration: 1.5},
		{Text: "world", Start: 61, Duration: 2.25},
	})
	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2", len(got))
	}
	want := []engine.TimestampedSegment{
		{Text: "Hello", Start: 0, End: 1.5, StartFormatted: "00:00:00.000", EndFormatted: "00:00:01.500"},
		{Text: "world", Start: 61, End: 63.25, StartFormatted: "00:01:01.000", EndFormatted: "00:01:03.250"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if out := Timestamped(nil); out == nil || len(out) != 0 {
		t.Errorf("Timestamped(nil) = %#v, want empty slice", out)
	}
}
