package engine

// --- Core transcript types ---

// Segment is one timed caption unit. Start and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript is the ordered caption sequence for a video/language pair.
// Text is every segment's text joined by a single space.
type Transcript struct {
	VideoID  string    `json:"videoId"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
	Text     string    `json:"text"`
}

// TimestampedSegment is a Segment with its end time and HH:MM:SS.mmm labels.
type TimestampedSegment struct {
	Text           string  `json:"text"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	StartFormatted string  `json:"startFormatted"`
	EndFormatted   string  `json:"endFormatted"`
}

// --- Request / response shapes ---

// TranscriptRequest is the POST /transcript body and the MCP tool input.
type TranscriptRequest struct {
	VideoID  string `json:"video_id" jsonschema:"YouTube video ID (11 characters, not the URL)"`
	Language string `json:"language,omitempty" jsonschema:"Language code (default: en)"`
}

// SimpleTranscriptResponse is returned by GET /transcript/{video_id}.
type SimpleTranscriptResponse struct {
	Success       bool    `json:"success"`
	VideoID       string  `json:"videoId"`
	Transcript    *string `json:"transcript"`
	HasTranscript bool    `json:"hasTranscript"`
}

// DetailedTranscriptResponse is returned by POST /transcript.
type DetailedTranscriptResponse struct {
	Success    bool      `json:"success"`
	VideoID    string    `json:"videoId"`
	Transcript *string   `json:"transcript"`
	Raw        []Segment `json:"raw"`
	Language   string    `json:"language"`
}

// TimestampedTranscriptResponse is returned by GET /transcript/{video_id}/timestamps.
type TimestampedTranscriptResponse struct {
	Success  bool                 `json:"success"`
	VideoID  string               `json:"videoId"`
	Segments []TimestampedSegment `json:"segments"`
	Language string               `json:"language"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ServiceInfo is returned by GET /.
type ServiceInfo struct {
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// ValidationError is returned with 422 for malformed request bodies.
type ValidationError struct {
	Detail string `json:"detail"`
}
