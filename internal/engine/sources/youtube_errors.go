package sources

import (
	"errors"
	"fmt"
	"strings"
)

// Upstream failure classes. Callers match them with errors.Is.
var (
	ErrTranscriptsDisabled = errors.New("subtitles are disabled for this video")
	ErrNoTranscriptFound   = errors.New("no transcript found for the requested languages")
	ErrVideoUnavailable    = errors.New("the video is no longer available")
	ErrInvalidVideoID      = errors.New("invalid video id")
	ErrRequestBlocked      = errors.New("youtube is blocking requests from this IP")
)

// noTranscriptError carries the language codes that were requested and those available.
type noTranscriptError struct {
	requested []string
	available []string
}

func (e *noTranscriptError) Error() string {
	return fmt.Sprintf("%s: requested [%s], available [%s]",
		ErrNoTranscriptFound, strings.Join(e.requested, ", "), strings.Join(e.available, ", "))
}

func (e *noTranscriptError) Unwrap() error { return ErrNoTranscriptFound }

// unplayableError wraps a playabilityStatus reason YouTube gave for refusing playback.
type unplayableError struct {
	status string
	reason string
}

func (e *unplayableError) Error() string {
	if e.reason == "" {
		return fmt.Sprintf("%s (status %s)", ErrVideoUnavailable, e.status)
	}
	return fmt.Sprintf("%s (status %s): %s", ErrVideoUnavailable, e.status, e.reason)
}

func (e *unplayableError) Unwrap() error { return ErrVideoUnavailable }
