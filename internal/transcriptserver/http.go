package transcriptserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

const serviceName = "YouTube Transcript Microservice"

// maxBodyBytes caps POST /transcript bodies.
const maxBodyBytes = 1 << 20

// Extractor is the transcript extraction capability the handlers call.
type Extractor interface {
	Extract(ctx context.Context, videoID, language string) (*engine.Transcript, error)
}

// Server maps HTTP requests onto an Extractor.
type Server struct {
	ex      Extractor
	version string
}

// NewServer returns a Server backed by ex.
func NewServer(ex Extractor, version string) *Server {
	return &Server{ex: ex, version: version}
}

// Handler returns the routed, logged handler for all REST endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /transcript/{video_id}", s.handleSimple)
	mux.HandleFunc("POST /transcript", s.handleDetailed)
	mux.HandleFunc("GET /transcript/{video_id}/timestamps", s.handleTimestamps)
	return recoverer(accessLog(mux))
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, engine.ServiceInfo{
		Service: serviceName,
		Version: s.version,
		Endpoints: map[string]string{
			"health":                 "/health",
			"simple_transcript":      "/transcript/{video_id}?lang=en",
			"detailed_transcript":    "/transcript (POST)",
			"timestamped_transcript": "/transcript/{video_id}/timestamps?lang=en",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, engine.HealthResponse{Status: "healthy"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(engine.FormatMetrics()))
}

// handleSimple serves GET /transcript/{video_id}?lang=en.
func (s *Server) handleSimple(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("video_id")
	lang := queryLang(r)

	t, err := s.ex.Extract(r.Context(), videoID, lang)
	if err != nil {
		writeJSON(w, failureStatus(err), engine.SimpleTranscriptResponse{
			Success: false,
			VideoID: videoID,
		})
		return
	}
	writeJSON(w, http.StatusOK, engine.SimpleTranscriptResponse{
		Success:       true,
		VideoID:       videoID,
		Transcript:    &t.Text,
		HasTranscript: true,
	})
}

// handleDetailed serves POST /transcript with a {video_id, language} body.
func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	var req engine.TranscriptRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, engine.ValidationError{Detail: "invalid JSON body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.VideoID) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, engine.ValidationError{Detail: "video_id: field required"})
		return
	}
	lang := req.Language
	if lang == "" {
		lang = transcript.DefaultLanguage
	}

	t, err := s.ex.Extract(r.Context(), req.VideoID, lang)
	if err != nil {
		writeJSON(w, failureStatus(err), engine.DetailedTranscriptResponse{
			Success:  false,
			VideoID:  req.VideoID,
			Language: lang,
		})
		return
	}
	writeJSON(w, http.StatusOK, detailedResponse(t))
}

// handleTimestamps serves GET /transcript/{video_id}/timestamps?lang=en.
func (s *Server) handleTimestamps(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("video_id")
	lang := queryLang(r)

	t, err := s.ex.Extract(r.Context(), videoID, lang)
	if err != nil {
		writeJSON(w, failureStatus(err), engine.TimestampedTranscriptResponse{
			Success:  false,
			VideoID:  videoID,
			Language: lang,
		})
		return
	}
	writeJSON(w, http.StatusOK, engine.TimestampedTranscriptResponse{
		Success:  true,
		VideoID:  videoID,
		Segments: transcript.Timestamped(t.Segments),
		Language: lang,
	})
}

func detailedResponse(t *engine.Transcript) engine.DetailedTranscriptResponse {
	raw := t.Segments
	if raw == nil {
		raw = []engine.Segment{}
	}
	return engine.DetailedTranscriptResponse{
		Success:    true,
		VideoID:    t.VideoID,
		Transcript: &t.Text,
		Raw:        raw,
		Language:   t.Language,
	}
}

// queryLang returns the lang query parameter, defaulting to "en".
func queryLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return lang
	}
	return transcript.DefaultLanguage
}

// failureStatus maps an extraction error to an HTTP status: 404 when the
// video simply has no transcript to give, 500 for everything else.
func failureStatus(err error) int {
	if transcript.IsNotAvailable(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.Debug("write response failed", slog.Any("error", err))
	}
}

// --- middleware ---

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		level := slog.LevelInfo
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			level = slog.LevelDebug
		}
		slog.Log(r.Context(), level, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)))
	})
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				slog.Error("handler panic", slog.String("path", r.URL.Path), slog.Any("panic", v))
				writeJSON(w, http.StatusInternalServerError, engine.ValidationError{Detail: "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
