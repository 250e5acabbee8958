package transcriptserver

import (
	"context"
	"errors"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers the youtube_transcript tool on the given MCP server.
func RegisterTools(server *mcp.Server, ex Extractor) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Fetch the transcript of a YouTube video. Returns the full text plus timed segments (text, start, duration in seconds). Pass the 11-character video ID, not the URL. Language defaults to en.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptRequest) (*mcp.CallToolResult, engine.DetailedTranscriptResponse, error) {
		return callTranscriptTool(ctx, ex, input)
	})
}

// callTranscriptTool reports a missing transcript as success=false and
// upstream failures as a tool error.
func callTranscriptTool(ctx context.Context, ex Extractor, input engine.TranscriptRequest) (*mcp.CallToolResult, engine.DetailedTranscriptResponse, error) {
	if strings.TrimSpace(input.VideoID) == "" {
		return nil, engine.DetailedTranscriptResponse{}, errors.New("video_id is required")
	}
	lang := input.Language
	if lang == "" {
		lang = transcript.DefaultLanguage
	}

	t, err := ex.Extract(ctx, input.VideoID, lang)
	if err != nil {
		if transcript.IsNotAvailable(err) {
			return nil, engine.DetailedTranscriptResponse{
				Success:  false,
				VideoID:  input.VideoID,
				Language: lang,
			}, nil
		}
		return nil, engine.DetailedTranscriptResponse{}, err
	}
	return nil, detailedResponse(t), nil
}
