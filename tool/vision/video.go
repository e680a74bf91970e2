package vision

import (
	"context"
	"fmt"

	"github.com/hupe1980/trademesh/tool"
)

// VideoResult is the typed envelope shared by the video tools.
type VideoResult struct {
	Prompt          string         `json:"prompt"`
	VideoPath       string         `json:"video_path"`
	Answer          string         `json:"answer,omitempty"`
	ProcessedVideos []string       `json:"processed_videos"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	tool.Envelope
}

// answerVideo runs one video generation call and wraps it in a VideoResult.
func answerVideo(ctx context.Context, client *Client, videoPath, prompt string) *VideoResult {
	result := &VideoResult{Prompt: prompt, VideoPath: videoPath, ProcessedVideos: []string{}}

	parts, err := client.videoParts(videoPath, prompt)
	if err != nil {
		result.Fail(err)
		return result
	}

	answer, err := client.generate(ctx, client.opts.VideoModel, parts)
	if err != nil {
		result.Fail(err)
		return result
	}

	result.Answer = answer
	result.ProcessedVideos = []string{videoPath}
	result.Succeed()

	return result
}

func videoPathParam() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Path to local video file (<20MB) or YouTube URL",
	}
}

// SummarizeVideoTool produces a plain summary or a summary plus quiz for
// one video.
type SummarizeVideoTool struct {
	client *Client
}

// NewSummarizeVideoTool creates the video summarization tool.
func NewSummarizeVideoTool(client *Client) *SummarizeVideoTool {
	return &SummarizeVideoTool{client: client}
}

// Name implements tool.Tool.
func (t *SummarizeVideoTool) Name() string { return "summarize_video" }

// Description implements tool.Tool.
func (t *SummarizeVideoTool) Description() string {
	return "Summarize a video. Supports local files (<20MB) or YouTube URLs. Returns a summary and optionally a quiz with answer key."
}

// Parameters implements tool.Tool.
func (t *SummarizeVideoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"video_path": videoPathParam(),
			"summary_type": map[string]any{
				"type":        "string",
				"enum":        []string{"summary", "quiz"},
				"description": "Type of summary: 'summary' for plain summary, 'quiz' for summary and quiz with answer key",
				"default":     "summary",
			},
		},
		"required": []string{"video_path"},
	}
}

// Call summarizes one video.
func (t *SummarizeVideoTool) Call(ctx context.Context, args map[string]any) (any, error) {
	videoPath, _ := args["video_path"].(string)
	if videoPath == "" {
		return nil, tool.NewToolError(t.Name(), "video_path parameter is required", tool.CodeValidation)
	}

	prompt := "Summarize this video."
	if summaryType, _ := args["summary_type"].(string); summaryType == "quiz" {
		prompt += " Then create a quiz with an answer key based on the information in this video."
	}

	return answerVideo(ctx, t.client, videoPath, prompt), nil
}

// VideoQATool answers a question about a video, optionally scoped to a
// timestamp.
type VideoQATool struct {
	client *Client
}

// NewVideoQATool creates the video question answering tool.
func NewVideoQATool(client *Client) *VideoQATool {
	return &VideoQATool{client: client}
}

// Name implements tool.Tool.
func (t *VideoQATool) Name() string { return "video_qa" }

// Description implements tool.Tool.
func (t *VideoQATool) Description() string {
	return "Ask a question about a specific timestamp or segment in a video."
}

// Parameters implements tool.Tool.
func (t *VideoQATool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"video_path": videoPathParam(),
			"question": map[string]any{
				"type":        "string",
				"description": "Question about the video at the given timestamp",
			},
			"timestamp": map[string]any{
				"type":        "string",
				"description": "Timestamp in MM:SS format, e.g. '01:15'. If omitted, the question is about the whole video",
			},
		},
		"required": []string{"video_path", "question"},
	}
}

// Call answers one question about the video.
func (t *VideoQATool) Call(ctx context.Context, args map[string]any) (any, error) {
	videoPath, _ := args["video_path"].(string)
	if videoPath == "" {
		return nil, tool.NewToolError(t.Name(), "video_path parameter is required", tool.CodeValidation)
	}

	question, _ := args["question"].(string)
	if question == "" {
		return nil, tool.NewToolError(t.Name(), "question parameter is required", tool.CodeValidation)
	}

	prompt := question
	if timestamp, _ := args["timestamp"].(string); timestamp != "" {
		prompt = fmt.Sprintf("At %s, %s", timestamp, question)
	}

	return answerVideo(ctx, t.client, videoPath, prompt), nil
}

// TranscribeVideoTool transcribes a video's audio with timestamps and
// visual descriptions.
type TranscribeVideoTool struct {
	client *Client
}

// NewTranscribeVideoTool creates the video transcription tool.
func NewTranscribeVideoTool(client *Client) *TranscribeVideoTool {
	return &TranscribeVideoTool{client: client}
}

// Name implements tool.Tool.
func (t *TranscribeVideoTool) Name() string { return "transcribe_and_describe_video" }

// Description implements tool.Tool.
func (t *TranscribeVideoTool) Description() string {
	return "Transcribe the audio from a video and provide visual descriptions."
}

// Parameters implements tool.Tool.
func (t *TranscribeVideoTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"video_path": videoPathParam(),
		},
		"required": []string{"video_path"},
	}
}

// Call transcribes one video.
func (t *TranscribeVideoTool) Call(ctx context.Context, args map[string]any) (any, error) {
	videoPath, _ := args["video_path"].(string)
	if videoPath == "" {
		return nil, tool.NewToolError(t.Name(), "video_path parameter is required", tool.CodeValidation)
	}

	prompt := "Transcribe the audio from this video, giving timestamps for salient events in the video. Also provide visual descriptions."

	return answerVideo(ctx, t.client, videoPath, prompt), nil
}
