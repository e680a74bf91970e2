package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/trademesh/tool"
)

func writeTempPNG(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chart.png")
	err := os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o644)
	assert.NoError(t, err)

	return path
}

func TestImageMIME(t *testing.T) {
	assert.Equal(t, "image/png", imageMIME("chart.png"))
	assert.Equal(t, "image/jpeg", imageMIME("photo.jpg"))
	assert.Equal(t, "image/jpeg", imageMIME("no-extension"))
	assert.Equal(t, "image/jpeg", imageMIME("weird.pdf"))
}

func TestStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, stringSlice([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, stringSlice([]any{"a", "b", 7}))
	assert.Nil(t, stringSlice("not a slice"))
	assert.Nil(t, stringSlice(nil))
}

func TestCollectImageParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote-bytes"))
	}))
	defer srv.Close()

	client := NewClientFromGenAI(nil)

	parts, err := client.collectImageParts(context.Background(),
		[]string{writeTempPNG(t)},
		[]string{srv.URL + "/shot.png"},
	)
	assert.NoError(t, err)
	assert.Len(t, parts, 2)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, parts[0].InlineData.Data)
	assert.Equal(t, "image/png", parts[1].InlineData.MIMEType)
	assert.Equal(t, []byte("remote-bytes"), parts[1].InlineData.Data)
}

func TestCollectImageParts_MissingFile(t *testing.T) {
	client := NewClientFromGenAI(nil)

	_, err := client.collectImageParts(context.Background(), []string{"/nonexistent/chart.png"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read image")
}

func TestVideoParts(t *testing.T) {
	client := NewClientFromGenAI(nil)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	assert.NoError(t, os.WriteFile(path, []byte("vid"), 0o644))

	parts, err := client.videoParts(path, "Summarize this video.")
	assert.NoError(t, err)
	assert.Len(t, parts, 2)
	assert.Equal(t, "video/mp4", parts[0].InlineData.MIMEType)
	assert.NotNil(t, parts[0].VideoMetadata)
	assert.Equal(t, "Summarize this video.", parts[1].Text)

	parts, err = client.videoParts("https://youtube.com/watch?v=abc", "q")
	assert.NoError(t, err)
	assert.Nil(t, parts[0].InlineData)
	assert.Equal(t, "https://youtube.com/watch?v=abc", parts[0].FileData.FileURI)
}

func TestImageTool_CollectionFailureShortCircuits(t *testing.T) {
	imageTool := NewImageTool(NewClientFromGenAI(nil))

	res, err := imageTool.Call(context.Background(), map[string]any{
		"question":    "What does the chart show?",
		"image_paths": []any{"/nonexistent/chart.png"},
	})
	assert.NoError(t, err)

	result := res.(*ImageResult)
	assert.False(t, result.ExecutionSuccessful)
	assert.Contains(t, result.Errors[0], "read image")
	assert.Empty(t, result.Answer)
}

func TestImageTool_MissingQuestion(t *testing.T) {
	imageTool := NewImageTool(NewClientFromGenAI(nil))

	_, err := imageTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)

	toolErr, ok := err.(*tool.ToolError)
	assert.True(t, ok)
	assert.Equal(t, tool.CodeValidation, toolErr.Code)
}

func TestSummarizeVideoTool_QuizPrompt(t *testing.T) {
	videoTool := NewSummarizeVideoTool(NewClientFromGenAI(nil))

	res, err := videoTool.Call(context.Background(), map[string]any{
		"video_path":   "/nonexistent/clip.mp4",
		"summary_type": "quiz",
	})
	assert.NoError(t, err)

	result := res.(*VideoResult)
	assert.Contains(t, result.Prompt, "Summarize this video.")
	assert.Contains(t, result.Prompt, "quiz with an answer key")
	assert.False(t, result.ExecutionSuccessful)
}

func TestVideoQATool_TimestampPrompt(t *testing.T) {
	videoTool := NewVideoQATool(NewClientFromGenAI(nil))

	res, err := videoTool.Call(context.Background(), map[string]any{
		"video_path": "/nonexistent/clip.mp4",
		"question":   "what happens?",
		"timestamp":  "01:15",
	})
	assert.NoError(t, err)

	result := res.(*VideoResult)
	assert.Equal(t, "At 01:15, what happens?", result.Prompt)

	_, err = videoTool.Call(context.Background(), map[string]any{"video_path": "x"})
	assert.Error(t, err)
}

func TestTranscribeVideoTool_Validation(t *testing.T) {
	videoTool := NewTranscribeVideoTool(NewClientFromGenAI(nil))

	_, err := videoTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)

	toolErr, ok := err.(*tool.ToolError)
	assert.True(t, ok)
	assert.Equal(t, tool.CodeValidation, toolErr.Code)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	assert.Error(t, err)
}
