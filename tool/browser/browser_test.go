package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/trademesh/tool"
	"github.com/hupe1980/trademesh/workspace"
)

func stubbedTool(page *pageInfo, err error, optFns ...func(o *Options)) *Tool {
	t := New(optFns...)
	t.navigate = func(_ context.Context, _ string) (*pageInfo, error) {
		return page, err
	}

	return t
}

func TestBrowser_VisitExtractsContent(t *testing.T) {
	store := workspace.NewInMemoryStore()
	browserTool := stubbedTool(&pageInfo{
		Title:      "Market Wrap",
		Location:   "https://example.com/markets/today",
		Text:       "Stocks closed higher.",
		Screenshot: []byte{0x89, 'P', 'N', 'G'},
	}, nil, func(o *Options) {
		o.Workspace = store
	})

	res, err := browserTool.Call(context.Background(), map[string]any{
		"task": "Extract the market wrap",
		"url":  "https://example.com/markets",
	})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.True(t, result.ExecutionSuccessful)
	assert.Equal(t, "Stocks closed higher.", result.ExtractedContent)
	assert.Contains(t, result.TaskCompletion, "Market Wrap")
	assert.Equal(t, []string{"https://example.com/markets", "https://example.com/markets/today"}, result.VisitedURLs)
	assert.Equal(t, []string{"extract_the_market_wrap_1.png"}, result.Screenshots)

	saved, err := store.Get(WorkspaceRun, "extract_the_market_wrap_1.png")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, saved)
}

func TestBrowser_NavigationFailureLandsInEnvelope(t *testing.T) {
	browserTool := stubbedTool(nil, errors.New("net::ERR_NAME_NOT_RESOLVED"))

	res, err := browserTool.Call(context.Background(), map[string]any{
		"task": "visit",
		"url":  "https://down.example.com",
	})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.False(t, result.ExecutionSuccessful)
	assert.Contains(t, result.Errors[0], "ERR_NAME_NOT_RESOLVED")
	assert.Empty(t, result.Screenshots)
}

func TestBrowser_Validation(t *testing.T) {
	browserTool := stubbedTool(&pageInfo{}, nil)

	_, err := browserTool.Call(context.Background(), map[string]any{"url": "https://example.com"})
	assert.Error(t, err)

	_, err = browserTool.Call(context.Background(), map[string]any{"task": "x"})
	assert.Error(t, err)

	_, err = browserTool.Call(context.Background(), map[string]any{"task": "x", "url": "ftp://example.com"})
	assert.Error(t, err)

	toolErr, ok := err.(*tool.ToolError)
	assert.True(t, ok)
	assert.Equal(t, tool.CodeValidation, toolErr.Code)
}

func TestBrowser_NoWorkspaceSkipsScreenshot(t *testing.T) {
	browserTool := stubbedTool(&pageInfo{Title: "T", Text: "body", Screenshot: []byte{1}}, nil)

	res, err := browserTool.Call(context.Background(), map[string]any{
		"task": "visit",
		"url":  "https://example.com",
	})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.True(t, result.ExecutionSuccessful)
	assert.Empty(t, result.Screenshots)
}

func TestTaskSlug(t *testing.T) {
	assert.Equal(t, "extract_the_main_content", taskSlug("Extract the main content"))
	assert.Equal(t, "check_aapl_price___usd_", taskSlug("Check AAPL price ($USD)"))
	assert.Equal(t, "keep-dashes_and_underscores", taskSlug("keep-dashes and_underscores"))

	long := taskSlug("this task description is far longer than forty characters in total")
	assert.Len(t, []rune(long), 40)
}
