package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/trademesh/tool"
)

func setupSearch(t *testing.T, handler http.HandlerFunc) *Tool {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	searchTool, err := New(context.Background(), "test-key", "cse-42", func(o *Options) {
		o.Endpoint = srv.URL
	})
	assert.NoError(t, err)

	return searchTool
}

func TestSearch_Success(t *testing.T) {
	searchTool := setupSearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fed rate decision", r.URL.Query().Get("q"))
		assert.Equal(t, "cse-42", r.URL.Query().Get("cx"))
		assert.Equal(t, "3", r.URL.Query().Get("num"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[
			{"link":"https://example.com/fed","snippet":"The Fed held rates steady."},
			{"link":"https://example.com/markets","snippet":"Markets rallied on the news."}
		]}`)
	})

	res, err := searchTool.Call(context.Background(), map[string]any{
		"query":       "fed rate decision",
		"num_results": 3.0,
	})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.True(t, result.ExecutionSuccessful)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "fed rate decision", result.Query)
	assert.Len(t, result.Documents, 2)
	assert.Equal(t, "https://example.com/fed", result.Documents[0].URL)
	assert.Equal(t, "The Fed held rates steady.", result.Documents[0].Summary)
}

func TestSearch_APIFailureLandsInEnvelope(t *testing.T) {
	searchTool := setupSearch(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
	})

	res, err := searchTool.Call(context.Background(), map[string]any{"query": "anything"})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.False(t, result.ExecutionSuccessful)
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Documents)
}

func TestSearch_MissingQuery(t *testing.T) {
	searchTool := setupSearch(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := searchTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)

	toolErr, ok := err.(*tool.ToolError)
	assert.True(t, ok)
	assert.Equal(t, tool.CodeValidation, toolErr.Code)
}

func TestSearch_RequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), "", "cse")
	assert.Error(t, err)

	_, err = New(context.Background(), "key", "")
	assert.Error(t, err)
}

func TestSearch_CapsResultCount(t *testing.T) {
	searchTool := setupSearch(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[]}`)
	})

	res, err := searchTool.Call(context.Background(), map[string]any{
		"query":       "bulk query",
		"num_results": 50.0,
	})
	assert.NoError(t, err)
	assert.True(t, res.(*Result).ExecutionSuccessful)
}
