package document

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/trademesh/tool"
	"github.com/hupe1980/trademesh/workspace"
)

func writeTempPDF(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "report.pdf")
	err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644)
	assert.NoError(t, err)

	return path
}

func newTestTool(t *testing.T, baseURL string, optFns ...func(o *Options)) *Tool {
	t.Helper()

	all := append([]func(o *Options){func(o *Options) {
		o.BaseURL = baseURL
		o.PollInterval = time.Millisecond
	}}, optFns...)

	docTool, err := New("dl-key", all...)
	assert.NoError(t, err)

	return docTool
}

func TestDocument_ConvertSuccess(t *testing.T) {
	var polls atomic.Int32

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/marker", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "dl-key", r.Header.Get("X-Api-Key"))

		assert.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "markdown", r.FormValue("output_format"))
		assert.Equal(t, "true", r.FormValue("use_llm"))
		assert.Equal(t, "false", r.FormValue("force_ocr"))
		assert.Equal(t, "true", r.FormValue("paginate"))

		_, fh, err := r.FormFile("file")
		assert.NoError(t, err)
		assert.Equal(t, "report.pdf", fh.Filename)

		fmt.Fprintf(w, `{"request_check_url":%q}`, srv.URL+"/marker/123")
	})
	mux.HandleFunc("/marker/123", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dl-key", r.Header.Get("X-Api-Key"))

		if polls.Add(1) < 2 {
			fmt.Fprint(w, `{"status":"processing"}`)
			return
		}
		fmt.Fprint(w, `{"status":"complete","success":true,"markdown":"# Quarterly Report","page_count":3}`)
	})

	store := workspace.NewInMemoryStore()
	docTool := newTestTool(t, srv.URL, func(o *Options) {
		o.Workspace = store
	})

	res, err := docTool.Call(context.Background(), map[string]any{
		"file_path": writeTempPDF(t),
		"paginate":  true,
	})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.True(t, result.ExecutionSuccessful)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Conversion)
	assert.Equal(t, "# Quarterly Report", result.Conversion.Markdown)
	assert.Equal(t, 3, result.Conversion.PageCount)
	assert.Equal(t, "complete", result.Conversion.Status)
	assert.True(t, result.Conversion.Success)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))

	saved, err := store.Get(WorkspaceRun, "report.md")
	assert.NoError(t, err)
	assert.Equal(t, "# Quarterly Report", string(saved))
}

func TestDocument_MissingFileLandsInEnvelope(t *testing.T) {
	docTool := newTestTool(t, "http://unused.invalid")

	res, err := docTool.Call(context.Background(), map[string]any{
		"file_path": "/nonexistent/report.pdf",
	})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.False(t, result.ExecutionSuccessful)
	assert.Contains(t, result.Errors[0], "file not found")
	assert.Nil(t, result.Conversion)
}

func TestDocument_MissingFilePathArg(t *testing.T) {
	docTool := newTestTool(t, "http://unused.invalid")

	_, err := docTool.Call(context.Background(), map[string]any{})
	assert.Error(t, err)

	toolErr, ok := err.(*tool.ToolError)
	assert.True(t, ok)
	assert.Equal(t, tool.CodeValidation, toolErr.Code)
}

func TestDocument_SessionFailureLandsInEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"invalid api key"}`)
	}))
	defer srv.Close()

	docTool := newTestTool(t, srv.URL)

	res, err := docTool.Call(context.Background(), map[string]any{
		"file_path": writeTempPDF(t),
	})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.False(t, result.ExecutionSuccessful)
	assert.Contains(t, result.Errors[0], "invalid api key")
}

func TestDocument_PollTimeout(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/marker", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"request_check_url":%q}`, srv.URL+"/marker/slow")
	})
	mux.HandleFunc("/marker/slow", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"processing"}`)
	})

	docTool := newTestTool(t, srv.URL, func(o *Options) {
		o.MaxPolls = 3
	})

	res, err := docTool.Call(context.Background(), map[string]any{
		"file_path": writeTempPDF(t),
	})
	assert.NoError(t, err)

	result := res.(*Result)
	assert.False(t, result.ExecutionSuccessful)
	assert.Contains(t, result.Errors[0], "timed out")
}

func TestDocument_RequiresAPIKey(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "application/pdf", detectMIME("report.pdf", nil))
	assert.Equal(t, "application/pdf", detectMIME("blob", []byte{0x00, 0x01}))
	assert.Contains(t, detectMIME("page.html", nil), "text/html")
}
