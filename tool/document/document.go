// Package document adapts the Datalab marker API as a document
// conversion tool. PDFs, office documents, HTML and images go in,
// markdown comes out.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/trademesh/tool"
	"github.com/hupe1980/trademesh/workspace"
)

// DefaultBaseURL is the production Datalab API endpoint.
const DefaultBaseURL = "https://www.datalab.to/api/v1"

// WorkspaceRun is the workspace namespace converted markdown is saved under.
const WorkspaceRun = "processed_documents"

// ConversionResult mirrors the Datalab marker response for one document.
type ConversionResult struct {
	Success      bool           `json:"success"`
	OutputFormat string         `json:"output_format"`
	Markdown     string         `json:"markdown,omitempty"`
	HTML         string         `json:"html,omitempty"`
	JSON         any            `json:"json,omitempty"`
	Images       map[string]any `json:"images,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	Error        string         `json:"error,omitempty"`
	PageCount    int            `json:"page_count,omitempty"`
	Status       string         `json:"status"`
}

// Result is the typed envelope returned by every conversion call.
type Result struct {
	FilePath   string            `json:"file_path"`
	Conversion *ConversionResult `json:"conversion_result,omitempty"`
	tool.Envelope
}

// Options configures the document tool.
type Options struct {
	// BaseURL overrides the Datalab endpoint, used in tests.
	BaseURL string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
	// MaxPolls bounds how many times a conversion is polled.
	MaxPolls int
	// PollInterval is the delay between status polls.
	PollInterval time.Duration
	// UseLLM enables Datalab's LLM-assisted conversion mode.
	UseLLM bool
	// Workspace, when set, receives the converted markdown under the
	// processed_documents namespace.
	Workspace workspace.Store
}

// Tool converts documents to markdown through the Datalab marker API.
type Tool struct {
	apiKey string
	client *http.Client
	opts   Options
}

// New creates the document tool. The Datalab API key is required.
func New(apiKey string, optFns ...func(o *Options)) (*Tool, error) {
	if apiKey == "" {
		return nil, errors.New("document conversion requires a Datalab API key")
	}

	opts := Options{
		BaseURL:      DefaultBaseURL,
		MaxPolls:     300,
		PollInterval: 2 * time.Second,
		UseLLM:       true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	return &Tool{apiKey: apiKey, client: client, opts: opts}, nil
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return "convert_document_to_markdown" }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Convert a document to markdown format. Supports PDFs, DOCX, XLSX, PPTX, HTML, and images."
}

// Parameters implements tool.Tool.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"file_path": map[string]any{
				"type":        "string",
				"description": "Path to the document file",
			},
			"paginate": map[string]any{
				"type":        "boolean",
				"description": "Add page delimiters to the output",
				"default":     false,
			},
		},
		"required": []string{"file_path"},
	}
}

// Call converts one document. All conversion failures, including an
// unreadable file, land in the result envelope.
func (t *Tool) Call(ctx context.Context, args map[string]any) (any, error) {
	filePath, _ := args["file_path"].(string)
	if filePath == "" {
		return nil, tool.NewToolError(t.Name(), "file_path parameter is required", tool.CodeValidation)
	}

	paginate, _ := args["paginate"].(bool)

	result := &Result{FilePath: filePath}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Fail(fmt.Errorf("file not found: %s", filePath))
		return result, nil
	}

	checkURL, err := t.submit(ctx, filePath, data, paginate)
	if err != nil {
		result.Fail(err)
		return result, nil
	}

	conv, err := t.poll(ctx, checkURL)
	if err != nil {
		result.Fail(err)
		return result, nil
	}

	result.Conversion = conv
	result.Succeed()

	if t.opts.Workspace != nil && conv.Markdown != "" {
		name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)) + ".md"
		if err := t.opts.Workspace.Save(WorkspaceRun, name, []byte(conv.Markdown)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("save markdown: %v", err))
		}
	}

	return result, nil
}

// submit uploads the document and returns the URL to poll for the result.
func (t *Tool) submit(ctx context.Context, filePath string, data []byte, paginate bool) (string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filePath)))
	header.Set("Content-Type", detectMIME(filePath, data))

	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	fields := map[string]string{
		"force_ocr":                "false",
		"paginate":                 strconv.FormatBool(paginate),
		"output_format":            "markdown",
		"use_llm":                  strconv.FormatBool(t.opts.UseLLM),
		"strip_existing_ocr":       "false",
		"disable_image_extraction": "false",
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("build upload: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opts.BaseURL+"/marker", body)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Api-Key", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("establish document session: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("establish document session: %w", err)
	}

	var session struct {
		RequestCheckURL string `json:"request_check_url"`
		Error           string `json:"error"`
	}
	if err := json.Unmarshal(raw, &session); err != nil {
		return "", fmt.Errorf("establish document session: unexpected response %q", truncate(string(raw), 200))
	}
	if session.RequestCheckURL == "" {
		if session.Error != "" {
			return "", fmt.Errorf("establish document session: %s", session.Error)
		}
		return "", fmt.Errorf("establish document session: no check URL returned")
	}

	return session.RequestCheckURL, nil
}

// poll fetches the conversion status until it completes or the poll
// budget is exhausted.
func (t *Tool) poll(ctx context.Context, checkURL string) (*ConversionResult, error) {
	for i := 0; i < t.opts.MaxPolls; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(t.opts.PollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
		if err != nil {
			return nil, fmt.Errorf("poll document result: %w", err)
		}
		req.Header.Set("X-Api-Key", t.apiKey)

		resp, err := t.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("poll document result: %w", err)
		}

		var status struct {
			Status    string         `json:"status"`
			Success   bool           `json:"success"`
			Markdown  string         `json:"markdown"`
			HTML      string         `json:"html"`
			JSON      any            `json:"json"`
			Images    map[string]any `json:"images"`
			Metadata  map[string]any `json:"metadata"`
			Error     string         `json:"error"`
			PageCount int            `json:"page_count"`
		}
		err = json.NewDecoder(resp.Body).Decode(&status)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("poll document result: %w", err)
		}

		if status.Status == "complete" {
			return &ConversionResult{
				Success:      status.Success,
				OutputFormat: "markdown",
				Markdown:     status.Markdown,
				HTML:         status.HTML,
				JSON:         status.JSON,
				Images:       status.Images,
				Metadata:     status.Metadata,
				Error:        status.Error,
				PageCount:    status.PageCount,
				Status:       status.Status,
			}, nil
		}
	}

	return nil, errors.New("document processing timed out")
}

// detectMIME resolves the upload content type from the file extension,
// falling back to content sniffing and finally to PDF.
func detectMIME(filePath string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(filePath)); byExt != "" {
		return byExt
	}

	if sniffed := http.DetectContentType(data); sniffed != "application/octet-stream" {
		return sniffed
	}

	return "application/pdf"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
