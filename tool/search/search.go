// Package search adapts the Google Custom Search JSON API as a web
// research tool for the trading agents.
package search

import (
	"context"
	"errors"
	"fmt"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/hupe1980/trademesh/tool"
)

// Document is one search hit: the page URL plus its snippet summary.
type Document struct {
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

// Result is the typed envelope returned by every search call.
type Result struct {
	Query     string     `json:"query"`
	Documents []Document `json:"documents"`
	tool.Envelope
}

// Options configures the search tool.
type Options struct {
	// NumResults is the default number of hits per query (API maximum 10).
	NumResults int64
	// Endpoint overrides the API endpoint, used in tests.
	Endpoint string
}

// Tool performs Google Custom Search queries. One call maps to one API
// request; failures are captured in the result envelope.
type Tool struct {
	svc   *customsearch.Service
	cseID string
	opts  Options
}

// New creates the search tool. Both the API key and the custom search
// engine ID are required.
func New(ctx context.Context, apiKey, cseID string, optFns ...func(o *Options)) (*Tool, error) {
	if apiKey == "" || cseID == "" {
		return nil, errors.New("google search requires an API key and a custom search engine ID")
	}

	opts := Options{
		NumResults: 10,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}

	return &Tool{svc: svc, cseID: cseID, opts: opts}, nil
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return "google_search" }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Search the web using Google Custom Search and return documents with url and summary. Use for market news, company research and data lookup."
}

// Parameters implements tool.Tool.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The query to search for",
			},
			"num_results": map[string]any{
				"type":        "integer",
				"description": "Number of search results to return (max 10)",
				"default":     10,
			},
		},
		"required": []string{"query"},
	}
}

// Call performs one search request. API failures land in the result
// envelope; the error return is reserved for unusable arguments.
func (t *Tool) Call(ctx context.Context, args map[string]any) (any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, tool.NewToolError(t.Name(), "query parameter is required", tool.CodeValidation)
	}

	result := &Result{Query: query, Documents: []Document{}}

	num := t.opts.NumResults
	if v, ok := args["num_results"].(float64); ok && v > 0 {
		num = int64(v)
	}
	if num > 10 {
		num = 10
	}

	resp, err := t.svc.Cse.List().Context(ctx).Q(query).Cx(t.cseID).Num(num).Gl("us").Lr("lang_en").Do()
	if err != nil {
		result.Fail(fmt.Errorf("google search failed: %w", err))
		return result, nil
	}

	for _, item := range resp.Items {
		result.Documents = append(result.Documents, Document{
			URL:     item.Link,
			Summary: item.Snippet,
		})
	}

	result.Succeed()

	return result, nil
}
