// Package vision adapts Gemini multi-modal models for image and video
// understanding. The tools accept local file paths and HTTP references,
// assemble the media parts and run one generation call per invocation.
package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

// Default models used by the vision tools.
const (
	DefaultImageModel = "gemini-2.5-pro"
	DefaultVideoModel = "models/gemini-2.5-flash"
)

// Options configures the vision client.
type Options struct {
	// ImageModel handles process_image calls.
	ImageModel string
	// VideoModel handles the video tools.
	VideoModel string
	// HTTPClient fetches image URLs.
	HTTPClient *http.Client
}

// Client wraps the Gen AI SDK for the vision tools. One Client is shared
// by all tools of the package.
type Client struct {
	genai *genai.Client
	http  *http.Client
	opts  Options
}

// NewClient creates a vision client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string, optFns ...func(o *Options)) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("vision tools require a Gemini API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return NewClientFromGenAI(client, optFns...), nil
}

// NewClientFromGenAI creates a vision client from an existing SDK client.
func NewClientFromGenAI(client *genai.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		ImageModel: DefaultImageModel,
		VideoModel: DefaultVideoModel,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{genai: client, http: httpClient, opts: opts}
}

// generate runs one generation call and returns the answer text.
func (c *Client) generate(ctx context.Context, model string, parts []*genai.Part) (string, error) {
	resp, err := c.genai.Models.GenerateContent(ctx, model, []*genai.Content{{Role: "user", Parts: parts}}, nil)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}

	return sb.String(), nil
}

// collectImageParts reads local images and fetches remote ones. Any
// unreadable reference aborts the whole collection.
func (c *Client) collectImageParts(ctx context.Context, paths, urls []string) ([]*genai.Part, error) {
	var parts []*genai.Part

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", p, err)
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: imageMIME(p), Data: data}})
	}

	for _, u := range urls {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch image %s: %w", u, err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch image %s: %w", u, err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("fetch image %s: %w", u, err)
		}

		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: imageMIME(u), Data: data}})
	}

	return parts, nil
}

// videoParts builds the generation input for one video reference. HTTP
// references (YouTube links, uploaded files) pass through as file data;
// local files are inlined and must stay under the API's 20MB limit.
func (c *Client) videoParts(videoPath, prompt string) ([]*genai.Part, error) {
	var filePart *genai.Part

	if strings.HasPrefix(videoPath, "http") {
		filePart = &genai.Part{
			FileData:      &genai.FileData{FileURI: videoPath},
			VideoMetadata: &genai.VideoMetadata{FPS: genai.Ptr(2.0)},
		}
	} else {
		data, err := os.ReadFile(videoPath)
		if err != nil {
			return nil, fmt.Errorf("read video %s: %w", videoPath, err)
		}
		filePart = &genai.Part{
			InlineData:    &genai.Blob{MIMEType: "video/mp4", Data: data},
			VideoMetadata: &genai.VideoMetadata{FPS: genai.Ptr(2.0)},
		}
	}

	return []*genai.Part{filePart, {Text: prompt}}, nil
}

// imageMIME guesses the content type from the reference's extension,
// defaulting to JPEG.
func imageMIME(ref string) string {
	if m := mime.TypeByExtension(filepath.Ext(ref)); m != "" && strings.HasPrefix(m, "image/") {
		return m
	}

	return "image/jpeg"
}

// stringSlice coerces a JSON-decoded array argument into []string.
func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
