// Package googleai provides a model wrapper for Google Gemini models via
// the Gen AI SDK. It supports both the Gemini API (API key) and the
// Vertex AI backend (project + location with application default
// credentials).
package googleai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/hupe1980/trademesh/model"
)

// Options configures the Google AI model adapter. APIKey selects the
// Gemini API backend; Project/Location select Vertex AI.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int32
	APIKey      string
	Project     string
	Location    string
}

// Model wraps the Gen AI SDK behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
}

// NewModel creates a new Google AI model. Client construction performs a
// credential lookup, hence the context and error return.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cfg := &genai.ClientConfig{}
	if opts.APIKey != "" {
		cfg.APIKey = opts.APIKey
		cfg.Backend = genai.BackendGeminiAPI
	} else if opts.Project != "" {
		cfg.Project = opts.Project
		cfg.Location = opts.Location
		cfg.Backend = genai.BackendVertexAI
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a new Google AI model from an existing client
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		contents, config := m.buildRequest(req)

		if req.Stream {
			var textBuilder strings.Builder
			for resp, err := range m.client.Models.GenerateContentStream(ctx, m.opts.Model, contents, config) {
				if err != nil {
					errCh <- fmt.Errorf("googleai streaming error: %w", err)
					return
				}
				chunk := firstCandidateText(resp)
				if chunk == "" {
					continue
				}
				textBuilder.WriteString(chunk)
				out <- model.Response{Partial: true, Content: chunk}
			}
			out <- model.Response{Partial: false, Content: textBuilder.String(), FinishReason: "stop"}
			return
		}

		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, config)
		if err != nil {
			errCh <- fmt.Errorf("googleai api error: %w", err)
			return
		}
		if len(resp.Candidates) == 0 {
			errCh <- fmt.Errorf("no candidates returned")
			return
		}

		finishReason := string(resp.Candidates[0].FinishReason)
		if finishReason == "" || finishReason == "STOP" {
			finishReason = "stop"
		}

		out <- model.Response{
			Partial:      false,
			Content:      firstCandidateText(resp),
			FinishReason: finishReason,
		}
	}()

	return out, errCh
}

// buildRequest converts the normalized request into Gen AI contents plus
// generation config. System turns map to the system instruction; the
// assistant role maps to "model".
func (m *Model) buildRequest(req model.Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(m.opts.Temperature)),
		MaxOutputTokens: m.opts.MaxTokens,
	}

	var systemParts []*genai.Part
	if req.Instructions != "" {
		systemParts = append(systemParts, &genai.Part{Text: req.Instructions})
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Content == "" {
			continue
		}
		if msg.Role == model.RoleSystem {
			systemParts = append(systemParts, &genai.Part{Text: msg.Content})
			continue
		}
		role := "user"
		if msg.Role == model.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	if len(systemParts) > 0 {
		config.SystemInstruction = &genai.Content{Parts: systemParts}
	}

	return contents, config
}

// firstCandidateText concatenates the text parts of the first candidate.
func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// Info returns metadata describing this Google AI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:              m.opts.Model,
		Provider:          "googleai",
		SupportsStreaming: true,
	}
}
