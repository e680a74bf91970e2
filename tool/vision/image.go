package vision

import (
	"context"

	"google.golang.org/genai"

	"github.com/hupe1980/trademesh/tool"
)

// ImageResult is the typed envelope returned by process_image calls.
type ImageResult struct {
	Question string         `json:"question"`
	Answer   string         `json:"answer,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	tool.Envelope
}

// ImageTool answers questions about images: captioning, classification
// and visual question answering.
type ImageTool struct {
	client *Client
}

// NewImageTool creates the image understanding tool.
func NewImageTool(client *Client) *ImageTool {
	return &ImageTool{client: client}
}

// Name implements tool.Tool.
func (t *ImageTool) Name() string { return "process_image" }

// Description implements tool.Tool.
func (t *ImageTool) Description() string {
	return "Process images with multi-modal reasoning capabilities. Supports image captioning, classification, and visual question answering."
}

// Parameters implements tool.Tool.
func (t *ImageTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "User's question or prompt for image processing",
			},
			"image_paths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Local paths to images",
			},
			"image_urls": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "URLs of images to process",
			},
		},
		"required": []string{"question"},
	}
}

// Call analyzes the referenced images. A failure while collecting the
// media short-circuits before any model call; both collection and model
// failures land in the result envelope.
func (t *ImageTool) Call(ctx context.Context, args map[string]any) (any, error) {
	question, _ := args["question"].(string)
	if question == "" {
		return nil, tool.NewToolError(t.Name(), "question parameter is required", tool.CodeValidation)
	}

	paths := stringSlice(args["image_paths"])
	urls := stringSlice(args["image_urls"])

	result := &ImageResult{Question: question}

	imageParts, err := t.client.collectImageParts(ctx, paths, urls)
	if err != nil {
		result.Fail(err)
		return result, nil
	}

	parts := append([]*genai.Part{{Text: question}}, imageParts...)

	answer, err := t.client.generate(ctx, t.client.opts.ImageModel, parts)
	if err != nil {
		result.Fail(err)
		return result, nil
	}

	result.Answer = answer
	result.Metadata = map[string]any{
		"model":        t.client.opts.ImageModel,
		"total_images": len(imageParts),
		"image_uris":   append(append([]string{}, paths...), urls...),
	}
	result.Succeed()

	return result, nil
}
