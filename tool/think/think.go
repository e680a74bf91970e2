// Package think adapts a reasoning model as a structured problem solving
// tool for mathematical, coding and logical questions.
package think

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/hupe1980/trademesh/model"
	"github.com/hupe1980/trademesh/tool"
)

// Reasoning styles accepted by the tool.
const (
	StyleStepByStep = "step-by-step"
	StyleConcise    = "concise"
	StyleDetailed   = "detailed"
)

// Result is the typed envelope returned by every reasoning call.
type Result struct {
	Task            string         `json:"task"`
	ReasoningSteps  []string       `json:"reasoning_steps"`
	FinalConclusion string         `json:"final_conclusion,omitempty"`
	VisitedURLs     []string       `json:"visited_urls"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	tool.Envelope
}

// thinkPattern splits reasoning-model output into its thinking trace and
// final answer.
var thinkPattern = regexp.MustCompile(`(?is)<think>(.*?)</think>.*?<answer>(.*?)</answer>`)

var styleInstructions = map[string]string{
	StyleStepByStep: "\n\nProvide a clear step-by-step breakdown.",
	StyleConcise:    "\n\nProvide a concise but complete solution.",
	StyleDetailed:   "\n\nProvide detailed analysis with comprehensive reasoning.",
}

// Tool answers complex reasoning questions through a dedicated model.
type Tool struct {
	llm model.Model
}

// New creates the reasoning tool around llm.
func New(llm model.Model) (*Tool, error) {
	if llm == nil {
		return nil, errors.New("reasoning requires a model")
	}

	return &Tool{llm: llm}, nil
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return "complex_problem_reasoning" }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Process complex reasoning tasks with structured output. Handles mathematical proofs, programming challenges, and logical problems."
}

// Parameters implements tool.Tool.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The input question requiring complex reasoning (math, code, logic)",
			},
			"original_task": map[string]any{
				"type":        "string",
				"description": "Original task context for reference",
				"default":     "",
			},
			"reasoning_style": map[string]any{
				"type":        "string",
				"enum":        []string{StyleStepByStep, StyleConcise, StyleDetailed},
				"description": "Reasoning style: detailed/concise/step-by-step",
				"default":     StyleStepByStep,
			},
		},
		"required": []string{"question"},
	}
}

// Call runs one reasoning request. Model failures land in the result
// envelope.
func (t *Tool) Call(ctx context.Context, args map[string]any) (any, error) {
	question, _ := args["question"].(string)
	if question == "" {
		return nil, tool.NewToolError(t.Name(), "question parameter is required", tool.CodeValidation)
	}

	originalTask, _ := args["original_task"].(string)

	style, _ := args["reasoning_style"].(string)
	if _, ok := styleInstructions[style]; !ok {
		style = StyleStepByStep
	}

	result := &Result{Task: question, ReasoningSteps: []string{}, VisitedURLs: []string{}}

	content, err := model.Complete(ctx, t.llm, model.Request{
		Messages: []model.Message{{Role: model.RoleUser, Content: buildPrompt(question, originalTask, style)}},
	})
	if err != nil {
		result.Fail(err)
		return result, nil
	}

	if m := thinkPattern.FindStringSubmatch(content); m != nil {
		result.FinalConclusion = strings.TrimSpace(m[2])
		result.ReasoningSteps = strings.Split(strings.TrimSpace(m[1]), "\n")
	} else {
		// Models without a thinking trace return the whole completion as
		// the conclusion.
		result.FinalConclusion = content
	}

	result.Metadata = map[string]any{
		"model":           t.llm.Info().Name,
		"response_length": len(result.FinalConclusion),
		"style":           style,
	}

	result.Succeed()

	return result, nil
}

// buildPrompt produces the standardized reasoning prompt.
func buildPrompt(question, originalTask, style string) string {
	prompt := question
	if originalTask != "" {
		prompt = "Question: " + question + "\n\nContext: " + originalTask
	}

	return prompt + styleInstructions[style]
}
