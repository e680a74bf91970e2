// Package browser adapts headless Chrome via chromedp as a page visiting
// tool. A call navigates to one URL, extracts the page text and captures
// a screenshot into the workspace.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/chromedp/chromedp"

	"github.com/hupe1980/trademesh/tool"
	"github.com/hupe1980/trademesh/workspace"
)

// WorkspaceRun is the workspace namespace screenshots are saved under.
const WorkspaceRun = "screenshots"

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/85.0.4183.102 Safari/537.36"

// Result is the typed envelope returned by every browsing call.
type Result struct {
	Task             string   `json:"task"`
	TaskCompletion   string   `json:"task_completion,omitempty"`
	ExtractedContent string   `json:"extracted_content,omitempty"`
	VisitedURLs      []string `json:"visited_urls"`
	Screenshots      []string `json:"screenshots"`
	tool.Envelope
}

// pageInfo is what one navigation yields.
type pageInfo struct {
	Title      string
	Location   string
	Text       string
	Screenshot []byte
}

// Options configures the browser tool.
type Options struct {
	// Timeout bounds one browsing task including page load.
	Timeout time.Duration
	// UserAgent is sent with every request.
	UserAgent string
	// Headless toggles the headless Chrome mode.
	Headless bool
	// Workspace, when set, receives captured screenshots.
	Workspace workspace.Store
}

// Tool visits web pages through a Chrome instance.
type Tool struct {
	opts Options

	// navigate is swapped out in tests to avoid a Chrome dependency.
	navigate func(ctx context.Context, url string) (*pageInfo, error)
}

// New creates the browser tool.
func New(optFns ...func(o *Options)) *Tool {
	opts := Options{
		Timeout:   60 * time.Second,
		UserAgent: defaultUserAgent,
		Headless:  true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	t := &Tool{opts: opts}
	t.navigate = t.runChrome

	return t
}

// Name implements tool.Tool.
func (t *Tool) Name() string { return "complete_browser_task" }

// Description implements tool.Tool.
func (t *Tool) Description() string {
	return "Use a browser to visit a web page and extract its content. Returns the extracted content, visited URLs and screenshot paths."
}

// Parameters implements tool.Tool.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"task": map[string]any{
				"type":        "string",
				"description": "Detailed task description, e.g. 'Extract the main content from the page'",
			},
			"url": map[string]any{
				"type":        "string",
				"description": "The page to visit",
			},
		},
		"required": []string{"task", "url"},
	}
}

// Call visits one page. Navigation failures land in the result envelope.
func (t *Tool) Call(ctx context.Context, args map[string]any) (any, error) {
	task, _ := args["task"].(string)
	if task == "" {
		return nil, tool.NewToolError(t.Name(), "task parameter is required", tool.CodeValidation)
	}

	url, _ := args["url"].(string)
	if url == "" {
		return nil, tool.NewToolError(t.Name(), "url parameter is required", tool.CodeValidation)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, tool.NewToolError(t.Name(), "url must be an http(s) URL", tool.CodeValidation)
	}

	result := &Result{Task: task, VisitedURLs: []string{}, Screenshots: []string{}}

	page, err := t.navigate(ctx, url)
	if err != nil {
		result.Fail(fmt.Errorf("browse %s: %w", url, err))
		return result, nil
	}

	result.TaskCompletion = fmt.Sprintf("Visited %s (%s)", url, page.Title)
	result.ExtractedContent = page.Text
	result.VisitedURLs = append(result.VisitedURLs, url)
	if page.Location != "" && page.Location != url {
		result.VisitedURLs = append(result.VisitedURLs, page.Location)
	}

	if t.opts.Workspace != nil && len(page.Screenshot) > 0 {
		name := fmt.Sprintf("%s_1.png", taskSlug(task))
		if err := t.opts.Workspace.Save(WorkspaceRun, name, page.Screenshot); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("save screenshot: %v", err))
		} else {
			result.Screenshots = append(result.Screenshots, name)
		}
	}

	result.Succeed()

	return result, nil
}

// runChrome performs the actual navigation through a fresh Chrome
// instance.
func (t *Tool) runChrome(ctx context.Context, url string) (*pageInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", t.opts.Headless),
		chromedp.UserAgent(t.opts.UserAgent),
		chromedp.WindowSize(1280, 1024),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	page := &pageInfo{}

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Title(&page.Title),
		chromedp.Location(&page.Location),
		chromedp.Text("body", &page.Text, chromedp.ByQuery),
		chromedp.FullScreenshot(&page.Screenshot, 90),
	)
	if err != nil {
		return nil, err
	}

	return page, nil
}

// taskSlug turns a task description into a safe screenshot file stem:
// lowercased, spaces to underscores, anything outside [a-z0-9-_]
// replaced, capped at 40 characters.
func taskSlug(task string) string {
	lowered := strings.ReplaceAll(strings.ToLower(task), " ", "_")

	var b strings.Builder
	for _, c := range lowered {
		if c == '-' || c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(c)
		} else {
			b.WriteRune('_')
		}
	}

	runes := []rune(b.String())
	if len(runes) > 40 {
		runes = runes[:40]
	}

	return string(runes)
}
