package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spf13/cobra"

	"github.com/hupe1980/trademesh"
	"github.com/hupe1980/trademesh/config"
	"github.com/hupe1980/trademesh/core"
	"github.com/hupe1980/trademesh/logging"
	"github.com/hupe1980/trademesh/mcp"
	"github.com/hupe1980/trademesh/model"
	openaimodel "github.com/hupe1980/trademesh/model/openai"
	"github.com/hupe1980/trademesh/observability"
	"github.com/hupe1980/trademesh/tool"
	"github.com/hupe1980/trademesh/tool/browser"
	"github.com/hupe1980/trademesh/tool/document"
	"github.com/hupe1980/trademesh/tool/search"
	"github.com/hupe1980/trademesh/tool/think"
	"github.com/hupe1980/trademesh/tool/vision"
	"github.com/hupe1980/trademesh/trading"
	"github.com/hupe1980/trademesh/workspace"
)

// version is stamped by the release build via ldflags.
var version = "dev"

var (
	configFile string
	verbose    bool
)

// toolCategories maps the stdio server categories to the tools they host,
// matching the entries in mcp.DefaultConfig.
var toolCategories = map[string][]string{
	"search":      {"google_search"},
	"browser-use": {"complete_browser_task"},
	"document":    {"convert_document_to_markdown"},
	"vision":      {"process_image", "summarize_video", "video_qa", "transcribe_and_describe_video"},
	"think":       {"complex_problem_reasoning"},
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "trademesh",
		Short: "TradeMesh - layered multi-agent trading workflow system",
		Long: `TradeMesh runs a hierarchy of trading agents (strategic, tactical,
execution, monitoring and coordination layers) through a fixed five-stage
workflow, exposes their status over HTTP and serves tool categories as
standalone MCP stdio processes.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	var runCmd = &cobra.Command{
		Use:   "run [snapshot.json]",
		Short: "Run the five-stage trading workflow",
		Long: `Execute the trading workflow over a market snapshot read from the given
JSON file, or over a built-in sample snapshot when no file is given, and
print the aggregated result.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWorkflow,
	}

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the system status snapshot",
		Long:  `Display the registered agents, their layers and runtime states as JSON.`,
		RunE:  runStatus,
	}

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the observability endpoints",
		Long: `Start the system with the heartbeat monitor and serve /metrics, /healthz
and /status until interrupted.`,
		RunE: runServe,
	}

	var toolsCmd = &cobra.Command{
		Use:   "tools",
		Short: "List tool categories or serve one over stdio",
		Long: `Without flags, list the available tool categories and the tools they host.
With --serve, run one category as a JSON-RPC 2.0 server on stdin/stdout so
it can be launched as an MCP server process.`,
		RunE: runTools,
	}
	toolsCmd.Flags().String("serve", "", "tool category to serve over stdio")

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the trademesh version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("trademesh %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, statusCmd, serveCmd, toolsCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sys, err := trademesh.NewFromConfig(cfg, func(o *trademesh.Options) {
		o.Logger = newLogger(os.Stderr)
	})
	if err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}

	snapshot := trading.SampleMarketData()
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		snapshot = core.Payload{}
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return fmt.Errorf("failed to parse snapshot: %w", err)
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Running workflow over snapshot with %d fields\n", len(snapshot))
	}

	start := time.Now()
	result := sys.RunTradingWorkflow(cmd.Context(), snapshot)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	if verbose {
		fmt.Fprintf(os.Stderr, "Duration: %v\n", time.Since(start))
	}

	if !result.Success {
		return fmt.Errorf("workflow failed: %s", strings.Join(result.Errors, "; "))
	}
	return nil
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sys, err := trademesh.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}

	out, err := json.MarshalIndent(sys.SystemStatus(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(os.Stderr)
	sys, err := trademesh.NewFromConfig(cfg, func(o *trademesh.Options) {
		o.Logger = logger
	})
	if err != nil {
		return fmt.Errorf("failed to create system: %w", err)
	}

	if err := sys.Start(); err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}
	defer sys.Stop()

	srv := observability.NewServer(cfg.MetricsAddr,
		observability.WithStatus(func() any { return sys.SystemStatus() }),
		observability.WithServerLogger(logger),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived signal, shutting down gracefully...")
		if err := srv.Shutdown(cmd.Context()); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("observability server failed: %w", err)
	}
	return nil
}

func runTools(cmd *cobra.Command, _ []string) error {
	category, err := cmd.Flags().GetString("serve")
	if err != nil {
		return err
	}

	if category == "" {
		listToolCategories()
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	registry, err := buildRegistry(cmd, cfg, category)
	if err != nil {
		return err
	}

	// Stdout carries the JSON-RPC stream, so logs have to go to stderr.
	srv := mcp.NewServer(category, registry,
		mcp.WithVersion(version),
		mcp.WithServerLogger(newLogger(os.Stderr)),
	)
	return srv.Serve(cmd.Context())
}

func listToolCategories() {
	fmt.Println("Tool categories:")
	for _, name := range []string{"search", "browser-use", "document", "vision", "think"} {
		fmt.Printf("  %-12s %s\n", name, strings.Join(toolCategories[name], ", "))
	}
	fmt.Println("\nRun one as an MCP stdio server with: trademesh tools --serve <category>")

	if verbose {
		out, _ := json.MarshalIndent(mcp.DefaultConfig(), "", "  ")
		fmt.Printf("\nDefault MCP server configuration:\n%s\n", string(out))
	}
}

// buildRegistry assembles the tool registry for one stdio category from
// the application configuration.
func buildRegistry(cmd *cobra.Command, cfg *config.Config, category string) (*tool.Registry, error) {
	reg := tool.NewRegistry()

	switch category {
	case "search":
		t, err := search.New(cmd.Context(), cfg.GoogleAPIKey, cfg.GoogleCSEID)
		if err != nil {
			return nil, fmt.Errorf("search tool: %w", err)
		}
		reg.Register(t)

	case "browser-use":
		ws, err := workspace.NewFilesystemStore(cfg.Workspace)
		if err != nil {
			return nil, fmt.Errorf("workspace store: %w", err)
		}
		reg.Register(browser.New(func(o *browser.Options) {
			o.Workspace = ws
		}))

	case "document":
		ws, err := workspace.NewFilesystemStore(cfg.Workspace)
		if err != nil {
			return nil, fmt.Errorf("workspace store: %w", err)
		}
		t, err := document.New(cfg.DatalabAPIKey, func(o *document.Options) {
			o.Workspace = ws
		})
		if err != nil {
			return nil, fmt.Errorf("document tool: %w", err)
		}
		reg.Register(t)

	case "vision":
		client, err := vision.NewClient(cmd.Context(), cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("vision client: %w", err)
		}
		reg.Register(vision.NewImageTool(client))
		reg.Register(vision.NewSummarizeVideoTool(client))
		reg.Register(vision.NewVideoQATool(client))
		reg.Register(vision.NewTranscribeVideoTool(client))

	case "think":
		llm, err := buildModel(cfg)
		if err != nil {
			return nil, err
		}
		t, err := think.New(llm)
		if err != nil {
			return nil, fmt.Errorf("think tool: %w", err)
		}
		reg.Register(t)

	default:
		return nil, fmt.Errorf("unknown tool category %q (choose one of: search, browser-use, document, vision, think)", category)
	}

	return reg, nil
}

func buildModel(cfg *config.Config) (model.Model, error) {
	if cfg.Model.APIKey == "" {
		return nil, fmt.Errorf("model API key is required (set API_KEY)")
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.Model.APIKey),
		option.WithBaseURL(cfg.Model.BaseURL),
	)
	return openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
		o.Model = cfg.Model.Name
		o.Temperature = cfg.Model.Temperature
	}), nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.FromEnv(), nil
}

func newLogger(out *os.File) logging.Logger {
	level := logging.LogLevelInfo
	if verbose {
		level = logging.LogLevelDebug
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: "text",
		Output: out,
	})
}
