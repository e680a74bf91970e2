// Package mcp runs tool categories as standalone processes speaking
// JSON-RPC 2.0 over stdio: initialize, tools/list and tools/call. The
// server map mirrors the launch configuration consumed by MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/hupe1980/trademesh/logging"
	"github.com/hupe1980/trademesh/tool"
)

// ServerOptions configures optional behavior of a Server.
type ServerOptions struct {
	// Logger receives request lifecycle events on stderr-safe output.
	Logger logging.Logger
	// Version is reported in the initialize handshake.
	Version string
	// In is the request stream, stdin by default.
	In io.Reader
	// Out is the response stream, stdout by default.
	Out io.Writer
}

// WithServerLogger sets the server logger.
func WithServerLogger(logger logging.Logger) func(o *ServerOptions) {
	return func(o *ServerOptions) {
		o.Logger = logger
	}
}

// WithVersion sets the version reported to clients.
func WithVersion(version string) func(o *ServerOptions) {
	return func(o *ServerOptions) {
		o.Version = version
	}
}

// WithStreams overrides the stdio streams, used in tests.
func WithStreams(in io.Reader, out io.Writer) func(o *ServerOptions) {
	return func(o *ServerOptions) {
		o.In = in
		o.Out = out
	}
}

// Server exposes a tool registry over the stdio protocol. Responses are
// newline-delimited JSON; logging must never touch the Out stream.
type Server struct {
	name     string
	version  string
	registry *tool.Registry
	logger   logging.Logger
	in       io.Reader
	out      io.Writer

	// mu serializes response writes.
	mu sync.Mutex
}

// NewServer creates a stdio tool server around registry.
func NewServer(name string, registry *tool.Registry, optFns ...func(o *ServerOptions)) *Server {
	opts := ServerOptions{
		Logger:  logging.NoOpLogger{},
		Version: "0.0.0",
		In:      os.Stdin,
		Out:     os.Stdout,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Server{
		name:     name,
		version:  opts.Version,
		registry: registry,
		logger:   opts.Logger,
		in:       opts.In,
		out:      opts.Out,
	}
}

// Serve processes requests until the input stream closes or the context
// is canceled. A malformed stream terminates the loop after a parse
// error response, since resynchronization is not possible.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("tool server started", "server", s.name, "tools", len(s.registry.Names()))

	dec := json.NewDecoder(s.in)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info("tool server stopped", "server", s.name)
				return nil
			}

			s.write(response{JSONRPC: "2.0", Error: &rpcError{Code: codeParseError, Message: "parse error"}})

			return fmt.Errorf("decode request: %w", err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		s.handle(ctx, req)
	}
}

func (s *Server) handle(ctx context.Context, req request) {
	s.logger.Debug("request received", "server", s.name, "method", req.Method)

	switch req.Method {
	case "initialize":
		s.writeResult(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      ServerInfo{Name: s.name, Version: s.version},
		})

	case "notifications/initialized":
		// Notification, no reply.

	case "ping":
		s.writeResult(req.ID, map[string]any{})

	case "tools/list":
		tools := s.registry.Tools()

		infos := make([]ToolInfo, 0, len(tools))
		for _, t := range tools {
			infos = append(infos, ToolInfo{
				Name:        t.Name(),
				Description: t.Description(),
				InputSchema: t.Parameters(),
			})
		}

		s.writeResult(req.ID, ListToolsResult{Tools: infos})

	case "tools/call":
		var params CallToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeError(req.ID, codeInvalidParams, "invalid params")
			return
		}

		result, err := s.registry.Execute(ctx, params.Name, params.Arguments)
		if err != nil {
			// Tool failures are data for the client, not protocol errors.
			s.logger.Warn("tool call failed", "server", s.name, "tool", params.Name, "error", err.Error())
			s.writeResult(req.ID, CallToolResult{
				Content: []Content{{Type: "text", Text: err.Error()}},
				IsError: true,
			})
			return
		}

		s.writeResult(req.ID, CallToolResult{Content: []Content{formatContent(result)}})

	default:
		if req.ID == nil {
			// Unknown notification, drop silently.
			return
		}
		s.writeError(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) writeResult(id *json.RawMessage, result any) {
	if id == nil {
		return
	}
	s.write(response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(id *json.RawMessage, code int, message string) {
	s.write(response{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) write(resp response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal response", "server", s.name, "error", err.Error())
		return
	}

	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.logger.Error("write response", "server", s.name, "error", err.Error())
	}
}

// formatContent converts a tool result into one text content block.
// Structured results are rendered as JSON.
func formatContent(result any) Content {
	switch v := result.(type) {
	case string:
		return Content{Type: "text", Text: v}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Content{Type: "text", Text: fmt.Sprintf("%v", v)}
		}
		return Content{Type: "text", Text: string(data)}
	}
}
