package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// toolCallTimeout bounds a single tools/call execution.
const toolCallTimeout = 30 * time.Second

// ToolHandler executes one tool call.
type ToolHandler func(ctx context.Context, args map[string]any) (any, error)

// ResourceHandler produces the current value of a resource. The value
// is JSON-encoded into the resources/read response, so resources stay
// live instead of being snapshotted at registration time.
type ResourceHandler func(ctx context.Context) (any, error)

// Server is the JSON-RPC 2.0 core behind every MCP transport. Tools,
// resources and prompts are registered at startup; after that the
// server is safe for concurrent sessions.
type Server struct {
	info ServerInfo

	tools        map[string]*ToolDefinition
	toolHandlers map[string]ToolHandler
	toolsMu      sync.RWMutex

	resources        map[string]*Resource
	resourceHandlers map[string]ResourceHandler
	resourcesMu      sync.RWMutex

	prompts   map[string]*PromptTemplate
	promptsMu sync.RWMutex

	logger *zap.Logger
}

// NewServer builds an empty server that identifies itself as
// name/version in the initialize handshake.
func NewServer(name, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		info: ServerInfo{
			Name:            name,
			Version:         version,
			ProtocolVersion: MCPVersion,
			Capabilities: ServerCapabilities{
				Tools:     ToolsCapability{ListChanged: true},
				Resources: ResourcesCapability{Subscribe: true, ListChanged: true},
				Prompts:   PromptsCapability{},
			},
		},
		tools:            make(map[string]*ToolDefinition),
		toolHandlers:     make(map[string]ToolHandler),
		resources:        make(map[string]*Resource),
		resourceHandlers: make(map[string]ResourceHandler),
		prompts:          make(map[string]*PromptTemplate),
		logger:           logger.With(zap.String("component", "mcp_server")),
	}
}

// GetServerInfo returns the identity advertised to clients.
func (s *Server) GetServerInfo() ServerInfo {
	return s.info
}

// RegisterTool adds a callable tool. Registering a name twice replaces
// the earlier definition.
func (s *Server) RegisterTool(tool *ToolDefinition, handler ToolHandler) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}
	if handler == nil {
		return fmt.Errorf("tool handler is required")
	}

	s.toolsMu.Lock()
	defer s.toolsMu.Unlock()
	s.tools[tool.Name] = tool
	s.toolHandlers[tool.Name] = handler

	s.logger.Info("tool registered", zap.String("name", tool.Name))
	return nil
}

// ListTools returns the registered tools sorted by name.
func (s *Server) ListTools() []ToolDefinition {
	s.toolsMu.RLock()
	defer s.toolsMu.RUnlock()

	out := make([]ToolDefinition, 0, len(s.tools))
	for _, tool := range s.tools {
		out = append(out, *tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CallTool runs a registered tool under the call timeout.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	s.toolsMu.RLock()
	handler, ok := s.toolHandlers[name]
	s.toolsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", name)
	}

	callCtx, cancel := context.WithTimeout(ctx, toolCallTimeout)
	defer cancel()

	start := time.Now()
	result, err := handler(callCtx, args)
	if err != nil {
		s.logger.Error("tool call failed",
			zap.String("name", name),
			zap.Error(err))
		return nil, err
	}

	s.logger.Debug("tool call succeeded",
		zap.String("name", name),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

// RegisterResource adds a resource and the handler that computes its
// value on every read.
func (s *Server) RegisterResource(res *Resource, handler ResourceHandler) error {
	if err := res.Validate(); err != nil {
		return fmt.Errorf("invalid resource: %w", err)
	}
	if handler == nil {
		return fmt.Errorf("resource handler is required")
	}

	s.resourcesMu.Lock()
	defer s.resourcesMu.Unlock()
	s.resources[res.URI] = res
	s.resourceHandlers[res.URI] = handler

	s.logger.Info("resource registered", zap.String("uri", res.URI))
	return nil
}

// ListResources returns the registered resource descriptors sorted by
// URI.
func (s *Server) ListResources() []Resource {
	s.resourcesMu.RLock()
	defer s.resourcesMu.RUnlock()

	out := make([]Resource, 0, len(s.resources))
	for _, res := range s.resources {
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out
}

// ReadResource runs the handler for a URI and returns the descriptor
// together with the current value.
func (s *Server) ReadResource(ctx context.Context, uri string) (*Resource, any, error) {
	s.resourcesMu.RLock()
	res, ok := s.resources[uri]
	handler := s.resourceHandlers[uri]
	s.resourcesMu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("resource not found: %s", uri)
	}

	value, err := handler(ctx)
	if err != nil {
		s.logger.Error("resource read failed",
			zap.String("uri", uri),
			zap.Error(err))
		return nil, nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return res, value, nil
}

// RegisterPrompt adds a prompt template.
func (s *Server) RegisterPrompt(prompt *PromptTemplate) error {
	if err := prompt.Validate(); err != nil {
		return fmt.Errorf("invalid prompt: %w", err)
	}

	s.promptsMu.Lock()
	defer s.promptsMu.Unlock()
	s.prompts[prompt.Name] = prompt

	s.logger.Info("prompt registered", zap.String("name", prompt.Name))
	return nil
}

// ListPrompts returns the registered templates sorted by name.
func (s *Server) ListPrompts() []PromptTemplate {
	s.promptsMu.RLock()
	defer s.promptsMu.RUnlock()

	out := make([]PromptTemplate, 0, len(s.prompts))
	for _, prompt := range s.prompts {
		out = append(out, *prompt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetPrompt renders a registered template with the given variables.
func (s *Server) GetPrompt(name string, vars map[string]string) (string, error) {
	s.promptsMu.RLock()
	prompt, ok := s.prompts[name]
	s.promptsMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("prompt not found: %s", name)
	}
	return prompt.Render(vars)
}

// HandleMessage dispatches one JSON-RPC message and returns the
// response. Notifications return nil, except ping which answers with a
// pong notification so transport heartbeats work.
func (s *Server) HandleMessage(ctx context.Context, msg *MCPMessage) *MCPMessage {
	if msg == nil {
		return NewMCPError(nil, ErrorCodeInvalidRequest, "empty message", nil)
	}
	if msg.JSONRPC != "" && msg.JSONRPC != "2.0" {
		return NewMCPError(msg.ID, ErrorCodeInvalidRequest, "unsupported JSON-RPC version", nil)
	}
	if msg.ID == nil {
		return s.handleNotification(msg)
	}

	result, rpcErr := s.dispatch(ctx, msg.Method, msg.Params)
	if rpcErr != nil {
		return &MCPMessage{JSONRPC: "2.0", ID: msg.ID, Error: rpcErr}
	}
	return NewMCPResponse(msg.ID, result)
}

func (s *Server) handleNotification(msg *MCPMessage) *MCPMessage {
	switch msg.Method {
	case "ping":
		return &MCPMessage{JSONRPC: "2.0", Method: "pong"}
	case "notifications/initialized":
		s.logger.Info("client initialized")
	default:
		s.logger.Debug("unhandled notification", zap.String("method", msg.Method))
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, method string, params map[string]any) (any, *MCPError) {
	switch method {
	case "initialize":
		return s.handleInitialize(params), nil
	case "ping":
		return map[string]any{}, nil
	case "tools/list":
		return map[string]any{"tools": s.ListTools()}, nil
	case "tools/call":
		return s.handleToolsCall(ctx, params)
	case "resources/list":
		return map[string]any{"resources": s.ListResources()}, nil
	case "resources/read":
		return s.handleResourcesRead(ctx, params)
	case "prompts/list":
		return map[string]any{"prompts": s.ListPrompts()}, nil
	case "prompts/get":
		return s.handlePromptsGet(params)
	default:
		return nil, &MCPError{
			Code:    ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", method),
		}
	}
}

func (s *Server) handleInitialize(params map[string]any) any {
	if info, ok := params["clientInfo"].(map[string]any); ok {
		name, _ := info["name"].(string)
		version, _ := info["version"].(string)
		s.logger.Info("client connected",
			zap.String("client", name),
			zap.String("client_version", version))
	}

	return map[string]any{
		"protocolVersion": MCPVersion,
		"capabilities":    s.info.Capabilities,
		"serverInfo": map[string]any{
			"name":    s.info.Name,
			"version": s.info.Version,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, params map[string]any) (any, *MCPError) {
	name, _ := params["name"].(string)
	if name == "" {
		return nil, &MCPError{Code: ErrorCodeInvalidParams, Message: "missing required parameter: name"}
	}
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return nil, &MCPError{Code: ErrorCodeInternalError, Message: err.Error()}
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, &MCPError{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": string(text)},
		},
	}, nil
}

func (s *Server) handleResourcesRead(ctx context.Context, params map[string]any) (any, *MCPError) {
	uri, _ := params["uri"].(string)
	if uri == "" {
		return nil, &MCPError{Code: ErrorCodeInvalidParams, Message: "missing required parameter: uri"}
	}

	res, value, err := s.ReadResource(ctx, uri)
	if err != nil {
		return nil, &MCPError{Code: ErrorCodeInternalError, Message: err.Error()}
	}

	text, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, &MCPError{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return map[string]any{
		"contents": []map[string]any{
			{"uri": res.URI, "mimeType": res.MimeType, "text": string(text)},
		},
	}, nil
}

func (s *Server) handlePromptsGet(params map[string]any) (any, *MCPError) {
	name, _ := params["name"].(string)
	if name == "" {
		return nil, &MCPError{Code: ErrorCodeInvalidParams, Message: "missing required parameter: name"}
	}

	vars := make(map[string]string)
	if raw, ok := params["arguments"].(map[string]any); ok {
		for k, v := range raw {
			vars[k] = fmt.Sprintf("%v", v)
		}
	}

	rendered, err := s.GetPrompt(name, vars)
	if err != nil {
		return nil, &MCPError{Code: ErrorCodeInternalError, Message: err.Error()}
	}
	return map[string]any{
		"messages": []map[string]any{
			{"role": "user", "content": map[string]any{"type": "text", "text": rendered}},
		},
	}, nil
}

// Serve pumps messages between a transport and the dispatcher until
// the context ends or the peer disconnects. Malformed payloads are
// answered with a parse error; a clean EOF ends the session without
// error.
func (s *Server) Serve(ctx context.Context, transport Transport) error {
	if transport == nil {
		return fmt.Errorf("transport is required")
	}

	s.logger.Info("mcp session started",
		zap.String("name", s.info.Name),
		zap.String("version", s.info.Version))

	for {
		msg, err := transport.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				s.logger.Info("mcp session ended")
				return nil
			}
			if isParseError(err) {
				s.logger.Warn("malformed message", zap.Error(err))
				if sendErr := transport.Send(ctx, NewMCPError(nil, ErrorCodeParseError, "parse error", nil)); sendErr != nil {
					return fmt.Errorf("send parse error response: %w", sendErr)
				}
				continue
			}
			return fmt.Errorf("transport receive: %w", err)
		}

		resp := s.HandleMessage(ctx, msg)
		if resp == nil {
			continue
		}

		if err := transport.Send(ctx, resp); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("transport send: %w", err)
		}
	}
}

// isParseError distinguishes an undecodable payload from a dead
// connection; only the former deserves a -32700 response.
func isParseError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
