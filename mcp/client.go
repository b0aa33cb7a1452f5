package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// InitializeResult is the server's half of the handshake.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"serverInfo"`
}

// ContentBlock is one block of a tool or prompt payload.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResult is the payload of a tools/call response.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
}

// Text concatenates the text blocks of the result.
func (r *ToolResult) Text() string {
	var b strings.Builder
	for _, block := range r.Content {
		b.WriteString(block.Text)
	}
	return b.String()
}

// ResourceContent is one entry of a resources/read response.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// PromptMessage is one rendered message of a prompts/get response.
type PromptMessage struct {
	Role    string       `json:"role"`
	Content ContentBlock `json:"content"`
}

// Client drives an MCP session over any Transport. Requests are
// correlated by ID; a background loop routes responses to the waiting
// callers, so concurrent calls are safe.
type Client struct {
	transport Transport
	logger    *zap.Logger

	nextID    atomic.Int64
	pendingMu sync.Mutex
	pending   map[int64]chan *MCPMessage

	mu          sync.Mutex
	initialized bool
	server      InitializeResult
	cancel      context.CancelFunc

	done chan struct{}
}

// NewClient wraps a connected transport. Call Initialize before
// anything else.
func NewClient(transport Transport, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		transport: transport,
		logger:    logger.With(zap.String("component", "mcp_client")),
		pending:   make(map[int64]chan *MCPMessage),
		done:      make(chan struct{}),
	}
}

// Initialize performs the protocol handshake and starts the response
// router.
func (c *Client) Initialize(ctx context.Context, clientName, clientVersion string) (*InitializeResult, error) {
	c.mu.Lock()
	if c.initialized || c.cancel != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("client already initialized")
	}
	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	go c.receiveLoop(loopCtx)

	raw, err := c.call(ctx, "initialize", map[string]any{
		"protocolVersion": MCPVersion,
		"clientInfo": map[string]any{
			"name":    clientName,
			"version": clientVersion,
		},
		"capabilities": map[string]any{},
	})
	if err != nil {
		cancel()
		return nil, err
	}

	var result InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		cancel()
		return nil, fmt.Errorf("parse initialize result: %w", err)
	}

	if err := c.transport.Send(ctx, &MCPMessage{JSONRPC: "2.0", Method: "notifications/initialized"}); err != nil {
		c.logger.Warn("failed to send initialized notification", zap.Error(err))
	}

	c.mu.Lock()
	c.initialized = true
	c.server = result
	c.mu.Unlock()

	c.logger.Info("connected to mcp server",
		zap.String("server", result.ServerInfo.Name),
		zap.String("server_version", result.ServerInfo.Version))
	return &result, nil
}

// ServerInfo returns the handshake result. Zero until Initialize
// succeeds.
func (c *Client) ServerInfo() InitializeResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.server
}

// Ping checks the connection end to end.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.requireInit(); err != nil {
		return err
	}
	_, err := c.call(ctx, "ping", nil)
	return err
}

// ListTools returns the server's registered tools.
func (c *Client) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	if err := c.requireInit(); err != nil {
		return nil, err
	}
	raw, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Tools []ToolDefinition `json:"tools"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse tools: %w", err)
	}
	return out.Tools, nil
}

// CallTool invokes a tool by name.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	if err := c.requireInit(); err != nil {
		return nil, err
	}
	raw, err := c.call(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}

	var result ToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("parse tool result: %w", err)
	}
	return &result, nil
}

// ListResources returns the server's resource descriptors.
func (c *Client) ListResources(ctx context.Context) ([]Resource, error) {
	if err := c.requireInit(); err != nil {
		return nil, err
	}
	raw, err := c.call(ctx, "resources/list", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Resources []Resource `json:"resources"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse resources: %w", err)
	}
	return out.Resources, nil
}

// ReadResource fetches the current value of a resource URI.
func (c *Client) ReadResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	if err := c.requireInit(); err != nil {
		return nil, err
	}
	raw, err := c.call(ctx, "resources/read", map[string]any{"uri": uri})
	if err != nil {
		return nil, err
	}

	var out struct {
		Contents []ResourceContent `json:"contents"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse resource contents: %w", err)
	}
	return out.Contents, nil
}

// ListPrompts returns the server's prompt templates.
func (c *Client) ListPrompts(ctx context.Context) ([]PromptTemplate, error) {
	if err := c.requireInit(); err != nil {
		return nil, err
	}
	raw, err := c.call(ctx, "prompts/list", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Prompts []PromptTemplate `json:"prompts"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	return out.Prompts, nil
}

// GetPrompt renders a template server-side and returns the text of the
// first message.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (string, error) {
	if err := c.requireInit(); err != nil {
		return "", err
	}
	raw, err := c.call(ctx, "prompts/get", map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Messages []PromptMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parse prompt: %w", err)
	}
	if len(out.Messages) == 0 {
		return "", fmt.Errorf("prompt %s: empty response", name)
	}
	return out.Messages[0].Content.Text, nil
}

// Close ends the session and releases the transport.
func (c *Client) Close() error {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	err := c.transport.Close()
	if cancel != nil {
		cancel()
		select {
		case <-c.done:
		case <-time.After(time.Second):
		}
	}
	return err
}

func (c *Client) requireInit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return fmt.Errorf("client not initialized")
	}
	return nil
}

// call sends one request and blocks for the matching response.
func (c *Client) call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	id := c.nextID.Add(1)
	ch := make(chan *MCPMessage, 1)

	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	if err := c.transport.Send(ctx, NewMCPRequest(id, method, params)); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("connection lost")
	case resp := <-ch:
		if resp.Error != nil {
			return nil, resp.Error
		}
		raw, err := json.Marshal(resp.Result)
		if err != nil {
			return nil, fmt.Errorf("marshal result: %w", err)
		}
		return raw, nil
	}
}

// receiveLoop routes incoming messages to waiting calls until the
// transport dies or Close cancels it.
func (c *Client) receiveLoop(ctx context.Context) {
	defer close(c.done)

	for {
		msg, err := c.transport.Receive(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				c.logger.Warn("receive loop ended", zap.Error(err))
			}
			return
		}
		c.route(msg)
	}
}

func (c *Client) route(msg *MCPMessage) {
	if msg.ID == nil {
		if msg.Method != "" && msg.Method != "pong" {
			c.logger.Debug("server notification", zap.String("method", msg.Method))
		}
		return
	}

	// JSON numbers decode as float64.
	id, ok := msg.ID.(float64)
	if !ok {
		c.logger.Warn("response with unrecognized id", zap.Any("id", msg.ID))
		return
	}

	c.pendingMu.Lock()
	ch, ok := c.pending[int64(id)]
	c.pendingMu.Unlock()
	if ok {
		ch <- msg
	}
}
