package mcp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MCPVersion is the protocol revision this server speaks.
const MCPVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	ErrorCodeParseError     = -32700
	ErrorCodeInvalidRequest = -32600
	ErrorCodeMethodNotFound = -32601
	ErrorCodeInvalidParams  = -32602
	ErrorCodeInternalError  = -32603
)

// MCPMessage is a JSON-RPC 2.0 request, response, or notification. A
// message without an ID is a notification and never gets a response.
type MCPMessage struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id,omitempty"`
	Method  string         `json:"method,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Result  any            `json:"result,omitempty"`
	Error   *MCPError      `json:"error,omitempty"`
}

// MarshalJSON pins the jsonrpc field so a zero-value message still
// serializes as a valid 2.0 envelope.
func (m MCPMessage) MarshalJSON() ([]byte, error) {
	type alias MCPMessage
	out := alias(m)
	out.JSONRPC = "2.0"
	return json.Marshal(out)
}

// IsNotification reports whether the message expects no response.
func (m *MCPMessage) IsNotification() bool {
	return m.ID == nil && m.Method != ""
}

// MCPError is a JSON-RPC 2.0 error object.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// NewMCPRequest builds a request message.
func NewMCPRequest(id any, method string, params map[string]any) *MCPMessage {
	return &MCPMessage{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// NewMCPResponse builds a success response.
func NewMCPResponse(id any, result any) *MCPMessage {
	return &MCPMessage{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

// NewMCPError builds an error response.
func NewMCPError(id any, code int, message string, data any) *MCPMessage {
	return &MCPMessage{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &MCPError{Code: code, Message: message, Data: data},
	}
}

// ServerInfo identifies the server in the initialize handshake.
type ServerInfo struct {
	Name            string             `json:"name"`
	Version         string             `json:"version"`
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
}

// ServerCapabilities advertises which optional protocol features the
// server implements.
type ServerCapabilities struct {
	Tools     ToolsCapability     `json:"tools"`
	Resources ResourcesCapability `json:"resources"`
	Prompts   PromptsCapability   `json:"prompts"`
}

// ToolsCapability describes the tools feature set.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ResourcesCapability describes the resources feature set.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

// PromptsCapability describes the prompts feature set.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ToolDefinition describes a callable tool and its argument schema.
// InputSchema is a JSON Schema document.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Validate checks the definition is complete enough to register.
func (t *ToolDefinition) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.InputSchema == nil {
		return fmt.Errorf("tool input schema is required")
	}
	return nil
}

// Resource describes one addressable piece of server state.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// Validate checks the descriptor is complete enough to register.
func (r *Resource) Validate() error {
	if r.URI == "" {
		return fmt.Errorf("resource URI is required")
	}
	if r.Name == "" {
		return fmt.Errorf("resource name is required")
	}
	return nil
}

// PromptTemplate is a reusable prompt with {{variable}} placeholders.
type PromptTemplate struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Template    string   `json:"template"`
	Variables   []string `json:"variables,omitempty"`
}

// Validate checks the template is complete enough to register.
func (p *PromptTemplate) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("prompt name is required")
	}
	if p.Template == "" {
		return fmt.Errorf("prompt template is required")
	}
	return nil
}

// Render substitutes the declared variables into the template. Every
// declared variable must be supplied; extra values are ignored.
func (p *PromptTemplate) Render(vars map[string]string) (string, error) {
	out := p.Template
	for _, name := range p.Variables {
		value, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("missing prompt variable: %s", name)
		}
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out, nil
}
