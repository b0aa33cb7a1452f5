package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the MCP server over HTTP: WebSocket sessions at
// /mcp, an SSE event stream at /mcp/sse, and plain JSON-RPC POSTs at
// /mcp/message.
type Handler struct {
	server *Server
	logger *zap.Logger

	sseMu      sync.RWMutex
	sseClients map[string]chan []byte
}

// NewHandler wraps an MCP server for HTTP serving.
func NewHandler(server *Server, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		server:     server,
		logger:     logger.With(zap.String("component", "mcp_handler")),
		sseClients: make(map[string]chan []byte),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/mcp":
		h.handleWebSocket(w, r)
	case "/mcp/sse":
		h.handleSSE(w, r)
	case "/mcp/message":
		h.handleMessage(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleWebSocket upgrades the request and runs a full MCP session on
// the connection.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{"mcp"},
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session aborted")

	transport := &wsSession{conn: conn}
	if err := h.server.Serve(r.Context(), transport); err != nil && r.Context().Err() == nil {
		h.logger.Warn("websocket session failed", zap.Error(err))
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// wsSession adapts one accepted WebSocket connection to the Transport
// interface for the serve loop.
type wsSession struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (t *wsSession) Send(ctx context.Context, msg *MCPMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.Write(ctx, websocket.MessageText, body)
}

func (t *wsSession) Receive(ctx context.Context) (*MCPMessage, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		// A close frame of any status means the peer is gone.
		if websocket.CloseStatus(err) != -1 || errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	var msg MCPMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (t *wsSession) Close() error {
	return t.conn.Close(websocket.StatusNormalClosure, "")
}

// handleSSE registers an event-stream client. The first event names
// the per-client POST target; responses to those POSTs are mirrored
// onto the stream.
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientID := uuid.NewString()
	ch := make(chan []byte, 100)

	h.sseMu.Lock()
	h.sseClients[clientID] = ch
	h.sseMu.Unlock()

	defer func() {
		h.sseMu.Lock()
		delete(h.sseClients, clientID)
		h.sseMu.Unlock()
	}()

	h.logger.Info("sse client connected", zap.String("client_id", clientID))

	fmt.Fprintf(w, "event: endpoint\ndata: /mcp/message?clientId=%s\n\n", clientID)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("sse client disconnected", zap.String("client_id", clientID))
			return
		case data := <-ch:
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// handleMessage answers a single JSON-RPC request over plain HTTP.
// Notifications are accepted without a body.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var msg MCPMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.writeResponse(w, NewMCPError(nil, ErrorCodeParseError, "parse error", nil))
		return
	}

	resp := h.server.HandleMessage(r.Context(), &msg)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	h.writeResponse(w, resp)

	if clientID := r.URL.Query().Get("clientId"); clientID != "" {
		h.pushToSSEClient(clientID, resp)
	}
}

func (h *Handler) writeResponse(w http.ResponseWriter, msg *MCPMessage) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// pushToSSEClient mirrors a response onto the client's event stream.
// A full channel drops the event rather than blocking the POST.
func (h *Handler) pushToSSEClient(clientID string, msg *MCPMessage) {
	h.sseMu.RLock()
	ch, ok := h.sseClients[clientID]
	h.sseMu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case ch <- data:
	default:
		h.logger.Warn("sse client channel full", zap.String("client_id", clientID))
	}
}
