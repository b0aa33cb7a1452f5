package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/internal/tlsutil"
)

// WSState is the lifecycle state of a WebSocket transport.
type WSState string

const (
	WSStateDisconnected WSState = "disconnected"
	WSStateConnecting   WSState = "connecting"
	WSStateConnected    WSState = "connected"
	WSStateReconnecting WSState = "reconnecting"
	WSStateFailed       WSState = "failed"
	WSStateClosed       WSState = "closed"
)

// WSTransportConfig tunes heartbeat and reconnection behavior.
type WSTransportConfig struct {
	// HeartbeatInterval is the gap between ping notifications.
	HeartbeatInterval time.Duration
	// HeartbeatTimeout is the slack beyond the interval before the
	// connection counts as dead.
	HeartbeatTimeout time.Duration
	// MaxReconnects caps redial attempts per outage.
	MaxReconnects int
	// ReconnectDelay is the first backoff step.
	ReconnectDelay time.Duration
	// MaxBackoff caps the backoff growth.
	MaxBackoff time.Duration
	// BackoffMultiplier scales the delay after each failed attempt.
	BackoffMultiplier float64
	// ReconnectEnabled turns automatic redialing on.
	ReconnectEnabled bool
	// EnableHeartbeat turns the ping loop on.
	EnableHeartbeat bool
	// Subprotocols negotiated during the handshake.
	Subprotocols []string
	// SendBufferSize is how many outbound messages are held while
	// reconnecting; beyond it the oldest is dropped.
	SendBufferSize int
}

// DefaultWSTransportConfig returns the production defaults: 30s
// heartbeats and up to five redials with doubling backoff.
func DefaultWSTransportConfig() WSTransportConfig {
	return WSTransportConfig{
		HeartbeatInterval: 30 * time.Second,
		HeartbeatTimeout:  10 * time.Second,
		MaxReconnects:     5,
		ReconnectDelay:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
		ReconnectEnabled:  true,
		EnableHeartbeat:   true,
		Subprotocols:      []string{"mcp"},
		SendBufferSize:    64,
	}
}

// WebSocketTransport is the client-side WebSocket transport. A
// heartbeat keeps idle connections alive, broken connections redial
// with exponential backoff, and messages sent mid-reconnect are
// buffered until the link returns.
type WebSocketTransport struct {
	url    string
	config WSTransportConfig
	logger *zap.Logger

	mu             sync.Mutex
	conn           *websocket.Conn
	state          WSState
	closed         bool
	reconnecting   bool
	reconnectCount int
	lastHeartbeat  time.Time
	sendBuffer     []*MCPMessage
	onStateChange  func(WSState)

	done chan struct{}
}

// NewWebSocketTransport builds a transport with the default
// configuration.
func NewWebSocketTransport(url string, logger *zap.Logger) *WebSocketTransport {
	return NewWebSocketTransportWithConfig(url, DefaultWSTransportConfig(), logger)
}

// NewWebSocketTransportWithConfig builds a transport with explicit
// tuning. Zero-valued backoff fields fall back to the defaults so
// callers only set what they care about.
func NewWebSocketTransportWithConfig(url string, config WSTransportConfig, logger *zap.Logger) *WebSocketTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.BackoffMultiplier == 0 {
		config.BackoffMultiplier = 2.0
	}
	if config.SendBufferSize == 0 {
		config.SendBufferSize = 64
	}
	return &WebSocketTransport{
		url:    url,
		config: config,
		logger: logger.With(zap.String("component", "mcp_ws_transport")),
		state:  WSStateDisconnected,
		done:   make(chan struct{}),
	}
}

// OnStateChange registers a callback fired on every state transition.
func (t *WebSocketTransport) OnStateChange(fn func(WSState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStateChange = fn
}

// setState must be called without t.mu held; the callback runs outside
// the lock.
func (t *WebSocketTransport) setState(s WSState) {
	t.mu.Lock()
	t.state = s
	fn := t.onStateChange
	t.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// State returns the current connection state.
func (t *WebSocketTransport) State() WSState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsConnected reports whether the transport currently has a live
// connection.
func (t *WebSocketTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == WSStateConnected && !t.closed
}

// Connect dials the server and starts the heartbeat loop.
func (t *WebSocketTransport) Connect(ctx context.Context) error {
	t.setState(WSStateConnecting)

	conn, err := t.dial(ctx)
	if err != nil {
		t.setState(WSStateDisconnected)
		return fmt.Errorf("websocket connect: %w", err)
	}

	t.mu.Lock()
	t.conn = conn
	t.lastHeartbeat = time.Now()
	t.mu.Unlock()

	t.setState(WSStateConnected)

	go t.heartbeat(ctx)
	return nil
}

func (t *WebSocketTransport) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, t.url, &websocket.DialOptions{
		HTTPClient:   tlsutil.SecureHTTPClient(0),
		Subprotocols: t.config.Subprotocols,
	})
	return conn, err
}

// Send writes one message. While a reconnect is in flight the message
// is buffered; a failed write triggers one reconnect-and-retry when
// redialing is enabled.
func (t *WebSocketTransport) Send(ctx context.Context, msg *MCPMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	conn, closed, reconnecting := t.conn, t.closed, t.reconnecting
	t.mu.Unlock()

	if closed {
		return fmt.Errorf("websocket: transport is closed")
	}
	if reconnecting {
		t.bufferMessage(msg)
		return nil
	}
	if conn == nil {
		return fmt.Errorf("websocket: not connected")
	}

	writeErr := conn.Write(ctx, websocket.MessageText, body)
	if writeErr == nil {
		return nil
	}
	if !t.config.ReconnectEnabled {
		return writeErr
	}

	t.logger.Warn("send failed, reconnecting", zap.Error(writeErr))
	if err := t.tryReconnect(ctx); err != nil {
		return fmt.Errorf("send failed and reconnect failed: %w", writeErr)
	}

	t.mu.Lock()
	conn = t.conn
	t.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("websocket: not connected after reconnect")
	}
	return conn.Write(ctx, websocket.MessageText, body)
}

// Receive blocks for the next message. Heartbeat pongs are consumed
// silently; read failures trigger a reconnect when redialing is
// enabled.
func (t *WebSocketTransport) Receive(ctx context.Context) (*MCPMessage, error) {
	for {
		t.mu.Lock()
		conn, closed := t.conn, t.closed
		t.mu.Unlock()

		if closed {
			return nil, fmt.Errorf("websocket: transport is closed")
		}
		if conn == nil {
			return nil, fmt.Errorf("websocket: not connected")
		}

		_, data, err := conn.Read(ctx)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.done:
				return nil, fmt.Errorf("websocket: transport is closed")
			default:
			}

			if !t.config.ReconnectEnabled {
				return nil, err
			}
			t.logger.Warn("receive failed, reconnecting", zap.Error(err))
			if reconnErr := t.tryReconnect(ctx); reconnErr != nil {
				return nil, fmt.Errorf("receive failed and reconnect failed: %w", err)
			}
			continue
		}

		var msg MCPMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, err
		}

		t.mu.Lock()
		t.lastHeartbeat = time.Now()
		t.mu.Unlock()

		if msg.Method == "pong" {
			continue
		}
		return &msg, nil
	}
}

// Close shuts the transport down. Safe to call more than once.
func (t *WebSocketTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.done)
	conn := t.conn
	t.mu.Unlock()

	t.setState(WSStateClosed)

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

// heartbeat pings the server on the configured interval and redials
// when pongs stop arriving.
func (t *WebSocketTransport) heartbeat(ctx context.Context) {
	if !t.config.EnableHeartbeat {
		return
	}

	ticker := time.NewTicker(t.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.done:
			return
		case <-ticker.C:
			ping := &MCPMessage{JSONRPC: "2.0", Method: "ping"}
			if err := t.Send(ctx, ping); err != nil {
				t.logger.Warn("heartbeat ping failed", zap.Error(err))
				if err := t.tryReconnect(ctx); err != nil {
					t.setState(WSStateClosed)
					return
				}
				continue
			}

			t.mu.Lock()
			lastBeat := t.lastHeartbeat
			t.mu.Unlock()

			// Any incoming traffic refreshes lastHeartbeat, so only a
			// fully silent connection trips this.
			if !lastBeat.IsZero() && time.Since(lastBeat) > t.config.HeartbeatTimeout+t.config.HeartbeatInterval {
				t.logger.Warn("heartbeat timeout", zap.Duration("since_last", time.Since(lastBeat)))
				if err := t.tryReconnect(ctx); err != nil {
					t.setState(WSStateClosed)
					return
				}
			}
		}
	}
}

// tryReconnect redials with exponential backoff until it succeeds or
// MaxReconnects attempts are spent. Concurrent callers wait for the
// attempt already in flight instead of racing it.
func (t *WebSocketTransport) tryReconnect(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	if t.reconnecting {
		t.mu.Unlock()
		return t.waitForReconnect(ctx)
	}
	t.reconnecting = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.reconnecting = false
		t.mu.Unlock()
	}()

	t.setState(WSStateReconnecting)

	t.mu.Lock()
	oldConn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if oldConn != nil {
		_ = oldConn.Close(websocket.StatusNormalClosure, "reconnecting")
	}

	delay := t.config.ReconnectDelay
	for attempt := 1; ; attempt++ {
		t.mu.Lock()
		if t.reconnectCount >= t.config.MaxReconnects {
			t.mu.Unlock()
			t.setState(WSStateFailed)
			return fmt.Errorf("max reconnect attempts (%d) reached", t.config.MaxReconnects)
		}
		t.reconnectCount++
		t.mu.Unlock()

		t.logger.Info("reconnecting",
			zap.Int("attempt", attempt),
			zap.Int("max", t.config.MaxReconnects),
			zap.Duration("delay", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.done:
			return fmt.Errorf("transport is closed")
		case <-time.After(delay):
		}

		conn, err := t.dial(ctx)
		if err != nil {
			t.logger.Error("reconnect dial failed",
				zap.Error(err),
				zap.Int("attempt", attempt))
			delay = time.Duration(float64(delay) * t.config.BackoffMultiplier)
			if delay > t.config.MaxBackoff {
				delay = t.config.MaxBackoff
			}
			continue
		}

		t.mu.Lock()
		t.conn = conn
		t.lastHeartbeat = time.Now()
		t.reconnectCount = 0
		t.mu.Unlock()

		t.setState(WSStateConnected)
		t.logger.Info("reconnected", zap.Int("attempt", attempt))

		t.flushSendBuffer(ctx)
		return nil
	}
}

// waitForReconnect blocks until the in-flight reconnect settles.
func (t *WebSocketTransport) waitForReconnect(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.done:
			return fmt.Errorf("transport is closed")
		case <-ticker.C:
			t.mu.Lock()
			reconnecting, state := t.reconnecting, t.state
			t.mu.Unlock()
			if !reconnecting {
				if state == WSStateConnected {
					return nil
				}
				return fmt.Errorf("reconnect finished in state %s", state)
			}
		}
	}
}

// bufferMessage queues a message for delivery after reconnection,
// dropping the oldest entry when the buffer is full.
func (t *WebSocketTransport) bufferMessage(msg *MCPMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sendBuffer) >= t.config.SendBufferSize {
		t.sendBuffer = t.sendBuffer[1:]
		t.logger.Warn("send buffer full, dropping oldest message")
	}
	t.sendBuffer = append(t.sendBuffer, msg)
}

// flushSendBuffer replays the buffered messages over the restored
// connection.
func (t *WebSocketTransport) flushSendBuffer(ctx context.Context) {
	t.mu.Lock()
	buf := t.sendBuffer
	t.sendBuffer = nil
	t.mu.Unlock()

	for _, msg := range buf {
		if err := t.Send(ctx, msg); err != nil {
			t.logger.Warn("failed to flush buffered message",
				zap.String("method", msg.Method),
				zap.Error(err))
		}
	}
}
