package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/internal/tlsutil"
)

// Transport moves JSON-RPC messages between two MCP peers.
type Transport interface {
	// Send writes one message.
	Send(ctx context.Context, msg *MCPMessage) error
	// Receive blocks until the next message arrives.
	Receive(ctx context.Context) (*MCPMessage, error)
	// Close releases the underlying connection.
	Close() error
}

// StdioTransport frames messages with Content-Length headers over a
// reader/writer pair, the framing stdio-launched MCP clients expect.
type StdioTransport struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
	logger  *zap.Logger
}

// NewStdioTransport wraps a reader/writer pair, typically os.Stdin and
// os.Stdout.
func NewStdioTransport(reader io.Reader, writer io.Writer, logger *zap.Logger) *StdioTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StdioTransport{
		reader: bufio.NewReader(reader),
		writer: writer,
		logger: logger,
	}
}

// Send writes a Content-Length header followed by the JSON body.
func (t *StdioTransport) Send(ctx context.Context, msg *MCPMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))
	if _, err := t.writer.Write([]byte(header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := t.writer.Write(body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Receive reads headers until the blank line, then the announced
// number of body bytes.
func (t *StdioTransport) Receive(ctx context.Context) (*MCPMessage, error) {
	contentLength := -1
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err == nil {
			continue
		}
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, body); err != nil {
		return nil, err
	}

	var msg MCPMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Close is a no-op; the process owns stdin and stdout.
func (t *StdioTransport) Close() error {
	return nil
}

// SSETransport is the client side of the SSE pairing: a long-lived GET
// stream delivers server events while requests go out as plain POSTs.
type SSETransport struct {
	endpoint   string
	httpClient *http.Client
	events     chan *MCPMessage
	logger     *zap.Logger

	mu      sync.Mutex
	sendURL string
	cancel  context.CancelFunc
}

// NewSSETransport targets an MCP endpoint such as
// "http://localhost:8001/mcp". The stream attaches at <endpoint>/sse
// and messages post to <endpoint>/message.
func NewSSETransport(endpoint string, logger *zap.Logger) *SSETransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SSETransport{
		endpoint: endpoint,
		sendURL:  endpoint + "/message",
		// The event stream stays open indefinitely, so no client timeout.
		httpClient: tlsutil.SecureHTTPClient(0),
		events:     make(chan *MCPMessage, 100),
		logger:     logger,
	}
}

// Connect opens the event stream and starts reading it in the
// background. The endpoint event names the POST target for this
// client.
func (t *SSETransport) Connect(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"/sse", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sse connect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("sse connect: unexpected status %d", resp.StatusCode)
	}

	go t.readEvents(ctx, resp.Body)
	return nil
}

// readEvents decodes the stream. Events accumulate data: lines until a
// blank line terminates the event.
func (t *SSETransport) readEvents(ctx context.Context, body io.ReadCloser) {
	defer body.Close()
	defer close(t.events)

	scanner := bufio.NewScanner(body)
	var event, data string
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := scanner.Text()
		switch {
		case line == "":
			if data != "" && event != "endpoint" {
				var msg MCPMessage
				if err := json.Unmarshal([]byte(data), &msg); err != nil {
					t.logger.Error("sse parse error", zap.Error(err))
				} else {
					t.events <- &msg
				}
			}
			if event == "endpoint" && data != "" {
				t.setSendURL(data)
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data += strings.TrimSpace(line[len("data:"):])
		}
	}
}

// setSendURL adopts the per-client POST target announced by the
// server. Relative paths resolve against the endpoint.
func (t *SSETransport) setSendURL(target string) {
	base, err := url.Parse(t.endpoint)
	if err != nil {
		return
	}
	ref, err := url.Parse(target)
	if err != nil {
		t.logger.Warn("invalid endpoint event target", zap.String("target", target))
		return
	}
	resolved := base.ResolveReference(ref).String()

	t.mu.Lock()
	t.sendURL = resolved
	t.mu.Unlock()
	t.logger.Debug("sse send url set", zap.String("url", resolved))
}

// Send posts one message to the server.
func (t *SSETransport) Send(ctx context.Context, msg *MCPMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	t.mu.Lock()
	sendURL := t.sendURL
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sse send: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Receive delivers the next server event. A closed stream reads as
// io.EOF.
func (t *SSETransport) Receive(ctx context.Context) (*MCPMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-t.events:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	}
}

// Close tears down the event stream.
func (t *SSETransport) Close() error {
	t.mu.Lock()
	cancel := t.cancel
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}
