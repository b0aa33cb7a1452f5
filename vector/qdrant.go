package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/internal/tlsutil"
)

// VectorSize is the dimensionality of every collection. It matches the
// output of text-embedding-ada-002; changing it would orphan existing
// collections.
const VectorSize = 1536

// Distance metric for all collections.
const distanceCosine = "Cosine"

// ErrCollectionNotFound reports a call against a collection that does
// not exist yet.
var ErrCollectionNotFound = errors.New("collection not found")

// Config holds the Qdrant connection settings. BaseURL is the already
// resolved endpoint (config.QdrantConfig.Endpoint()).
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client is a minimal Qdrant REST client covering the five operations
// the content index needs: ensure, upsert, search, scroll, delete.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient builds a Qdrant client. The HTTP client enforces the
// service-wide TLS floor.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("qdrant base url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  tlsutil.SecureHTTPClient(cfg.Timeout),
		logger:  logger,
	}, nil
}

// Point is one stored vector with its payload.
type Point struct {
	ID      string         `json:"id"`
	Vector  []float64      `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ScoredPoint is a search hit.
type ScoredPoint struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// CollectionInfo is the subset of collection metadata the analytics
// path reads.
type CollectionInfo struct {
	PointsCount int64 `json:"points_count"`
	Config      struct {
		Params struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		} `json:"params"`
	} `json:"config"`
}

// EnsureCollection creates the collection when it does not exist.
// Existing collections are left untouched, so the call is idempotent.
func (c *Client) EnsureCollection(ctx context.Context, name string) error {
	_, err := c.GetCollection(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCollectionNotFound) {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     VectorSize,
			"distance": distanceCosine,
		},
	}
	if err := c.do(ctx, http.MethodPut, "/collections/"+name, body, nil); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	c.logger.Info("created vector collection", zap.String("collection", name))
	return nil
}

// GetCollection returns collection metadata, or ErrCollectionNotFound.
func (c *Client) GetCollection(ctx context.Context, name string) (*CollectionInfo, error) {
	var info CollectionInfo
	if err := c.do(ctx, http.MethodGet, "/collections/"+name, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Upsert writes points into a collection. Writing the same point ID
// twice overwrites, which is what dedupe by content hash relies on.
func (c *Client) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	body := map[string]any{"points": points}
	path := "/collections/" + collection + "/points?wait=true"
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("failed to upsert %d points into %s: %w", len(points), collection, err)
	}
	return nil
}

// Search returns the points nearest to vector, payload included.
func (c *Client) Search(ctx context.Context, collection string, vector []float64, limit int) ([]ScoredPoint, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	out := make([]ScoredPoint, 0)
	path := "/collections/" + collection + "/points/search"
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, fmt.Errorf("search in %s failed: %w", collection, err)
	}
	return out, nil
}

// Scroll pages through a collection's points, payload included. Only
// the first page is fetched; the analytics path caps at limit anyway.
func (c *Client) Scroll(ctx context.Context, collection string, limit int) ([]Point, error) {
	body := map[string]any{
		"limit":        limit,
		"with_payload": true,
	}
	var result struct {
		Points []Point `json:"points"`
	}
	path := "/collections/" + collection + "/points/scroll"
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, fmt.Errorf("scroll of %s failed: %w", collection, err)
	}
	if result.Points == nil {
		result.Points = make([]Point, 0)
	}
	return result.Points, nil
}

// DeleteCollection removes a collection and all its points.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	if err := c.do(ctx, http.MethodDelete, "/collections/"+name, nil, nil); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	c.logger.Info("deleted vector collection", zap.String("collection", name))
	return nil
}

// Ping verifies the endpoint answers. Qdrant serves its version info
// at the root path.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

// do runs one REST call and decodes the "result" field of the response
// envelope into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, ErrCollectionNotFound)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("qdrant %s %s: status %d: %s", method, path, resp.StatusCode, qdrantErrorMessage(raw))
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// qdrantErrorMessage pulls the error string out of Qdrant's failure
// envelope, falling back to the raw body.
func qdrantErrorMessage(raw []byte) string {
	var envelope struct {
		Status struct {
			Error string `json:"error"`
		} `json:"status"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Status.Error != "" {
		return envelope.Status.Error
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "no error detail"
	}
	return msg
}
