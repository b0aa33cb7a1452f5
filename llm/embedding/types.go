package embedding

import (
	"context"
	"time"
)

// EmbeddingRequest is a provider-agnostic embedding request.
type EmbeddingRequest struct {
	Input      []string `json:"input"`
	Model      string   `json:"model,omitempty"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// EmbeddingData is one vector of a response, in input order.
type EmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
	Object    string    `json:"object,omitempty"`
}

// EmbeddingUsage reports token accounting for a request.
type EmbeddingUsage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// EmbeddingResponse is a provider-agnostic embedding response.
type EmbeddingResponse struct {
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
	Embeddings []EmbeddingData `json:"embeddings"`
	Usage      EmbeddingUsage  `json:"usage"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Provider converts text into vectors.
type Provider interface {
	// Embed generates embeddings for a batch of inputs.
	Embed(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error)

	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, query string) ([]float64, error)

	// EmbedDocuments embeds a batch of documents for indexing.
	EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error)

	// Name returns the provider identifier.
	Name() string

	// Dimensions returns the vector size this provider produces.
	Dimensions() int

	// MaxBatchSize returns the largest batch a single Embed call accepts.
	MaxBatchSize() int
}
