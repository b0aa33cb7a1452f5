package openai

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/llm/providers"
	"github.com/Arshmittal/Ai-social-media/llm/providers/openaicompat"
)

// OpenAIProvider implements the OpenAI chat completions provider.
// The embedded openaicompat.Provider handles the wire protocol; this
// type only pins the endpoint defaults and the Organization header.
type OpenAIProvider struct {
	*openaicompat.Provider
	openaiCfg providers.OpenAIConfig
}

// NewOpenAIProvider creates a new OpenAI provider instance.
func NewOpenAIProvider(cfg providers.OpenAIConfig, logger *zap.Logger) *OpenAIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	p := &OpenAIProvider{
		Provider: openaicompat.New(openaicompat.Config{
			ProviderName:  "openai",
			APIKey:        cfg.APIKey,
			BaseURL:       baseURL,
			DefaultModel:  cfg.Model,
			FallbackModel: "gpt-4",
			Timeout:       cfg.Timeout,
		}, logger),
		openaiCfg: cfg,
	}

	p.SetBuildHeaders(func(req *http.Request, apiKey string) {
		req.Header.Set("Authorization", "Bearer "+apiKey)
		if cfg.Organization != "" {
			req.Header.Set("OpenAI-Organization", cfg.Organization)
		}
		req.Header.Set("Content-Type", "application/json")
	})

	return p
}
