// Package factory creates LLM Provider instances by name. It imports
// the provider sub-packages and maps string names to constructors,
// breaking the import cycle that would occur if this logic lived in
// the llm package directly.
package factory

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Arshmittal/Ai-social-media/config"
	"github.com/Arshmittal/Ai-social-media/llm"
	"github.com/Arshmittal/Ai-social-media/llm/providers"
	"github.com/Arshmittal/Ai-social-media/llm/providers/mistral"
	"github.com/Arshmittal/Ai-social-media/llm/providers/openai"
	"github.com/Arshmittal/Ai-social-media/llm/providers/openaicompat"
)

// ProviderConfig is the generic configuration accepted by the factory.
// It uses a flat structure with an Extra map for provider-specific fields.
type ProviderConfig struct {
	APIKey  string         `json:"api_key" yaml:"api_key"`
	BaseURL string         `json:"base_url" yaml:"base_url"`
	Model   string         `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Extra   map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// NewProviderFromConfig creates a Provider for the given name.
//
// Built-in names: openai, mistral. Any other name is treated as a
// generic OpenAI-compatible provider and requires base_url.
func NewProviderFromConfig(name string, cfg ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base := providers.BaseProviderConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}

	switch name {
	case "openai":
		oc := providers.OpenAIConfig{BaseProviderConfig: base}
		if cfg.Extra != nil {
			if v, ok := cfg.Extra["organization"].(string); ok {
				oc.Organization = v
			}
		}
		return openai.NewOpenAIProvider(oc, logger), nil

	case "mistral":
		return mistral.NewMistralProvider(providers.MistralConfig{BaseProviderConfig: base}, logger), nil

	default:
		// Generic OpenAI-compatible endpoint: any name plus base_url.
		// Covers Groq, Fireworks, OpenRouter, Ollama, vLLM, and friends.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("unknown provider %q: built-in provider not found, and base_url is required for generic OpenAI-compatible provider", name)
		}
		oc := openaicompat.Config{
			ProviderName: name,
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			DefaultModel: cfg.Model,
			Timeout:      cfg.Timeout,
		}
		if cfg.Extra != nil {
			if v, ok := cfg.Extra["endpoint_path"].(string); ok {
				oc.EndpointPath = v
			}
			if v, ok := cfg.Extra["models_endpoint"].(string); ok {
				oc.ModelsEndpoint = v
			}
		}
		logger.Info("creating generic OpenAI-compatible provider",
			zap.String("provider", name),
			zap.String("base_url", cfg.BaseURL))
		return openaicompat.New(oc, logger), nil
	}
}

// SupportedProviders returns the built-in provider names.
func SupportedProviders() []string {
	return []string{"openai", "mistral"}
}

// FromLLMConfig builds the generation provider from the service
// configuration. The configured default provider wins when its key is
// set; otherwise the other built-in provider with a key is used.
func FromLLMConfig(cfg config.LLMConfig, logger *zap.Logger) (llm.Provider, error) {
	candidates := []struct {
		name    string
		apiKey  string
		baseURL string
		model   string
	}{
		{"openai", cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel},
		{"mistral", cfg.MistralAPIKey, cfg.MistralBaseURL, cfg.MistralModel},
	}
	if cfg.DefaultProvider == "mistral" {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}

	for _, c := range candidates {
		if c.apiKey == "" {
			continue
		}
		return NewProviderFromConfig(c.name, ProviderConfig{
			APIKey:  c.apiKey,
			BaseURL: c.baseURL,
			Model:   c.model,
			Timeout: cfg.Timeout,
		}, logger)
	}

	return nil, fmt.Errorf("no LLM provider configured: set OPENAI_API_KEY or MISTRAL_API_KEY")
}
