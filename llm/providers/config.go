package providers

import "time"

// BaseProviderConfig holds the fields every provider config shares.
// Embedding it gives each provider's Config the APIKey, BaseURL,
// Model, and Timeout fields without repeating them.
type BaseProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// OpenAIConfig configures the OpenAI provider.
type OpenAIConfig struct {
	BaseProviderConfig `yaml:",inline"`
	Organization       string `json:"organization,omitempty" yaml:"organization,omitempty"`
}

// MistralConfig configures the Mistral AI provider.
type MistralConfig struct {
	BaseProviderConfig `yaml:",inline"`
}
