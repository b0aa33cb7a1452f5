// Package openaicompat provides a shared base implementation for
// OpenAI-compatible chat completion providers.
//
// OpenAI, Mistral, and any self-hosted gateway that speaks the OpenAI
// Chat Completions format share the same HTTP handling, message
// conversion, and error mapping. Providers embed openaicompat.Provider
// and only override what differs:
//
//   - Provider name and default model
//   - Base URL
//   - Custom headers (if any)
//   - Request hooks for provider-specific fields
//
// Usage:
//
//	p := openaicompat.New(openaicompat.Config{
//	    ProviderName:  "mistral",
//	    APIKey:        cfg.APIKey,
//	    BaseURL:       "https://api.mistral.ai",
//	    DefaultModel:  "mistral-small-latest",
//	    FallbackModel: "mistral-small-latest",
//	}, logger)
package openaicompat
