// Package mistral adapts the Mistral AI API to the llm.Provider
// interface.
//
// Mistral speaks the OpenAI Chat Completions format, so the provider
// embeds the OpenAI adapter and only changes the base URL
// (api.mistral.ai), the default model (mistral-small-latest) and the
// provider tag on responses and errors.
package mistral
