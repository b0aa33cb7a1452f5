// Package openai adapts the OpenAI Chat Completions API to the
// llm.Provider interface.
//
// The package sits on openaicompat and only pins what OpenAI does
// differently: the api.openai.com base URL, the gpt-4 fallback model,
// and the optional OpenAI-Organization header. Credential overrides
// from the request context are honored by the embedded base.
package openai
