// Package tokenizer provides a uniform token counting interface,
// backed by tiktoken for OpenAI-family models with a character-ratio
// estimator fallback. Used for prompt budget management.
package tokenizer
