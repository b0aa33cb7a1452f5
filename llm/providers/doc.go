// Package providers holds the shared plumbing under the concrete LLM
// provider adapters.
//
// The OpenAI and Mistral subpackages depend on this package for
// request/response conversion and error mapping:
//
//   - BaseProviderConfig — configuration shared by every provider
//     (APIKey, BaseURL, Model, Timeout)
//   - OpenAICompat* types — the OpenAI Chat Completions wire format
//   - MapHTTPError — upstream HTTP status to llm.Error, with the
//     Retryable flag set for 429/5xx/529
//   - ReadErrorMessage — error message extraction from the common JSON
//     error envelope
//   - ConvertMessagesToOpenAI / ToLLMChatResponse — format conversion
//   - ChooseModel — model priority: request, then default, then fallback
package providers
