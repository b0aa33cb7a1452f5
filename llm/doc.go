/*
Package llm provides the unified language-model access layer: the
Provider abstraction, typed error taxonomy, and the retry decorator the
content pipeline calls through.

# Provider abstraction

The core interface is [Provider]: Completion, HealthCheck, Name.
Concrete adapters live under llm/providers; the factory package picks
one from configuration. Callers that need retry semantics wrap any
Provider in [ResilientProvider], which retries only errors the
provider marked retryable.

# Core types

  - [ChatRequest] / [ChatResponse]: chat request and response
  - [Message] / [Role]: conversation content
  - [Error] / [ErrorCode]: provider errors with HTTP status and a
    Retryable flag, shared by chat and embedding
  - [HealthStatus]: health probe result
  - [CredentialOverride]: per-request key override, carried in context

# Subpackages

  - llm/providers: provider adapters (OpenAI, Mistral, generic
    OpenAI-compatible base)
  - llm/factory: provider construction from configuration
  - llm/retry: backoff retry policy
  - llm/tokenizer: token counting for prompt budgeting
  - llm/embedding: text embedding for the content index
*/
package llm
