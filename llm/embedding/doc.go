// Package embedding converts text into vectors for the content index.
//
// The OpenAI embeddings API is the single backend. The vector store
// pins its collections at 1536 dimensions, so the default model is
// text-embedding-ada-002. Upstream failures are mapped to llm.Error
// with the same codes the chat providers use, which lets callers apply
// one retry policy across both.
package embedding
