// Package tlsutil provides centralized TLS configuration for the
// outbound HTTP clients (Graph API, LinkedIn, Twitter, LLM providers,
// Qdrant). TLS 1.2+, AEAD cipher suites only.
package tlsutil
